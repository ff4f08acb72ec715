package db

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// ValidateIdentifier rejects table names that are not plain PostgreSQL
// identifiers. Configured table names are interpolated into SQL.
func ValidateIdentifier(name string) error {
	if !identifierRe.MatchString(name) {
		return errors.Join(ErrInvalidIdentifier, fmt.Errorf("table name %q", name))
	}
	return nil
}

// QuoteIdentifier validates name and returns it quoted for use in SQL.
func QuoteIdentifier(name string) (string, error) {
	if err := ValidateIdentifier(name); err != nil {
		return "", err
	}
	return pgx.Identifier{name}.Sanitize(), nil
}
