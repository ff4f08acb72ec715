package db

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"text/template"
)

//go:embed migrations/*.sql.tmpl
var migrationFS embed.FS

var migrationTemplates = template.Must(template.ParseFS(migrationFS, "migrations/*.sql.tmpl"))

// Schema names the tables the migrations create.
type Schema struct {
	UsersTable string
	LinksTable string
}

type schemaData struct {
	UsersTable     string
	UsersTableName string
	LinksTable     string
	LinksTableName string
}

func (s Schema) data() (schemaData, error) {
	users, err := QuoteIdentifier(s.UsersTable)
	if err != nil {
		return schemaData{}, err
	}
	links, err := QuoteIdentifier(s.LinksTable)
	if err != nil {
		return schemaData{}, err
	}
	return schemaData{
		UsersTable:     users,
		UsersTableName: s.UsersTable,
		LinksTable:     links,
		LinksTableName: s.LinksTable,
	}, nil
}

// migration is one versioned schema step rendered from the embedded templates.
type migration struct {
	name    string
	version int64
}

var migrations = []migration{
	{version: 1, name: "0001_users"},
	{version: 2, name: "0002_links"},
}

func (s Schema) render(name string) (string, error) {
	data, err := s.data()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := migrationTemplates.ExecuteTemplate(&buf, name+".sql.tmpl", data); err != nil {
		return "", errors.Join(ErrRenderMigration, fmt.Errorf("%s: %w", name, err))
	}
	return buf.String(), nil
}

// RenderLinksMigration renders a goose SQL migration creating only the links
// table. It is what `oauthlink install` writes for hosts that manage their
// own migrations and already own a users table.
func RenderLinksMigration(s Schema) ([]byte, error) {
	up, err := s.render("0002_links.up")
	if err != nil {
		return nil, err
	}
	down, err := s.render("0002_links.down")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("-- +goose Up\n-- +goose StatementBegin\n")
	buf.WriteString(up)
	buf.WriteString("-- +goose StatementEnd\n\n-- +goose Down\n-- +goose StatementBegin\n")
	buf.WriteString(down)
	buf.WriteString("-- +goose StatementEnd\n")
	return buf.Bytes(), nil
}
