package main

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/oauthlink/pkg/db"
	"github.com/dmitrymomot/oauthlink/pkg/oauth"
)

//go:embed templates/oauth.yaml.tmpl
var templates embed.FS

var errFileExists = errors.New("file already exists, use --force to overwrite")

type installOptions struct {
	now        func() time.Time
	dir        string
	table      string
	usersTable string
	force      bool
}

func newInstallCommand() *cobra.Command {
	opts := installOptions{now: time.Now}

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Write the provider config template and the links table migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInstall(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.dir, "dir", ".", "Directory to write config/oauth.yaml and migrations/ into")
	cmd.Flags().StringVar(&opts.table, "table", oauth.DefaultTable, "Name of the provider links table")
	cmd.Flags().StringVar(&opts.usersTable, "users-table", "users", "Name of the users table the links reference")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Overwrite existing files")

	return cmd
}

func runInstall(out io.Writer, opts installOptions) error {
	schema := db.Schema{UsersTable: opts.usersTable, LinksTable: opts.table}
	migration, err := db.RenderLinksMigration(schema)
	if err != nil {
		return err
	}
	cfg, err := renderConfig(opts.table)
	if err != nil {
		return err
	}

	cfgPath := filepath.Join(opts.dir, "config", "oauth.yaml")
	migrationDir := filepath.Join(opts.dir, "migrations")
	suffix := fmt.Sprintf("_create_%s_table.sql", opts.table)

	existing, err := filepath.Glob(filepath.Join(migrationDir, "*"+suffix))
	if err != nil {
		return err
	}
	migrationPath := filepath.Join(migrationDir, opts.now().UTC().Format("20060102150405")+suffix)
	if len(existing) > 0 {
		migrationPath = existing[0]
	}

	if !opts.force {
		var errs []error
		for _, p := range []string{cfgPath, migrationPath} {
			if _, err := os.Stat(p); err == nil {
				errs = append(errs, fmt.Errorf("%s: %w", p, errFileExists))
			}
		}
		if len(errs) > 0 {
			return errors.Join(errs...)
		}
	}

	for _, f := range []struct {
		path string
		data []byte
	}{
		{cfgPath, cfg},
		{migrationPath, migration},
	} {
		if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(f.path, f.data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", f.path)
	}
	return nil
}

func renderConfig(table string) ([]byte, error) {
	tmpl, err := template.ParseFS(templates, "templates/oauth.yaml.tmpl")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Table string }{table}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
