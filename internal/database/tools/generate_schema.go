// Command generate_schema writes internal/database/schema.sql from the
// migration files, or with --check fails when the file is out of date.
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"syncmeta-go/internal/database"

	"github.com/spf13/cobra"
)

func main() {
	var (
		out   string
		check bool
	)

	cmd := &cobra.Command{
		Use:          "generate_schema",
		Short:        "Render the metadata schema from the migrations",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := database.DumpSchema(cmd.Context())
			if err != nil {
				return err
			}

			if check {
				current, err := os.ReadFile(out)
				if err != nil {
					return fmt.Errorf("reading %s: %w", out, err)
				}
				if !bytes.Equal(current, []byte(schema)) {
					return fmt.Errorf("%s is out of date, run go generate ./internal/database", out)
				}
				return nil
			}

			if err := os.WriteFile(out, []byte(schema), 0644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "generated %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", filepath.Join("internal", "database", "schema.sql"), "schema file to write")
	cmd.Flags().BoolVar(&check, "check", false, "fail if the schema file differs instead of writing it")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
