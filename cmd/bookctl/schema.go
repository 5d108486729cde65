package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/writablebook-go/writablebook/postgresengine"
)

func newSchemaCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Create the book table if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd.Context(), func(bs *postgresengine.BookStore) error {
				if err := bs.EnsureSchema(cmd.Context()); err != nil {
					return err
				}

				_, err := fmt.Fprintf(cmd.OutOrStdout(), "table %q is ready\n", a.cfg.TableName)

				return err
			})
		},
	}
}
