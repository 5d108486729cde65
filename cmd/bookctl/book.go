package main

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/writablebook-go/writablebook"
	"github.com/AntonStoeckl/writablebook-go/writablebook/postgresengine"
)

func newNewCommand(a *app) *cobra.Command {
	var customName string

	cmd := &cobra.Command{
		Use:   "new [page text]...",
		Short: "Create a book with one page per argument and store it",
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := bookFromTexts(customName, args)
			if err != nil {
				return err
			}

			bookID, err := uuid.NewV7()
			if err != nil {
				return err
			}

			return a.withStore(cmd.Context(), func(bs *postgresengine.BookStore) error {
				version, saveErr := bs.Save(cmd.Context(), bookID, book, 0)
				if saveErr != nil {
					return saveErr
				}

				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s (version %d)\n", bookID, version)

				return err
			})
		},
	}

	cmd.Flags().StringVar(&customName, "name", "", "custom display name of the book")

	return cmd
}

func newShowCommand(a *app) *cobra.Command {
	var eventual bool

	cmd := &cobra.Command{
		Use:   "show <book-id>",
		Short: "Print the pages of a stored book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}

			ctx := writablebook.WithStrongConsistency(cmd.Context())
			if eventual {
				ctx = writablebook.WithEventualConsistency(cmd.Context())
			}

			return a.withStore(ctx, func(bs *postgresengine.BookStore) error {
				book, version, loadErr := bs.Load(ctx, bookID)
				if loadErr != nil {
					return loadErr
				}

				return printBook(cmd.OutOrStdout(), bookID, version, book)
			})
		},
	}

	cmd.Flags().BoolVar(&eventual, "eventual", false, "allow reading from the replica")

	return cmd
}

func newDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <book-id>",
		Short: "Remove a stored book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}

			return a.withStore(cmd.Context(), func(bs *postgresengine.BookStore) error {
				return bs.Delete(cmd.Context(), bookID)
			})
		},
	}
}

func bookFromTexts(customName string, texts []string) (*writablebook.WritableBook, error) {
	book := writablebook.NewWritableBook()
	book.SetCustomName(customName)

	for i, text := range texts {
		if _, err := book.SetPageText(i, text); err != nil {
			return nil, err
		}
	}

	return book, nil
}

func printBook(w io.Writer, bookID uuid.UUID, version writablebook.Version, book *writablebook.WritableBook) error {
	name := book.Name()
	if book.HasCustomName() {
		name = book.CustomName()
	}

	if _, err := fmt.Fprintf(w, "%s %q version %d, %d pages\n", bookID, name, version, book.Pages().Len()); err != nil {
		return err
	}

	for i, page := range book.Pages().All() {
		line := fmt.Sprintf("%3d: %s", i, page.Text())
		if page.Annotation() != "" {
			line += fmt.Sprintf(" [photo %s]", page.Annotation())
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	return nil
}
