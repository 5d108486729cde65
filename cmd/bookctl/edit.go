package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/writablebook-go/writablebook"
	"github.com/AntonStoeckl/writablebook-go/writablebook/postgresengine"
)

// Edit operations understood by applyEdit.
const (
	editSet    = "set"
	editAdd    = "add"
	editInsert = "insert"
	editDelete = "delete"
	editSwap   = "swap"
)

// ErrUnknownEditOperation is returned for an edit operation applyEdit does not know.
var ErrUnknownEditOperation = errors.New("unknown edit operation")

// ErrInvalidPageNumber is returned when a page argument is not an integer.
var ErrInvalidPageNumber = errors.New("page must be an integer")

func newEditCommand(a *app) *cobra.Command {
	editCmd := &cobra.Command{
		Use:   "edit",
		Short: "Load a book, change its pages and save it with optimistic versioning",
	}

	subcommands := []struct {
		op    string
		use   string
		short string
		args  int
	}{
		{op: editSet, use: "set <book-id> <page> <text>", short: "Set the text of a page, growing the book if needed", args: 3},
		{op: editAdd, use: "add <book-id> <page>", short: "Grow the book with empty pages up to page", args: 2},
		{op: editInsert, use: "insert <book-id> <page> <text>", short: "Insert a page, shifting later pages up", args: 3},
		{op: editDelete, use: "delete <book-id> <page>", short: "Delete a page, shifting later pages down", args: 2},
		{op: editSwap, use: "swap <book-id> <page> <page>", short: "Swap the texts of two pages", args: 3},
	}

	for _, sub := range subcommands {
		editCmd.AddCommand(&cobra.Command{
			Use:   sub.use,
			Short: sub.short,
			Args:  cobra.ExactArgs(sub.args),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.editBook(cmd, args[0], sub.op, args[1:])
			},
		})
	}

	return editCmd
}

func (a *app) editBook(cmd *cobra.Command, rawID string, op string, args []string) error {
	bookID, err := uuid.Parse(rawID)
	if err != nil {
		return err
	}

	ctx := writablebook.WithStrongConsistency(cmd.Context())

	return a.withStore(ctx, func(bs *postgresengine.BookStore) error {
		book, version, loadErr := bs.Load(ctx, bookID)
		if loadErr != nil {
			return loadErr
		}

		if editErr := applyEdit(book, op, args); editErr != nil {
			return editErr
		}

		newVersion, saveErr := bs.Save(ctx, bookID, book, version)
		if saveErr != nil {
			return saveErr
		}

		return printBook(cmd.OutOrStdout(), bookID, newVersion, book)
	})
}

// applyEdit runs a single page operation against book. args are the operation's arguments without the book id.
func applyEdit(book *writablebook.WritableBook, op string, args []string) error {
	page, err := pageArg(args, 0)
	if err != nil {
		return err
	}

	switch op {
	case editSet:
		_, err = book.SetPageText(page, textArg(args, 1))
		return err

	case editAdd:
		return book.AddPage(page)

	case editInsert:
		return book.InsertPage(page, textArg(args, 1))

	case editDelete:
		return book.DeletePage(page)

	case editSwap:
		other, otherErr := pageArg(args, 1)
		if otherErr != nil {
			return otherErr
		}

		return book.SwapPages(page, other)

	default:
		return errors.Join(ErrUnknownEditOperation, errors.New(op))
	}
}

func pageArg(args []string, i int) (int, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("%w: missing argument %d", ErrInvalidPageNumber, i+1)
	}

	page, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, errors.Join(ErrInvalidPageNumber, err)
	}

	return page, nil
}

func textArg(args []string, i int) string {
	if i >= len(args) {
		return ""
	}

	return args[i]
}
