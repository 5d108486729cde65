package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/writablebook-go/tagtree"
	"github.com/AntonStoeckl/writablebook-go/writablebook"
)

const (
	defaultFixtureBooks    = 1000
	defaultMaxFixturePages = 20
	fixtureUpdatedAtLayout = "2006-01-02 15:04:05.000000-07"
)

var fixtureWords = []string{
	"quill", "ink", "parchment", "dragon", "castle", "river", "lantern", "compass",
	"winter", "ember", "harbor", "meadow", "echo", "granite", "willow", "tide",
}

// fixtureParams describes a generated data set.
type fixtureParams struct {
	Books    int
	MaxPages int
	Seed     uint64
	Now      time.Time
}

func newFixturesCommand() *cobra.Command {
	params := fixtureParams{}
	var output string

	cmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Write a CSV of generated books for bulk import with COPY",
		Long: `Write a CSV of generated books for bulk import.

The columns match the book table (book_id, version, item, updated_at), so the file can be
imported with: COPY books FROM '/path/books.csv' WITH (FORMAT csv, HEADER true)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params.Now = time.Now().UTC()

			w := cmd.OutOrStdout()
			if output != "-" {
				file, err := os.Create(output)
				if err != nil {
					return err
				}
				defer func() { _ = file.Close() }()
				w = file
			}

			count, err := writeFixtures(w, params)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d books\n", count)

			return err
		},
	}

	cmd.Flags().IntVar(&params.Books, "books", defaultFixtureBooks, "number of books to generate")
	cmd.Flags().IntVar(&params.MaxPages, "max-pages", defaultMaxFixturePages, "maximum pages per book")
	cmd.Flags().Uint64Var(&params.Seed, "seed", 1, "random seed for page contents")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, - for stdout")

	return cmd
}

// writeFixtures writes params.Books generated books as CSV rows to w and returns the number of rows written.
func writeFixtures(w io.Writer, params fixtureParams) (int, error) {
	rng := rand.New(rand.NewPCG(params.Seed, params.Seed)) //nolint:gosec
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write([]string{"book_id", "version", "item", "updated_at"}); err != nil {
		return 0, err
	}

	updatedAt := params.Now.Format(fixtureUpdatedAtLayout)

	for i := 0; i < params.Books; i++ {
		bookID, err := uuid.NewV7()
		if err != nil {
			return i, err
		}

		itemJSON, err := fixtureItemJSON(rng, i, params.MaxPages)
		if err != nil {
			return i, err
		}

		if err = csvWriter.Write([]string{bookID.String(), "1", string(itemJSON), updatedAt}); err != nil {
			return i, err
		}
	}

	csvWriter.Flush()

	return params.Books, csvWriter.Error()
}

func fixtureItemJSON(rng *rand.Rand, n int, maxPages int) ([]byte, error) {
	book := writablebook.NewWritableBook()
	book.SetCustomName("Fixture " + strconv.Itoa(n+1))

	pageCount := 0
	if maxPages > 0 {
		pageCount = rng.IntN(maxPages + 1)
	}

	for page := 0; page < pageCount; page++ {
		if _, err := book.SetPageText(page, fixtureSentence(rng)); err != nil {
			return nil, err
		}
	}

	tag := tagtree.NewCompound()
	book.SerializeTag(tag)

	return tagtree.Marshal(tag)
}

func fixtureSentence(rng *rand.Rand) string {
	words := make([]string, 3+rng.IntN(10))
	for i := range words {
		words[i] = fixtureWords[rng.IntN(len(fixtureWords))]
	}

	return strings.Join(words, " ")
}
