package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lepinkainen/bookscan/internal/config"
	"github.com/lepinkainen/bookscan/internal/export"
	"github.com/lepinkainen/bookscan/internal/library"
	"github.com/lepinkainen/bookscan/internal/server"
)

// ScanCmd represents the scan command
type ScanCmd struct {
	ISBNs []string `arg:"" name:"isbn" help:"One or more ISBNs to scan"`
}

// AddCmd represents the add command for manually typed entries
type AddCmd struct {
	ISBN string `arg:"" help:"ISBN to add"`
}

// ListCmd represents the list command
type ListCmd struct {
	Genre string `help:"Only list books with this genre"`
}

// SearchCmd represents the search command
type SearchCmd struct {
	Query string `arg:"" help:"Search text"`
}

// StatsCmd represents the stats command
type StatsCmd struct{}

// ExportCmd represents the export command
type ExportCmd struct {
	Format string   `help:"Output format" default:"csv" enum:"csv,json"`
	Fields []string `help:"Fields to include (isbn, title, author, genre, publisher, coverurl, categories, scannedat)"`
	Output string   `short:"o" help:"Output file (defaults to stdout)"`
}

// DeleteCmd represents the delete command
type DeleteCmd struct {
	ID string `arg:"" help:"Book id to delete"`
}

// ServeCmd represents the serve command
type ServeCmd struct {
	Addr string `help:"Listen address (defaults to server.addr in config)"`
}

func (c *ScanCmd) Run() error {
	return scanAll(c.ISBNs, false)
}

func (c *AddCmd) Run() error {
	return scanAll([]string{c.ISBN}, true)
}

func scanAll(isbns []string, manual bool) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	sc := newScanner(store)
	failures := 0
	for _, raw := range isbns {
		book, err := sc.Scan(context.Background(), raw, manual)
		switch {
		case errors.Is(err, library.ErrInvalidISBN):
			fmt.Printf("%s: invalid ISBN\n", raw)
			failures++
		case errors.Is(err, library.ErrDuplicate):
			fmt.Printf("%s: already in library\n", raw)
			failures++
		case err != nil:
			return err
		default:
			printBook(*book)
		}
	}
	if failures == len(isbns) {
		return fmt.Errorf("no books added")
	}
	return nil
}

func (c *ListCmd) Run() error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	var books []library.Book
	if c.Genre != "" {
		books, err = store.ListByGenre(context.Background(), c.Genre)
	} else {
		books, err = store.ListAll(context.Background())
	}
	if err != nil {
		return err
	}

	for _, book := range books {
		printBook(book)
	}
	return nil
}

func (c *SearchCmd) Run() error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	books, err := store.Search(context.Background(), c.Query)
	if err != nil {
		return err
	}
	for _, book := range books {
		printBook(book)
	}
	return nil
}

func (c *StatsCmd) Run() error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	stats, err := store.Stats(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Books:   %d\n", stats.TotalBooks)
	fmt.Printf("Genres:  %d\n", stats.Genres)
	fmt.Printf("Pending: %d\n", stats.Pending)
	return nil
}

func (c *ExportCmd) Run() error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	books, err := store.ListAll(context.Background())
	if err != nil {
		return err
	}

	out := os.Stdout
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	return export.Write(out, books, export.Format(c.Format), c.Fields)
}

func (c *DeleteCmd) Run() error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Delete(context.Background(), c.ID); err != nil {
		if errors.Is(err, library.ErrNotFound) {
			return fmt.Errorf("no book with id %s", c.ID)
		}
		return err
	}
	fmt.Printf("Deleted %s\n", c.ID)
	return nil
}

func (c *ServeCmd) Run() error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	addr := c.Addr
	if addr == "" {
		addr = config.ServerAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(store, newScanner(store)).ListenAndServe(ctx, addr)
}

func printBook(book library.Book) {
	title := book.Title
	if title == "" {
		title = "(metadata pending)"
	}
	line := fmt.Sprintf("%s  %s", book.ISBN, title)
	if book.Author != "" {
		line += " - " + book.Author
	}
	if book.Genre != "" {
		line += " [" + book.Genre + "]"
	}
	fmt.Println(line)
}
