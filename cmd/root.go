package cmd

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/bookscan/internal/config"
	"github.com/lepinkainen/bookscan/internal/library"
	"github.com/lepinkainen/bookscan/internal/metadata"
	"github.com/lepinkainen/bookscan/internal/scanner"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"
)

// CLI represents the complete command structure for the bookscan application
type CLI struct {
	// Global flags
	DB      string `help:"Path to the SQLite library database; use 'memory' for a non-persistent store"`
	Verbose bool   `help:"Enable debug logging"`

	Scan   ScanCmd   `cmd:"" help:"Scan ISBNs into the library"`
	Add    AddCmd    `cmd:"" help:"Add a manually typed ISBN to the library"`
	List   ListCmd   `cmd:"" help:"List cataloged books"`
	Search SearchCmd `cmd:"" help:"Search the library by title, author, genre or ISBN"`
	Stats  StatsCmd  `cmd:"" help:"Show catalog statistics"`
	Export ExportCmd `cmd:"" help:"Export the catalog as CSV or JSON"`
	Delete DeleteCmd `cmd:"" help:"Delete a book by id"`
	Serve  ServeCmd  `cmd:"" help:"Run the HTTP API"`
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging()
	initConfig()

	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("bookscan"),
		kong.Description("A personal book catalog: scan ISBNs, resolve metadata, shelve by genre."),
		kong.UsageOnError(),
	)

	updateGlobalConfig(&cli)

	if err := ctx.Run(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetDefault("database.file", "./bookscan.db")
	viper.SetDefault("server.addr", ":8080")

	// Enable environment variable support
	viper.AutomaticEnv()
	if err := viper.BindEnv("googlebooks.apikey", "GOOGLE_BOOKS_API_KEY"); err != nil {
		slog.Error("Failed to bind environment variable", "error", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Debug("Config file not found, using defaults")
		} else {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}

	config.InitConfig()
}

func updateGlobalConfig(cli *CLI) {
	if cli.DB != "" {
		config.SetDatabaseFile(cli.DB)
	}
	if cli.Verbose {
		initLoggingLevel(slog.LevelDebug)
	}
}

// openStore opens the configured library store. The literal value
// "memory" selects the in-memory implementation.
func openStore() (library.Store, error) {
	path := config.DatabaseFile
	if path == "memory" {
		return library.NewMemStore(), nil
	}
	return library.OpenSQLiteStore(path)
}

func newScanner(store library.Store) *scanner.Scanner {
	return scanner.New(store, metadata.NewResolver())
}

func initLogging() {
	initLoggingLevel(slog.LevelInfo)
}

func initLoggingLevel(level slog.Level) {
	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
