package config

import (
	"github.com/spf13/viper"
)

// Global configuration variables
var (
	// GoogleBooksAPIKey is the optional API key for the Google Books API
	GoogleBooksAPIKey string
	// DatabaseFile is the path to the SQLite library database.
	// The literal value "memory" selects the in-memory store.
	DatabaseFile string
	// ServerAddr is the listen address for the HTTP API
	ServerAddr string
)

// InitConfig initializes the global configuration
func InitConfig() {
	// Set default values
	viper.SetDefault("database.file", "./bookscan.db")
	viper.SetDefault("server.addr", ":8080")

	// Get values from viper
	GoogleBooksAPIKey = viper.GetString("googlebooks.apikey")
	DatabaseFile = viper.GetString("database.file")
	ServerAddr = viper.GetString("server.addr")
}

// SetDatabaseFile sets the library database path
func SetDatabaseFile(path string) {
	DatabaseFile = path
}
