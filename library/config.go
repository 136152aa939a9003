package library

import (
	"context"
	"path/filepath"

	"github.com/sethvargo/go-envconfig"
)

// Config carries every runtime knob. All values come from the environment
// (optionally via a .env file loaded by the caller) and have workable
// defaults for a local install.
type Config struct {
	// DataDir holds the three snapshot files (books.json, users.json,
	// borrows.json). Created on first save if absent.
	DataDir   string `env:"LIBRARY_DATA_DIR, default=data"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=true"`

	GoogleBooks GoogleBooksConfig
}

// GoogleBooksConfig configures the catalog-seeding fetch.
type GoogleBooksConfig struct {
	BaseURL string `env:"GOOGLE_BOOKS_URL, default=https://www.googleapis.com/books/v1/volumes"`
	APIKey  string `env:"GOOGLE_BOOKS_API_KEY"`
	Query   string `env:"GOOGLE_BOOKS_QUERY, default=python programming"`
	// Limit caps how many volumes one fetch may yield.
	Limit int `env:"GOOGLE_BOOKS_LIMIT, default=20"`
}

// LoadConfig reads configuration from the environment.
func LoadConfig(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) booksPath() string   { return filepath.Join(c.DataDir, "books.json") }
func (c Config) usersPath() string   { return filepath.Join(c.DataDir, "users.json") }
func (c Config) borrowsPath() string { return filepath.Join(c.DataDir, "borrows.json") }
