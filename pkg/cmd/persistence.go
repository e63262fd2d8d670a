// Package cmd provides common initialization functions for command-line
// applications.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/flowgen-io/flowgen/pkg/persistence"
	"github.com/flowgen-io/flowgen/pkg/persistence/file"
	"github.com/flowgen-io/flowgen/pkg/persistence/postgresql"
)

// NewPersistence selects the persistence backend from the database URL
// scheme. Anything that is not PostgreSQL is treated as a file root.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch parseScheme(databaseURL) {
	case "postgres", "postgresql":
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	default:
		return file.NewPersistence(databaseURL), nil
	}
}

func parseScheme(databaseURL string) string {
	scheme, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return scheme
}
