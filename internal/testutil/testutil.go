package testutil

import (
	"log/slog"
	"testing"

	"github.com/Lukeeddleman/loadoutlab-site/internal/catalog"
	"github.com/Lukeeddleman/loadoutlab-site/internal/logger"
	"github.com/Lukeeddleman/loadoutlab-site/internal/repository"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	return repo
}

// NewTestLogger returns a logger that only reports errors
func NewTestLogger() logger.Logger {
	return logger.NewWithLevel(slog.LevelError)
}

// NewTestCatalog returns the embedded parts catalog
func NewTestCatalog() *catalog.Catalog {
	return catalog.Default()
}
