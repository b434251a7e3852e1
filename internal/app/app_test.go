package app_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/config"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/service"
	"github.com/Shibashis-Mandal/Library-Management-System/internal/app"
	. "github.com/Shibashis-Mandal/Library-Management-System/testutil/circulationtest" //nolint:revive
)

const catalogCSV = `book_id,title,author,category,isbn,copy_id,shelf_location
book-1,The Go Programming Language,Donovan,Programming,9780134190440,copy-1,A-1
book-1,The Go Programming Language,Donovan,Programming,9780134190440,copy-2,A-1
book-2,Designing Data-Intensive Applications,Kleppmann,Databases,9781449373320,copy-3,B-4
`

func writeCatalog(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(catalogCSV), 0o600))

	return path
}

func Test_New_InMemory_ImportsCatalogOnStartup(t *testing.T) {
	// arrange
	ctx := context.Background()
	cfg := config.Default()
	cfg.Catalog.ImportFile = writeCatalog(t)
	logs := &bytes.Buffer{}

	// act
	a, err := app.New(ctx, cfg, app.WithLogOutput(logs), app.WithClock(func() time.Time { return Day0 }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(ctx) })

	// assert
	availability, err := a.Service.GetAvailability(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, 2, availability.Total)
	assert.Equal(t, 2, availability.Available)
	assert.Contains(t, logs.String(), "catalog imported")
}

func Test_New_SQLite_KeepsStateAcrossRestarts(t *testing.T) {
	// arrange
	ctx := context.Background()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Store.Driver = config.DriverSQLite
	cfg.Store.SQLitePath = filepath.Join(dir, "events.db")
	cfg.Catalog.Driver = config.DriverSQLite
	cfg.Catalog.DSN = filepath.Join(dir, "catalog.db")

	first, err := app.New(ctx, cfg, app.WithLogOutput(&bytes.Buffer{}))
	require.NoError(t, err)

	_, added, err := first.ImportCatalog(ctx, writeCatalog(t))
	require.NoError(t, err)
	require.Equal(t, 3, added)

	_, err = first.Service.IssueBook(ctx, service.IssueRequest{CopyID: "copy-3", BorrowerID: "student-1", IssueDate: Day0})
	require.NoError(t, err)
	require.NoError(t, first.Close(ctx))

	// act
	second, err := app.New(ctx, cfg, app.WithLogOutput(&bytes.Buffer{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close(ctx) })

	// assert
	availability, err := second.Service.GetAvailability(ctx, "book-2")
	require.NoError(t, err)
	assert.Equal(t, 1, availability.Total)
	assert.Equal(t, 0, availability.Available)

	book, err := second.Catalog.GetBook(ctx, "book-2")
	require.NoError(t, err)
	assert.Equal(t, "Kleppmann", book.Author)
}

func Test_New_FailsOnMissingImportFile(t *testing.T) {
	cfg := config.Default()
	cfg.Catalog.ImportFile = filepath.Join(t.TempDir(), "missing.csv")

	_, err := app.New(context.Background(), cfg, app.WithLogOutput(&bytes.Buffer{}))

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func Test_NewLogger_Levels(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := app.NewLogger(config.LogConfig{Level: "warn", Format: "json"}, buf)

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
