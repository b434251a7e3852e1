package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // driver registration
	_ "github.com/mattn/go-sqlite3" // driver registration

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	tableBooks  = "catalog_books"
	tableCopies = "catalog_copies"
)

var (
	ErrUnsupportedDriver = errors.New("unsupported catalog driver")
	ErrCatalogQuery      = errors.New("catalog query failed")
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS ` + tableBooks + ` (
		id       TEXT PRIMARY KEY,
		title    TEXT NOT NULL,
		author   TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		isbn     TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS ` + tableCopies + ` (
		id             TEXT PRIMARY KEY,
		book_id        TEXT NOT NULL REFERENCES ` + tableBooks + ` (id),
		shelf_location TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS ` + tableCopies + `_book_id_idx ON ` + tableCopies + ` (book_id)`,
}

// SQLCatalog is a Store on SQLite or Postgres.
type SQLCatalog struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
	ownsDB  bool
}

// Open connects to a catalog database. For DriverSQLite dsn is a file path.
func Open(driver, dsn string) (*SQLCatalog, error) {
	var (
		db  *sqlx.DB
		err error
	)

	switch driver {
	case DriverSQLite:
		db, err = sqlx.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", dsn))
		if err == nil {
			db.SetMaxOpenConns(1)
		}
	case DriverPostgres:
		db, err = sqlx.Open("postgres", dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	if err != nil {
		return nil, errors.Join(ErrCatalogQuery, err)
	}

	c, err := NewSQLCatalog(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	c.ownsDB = true

	return c, nil
}

// NewSQLCatalog wraps an open database. The dialect follows db.DriverName().
func NewSQLCatalog(db *sqlx.DB) (*SQLCatalog, error) {
	if db == nil {
		return nil, errors.New("catalog database must not be nil")
	}

	var dialect string
	switch db.DriverName() {
	case "sqlite3":
		dialect = "sqlite3"
	case "postgres", "pgx":
		dialect = "postgres"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, db.DriverName())
	}

	return &SQLCatalog{db: db, dialect: goqu.Dialect(dialect)}, nil
}

// Close closes the database if Open created it.
func (c *SQLCatalog) Close() error {
	if !c.ownsDB {
		return nil
	}

	return c.db.Close()
}

// Migrate creates the catalog tables.
func (c *SQLCatalog) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate catalog: %w", err)
		}
	}

	return nil
}

func (c *SQLCatalog) selectBooks() *goqu.SelectDataset {
	return c.dialect.
		From(goqu.T(tableBooks).As("b")).
		LeftJoin(goqu.T(tableCopies).As("c"), goqu.On(goqu.I("c.book_id").Eq(goqu.I("b.id")))).
		Select(
			goqu.I("b.id"),
			goqu.I("b.title"),
			goqu.I("b.author"),
			goqu.I("b.category"),
			goqu.I("b.isbn"),
			goqu.COUNT(goqu.I("c.id")).As("total_copies"),
		).
		GroupBy(goqu.I("b.id"), goqu.I("b.title"), goqu.I("b.author"), goqu.I("b.category"), goqu.I("b.isbn")).
		Prepared(true)
}

// GetBook returns a book with its copy count.
func (c *SQLCatalog) GetBook(ctx context.Context, bookID core.BookIDString) (Book, error) {
	query, args, err := c.selectBooks().Where(goqu.I("b.id").Eq(bookID)).ToSQL()
	if err != nil {
		return Book{}, errors.Join(ErrCatalogQuery, err)
	}

	var book Book
	if err = c.db.GetContext(ctx, &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Book{}, core.ErrBookNotFound
		}

		return Book{}, errors.Join(ErrCatalogQuery, err)
	}

	return book, nil
}

// ListBooks returns every book ordered by id.
func (c *SQLCatalog) ListBooks(ctx context.Context) ([]Book, error) {
	query, args, err := c.selectBooks().Order(goqu.I("b.id").Asc()).ToSQL()
	if err != nil {
		return nil, errors.Join(ErrCatalogQuery, err)
	}

	books := make([]Book, 0)
	if err = c.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, errors.Join(ErrCatalogQuery, err)
	}

	return books, nil
}

// ListCopies returns the copies of a book ordered by id.
func (c *SQLCatalog) ListCopies(ctx context.Context, bookID core.BookIDString) ([]Copy, error) {
	if _, err := c.GetBook(ctx, bookID); err != nil {
		return nil, err
	}

	query, args, err := c.dialect.
		From(tableCopies).
		Select("id", "book_id", "shelf_location").
		Where(goqu.C("book_id").Eq(bookID)).
		Order(goqu.C("id").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, errors.Join(ErrCatalogQuery, err)
	}

	copies := make([]Copy, 0)
	if err = c.db.SelectContext(ctx, &copies, query, args...); err != nil {
		return nil, errors.Join(ErrCatalogQuery, err)
	}

	return copies, nil
}

// SaveBook inserts or updates a book.
func (c *SQLCatalog) SaveBook(ctx context.Context, book Book) error {
	if err := validateRecord(book); err != nil {
		return err
	}

	query, args, err := c.dialect.
		Insert(tableBooks).
		Rows(goqu.Record{
			"id":       book.ID,
			"title":    book.Title,
			"author":   book.Author,
			"category": book.Category,
			"isbn":     book.ISBN,
		}).
		OnConflict(goqu.DoUpdate("id", goqu.Record{
			"title":    goqu.I("excluded.title"),
			"author":   goqu.I("excluded.author"),
			"category": goqu.I("excluded.category"),
			"isbn":     goqu.I("excluded.isbn"),
		})).
		Prepared(true).
		ToSQL()
	if err != nil {
		return errors.Join(ErrCatalogQuery, err)
	}

	if _, err = c.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Join(ErrCatalogQuery, err)
	}

	return nil
}

// SaveCopy registers a copy. Saving it again for the same book updates the shelf location.
func (c *SQLCatalog) SaveCopy(ctx context.Context, cp Copy) error {
	if err := validateRecord(cp); err != nil {
		return err
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Join(ErrCatalogQuery, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err = c.checkCopyTarget(ctx, tx, cp); err != nil {
		return err
	}

	query, args, err := c.dialect.
		Insert(tableCopies).
		Rows(goqu.Record{"id": cp.ID, "book_id": cp.BookID, "shelf_location": cp.ShelfLocation}).
		OnConflict(goqu.DoUpdate("id", goqu.Record{"shelf_location": goqu.I("excluded.shelf_location")})).
		Prepared(true).
		ToSQL()
	if err != nil {
		return errors.Join(ErrCatalogQuery, err)
	}

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return errors.Join(ErrCatalogQuery, err)
	}

	if err = tx.Commit(); err != nil {
		return errors.Join(ErrCatalogQuery, err)
	}

	return nil
}

func (c *SQLCatalog) checkCopyTarget(ctx context.Context, tx *sqlx.Tx, cp Copy) error {
	query, args, err := c.dialect.From(tableBooks).Select("id").Where(goqu.C("id").Eq(cp.BookID)).Prepared(true).ToSQL()
	if err != nil {
		return errors.Join(ErrCatalogQuery, err)
	}

	var bookID string
	if err = tx.GetContext(ctx, &bookID, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.ErrBookNotFound
		}

		return errors.Join(ErrCatalogQuery, err)
	}

	query, args, err = c.dialect.From(tableCopies).Select("book_id").Where(goqu.C("id").Eq(cp.ID)).Prepared(true).ToSQL()
	if err != nil {
		return errors.Join(ErrCatalogQuery, err)
	}

	var owner string
	err = tx.GetContext(ctx, &owner, query, args...)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return errors.Join(ErrCatalogQuery, err)
	case owner != cp.BookID:
		return core.ErrCopyBelongsToAnotherBook
	default:
		return nil
	}
}
