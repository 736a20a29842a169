package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/models"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect differences between the supported SQL databases.
type Dialect struct {
	Driver      string
	placeholder func(n int) string
}

var (
	Postgres = Dialect{Driver: "postgres", placeholder: func(n int) string { return "$" + strconv.Itoa(n) }}
	SQLite   = Dialect{Driver: "sqlite", placeholder: func(int) string { return "?" }}
)

const createShipmentsTable = `
	CREATE TABLE IF NOT EXISTS shipments (
		seq         INTEGER NOT NULL,
		shipment_id TEXT    NOT NULL,
		doc         TEXT    NOT NULL
	)`

// SQLStore keeps one row per shipment with the full JSON document, so unknown
// fields survive exactly as they do in the file store.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewPostgresStore connects with a postgres:// URL and creates the table.
func NewPostgresStore(ctx context.Context, connStr string) (*SQLStore, error) {
	db, err := sql.Open(Postgres.Driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres db: %w", err)
	}
	return NewSQLStore(ctx, db, Postgres)
}

// NewSQLiteStore opens (or creates) the database file at path.
func NewSQLiteStore(ctx context.Context, path string) (*SQLStore, error) {
	db, err := sql.Open(SQLite.Driver, "file:"+path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// one writer at a time, sqlite would answer SQLITE_BUSY otherwise
	db.SetMaxOpenConns(1)
	return NewSQLStore(ctx, db, SQLite)
}

// NewSQLStore wraps an open handle and migrates the schema.
func NewSQLStore(ctx context.Context, db *sql.DB, dialect Dialect) (*SQLStore, error) {
	if _, err := db.ExecContext(ctx, createShipmentsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create shipments table: %w", err)
	}
	return &SQLStore{db: db, dialect: dialect}, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) Load(ctx context.Context) ([]models.Shipment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM shipments ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query shipments: %w", err)
	}
	defer rows.Close()

	shipments := []models.Shipment{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan shipment: %w", err)
		}
		var sh models.Shipment
		if err := json.Unmarshal([]byte(doc), &sh); err != nil {
			return nil, fmt.Errorf("decode shipment row: %w", err)
		}
		shipments = append(shipments, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return shipments, nil
}

// Save replaces every row inside one transaction.
func (s *SQLStore) Save(ctx context.Context, shipments []models.Shipment) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM shipments`); err != nil {
		return fmt.Errorf("clear shipments: %w", err)
	}

	insert := fmt.Sprintf(`INSERT INTO shipments (seq, shipment_id, doc) VALUES (%s, %s, %s)`,
		s.dialect.placeholder(1), s.dialect.placeholder(2), s.dialect.placeholder(3))
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, sh := range shipments {
		doc, mErr := json.Marshal(sh)
		if mErr != nil {
			err = fmt.Errorf("encode shipment %s: %w", sh.ID, mErr)
			return err
		}
		if _, err = stmt.ExecContext(ctx, i, sh.ID, string(doc)); err != nil {
			return fmt.Errorf("insert shipment %s: %w", sh.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
