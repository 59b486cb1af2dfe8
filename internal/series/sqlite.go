package series

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"PriceSentinel/internal/model"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const dayLayout = "2006-01-02"

// SQLiteStore persists the series to SQLite. The UNIQUE day column makes the
// existence check and the insert a single atomic statement.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, unavailable("open sqlite", err)
	}

	// WAL lets the HTTP service read while the daily updater writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, unavailable("set WAL mode", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, unavailable("migrate", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS price_points (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			day        TEXT NOT NULL UNIQUE,
			close      TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) Read(ctx context.Context) ([]model.PricePoint, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT day, close FROM price_points ORDER BY day`)
	if err != nil {
		return nil, unavailable("query", err)
	}
	defer rows.Close()

	var points []model.PricePoint
	for rows.Next() {
		var day, closeStr string
		if err := rows.Scan(&day, &closeStr); err != nil {
			return nil, unavailable("scan", err)
		}
		date, err := time.ParseInLocation(dayLayout, day, time.UTC)
		if err != nil {
			return nil, unavailable("parse day", err)
		}
		closePrice, err := decimal.NewFromString(closeStr)
		if err != nil {
			return nil, unavailable("parse close", err)
		}
		points = append(points, model.PricePoint{Date: date, Close: closePrice})
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate", err)
	}
	return points, nil
}

func (s *SQLiteStore) AppendIfAbsent(ctx context.Context, p model.PricePoint) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO price_points (day, close, created_at) VALUES (?,?,?)`,
		model.Day(p.Date).Format(dayLayout), p.Close.String(), time.Now().Unix(),
	)
	if err != nil {
		return false, unavailable("insert", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, unavailable("insert", err)
	}
	return n == 1, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
