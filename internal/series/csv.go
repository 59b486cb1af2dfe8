package series

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"PriceSentinel/internal/model"

	"github.com/shopspring/decimal"
)

var csvHeader = []string{"Date", "Close"}

// CSVStore keeps the series in a two-column flat file (Date,Close) with
// DD-MM-YYYY dates.
type CSVStore struct {
	path string
	mu   sync.Mutex
}

func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

func (s *CSVStore) Read(_ context.Context) ([]model.PricePoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readRecords()
	if err != nil {
		return nil, err
	}
	points := make([]model.PricePoint, 0, len(records))
	for i, rec := range records {
		p, err := parseRecord(rec)
		if err != nil {
			return nil, unavailable("read", fmt.Errorf("row %d: %w", i+2, err))
		}
		points = append(points, p)
	}
	return points, nil
}

func (s *CSVStore) AppendIfAbsent(_ context.Context, p model.PricePoint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readRecords()
	if err != nil {
		return false, err
	}
	key := p.DateKey()
	for _, rec := range records {
		if rec[0] == key {
			return false, nil
		}
	}

	records = append(records, []string{key, p.Close.String()})
	if err := s.writeRecords(records); err != nil {
		return false, err
	}
	return true, nil
}

func (s *CSVStore) Close() error { return nil }

// readRecords returns the data rows without the header.
func (s *CSVStore) readRecords() ([][]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, unavailable("open", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(csvHeader)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, unavailable("parse", err)
	}
	if len(rows) == 0 {
		return nil, unavailable("parse", errors.New("missing header"))
	}
	if rows[0][0] != csvHeader[0] || rows[0][1] != csvHeader[1] {
		return nil, unavailable("parse", fmt.Errorf("unexpected header %v", rows[0]))
	}
	return rows[1:], nil
}

// writeRecords replaces the file atomically via a temp file and rename,
// keeping the original file mode.
func (s *CSVStore) writeRecords(records [][]string) error {
	info, err := os.Stat(s.path)
	if err != nil {
		return unavailable("write", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".series-*.csv")
	if err != nil {
		return unavailable("write", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()
		return unavailable("write", err)
	}

	w := csv.NewWriter(tmp)
	if err := w.Write(csvHeader); err != nil {
		tmp.Close()
		return unavailable("write", err)
	}
	if err := w.WriteAll(records); err != nil {
		tmp.Close()
		return unavailable("write", err)
	}
	if err := tmp.Close(); err != nil {
		return unavailable("write", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return unavailable("write", err)
	}
	return nil
}

func parseRecord(rec []string) (model.PricePoint, error) {
	date, err := model.ParseDateKey(rec[0])
	if err != nil {
		return model.PricePoint{}, fmt.Errorf("date %q: %w", rec[0], err)
	}
	closePrice, err := decimal.NewFromString(rec[1])
	if err != nil {
		return model.PricePoint{}, fmt.Errorf("close %q: %w", rec[1], err)
	}
	if !closePrice.IsPositive() {
		return model.PricePoint{}, fmt.Errorf("close %q: must be positive", rec[1])
	}
	return model.PricePoint{Date: date, Close: closePrice}, nil
}
