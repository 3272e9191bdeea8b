package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"salon-offers/domain"
)

const (
	ColumnCustomerName = "customer_name"
	ColumnLastService  = "last_service"
	ColumnVisits       = "visits"
	ColumnDaysSince    = "days_since_last_visit"

	DefaultVisits    = 1
	DefaultDaysSince = 0
)

var (
	ErrInvalidCSV    = errors.New("invalid csv")
	ErrMissingColumn = errors.New("missing required column")
)

// CustomerCSVReader turns an uploaded visits CSV into customer records.
type CustomerCSVReader struct {
	logger *zap.Logger
}

func NewCustomerCSVReader(logger *zap.Logger) *CustomerCSVReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerCSVReader{logger: logger}
}

// Read parses the whole input. Any structural problem fails the whole file;
// bad numeric cells are coerced to defaults and logged.
func (c *CustomerCSVReader) Read(r io.Reader) ([]domain.CustomerRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: file is empty", ErrInvalidCSV)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrInvalidCSV, err)
	}

	index := columnIndex(header)
	for _, required := range []string{ColumnCustomerName, ColumnLastService} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	var records []domain.CustomerRecord
	for row := 1; ; row++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrInvalidCSV, row, err)
		}
		if len(fields) > len(header) {
			return nil, fmt.Errorf("%w: row %d has %d fields, header has %d",
				ErrInvalidCSV, row, len(fields), len(header))
		}

		get := func(column string) (string, bool) {
			i, ok := index[column]
			if !ok || i >= len(fields) {
				return "", false
			}
			return strings.TrimSpace(fields[i]), true
		}

		name, _ := get(ColumnCustomerName)
		service, _ := get(ColumnLastService)
		visitsRaw, _ := get(ColumnVisits)
		daysRaw, _ := get(ColumnDaysSince)

		visits, ok := coerceCount(visitsRaw, DefaultVisits)
		if !ok {
			c.logger.Warn("Coerced visits value",
				zap.Int("row", row), zap.String("raw", visitsRaw), zap.Int("value", visits))
		}
		days, ok := coerceCount(daysRaw, DefaultDaysSince)
		if !ok {
			c.logger.Warn("Coerced days_since_last_visit value",
				zap.Int("row", row), zap.String("raw", daysRaw), zap.Int("value", days))
		}

		records = append(records, domain.CustomerRecord{
			Row:                row,
			CustomerName:       name,
			LastService:        service,
			Visits:             visits,
			DaysSinceLastVisit: days,
		})
	}

	c.logger.Debug("Parsed customer CSV", zap.Int("rows", len(records)))
	return records, nil
}

func columnIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	return index
}

// coerceCount parses a non-negative integer cell. Blank cells take def silently.
// Decimal values are truncated ("3.0" -> 3), negatives clamp to 0, and anything
// unparseable takes def. ok is false whenever the raw text was not a clean count.
func coerceCount(raw string, def int) (int, bool) {
	if raw == "" {
		return def, true
	}
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 0 {
			return 0, false
		}
		return n, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def, false
	}
	if f < 0 {
		return 0, false
	}
	if f > math.MaxInt32 {
		return math.MaxInt32, false
	}
	n := int(f)
	return n, float64(n) == f
}
