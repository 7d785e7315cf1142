package export_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/goliatone/go-lookup/internal/export"
	"github.com/goliatone/go-lookup/internal/options"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

func country(name, dial, code string) *options.CountryOption {
	created := time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC)
	return &options.CountryOption{
		Fields: options.Fields{
			ID:        uuid.New(),
			Name:      name,
			CreatedAt: created,
			UpdatedAt: created.Add(time.Hour),
		},
		DialCode: dial,
		Code:     code,
	}
}

func readRows(t *testing.T, data []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(export.SheetName)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	return rows
}

func TestBuildWorkbookWritesActiveCountries(t *testing.T) {
	rwanda := country("Rwanda", "+250", "RW")
	note := "East Africa"
	rwanda.Description = &note
	kenya := country("Kenya", "+254", "KE")
	gone := country("Atlantis", "+999", "AT")
	deleted := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	gone.DeletedAt = &deleted

	data, err := export.BuildWorkbook([]*options.CountryOption{rwanda, nil, gone, kenya})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	rows := readRows(t, data)
	if len(rows) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(rows))
	}
	for i, col := range export.Header {
		if rows[0][i] != col {
			t.Fatalf("header %d: expected %q, got %q", i, col, rows[0][i])
		}
	}
	first := rows[1]
	if first[0] != rwanda.ID.String() || first[1] != "Rwanda" || first[2] != "+250" || first[3] != "RW" {
		t.Fatalf("unexpected first row %v", first)
	}
	if first[4] != "East Africa" {
		t.Fatalf("expected description, got %q", first[4])
	}
	if first[5] != "2025-03-04T08:00:00Z" || first[6] != "2025-03-04T09:00:00Z" {
		t.Fatalf("unexpected timestamps %q %q", first[5], first[6])
	}
	if rows[2][1] != "Kenya" {
		t.Fatalf("expected Kenya second, got %q", rows[2][1])
	}
}

func TestBuildWorkbookEmpty(t *testing.T) {
	data, err := export.BuildWorkbook(nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	rows := readRows(t, data)
	if len(rows) != 1 {
		t.Fatalf("expected only the header row, got %d rows", len(rows))
	}
}
