package excel

import (
	"errors"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/billboards-service/internal/model"
)

type InventoryReader struct{}

func NewInventoryReader() *InventoryReader {
	return &InventoryReader{}
}

// ReadInventory maps every row of the first sheet onto the header row.
// Trailing blank rows are dropped; blank rows in the middle are kept so that
// record i still corresponds to sheet row i+2.
func (r *InventoryReader) ReadInventory(src io.Reader) ([]model.Record, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("xlsx has no sheets")
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Error()
	}
	header, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var records []model.Record
	lastFilled := 0
	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			return nil, err
		}
		rec := toRecord(header, cols)
		records = append(records, rec)
		if len(rec) > 0 {
			lastFilled = len(records)
		}
	}
	if err := rows.Error(); err != nil {
		return nil, err
	}
	return records[:lastFilled], nil
}

func toRecord(header, cols []string) model.Record {
	rec := make(model.Record, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" || i >= len(cols) {
			continue
		}
		if value := strings.TrimSpace(cols[i]); value != "" {
			rec[name] = value
		}
	}
	return rec
}
