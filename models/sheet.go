package models

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DecodeWorkbook reads the first sheet of an xlsx workbook into typed
// rows. Raw cell values are requested so that date cells arrive as
// their underlying day serials instead of locale-formatted strings.
//
// This is the only place where data can fail ingestion outright: a
// stream that is not a workbook at all is an error, everything past
// that is handled row by row.
func DecodeWorkbook(r io.Reader) ([][]Cell, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("unreadable workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	raw, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("unreadable sheet %q: %w", sheets[0], err)
	}

	rows := make([][]Cell, len(raw))
	for i, rawRow := range raw {
		row := make([]Cell, len(rawRow))
		for j, value := range rawRow {
			row[j] = coerceRawCell(value)
		}
		rows[i] = row
	}
	return rows, nil
}

// DecodeCSV reads a csv export into all-text rows. Ragged rows are
// allowed; the row-shape gate in the builder deals with them.
func DecodeCSV(r io.Reader) ([][]Cell, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	raw, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unreadable csv: %w", err)
	}

	rows := make([][]Cell, len(raw))
	for i, rawRow := range raw {
		row := make([]Cell, len(rawRow))
		for j, value := range rawRow {
			if strings.TrimSpace(value) == "" {
				continue
			}
			row[j] = TextCell(value)
		}
		rows[i] = row
	}
	return rows, nil
}

// coerceRawCell classifies a raw spreadsheet value. Numeric raw
// values cover both plain numbers and date serials; the temporal
// normalizer decides which is which by position.
func coerceRawCell(value string) Cell {
	if strings.TrimSpace(value) == "" {
		return Cell{}
	}
	if n, err := strconv.ParseFloat(value, 64); err == nil {
		return NumberCell(n)
	}
	return TextCell(value)
}
