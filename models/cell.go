package models

import (
	"strconv"
	"strings"
	"time"
)

type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellDate
)

// Cell is one raw spreadsheet value at the ingestion boundary.
// The kind set is closed: everything a sheet can hand us is empty,
// text, a number (including date serials) or a native date.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Date   time.Time
}

func TextCell(s string) Cell {
	return Cell{Kind: CellText, Text: s}
}

func NumberCell(n float64) Cell {
	return Cell{Kind: CellNumber, Number: n}
}

func DateCell(t time.Time) Cell {
	return Cell{Kind: CellDate, Date: t}
}

// IsBlank reports whether the cell carries no usable value.
func (c Cell) IsBlank() bool {
	switch c.Kind {
	case CellEmpty:
		return true
	case CellText:
		return strings.TrimSpace(c.Text) == ""
	}
	return false
}

// String coerces the cell to a descriptive field value.
// Blank cells become the empty string, never an error.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellDate:
		return c.Date.Format("2006-01-02")
	}
	return ""
}

// NumberValue coerces the cell to a number; anything unparseable is 0.
func (c Cell) NumberValue() float64 {
	switch c.Kind {
	case CellNumber:
		return c.Number
	case CellText:
		n, err := strconv.ParseFloat(strings.TrimSpace(c.Text), 64)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}
