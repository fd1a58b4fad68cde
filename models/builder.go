package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BuildOptions carries the positional layout and the reference time
// for pendency. Passing the clock in keeps ingestion deterministic
// and snapshots reproducible.
type BuildOptions struct {
	Columns ColumnMap
	Now     time.Time
}

// ProcessRows runs the full ingestion pipeline over raw sheet rows and
// returns the ordered case records plus the number of skipped rows.
//
// Row 0 is always treated as a header and discarded, matching the
// tracker sheets this feeds on. Rows that are blank or too short to
// classify are skipped; ingestion never fails on malformed data.
// Each call is independent, nothing is kept between ingestions.
func ProcessRows(rows [][]Cell, opts BuildOptions) ([]*CaseRecord, int) {
	cols := opts.Columns
	if cols == (ColumnMap{}) {
		cols = DefaultColumnMap()
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	records := make([]*CaseRecord, 0, max(len(rows)-1, 0))
	skipped := 0
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if !rowUsable(row, cols.MinWidth()) {
			skipped++
			continue
		}
		records = append(records, buildCaseRecord(row, i, cols, now))
	}
	return records, skipped
}

func rowUsable(row []Cell, minWidth int) bool {
	if len(row) < minWidth {
		return false
	}
	for _, c := range row {
		if !c.IsBlank() {
			return true
		}
	}
	return false
}

func cellAt(row []Cell, idx int) Cell {
	if idx < 0 || idx >= len(row) {
		return Cell{}
	}
	return row[idx]
}

func buildCaseRecord(row []Cell, rowIdx int, cols ColumnMap, now time.Time) *CaseRecord {

	registrationDate := ParseCellDate(cellAt(row, cols.RegistrationDate))
	orderStatus := strings.TrimSpace(cellAt(row, cols.OrderStatus).String())
	emergencyRaw := strings.ToLower(strings.TrimSpace(cellAt(row, cols.EmergencyFlag).String()))

	// Deadline and ETA are display fields: canonical formatting when
	// the cell parses as a date, the raw text untouched otherwise.
	handlingCell := cellAt(row, cols.HandlingDeadline)
	handlingDeadline := handlingCell.String()
	if d := ParseCellDate(handlingCell); d != nil {
		handlingDeadline = FormatDisplayDate(*d)
	}
	updatedEtaCell := cellAt(row, cols.UpdatedEta)
	updatedEta := updatedEtaCell.String()
	if d := ParseCellDate(updatedEtaCell); d != nil {
		updatedEta = FormatDisplayDate(*d)
	}

	isOpen := orderStatus == OrderStatusUnderFollowUp

	pendingCell := cellAt(row, cols.PendingDays)
	calculatedPendency := 0
	switch {
	case isOpen && registrationDate != nil:
		calculatedPendency = diffWholeDays(now, *registrationDate)
	case !pendingCell.IsBlank():
		calculatedPendency = int(pendingCell.NumberValue())
	}

	abnormalType := cellAt(row, cols.AbnormalType).String()
	if abnormalType == "" {
		abnormalType = UnknownAbnormalType
	}

	return &CaseRecord{
		ID:               caseID(rowIdx, cellAt(row, cols.OrderNumber).String()),
		RegistrationDate: registrationDate,
		CustomerName:     cellAt(row, cols.CustomerName).String(),
		ContactNumber:    cellAt(row, cols.ContactNumber).String(),
		Warehouse:        cellAt(row, cols.Warehouse).String(),
		DeliveryPartner:  cellAt(row, cols.DeliveryPartner).String(),
		OrderNumber:      cellAt(row, cols.OrderNumber).String(),
		OnNumber:         cellAt(row, cols.OnNumber).String(),
		AwbNumber:        cellAt(row, cols.AwbNumber).String(),
		AbnormalType:     abnormalType,
		Description:      cellAt(row, cols.Description).String(),
		Product:          cellAt(row, cols.Product).String(),
		WoStatus:         cellAt(row, cols.WoStatus).String(),
		IsEmergency:      emergencyRaw == "yes",
		OriginalEta:      cellAt(row, cols.OriginalEta).String(),
		HandlingDeadline: handlingDeadline,
		RequirementMails: cellAt(row, cols.RequirementMails).String(),
		OrderStatus:      orderStatus,
		UpdatedEta:       updatedEta,
		Others:           cellAt(row, cols.Others).String(),
		CaseStatus:       cellAt(row, cols.CaseStatus).String(),
		CaseCloseDate:    ParseCellDate(cellAt(row, cols.CaseCloseDate)),
		PendingDays:      int(pendingCell.NumberValue()),

		CalculatedPendency: calculatedPendency,
		IsOpen:             isOpen,
	}
}

// caseID is stable for a given sheet (row position + order number).
// Without an order number it falls back to a random suffix, so it is
// only practically unique within one analysis session.
func caseID(rowIdx int, orderNumber string) string {
	if orderNumber == "" {
		orderNumber = uuid.NewString()
	}
	return fmt.Sprintf("case-%d-%s", rowIdx, orderNumber)
}
