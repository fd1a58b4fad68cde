package models

import (
	"strings"
	"testing"
	"time"
)

func textRow(values ...string) []Cell {
	row := make([]Cell, len(values))
	for i, v := range values {
		if v == "" {
			continue
		}
		row[i] = TextCell(v)
	}
	return row
}

// The reference sheet row used across builder tests:
// open emergency case registered 2024-01-01, processed at 2024-01-15.
func scenarioRow() []string {
	return []string{
		"2024-01-01", "Acme", "555-0100", "WH1", "DHL", "ORD1", "", "AWB1",
		"Damaged", "box crushed", "Widget", "", "Yes", "", "2024-01-10", "",
		"Under Follow Up", "2024-01-12", "", "", "", "", "",
	}
}

func scenarioNow() time.Time {
	return time.Date(2024, time.January, 15, 0, 0, 0, 0, time.Local)
}

func TestProcessRows_OpenEmergencyScenario(t *testing.T) {
	rows := [][]Cell{
		textRow("header"),
		textRow(scenarioRow()...),
	}
	records, skipped := ProcessRows(rows, BuildOptions{Now: scenarioNow()})
	if skipped != 0 {
		t.Fatalf("skipped = %d, want 0", skipped)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}

	rec := records[0]
	if !rec.IsOpen {
		t.Fatal("IsOpen = false, want true")
	}
	if !rec.IsEmergency {
		t.Fatal("IsEmergency = false, want true")
	}
	if rec.CalculatedPendency != 14 {
		t.Fatalf("CalculatedPendency = %d, want 14", rec.CalculatedPendency)
	}
	if rec.CustomerName != "Acme" || rec.OrderNumber != "ORD1" || rec.AbnormalType != "Damaged" {
		t.Fatalf("descriptive fields wrong: %+v", rec)
	}
	if rec.HandlingDeadline != "Jan 10, 2024" {
		t.Fatalf("HandlingDeadline = %q, want canonical display format", rec.HandlingDeadline)
	}
	if rec.UpdatedEta != "Jan 12, 2024" {
		t.Fatalf("UpdatedEta = %q, want canonical display format", rec.UpdatedEta)
	}
	if rec.ID != "case-1-ORD1" {
		t.Fatalf("ID = %q, want case-1-ORD1", rec.ID)
	}
}

func TestProcessRows_ClosedCaseUsesPendingDaysOverride(t *testing.T) {
	row := scenarioRow()
	row[16] = "Closed"
	row[21] = "2024-01-05"
	row[22] = "3"

	rows := [][]Cell{textRow("header"), textRow(row...)}
	records, _ := ProcessRows(rows, BuildOptions{Now: scenarioNow()})
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}

	rec := records[0]
	if rec.IsOpen {
		t.Fatal("IsOpen = true, want false")
	}
	if rec.CalculatedPendency != 3 {
		t.Fatalf("CalculatedPendency = %d, want pending-days override 3", rec.CalculatedPendency)
	}
	if rec.CaseCloseDate == nil {
		t.Fatal("CaseCloseDate = nil, want parsed date")
	}
	if y, m, d := rec.CaseCloseDate.Date(); y != 2024 || m != time.January || d != 5 {
		t.Fatalf("CaseCloseDate = %v, want 2024-01-05", rec.CaseCloseDate)
	}
}

func TestProcessRows_ClosedCaseWithoutOverrideIsZero(t *testing.T) {
	row := scenarioRow()
	row[16] = "Closed"

	rows := [][]Cell{textRow("header"), textRow(row...)}
	records, _ := ProcessRows(rows, BuildOptions{Now: scenarioNow()})
	if got := records[0].CalculatedPendency; got != 0 {
		t.Fatalf("CalculatedPendency = %d, want 0", got)
	}
}

func TestProcessRows_UnparseablePendingDaysIsZero(t *testing.T) {
	row := scenarioRow()
	row[16] = "Closed"
	row[22] = "a few"

	rows := [][]Cell{textRow("header"), textRow(row...)}
	records, _ := ProcessRows(rows, BuildOptions{Now: scenarioNow()})
	if got := records[0].CalculatedPendency; got != 0 {
		t.Fatalf("CalculatedPendency = %d, want 0 for unparseable override", got)
	}
}

func TestProcessRows_FutureRegistrationGoesNegative(t *testing.T) {
	row := scenarioRow()
	row[0] = "2024-01-20"

	rows := [][]Cell{textRow("header"), textRow(row...)}
	records, _ := ProcessRows(rows, BuildOptions{Now: scenarioNow()})
	if got := records[0].CalculatedPendency; got >= 0 {
		t.Fatalf("CalculatedPendency = %d, want negative (no clamping)", got)
	}
}

func TestProcessRows_HeaderAlwaysSkipped(t *testing.T) {
	// Row 0 is discarded even when it looks like data.
	rows := [][]Cell{textRow(scenarioRow()...)}
	records, skipped := ProcessRows(rows, BuildOptions{Now: scenarioNow()})
	if len(records) != 0 || skipped != 0 {
		t.Fatalf("records = %d, skipped = %d; want 0, 0 for header-only input", len(records), skipped)
	}
}

func TestProcessRows_SkipsBlankAndShortRows(t *testing.T) {
	rows := [][]Cell{
		textRow("header"),
		{},
		textRow("", "", ""),
		textRow("2024-01-01", "too", "short"),
		textRow(scenarioRow()...),
	}
	records, skipped := ProcessRows(rows, BuildOptions{Now: scenarioNow()})
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if skipped != 3 {
		t.Fatalf("skipped = %d, want 3", skipped)
	}
}

func TestProcessRows_BlankIssueTypeBecomesUnknown(t *testing.T) {
	row := scenarioRow()
	row[8] = ""

	rows := [][]Cell{textRow("header"), textRow(row...)}
	records, _ := ProcessRows(rows, BuildOptions{Now: scenarioNow()})
	if got := records[0].AbnormalType; got != UnknownAbnormalType {
		t.Fatalf("AbnormalType = %q, want %q", got, UnknownAbnormalType)
	}
}

func TestProcessRows_MissingOrderNumberGetsRandomID(t *testing.T) {
	row := scenarioRow()
	row[5] = ""

	rows := [][]Cell{textRow("header"), textRow(row...)}
	records, _ := ProcessRows(rows, BuildOptions{Now: scenarioNow()})
	id := records[0].ID
	if !strings.HasPrefix(id, "case-1-") || len(id) <= len("case-1-") {
		t.Fatalf("ID = %q, want case-1-<random> fallback", id)
	}
}

func TestProcessRows_PreservesInputOrder(t *testing.T) {
	first := scenarioRow()
	second := scenarioRow()
	second[5] = "ORD2"

	rows := [][]Cell{textRow("header"), textRow(first...), textRow(second...)}
	records, _ := ProcessRows(rows, BuildOptions{Now: scenarioNow()})
	if len(records) != 2 || records[0].OrderNumber != "ORD1" || records[1].OrderNumber != "ORD2" {
		t.Fatalf("records out of order: %+v", records)
	}
}

func TestProcessRows_EmergencyFlagVariants(t *testing.T) {
	cases := []struct {
		flag string
		want bool
	}{
		{"Yes", true},
		{" yes ", true},
		{"YES", true},
		{"No", false},
		{"", false},
		{"maybe", false},
	}
	for _, tc := range cases {
		row := scenarioRow()
		row[12] = tc.flag
		rows := [][]Cell{textRow("header"), textRow(row...)}
		records, _ := ProcessRows(rows, BuildOptions{Now: scenarioNow()})
		if got := records[0].IsEmergency; got != tc.want {
			t.Fatalf("IsEmergency(flag %q) = %v, want %v", tc.flag, got, tc.want)
		}
	}
}

func TestProcessRows_RawDeadlineTextKeptWhenUnparseable(t *testing.T) {
	row := scenarioRow()
	row[14] = "ASAP"

	rows := [][]Cell{textRow("header"), textRow(row...)}
	records, _ := ProcessRows(rows, BuildOptions{Now: scenarioNow()})
	if got := records[0].HandlingDeadline; got != "ASAP" {
		t.Fatalf("HandlingDeadline = %q, want raw text preserved", got)
	}
}
