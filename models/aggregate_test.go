package models

import (
	"testing"
)

func openCase(issue string, pendency int, emergency bool) *CaseRecord {
	return &CaseRecord{
		AbnormalType:       issue,
		CalculatedPendency: pendency,
		IsEmergency:        emergency,
		IsOpen:             true,
	}
}

func closedCase(pendency int) *CaseRecord {
	return &CaseRecord{CalculatedPendency: pendency}
}

func TestSummarize_ClosedEqualsTotalMinusOpen(t *testing.T) {
	records := []*CaseRecord{
		openCase("Damaged", 2, false),
		openCase("Lost", 10, true),
		closedCase(5),
		closedCase(0),
		closedCase(7),
	}
	s := Summarize(records)
	if s.Total != 5 || s.Open != 2 {
		t.Fatalf("Summarize total/open = %d/%d, want 5/2", s.Total, s.Open)
	}
	if s.Closed != s.Total-s.Open {
		t.Fatalf("Closed = %d, want total-open = %d", s.Closed, s.Total-s.Open)
	}
	if s.EmergencyCount != 1 {
		t.Fatalf("EmergencyCount = %d, want 1 (open cases only)", s.EmergencyCount)
	}
	if s.AvgPendency != 6 {
		t.Fatalf("AvgPendency = %d, want round((2+10)/2) = 6", s.AvgPendency)
	}
}

func TestSummarize_AvgRoundsToNearest(t *testing.T) {
	records := []*CaseRecord{
		openCase("Damaged", 1, false),
		openCase("Damaged", 2, false),
	}
	if got := Summarize(records).AvgPendency; got != 2 {
		t.Fatalf("AvgPendency = %d, want 2 (1.5 rounds up)", got)
	}
}

func TestSummarize_EmptyAndNoOpenDatasets(t *testing.T) {
	empty := Summarize(nil)
	if empty.Total != 0 || empty.Open != 0 || empty.Closed != 0 || empty.EmergencyCount != 0 || empty.AvgPendency != 0 {
		t.Fatalf("Summarize(nil) = %+v, want all zeros", empty)
	}

	// Emergency flag on a closed case must not leak into the summary,
	// and the average must not divide by zero.
	allClosed := Summarize([]*CaseRecord{
		{IsEmergency: true, CalculatedPendency: 9},
		closedCase(4),
	})
	if allClosed.Open != 0 || allClosed.AvgPendency != 0 || allClosed.EmergencyCount != 0 {
		t.Fatalf("Summarize(all closed) = %+v, want open/avg/emergency all 0", allClosed)
	}
}

func TestPendencyHistogram_PartitionsOpenCases(t *testing.T) {
	records := []*CaseRecord{
		openCase("A", -2, false), // negative counts as minimal
		openCase("A", 0, false),
		openCase("A", 3, false),
		openCase("A", 4, false),
		openCase("A", 7, false),
		openCase("A", 8, false),
		openCase("A", 15, false),
		openCase("A", 16, false),
		openCase("A", 100, false),
		closedCase(50), // closed: not counted
	}
	buckets := PendencyHistogram(records)
	if len(buckets) != 4 {
		t.Fatalf("len(buckets) = %d, want 4", len(buckets))
	}

	want := map[string]int{"0-3": 3, "4-7": 2, "8-15": 2, "15+": 2}
	total := 0
	for _, b := range buckets {
		if b.Count != want[b.Label] {
			t.Fatalf("bucket %q = %d, want %d", b.Label, b.Count, want[b.Label])
		}
		total += b.Count
	}
	if total != 9 {
		t.Fatalf("bucket counts sum to %d, want open-case count 9", total)
	}
}

func TestPendencyHistogram_EmptyDataset(t *testing.T) {
	buckets := PendencyHistogram(nil)
	if len(buckets) != 4 {
		t.Fatalf("len(buckets) = %d, want the 4 fixed bands even when empty", len(buckets))
	}
	for _, b := range buckets {
		if b.Count != 0 {
			t.Fatalf("bucket %q = %d, want 0", b.Label, b.Count)
		}
	}
}

func TestTopIssues_RanksByVolumeWithStableTies(t *testing.T) {
	records := []*CaseRecord{
		openCase("Damaged", 4, false),
		openCase("Damaged", 6, false),
		openCase("Damaged", 8, false),
		openCase("Lost", 10, false),
		openCase("Lost", 11, false),
		openCase("Delayed", 1, false),
		openCase("Delayed", 2, false),
		openCase("Wrong Item", 3, false),
		openCase("Leaking", 5, false),
		openCase("Mislabeled", 7, false),
		closedCase(99),
	}
	stats := TopIssues(records, 5)
	if len(stats) != 5 {
		t.Fatalf("len(stats) = %d, want 5", len(stats))
	}
	for i := 1; i < len(stats); i++ {
		if stats[i].Count > stats[i-1].Count {
			t.Fatalf("stats not sorted by volume: %+v", stats)
		}
	}
	if stats[0].AbnormalType != "Damaged" {
		t.Fatalf("top issue = %q, want Damaged", stats[0].AbnormalType)
	}
	// Lost and Delayed both count 2: Lost was seen first and stays ahead.
	if stats[1].AbnormalType != "Lost" || stats[2].AbnormalType != "Delayed" {
		t.Fatalf("tie-break not stable on first occurrence: %+v", stats)
	}
	// avg for Damaged = round(18/3) = 6
	if stats[0].AvgPendency != 6 {
		t.Fatalf("Damaged AvgPendency = %d, want 6", stats[0].AvgPendency)
	}
	// 6 distinct types in, only 5 out
	for _, s := range stats {
		if s.AbnormalType == "Mislabeled" {
			t.Fatalf("6th group leaked into top five: %+v", stats)
		}
	}
}

func TestTopIssues_BlankTypeGroupsAsUnknown(t *testing.T) {
	records := []*CaseRecord{
		openCase("", 4, false),
		openCase("", 6, false),
	}
	stats := TopIssues(records, 5)
	if len(stats) != 1 || stats[0].AbnormalType != UnknownAbnormalType {
		t.Fatalf("stats = %+v, want a single Unknown group", stats)
	}
	if stats[0].Count != 2 || stats[0].AvgPendency != 5 {
		t.Fatalf("Unknown group = %+v, want count 2, avg 5", stats[0])
	}
}

func TestTopIssues_FewerGroupsThanLimit(t *testing.T) {
	records := []*CaseRecord{openCase("Damaged", 1, false)}
	stats := TopIssues(records, 5)
	if len(stats) != 1 {
		t.Fatalf("len(stats) = %d, want 1", len(stats))
	}
}
