package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Summary is the headline stat block for one ingested dataset.
type Summary struct {
	Total          int `json:"total"`
	Open           int `json:"open"`
	Closed         int `json:"closed"`
	EmergencyCount int `json:"emergency_count"`
	AvgPendency    int `json:"avg_pendency"`
}

// Summarize computes the dashboard stat block. Emergency count and
// average pendency are taken over open cases only; with no open cases
// the average is 0, not a division error.
func Summarize(records []*CaseRecord) Summary {
	s := Summary{Total: len(records)}
	pendencySum := int64(0)
	for _, rec := range records {
		if !rec.IsOpen {
			continue
		}
		s.Open++
		if rec.IsEmergency {
			s.EmergencyCount++
		}
		pendencySum += int64(rec.CalculatedPendency)
	}
	s.Closed = s.Total - s.Open
	if s.Open > 0 {
		s.AvgPendency = int(roundedAverage(pendencySum, int64(s.Open)))
	}
	return s
}

type HistogramBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// The four pendency bands, inclusive upper bounds; the last band is
// open-ended. Negative pendency (future-dated registration) lands in
// the first band.
var pendencyBands = []struct {
	label string
	upper int
}{
	{"0-3", 3},
	{"4-7", 7},
	{"8-15", 15},
}

const overflowBandLabel = "15+"

// PendencyHistogram partitions open cases into the four fixed bands.
// Bands are disjoint and exhaustive: the counts always sum to the
// open-case count.
func PendencyHistogram(records []*CaseRecord) []HistogramBucket {
	buckets := make([]HistogramBucket, 0, len(pendencyBands)+1)
	for _, band := range pendencyBands {
		buckets = append(buckets, HistogramBucket{Label: band.label})
	}
	buckets = append(buckets, HistogramBucket{Label: overflowBandLabel})

	for _, rec := range records {
		if !rec.IsOpen {
			continue
		}
		idx := len(buckets) - 1
		for i, band := range pendencyBands {
			if rec.CalculatedPendency <= band.upper {
				idx = i
				break
			}
		}
		buckets[idx].Count++
	}
	return buckets
}

type IssueStat struct {
	AbnormalType string `json:"abnormal_type"`
	Count        int    `json:"count"`
	AvgPendency  int    `json:"avg_pendency"`
}

// TopIssueLimit is how many issue types the ranking keeps.
const TopIssueLimit = 5

// TopIssues groups open cases by issue type and returns the top
// groups by volume, each with its average pendency as a second,
// independently readable metric over the same set. Ties keep the
// order types were first seen in the sheet.
func TopIssues(records []*CaseRecord, limit int) []IssueStat {
	if limit <= 0 {
		limit = TopIssueLimit
	}

	type group struct {
		count       int
		pendencySum int64
	}
	groups := map[string]*group{}
	order := []string{}
	for _, rec := range records {
		if !rec.IsOpen {
			continue
		}
		issue := rec.AbnormalType
		if issue == "" {
			issue = UnknownAbnormalType
		}
		g, ok := groups[issue]
		if !ok {
			g = &group{}
			groups[issue] = g
			order = append(order, issue)
		}
		g.count++
		g.pendencySum += int64(rec.CalculatedPendency)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return groups[order[i]].count > groups[order[j]].count
	})
	if len(order) > limit {
		order = order[:limit]
	}

	stats := make([]IssueStat, 0, len(order))
	for _, issue := range order {
		g := groups[issue]
		stats = append(stats, IssueStat{
			AbnormalType: issue,
			Count:        g.count,
			AvgPendency:  int(roundedAverage(g.pendencySum, int64(g.count))),
		})
	}
	return stats
}

// roundedAverage rounds to the nearest whole day.
func roundedAverage(sum, count int64) int64 {
	return decimal.NewFromInt(sum).
		Div(decimal.NewFromInt(count)).
		Round(0).
		IntPart()
}
