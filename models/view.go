package models

import (
	"sort"
	"sync"
	"time"
)

const DefaultPageSize = 50

// ViewConfig describes one filtered/sorted/paginated read over the
// dataset. Field names follow the record's JSON names. Pages are
// 1-indexed.
type ViewConfig struct {
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	SortField string     `json:"sort_field"`
	SortDesc  bool       `json:"sort_desc"`
	Page      int        `json:"page"`
	PageSize  int        `json:"page_size"`
}

type ViewResult struct {
	Items         []*CaseRecord `json:"items"`
	TotalMatching int           `json:"total_matching"`
	Page          int           `json:"page"`
}

// ApplyView filters by registration-date range (inclusive; records
// without a registration date never match a range), sorts with a
// stable tie-break, and pages the result. A page past the end yields
// an empty page, with TotalMatching still reporting the filtered
// count. The input slice is never reordered.
func ApplyView(records []*CaseRecord, cfg ViewConfig) ViewResult {
	filtered := records
	if cfg.StartDate != nil || cfg.EndDate != nil {
		filtered = make([]*CaseRecord, 0, len(records))
		for _, rec := range records {
			if matchesRange(rec.RegistrationDate, cfg.StartDate, cfg.EndDate) {
				filtered = append(filtered, rec)
			}
		}
	}

	sorted := make([]*CaseRecord, len(filtered))
	copy(sorted, filtered)

	sortField := cfg.SortField
	sortDesc := cfg.SortDesc
	if sortField == "" {
		// Default view: longest-pending first.
		sortField = "calculated_pendency"
		sortDesc = true
	}
	less := lessForField(sortField)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sortDesc {
			return less(sorted[j], sorted[i])
		}
		return less(sorted[i], sorted[j])
	})

	page := cfg.Page
	if page < 1 {
		page = 1
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	start := (page - 1) * pageSize
	items := []*CaseRecord{}
	if start < len(sorted) {
		end := min(start+pageSize, len(sorted))
		items = sorted[start:end]
	}

	return ViewResult{
		Items:         items,
		TotalMatching: len(sorted),
		Page:          page,
	}
}

func matchesRange(reg, start, end *time.Time) bool {
	if reg == nil {
		return false
	}
	if start != nil && reg.Before(*start) {
		return false
	}
	if end != nil && reg.After(*end) {
		return false
	}
	return true
}

// lessForField is an ascending comparator on the named field.
// Unknown names fall back to calculated pendency. Missing dates sort
// before any present date.
func lessForField(field string) func(a, b *CaseRecord) bool {
	switch field {
	case "registration_date":
		return func(a, b *CaseRecord) bool { return lessDatePtr(a.RegistrationDate, b.RegistrationDate) }
	case "case_close_date":
		return func(a, b *CaseRecord) bool { return lessDatePtr(a.CaseCloseDate, b.CaseCloseDate) }
	case "customer_name":
		return func(a, b *CaseRecord) bool { return a.CustomerName < b.CustomerName }
	case "contact_number":
		return func(a, b *CaseRecord) bool { return a.ContactNumber < b.ContactNumber }
	case "warehouse":
		return func(a, b *CaseRecord) bool { return a.Warehouse < b.Warehouse }
	case "delivery_partner":
		return func(a, b *CaseRecord) bool { return a.DeliveryPartner < b.DeliveryPartner }
	case "order_number":
		return func(a, b *CaseRecord) bool { return a.OrderNumber < b.OrderNumber }
	case "awb_number":
		return func(a, b *CaseRecord) bool { return a.AwbNumber < b.AwbNumber }
	case "abnormal_type":
		return func(a, b *CaseRecord) bool { return a.AbnormalType < b.AbnormalType }
	case "product":
		return func(a, b *CaseRecord) bool { return a.Product < b.Product }
	case "order_status":
		return func(a, b *CaseRecord) bool { return a.OrderStatus < b.OrderStatus }
	case "case_status":
		return func(a, b *CaseRecord) bool { return a.CaseStatus < b.CaseStatus }
	case "handling_deadline":
		return func(a, b *CaseRecord) bool { return a.HandlingDeadline < b.HandlingDeadline }
	case "updated_eta":
		return func(a, b *CaseRecord) bool { return a.UpdatedEta < b.UpdatedEta }
	case "pending_days":
		return func(a, b *CaseRecord) bool { return a.PendingDays < b.PendingDays }
	case "is_emergency":
		return func(a, b *CaseRecord) bool { return !a.IsEmergency && b.IsEmergency }
	case "is_open":
		return func(a, b *CaseRecord) bool { return !a.IsOpen && b.IsOpen }
	default:
		return func(a, b *CaseRecord) bool { return a.CalculatedPendency < b.CalculatedPendency }
	}
}

func lessDatePtr(a, b *time.Time) bool {
	if a == nil {
		return b != nil
	}
	if b == nil {
		return false
	}
	return a.Before(*b)
}

// OpenCasesByPendency is the feed/export ordering: open cases only,
// longest pending first, sheet order preserved on ties.
func OpenCasesByPendency(records []*CaseRecord) []*CaseRecord {
	open := make([]*CaseRecord, 0, len(records))
	for _, rec := range records {
		if rec.IsOpen {
			open = append(open, rec)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		return open[i].CalculatedPendency > open[j].CalculatedPendency
	})
	return open
}

// ViewState remembers the last applied configuration so that any
// change to filter or sort sends the reader back to page 1. Purely a
// view-layer consistency rule; the pipeline itself is stateless.
type ViewState struct {
	mu   sync.Mutex
	last ViewConfig
	seen bool
}

// Normalize returns cfg with the page reset to 1 when filter or sort
// differ from the previous request, and records cfg as the new state.
func (s *ViewState) Normalize(cfg ViewConfig) ViewConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen && queryChanged(s.last, cfg) {
		cfg.Page = 1
	}
	s.last = cfg
	s.seen = true
	return cfg
}

// Reset forgets the remembered configuration (new dataset, new view).
func (s *ViewState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = ViewConfig{}
	s.seen = false
}

func queryChanged(prev, next ViewConfig) bool {
	return !equalDatePtr(prev.StartDate, next.StartDate) ||
		!equalDatePtr(prev.EndDate, next.EndDate) ||
		prev.SortField != next.SortField ||
		prev.SortDesc != next.SortDesc
}

func equalDatePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
