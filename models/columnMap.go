package models

// ColumnMap names the positional contract of the exception sheet.
// The daily export has carried the same layout (columns A..W, with T
// unused) since the tracker was introduced; a layout change is a
// configuration change here, not a code change.
type ColumnMap struct {
	RegistrationDate int
	CustomerName     int
	ContactNumber    int
	Warehouse        int
	DeliveryPartner  int
	OrderNumber      int
	OnNumber         int
	AwbNumber        int
	AbnormalType     int
	Description      int
	Product          int
	WoStatus         int
	EmergencyFlag    int
	OriginalEta      int
	HandlingDeadline int
	RequirementMails int
	OrderStatus      int
	UpdatedEta       int
	Others           int
	CaseStatus       int
	CaseCloseDate    int
	PendingDays      int
}

// DefaultColumnMap is the layout of the current daily export.
// Column T (index 19) is reserved on the sheet and intentionally unmapped.
func DefaultColumnMap() ColumnMap {
	return ColumnMap{
		RegistrationDate: 0,
		CustomerName:     1,
		ContactNumber:    2,
		Warehouse:        3,
		DeliveryPartner:  4,
		OrderNumber:      5,
		OnNumber:         6,
		AwbNumber:        7,
		AbnormalType:     8,
		Description:      9,
		Product:          10,
		WoStatus:         11,
		EmergencyFlag:    12,
		OriginalEta:      13,
		HandlingDeadline: 14,
		RequirementMails: 15,
		OrderStatus:      16,
		UpdatedEta:       17,
		Others:           18,
		CaseStatus:       20,
		CaseCloseDate:    21,
		PendingDays:      22,
	}
}

// MinWidth is the shortest row that can still be classified: the
// order-status column must exist.
func (m ColumnMap) MinWidth() int {
	return m.OrderStatus + 1
}
