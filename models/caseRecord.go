package models

import (
	"time"
)

// OrderStatusUnderFollowUp is the literal status the warehouse team
// writes for cases still being chased. It is the single signal for
// open vs closed; nothing re-derives openness from pendency.
const OrderStatusUnderFollowUp = "Under Follow Up"

// UnknownAbnormalType is substituted when the issue-type cell is blank.
const UnknownAbnormalType = "Unknown"

// CaseRecord is one normalized logistics exception entry.
// Records are immutable once built; every later operation (filter,
// sort, aggregate, export) is read-only.
type CaseRecord struct {
	ID               string     `json:"id"`
	RegistrationDate *time.Time `json:"registration_date"`
	CustomerName     string     `json:"customer_name"`
	ContactNumber    string     `json:"contact_number"`
	Warehouse        string     `json:"warehouse"`
	DeliveryPartner  string     `json:"delivery_partner"`
	OrderNumber      string     `json:"order_number"`
	OnNumber         string     `json:"on_number"`
	AwbNumber        string     `json:"awb_number"`
	AbnormalType     string     `json:"abnormal_type"`
	Description      string     `json:"description"`
	Product          string     `json:"product"`
	WoStatus         string     `json:"wo_status"`
	IsEmergency      bool       `json:"is_emergency"`
	OriginalEta      string     `json:"original_eta"`
	HandlingDeadline string     `json:"handling_deadline"`
	RequirementMails string     `json:"requirement_mails"`
	OrderStatus      string     `json:"order_status"`
	UpdatedEta       string     `json:"updated_eta"`
	Others           string     `json:"others"`
	CaseStatus       string     `json:"case_status"`
	CaseCloseDate    *time.Time `json:"case_close_date"`
	PendingDays      int        `json:"pending_days"`

	CalculatedPendency int  `json:"calculated_pendency"`
	IsOpen             bool `json:"is_open"`
}
