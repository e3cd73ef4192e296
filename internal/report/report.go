package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"compliancehub.org/internal/session"
)

// Category partitions reports into the four compliance areas.
type Category string

const (
	CategoryEmployee  Category = "employee_action"
	CategoryInventory Category = "inventory_action"
	CategoryCash      Category = "cash_action"
	CategoryStore     Category = "store_action"
)

// Priority flags a report for attention. Cash derivation only ever produces
// high or normal; maintenance requests carry a caller-chosen low/medium/high.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
)

var (
	ErrValidation      = errors.New("invalid report payload")
	ErrUnknownCategory = errors.New("unknown report category")
)

// Payload is one category-specific report body.
type Payload interface {
	Category() Category
	// Kind is the type discriminator within the category, e.g. "incident".
	Kind() string
	// Validate rejects malformed payloads before any write attempt.
	Validate() error
	// finalize computes derived fields (variance, checklist counts) and the
	// report priority. Called exactly once, at submission time.
	finalize() Priority
}

// Report is one submitted compliance record. Created exactly once, never
// mutated afterwards.
type Report struct {
	ID        string
	Category  Category
	Type      string
	StoreID   string
	StoreName string
	UserID    string
	UserEmail string
	CreatedAt int64 // Unix milliseconds, assigned client-side
	Priority  Priority
	Payload   Payload
}

// New validates the payload, freezes its derived fields, and stamps the
// report with identity and timestamp metadata. The identifier must be
// generated by the caller before any persistence attempt.
func New(p Payload, v session.Viewer, id string, now time.Time) (Report, error) {
	if p == nil {
		return Report{}, fmt.Errorf("%w: nil payload", ErrValidation)
	}
	if id == "" {
		return Report{}, fmt.Errorf("%w: missing report id", ErrValidation)
	}
	if err := p.Validate(); err != nil {
		return Report{}, err
	}
	priority := p.finalize()
	return Report{
		ID:        id,
		Category:  p.Category(),
		Type:      p.Kind(),
		StoreID:   v.StoreID,
		StoreName: v.StoreName,
		UserID:    v.UserID,
		UserEmail: v.Email,
		CreatedAt: now.UnixMilli(),
		Priority:  priority,
		Payload:   p,
	}, nil
}

// wireReport is the flat attribute shape shared with the remote store.
type wireReport struct {
	ID        string   `json:"id"`
	Category  Category `json:"category"`
	Type      string   `json:"type"`
	StoreID   string   `json:"storeId"`
	StoreName string   `json:"storeName"`
	UserID    string   `json:"userId"`
	UserEmail string   `json:"userEmail"`
	CreatedAt int64    `json:"createdAt"`
	Priority  Priority `json:"priority,omitempty"`
}

// Attrs flattens the report into the remote store's attribute map: base
// metadata merged with the category-specific payload fields.
func (r Report) Attrs() map[string]any {
	m := map[string]any{}
	if r.Payload != nil {
		if data, err := json.Marshal(r.Payload); err == nil {
			_ = json.Unmarshal(data, &m)
		}
	}
	m["id"] = r.ID
	m["category"] = string(r.Category)
	m["type"] = r.Type
	m["storeId"] = r.StoreID
	m["storeName"] = r.StoreName
	m["userId"] = r.UserID
	m["userEmail"] = r.UserEmail
	m["createdAt"] = r.CreatedAt
	if r.Priority != "" {
		m["priority"] = string(r.Priority)
	}
	return m
}

// FromAttrs rebuilds a report from the remote store's attribute map.
func FromAttrs(attrs map[string]any) (Report, error) {
	raw, err := json.Marshal(attrs)
	if err != nil {
		return Report{}, err
	}
	var w wireReport
	if err := json.Unmarshal(raw, &w); err != nil {
		return Report{}, err
	}

	var payload Payload
	switch w.Category {
	case CategoryEmployee:
		payload = &EmployeeAction{}
	case CategoryInventory:
		payload = &InventoryAction{}
	case CategoryCash:
		payload = &CashAction{}
	case CategoryStore:
		payload = &StoreAction{}
	default:
		return Report{}, fmt.Errorf("%w: %q", ErrUnknownCategory, w.Category)
	}
	if err := json.Unmarshal(raw, payload); err != nil {
		return Report{}, err
	}

	return Report{
		ID:        w.ID,
		Category:  w.Category,
		Type:      w.Type,
		StoreID:   w.StoreID,
		StoreName: w.StoreName,
		UserID:    w.UserID,
		UserEmail: w.UserEmail,
		CreatedAt: w.CreatedAt,
		Priority:  w.Priority,
		Payload:   payload,
	}, nil
}
