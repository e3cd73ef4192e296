package report

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// shortageThreshold marks the variance below which a reconciliation is
// escalated: anything worse than a $10 shortfall is high priority.
var shortageThreshold = decimal.NewFromInt(-10)

// EmployeeAction records an incident, kudos, or attendance note about a
// member of staff. Visibility is restricted to admins and the submitter.
type EmployeeAction struct {
	Type         string `json:"type" validate:"required,oneof=incident kudos attendance"`
	EmployeeName string `json:"employeeName" validate:"required"`
	Description  string `json:"description" validate:"required"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
}

func (p *EmployeeAction) Category() Category { return CategoryEmployee }
func (p *EmployeeAction) Kind() string       { return p.Type }

func (p *EmployeeAction) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

func (p *EmployeeAction) finalize() Priority { return PriorityNormal }

// InventoryAction records a stock audit or an inventory problem
// (damaged/missing items), optionally with an uploaded photo reference.
type InventoryAction struct {
	Type        string `json:"type" validate:"required,oneof=audit problem"`
	ItemName    string `json:"itemName" validate:"required"`
	SKU         string `json:"sku" validate:"required"`
	Quantity    int    `json:"quantity" validate:"gte=0"`
	ProblemType string `json:"problemType,omitempty" validate:"omitempty,oneof=damaged missing"`
	Notes       string `json:"notes,omitempty"`
	PhotoURL    string `json:"photoUrl,omitempty" validate:"omitempty,url"`
}

func (p *InventoryAction) Category() Category { return CategoryInventory }
func (p *InventoryAction) Kind() string       { return p.Type }

func (p *InventoryAction) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if p.Type == "problem" && p.ProblemType == "" {
		return fmt.Errorf("%w: problem reports need a problem type", ErrValidation)
	}
	return nil
}

func (p *InventoryAction) finalize() Priority { return PriorityNormal }

// CashAction records a drawer reconciliation or an explicit shortage.
// Variance is derived once at submission and frozen.
type CashAction struct {
	Type         string          `json:"type" validate:"required,oneof=reconciliation shortage"`
	DrawerNumber string          `json:"drawerNumber" validate:"required"`
	Expected     decimal.Decimal `json:"expectedAmount"`
	Actual       decimal.Decimal `json:"actualAmount"`
	Variance     decimal.Decimal `json:"variance"`
	Notes        string          `json:"notes,omitempty"`
}

func (p *CashAction) Category() Category { return CategoryCash }
func (p *CashAction) Kind() string       { return p.Type }

func (p *CashAction) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if p.Expected.IsNegative() || p.Actual.IsNegative() {
		return fmt.Errorf("%w: drawer amounts cannot be negative", ErrValidation)
	}
	return nil
}

func (p *CashAction) finalize() Priority {
	p.Variance = p.Actual.Sub(p.Expected)
	if p.Type == "shortage" || p.Variance.LessThan(shortageThreshold) {
		return PriorityHigh
	}
	return PriorityNormal
}

// StoreAction records either an opening/closing checklist run or a
// maintenance request.
type StoreAction struct {
	Type string `json:"type" validate:"required,oneof=store_checklist maintenance_request"`

	// Checklist fields.
	ChecklistType  string          `json:"checklistType,omitempty" validate:"omitempty,oneof=open close"`
	Items          map[string]bool `json:"items,omitempty"`
	CompletedItems int             `json:"completedItems,omitempty"`
	TotalItems     int             `json:"totalItems,omitempty"`

	// Maintenance fields.
	Issue       string   `json:"issue,omitempty"`
	Location    string   `json:"location,omitempty"`
	Priority    Priority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Description string   `json:"description,omitempty"`
}

func (p *StoreAction) Category() Category { return CategoryStore }
func (p *StoreAction) Kind() string       { return p.Type }

func (p *StoreAction) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	switch p.Type {
	case "store_checklist":
		if p.ChecklistType == "" || p.TotalItems <= 0 {
			return fmt.Errorf("%w: checklist needs a type and its item count", ErrValidation)
		}
	case "maintenance_request":
		if p.Issue == "" || p.Location == "" {
			return fmt.Errorf("%w: maintenance requests need an issue and a location", ErrValidation)
		}
	}
	return nil
}

func (p *StoreAction) finalize() Priority {
	if p.Type == "store_checklist" {
		completed := 0
		for _, done := range p.Items {
			if done {
				completed++
			}
		}
		p.CompletedItems = completed
		return PriorityNormal
	}
	if p.Priority == "" {
		return PriorityNormal
	}
	return p.Priority
}
