package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/smallbiznis/coverbase/internal/customer/domain"
	risktypedomain "github.com/smallbiznis/coverbase/internal/risktype/domain"
	statedomain "github.com/smallbiznis/coverbase/internal/state/domain"
)

// Risk links one customer to one risk type they subscribed to.
type Risk struct {
	ID         snowflake.ID            `gorm:"primaryKey" json:"id"`
	CustomerID snowflake.ID            `gorm:"not null;index" json:"customer_id"`
	Customer   customerdomain.Customer `gorm:"foreignKey:CustomerID" json:"-"`
	RiskTypeID snowflake.ID            `gorm:"not null;index" json:"risk_type_id"`
	RiskType   risktypedomain.RiskType `gorm:"foreignKey:RiskTypeID" json:"-"`
	StateID    snowflake.ID            `gorm:"not null;index" json:"state_id"`
	State      statedomain.State       `gorm:"foreignKey:StateID" json:"-"`
	CreatedAt  time.Time               `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time               `gorm:"not null" json:"updated_at"`
}

func (Risk) TableName() string {
	return "risks"
}

// RiskData is the value a customer supplied for one field of their risk.
type RiskData struct {
	ID          snowflake.ID             `gorm:"primaryKey" json:"id"`
	RiskID      snowflake.ID             `gorm:"not null;index" json:"risk_id"`
	RiskFieldID snowflake.ID             `gorm:"not null;index" json:"risk_field_id"`
	RiskField   risktypedomain.RiskField `gorm:"foreignKey:RiskFieldID" json:"-"`
	Value       string                   `gorm:"not null" json:"value"`
	StateID     snowflake.ID             `gorm:"not null;index" json:"state_id"`
	State       statedomain.State        `gorm:"foreignKey:StateID" json:"-"`
	CreatedAt   time.Time                `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time                `gorm:"not null" json:"updated_at"`
}

func (RiskData) TableName() string {
	return "risk_data"
}

type SubscribeRequest struct {
	CustomerID string
	RiskTypeID string
	// Values keys are risk field ids as strings.
	Values map[string]string
}

type RiskDataView struct {
	Caption   string                   `json:"caption"`
	FieldType risktypedomain.FieldType `json:"field_type"`
	Value     string                   `json:"value"`
}

type RiskView struct {
	ID        snowflake.ID   `json:"id"`
	RiskType  string         `json:"risk_type"`
	Customer  string         `json:"customer"`
	CreatedAt time.Time      `json:"created_at"`
	Data      []RiskDataView `json:"data"`
}

type Service interface {
	// Subscribe registers a customer's cover, interpreting the risk
	// type's field schema to validate the submitted values.
	Subscribe(ctx context.Context, req SubscribeRequest) (Risk, error)
	ListByCustomer(ctx context.Context, customerID string) ([]RiskView, error)
}

var (
	ErrMissingParameters = errors.New("missing_parameters")
	ErrCustomerNotFound  = errors.New("customer_not_found")
	ErrRiskTypeNotFound  = errors.New("risk_type_not_found")
	ErrFormNotDefined    = errors.New("form_not_defined")
	ErrNotFound          = errors.New("risk_not_found")
)

// ValueError reports a submitted value that fails its field's constraints.
type ValueError struct {
	Caption string
	Reason  string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("invalid value for %q: %s", e.Caption, e.Reason)
}
