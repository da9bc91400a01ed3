package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	statedomain "github.com/smallbiznis/coverbase/internal/state/domain"
)

// RiskType is an insurance product. Names are not unique at the storage
// layer; collisions are resolved by business rules (newest wins, and the
// upsert reuses the existing row).
type RiskType struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name        string            `gorm:"not null;index" json:"name"`
	Description string            `json:"description,omitempty"`
	StateID     snowflake.ID      `gorm:"not null;index" json:"state_id"`
	State       statedomain.State `gorm:"foreignKey:StateID" json:"-"`
	// HasForm freezes the field schema; once set, no further fields may
	// be attached.
	HasForm   bool      `gorm:"not null;default:false" json:"has_form"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (RiskType) TableName() string {
	return "risk_types"
}

// FieldType enumerates the widget types a dynamic form field can carry.
type FieldType string

const (
	FieldTypeText   FieldType = "text"
	FieldTypeNumber FieldType = "number"
	FieldTypeDate   FieldType = "date"
	FieldTypeEmail  FieldType = "email"
	FieldTypeFile   FieldType = "file"
)

func ParseFieldType(v string) (FieldType, error) {
	switch FieldType(v) {
	case FieldTypeText, FieldTypeNumber, FieldTypeDate, FieldTypeEmail, FieldTypeFile:
		return FieldType(v), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFieldType, v)
	}
}

// RiskField is one form field of a RiskType. Order is the zero-based
// rendering position, unique within the risk type.
type RiskField struct {
	ID            snowflake.ID      `gorm:"primaryKey" json:"id"`
	RiskTypeID    snowflake.ID      `gorm:"not null;index" json:"risk_type_id"`
	FieldType     FieldType         `gorm:"not null" json:"field_type"`
	Caption       string            `gorm:"not null" json:"caption"`
	MinLength     int               `gorm:"not null;default:0" json:"min_length"`
	MaxLength     int               `gorm:"not null;default:255" json:"max_length"`
	Nullable      bool              `gorm:"not null;default:false" json:"nullable"`
	MaxDigits     int               `gorm:"not null;default:20" json:"max_digits"`
	DecimalPlaces int               `gorm:"not null;default:2" json:"decimal_places"`
	DefaultValue  string            `json:"default_value,omitempty"`
	Order         int               `gorm:"column:display_order;not null" json:"order"`
	StateID       snowflake.ID      `gorm:"not null;index" json:"state_id"`
	State         statedomain.State `gorm:"foreignKey:StateID" json:"-"`
	CreatedAt     time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"not null" json:"updated_at"`
}

func (RiskField) TableName() string {
	return "risk_fields"
}

// Storage defaults applied when a field definition omits its constraints.
const (
	DefaultMinLength     = 0
	DefaultMaxLength     = 255
	DefaultMaxDigits     = 20
	DefaultDecimalPlaces = 2
)

type RiskTypeView struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	State       string       `json:"state"`
	ID          snowflake.ID `json:"id"`
	HasForm     bool         `json:"has_form"`
	CreatedAt   time.Time    `json:"created_at"`
}

type RiskFieldView struct {
	Caption       string       `json:"caption"`
	FieldType     FieldType    `json:"field_type"`
	Order         int          `json:"order"`
	MinLength     int          `json:"min_length"`
	MaxLength     int          `json:"max_length"`
	DecimalPlaces int          `json:"decimal_places"`
	Nullable      bool         `json:"nullable"`
	DefaultValue  string       `json:"default_value"`
	ID            snowflake.ID `json:"id"`
}

type RiskTypeRef struct {
	Name string       `json:"name"`
	ID   snowflake.ID `json:"id"`
}

type RiskTypeDetail struct {
	RiskType   RiskTypeRef     `json:"risk_type"`
	RiskFields []RiskFieldView `json:"risk_fields"`
}

type UpsertRiskTypeRequest struct {
	Name        string
	Description string
}

// UpsertResult reports which terminal path the upsert took so the
// boundary can phrase its message.
type UpsertResult struct {
	RiskType RiskType
	Created  bool
}

// FieldDefinition is one entry of an attach-fields request. Constraint
// attributes are optional and fall back to the storage defaults.
type FieldDefinition struct {
	FieldType     string `json:"field_type"`
	Caption       string `json:"caption"`
	DefaultValue  string `json:"default_value"`
	MinLength     *int   `json:"min_length"`
	MaxLength     *int   `json:"max_length"`
	Nullable      bool   `json:"nullable"`
	MaxDigits     *int   `json:"max_digits"`
	DecimalPlaces *int   `json:"decimal_places"`
}

type AttachFieldsRequest struct {
	RiskTypeID string
	Fields     []FieldDefinition
}

type Service interface {
	List(ctx context.Context) ([]RiskTypeView, error)
	// Get resolves a risk type by id or name and returns it with its
	// Active fields in rendering order.
	Get(ctx context.Context, idOrName string) (RiskTypeDetail, error)
	Upsert(ctx context.Context, req UpsertRiskTypeRequest) (UpsertResult, error)
	AttachFields(ctx context.Context, req AttachFieldsRequest) error
	// ActiveFields exposes the interpreted field schema to collaborators
	// that validate customer submissions against it.
	ActiveFields(ctx context.Context, riskTypeID snowflake.ID) ([]*RiskField, error)
}

var (
	ErrRiskTypeRequired    = errors.New("risk_type_required")
	ErrNotFound            = errors.New("risk_type_not_found")
	ErrNameRequired        = errors.New("risk_type_name_required")
	ErrMissingFields       = errors.New("risk_type_fields_missing")
	ErrFormAlreadyDefined  = errors.New("form_already_defined")
	ErrInvalidFieldType    = errors.New("invalid_field_type")
	ErrFieldCaptionMissing = errors.New("field_caption_missing")
)
