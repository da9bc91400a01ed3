package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	statedomain "github.com/smallbiznis/coverbase/internal/state/domain"
)

// Customer is a person record captured at registration. The phone number
// is the natural de-duplication key and is unique at the storage layer.
type Customer struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	FirstName   string            `gorm:"not null" json:"first_name"`
	LastName    string            `gorm:"not null" json:"last_name"`
	Salutation  string            `gorm:"not null" json:"salutation"`
	Gender      string            `gorm:"not null" json:"gender"`
	DateOfBirth time.Time         `gorm:"not null" json:"date_of_birth"`
	PhoneNumber string            `gorm:"not null;uniqueIndex" json:"phone_number"`
	Email       string            `gorm:"not null" json:"email"`
	StateID     snowflake.ID      `gorm:"not null;index" json:"state_id"`
	State       statedomain.State `gorm:"foreignKey:StateID" json:"-"`
	CreatedAt   time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null" json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}

// DateOnly is the wire format for dates of birth.
const DateOnly = "2006-01-02"

var salutations = map[string]struct{}{
	"Prof": {}, "Dr": {}, "Mr": {}, "Mrs": {}, "Ms": {},
}

var genders = map[string]struct{}{
	"Male": {}, "Female": {}, "Other": {},
}

func ValidSalutation(v string) bool {
	_, ok := salutations[v]
	return ok
}

func ValidGender(v string) bool {
	_, ok := genders[v]
	return ok
}

type RegisterCustomerRequest struct {
	FirstName   string
	LastName    string
	PhoneNumber string
	DateOfBirth string
	Gender      string
	Salutation  string
	Email       string
}

type ListCustomersRequest struct {
	// Name matches against the derived "first last" full name.
	Name string
}

// CustomerView is the listing projection; Name is the derived full name.
type CustomerView struct {
	Name        string       `json:"name"`
	PhoneNumber string       `json:"phone_number"`
	Gender      string       `json:"gender"`
	DateOfBirth string       `json:"date_of_birth"`
	State       string       `json:"state"`
	ID          snowflake.ID `json:"id"`
	Email       string       `json:"email"`
	CreatedAt   time.Time    `json:"created_at"`
}

type Service interface {
	Register(ctx context.Context, req RegisterCustomerRequest) (Customer, error)
	List(ctx context.Context, req ListCustomersRequest) ([]CustomerView, error)
}

var (
	ErrMissingParameters  = errors.New("missing_parameters")
	ErrPhoneNumberTaken   = errors.New("phone_number_taken")
	ErrInvalidSalutation  = errors.New("invalid_salutation")
	ErrInvalidGender      = errors.New("invalid_gender")
	ErrInvalidDateOfBirth = errors.New("invalid_date_of_birth")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrNotFound           = errors.New("not_found")
)
