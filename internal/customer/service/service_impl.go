package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/coverbase/internal/customer/domain"
	statedomain "github.com/smallbiznis/coverbase/internal/state/domain"
	"github.com/smallbiznis/coverbase/pkg/db"
	"github.com/smallbiznis/coverbase/pkg/db/option"
	"github.com/smallbiznis/coverbase/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	States statedomain.Service
	Repo   repository.Repository[domain.Customer]
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	states statedomain.Service
	repo   repository.Repository[domain.Customer]
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("customer.service"),
		genID:  p.GenID,
		states: p.States,
		repo:   p.Repo,
	}
}

// Register creates an Active customer. The phone number is checked across
// every lifecycle state so a Deleted customer still reserves its number.
func (s *Service) Register(ctx context.Context, req domain.RegisterCustomerRequest) (domain.Customer, error) {
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	phoneNumber := strings.TrimSpace(req.PhoneNumber)
	dateOfBirth := strings.TrimSpace(req.DateOfBirth)
	gender := strings.TrimSpace(req.Gender)
	salutation := strings.TrimSpace(req.Salutation)
	email := strings.TrimSpace(req.Email)

	if firstName == "" || lastName == "" || phoneNumber == "" || dateOfBirth == "" ||
		gender == "" || salutation == "" || email == "" {
		return domain.Customer{}, domain.ErrMissingParameters
	}
	if !domain.ValidSalutation(salutation) {
		return domain.Customer{}, domain.ErrInvalidSalutation
	}
	if !domain.ValidGender(gender) {
		return domain.Customer{}, domain.ErrInvalidGender
	}
	if !strings.Contains(email, "@") {
		return domain.Customer{}, domain.ErrInvalidEmail
	}

	dob, err := time.ParseInLocation(domain.DateOnly, dateOfBirth, time.UTC)
	if err != nil {
		return domain.Customer{}, domain.ErrInvalidDateOfBirth
	}

	existing, err := s.repo.FindOne(ctx, &domain.Customer{PhoneNumber: phoneNumber})
	if err != nil {
		return domain.Customer{}, err
	}
	if existing != nil {
		return domain.Customer{}, domain.ErrPhoneNumberTaken
	}

	activeID, err := s.states.ActiveID(ctx)
	if err != nil {
		return domain.Customer{}, err
	}

	now := time.Now().UTC()
	customer := domain.Customer{
		ID:          s.genID.Generate(),
		FirstName:   firstName,
		LastName:    lastName,
		Salutation:  salutation,
		Gender:      gender,
		DateOfBirth: dob,
		PhoneNumber: phoneNumber,
		Email:       email,
		StateID:     activeID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, &customer); err != nil {
		// The unique index is the arbiter when two registrations race.
		if db.IsDuplicateKeyErr(err) {
			return domain.Customer{}, domain.ErrPhoneNumberTaken
		}
		return domain.Customer{}, err
	}

	return customer, nil
}

// List returns every customer not in the Deleted state, newest first,
// with the full name derived from first and last name.
func (s *Service) List(ctx context.Context, req domain.ListCustomersRequest) ([]domain.CustomerView, error) {
	opts := []option.QueryOption{
		option.Joins("JOIN states ON states.id = customers.state_id"),
		option.Where("states.name <> ?", statedomain.StateDeleted),
		option.OrderBy("customers.created_at DESC"),
		option.Preload("State"),
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		// The concatenated full name participates in filtering as if it
		// were a native column.
		opts = append(opts, option.Where(
			"LOWER(customers.first_name || ' ' || customers.last_name) LIKE ?",
			"%"+strings.ToLower(name)+"%",
		))
	}

	items, err := s.repo.Find(ctx, &domain.Customer{}, opts...)
	if err != nil {
		return nil, err
	}

	views := make([]domain.CustomerView, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		views = append(views, domain.CustomerView{
			Name:        item.FirstName + " " + item.LastName,
			PhoneNumber: item.PhoneNumber,
			Gender:      item.Gender,
			DateOfBirth: item.DateOfBirth.Format(domain.DateOnly),
			State:       item.State.Name,
			ID:          item.ID,
			Email:       item.Email,
			CreatedAt:   item.CreatedAt,
		})
	}

	return views, nil
}
