package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/smallbiznis/coverbase/internal/customer/domain"
	"github.com/smallbiznis/coverbase/internal/risk/domain"
	risktypedomain "github.com/smallbiznis/coverbase/internal/risktype/domain"
	statedomain "github.com/smallbiznis/coverbase/internal/state/domain"
	"github.com/smallbiznis/coverbase/pkg/db/option"
	"github.com/smallbiznis/coverbase/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	States    statedomain.Service
	RiskTypes risktypedomain.Service
	Customers repository.Repository[customerdomain.Customer]
	Risks     repository.Repository[domain.Risk]
	Data      repository.Repository[domain.RiskData]
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	states    statedomain.Service
	riskTypes risktypedomain.Service
	customers repository.Repository[customerdomain.Customer]
	risks     repository.Repository[domain.Risk]
	data      repository.Repository[domain.RiskData]
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("risk.service"),
		genID:     p.GenID,
		states:    p.States,
		riskTypes: p.RiskTypes,
		customers: p.Customers,
		risks:     p.Risks,
		data:      p.Data,
	}
}

// Subscribe validates the submitted values against the risk type's field
// schema and persists the Risk with its RiskData in one transaction.
func (s *Service) Subscribe(ctx context.Context, req domain.SubscribeRequest) (domain.Risk, error) {
	customerRaw := strings.TrimSpace(req.CustomerID)
	riskTypeRaw := strings.TrimSpace(req.RiskTypeID)
	if customerRaw == "" || riskTypeRaw == "" {
		return domain.Risk{}, domain.ErrMissingParameters
	}

	customerID, err := snowflake.ParseString(customerRaw)
	if err != nil {
		return domain.Risk{}, domain.ErrCustomerNotFound
	}

	customer, err := s.customers.FindOne(ctx, &customerdomain.Customer{},
		option.Joins("JOIN states ON states.id = customers.state_id"),
		option.Where("customers.id = ? AND states.name <> ?", customerID, statedomain.StateDeleted),
	)
	if err != nil {
		return domain.Risk{}, err
	}
	if customer == nil {
		return domain.Risk{}, domain.ErrCustomerNotFound
	}

	detail, err := s.riskTypes.Get(ctx, riskTypeRaw)
	if err != nil {
		if errors.Is(err, risktypedomain.ErrNotFound) {
			return domain.Risk{}, domain.ErrRiskTypeNotFound
		}
		return domain.Risk{}, err
	}

	fields, err := s.riskTypes.ActiveFields(ctx, detail.RiskType.ID)
	if err != nil {
		return domain.Risk{}, err
	}
	if len(fields) == 0 {
		return domain.Risk{}, domain.ErrFormNotDefined
	}

	activeID, err := s.states.ActiveID(ctx)
	if err != nil {
		return domain.Risk{}, err
	}

	now := time.Now().UTC()
	risk := domain.Risk{
		ID:         s.genID.Generate(),
		CustomerID: customer.ID,
		RiskTypeID: detail.RiskType.ID,
		StateID:    activeID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	rows := make([]*domain.RiskData, 0, len(fields))
	for _, field := range fields {
		value := strings.TrimSpace(req.Values[field.ID.String()])
		if value == "" {
			value = field.DefaultValue
		}
		if value == "" {
			if field.Nullable {
				continue
			}
			return domain.Risk{}, &domain.ValueError{Caption: field.Caption, Reason: "is required"}
		}
		if err := validateValue(field, value); err != nil {
			return domain.Risk{}, err
		}

		rows = append(rows, &domain.RiskData{
			ID:          s.genID.Generate(),
			RiskID:      risk.ID,
			RiskFieldID: field.ID,
			Value:       value,
			StateID:     activeID,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.risks.WithTrx(tx).Create(ctx, &risk); err != nil {
			return err
		}
		return s.data.WithTrx(tx).BatchCreate(ctx, rows)
	})
	if err != nil {
		return domain.Risk{}, err
	}

	return risk, nil
}

// ListByCustomer returns the customer's non-Deleted covers with their
// submitted values in field rendering order.
func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]domain.RiskView, error) {
	raw := strings.TrimSpace(customerID)
	if raw == "" {
		return nil, domain.ErrCustomerNotFound
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return nil, domain.ErrCustomerNotFound
	}

	customer, err := s.customers.FindOne(ctx, &customerdomain.Customer{},
		option.Joins("JOIN states ON states.id = customers.state_id"),
		option.Where("customers.id = ? AND states.name <> ?", id, statedomain.StateDeleted),
	)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrCustomerNotFound
	}

	risks, err := s.risks.Find(ctx, &domain.Risk{CustomerID: customer.ID},
		option.Joins("JOIN states ON states.id = risks.state_id"),
		option.Where("states.name <> ?", statedomain.StateDeleted),
		option.OrderBy("risks.created_at DESC"),
		option.Preload("RiskType"),
	)
	if err != nil {
		return nil, err
	}

	fullName := customer.FirstName + " " + customer.LastName
	views := make([]domain.RiskView, 0, len(risks))
	for _, risk := range risks {
		if risk == nil {
			continue
		}

		data, err := s.data.Find(ctx, &domain.RiskData{RiskID: risk.ID},
			option.Joins("JOIN risk_fields ON risk_fields.id = risk_data.risk_field_id"),
			option.OrderBy("risk_fields.display_order ASC"),
			option.Preload("RiskField"),
		)
		if err != nil {
			return nil, err
		}

		dataViews := make([]domain.RiskDataView, 0, len(data))
		for _, item := range data {
			if item == nil {
				continue
			}
			dataViews = append(dataViews, domain.RiskDataView{
				Caption:   item.RiskField.Caption,
				FieldType: item.RiskField.FieldType,
				Value:     item.Value,
			})
		}

		views = append(views, domain.RiskView{
			ID:        risk.ID,
			RiskType:  risk.RiskType.Name,
			Customer:  fullName,
			CreatedAt: risk.CreatedAt,
			Data:      dataViews,
		})
	}

	return views, nil
}
