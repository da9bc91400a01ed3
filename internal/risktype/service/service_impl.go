package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/coverbase/internal/risktype/domain"
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
	Types  repository.Repository[domain.RiskType]
	Fields repository.Repository[domain.RiskField]
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	states statedomain.Service
	types  repository.Repository[domain.RiskType]
	fields repository.Repository[domain.RiskField]
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("risktype.service"),
		genID:  p.GenID,
		states: p.States,
		types:  p.Types,
		fields: p.Fields,
	}
}

// List returns every risk type not in the Deleted state, newest first.
func (s *Service) List(ctx context.Context) ([]domain.RiskTypeView, error) {
	items, err := s.types.Find(ctx, &domain.RiskType{},
		option.Joins("JOIN states ON states.id = risk_types.state_id"),
		option.Where("states.name <> ?", statedomain.StateDeleted),
		option.OrderBy("risk_types.created_at DESC"),
		option.Preload("State"),
	)
	if err != nil {
		return nil, err
	}

	views := make([]domain.RiskTypeView, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		views = append(views, domain.RiskTypeView{
			Name:        item.Name,
			Description: item.Description,
			State:       item.State.Name,
			ID:          item.ID,
			HasForm:     item.HasForm,
			CreatedAt:   item.CreatedAt,
		})
	}

	return views, nil
}

// Get accepts either an id or a name. When several risk types share the
// name, the most recently created one wins.
func (s *Service) Get(ctx context.Context, idOrName string) (domain.RiskTypeDetail, error) {
	idOrName = strings.TrimSpace(idOrName)
	if idOrName == "" {
		return domain.RiskTypeDetail{}, domain.ErrRiskTypeRequired
	}

	where := option.Where("risk_types.name = ?", idOrName)
	if id, err := snowflake.ParseString(idOrName); err == nil {
		where = option.Where("risk_types.id = ? OR risk_types.name = ?", id, idOrName)
	}

	riskType, err := s.types.FindOne(ctx, &domain.RiskType{},
		where,
		option.OrderBy("risk_types.created_at DESC"),
	)
	if err != nil {
		return domain.RiskTypeDetail{}, err
	}
	if riskType == nil {
		return domain.RiskTypeDetail{}, domain.ErrNotFound
	}

	fields, err := s.ActiveFields(ctx, riskType.ID)
	if err != nil {
		return domain.RiskTypeDetail{}, err
	}

	views := make([]domain.RiskFieldView, 0, len(fields))
	for _, field := range fields {
		views = append(views, domain.RiskFieldView{
			Caption:       field.Caption,
			FieldType:     field.FieldType,
			Order:         field.Order,
			MinLength:     field.MinLength,
			MaxLength:     field.MaxLength,
			DecimalPlaces: field.DecimalPlaces,
			Nullable:      field.Nullable,
			DefaultValue:  field.DefaultValue,
			ID:            field.ID,
		})
	}

	return domain.RiskTypeDetail{
		RiskType:   domain.RiskTypeRef{Name: riskType.Name, ID: riskType.ID},
		RiskFields: views,
	}, nil
}

// ActiveFields returns the Active fields of a risk type in rendering order.
func (s *Service) ActiveFields(ctx context.Context, riskTypeID snowflake.ID) ([]*domain.RiskField, error) {
	return s.fields.Find(ctx, &domain.RiskField{RiskTypeID: riskTypeID},
		option.Joins("JOIN states ON states.id = risk_fields.state_id"),
		option.Where("states.name = ?", statedomain.StateActive),
		option.OrderBy("risk_fields.display_order ASC"),
	)
}

// Upsert creates a risk type by name or revives/updates the newest
// existing one. The read-then-write sequence runs inside one transaction
// with a row lock on the matched record where the dialect supports it;
// a first-ever insert under the same name can still race, which the
// newest-wins lookup rule absorbs.
func (s *Service) Upsert(ctx context.Context, req domain.UpsertRiskTypeRequest) (domain.UpsertResult, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.UpsertResult{}, domain.ErrNameRequired
	}
	description := strings.TrimSpace(req.Description)

	activeID, err := s.states.ActiveID(ctx)
	if err != nil {
		return domain.UpsertResult{}, err
	}

	var result domain.UpsertResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		types := s.types.WithTrx(tx)

		opts := []option.QueryOption{
			option.Where("name = ?", name),
			option.OrderBy("created_at DESC"),
		}
		if db.SupportsRowLocking(tx) {
			opts = append(opts, option.LockForUpdate())
		}

		existing, err := types.FindOne(ctx, &domain.RiskType{}, opts...)
		if err != nil {
			return err
		}

		if existing == nil {
			now := time.Now().UTC()
			riskType := domain.RiskType{
				ID:          s.genID.Generate(),
				Name:        name,
				Description: description,
				StateID:     activeID,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := types.Create(ctx, &riskType); err != nil {
				return err
			}
			result = domain.UpsertResult{RiskType: riskType, Created: true}
			return nil
		}

		updates := map[string]any{
			"description": description,
			"updated_at":  time.Now().UTC(),
		}
		if existing.StateID != activeID {
			// Reactivate a previously deleted product under the same name.
			updates["state_id"] = activeID
		}

		updated, err := types.Update(ctx, existing.ID, updates)
		if err != nil {
			return err
		}
		if updated == nil {
			return domain.ErrNotFound
		}

		result = domain.UpsertResult{RiskType: *updated, Created: false}
		return nil
	})
	if err != nil {
		return domain.UpsertResult{}, err
	}

	return result, nil
}

// AttachFields persists the full field set of a risk type and freezes its
// schema, all inside one transaction. Partial field sets never persist.
func (s *Service) AttachFields(ctx context.Context, req domain.AttachFieldsRequest) error {
	riskTypeID := strings.TrimSpace(req.RiskTypeID)
	if riskTypeID == "" || len(req.Fields) == 0 {
		return domain.ErrMissingFields
	}

	id, err := snowflake.ParseString(riskTypeID)
	if err != nil {
		return domain.ErrNotFound
	}

	activeID, err := s.states.ActiveID(ctx)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		types := s.types.WithTrx(tx)
		fields := s.fields.WithTrx(tx)

		opts := []option.QueryOption{
			option.Joins("JOIN states ON states.id = risk_types.state_id"),
			option.Where("risk_types.id = ? AND states.name <> ?", id, statedomain.StateDeleted),
		}
		if db.SupportsRowLocking(tx) {
			// Excludes a concurrent AttachFields on the same risk type
			// for the duration of the read-then-freeze sequence.
			opts = append(opts, option.LockForUpdate())
		}

		riskType, err := types.FindOne(ctx, &domain.RiskType{}, opts...)
		if err != nil {
			return err
		}
		if riskType == nil {
			return domain.ErrNotFound
		}
		if riskType.HasForm {
			return domain.ErrFormAlreadyDefined
		}

		now := time.Now().UTC()
		rows := make([]*domain.RiskField, 0, len(req.Fields))
		for order, def := range req.Fields {
			fieldType, err := domain.ParseFieldType(strings.TrimSpace(def.FieldType))
			if err != nil {
				return err
			}
			caption := strings.TrimSpace(def.Caption)
			if caption == "" {
				return domain.ErrFieldCaptionMissing
			}

			rows = append(rows, &domain.RiskField{
				ID:            s.genID.Generate(),
				RiskTypeID:    riskType.ID,
				FieldType:     fieldType,
				Caption:       caption,
				MinLength:     intOrDefault(def.MinLength, domain.DefaultMinLength),
				MaxLength:     intOrDefault(def.MaxLength, domain.DefaultMaxLength),
				Nullable:      def.Nullable,
				MaxDigits:     intOrDefault(def.MaxDigits, domain.DefaultMaxDigits),
				DecimalPlaces: intOrDefault(def.DecimalPlaces, domain.DefaultDecimalPlaces),
				DefaultValue:  strings.TrimSpace(def.DefaultValue),
				Order:         order,
				StateID:       activeID,
				CreatedAt:     now,
				UpdatedAt:     now,
			})
		}

		if err := fields.BatchCreate(ctx, rows); err != nil {
			return err
		}

		updated, err := types.Update(ctx, riskType.ID, map[string]any{
			"has_form":   true,
			"updated_at": now,
		})
		if err != nil {
			return err
		}
		if updated == nil {
			return domain.ErrNotFound
		}

		return nil
	})
}

func intOrDefault(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
