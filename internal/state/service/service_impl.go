package service

import (
	"context"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/coverbase/internal/state/domain"
	"github.com/smallbiznis/coverbase/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo repository.Repository[domain.State]
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo repository.Repository[domain.State]

	mu    sync.RWMutex
	cache map[string]domain.State
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("state.service"),
		repo:  p.Repo,
		cache: make(map[string]domain.State),
	}
}

// GetByName resolves a lifecycle state by its name. States are seeded at
// startup and effectively immutable, so resolved rows are cached.
func (s *Service) GetByName(ctx context.Context, name string) (domain.State, error) {
	s.mu.RLock()
	cached, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	item, err := s.repo.FindOne(ctx, &domain.State{Name: name})
	if err != nil {
		return domain.State{}, err
	}
	if item == nil {
		return domain.State{}, domain.ErrUnknownState
	}

	s.mu.Lock()
	s.cache[name] = *item
	s.mu.Unlock()

	return *item, nil
}

func (s *Service) ActiveID(ctx context.Context) (snowflake.ID, error) {
	state, err := s.GetByName(ctx, domain.StateActive)
	if err != nil {
		return 0, err
	}
	return state.ID, nil
}

func (s *Service) DeletedID(ctx context.Context) (snowflake.ID, error) {
	state, err := s.GetByName(ctx, domain.StateDeleted)
	if err != nil {
		return 0, err
	}
	return state.ID, nil
}
