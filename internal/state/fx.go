package state

import (
	"github.com/smallbiznis/coverbase/internal/state/domain"
	"github.com/smallbiznis/coverbase/internal/state/service"
	"github.com/smallbiznis/coverbase/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("state.service",
	fx.Provide(repository.ProvideStore[domain.State]),
	fx.Provide(service.New),
)
