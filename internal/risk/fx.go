package risk

import (
	"github.com/smallbiznis/coverbase/internal/risk/domain"
	"github.com/smallbiznis/coverbase/internal/risk/service"
	"github.com/smallbiznis/coverbase/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("risk.service",
	fx.Provide(repository.ProvideStore[domain.Risk]),
	fx.Provide(repository.ProvideStore[domain.RiskData]),
	fx.Provide(service.New),
)
