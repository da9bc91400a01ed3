package risktype

import (
	"github.com/smallbiznis/coverbase/internal/risktype/domain"
	"github.com/smallbiznis/coverbase/internal/risktype/service"
	"github.com/smallbiznis/coverbase/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("risktype.service",
	fx.Provide(repository.ProvideStore[domain.RiskType]),
	fx.Provide(repository.ProvideStore[domain.RiskField]),
	fx.Provide(service.New),
)
