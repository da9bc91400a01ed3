package customer

import (
	"github.com/smallbiznis/coverbase/internal/customer/domain"
	"github.com/smallbiznis/coverbase/internal/customer/service"
	"github.com/smallbiznis/coverbase/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.ProvideStore[domain.Customer]),
	fx.Provide(service.New),
)
