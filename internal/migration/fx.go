package migration

import (
	"github.com/smallbiznis/coverbase/internal/config"
	customerdomain "github.com/smallbiznis/coverbase/internal/customer/domain"
	riskdomain "github.com/smallbiznis/coverbase/internal/risk/domain"
	risktypedomain "github.com/smallbiznis/coverbase/internal/risktype/domain"
	"github.com/smallbiznis/coverbase/internal/seed"
	statedomain "github.com/smallbiznis/coverbase/internal/state/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// MySQL and SQLite deployments are for local development;
			// gorm derives the schema there.
			if err := conn.AutoMigrate(
				&statedomain.State{},
				&customerdomain.Customer{},
				&risktypedomain.RiskType{},
				&risktypedomain.RiskField{},
				&riskdomain.Risk{},
				&riskdomain.RiskData{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureStates(conn)
	}),
)
