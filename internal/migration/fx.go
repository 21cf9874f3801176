package migration

import (
	"github.com/shopstack/shopstack/internal/config"
	"github.com/shopstack/shopstack/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, catalog *config.PlanCatalogHolder) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql dev setups run off the model definitions.
			if err := seed.AutoMigrate(conn); err != nil {
				return err
			}
		}

		return seed.EnsurePlanCatalog(conn, catalog.Current())
	}),
)
