package migration

import (
	"github.com/smallbiznis/remag/internal/config"
	settlementdomain "github.com/smallbiznis/remag/internal/settlement/domain"
	"github.com/smallbiznis/remag/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if !cfg.MigrationsEnabled {
			log.Info("migrations disabled")
			return nil
		}

		// Local sqlite databases have no versioned schema; the models define it.
		if cfg.DBType == db.TypeSQLite {
			return conn.AutoMigrate(&settlementdomain.Settlement{})
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		if err := RunMigrations(sqlDB, cfg.DBType); err != nil {
			return err
		}
		log.Info("migrations applied", zap.String("dialect", cfg.DBType))
		return nil
	}),
)
