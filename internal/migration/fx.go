package migration

import (
	activitydomain "github.com/opendao/assembly/internal/activity/domain"
	"github.com/opendao/assembly/internal/config"
	"github.com/opendao/assembly/internal/events"
	organizationdomain "github.com/opendao/assembly/internal/organization/domain"
	proposaldomain "github.com/opendao/assembly/internal/proposal/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "sqlite" {
			// golang-migrate has no driver for the pure-Go sqlite build;
			// sqlite is a dev/test convenience, so gorm's migrator serves.
			return conn.AutoMigrate(
				&organizationdomain.Organization{},
				&organizationdomain.Member{},
				&proposaldomain.Proposal{},
				&proposaldomain.Vote{},
				&activitydomain.Activity{},
				&events.GovernanceEvent{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB, cfg.DBType)
	}),
)
