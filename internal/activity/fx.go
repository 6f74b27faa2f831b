package activity

import (
	"github.com/opendao/assembly/internal/activity/repository"
	"github.com/opendao/assembly/internal/activity/service"
	"go.uber.org/fx"
)

var Module = fx.Module("activity.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
