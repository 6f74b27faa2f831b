package organization

import (
	"github.com/opendao/assembly/internal/organization/repository"
	"github.com/opendao/assembly/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
