package proposal

import (
	"github.com/opendao/assembly/internal/proposal/repository"
	"github.com/opendao/assembly/internal/proposal/service"
	"go.uber.org/fx"
)

var Module = fx.Module("proposal.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
