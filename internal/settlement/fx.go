package settlement

import (
	"github.com/smallbiznis/remag/internal/settlement/repository"
	"github.com/smallbiznis/remag/internal/settlement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("settlement.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
