package commission

import (
	"github.com/smallbiznis/remag/internal/commission/service"
	"go.uber.org/fx"
)

var Module = fx.Module("commission.engine",
	fx.Provide(service.NewEngine),
)
