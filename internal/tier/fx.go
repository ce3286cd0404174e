package tier

import (
	"github.com/smallbiznis/entitle/internal/tier/repository"
	"github.com/smallbiznis/entitle/internal/tier/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tier.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
