package workspace

import (
	"github.com/smallbiznis/entitle/internal/workspace/client"
	"github.com/smallbiznis/entitle/internal/workspace/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("workspace",
	fx.Provide(repository.Provide),
	fx.Provide(client.NewDestroyer),
)
