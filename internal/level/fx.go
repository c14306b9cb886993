package level

import (
	"github.com/smallbiznis/branchdesk/internal/level/repository"
	"github.com/smallbiznis/branchdesk/internal/level/service"
	"go.uber.org/fx"
)

var Module = fx.Module("level.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
