package branch

import (
	"github.com/smallbiznis/branchdesk/internal/branch/repository"
	"github.com/smallbiznis/branchdesk/internal/branch/service"
	"go.uber.org/fx"
)

var Module = fx.Module("branch.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
