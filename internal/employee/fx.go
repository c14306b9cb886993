package employee

import (
	"github.com/smallbiznis/branchdesk/internal/employee/repository"
	"github.com/smallbiznis/branchdesk/internal/employee/service"
	"go.uber.org/fx"
)

var Module = fx.Module("employee.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
