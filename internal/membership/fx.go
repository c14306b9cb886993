package membership

import (
	"github.com/smallbiznis/branchdesk/internal/membership/pricing"
	"github.com/smallbiznis/branchdesk/internal/membership/repository"
	"github.com/smallbiznis/branchdesk/internal/membership/service"
	"go.uber.org/fx"
)

var Module = fx.Module("membership.service",
	fx.Provide(pricing.NewCalculator),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
