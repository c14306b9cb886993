package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/branchdesk/internal/access"
	accessdomain "github.com/smallbiznis/branchdesk/internal/access/domain"
	"github.com/smallbiznis/branchdesk/internal/auth"
	authdomain "github.com/smallbiznis/branchdesk/internal/auth/domain"
	"github.com/smallbiznis/branchdesk/internal/auth/session"
	"github.com/smallbiznis/branchdesk/internal/authorization"
	"github.com/smallbiznis/branchdesk/internal/branch"
	branchdomain "github.com/smallbiznis/branchdesk/internal/branch/domain"
	"github.com/smallbiznis/branchdesk/internal/config"
	"github.com/smallbiznis/branchdesk/internal/customer"
	customerdomain "github.com/smallbiznis/branchdesk/internal/customer/domain"
	"github.com/smallbiznis/branchdesk/internal/employee"
	employeedomain "github.com/smallbiznis/branchdesk/internal/employee/domain"
	"github.com/smallbiznis/branchdesk/internal/invoice"
	invoicedomain "github.com/smallbiznis/branchdesk/internal/invoice/domain"
	"github.com/smallbiznis/branchdesk/internal/level"
	leveldomain "github.com/smallbiznis/branchdesk/internal/level/domain"
	"github.com/smallbiznis/branchdesk/internal/membership"
	membershipdomain "github.com/smallbiznis/branchdesk/internal/membership/domain"
	"github.com/smallbiznis/branchdesk/internal/observability"
	obsmiddleware "github.com/smallbiznis/branchdesk/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/branchdesk/internal/observability/metrics"
	"github.com/smallbiznis/branchdesk/internal/providers/email"
	"github.com/smallbiznis/branchdesk/internal/ratelimit"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	auth.Module,
	session.Module,
	access.Module,
	customer.Module,
	branch.Module,
	employee.Module,
	level.Module,
	membership.Module,
	invoice.Module,
	email.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	db             *gorm.DB
	genID          *snowflake.Node
	sessions       *session.Manager
	authsvc        authdomain.Service
	authzSvc       authorization.Service
	accessSvc      accessdomain.Service
	customerSvc    customerdomain.Service
	branchSvc      branchdomain.Service
	employeeSvc    employeedomain.Service
	levelSvc       leveldomain.Service
	membershipSvc  membershipdomain.Service
	invoiceSvc     invoicedomain.Service
	paymentLimiter *ratelimit.PaymentLimiter
	obsMetrics     *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	DB             *gorm.DB
	GenID          *snowflake.Node
	Sessions       *session.Manager
	Authsvc        authdomain.Service
	AuthzSvc       authorization.Service
	AccessSvc      accessdomain.Service
	CustomerSvc    customerdomain.Service
	BranchSvc      branchdomain.Service
	EmployeeSvc    employeedomain.Service
	LevelSvc       leveldomain.Service
	MembershipSvc  membershipdomain.Service
	InvoiceSvc     invoicedomain.Service
	PaymentLimiter *ratelimit.PaymentLimiter `optional:"true"`
	ObsMetrics     *obsmetrics.Metrics       `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		db:             p.DB,
		genID:          p.GenID,
		sessions:       p.Sessions,
		authsvc:        p.Authsvc,
		authzSvc:       p.AuthzSvc,
		accessSvc:      p.AccessSvc,
		customerSvc:    p.CustomerSvc,
		branchSvc:      p.BranchSvc,
		employeeSvc:    p.EmployeeSvc,
		levelSvc:       p.LevelSvc,
		membershipSvc:  p.MembershipSvc,
		invoiceSvc:     p.InvoiceSvc,
		paymentLimiter: p.PaymentLimiter,
		obsMetrics:     p.ObsMetrics,
	}

	svc.registerAuthRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.POST("/change-password", s.AuthRequired(), s.ChangePassword)
	auth.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAdminRoutes() {
	v1 := s.engine.Group("/v1", s.AuthRequired())

	v1.GET("/customers", s.ListCustomers)
	v1.POST("/customers", s.CreateCustomer)
	v1.GET("/customers/:id", s.GetCustomer)
	v1.POST("/customers/:id/archive", s.ArchiveCustomer)

	v1.GET("/branches", s.ListBranches)
	v1.POST("/branches", s.CreateBranch)
	v1.GET("/branches/:id", s.GetBranch)
	v1.PATCH("/branches/:id", s.UpdateBranch)
	v1.POST("/branches/:id/archive", s.ArchiveBranch)
	v1.GET("/branches/:id/membership", s.GetBranchMembership)

	v1.GET("/employees", s.ListEmployees)
	v1.POST("/employees", s.CreateEmployee)
	v1.POST("/employees/:id/deactivate", s.DeactivateEmployee)

	v1.GET("/levels", s.ListLevels)
	v1.POST("/levels", s.CreateLevel)
	v1.GET("/levels/:id", s.GetLevel)
	v1.PATCH("/levels/:id", s.UpdateLevel)

	v1.GET("/memberships", s.ListMemberships)
	v1.POST("/memberships/quote", s.QuoteUpgrade)
	v1.POST("/memberships/upgrade", s.UpgradeMembership)

	v1.GET("/invoices", s.ListInvoices)
	v1.GET("/invoices/:id", s.GetInvoice)
	v1.POST("/invoices/:id/pay", s.PayInvoice)
	v1.POST("/invoices/:id/validate", s.ValidateInvoice)
	v1.POST("/invoices/:id/cancel", s.CancelInvoice)
}
