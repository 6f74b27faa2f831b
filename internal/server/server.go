package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/opendao/assembly/internal/activity"
	activitydomain "github.com/opendao/assembly/internal/activity/domain"
	"github.com/opendao/assembly/internal/config"
	"github.com/opendao/assembly/internal/events"
	"github.com/opendao/assembly/internal/observability"
	obsmiddleware "github.com/opendao/assembly/internal/observability/logger"
	obsmetrics "github.com/opendao/assembly/internal/observability/metrics"
	obstracing "github.com/opendao/assembly/internal/observability/tracing"
	"github.com/opendao/assembly/internal/organization"
	organizationdomain "github.com/opendao/assembly/internal/organization/domain"
	"github.com/opendao/assembly/internal/proposal"
	proposaldomain "github.com/opendao/assembly/internal/proposal/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	events.Module,
	activity.Module,
	organization.Module,
	proposal.Module,
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
	r.Use(obstracing.GinMiddleware())
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

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
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
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	genID           *snowflake.Node
	organizationSvc organizationdomain.Service
	proposalSvc     proposaldomain.Service
	activitySvc     activitydomain.Service
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	OrganizationSvc organizationdomain.Service
	ProposalSvc     proposaldomain.Service
	ActivitySvc     activitydomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		organizationSvc: p.OrganizationSvc,
		proposalSvc:     p.ProposalSvc,
		activitySvc:     p.ActivitySvc,
	}

	svc.registerAPIRoutes()
	svc.registerUIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.GET("/stats", s.GetStats)

	// -------- Organizations --------
	daos := api.Group("/daos")
	daos.POST("", s.CreateOrganization)
	daos.GET("", s.ListOrganizations)
	daos.GET("/:id", s.GetOrganizationByID)

	// -------- Members --------
	daos.GET("/:id/members", s.ListMembers)
	daos.POST("/:id/members", s.InviteMember)

	// -------- Treasury --------
	daos.POST("/:id/treasury", s.FundTreasury)

	// -------- Proposals & votes --------
	daos.GET("/:id/proposals", s.ListProposals)
	daos.POST("/:id/proposals", s.CreateProposal)
	daos.GET("/:id/proposals/:pid", s.GetProposalByID)
	daos.POST("/:id/proposals/:pid/vote", s.CastVote)

	// -------- Activity trail --------
	daos.GET("/:id/activity", s.ListActivity)
}
