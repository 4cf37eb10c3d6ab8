package api

import (
	"sync"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/taskflow/task-service/docs"
	"github.com/taskflow/task-service/internal/api/functions"
	"github.com/taskflow/task-service/internal/api/handler"
	"github.com/taskflow/task-service/internal/api/middleware"
	"github.com/taskflow/task-service/internal/core/policy"
	"github.com/taskflow/task-service/internal/core/ports"
	"github.com/taskflow/task-service/internal/infrastructure/http/handlers"
)

const (
	// Surface prefixes. Both surfaces expose the same path shapes below them.
	handlersPrefix  = "/api"
	functionsPrefix = "/api/functions"
)

// httpMetrics registers the echoprometheus collectors once per process.
var httpMetrics = sync.OnceValue(func() echo.MiddlewareFunc {
	return echoprometheus.NewMiddleware("taskflow")
})

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Users  ports.UserService
	Tasks  ports.TaskService
	Auth   ports.AuthService
	Policy *policy.Policy
	// Checks are the readiness probes keyed by dependency name.
	Checks map[string]handlers.Check
	// AnonymousObserve registers the unauthenticated add-observer routes.
	AnonymousObserve bool
	Logger           zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)
	e.Validator = handler.NewValidator()

	if deps.Policy == nil {
		deps.Policy = policy.Default()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(httpMetrics())

	// --- Operational endpoints (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authHandler := handler.NewAuthHandler(deps.Auth)
	e.POST("/auth/login", authHandler.Login)

	authenticate := middleware.Authenticate(deps.Auth)

	// --- Surface A: endpoint handlers ---
	api := e.Group(handlersPrefix, authenticate, middleware.Authorize(deps.Policy, handlersPrefix))

	userHandler := handler.NewUserHandler(deps.Users)
	api.GET(policy.ShapeUsers, userHandler.List)
	api.GET(policy.ShapeUser, userHandler.Get)
	api.POST(policy.ShapeUsers, userHandler.Create)
	api.PUT(policy.ShapeUser, userHandler.Update)
	api.DELETE(policy.ShapeUser, userHandler.Delete)

	taskHandler := handler.NewTaskHandler(deps.Tasks)
	api.GET(policy.ShapeTasks, taskHandler.List)
	api.GET(policy.ShapeTask, taskHandler.Get)
	api.POST(policy.ShapeTasks, taskHandler.Create)
	api.PUT(policy.ShapeTask, taskHandler.Update)
	api.DELETE(policy.ShapeTask, taskHandler.Delete)
	api.POST(policy.ShapeObserve, taskHandler.Observe)
	if deps.AnonymousObserve {
		api.POST(policy.ShapeAddObserver, taskHandler.AddObserver)
	}

	// --- Surface B: declarative route table ---
	fn := e.Group(functionsPrefix, authenticate, middleware.Authorize(deps.Policy, functionsPrefix))
	functions.Mount(fn, functions.Routes(deps.Users, deps.Tasks, deps.AnonymousObserve))

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
