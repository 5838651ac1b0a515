package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/hibiken/asynq"

	"github.com/femar/gestao/internal/alert"
	"github.com/femar/gestao/internal/documents"
	"github.com/femar/gestao/internal/finance"
	"github.com/femar/gestao/internal/observability"
	"github.com/femar/gestao/internal/platform/cache"
	"github.com/femar/gestao/internal/rbac"
	"github.com/femar/gestao/internal/security"
	securityhttp "github.com/femar/gestao/internal/security/http"
	"github.com/femar/gestao/internal/users"
	"github.com/femar/gestao/jobs"
)

// Container wires the console's in-memory state and services.
type Container struct {
	Config          *Config
	Logger          *slog.Logger
	Metrics         *observability.Metrics
	SecurityMetrics *observability.SecurityMetrics

	Log        *security.Log
	Classifier *security.Classifier
	Recorder   *security.Recorder
	Workflow   *security.Workflow
	Matrix     *rbac.Matrix
	Evaluator  *rbac.Evaluator

	AlertDestination *alert.Destination
	AlertSettings    *alert.Settings

	Users     *users.Service
	Finance   *finance.Service
	Documents *documents.Service

	jobsClient *jobs.Client
	inspector  *asynq.Inspector
}

// ContainerOption customises a Container.
type ContainerOption func(*containerOptions)

type containerOptions struct {
	dispatcher alert.Dispatcher
}

// WithDispatcher overrides the alert dispatcher chosen from configuration.
func WithDispatcher(d alert.Dispatcher) ContainerOption {
	return func(o *containerOptions) { o.dispatcher = d }
}

// QueueFallback pings Redis when the alert queue is enabled. An unreachable
// broker yields a log dispatcher override.
func QueueFallback(ctx context.Context, cfg *Config, logger *slog.Logger, timeout time.Duration) []ContainerOption {
	if !cfg.AlertQueueEnabled {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	client, err := cache.Dial(ctx, cfg.RedisAddr, timeout)
	if closeErr := client.Close(); closeErr != nil {
		logger.Warn("redis close", slog.Any("error", closeErr))
	}
	if err != nil {
		logger.Warn("redis unavailable, alerts fall back to the log", slog.Any("error", err))
		return []ContainerOption{WithDispatcher(alert.LogDispatcher{Logger: logger})}
	}
	return nil
}

// NewContainer builds every service. Alerts go to the job queue when
// ALERT_QUEUE_ENABLED is set and to the log otherwise.
func NewContainer(cfg *Config, logger *slog.Logger, opts ...ContainerOption) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var o containerOptions
	for _, opt := range opts {
		opt(&o)
	}
	if err := rbac.ValidateCatalog(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg, Logger: logger}
	c.Metrics = observability.NewMetrics()
	c.SecurityMetrics = observability.NewSecurityMetrics(c.Metrics.Registerer())

	dispatcher := o.dispatcher
	if dispatcher == nil {
		if cfg.AlertQueueEnabled {
			redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
			c.jobsClient = jobs.NewClient(redisOpts)
			c.inspector = asynq.NewInspector(redisOpts)
			dispatcher = alert.NewQueueDispatcher(c.jobsClient)
		} else {
			dispatcher = alert.LogDispatcher{Logger: logger}
		}
	}

	c.AlertDestination = alert.NewDestination(cfg.AlertEmail)
	c.Log = security.NewLog(
		security.WithLogger(logger),
		security.WithObserver(c.SecurityMetrics),
		security.WithAlertHook(alert.NewNotifier(c.AlertDestination, dispatcher, logger)),
	)
	c.Classifier = security.NewClassifier(cfg.AnomalyThreshold)
	c.Recorder = security.NewRecorder(c.Log, c.Classifier)

	seed, err := loadAssignments(cfg.RolePermissionsFile)
	if err != nil {
		return nil, err
	}
	c.Matrix, err = rbac.NewMatrix(seed, c.Recorder)
	if err != nil {
		return nil, err
	}
	c.Evaluator = rbac.NewEvaluator(c.Matrix)

	authorizers, err := cfg.Authorizers()
	if err != nil {
		return nil, err
	}
	c.Workflow = security.NewWorkflow(c.Log, authorizers, c.SecurityMetrics, logger)
	c.AlertSettings = alert.NewSettings(c.AlertDestination, c.Evaluator, c.Recorder)

	c.Users = users.NewService(users.NewMemoryRepository(users.DefaultUsers()), c.Recorder, cfg.DemoPassword, logger,
		users.WithPermissionChecker(c.Evaluator))
	c.Finance = finance.NewService(finance.SeedInvoices(), c.Recorder, logger)
	c.Documents = documents.NewService(documents.SeedDocuments(), c.Recorder, logger)
	return c, nil
}

func loadAssignments(path string) (map[rbac.Role][]rbac.Permission, error) {
	if path == "" {
		return rbac.DefaultAssignments(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open role permissions file: %w", err)
	}
	defer f.Close()
	return rbac.LoadAssignments(f)
}

// Router builds the HTTP handler over the container's services.
func (c *Container) Router() http.Handler {
	rbacMW := rbac.Middleware{Evaluator: c.Evaluator, Logger: c.Logger}
	params := RouterParams{
		Logger:             c.Logger,
		Config:             c.Config,
		RBACMiddleware:     rbacMW,
		UsersHandler:       users.NewHandler(c.Logger, c.Users, rbacMW),
		PermissionsHandler: rbac.NewPermissionsHandler(c.Logger, c.Matrix, rbacMW),
		SecurityHandler:    securityhttp.NewHandler(c.Logger, c.Log, c.Workflow, c.Recorder, c.AlertSettings, rbacMW),
		FinanceHandler:     finance.NewHandler(c.Logger, c.Finance, rbacMW),
		DocumentsHandler:   documents.NewHandler(c.Logger, c.Documents, rbacMW),
		Metrics:            c.Metrics,
	}
	if c.inspector != nil {
		params.JobHandler = jobs.NewHandler(c.inspector, c.Logger)
	}
	return NewRouter(params)
}

// Close releases queue connections.
func (c *Container) Close() error {
	var firstErr error
	if c.jobsClient != nil {
		if err := c.jobsClient.Close(); err != nil {
			firstErr = err
		}
	}
	if c.inspector != nil {
		if err := c.inspector.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
