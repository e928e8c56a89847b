package router

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	lockmem "child-immunization-history/internal/adapters/lock/memlock"
	"child-immunization-history/internal/adapters/lock/redislock"
	mem "child-immunization-history/internal/adapters/storage/memory"
	pg "child-immunization-history/internal/adapters/storage/postgres"
	_ "child-immunization-history/internal/docs"
	"child-immunization-history/internal/domain/children"
	"child-immunization-history/internal/domain/doses"
	"child-immunization-history/internal/domain/notifications"
	"child-immunization-history/internal/domain/schedule"
	"child-immunization-history/internal/domain/status"
	"child-immunization-history/internal/middleware"
	"child-immunization-history/internal/platform/logger"
	"child-immunization-history/internal/platform/metrics"
	"child-immunization-history/internal/ports/auth"
	"child-immunization-history/internal/ports/lock"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB
	// Opcional: si viene, lock distribuido. Si no, lock en proceso.
	Redis   redis.UniversalClient
	LockTTL time.Duration

	// Calendario para el store in-memory. Vacío => calendario embebido.
	Catalog schedule.Catalog

	Location   *time.Location
	Logger     logger.Logger
	Metrics    metrics.Recorder
	MaxRetries int

	// Si viene, se expone /metrics.
	Gatherer prometheus.Gatherer
	// Si viene, limita requests por cliente.
	RateLimiter *middleware.RateLimiter
}

// Services agrupa los casos de uso; lo comparten el API y los workers.
type Services struct {
	Schedule      *schedule.Service
	Children      *children.Service
	Doses         *doses.Service
	Status        *status.Service
	Notifications *notifications.Service
}

func BuildServices(opts Options) (*Services, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	var (
		childRepo   children.Repository
		doseRepo    doses.Repository
		notifRepo   notifications.Repository
		catalogRepo schedule.Repository
	)

	if opts.DB != nil {
		childRepo = pg.NewChildrenRepo(opts.DB)
		doseRepo = pg.NewDosesRepo(opts.DB)
		notifRepo = pg.NewNotificationsRepo(opts.DB)
		catalogRepo = pg.NewCatalogRepo(opts.DB)
	} else {
		catalog := opts.Catalog
		if len(catalog.Entries) == 0 {
			def, err := schedule.Default()
			if err != nil {
				return nil, fmt.Errorf("load default catalog: %w", err)
			}
			catalog = def
		}
		childRepo = mem.NewChildRepo()
		doseRepo = mem.NewDoseRepo()
		notifRepo = mem.NewNotificationRepo()
		catalogRepo = mem.NewCatalogRepo(catalog)
	}

	var locker lock.Locker
	if opts.Redis != nil {
		locker = redislock.New(opts.Redis, "immunization:", opts.LockTTL)
	} else {
		locker = lockmem.New()
	}

	childrenSvc := children.NewService(childRepo, loc)
	statusSvc := status.NewService(childrenSvc, doseRepo, catalogRepo, loc)

	return &Services{
		Schedule: schedule.NewService(catalogRepo),
		Children: childrenSvc,
		Doses:    doses.NewService(doseRepo, catalogRepo, loc),
		Status:   statusSvc,
		Notifications: notifications.NewService(notifRepo, statusSvc, locker, notifications.Options{
			MaxRetries: opts.MaxRetries,
			Metrics:    opts.Metrics,
			Logger:     log.With(map[string]any{"component": "notifications"}),
		}),
	}, nil
}

func NewRouter(opts Options, svcs *Services) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(log))

	r.Use(middleware.AuthContext(opts.AuthVerifier, log))
	if opts.RateLimiter != nil {
		r.Use(opts.RateLimiter.Middleware)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(opts.Gatherer))
	}
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Rutas por módulo
	schedule.RegisterRoutes(r, svcs.Schedule)
	children.RegisterRoutes(r, svcs.Children)
	doses.RegisterRoutes(r, svcs.Doses, svcs.Children, svcs.Notifications, log)
	status.RegisterRoutes(r, svcs.Status, svcs.Children)
	notifications.RegisterRoutes(r, svcs.Notifications, svcs.Children)

	return r
}
