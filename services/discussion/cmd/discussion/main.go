package main

import (
	"context"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/tanya-platform/internal/platform/auth"
	"github.com/example/tanya-platform/internal/platform/config"
	"github.com/example/tanya-platform/internal/platform/db"
	"github.com/example/tanya-platform/internal/platform/events"
	"github.com/example/tanya-platform/internal/platform/httpserver"
	"github.com/example/tanya-platform/internal/platform/logging"
	"github.com/example/tanya-platform/internal/platform/natsconn"
	"github.com/example/tanya-platform/internal/platform/run"
	"github.com/example/tanya-platform/services/discussion/internal/handlers"
	"github.com/example/tanya-platform/services/discussion/internal/store"
	"github.com/example/tanya-platform/services/discussion/internal/worker"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	st, pool := initStore(cfg, log)
	if pool != nil {
		defer pool.Close()
	}

	verifier := auth.JWTVerifier{Secret: []byte(cfg.JWTSecret)}

	var pub *events.Publisher
	var nc *nats.Conn
	if nc, err = natsconn.Connect(cfg.NATS); err != nil {
		log.Warn("nats unavailable, events disabled", zap.Error(err))
	} else if js, err := nc.JetStream(); err != nil {
		log.Warn("jetstream unavailable, events disabled", zap.Error(err))
	} else {
		pub = events.New(js, log)
	}

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{ReadyFunc: readyFunc(pool)})

	r.Get("/v1/questions", handlers.ListQuestions(st))
	r.Get("/v1/questions/{question_id}", handlers.GetQuestion(st))
	r.Group(func(r chi.Router) {
		r.Use(auth.OptionalUser(verifier))
		r.Get("/v1/questions/{question_id}/thread", handlers.GetThread(st, pub, log))
	})
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(verifier))
		r.Post("/v1/questions", handlers.CreateQuestion(st))
		r.Post("/v1/questions/{question_id}/comments", handlers.CreateComment(st, pub, log))
		r.Post("/v1/comments/{comment_id}/like", handlers.ToggleLike(st, pub, log))
	})

	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, Logger: log, Router: r})

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		if nc != nil {
			defer nc.Close()
			if pool != nil {
				worker.StartNotificationsConsumer(ctx, nc, pool, log)
			}
		}

		go func() {
			<-ctx.Done()
			_ = srv.Shutdown(context.Background())
		}()
		return srv.Start()
	})

	log.Info("exit", zap.Int("code", code))
	run.Exit(code)
}

// initStore selects the Store backend. Production requires a working
// Postgres connection and terminates the process otherwise; development
// falls back to the in-memory store.
func initStore(cfg config.AppConfig, log *zap.Logger) (store.Store, *pgxpool.Pool) {
	if cfg.DatabaseURL == "" {
		if cfg.Production() {
			log.Error("DATABASE_URL is required in production")
			_ = log.Sync()
			os.Exit(1)
		}
		log.Warn("DATABASE_URL not set, using in-memory store (development only)")
		return store.NewMemoryStore(), nil
	}

	pool, err := db.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		if cfg.Production() {
			log.Error("postgres is required in production but unavailable", zap.Error(err))
			_ = log.Sync()
			os.Exit(1)
		}
		log.Warn("postgres unavailable, falling back to in-memory store", zap.Error(err))
		return store.NewMemoryStore(), nil
	}

	log.Info("store: postgres")
	return store.NewPostgresStore(pool), pool
}

func readyFunc(pool *pgxpool.Pool) func() error {
	if pool == nil {
		return nil
	}
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return pool.Ping(ctx)
	}
}
