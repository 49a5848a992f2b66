package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	api "github.com/mind-engage/examgrader/internal/api/http"
	auth "github.com/mind-engage/examgrader/internal/auth/middleware"
	"github.com/mind-engage/examgrader/internal/bank"
	"github.com/mind-engage/examgrader/internal/config"
	"github.com/mind-engage/examgrader/internal/db"
	"github.com/mind-engage/examgrader/internal/exam"
	"github.com/mind-engage/examgrader/internal/grading"
	"github.com/mind-engage/examgrader/internal/oracle"
	storage "github.com/mind-engage/examgrader/internal/storage"
	syncx "github.com/mind-engage/examgrader/internal/sync"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("exiting", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := bank.LoadFile(cfg.BankPath)
	if err != nil {
		return err
	}
	logger.Info("bank loaded", "path", cfg.BankPath, "questions", len(b.Questions()), "topics", b.Topics())

	// --- DB ---
	var (
		store  exam.Store
		events exam.EventSink
		dbh    *sql.DB
	)
	if cfg.DBDriver == "memory" {
		store = exam.NewInMemoryStore()
	} else {
		octx, cancel := context.WithTimeout(ctx, 10*time.Second)
		dbh, err = db.Open(octx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		cancel()
		if err != nil {
			return err
		}
		defer dbh.Close()
		store = exam.NewSQLStore(dbh)
		events = syncx.NewEventRepo(dbh)
	}

	// --- Ground truth ---
	var (
		cache oracle.Cache = oracle.NewMemoryCache()
		rdb   *redis.Client
	)
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		cache = oracle.NewRedisCache(rdb, cfg.RedisTTL)
	}
	runner := oracle.NewRunner(cfg.OracleDir)
	runner.Timeout = cfg.OracleTimeout
	resolver := oracle.Resolver{
		Source:  oracle.Cached{Source: runner, Cache: cache},
		Workers: cfg.OracleWorkers,
		Logger:  logger,
	}
	if cfg.OracleWarmup {
		go warmup(ctx, resolver, b, logger)
	}

	grader := grading.NewDefaultGrader()
	opts := []exam.ServiceOption{exam.WithResolver(resolver), exam.WithLogger(logger)}
	if events != nil {
		opts = append(opts, exam.WithEvents(events))
	}
	svc := exam.NewService(store, b, grader, opts...)

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		return err
	}

	h := api.NewRouter(api.Deps{
		Service:     svc,
		Bank:        b,
		Grader:      grader,
		Resolver:    resolver,
		Blobs:       bs,
		Auth:        auth.NewAuthService(cfg.AuthHMACSecret, cfg.TokenTTL, cfg.Users),
		CORSOrigins: cfg.CORSOrigins,
		GuestLogin:  cfg.EnableGuestAuth,
		Logger:      logger,
		Ready: func(ctx context.Context) error {
			if dbh != nil {
				if err := dbh.PingContext(ctx); err != nil {
					return err
				}
			}
			if rdb != nil {
				return rdb.Ping(ctx).Err()
			}
			return nil
		},
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr, "db", cfg.DBDriver, "redis", cfg.RedisAddr != "")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

// warmup computes every dynamic label in the bank so the first tests do
// not wait on the compiler.
func warmup(ctx context.Context, r oracle.Resolver, b *bank.Bank, logger *slog.Logger) {
	start := time.Now()
	qs, err := r.Resolve(ctx, b.Questions())
	if err != nil {
		logger.Warn("oracle warmup aborted", "err", err)
		return
	}
	failed := 0
	for _, q := range qs {
		if q.Type == grading.TypeDynamicAlgo && grading.SimulationFailed(q.Expected) {
			failed++
		}
	}
	logger.Info("oracle warmup done", "questions", len(qs), "failed", failed, "took", time.Since(start).String())
}
