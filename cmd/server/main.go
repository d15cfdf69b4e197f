package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/rl1809/stockmap/internal/adapter/export"
	"github.com/rl1809/stockmap/internal/adapter/handler"
	"github.com/rl1809/stockmap/internal/adapter/storage"
	"github.com/rl1809/stockmap/internal/config"
	"github.com/rl1809/stockmap/internal/core/service"
	"github.com/rl1809/stockmap/migrations"
)

const shutdownTimeout = 5 * time.Second

func main() {
	app := &cli.App{
		Name:  "stockmap",
		Usage: "street/lot inventory locator",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "optional dotenv file"},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP and gRPC servers",
				Action: serve,
			},
			{
				Name:  "export",
				Usage: "write product_report.xlsx for a session",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "session", Required: true},
					&cli.StringFlag{Name: "dir", Value: "."},
				},
				Action: exportReport,
			},
			{
				Name:   "migrate",
				Usage:  "apply movement log migrations",
				Action: migrate,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("stockmap failed")
	}
}

func loadConfig(c *cli.Context) (config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, cfg.NewLogger(), nil
}

func serve(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize MySQL
	if err := migrations.Apply(cfg.MySQLDSN); err != nil {
		return errors.Wrap(err, "migrate mysql")
	}
	db, err := sqlx.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		return errors.Wrap(err, "open mysql")
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.WorkerCount * 2)
	db.SetMaxIdleConns(cfg.WorkerCount)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		return errors.Wrap(err, "ping mysql")
	}
	log.Info("connected to mysql")

	// Initialize Redis
	rdb, err := connectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer rdb.Close()
	log.Info("connected to redis")

	redisAdapter := storage.NewRedisAdapter(rdb)
	mysqlAdapter := storage.NewMySQLAdapter(db)

	inventoryService := service.NewInventoryService(redisAdapter, cfg.SnapshotTTL, cfg.QueueSize, log)
	historyService := service.NewHistoryService(mysqlAdapter)

	// Start movement workers
	var wg sync.WaitGroup
	for i := 0; i < cfg.WorkerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			service.RunMovementWorker(id, inventoryService.GetMovementQueue(), mysqlAdapter, log)
		}(i)
	}
	log.WithField("count", cfg.WorkerCount).Info("started movement workers")

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(handler.UnaryLoggingInterceptor(log)))
	handler.RegisterInventoryServer(grpcServer, handler.NewGRPCHandler(inventoryService, log))

	httpHandler := handler.NewHTTPHandler(inventoryService, historyService, export.NewXLSXExporter(), cfg.SnapshotTTL, log)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpHandler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return errors.Wrap(err, "listen grpc")
		}
		log.WithField("addr", cfg.GRPCAddr).Info("gRPC server listening")
		return grpcServer.Serve(lis)
	})

	g.Go(func() error {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := inventoryService.Sweep(); n > 0 {
					log.WithField("sessions", n).Info("evicted idle sessions")
				}
			}
		}
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("HTTP shutdown")
		}
		log.Info("HTTP server stopped")

		grpcServer.GracefulStop()
		log.Info("gRPC server stopped")
		return nil
	})

	err = g.Wait()

	// Close movement queue and wait for workers
	inventoryService.Close()
	wg.Wait()
	log.Info("workers stopped")

	return err
}

func exportReport(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}

	// an unreachable store would otherwise export an empty report
	rdb, err := connectRedis(c.Context, cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer rdb.Close()

	inventoryService := service.NewInventoryService(storage.NewRedisAdapter(rdb), cfg.SnapshotTTL, 1, log)
	defer inventoryService.Close()

	report, err := inventoryService.Report(c.Context, c.String("session"))
	if err != nil {
		return err
	}

	path, err := export.NewXLSXExporter().ExportFile(c.Context, report, c.String("dir"))
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"path": path, "rows": len(report.Rows)}).Info("report written")
	return nil
}

func connectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return rdb, nil
}

func migrate(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := migrations.Apply(cfg.MySQLDSN); err != nil {
		return err
	}
	version, dirty, err := migrations.Version(cfg.MySQLDSN)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("migrations applied")
	return nil
}
