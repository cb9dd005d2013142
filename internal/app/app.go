package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/shop-orders/internal/cfg"
	v1Grpc "github.com/DRSN-tech/shop-orders/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/shop-orders/internal/delivery/v1/http"
	"github.com/DRSN-tech/shop-orders/internal/infrastructure/kafka"
	minioInfra "github.com/DRSN-tech/shop-orders/internal/infrastructure/minio"
	s3Repo "github.com/DRSN-tech/shop-orders/internal/repository/minio"
	"github.com/DRSN-tech/shop-orders/internal/repository/pgdb"
	orderConv "github.com/DRSN-tech/shop-orders/internal/repository/pgdb/converter"
	pgdbConv "github.com/DRSN-tech/shop-orders/internal/repository/pgdb/converter/generated"
	"github.com/DRSN-tech/shop-orders/internal/repository/redis"
	redisConv "github.com/DRSN-tech/shop-orders/internal/repository/redis/converter/generated"
	"github.com/DRSN-tech/shop-orders/internal/usecase"
	"github.com/DRSN-tech/shop-orders/pkg/clients"
	"github.com/DRSN-tech/shop-orders/pkg/closer"
	"github.com/DRSN-tech/shop-orders/pkg/e"
	"github.com/DRSN-tech/shop-orders/pkg/logger"
	"github.com/DRSN-tech/shop-orders/pkg/postgres"
	"github.com/DRSN-tech/shop-orders/pkg/tr"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jimlawless/whereami"
)

const (
	startupTimeout      = 10 * time.Second
	healthCheckInterval = 10 * time.Second
)

// App собирает зависимости сервиса и управляет его жизненным циклом.
type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	db       *postgres.PgDatabase
	httpSrv  *v1Http.Server
	grpcSrv  *v1Grpc.GRPCServer
	worker   *kafka.OutboxWorker
	bgCtx    context.Context
	bgCancel context.CancelFunc
}

// NewApp подключается к инфраструктуре и собирает слои. При ошибке всё уже открытое закрывается.
func NewApp(cfg *config.Config, logger logger.Logger) (*App, error) {
	bgCtx, bgCancel := context.WithCancel(context.Background())
	a := &App{
		cfg:      cfg,
		logger:   logger,
		closer:   closer.NewCloser(0),
		bgCtx:    bgCtx,
		bgCancel: bgCancel,
	}

	if err := a.init(); err != nil {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		if closeErr := a.closer.Close(ctx); closeErr != nil {
			logger.Warnf("cleanup after failed start: %v", closeErr)
		}
		bgCancel()
		return nil, err
	}

	return a, nil
}

func (a *App) init() error {
	// Подключение к базе само ограничивает число попыток, пока контейнер Postgres поднимается
	db, err := initPGDB(context.Background(), a.logger, a.cfg)
	if err != nil {
		return err
	}
	a.db = db
	a.closer.AddSimple("postgres", db.Close)

	startCtx, cancel := context.WithTimeout(context.Background(), startupTimeout*3)
	defer cancel()

	txManager := tr.NewManager(db.Pool, pgx.TxOptions{})
	productRepo := pgdb.NewProductRepo(db.Pool, pgdbConv.NewProductConverterImpl())
	orderRepo := pgdb.NewOrderRepo(db.Pool, orderConv.NewOrderConverter())
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.NewOutboxEventConverterImpl())

	redisClient := clients.NewRedisClient(a.cfg.Redis)
	a.closer.Add("redis", redisClient.Close)
	redisCtx, redisCancel := context.WithTimeout(startCtx, 5*time.Second)
	defer redisCancel()
	if err := redisClient.Ping(redisCtx); err != nil {
		a.logger.Errorf(err, "failed to connect to redis")
		return e.Wrap(whereami.WhereAmI(), err)
	}
	cacheRepo := redis.NewCacheRepo(redisClient, redisConv.NewProductConverterImpl(), a.cfg.Redis, a.logger)

	minioClient, err := clients.NewMinIOClient(a.cfg.Minio)
	if err != nil {
		a.logger.Errorf(err, "failed to initialize minio client")
		return e.Wrap(whereami.WhereAmI(), err)
	}
	minioCtx, minioCancel := context.WithTimeout(startCtx, startupTimeout)
	defer minioCancel()
	if err := clients.EnsureBucket(minioCtx, minioClient, a.cfg.Minio.BucketName); err != nil {
		a.logger.Errorf(err, "failed to initialize MinIO bucket")
		return e.Wrap(whereami.WhereAmI(), err)
	}
	imageRepo := s3Repo.NewImageRepo(minioClient, a.cfg.Minio.BucketName)
	imagesInfra := minioInfra.NewMinioInfrastructure(imageRepo, a.cfg.Minio, a.logger, a.bgCtx)

	producer, err := kafka.NewProducer(a.logger, a.cfg.Kafka)
	if err != nil {
		a.logger.Errorf(err, "failed to initialize kafka producer")
		return e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.Add("kafka producer", func(context.Context) error { return producer.Close() })
	// Без топика события просто копятся в outbox, поэтому это не фатально
	if err := producer.EnsureTopic(startupTimeout); err != nil {
		a.logger.Warnf("failed to ensure kafka topic %s: %v", a.cfg.Kafka.Topic, err)
	}

	// Отмена фонового контекста прерывает ретраи очистки MinIO, поэтому она идёт после ожидания очистки
	a.closer.AddSimple("background context", a.bgCancel)
	a.closer.Add("minio cleanup", imagesInfra.WaitForCleanup)

	productUC := usecase.NewProductUC(productRepo, txManager, imagesInfra, a.logger, cacheRepo)
	orderUC := usecase.NewOrderUC(orderRepo, productRepo, outboxRepo, txManager, cacheRepo, a.logger)

	if a.cfg.App.SeedCatalog {
		seeded, err := productUC.SeedCatalog(startCtx)
		if err != nil {
			a.logger.Errorf(err, "failed to seed catalog")
			return e.Wrap(whereami.WhereAmI(), err)
		}
		if seeded > 0 {
			a.logger.Infof("catalog seeded with %d products", seeded)
		}
	}

	a.worker = kafka.NewOutboxWorker(outboxRepo, a.logger, producer, a.cfg.Outbox, db.Dsn, pgdb.OutboxChannel)
	a.closer.AddSimple("outbox worker", a.worker.Stop)

	a.grpcSrv = v1Grpc.NewGRPCServer(a.cfg.Grpc, a.logger)
	a.grpcSrv.RegisterServices(productUC, orderUC)
	a.closer.Add("grpc server", a.grpcSrv.Stop)

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, a.logger)
	router.Init(v1Http.RouterDeps{
		ProductUC:    productUC,
		OrderUC:      orderUC,
		MaxImageSize: a.cfg.Minio.MaxImageSize,
		SwaggerURL:   a.cfg.Http.SwaggerURL,
	})
	a.httpSrv = v1Http.NewServer(r, a.cfg.Http)
	a.closer.Add("http server", a.httpSrv.Stop)

	return nil
}

// Run запускает серверы и воркер и блокируется до сигнала или фатальной ошибки сервера.
func (a *App) Run() error {
	a.worker.Start(a.bgCtx)
	go a.grpcSrv.MonitorHealth(a.bgCtx, healthCheckInterval, a.db.Ping)

	errCh := make(chan error, 2)
	go func() {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			errCh <- e.Wrap("gRPC server", err)
		}
	}()
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil {
			errCh <- e.Wrap("HTTP server", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "server fatal error")
	case sig := <-shutdown:
		a.logger.Infof("Received %s, stopping gracefully...", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.App.ShutdownTimeout)
	defer cancel()

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Errorf(err, "shutdown finished with errors")
		if appErr == nil && errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
			appErr = err
		}
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

func initPGDB(ctx context.Context, logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(ctx, cfg.Db, logger)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		db.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
