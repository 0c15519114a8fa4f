package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/storefront/internal/cfg"
	v1Grpc "github.com/DRSN-tech/storefront/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/storefront/internal/delivery/v1/http"
	"github.com/DRSN-tech/storefront/internal/infrastructure/auth"
	"github.com/DRSN-tech/storefront/internal/infrastructure/authz"
	"github.com/DRSN-tech/storefront/internal/infrastructure/kafka"
	minioInfra "github.com/DRSN-tech/storefront/internal/infrastructure/minio"
	"github.com/DRSN-tech/storefront/internal/repository/memory"
	s3Repo "github.com/DRSN-tech/storefront/internal/repository/minio"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/storefront/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront/internal/repository/redis"
	redisConv "github.com/DRSN-tech/storefront/internal/repository/redis/converter"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/clients"
	"github.com/DRSN-tech/storefront/pkg/closer"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/DRSN-tech/storefront/pkg/postgres"
	"github.com/DRSN-tech/storefront/pkg/tr"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	"golang.org/x/crypto/bcrypt"
)

const (
	shutdownTimeout      = 10 * time.Second
	healthCheckInterval  = 10 * time.Second
	sessionCleanupPeriod = 5 * time.Minute
	seedTimeout          = 30 * time.Second
	topicTimeout         = 10 * time.Second
)

// App собирает зависимости и управляет жизненным циклом серверов и фоновых воркеров.
type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	httpSrv *v1Http.Server
	grpcSrv *v1Grpc.GRPCServer
	outbox  *kafka.OutboxWorker
	health  map[string]v1Grpc.Pinger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewApp(cfg *config.Config, log logger.Logger) (_ *App, err error) {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		cfg:    cfg,
		logger: log,
		closer: closer.NewCloser(0),
		ctx:    ctx,
		cancel: cancel,
	}

	// Уже открытые ресурсы закрываются, если сборка не удалась
	defer func() {
		if err != nil {
			cancel()
			closeCtx, closeCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer closeCancel()
			_ = app.closer.Close(closeCtx)
		}
	}()

	db, err := initPGDB(ctx, log, cfg)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	app.closer.AddSimple("postgres", db.Close)

	redisClient := clients.NewRedisClient(cfg.Redis)
	app.closer.Add("redis", func(context.Context) error { return redisClient.Close() })
	if err := ping(ctx, redisClient); err != nil {
		log.Errorf(err, "failed to connect to redis")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		log.Errorf(err, "failed to initialize minio client")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minioCtx, minioCancel := context.WithTimeout(ctx, 10*time.Second)
	defer minioCancel()
	if err := clients.EnsureBucket(minioCtx, minioClient, cfg.Minio.BucketName); err != nil {
		log.Errorf(err, "failed to initialize MinIO bucket")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	// Репозитории
	conv := pgdbConv.New()
	productRepo := pgdb.NewProductRepo(db.Pool, conv.ProductConv())
	categoryRepo := pgdb.NewCategoryRepo(db.Pool, conv.CategoryConv())
	sellerRepo := pgdb.NewSellerRepo(db.Pool, conv.SellerConv())
	userRepo := pgdb.NewUserRepo(db.Pool, conv.UserConv())
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, conv.OutboxConv())
	cacheRepo := redis.NewCacheRepo(redisClient, redisConv.NewProductConv(), cfg.Redis, log)
	sessionRepo := app.initSessionRepo(redisClient)
	txManager := tr.NewManager(db.Pool)

	// Инфраструктура
	imagesInfra := minioInfra.NewMinioInfrastructure(s3Repo.NewImageRepo(minioClient), cfg.Minio, log, ctx)
	app.closer.Add("minio cleanup", imagesInfra.WaitForCleanup)

	tokens, err := auth.NewTokenManager(cfg.Auth)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	// Бизнес-логика
	catalogUC := usecase.NewCatalogUC(productRepo, categoryRepo, cacheRepo, log)
	cartUC := usecase.NewCartUC(sessionRepo, catalogUC, log)
	favoritesUC := usecase.NewFavoritesUC(sessionRepo, catalogUC, log)
	recommendationUC := usecase.NewRecommendationUC(sessionRepo, catalogUC, log)
	statusUC := usecase.NewStatusUC(sessionRepo, log)
	productUC := usecase.NewProductUC(
		productRepo,
		categoryRepo,
		sellerRepo,
		outboxRepo,
		cacheRepo,
		imagesInfra,
		kafka.NewProductEventEncoder(),
		enforcer,
		txManager,
		log,
	)
	accountUC := usecase.NewAccountUC(userRepo, sellerRepo, hasher, tokens, txManager, log)

	if cfg.Seed.Enabled {
		seedUC := usecase.NewSeedUC(categoryRepo, userRepo, sellerRepo, productRepo, hasher, txManager,
			usecase.SeedAccounts{
				AdminEmail:     cfg.Seed.AdminEmail,
				AdminPassword:  cfg.Seed.AdminPassword,
				SellerEmail:    cfg.Seed.SellerEmail,
				SellerPassword: cfg.Seed.SellerPassword,
			}, log)

		seedCtx, seedCancel := context.WithTimeout(ctx, seedTimeout)
		defer seedCancel()
		if err := seedUC.Seed(seedCtx); err != nil {
			log.Errorf(err, "failed to seed catalog")
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
	}

	app.initOutbox(outboxRepo, db.Dsn)

	// Транспорт
	r := chi.NewRouter()
	v1Http.NewRouter(r, log).Init(&v1Http.Deps{
		Cart:            cartUC,
		Favorites:       favoritesUC,
		Recommendations: recommendationUC,
		Status:          statusUC,
		Catalog:         catalogUC,
		Products:        productUC,
		Accounts:        accountUC,
		Tokens:          tokens,
		HTTP:            cfg.Http,
		Session:         cfg.Session,
		Auth:            cfg.Auth,
		ImageURL:        imagesInfra.PublicURL,
	})
	app.httpSrv = v1Http.NewServer(r, cfg.Http)
	app.grpcSrv = v1Grpc.NewGRPCServer(cfg.Grpc, log)
	app.health = map[string]v1Grpc.Pinger{"postgres": db, "redis": redisClient}

	return app, nil
}

// Run запускает серверы и блокируется до сигнала остановки или фатальной ошибки сервера.
func (a *App) Run() error {
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

	if a.outbox != nil {
		a.outbox.Start(a.ctx)
	}

	go a.watchHealth()

	// === Ожидание сигнала или ошибки ===
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	a.stop()
	return appErr
}

func (a *App) stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.grpcSrv.SetServing(false)

	if err := a.httpSrv.Stop(shutdownCtx); err != nil {
		a.logger.Errorf(err, "HTTP server shutdown error")
	} else {
		a.logger.Infof("HTTP server stopped")
	}

	if err := a.grpcSrv.Stop(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		a.logger.Errorf(err, "gRPC server shutdown error")
	}

	a.cancel()

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Warnf("Shutdown finished with errors: %v", err)
	}

	a.logger.Infof("Application shutdown complete")
}

// watchHealth периодически обновляет статус gRPC health по доступности Postgres и Redis.
func (a *App) watchHealth() {
	a.grpcSrv.CheckDependencies(a.ctx, a.health)

	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			a.grpcSrv.CheckDependencies(a.ctx, a.health)
		}
	}
}

// initSessionRepo выбирает хранилище сессий: Redis с circuit breaker или память процесса.
func (a *App) initSessionRepo(redisClient *clients.RedisClient) usecase.SessionRepository {
	if a.cfg.Session.Backend == config.SessionBackendMemory {
		a.logger.Warnf("Using in-memory session store: sessions are lost on restart and not shared between instances")
		repo := memory.NewSessionRepo(a.cfg.Session.IdleTTL)
		repo.StartCleanupRoutine(sessionCleanupPeriod)
		a.closer.Add("memory sessions", func(context.Context) error { return repo.Close() })
		return repo
	}

	return redis.NewSessionRepo(redisClient, a.cfg.Session, a.logger)
}

// initOutbox запускает публикацию событий в Kafka. Без брокеров события копятся в outbox.
func (a *App) initOutbox(outboxRepo usecase.OutboxRepository, dsn string) {
	if !a.cfg.Kafka.Enabled {
		a.logger.Warnf("KAFKA_BROKERS is not set, outbox publishing is disabled")
		return
	}

	producer := kafka.NewProducer(a.logger, a.cfg.Kafka)
	a.closer.Add("kafka producer", func(context.Context) error { return producer.Close() })

	if err := producer.EnsureTopic(topicTimeout); err != nil {
		a.logger.Warnf("Failed to ensure kafka topic, relying on broker auto-creation: %v", err)
	}

	a.outbox = kafka.NewOutboxWorker(outboxRepo, a.logger, producer, dsn, 0)
	a.closer.AddSimple("outbox worker", a.outbox.Stop)
}

func initPGDB(ctx context.Context, logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(ctx, cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(cfg.Db.MigrationsDir, logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		db.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(ctx); err != nil {
		logger.Errorf(err, "failed to ping database")
		db.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}

func ping(ctx context.Context, p v1Grpc.Pinger) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return p.Ping(ctx)
}
