package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/jimlawless/whereami"
)

type Config struct {
	Minio   *MinIOCfg
	Http    *HTTPConfig
	Grpc    *GRPCConfig
	Db      *PGDBCfg
	Redis   *RedisCfg
	Session *SessionCfg
	Kafka   *KafkaCfg
	Auth    *AuthCfg
	Seed    *SeedCfg
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
	Enabled           bool // false, если KAFKA_BROKERS не задан: события остаются в outbox
}

type MinIOCfg struct {
	MinioEndpoint     string // Адрес конечной точки Minio
	BucketName        string // Название бакета с изображениями товаров
	MinioRootUser     string
	MinioRootPassword string
	MinioUseSSL       bool
	PublicBaseURL     string // Префикс публичной ссылки на изображение, пустой — отдаётся ключ объекта
	UploadImagesLimit int    // Лимит на одновременные загрузки в S3
}

type HTTPConfig struct {
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	CORSOrigins       []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

type GRPCConfig struct {
	Port        string
	NetworkMode string
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// Директория с SQL-миграциями golang-migrate
	MigrationsDir string
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	ProductTTL  time.Duration
}

// SessionCfg описывает хранение сессий покупателей (корзина, избранное).
type SessionCfg struct {
	Backend          string // redis | memory
	CookieName       string
	IdleTTL          time.Duration
	CookieSecure     bool
	BreakerFailures  uint32
	BreakerOpenDelay time.Duration
}

type AuthCfg struct {
	JWTSecret  string
	TokenTTL   time.Duration
	Issuer     string
	CookieName string
}

// SeedCfg управляет начальным наполнением каталога при старте.
type SeedCfg struct {
	Enabled        bool
	AdminEmail     string
	AdminPassword  string
	SellerEmail    string
	SellerPassword string
}

const (
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"
)

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	session, err := loadSessionCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	auth, err := loadAuthCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	seed, err := loadSeedCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Minio:   minio,
		Http:    http,
		Grpc:    loadGRPCConfig(),
		Db:      db,
		Redis:   redis,
		Session: session,
		Kafka:   kafka,
		Auth:    auth,
		Seed:    seed,
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
		defaultTopic             = "storefront.products"
	)

	brokers := splitList(os.Getenv("KAFKA_BROKERS"))

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	return &KafkaCfg{
		Brokers:           brokers,
		Topic:             getEnvOrDefault("KAFKA_TOPIC", defaultTopic),
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
		Enabled:           len(brokers) > 0,
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL       = false
		defaultEndpoint     = "minio:9000"
		defaultBucket       = "product-images"
		defaultUploadsLimit = 4
	)

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	uploadsLimit, err := parseIntEnv("MINIO_UPLOADS_LIMIT", defaultUploadsLimit)
	if err != nil {
		log.Errorf(err, "invalid MINIO_UPLOADS_LIMIT")
		return nil, err
	}

	return &MinIOCfg{
		MinioEndpoint:     getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint),
		BucketName:        getEnvOrDefault("BUCKET_NAME", defaultBucket),
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
		PublicBaseURL:     strings.TrimRight(getEnv("MINIO_PUBLIC_BASE_URL"), "/"),
		UploadImagesLimit: uploadsLimit,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort              = "8080"
		defaultReadTimeout       = 5 * time.Second
		defaultWriteTimeout      = 10 * time.Second
		defaultIdleTimeout       = 60 * time.Second
		defaultRateLimitRequests = 120
		defaultRateLimitWindow   = time.Minute
	)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	rateLimitRequests, err := parseIntEnv("RATE_LIMIT_REQUESTS", defaultRateLimitRequests)
	if err != nil {
		log.Errorf(err, "invalid RATE_LIMIT_REQUESTS")
		return nil, err
	}

	rateLimitWindow, err := parseDurationEnv("RATE_LIMIT_WINDOW", defaultRateLimitWindow)
	if err != nil {
		log.Errorf(err, "invalid RATE_LIMIT_WINDOW")
		return nil, err
	}

	return &HTTPConfig{
		Port:              getEnvOrDefault("HTTP_PORT", defaultPort),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		CORSOrigins:       splitList(getEnv("CORS_ALLOWED_ORIGINS")),
		RateLimitRequests: rateLimitRequests,
		RateLimitWindow:   rateLimitWindow,
	}, nil
}

func loadGRPCConfig() *GRPCConfig {
	const (
		defaultPort        = "8091"
		defaultNetworkMode = "tcp"
	)

	return &GRPCConfig{
		Port:        getEnvOrDefault("GRPC_PORT", defaultPort),
		NetworkMode: getEnvOrDefault("GRPC_NETWORK_MODE", defaultNetworkMode),
	}
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost          = "localhost"
		defaultPort          = "5432"
		defaultSSLMode       = "disable"
		defaultMigrationsDir = "db/migrations"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	return &PGDBCfg{
		Host:          getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:          getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:          user,
		Password:      password,
		DBName:        dbName,
		SSLMode:       getEnvOrDefault("SSL_MODE", defaultSSLMode),
		MigrationsDir: getEnvOrDefault("MIGRATIONS_DIR", defaultMigrationsDir),
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr         = "localhost:6379"
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
		defaultProductTTL   = 3 * time.Minute
	)

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	productTTL, err := parseDurationEnv("PRODUCT_TTL", defaultProductTTL)
	if err != nil {
		log.Errorf(err, "invalid PRODUCT_TTL")
		return nil, err
	}

	return &RedisCfg{
		Addr:        getEnvOrDefault("REDIS_ADDR", defaultAddr),
		Password:    getEnv("REDIS_PASSWORD"),
		User:        getEnv("REDIS_USER"),
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     max(readTimeout, writeTimeout),
		ProductTTL:  productTTL,
	}, nil
}

func loadSessionCfg(log logger.Logger) (*SessionCfg, error) {
	const (
		defaultCookieName       = "storefront_session"
		defaultIdleTTL          = 6 * time.Hour
		defaultBreakerFailures  = 5
		defaultBreakerOpenDelay = 30 * time.Second
	)

	backend := strings.ToLower(getEnvOrDefault("SESSION_BACKEND", SessionBackendRedis))
	if backend != SessionBackendRedis && backend != SessionBackendMemory {
		err := fmt.Errorf("SESSION_BACKEND must be %q or %q, got %q", SessionBackendRedis, SessionBackendMemory, backend)
		log.Errorf(err, "invalid SESSION_BACKEND")
		return nil, err
	}

	idleTTL, err := parseDurationEnv("SESSION_IDLE_TTL", defaultIdleTTL)
	if err != nil {
		log.Errorf(err, "invalid SESSION_IDLE_TTL")
		return nil, err
	}

	secure, err := strconv.ParseBool(getEnvOrDefault("SESSION_COOKIE_SECURE", "false"))
	if err != nil {
		log.Errorf(err, "invalid SESSION_COOKIE_SECURE")
		return nil, err
	}

	failures, err := parseIntEnv("SESSION_BREAKER_FAILURES", defaultBreakerFailures)
	if err != nil || failures <= 0 {
		log.Errorf(e.ErrIncorrectEnvVariable, "invalid SESSION_BREAKER_FAILURES")
		return nil, e.ErrIncorrectEnvVariable
	}

	openDelay, err := parseDurationEnv("SESSION_BREAKER_OPEN_DELAY", defaultBreakerOpenDelay)
	if err != nil {
		log.Errorf(err, "invalid SESSION_BREAKER_OPEN_DELAY")
		return nil, err
	}

	return &SessionCfg{
		Backend:          backend,
		CookieName:       getEnvOrDefault("SESSION_COOKIE_NAME", defaultCookieName),
		IdleTTL:          idleTTL,
		CookieSecure:     secure,
		BreakerFailures:  uint32(failures),
		BreakerOpenDelay: openDelay,
	}, nil
}

func loadAuthCfg(log logger.Logger) (*AuthCfg, error) {
	const (
		defaultTokenTTL   = 24 * time.Hour
		defaultIssuer     = "storefront"
		defaultCookieName = "storefront_auth"
		minSecretLength   = 32
	)

	secret := getEnv("JWT_SECRET")
	if len(secret) < minSecretLength {
		err := fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLength)
		log.Errorf(err, "invalid JWT_SECRET")
		return nil, err
	}

	tokenTTL, err := parseDurationEnv("JWT_TOKEN_TTL", defaultTokenTTL)
	if err != nil {
		log.Errorf(err, "invalid JWT_TOKEN_TTL")
		return nil, err
	}

	return &AuthCfg{
		JWTSecret:  secret,
		TokenTTL:   tokenTTL,
		Issuer:     getEnvOrDefault("JWT_ISSUER", defaultIssuer),
		CookieName: getEnvOrDefault("AUTH_COOKIE_NAME", defaultCookieName),
	}, nil
}

func loadSeedCfg(log logger.Logger) (*SeedCfg, error) {
	enabled, err := strconv.ParseBool(getEnvOrDefault("SEED_ENABLED", "false"))
	if err != nil {
		log.Errorf(err, "invalid SEED_ENABLED")
		return nil, err
	}

	return &SeedCfg{
		Enabled:        enabled,
		AdminEmail:     getEnvOrDefault("SEED_ADMIN_EMAIL", "admin@storefront.local"),
		AdminPassword:  getEnvOrDefault("SEED_ADMIN_PASSWORD", "Admin123!"),
		SellerEmail:    getEnvOrDefault("SEED_SELLER_EMAIL", "seller@storefront.local"),
		SellerPassword: getEnvOrDefault("SEED_SELLER_PASSWORD", "Seller123!"),
	}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}

// splitList разбирает список через запятую, отбрасывая пустые элементы.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
