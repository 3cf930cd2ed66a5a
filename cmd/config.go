package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"fooddispatch/internal/pkg/errs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	HTTPPort        string        `env:"HTTP_PORT"        envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogLevel        slog.Level    `env:"LOG_LEVEL"        envDefault:"info"`

	Store      string `env:"STORE"       envDefault:"postgres"`
	DBHost     string `env:"DB_HOST"     envDefault:"localhost"`
	DBPort     string `env:"DB_PORT"     envDefault:"5432"`
	DBUser     string `env:"DB_USER"     envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"     envDefault:"fooddispatch"`
	DBSslMode  string `env:"DB_SSLMODE"  envDefault:"disable"`

	JWTSecret string `env:"JWT_SECRET,required,notEmpty,unset"`
	JWTIssuer string `env:"JWT_ISSUER"                         envDefault:"fooddispatch"`

	AMQPURL      string `env:"AMQP_URL,unset"`
	AMQPExchange string `env:"AMQP_EXCHANGE"  envDefault:"orders"`

	DispatchSchedule    string `env:"DISPATCH_SCHEDULE"    envDefault:"*/5 * * * * *"`
	DispatchConcurrency int    `env:"DISPATCH_CONCURRENCY" envDefault:"4"`
	DispatchBatchSize   int    `env:"DISPATCH_BATCH_SIZE"  envDefault:"100"`
	CandidateBatchSize  int    `env:"CANDIDATE_BATCH_SIZE" envDefault:"10"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// LoadConfig reads .env when present and then the process environment.
func LoadConfig(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err = cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errList []error
	if c.Store != StoreMemory && c.Store != StorePostgres {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("STORE",
			fmt.Errorf("%q is neither %s nor %s", c.Store, StoreMemory, StorePostgres)))
	}
	if c.DispatchConcurrency < 1 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("DISPATCH_CONCURRENCY", c.DispatchConcurrency, 1, "unbounded"))
	}
	if c.DispatchBatchSize < 1 || c.DispatchBatchSize > 1000 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("DISPATCH_BATCH_SIZE", c.DispatchBatchSize, 1, 1000))
	}
	return errors.Join(errList...)
}

// DSN is the postgres connection string for gorm.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}
