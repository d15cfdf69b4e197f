package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPAddr      string        `envconfig:"HTTP_ADDR" default:":8080"`
	GRPCAddr      string        `envconfig:"GRPC_ADDR" default:":50051"`
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	MySQLDSN      string        `envconfig:"MYSQL_DSN" default:"root:root@tcp(localhost:3306)/stockmap?parseTime=true"`
	SnapshotTTL   time.Duration `envconfig:"SNAPSHOT_TTL" default:"168h"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"1h"`
	WorkerCount   int           `envconfig:"WORKER_COUNT" default:"4"`
	QueueSize     int           `envconfig:"QUEUE_SIZE" default:"10000"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat     string        `envconfig:"LOG_FORMAT" default:"text"`
}

// Load reads the optional .env file, then the environment. Variables already
// set in the environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return Config{}, errors.Wrapf(err, "load %s", envFile)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, errors.Wrap(err, "process env")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.SnapshotTTL <= 0 {
		return errors.New("SNAPSHOT_TTL must be positive")
	}
	if c.SweepInterval <= 0 {
		return errors.New("SWEEP_INTERVAL must be positive")
	}
	if c.WorkerCount <= 0 {
		return errors.New("WORKER_COUNT must be positive")
	}
	if c.QueueSize <= 0 {
		return errors.New("QUEUE_SIZE must be positive")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "LOG_LEVEL")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return errors.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if level, err := logrus.ParseLevel(c.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	return logger
}
