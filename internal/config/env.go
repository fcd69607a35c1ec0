package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type BaseEnv struct {
	Env      string `envconfig:"ENV" default:"local"`
	HTTPHost string `envconfig:"HTTP_HOST" default:""`
	HTTPPort string `envconfig:"HTTP_PORT" default:"3100"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	// APIKey is optional; when empty the API is open.
	APIKey string `envconfig:"API_KEY"`
}

type StorageEnv struct {
	Type    string `envconfig:"STORAGE_TYPE" default:"memory"`
	BaseDir string `envconfig:"STORAGE_BASE_DIR" default:".taskboard/data"`
	// S3 settings (used when Type == "s3")
	S3Bucket string `envconfig:"S3_BUCKET"`
	S3Prefix string `envconfig:"S3_PREFIX" default:"taskboard/"`
	S3Region string `envconfig:"S3_REGION" default:"ap-northeast-1"`
	// SQLite settings (used when Type == "sqlite")
	SQLitePath string `envconfig:"SQLITE_PATH" default:".taskboard/tasks.db"`
}

type TaskEnv struct {
	SeedDemo     bool `envconfig:"SEED_DEMO" default:"true"`
	UniqueTitles bool `envconfig:"UNIQUE_TITLES" default:"true"`
}

type Env struct {
	BaseEnv
	StorageEnv
	TaskEnv
}

// ClientEnv configures the terminal front end.
type ClientEnv struct {
	APIURL         string        `envconfig:"API_URL" default:"http://localhost:3100"`
	APIKey         string        `envconfig:"API_KEY"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	MockLatency    time.Duration `envconfig:"MOCK_LATENCY" default:"500ms"`
	LogFile        string        `envconfig:"LOG_FILE"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	// Agent settings (used by the plan command)
	AgentTimeout  time.Duration `envconfig:"AGENT_TIMEOUT" default:"10m"`
	AgentMaxTurns int           `envconfig:"AGENT_MAX_TURNS" default:"30"`
}

const namespace = "TASKBOARD"

// LoadDotEnv reads .env into the process environment when the file exists.
// Variables already set are left alone.
func LoadDotEnv(filenames ...string) error {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load dotenv: %w", err)
	}
	return nil
}

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	switch env.StorageEnv.Type {
	case "memory", "local", "s3", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported storage type %q", env.StorageEnv.Type)
	}
	return &env, nil
}

func LoadClientEnv() (*ClientEnv, error) {
	var env ClientEnv
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	return &env, nil
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelInfo
	}
	return parseLevel(e.LogLevel)
}

func (e *ClientEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelInfo
	}
	return parseLevel(e.LogLevel)
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
