package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"housekeeper/internal/housekeeper"
	"housekeeper/internal/shared"
)

// Config holds application configuration values.
type Config struct {
	Env string `validate:"required,oneof=dev prod"`
	Log struct {
		ConsoleLevel string `validate:"required,oneof=debug info warn error"`
		FileLevel    string `validate:"required,oneof=debug info warn error"`
		File         string
	}
	Housekeeper struct {
		SlowThreshold time.Duration `validate:"gte=0"`
	}
	Admin struct {
		// Addr is empty when the admin server is disabled.
		Addr string `validate:"omitempty,hostname_port"`
	}
	Journal struct {
		// Path is empty when the run journal is disabled.
		Path       string
		Retention  time.Duration `validate:"gt=0"`
		PruneEvery time.Duration `validate:"gte=1s"`
	}
	HeartbeatReportEvery time.Duration `validate:"gte=1s"`
}

var validate = validator.New()

// Load reads configuration from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	var c Config
	var err error
	c.Env = getenv("ENV", "prod")
	c.Log.ConsoleLevel = strings.ToLower(getenv("LOG_CONSOLE_LEVEL", "info"))
	c.Log.FileLevel = strings.ToLower(getenv("LOG_FILE_LEVEL", "debug"))
	c.Log.File = os.Getenv("LOG_FILE")

	if c.Housekeeper.SlowThreshold, err = duration("HK_SLOW_TASK_THRESHOLD", "5s"); err != nil {
		return Config{}, err
	}
	c.Admin.Addr = lookup("ADMIN_ADDR", ":8989")
	c.Journal.Path = lookup("JOURNAL_PATH", "data/housekeeper.db")
	if c.Journal.Retention, err = duration("JOURNAL_RETENTION", "168h"); err != nil {
		return Config{}, err
	}
	if c.Journal.PruneEvery, err = every("JOURNAL_PRUNE_EVERY", "@every 1h"); err != nil {
		return Config{}, err
	}
	if c.HeartbeatReportEvery, err = every("HEARTBEAT_REPORT_EVERY", "@every 1m"); err != nil {
		return Config{}, err
	}

	if err := validate.Struct(c); err != nil {
		return Config{}, shared.MarkKind(err, shared.KindValidation)
	}
	return c, nil
}

func duration(k, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenv(k, def))
	if err != nil {
		return 0, shared.MarkKind(fmt.Errorf("%s: %w", k, err), shared.KindValidation)
	}
	return d, nil
}

func every(k, def string) (time.Duration, error) {
	d, err := housekeeper.ParseEvery(getenv(k, def))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// lookup differs from getenv in that an explicitly empty variable wins over
// the default, which is how optional components are switched off.
func lookup(k, def string) string {
	if v, ok := os.LookupEnv(k); ok {
		return v
	}
	return def
}
