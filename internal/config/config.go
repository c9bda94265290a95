package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Import
		LLM
		Tasks
		NormalizationSweep
		Audit
		Log
	}

	HTTP struct {
		Port           int32
		Host           string
		MaxUploadBytes int64
		// UploadRateLimit is the number of imports allowed per client per minute (0 = unlimited)
		UploadRateLimit int
	}
	Global struct {
		ShutdownTimeoutInSeconds int
		Version                  string
	}
	Database struct {
		Driver  string // "sqlite" or "postgres"
		Path    string // SQLite file
		DSN     string // Postgres connection string
		Verbose bool
	}
	Import struct {
		Timezone       string // IANA zone used for dates without offset
		FilterRoomCode bool
		RegisterCars   bool
		BlockPastDates bool
		SkipDuplicates bool
		Normalize      bool
	}
	LLM struct {
		BaseURL string
		APIKey  string
		Model   string
		Timeout time.Duration
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		DatabasePath    string // empty = derived from Database.Path
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	NormalizationSweep struct {
		Enabled  bool
		Schedule string // Cron format: "*/30 * * * *" = every 30 minutes
		Limit    int
	}
	Audit struct {
		Dir string // Uploaded spreadsheets are archived here; empty disables archiving
	}
	Log struct {
		Level  string
		Format string // "json" or "console"
	}
)

// Enabled reports whether a completion endpoint is configured.
func (l LLM) Enabled() bool {
	return l.BaseURL != "" && l.Model != ""
}

// Location loads the import timezone.
func (i Import) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(i.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid IMPORT_TIMEZONE %q: %w", i.Timezone, err)
	}
	return loc, nil
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("max_upload_bytes", 10<<20)
	v.SetDefault("upload_rate_limit", 30)
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("app_version", "dev")

	v.SetDefault("database_driver", "sqlite")
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")
	v.SetDefault("database_verbose", false)

	// Import policy defaults
	v.SetDefault("import_timezone", DefaultTimezone)
	v.SetDefault("import_filter_room_code", true)
	v.SetDefault("import_register_cars", true)
	v.SetDefault("import_block_past_dates", false)
	v.SetDefault("import_skip_duplicates", true)
	v.SetDefault("import_normalize", true)

	// Completion API defaults; normalization is off until a base URL is set
	v.SetDefault("llm_base_url", "")
	v.SetDefault("llm_api_key", "")
	v.SetDefault("llm_model", DefaultLLMModel)
	v.SetDefault("llm_timeout", "30s")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("tasks_workers", 2)
	v.SetDefault("tasks_database_path", "")
	v.SetDefault("tasks_release_after", "15m")
	v.SetDefault("tasks_cleanup_interval", "1h")

	v.SetDefault("normalization_sweep_enabled", false)
	v.SetDefault("normalization_sweep_schedule", "*/30 * * * *")
	v.SetDefault("normalization_sweep_limit", 200)

	v.SetDefault("audit_dir", "")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	return &Config{
		HTTP: HTTP{
			Port:            v.GetInt32("PORT"),
			Host:            v.GetString("HOST"),
			MaxUploadBytes:  v.GetInt64("MAX_UPLOAD_BYTES"),
			UploadRateLimit: v.GetInt("UPLOAD_RATE_LIMIT"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
			Version:                  v.GetString("APP_VERSION"),
		},
		Database: Database{
			Driver:  strings.ToLower(v.GetString("DATABASE_DRIVER")),
			Path:    v.GetString("DATABASE_PATH"),
			DSN:     v.GetString("DATABASE_DSN"),
			Verbose: v.GetBool("DATABASE_VERBOSE"),
		},
		Import: Import{
			Timezone:       v.GetString("IMPORT_TIMEZONE"),
			FilterRoomCode: v.GetBool("IMPORT_FILTER_ROOM_CODE"),
			RegisterCars:   v.GetBool("IMPORT_REGISTER_CARS"),
			BlockPastDates: v.GetBool("IMPORT_BLOCK_PAST_DATES"),
			SkipDuplicates: v.GetBool("IMPORT_SKIP_DUPLICATES"),
			Normalize:      v.GetBool("IMPORT_NORMALIZE"),
		},
		LLM: LLM{
			BaseURL: v.GetString("LLM_BASE_URL"),
			APIKey:  v.GetString("LLM_API_KEY"),
			Model:   v.GetString("LLM_MODEL"),
			Timeout: v.GetDuration("LLM_TIMEOUT"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASKS_WORKERS"),
			DatabasePath:    v.GetString("TASKS_DATABASE_PATH"),
			ReleaseAfter:    v.GetDuration("TASKS_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASKS_CLEANUP_INTERVAL"),
		},
		NormalizationSweep: NormalizationSweep{
			Enabled:  v.GetBool("NORMALIZATION_SWEEP_ENABLED"),
			Schedule: v.GetString("NORMALIZATION_SWEEP_SCHEDULE"),
			Limit:    v.GetInt("NORMALIZATION_SWEEP_LIMIT"),
		},
		Audit: Audit{
			Dir: v.GetString("AUDIT_DIR"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}
