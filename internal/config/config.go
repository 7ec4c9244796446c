package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Notion
		WordPress
		Database
		Media
		Batch
		Tasks
		Resync
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Notion struct {
		Token      string
		APIVersion string
	}
	WordPress struct {
		URL         string
		Username    string
		AppPassword string
	}
	Database struct {
		Path string
	}
	Media struct {
		Dir     string
		BaseURL string // Public URL prefix mirrored files are served under
	}
	Batch struct {
		Size int
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Resync struct {
		Enabled  bool
		Schedule string // Cron format: "0 * * * *" = hourly
	}
	Global struct {
		PublicBaseURL            string // Base URL of this service, used for /go link routes
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8166)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("notion_api_version", "2022-06-28")
	v.SetDefault("media_dir", "./media")
	v.SetDefault("media_base_url", "/media")
	v.SetDefault("batch_size", 20)
	v.SetDefault("public_base_url", "http://localhost:8166")

	// Scheduled re-sync defaults
	v.SetDefault("resync_enabled", false)
	v.SetDefault("resync_schedule", "0 * * * *") // Hourly at :00

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Notion: Notion{
			Token:      v.GetString("NOTION_TOKEN"),
			APIVersion: v.GetString("NOTION_API_VERSION"),
		},
		WordPress: WordPress{
			URL:         v.GetString("WORDPRESS_URL"),
			Username:    v.GetString("WORDPRESS_USERNAME"),
			AppPassword: v.GetString("WORDPRESS_APP_PASSWORD"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Media: Media{
			Dir:     v.GetString("MEDIA_DIR"),
			BaseURL: v.GetString("MEDIA_BASE_URL"),
		},
		Batch: Batch{
			Size: v.GetInt("BATCH_SIZE"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Resync: Resync{
			Enabled:  v.GetBool("RESYNC_ENABLED"),
			Schedule: v.GetString("RESYNC_SCHEDULE"),
		},
		Global: Global{
			PublicBaseURL:            v.GetString("PUBLIC_BASE_URL"),
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
