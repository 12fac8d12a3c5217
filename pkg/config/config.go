package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	GitHub   GitHubConfig
	Sync     SyncConfig
	Team     TeamConfig
}

type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  int
	WriteTimeout int
}

type DatabaseConfig struct {
	Path string
}

type GitHubConfig struct {
	Token string
	Org   string
}

type SyncConfig struct {
	DataDir           string
	IntervalHours     int
	SearchWindowDays  int
	DetailBatchSize   int
	BatchDelayMillis  int
	SearchDelayMillis int
}

type TeamConfig struct {
	Members     []string
	Alumni      []string
	HiddenRoles []string
}

var AppConfig *Config

// Load loads configuration from .env file and environment variables
func Load() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Mode:         getEnv("GIN_MODE", "release"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 15),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./contribboard.db"),
		},
		GitHub: GitHubConfig{
			Token: getEnv("GITHUB_TOKEN", ""),
			Org:   getEnv("GITHUB_ORG", ""),
		},
		Sync: SyncConfig{
			DataDir:           getEnv("DATA_DIR", "./data"),
			IntervalHours:     getEnvAsInt("SYNC_INTERVAL_HOURS", 0),
			SearchWindowDays:  getEnvAsInt("SEARCH_WINDOW_DAYS", 30),
			DetailBatchSize:   getEnvAsInt("DETAIL_BATCH_SIZE", 5),
			BatchDelayMillis:  getEnvAsInt("BATCH_DELAY_MS", 1000),
			SearchDelayMillis: getEnvAsInt("SEARCH_DELAY_MS", 2000),
		},
		Team: TeamConfig{
			Members:     getEnvAsList("TEAM_MEMBERS"),
			Alumni:      getEnvAsList("ALUMNI_MEMBERS"),
			HiddenRoles: getEnvAsList("HIDDEN_ROLES"),
		},
	}

	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsList gets a comma-separated environment variable as a string slice
func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
