package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Store backends
const (
	BackendGitHub   = "github"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`
	StoreBackend  string `mapstructure:"STORE_BACKEND"`

	GitHubToken   string `mapstructure:"GITHUB_TOKEN"`
	GitHubAPIURL  string `mapstructure:"GITHUB_API_URL"`
	RepoOwner     string `mapstructure:"REPO_OWNER"`
	RepoName      string `mapstructure:"REPO_NAME"`
	RepoBranch    string `mapstructure:"REPO_BRANCH"`
	FilePath      string `mapstructure:"FILE_PATH"`
	CommitMessage string `mapstructure:"COMMIT_MESSAGE"`

	DBSource string `mapstructure:"DB_SOURCE"`

	IPGeoAPIKey        string `mapstructure:"IPGEO_API_KEY"`
	IPGeoBaseURL       string `mapstructure:"IPGEO_BASE_URL"`
	IPGeoRatePerMinute int    `mapstructure:"IPGEO_RATE_PER_MINUTE"`

	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	AppendRetries  int           `mapstructure:"APPEND_RETRIES"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	StaticDir string `mapstructure:"STATIC_DIR"`
	GinMode   string `mapstructure:"GIN_MODE"`
}

var defaults = map[string]any{
	"SERVER_ADDRESS":        ":3000",
	"STORE_BACKEND":         BackendGitHub,
	"GITHUB_TOKEN":          "",
	"GITHUB_API_URL":        "https://api.github.com",
	"REPO_OWNER":            "habtreidauto",
	"REPO_NAME":             "geo-pdf-tracker",
	"REPO_BRANCH":           "",
	"FILE_PATH":             "locations.json",
	"COMMIT_MESSAGE":        "Update %s with new geolocation data at %s",
	"DB_SOURCE":             "",
	"IPGEO_API_KEY":         "",
	"IPGEO_BASE_URL":        "https://ipapi.co",
	"IPGEO_RATE_PER_MINUTE": 45,
	"REQUEST_TIMEOUT":       "10s",
	"APPEND_RETRIES":        0,
	"LOG_LEVEL":             "info",
	"LOG_FORMAT":            "json",
	"STATIC_DIR":            "./public",
	"GIN_MODE":              "release",
}

// LoadConfig reads configuration from app.env in path, if present, and from
// environment variables, which take precedence.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		err = nil
	}

	err = v.Unmarshal(&config)
	return
}

// TokenConfigured reports whether GitHub credentials are present.
func (c Config) TokenConfigured() bool {
	return c.GitHubToken != ""
}
