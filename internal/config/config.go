package config

import (
	"os"
	"regexp"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"jobpulse/internal/logging/types"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port         int           `yaml:"port"`
		Host         string        `yaml:"host"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		IdleTimeout  time.Duration `yaml:"idle_timeout"`
	} `yaml:"server"`

	Workers struct {
		Concurrency  int           `yaml:"concurrency"`
		PollInterval time.Duration `yaml:"poll_interval"`
		TaskTimeout  time.Duration `yaml:"task_timeout"`
		ResyncSpec   string        `yaml:"resync_spec"` // cron spec for the document resync sweep
	} `yaml:"workers"`

	LLM struct {
		Provider    string        `yaml:"provider"`
		APIKey      string        `yaml:"api_key"`
		Model       string        `yaml:"model"`
		MaxTokens   int           `yaml:"max_tokens"`
		Temperature float32       `yaml:"temperature"`
		Timeout     time.Duration `yaml:"timeout"`

		// Call gate policy: RateLimit calls per 60s window, retries bounded
		// by both MaxAttempts and MaxElapsed.
		RateLimit   int           `yaml:"rate_limit"`
		MaxAttempts int           `yaml:"max_attempts"`
		MaxElapsed  time.Duration `yaml:"max_elapsed"`
	} `yaml:"llm"`

	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`

	Elasticsearch struct {
		Addresses []string `yaml:"addresses"`
		Username  string   `yaml:"username"`
		Password  string   `yaml:"password"`
		Alias     string   `yaml:"alias"`
		PageSize  int      `yaml:"page_size"` // bulk rebuild page size
	} `yaml:"elasticsearch"`

	Redis struct {
		URL     string        `yaml:"url"`
		Enabled bool          `yaml:"enabled"`
		TTL     time.Duration `yaml:"ttl"`
	} `yaml:"redis"`

	Search struct {
		DefaultPerPage int     `yaml:"default_per_page"`
		MinScore       float64 `yaml:"min_score"` // relevance floor under date sort
	} `yaml:"search"`

	Logging struct {
		Level    string `yaml:"level"`
		Format   string `yaml:"format"`
		Adapters []struct {
			Name    string                 `yaml:"name"`
			Type    string                 `yaml:"type"`
			Enabled bool                   `yaml:"enabled"`
			Options map[string]interface{} `yaml:"options"`
		} `yaml:"adapters"`
	} `yaml:"logging"`
}

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return s
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := &Config{}

	// Set defaults
	config.Server.Port = 8080
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second
	config.Server.IdleTimeout = 60 * time.Second

	config.Workers.Concurrency = 5
	config.Workers.PollInterval = 60 * time.Second
	config.Workers.TaskTimeout = 120 * time.Second
	config.Workers.ResyncSpec = "@every 1h"

	config.LLM.Provider = "claude"
	config.LLM.Model = "claude-3-haiku-20240307"
	config.LLM.MaxTokens = 8192
	config.LLM.Temperature = 0.1
	config.LLM.Timeout = 120 * time.Second
	config.LLM.RateLimit = 50
	config.LLM.MaxAttempts = 5
	config.LLM.MaxElapsed = 300 * time.Second

	config.Elasticsearch.Addresses = []string{"http://localhost:9200"}
	config.Elasticsearch.Alias = "jobs"
	config.Elasticsearch.PageSize = 1000

	config.Redis.URL = "redis://localhost:6379"
	config.Redis.TTL = 60 * time.Second

	config.Search.DefaultPerPage = 20
	config.Search.MinScore = 1.0

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	// Load from YAML file if it exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			// Expand environment variables in the YAML content
			yamlContent := expandEnvVars(string(data))

			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	// Override with environment variables
	config.loadFromEnv()

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if apiKey := os.Getenv("LLM_API_KEY"); apiKey != "" {
		c.LLM.APIKey = apiKey
	}

	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		c.LLM.Provider = provider
	}

	if model := os.Getenv("LLM_MODEL"); model != "" {
		c.LLM.Model = model
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		c.Database.URL = dbURL
	}

	if esAddr := os.Getenv("ELASTICSEARCH_URL"); esAddr != "" {
		c.Elasticsearch.Addresses = []string{esAddr}
	}

	if esUser := os.Getenv("ELASTICSEARCH_USERNAME"); esUser != "" {
		c.Elasticsearch.Username = esUser
	}

	if esPass := os.Getenv("ELASTICSEARCH_PASSWORD"); esPass != "" {
		c.Elasticsearch.Password = esPass
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}
}

// AdapterConfigs converts the yaml logging adapters into the shape the
// logging manager consumes.
func (c *Config) AdapterConfigs() []types.AdapterConfig {
	out := make([]types.AdapterConfig, 0, len(c.Logging.Adapters))
	for _, a := range c.Logging.Adapters {
		out = append(out, types.AdapterConfig{
			Name:    a.Name,
			Type:    a.Type,
			Enabled: a.Enabled,
			Options: a.Options,
		})
	}
	return out
}
