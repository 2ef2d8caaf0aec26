package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
		// APIKeys is optional; empty means the API is open.
		APIKeys []string `yaml:"apiKeys"`
	} `yaml:"server"`

	// Database is optional; with no host configured the service runs
	// without analysis history or report persistence.
	Database struct {
		Driver   string `yaml:"driver"` // mysql or postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"database"`

	// Minio is optional; with no endpoint configured submitted archives
	// are not retained.
	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	LLM struct {
		Provider       string `yaml:"provider"` // bottom of the override-resolution chain
		TimeoutSeconds int    `yaml:"timeoutSeconds"`
		OpenRouterKey  string `yaml:"openRouterKey"`
		DeepSeekKey    string `yaml:"deepseekKey"`
		OpenAIKey      string `yaml:"openaiKey"`
		Cloudflare     struct {
			Token     string `yaml:"token"`
			AccountID string `yaml:"accountId"`
			Model     string `yaml:"model"`
		} `yaml:"cloudflare"`
	} `yaml:"llm"`
}

// Load reads the yaml config file and applies environment fallbacks for
// credentials so keys never have to live in the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return &cfg, nil
}

// Default returns a config usable with no file present: heuristic-only
// analysis on port 8080, env-provided credentials.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.applyEnv()
	return cfg
}

func (c *Config) applyEnv() {
	envOr(&c.LLM.Provider, "LLM_PROVIDER")
	envOr(&c.LLM.OpenRouterKey, "OPENROUTER_API_KEY")
	envOr(&c.LLM.DeepSeekKey, "DEEPSEEK_API_KEY")
	envOr(&c.LLM.OpenAIKey, "OPENAI_API_KEY")
	envOr(&c.LLM.Cloudflare.Token, "CF_API_TOKEN")
	envOr(&c.LLM.Cloudflare.AccountID, "CF_ACCOUNT_ID")
	envOr(&c.LLM.Cloudflare.Model, "CF_MODEL")
	if c.LLM.Provider == "" {
		c.LLM.Provider = "heuristic"
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = 20
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if len(c.Server.APIKeys) == 0 {
		if v := os.Getenv("API_KEYS"); v != "" {
			for _, k := range strings.Split(v, ",") {
				if k = strings.TrimSpace(k); k != "" {
					c.Server.APIKeys = append(c.Server.APIKeys, k)
				}
			}
		}
	}
}

func envOr(dst *string, key string) {
	if *dst == "" {
		*dst = os.Getenv(key)
	}
}

// MySQLDSN builds the DSN for the mysql driver.
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds the DSN for lib/pq.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}
