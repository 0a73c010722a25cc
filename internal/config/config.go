package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr   string   `yaml:"listen_addr"`
	CORSOrigins  []string `yaml:"cors_origins"`
	DBPath       string   `yaml:"db_path"`

	// Sentiment inference endpoint. Empty means the built-in keyword
	// classifier is used instead of a remote model.
	SentimentEndpoint string `yaml:"sentiment_endpoint"`
	SentimentWorkers  int    `yaml:"sentiment_workers"`

	LLMProvider     string `yaml:"llm_provider"` // "anthropic", "openai", or "" (disabled)
	LLMModel        string `yaml:"llm_model"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`

	RefreshSchedule string `yaml:"refresh_schedule"` // cron expression
	StalenessHours  int    `yaml:"staleness_hours"`

	SlackBotToken     string `yaml:"slack_bot_token"`
	SlackAlertChannel string `yaml:"slack_alert_channel"`

	ExternalHTTPTimeoutSeconds int `yaml:"external_http_timeout_seconds"`
}

func LoadConfig() Config {
	var cfg Config

	// Load from config.yaml if it exists
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.ListenAddr, "LISTEN_ADDR")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.SentimentEndpoint, "SENTIMENT_ENDPOINT")
	envOverrideInt(&cfg.SentimentWorkers, "SENTIMENT_WORKERS")
	envOverride(&cfg.LLMProvider, "LLM_PROVIDER")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverride(&cfg.RefreshSchedule, "REFRESH_SCHEDULE")
	envOverrideInt(&cfg.StalenessHours, "STALENESS_HOURS")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackAlertChannel, "SLACK_ALERT_CHANNEL")
	envOverrideInt(&cfg.ExternalHTTPTimeoutSeconds, "EXTERNAL_HTTP_TIMEOUT_SECONDS")

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	// Defaults
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./spotlyvf.db"
	}
	if cfg.SentimentWorkers == 0 {
		cfg.SentimentWorkers = 4
	}
	if cfg.RefreshSchedule == "" {
		cfg.RefreshSchedule = "0 3 * * *"
	}
	if cfg.StalenessHours == 0 {
		cfg.StalenessHours = 24
	}

	// Validate
	switch cfg.LLMProvider {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Fatalf("anthropic_api_key is required when llm_provider=anthropic")
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Fatalf("openai_api_key is required when llm_provider=openai")
		}
	case "":
		// No generative backend; the engine serves fallback recommendations.
	default:
		log.Fatalf("llm_provider must be 'anthropic', 'openai', or empty, got '%s'", cfg.LLMProvider)
	}

	if cfg.SentimentWorkers < 1 {
		log.Fatalf("invalid sentiment_workers '%d': must be >= 1", cfg.SentimentWorkers)
	}
	if cfg.StalenessHours < 1 {
		log.Fatalf("invalid staleness_hours '%d': must be >= 1", cfg.StalenessHours)
	}
	if cfg.SlackBotToken != "" && cfg.SlackAlertChannel == "" {
		log.Fatalf("slack_alert_channel is required when slack_bot_token is set")
	}

	return cfg
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

// AlertsConfigured reports whether Slack alerting is fully configured.
func (c Config) AlertsConfigured() bool {
	return c.SlackBotToken != "" && c.SlackAlertChannel != ""
}

// LLMConfigured reports whether a generative backend credential is present.
func (c Config) LLMConfigured() bool {
	return c.LLMProvider != ""
}
