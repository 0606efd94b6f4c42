package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Policy    PolicyConfig    `mapstructure:"policy"`
	Chat      ChatConfig      `mapstructure:"chat"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// StorageConfig holds the workbook store configuration
type StorageConfig struct {
	WorkbookPath string        `mapstructure:"workbook_path"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
}

// PolicyConfig holds the rules document and calendar configuration
type PolicyConfig struct {
	RulesPDF       string   `mapstructure:"rules_pdf"`
	PublicHolidays []string `mapstructure:"public_holidays"`
}

// ChatConfig selects the bot variant
type ChatConfig struct {
	// Mode is "session" for the step-by-step flow or "classic" for the
	// single-shot parser.
	Mode string `mapstructure:"mode"`
}

// AssistantConfig holds the optional LLM fallback configuration
type AssistantConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 7860)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	viper.SetDefault("storage.workbook_path", "data/leave_data.xlsx")
	viper.SetDefault("storage.max_retries", 3)
	viper.SetDefault("storage.retry_backoff", time.Second)

	viper.SetDefault("policy.rules_pdf", "data/rules.pdf")
	viper.SetDefault("policy.public_holidays", []string{})

	viper.SetDefault("chat.mode", "session")

	viper.SetDefault("assistant.model", "gpt-4o-mini")
	viper.SetDefault("assistant.temperature", 0.3)

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	viper.BindEnv("assistant.api_key", "OPENAI_API_KEY")
	viper.BindEnv("storage.workbook_path", "LEAVE_WORKBOOK_PATH")
	viper.BindEnv("policy.rules_pdf", "LEAVE_RULES_PDF")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Storage.WorkbookPath == "" {
		return fmt.Errorf("storage.workbook_path is required")
	}
	if c.Storage.MaxRetries < 1 {
		return fmt.Errorf("storage.max_retries must be at least 1")
	}
	if c.Chat.Mode != "session" && c.Chat.Mode != "classic" {
		return fmt.Errorf("chat.mode must be \"session\" or \"classic\"")
	}
	return nil
}
