// Package config loads a11yscan settings from defaults, an optional YAML file,
// a .env file and A11YSCAN_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable key.
const EnvPrefix = "A11YSCAN"

// Config is the application configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Server  ServerConfig  `mapstructure:"server"`
	Browser BrowserConfig `mapstructure:"browser"`
	Axe     AxeConfig     `mapstructure:"axe"`
	AI      AIConfig      `mapstructure:"ai"`
	Scan    ScanConfig    `mapstructure:"scan"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// ServerConfig configures the HTTP surface. ScanTimeout bounds one scan
// request end to end; a non-zero WriteTimeout must exceed it so a scan that
// uses its whole budget can still write the report.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	ScanTimeout     time.Duration `mapstructure:"scan_timeout"`
}

type BrowserConfig struct {
	Bin        string        `mapstructure:"bin"`
	Headless   bool          `mapstructure:"headless"`
	NoSandbox  bool          `mapstructure:"no_sandbox"`
	Width      int           `mapstructure:"width"`
	Height     int           `mapstructure:"height"`
	NavTimeout time.Duration `mapstructure:"nav_timeout"`
}

// AxeConfig locates the axe-core payload. ScriptPath wins over ScriptURL.
type AxeConfig struct {
	ScriptPath string `mapstructure:"script_path"`
	ScriptURL  string `mapstructure:"script_url"`
}

// AIConfig selects the enrichment provider. Keys fall back to the vendors'
// conventional ANTHROPIC_API_KEY and OPENAI_API_KEY variables.
type AIConfig struct {
	Provider      string        `mapstructure:"provider"`
	Model         string        `mapstructure:"model"`
	AnthropicKey  string        `mapstructure:"anthropic_key"`
	OpenAIKey     string        `mapstructure:"openai_key"`
	ExplainDelay  time.Duration `mapstructure:"explain_delay"`
	AnalysisDelay time.Duration `mapstructure:"analysis_delay"`
}

// Enabled reports whether a key for the selected provider is present.
func (c AIConfig) Enabled() bool {
	switch strings.ToLower(c.Provider) {
	case "openai", "gpt":
		return c.OpenAIKey != ""
	default:
		return c.AnthropicKey != ""
	}
}

type ScanConfig struct {
	ScorePenalty int `mapstructure:"score_penalty"`
	SnapshotCap  int `mapstructure:"snapshot_cap"`
}

var validLevels = map[string]struct{}{"debug": {}, "info": {}, "warn": {}, "error": {}}

var validProviders = map[string]struct{}{"claude": {}, "anthropic": {}, "openai": {}, "gpt": {}}

const (
	maxPort        = 65535
	maxSnapshotCap = 50
)

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error

	if _, ok := validLevels[strings.ToLower(c.Log.Level)]; !ok {
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	if c.Server.Port <= 0 || c.Server.Port > maxPort {
		errs = append(errs, fmt.Errorf("server.port: %d out of range", c.Server.Port))
	}
	if c.Server.ScanTimeout <= 0 {
		errs = append(errs, errors.New("server.scan_timeout: must be positive"))
	}
	if c.Server.WriteTimeout > 0 && c.Server.WriteTimeout <= c.Server.ScanTimeout {
		errs = append(errs, fmt.Errorf("server.write_timeout: %s must exceed server.scan_timeout %s",
			c.Server.WriteTimeout, c.Server.ScanTimeout))
	}
	if c.Browser.Width <= 0 || c.Browser.Height <= 0 {
		errs = append(errs, fmt.Errorf("browser: invalid viewport %dx%d", c.Browser.Width, c.Browser.Height))
	}
	if c.Browser.NavTimeout <= 0 {
		errs = append(errs, errors.New("browser.nav_timeout: must be positive"))
	}
	if _, ok := validProviders[strings.ToLower(c.AI.Provider)]; !ok {
		errs = append(errs, fmt.Errorf("ai.provider: unknown provider %q", c.AI.Provider))
	}
	if c.AI.ExplainDelay < 0 || c.AI.AnalysisDelay < 0 {
		errs = append(errs, errors.New("ai: delays must not be negative"))
	}
	if c.Scan.ScorePenalty < 0 {
		errs = append(errs, errors.New("scan.score_penalty: must not be negative"))
	}
	if c.Scan.SnapshotCap <= 0 || c.Scan.SnapshotCap > maxSnapshotCap {
		errs = append(errs, fmt.Errorf("scan.snapshot_cap: %d out of range", c.Scan.SnapshotCap))
	}

	return errors.Join(errs...)
}

// Init prepares v: .env loading, environment binding, defaults and the config
// file. An explicit configFile must exist; otherwise ./config.yaml and
// ./config/config.yaml are tried and their absence is not an error.
func Init(v *viper.Viper, configFile string) error {
	// A missing .env is the normal case in production.
	_ = godotenv.Load()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := bindEnvFallbacks(v); err != nil {
		return err
	}

	return readConfigFile(v, configFile)
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "16m")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.scan_timeout", "15m")

	v.SetDefault("browser.bin", "")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.no_sandbox", false)
	v.SetDefault("browser.width", 1280)
	v.SetDefault("browser.height", 800)
	v.SetDefault("browser.nav_timeout", "30s")

	v.SetDefault("axe.script_path", "")
	v.SetDefault("axe.script_url", "")

	v.SetDefault("ai.provider", "claude")
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.anthropic_key", "")
	v.SetDefault("ai.openai_key", "")
	v.SetDefault("ai.explain_delay", "500ms")
	v.SetDefault("ai.analysis_delay", "1s")

	v.SetDefault("scan.score_penalty", 5)
	v.SetDefault("scan.snapshot_cap", 10)
}

// bindEnvFallbacks lets the vendor key variables satisfy the AI keys.
func bindEnvFallbacks(v *viper.Viper) error {
	if err := v.BindEnv("ai.anthropic_key", EnvPrefix+"_AI_ANTHROPIC_KEY", "ANTHROPIC_API_KEY"); err != nil {
		return fmt.Errorf("bind ai.anthropic_key: %w", err)
	}
	if err := v.BindEnv("ai.openai_key", EnvPrefix+"_AI_OPENAI_KEY", "OPENAI_API_KEY"); err != nil {
		return fmt.Errorf("bind ai.openai_key: %w", err)
	}
	return nil
}

func readConfigFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", configFile, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}
