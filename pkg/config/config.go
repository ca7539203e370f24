package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the full service configuration. Every field carries a usable
// default; YAML values and environment variables override them in that
// order.
type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`

	Server struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`

	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=json console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`

	Pipeline struct {
		TargetColumn         string  `yaml:"target_column" default:"Close" validate:"required"`
		MaxFeatures          int     `yaml:"max_features" default:"50" validate:"gt=0"`
		ModelMaxFeatures     int     `yaml:"model_max_features" default:"30" validate:"gt=0"`
		CorrelationThreshold float64 `yaml:"correlation_threshold" default:"0.95" validate:"gt=0,lte=1"`
		SequenceLength       int     `yaml:"sequence_length" default:"60" validate:"gt=0"`
		TestSize             float64 `yaml:"test_size" default:"0.2" validate:"gt=0,lt=1"`
		RSIWindow            int     `yaml:"rsi_window" default:"14" validate:"gt=1"`
		MAWindows            []int   `yaml:"ma_windows"`
		MomentumPeriods      []int   `yaml:"momentum_periods"`
		VolumeWindows        []int   `yaml:"volume_windows"`
		Lags                 []int   `yaml:"lags"`
		LookbackDays         int     `yaml:"lookback_days" default:"730" validate:"gt=0"`
		MinPredictRows       int     `yaml:"min_predict_rows" default:"60" validate:"gt=0"`
		MinTrainRows         int     `yaml:"min_train_rows" default:"100" validate:"gt=0"`
	} `yaml:"pipeline"`

	MarketData struct {
		Source  string        `yaml:"source" default:"clickhouse" validate:"oneof=clickhouse http"`
		BaseURL string        `yaml:"base_url" default:"https://query1.finance.yahoo.com"`
		Timeout time.Duration `yaml:"timeout" default:"15s"`
	} `yaml:"market_data"`

	ClickHouse struct {
		Host         string        `yaml:"host" default:"localhost"`
		Port         int           `yaml:"port" default:"9000"`
		Database     string        `yaml:"database" default:"featuremill"`
		User         string        `yaml:"user" default:"default"`
		Password     string        `yaml:"password"`
		DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"clickhouse"`

	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"featuremill.dataset.ready"`
		LogTopic     string        `yaml:"log_topic" default:"featuremill.logs"`
		RequiredAcks int           `yaml:"required_acks" default:"1"`
		Compression  string        `yaml:"compression" default:"snappy"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		BatchTimeout time.Duration `yaml:"batch_timeout" default:"100ms"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"kafka"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Cache struct {
		StatsTTL   time.Duration `yaml:"stats_ttl" default:"5m"`
		SummaryTTL time.Duration `yaml:"summary_ttl" default:"15m"`
	} `yaml:"cache"`

	Queue struct {
		Workers    int           `yaml:"workers" default:"2" validate:"gt=0"`
		RetryLimit int           `yaml:"retry_limit" default:"3"`
		RetryDelay time.Duration `yaml:"retry_delay" default:"30s"`
		KeyPrefix  string        `yaml:"key_prefix" default:"featuremill:queue"`
	} `yaml:"queue"`

	Scheduler struct {
		Enabled  bool     `yaml:"enabled"`
		Spec     string   `yaml:"spec" default:"0 30 22 * * *"`
		Symbols  []string `yaml:"symbols"`
		Lookback int      `yaml:"lookback_days" default:"730"`
	} `yaml:"scheduler"`

	Model struct {
		BaseURL   string        `yaml:"base_url" default:"http://localhost:8501"`
		Timeout   time.Duration `yaml:"timeout" default:"120s"`
		DaysAhead int           `yaml:"days_ahead" default:"30" validate:"gt=0"`
	} `yaml:"model"`
}

var validate = validator.New()

// Load reads, defaults, and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	c.applySliceDefaults()

	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("MODEL_SERVICE_URL"); v != "" {
		c.Model.BaseURL = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Scheduler.Symbols = strings.Split(v, ",")
	}
	return c, nil
}

// applySliceDefaults fills the window sets the `default` tag cannot express.
func (c *Config) applySliceDefaults() {
	if len(c.Pipeline.MAWindows) == 0 {
		c.Pipeline.MAWindows = []int{5, 10, 20, 50}
	}
	if len(c.Pipeline.MomentumPeriods) == 0 {
		c.Pipeline.MomentumPeriods = []int{1, 3, 5, 10}
	}
	if len(c.Pipeline.VolumeWindows) == 0 {
		c.Pipeline.VolumeWindows = []int{5, 10, 20}
	}
	if len(c.Pipeline.Lags) == 0 {
		c.Pipeline.Lags = []int{1, 2, 3, 5, 10}
	}
}
