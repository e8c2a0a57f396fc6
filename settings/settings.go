// Package settings holds the runtime configuration of the powerwait tools.
// Values are decoded by viper from defaults, an optional YAML file and
// POWERWAIT_* environment variables.
package settings

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"powerwait/constants"
)

// EnvPrefix is prepended to every environment override, e.g.
// POWERWAIT_POWER_EMULATE for power.emulate.
const EnvPrefix = "POWERWAIT"

type Config struct {
	Logger Logger `mapstructure:"logger"`
	Power  Power  `mapstructure:"power"`
	Bench  Bench  `mapstructure:"bench"`
}

// Logger is the configuration for the cold-path logger
type Logger struct {
	LogLevel    string `mapstructure:"log_level"`
	FileLogName string `mapstructure:"file_log_name"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAge      int    `mapstructure:"max_age"`
	MaxSize     int    `mapstructure:"max_size"`
	Compress    bool   `mapstructure:"compress"`
}

// Power is the configuration for the wait/wake machinery
type Power struct {
	MaxCores     uint          `mapstructure:"max_cores"`
	Emulate      bool          `mapstructure:"emulate"`
	ConsumerSlot uint          `mapstructure:"consumer_slot"`
	ConsumerCPU  int           `mapstructure:"consumer_cpu"`
	Sleep        time.Duration `mapstructure:"sleep"`
	SpinBudget   int           `mapstructure:"spin_budget"`
}

// Bench is the configuration for the producer/consumer benchmark
type Bench struct {
	Count    int           `mapstructure:"count"`
	Interval time.Duration `mapstructure:"interval"`
	RingSize int           `mapstructure:"ring_size"`
	DBPath   string        `mapstructure:"db_path"`
}

// SetDefaults registers every key with its compile-time default so that
// env overrides work even without a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.log_level", "info")
	v.SetDefault("logger.file_log_name", "")
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.max_size", 64)
	v.SetDefault("logger.compress", false)

	v.SetDefault("power.max_cores", constants.MaxCores)
	v.SetDefault("power.emulate", false)
	v.SetDefault("power.consumer_slot", 1)
	v.SetDefault("power.consumer_cpu", -1)
	v.SetDefault("power.sleep", constants.DefaultSleep)
	v.SetDefault("power.spin_budget", constants.DefaultSpinBudget)

	v.SetDefault("bench.count", constants.DefaultBenchCount)
	v.SetDefault("bench.interval", constants.DefaultBenchInterval)
	v.SetDefault("bench.ring_size", constants.DefaultRingSize)
	v.SetDefault("bench.db_path", "")
}

// Load reads configuration into a Config. An empty path searches for
// powerwait.yaml in the working directory and $HOME/.config/powerwait; a
// missing file is not an error, an unreadable or malformed one is.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("powerwait")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/powerwait")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the wait table or the consumer cannot honour.
func (c *Config) Validate() error {
	if c.Power.MaxCores == 0 {
		return errors.New("power.max_cores must be greater than 0")
	}
	if c.Power.ConsumerSlot >= c.Power.MaxCores {
		return errors.Errorf("power.consumer_slot %d out of range [0,%d)", c.Power.ConsumerSlot, c.Power.MaxCores)
	}
	if c.Power.Sleep <= 0 {
		return errors.New("power.sleep must be positive")
	}
	if c.Power.SpinBudget < 0 {
		return errors.New("power.spin_budget must not be negative")
	}
	if n := c.Bench.RingSize; n < 2 || n&(n-1) != 0 {
		return errors.Errorf("bench.ring_size %d must be a power of two >= 2", n)
	}
	return nil
}
