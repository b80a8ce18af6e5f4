package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Game     GameConfig     `mapstructure:"game"`
}

type ServerConfig struct {
	Port  int  `mapstructure:"port"`
	Debug bool `mapstructure:"debug"`
}

// DatabaseConfig configures the cloud backup row store.
// Mode "disabled" runs the pet fully local with no sync.
type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // memory | sqlite | mysql | disabled
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
	LocalPubSubBuf  int           `mapstructure:"local_pubsub_buf"`
}

type GameConfig struct {
	DecayHungerPerHour    float64       `mapstructure:"decay_hunger_per_hour"`
	DecayHappinessPerHour float64       `mapstructure:"decay_happiness_per_hour"`
	DecayEnergyPerHour    float64       `mapstructure:"decay_energy_per_hour"`
	DecayCleanPerHour     float64       `mapstructure:"decay_clean_per_hour"`
	SyncDebounce          time.Duration `mapstructure:"sync_debounce"`
	MinOfflineGap         time.Duration `mapstructure:"min_offline_gap"`
	GiftThresholdHours    float64       `mapstructure:"gift_threshold_hours"`
	GiftMissChance        float64       `mapstructure:"gift_miss_chance"`
	RateLimitRPS          float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst        int           `mapstructure:"rate_limit_burst"`
	AnalyticsOptIn        bool          `mapstructure:"analytics_opt_in"`
}

// Load reads the YAML config at path and applies defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/pebble.db")
	v.SetDefault("database.mysql_max_open", 50)
	v.SetDefault("database.mysql_max_idle", 10)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("cache.local_pubsub_buf", 256)
	v.SetDefault("game.decay_hunger_per_hour", 5.0)
	v.SetDefault("game.decay_happiness_per_hour", 4.0)
	v.SetDefault("game.decay_energy_per_hour", 3.0)
	v.SetDefault("game.decay_clean_per_hour", 2.5)
	v.SetDefault("game.sync_debounce", "5s")
	v.SetDefault("game.min_offline_gap", "60s")
	v.SetDefault("game.gift_threshold_hours", 4.0)
	v.SetDefault("game.gift_miss_chance", 0.6)
	v.SetDefault("game.rate_limit_rps", 100)
	v.SetDefault("game.rate_limit_burst", 200)
	v.SetDefault("game.analytics_opt_in", false)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
