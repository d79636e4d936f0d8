package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

type Config struct {
	Storage   StorageConfig
	Log       LogConfig
	Catalog   CatalogConfig
	Promotion PromotionConfig
	Signals   SignalsConfig
	Ranking   RankingConfig
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

type CatalogConfig struct {
	// SeedFile is a YAML snippet file loaded into the registry at startup.
	SeedFile string
}

type PromotionConfig struct {
	MinFrequency int
	MinAvgScore  float64
	Interval     time.Duration
}

type SignalsConfig struct {
	RapidFollowup time.Duration
	TimeGap       time.Duration
}

type RankingConfig struct {
	BoostWeight float64
	StatsTTL    time.Duration
}

func defaults() Config {
	return Config{
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
		Promotion: PromotionConfig{
			MinFrequency: 3,
			MinAvgScore:  0.5,
			Interval:     time.Minute,
		},
		Signals: SignalsConfig{
			RapidFollowup: 30 * time.Second,
			TimeGap:       10 * time.Minute,
		},
		Ranking: RankingConfig{
			BoostWeight: 0.3,
			StatsTTL:    30 * time.Second,
		},
	}
}

// ErrInvalidConfig is returned when a loaded value is out of range.
var ErrInvalidConfig = goerr.New("invalid config")

// Load reads configuration from the YAML file at DefaultPath and applies
// UIFORGE_* environment overrides.
func Load() (Config, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom is Load with an explicit config file path. A missing file means
// defaults.
func LoadFrom(path string) (Config, error) {
	return loadWith(newFileBackend(path))
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the engine cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Storage.DataDir == "":
		return goerr.Wrap(ErrInvalidConfig, "storage.data_dir must not be empty")
	case c.Promotion.MinFrequency < 1:
		return goerr.Wrap(ErrInvalidConfig, "promotion.min_frequency must be at least 1",
			goerr.V("value", c.Promotion.MinFrequency))
	case c.Promotion.Interval <= 0:
		return goerr.Wrap(ErrInvalidConfig, "promotion.interval must be positive",
			goerr.V("value", c.Promotion.Interval))
	case c.Signals.RapidFollowup <= 0 || c.Signals.TimeGap <= 0:
		return goerr.Wrap(ErrInvalidConfig, "signal windows must be positive")
	case c.Signals.RapidFollowup >= c.Signals.TimeGap:
		return goerr.Wrap(ErrInvalidConfig, "signals.rapid_followup must be shorter than signals.time_gap",
			goerr.V("rapid_followup", c.Signals.RapidFollowup), goerr.V("time_gap", c.Signals.TimeGap))
	case c.Ranking.BoostWeight <= 0:
		return goerr.Wrap(ErrInvalidConfig, "ranking.boost_weight must be positive",
			goerr.V("value", c.Ranking.BoostWeight))
	}
	return nil
}
