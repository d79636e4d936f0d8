package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kFloat
	kDuration
)

func (t keyType) String() string {
	switch t {
	case kInt:
		return "integer"
	case kFloat:
		return "float"
	case kDuration:
		return "duration"
	default:
		return "string"
	}
}

type keySpec struct {
	key     string
	typ     keyType
	env     string
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "storage.data_dir", typ: kString, env: "UIFORGE_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "log.level", typ: kString, env: "UIFORGE_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
	{
		key: "catalog.seed_file", typ: kString, env: "UIFORGE_CATALOG_SEED_FILE",
		apply:   func(cfg *Config, v any) { cfg.Catalog.SeedFile = v.(string) },
		extract: func(cfg Config) any { return cfg.Catalog.SeedFile },
	},
	{
		key: "promotion.min_frequency", typ: kInt, env: "UIFORGE_PROMOTION_MIN_FREQUENCY",
		apply:   func(cfg *Config, v any) { cfg.Promotion.MinFrequency = v.(int) },
		extract: func(cfg Config) any { return cfg.Promotion.MinFrequency },
	},
	{
		key: "promotion.min_avg_score", typ: kFloat, env: "UIFORGE_PROMOTION_MIN_AVG_SCORE",
		apply:   func(cfg *Config, v any) { cfg.Promotion.MinAvgScore = v.(float64) },
		extract: func(cfg Config) any { return cfg.Promotion.MinAvgScore },
	},
	{
		key: "promotion.interval", typ: kDuration, env: "UIFORGE_PROMOTION_INTERVAL",
		apply:   func(cfg *Config, v any) { cfg.Promotion.Interval = v.(time.Duration) },
		extract: func(cfg Config) any { return cfg.Promotion.Interval },
	},
	{
		key: "signals.rapid_followup", typ: kDuration, env: "UIFORGE_SIGNALS_RAPID_FOLLOWUP",
		apply:   func(cfg *Config, v any) { cfg.Signals.RapidFollowup = v.(time.Duration) },
		extract: func(cfg Config) any { return cfg.Signals.RapidFollowup },
	},
	{
		key: "signals.time_gap", typ: kDuration, env: "UIFORGE_SIGNALS_TIME_GAP",
		apply:   func(cfg *Config, v any) { cfg.Signals.TimeGap = v.(time.Duration) },
		extract: func(cfg Config) any { return cfg.Signals.TimeGap },
	},
	{
		key: "ranking.boost_weight", typ: kFloat, env: "UIFORGE_RANKING_BOOST_WEIGHT",
		apply:   func(cfg *Config, v any) { cfg.Ranking.BoostWeight = v.(float64) },
		extract: func(cfg Config) any { return cfg.Ranking.BoostWeight },
	},
	{
		key: "ranking.stats_ttl", typ: kDuration, env: "UIFORGE_RANKING_STATS_TTL",
		apply:   func(cfg *Config, v any) { cfg.Ranking.StatsTTL = v.(time.Duration) },
		extract: func(cfg Config) any { return cfg.Ranking.StatsTTL },
	},
}

func lookupSpec(key string) (keySpec, bool) {
	for _, s := range specs {
		if s.key == key {
			return s, true
		}
	}
	return keySpec{}, false
}

// parse converts raw into the Go type apply expects.
func (s keySpec) parse(raw string) (any, error) {
	switch s.typ {
	case kInt:
		return strconv.Atoi(raw)
	case kFloat:
		return strconv.ParseFloat(raw, 64)
	case kDuration:
		return time.ParseDuration(raw)
	default:
		return raw, nil
	}
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		raw, ok, err := b.GetString(s.key)
		if err != nil {
			return goerr.Wrap(err, "reading config key", goerr.V("key", s.key))
		}
		if !ok || (raw == "" && s.typ != kString) {
			continue
		}
		v, err := s.parse(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] could not parse %s from config key %s=%q: %v. Using default value.\n", s.typ, s.key, raw, err)
			continue
		}
		s.apply(cfg, v)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		v, err := s.parse(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] could not parse %s from env var %s=%q: %v. Using default value.\n", s.typ, s.env, raw, err)
			continue
		}
		s.apply(cfg, v)
	}
}
