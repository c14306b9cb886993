package config

import (
	"errors"
	"log"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// DiscountTier applies a multiplier when a membership is bought for at
// least MinMonths. Tiers are evaluated longest period first; the first
// matching tier wins.
type DiscountTier struct {
	MinMonths int     `mapstructure:"minMonths"`
	Rate      float64 `mapstructure:"rate"`
}

// PricingConfig holds the tunable parts of upgrade pricing.
type PricingConfig struct {
	DiscountTiers []DiscountTier `mapstructure:"discountTiers"`
}

func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		DiscountTiers: []DiscountTier{
			{MinMonths: 12, Rate: 0.90},
			{MinMonths: 6, Rate: 0.95},
		},
	}
}

type PricingConfigHolder struct {
	current atomic.Value // holds PricingConfig
}

func NewPricingConfigHolder() (*PricingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("pricing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/branchdesk/config") // Volume-mounted config
	v.AddConfigPath("/etc/branchdesk")            // System config
	v.AddConfigPath(".")                          // Current directory (dev mode)

	v.SetEnvPrefix("BRANCHDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// if config file not found, use defaults
		defaults := DefaultPricingConfig()
		v.SetDefault("pricing.discountTiers", defaults.DiscountTiers)
	}

	var cfg PricingConfig
	if err := v.UnmarshalKey("pricing", &cfg); err != nil {
		return nil, err
	}
	if len(cfg.DiscountTiers) == 0 {
		cfg = DefaultPricingConfig()
	}
	if err := validatePricingConfig(cfg); err != nil {
		return nil, err
	}
	normalizePricingConfig(&cfg)

	holder := &PricingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PricingConfig
		if err := v.UnmarshalKey("pricing", &updated); err != nil {
			log.Printf("[pricing-config] reload failed: %v", err)
			return
		}
		if err := validatePricingConfig(updated); err != nil {
			log.Printf("[pricing-config] invalid config ignored: %v", err)
			return
		}
		normalizePricingConfig(&updated)
		holder.current.Store(updated)
		log.Printf("[pricing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *PricingConfigHolder) Get() PricingConfig {
	return h.current.Load().(PricingConfig)
}

func validatePricingConfig(cfg PricingConfig) error {
	for _, tier := range cfg.DiscountTiers {
		if tier.MinMonths <= 0 {
			return errors.New("pricing.discountTiers minMonths must be positive")
		}
		if tier.Rate <= 0 || tier.Rate > 1 {
			return errors.New("pricing.discountTiers rate must be in (0, 1]")
		}
	}
	return nil
}

func normalizePricingConfig(cfg *PricingConfig) {
	sort.Slice(cfg.DiscountTiers, func(i, j int) bool {
		return cfg.DiscountTiers[i].MinMonths > cfg.DiscountTiers[j].MinMonths
	})
}
