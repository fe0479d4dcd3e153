package ioc

import (
	"github.com/dokyun-lab/stock-tracker/internal/service/tracker"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

func InitTrackerConfig() tracker.Config {
	viper.SetDefault("alert.rules.streak", true)
	viper.SetDefault("alert.rules.stake_change", true)
	viper.SetDefault("alert.rules.insider_trading", true)

	var cfg tracker.Config
	// unknown keys are a config mistake, fail loudly instead of defaulting
	err := viper.UnmarshalKey("alert", &cfg, func(dc *mapstructure.DecoderConfig) {
		dc.ErrorUnused = true
	})
	if err != nil {
		panic(err)
	}
	if err = cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}
