package ioc

import (
	"github.com/dokyun-lab/stock-tracker/internal/service/collector"
	"github.com/dokyun-lab/stock-tracker/internal/service/collector/dart"
	"github.com/dokyun-lab/stock-tracker/internal/service/collector/krx"
	"github.com/spf13/viper"
)

func InitKrxCollector() collector.TradeFlowCollector {
	return krx.NewService()
}

// InitDartCollector returns nil when no API key is configured;
// filings are skipped in that case, like the original deployment without DART access.
func InitDartCollector() collector.FilingCollector {
	type Config struct {
		ApiKey string `mapstructure:"api_key"`
	}

	var cfg Config
	if err := viper.UnmarshalKey("dart", &cfg); err != nil {
		panic(err)
	}
	if cfg.ApiKey == "" {
		return nil
	}
	return dart.NewService(cfg.ApiKey)
}
