package ioc

import (
	"github.com/dokyun-lab/stock-tracker/internal/service/notification"
	"github.com/dokyun-lab/stock-tracker/internal/service/notification/slack"
	"github.com/spf13/viper"
)

func InitSlackNotifier() notification.Notifier {
	type Config struct {
		WebhookURL string `mapstructure:"webhook_url"`
	}

	var cfg Config
	if err := viper.UnmarshalKey("slack", &cfg); err != nil {
		panic(err)
	}
	if cfg.WebhookURL == "" {
		return nil
	}
	return slack.NewService(cfg.WebhookURL)
}
