package tracker

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RulesConfig 규칙별 on/off
type RulesConfig struct {
	Streak      bool `mapstructure:"streak"`
	StakeChange bool `mapstructure:"stake_change"`
	Insider     bool `mapstructure:"insider_trading"`
}

// Config 알림 조건 설정
// Watchlist empty means every instrument seen is evaluated.
type Config struct {
	ConsecutiveDays int      `mapstructure:"consecutive_days" validate:"required,gt=0"`
	MinNetAmount    float64  `mapstructure:"min_net_amount" validate:"required,gt=0"`   // won
	MinStakeChange  float64  `mapstructure:"min_stake_change" validate:"required,gt=0"` // percentage points
	Watchlist       []string `mapstructure:"watchlist" validate:"omitempty,dive,len=6,numeric"`

	Rules RulesConfig `mapstructure:"rules"`
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
