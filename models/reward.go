package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AllowedCurrencies are the reward currencies a bounty may be posted in.
var AllowedCurrencies = []string{"BANK", "ETH", "USDC", "USDT", "BTC"}

// MaxRewardScale bounds the decimal precision recorded on a reward.
const MaxRewardScale = 18

// Reward is the economic side of a bounty.
// Amount is the pre-scaled integer-like value; Scale is the number of decimal
// places used at creation. AmountWithoutScale = Amount / 10^Scale.
type Reward struct {
	Currency           string  `json:"currency"`
	Amount             float64 `json:"amount"`
	Scale              int     `json:"scale"`
	AmountWithoutScale float64 `json:"amountWithoutScale"`
}

// NewReward builds a reward from a human-entered decimal such as "12.50".
// The scale is the number of decimal places in the input.
func NewReward(currency, value string) (Reward, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Reward{}, fmt.Errorf("invalid reward %q: %w", value, err)
	}
	if d.IsNegative() {
		return Reward{}, fmt.Errorf("reward must not be negative")
	}
	scale := 0
	if exp := d.Exponent(); exp < 0 {
		scale = int(-exp)
	}
	if scale > MaxRewardScale {
		return Reward{}, fmt.Errorf("reward has more than %d decimal places", MaxRewardScale)
	}
	amount, _ := d.Shift(int32(scale)).Float64()
	unscaled, _ := d.Float64()
	return Reward{
		Currency:           currency,
		Amount:             amount,
		Scale:              scale,
		AmountWithoutScale: unscaled,
	}, nil
}

// Unscaled reconstructs AmountWithoutScale from Amount and Scale.
func (r Reward) Unscaled() float64 {
	v, _ := decimal.NewFromFloat(r.Amount).Shift(int32(-r.Scale)).Float64()
	return v
}

// Normalize recomputes AmountWithoutScale so the three numeric fields agree.
func (r Reward) Normalize() Reward {
	r.AmountWithoutScale = r.Unscaled()
	return r
}

// Consistent reports whether AmountWithoutScale matches Amount and Scale.
func (r Reward) Consistent() bool {
	return decimal.NewFromFloat(r.AmountWithoutScale).Equal(
		decimal.NewFromFloat(r.Amount).Shift(int32(-r.Scale)),
	)
}
