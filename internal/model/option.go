package model

import (
	"fmt"
	"strings"
)

// OptionType distinguishes call and put payoffs.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// ParseOptionType accepts "call"/"put" in any case, plus the "c"/"p" shorthands.
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	}
	return "", fmt.Errorf("unknown option type %q", s)
}

func (t OptionType) Valid() bool { return t == Call || t == Put }

const (
	DefaultSimulations = 100_000
	MinSimulations     = 1_000
	MaxSimulations     = 1_000_000
)

// PricingInputs is the immutable parameter set of one pricing run.
type PricingInputs struct {
	SpotPrice      float64    `json:"spot_price"`
	StrikePrice    float64    `json:"strike_price"`
	TimeToMaturity float64    `json:"time_to_maturity"` // years
	Volatility     float64    `json:"volatility"`       // annualized, 0.2 = 20%
	RiskFreeRate   float64    `json:"risk_free_rate"`   // annualized
	OptionType     OptionType `json:"option_type"`
	NumSimulations int        `json:"num_simulations"`
}
