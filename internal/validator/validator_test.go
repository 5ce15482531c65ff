package validator

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OptionPrisma/internal/model"
)

func validInputs() model.PricingInputs {
	return model.PricingInputs{
		SpotPrice:      100,
		StrikePrice:    105,
		TimeToMaturity: 1.0,
		Volatility:     0.25,
		RiskFreeRate:   0.05,
		OptionType:     model.Call,
		NumSimulations: model.DefaultSimulations,
	}
}

func TestValidate_ValidInputs(t *testing.T) {
	assert.NoError(t, Validate(validInputs()))

	in := validInputs()
	in.Volatility = 0
	assert.NoError(t, Validate(in), "zero volatility passes the domain check")

	in = validInputs()
	in.Volatility = MaxVolatility
	in.RiskFreeRate = MinRate
	in.TimeToMaturity = MaxMaturity
	assert.NoError(t, Validate(in), "bounds are inclusive")
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.PricingInputs)
		field  string
		phrase string
	}{
		{"zero spot", func(in *model.PricingInputs) { in.SpotPrice = 0 }, "spot_price", "spot price"},
		{"negative spot", func(in *model.PricingInputs) { in.SpotPrice = -100 }, "spot_price", "spot price"},
		{"zero strike", func(in *model.PricingInputs) { in.StrikePrice = 0 }, "strike_price", "strike price"},
		{"negative strike", func(in *model.PricingInputs) { in.StrikePrice = -1 }, "strike_price", "strike price"},
		{"zero maturity", func(in *model.PricingInputs) { in.TimeToMaturity = 0 }, "time_to_maturity", "time to maturity"},
		{"negative maturity", func(in *model.PricingInputs) { in.TimeToMaturity = -0.5 }, "time_to_maturity", "time to maturity"},
		{"maturity above ten years", func(in *model.PricingInputs) { in.TimeToMaturity = 10.5 }, "time_to_maturity", "time to maturity"},
		{"negative volatility", func(in *model.PricingInputs) { in.Volatility = -0.2 }, "volatility", "volatility"},
		{"volatility above 500%", func(in *model.PricingInputs) { in.Volatility = 6.0 }, "volatility", "volatility"},
		{"rate too low", func(in *model.PricingInputs) { in.RiskFreeRate = -0.11 }, "risk_free_rate", "risk-free rate"},
		{"rate too high", func(in *model.PricingInputs) { in.RiskFreeRate = 0.31 }, "risk_free_rate", "risk-free rate"},
		{"too few paths", func(in *model.PricingInputs) { in.NumSimulations = 999 }, "num_simulations", "simulations"},
		{"too many paths", func(in *model.PricingInputs) { in.NumSimulations = 1_000_001 }, "num_simulations", "simulations"},
		{"unknown option type", func(in *model.PricingInputs) { in.OptionType = "straddle" }, "option_type", "option type"},
		{"NaN spot", func(in *model.PricingInputs) { in.SpotPrice = math.NaN() }, "spot_price", "spot price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInputs()
			tt.mutate(&in)

			err := Validate(in)
			require.Error(t, err)

			var ve *model.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
			assert.Contains(t, strings.ToLower(ve.Error()), tt.phrase)
		})
	}
}

func TestValidate_ShortCircuitsInOrder(t *testing.T) {
	in := validInputs()
	in.SpotPrice = -1
	in.Volatility = -1
	in.RiskFreeRate = 1

	var ve *model.ValidationError
	require.ErrorAs(t, Validate(in), &ve)
	assert.Equal(t, "spot_price", ve.Field)
}
