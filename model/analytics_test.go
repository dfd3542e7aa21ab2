package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateJSON(t *testing.T) {
	tests := []struct {
		rate Rate
		want string
	}{
		{0, "0.00"},
		{5, "5.00"},
		{12.5, "12.50"},
		{33.33, "33.33"},
		{100, "100.00"},
		{Rate(math.NaN()), "0.00"},
	}
	for _, tt := range tests {
		data, err := json.Marshal(tt.rate)
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(data))
	}
}

func TestConversionRateFieldsRenderTwoDecimals(t *testing.T) {
	link := AffiliateLinkWithStats{ConversionRate: 5}
	data, err := json.Marshal(link)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"conversion_rate":5.00`)

	stage := FunnelStage{Stage: "conversions", Count: 5, Rate: 12.5}
	data, err = json.Marshal(stage)
	require.NoError(t, err)
	assert.JSONEq(t, `{"stage":"conversions","count":5,"rate":12.50}`, string(data))

	decoded := FunnelStage{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, Rate(12.5), decoded.Rate)
}
