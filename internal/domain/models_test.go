package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTradeAction(t *testing.T) {
	tests := []struct {
		input   string
		want    TradeAction
		wantErr bool
	}{
		{"buy", ActionBuy, false},
		{"BUY", ActionBuy, false},
		{" Sell ", ActionSell, false},
		{"hold", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTradeAction(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTradeInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsETF(t *testing.T) {
	assert.True(t, IsETF("0050"))
	assert.True(t, IsETF("00878"))
	assert.False(t, IsETF("2330"))
	assert.False(t, IsETF("2002"))
}

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "2330", NormalizeSymbol(" 2330 "))
	assert.Equal(t, "TSLA", NormalizeSymbol("tsla"))
}
