package fees

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeanFuture9999/stock-game1/internal/domain"
)

func taiwanSchedule() Schedule {
	return Schedule{
		FeeRate:      0.001425,
		FeeDiscount:  0.6,
		MinFee:       1,
		TaxRateStock: 0.003,
		TaxRateETF:   0.001,
	}
}

func TestCalculateBuy(t *testing.T) {
	s := taiwanSchedule()

	// 1000 shares @ 100: gross 100000, fee round(100000*0.001425*0.6)=86
	b, err := s.Calculate(domain.ActionBuy, "2330", 1000, 100)
	require.NoError(t, err)

	assert.Equal(t, 100000.0, b.GrossAmount)
	assert.Equal(t, int64(86), b.Fee)
	assert.Equal(t, int64(0), b.Tax, "buys carry no transaction tax")
	assert.Equal(t, 100086.0, b.NetAmount, "buy net is gross plus fee")
}

func TestCalculateSellStock(t *testing.T) {
	s := taiwanSchedule()

	// 1000 shares @ 110: gross 110000, fee round(94.05)=94, tax round(330)=330
	b, err := s.Calculate(domain.ActionSell, "2330", 1000, 110)
	require.NoError(t, err)

	assert.Equal(t, 110000.0, b.GrossAmount)
	assert.Equal(t, int64(94), b.Fee)
	assert.Equal(t, int64(330), b.Tax)
	assert.Equal(t, 110000.0-94-330, b.NetAmount, "sell net is gross minus fee minus tax")
}

func TestCalculateSellETFReducedTax(t *testing.T) {
	s := taiwanSchedule()

	b, err := s.Calculate(domain.ActionSell, "0050", 1000, 110)
	require.NoError(t, err)

	// Same gross and fee as the stock case, tax at the reduced 0.1% rate
	assert.Equal(t, int64(94), b.Fee)
	assert.Equal(t, int64(110), b.Tax)
}

func TestMinimumFeeFloor(t *testing.T) {
	s := taiwanSchedule()

	// Odd lot: 10 shares @ 50 = 500, raw fee 0.4275 rounds to 0, floored to 1
	b, err := s.Calculate(domain.ActionBuy, "2330", 10, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(1), b.Fee)

	// Higher floor configurations are honored
	s.MinFee = 20
	b, err = s.Calculate(domain.ActionBuy, "2330", 10, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(20), b.Fee)
}

func TestCalculateRejectsInvalidInput(t *testing.T) {
	s := taiwanSchedule()

	tests := []struct {
		name   string
		shares int64
		price  float64
	}{
		{"zero shares", 0, 100},
		{"negative shares", -5, 100},
		{"zero price", 100, 0},
		{"negative price", 100, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Calculate(domain.ActionBuy, "2330", tt.shares, tt.price)
			assert.True(t, errors.Is(err, domain.ErrInvalidTradeInput))
		})
	}
}

func TestFeeRoundingIsExact(t *testing.T) {
	s := taiwanSchedule()

	// 117 shares @ 585.3: gross 68480.1, raw fee 58.55...
	// float64 arithmetic here would be vulnerable to representation drift
	b, err := s.Calculate(domain.ActionBuy, "2330", 117, 585.3)
	require.NoError(t, err)
	assert.Equal(t, int64(59), b.Fee)
	assert.InDelta(t, 68480.1, b.GrossAmount, 1e-9)
}
