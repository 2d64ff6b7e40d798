package types

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestU128(t *testing.T) {
	u := MustU128("150000000000000000000000")
	assert.Equal(t, "150000000000000000000000", u.String())
	assert.NotZero(t, u.Hi)

	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.Equal(t, `"150000000000000000000000"`, string(data))

	var decoded U128
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, u, decoded)

	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	_, err = ParseU128(max.String())
	assert.NoError(t, err)

	_, err = ParseU128(new(big.Int).Lsh(big.NewInt(1), 128).String())
	assert.Error(t, err)
	_, err = ParseU128("-1")
	assert.Error(t, err)
	_, err = ParseU128("12a")
	assert.Error(t, err)

	// numbers are rejected, only strings are accepted
	assert.Error(t, json.Unmarshal([]byte(`150`), &decoded))
}

func TestU64(t *testing.T) {
	data, err := json.Marshal(U64(1700000000000000000))
	require.NoError(t, err)
	assert.Equal(t, `"1700000000000000000"`, string(data))

	var v U64
	require.NoError(t, json.Unmarshal(data, &v))
	assert.Equal(t, U64(1700000000000000000), v)
	assert.Error(t, json.Unmarshal([]byte(`"x"`), &v))
}

func TestPriceString(t *testing.T) {
	tests := []struct {
		multiplier string
		decimals   uint8
		want       string
	}{
		{"150000000000000000000000", 24, "0.15"},
		{"150000000000000000000000000", 24, "150"},
		{"123456", 2, "1234.56"},
		{"100", 0, "100"},
		{"0", 6, "0"},
	}
	for _, tt := range tests {
		p := Price{Multiplier: MustU128(tt.multiplier), Decimals: tt.decimals}
		assert.Equal(t, tt.want, p.String(), "%s/10^%d", tt.multiplier, tt.decimals)
	}
}

func TestPriceDataJSON(t *testing.T) {
	data := PriceData{
		Timestamp:          1700000000000000000,
		RecencyDurationSec: 90,
		Prices: []AssetOptionalPrice{
			{AssetID: "usdn.testnet", Price: &Price{Multiplier: MustU128("150000000000000000000000"), Decimals: 24}},
			{AssetID: "wrap.testnet"},
		},
	}

	raw, err := json.Marshal(data)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"timestamp": "1700000000000000000",
		"recency_duration_sec": 90,
		"prices": [
			{"asset_id": "usdn.testnet", "price": {"multiplier": "150000000000000000000000", "decimals": 24}},
			{"asset_id": "wrap.testnet", "price": null}
		]
	}`, string(raw))

	entry, ok := data.Find("wrap.testnet")
	assert.True(t, ok)
	assert.Nil(t, entry.Price)
	_, ok = data.Find("missing.testnet")
	assert.False(t, ok)
}
