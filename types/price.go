// Package types contains type definitions shared by the host environment and contracts
package types

import (
	"math/big"
	"strings"

	"github.com/govm-net/pricefetcher/core"
)

// DurationSec is a duration in seconds
type DurationSec = uint32

// Price is a fixed-point value: Multiplier / 10^Decimals
type Price struct {
	Multiplier U128 `json:"multiplier" codec:"multiplier"`
	Decimals   uint8 `json:"decimals" codec:"decimals"`
}

// Rat returns the exact value of the price
func (p Price) Rat() *big.Rat {
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(p.Decimals)), nil)
	return new(big.Rat).SetFrac(p.Multiplier.Big(), denom)
}

// String renders the price in decimal notation without trailing zeros
func (p Price) String() string {
	s := p.Rat().FloatString(int(p.Decimals))
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

// AssetOptionalPrice is the quote of one asset; Price is nil when the oracle has none
type AssetOptionalPrice struct {
	AssetID core.AccountID `json:"asset_id" codec:"asset_id"`
	Price   *Price         `json:"price" codec:"price"`
}

// PriceData is a snapshot of asset prices produced by a price oracle
type PriceData struct {
	Timestamp          U64                  `json:"timestamp"`
	RecencyDurationSec DurationSec          `json:"recency_duration_sec"`
	Prices             []AssetOptionalPrice `json:"prices"`
}

// Find returns the entry for asset, if present
func (d PriceData) Find(asset core.AccountID) (AssetOptionalPrice, bool) {
	for _, p := range d.Prices {
		if p.AssetID == asset {
			return p, true
		}
	}
	return AssetOptionalPrice{}, false
}

// GetPriceDataArgs are the arguments of an oracle's get_price_data.
// A nil AssetIDs asks for every asset the oracle knows.
type GetPriceDataArgs struct {
	AssetIDs []core.AccountID `json:"asset_ids"`
}
