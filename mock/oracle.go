// Package mock provides a price oracle contract for tests and local runs
package mock

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/govm-net/pricefetcher/contract"
	"github.com/govm-net/pricefetcher/core"
	"github.com/govm-net/pricefetcher/types"
)

// OracleKind is the name the mock oracle is registered under
const OracleKind = "mock-oracle"

// DefaultRecencyDurationSec is used when new is called without arguments
const DefaultRecencyDurationSec types.DurationSec = 90

// ErrOracleUnavailable is raised by get_price_data while the oracle is failing
var ErrOracleUnavailable = errors.New("oracle unavailable")

func init() {
	contract.MustRegister(OracleKind, func() core.Contract { return Oracle{} })
}

// OracleState is the persisted record of the mock oracle
type OracleState struct {
	Quotes             map[core.AccountID]types.Price `codec:"quotes"`
	RecencyDurationSec types.DurationSec              `codec:"recency_duration_sec"`
	Failing            bool                           `codec:"failing"`
}

type NewArgs struct {
	RecencyDurationSec types.DurationSec `json:"recency_duration_sec,omitempty"`
}

type SetPriceArgs struct {
	AssetID core.AccountID `json:"asset_id"`
	Price   types.Price    `json:"price"`
}

type SetFailingArgs struct {
	Failing bool `json:"failing"`
}

// Oracle is a price oracle whose quotes are set by its own account
type Oracle struct{}

func (Oracle) Methods() []core.Method {
	return []core.Method{
		{Name: "new", Init: true, Private: true, Handler: handleNew},
		{Name: "set_price", Private: true, Handler: handleSetPrice},
		{Name: "set_failing", Private: true, Handler: handleSetFailing},
		{Name: "get_price_data", Handler: handleGetPriceData},
	}
}

func decodeArgs(params []byte, v any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return fmt.Errorf("%w: failed to unmarshal params: %v", core.ErrInvalidArgument, err)
	}
	return nil
}

func loadState(ctx core.Context) OracleState {
	core.Assert(ctx.StateExists(), core.ErrNotInitialized)
	var s OracleState
	core.Assert(ctx.ReadState(&s))
	if s.Quotes == nil {
		s.Quotes = make(map[core.AccountID]types.Price)
	}
	return s
}

func handleNew(ctx core.Context, params []byte) (any, error) {
	var args NewArgs
	if err := decodeArgs(params, &args); err != nil {
		return nil, err
	}
	core.Assert(!ctx.StateExists(), core.ErrAlreadyInitialized)

	s := OracleState{
		Quotes:             make(map[core.AccountID]types.Price),
		RecencyDurationSec: args.RecencyDurationSec,
	}
	if s.RecencyDurationSec == 0 {
		s.RecencyDurationSec = DefaultRecencyDurationSec
	}
	core.Assert(ctx.WriteState(&s))
	ctx.Log("oracle_initialized", "recency_duration_sec", s.RecencyDurationSec)
	return nil, nil
}

func handleSetPrice(ctx core.Context, params []byte) (any, error) {
	var args SetPriceArgs
	if err := decodeArgs(params, &args); err != nil {
		return nil, err
	}
	if err := args.AssetID.Validate(); err != nil {
		return nil, err
	}

	s := loadState(ctx)
	s.Quotes[args.AssetID] = args.Price
	core.Assert(ctx.WriteState(&s))
	ctx.Log("price_set", "asset_id", args.AssetID, "price", args.Price.String())
	return nil, nil
}

func handleSetFailing(ctx core.Context, params []byte) (any, error) {
	var args SetFailingArgs
	if err := decodeArgs(params, &args); err != nil {
		return nil, err
	}

	s := loadState(ctx)
	s.Failing = args.Failing
	core.Assert(ctx.WriteState(&s))
	return nil, nil
}

func handleGetPriceData(ctx core.Context, params []byte) (any, error) {
	var args types.GetPriceDataArgs
	if err := decodeArgs(params, &args); err != nil {
		return nil, err
	}
	return GetPriceData(ctx, args.AssetIDs), nil
}

// GetPriceData returns a snapshot of the quotes for assetIDs.
// A nil assetIDs returns every quoted asset sorted by id.
func GetPriceData(ctx core.Context, assetIDs []core.AccountID) types.PriceData {
	s := loadState(ctx)
	core.Assert(!s.Failing, ErrOracleUnavailable)

	if assetIDs == nil {
		assetIDs = make([]core.AccountID, 0, len(s.Quotes))
		for id := range s.Quotes {
			assetIDs = append(assetIDs, id)
		}
		sort.Slice(assetIDs, func(i, j int) bool { return assetIDs[i] < assetIDs[j] })
	}

	prices := make([]types.AssetOptionalPrice, 0, len(assetIDs))
	for _, id := range assetIDs {
		entry := types.AssetOptionalPrice{AssetID: id}
		if p, ok := s.Quotes[id]; ok {
			p := p
			entry.Price = &p
		}
		prices = append(prices, entry)
	}

	return types.PriceData{
		Timestamp:          types.U64(ctx.BlockTime()),
		RecencyDurationSec: s.RecencyDurationSec,
		Prices:             prices,
	}
}
