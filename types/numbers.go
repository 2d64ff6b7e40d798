package types

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
)

// U64 is a uint64 carried as a decimal string in JSON,
// so that clients with float64 numbers do not lose precision.
type U64 uint64

func (u U64) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatUint(uint64(u), 10))
}

func (u *U64) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("u64 must be a decimal string: %w", err)
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid u64 %q: %w", s, err)
	}
	*u = U64(v)
	return nil
}

// U128 is an unsigned 128-bit integer carried as a decimal string in JSON
type U128 struct {
	Hi uint64 `json:"hi" codec:"hi"`
	Lo uint64 `json:"lo" codec:"lo"`
}

var mask64 = new(big.Int).SetUint64(^uint64(0))

// U128FromUint64 converts v to U128
func U128FromUint64(v uint64) U128 {
	return U128{Lo: v}
}

// U128FromBig converts v to U128, failing if it does not fit
func U128FromBig(v *big.Int) (U128, error) {
	if v.Sign() < 0 {
		return U128{}, fmt.Errorf("u128 can not be negative: %s", v)
	}
	if v.BitLen() > 128 {
		return U128{}, fmt.Errorf("u128 overflow: %s", v)
	}
	hi := new(big.Int).Rsh(v, 64)
	lo := new(big.Int).And(v, mask64)
	return U128{Hi: hi.Uint64(), Lo: lo.Uint64()}, nil
}

// ParseU128 parses a decimal string
func ParseU128(s string) (U128, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return U128{}, fmt.Errorf("invalid u128 %q", s)
	}
	return U128FromBig(v)
}

// MustU128 is like ParseU128 but panics on invalid input
func MustU128(s string) U128 {
	u, err := ParseU128(s)
	if err != nil {
		panic(err)
	}
	return u
}

// Big returns u as a new big.Int
func (u U128) Big() *big.Int {
	v := new(big.Int).SetUint64(u.Hi)
	v.Lsh(v, 64)
	return v.Or(v, new(big.Int).SetUint64(u.Lo))
}

func (u U128) IsZero() bool {
	return u.Hi == 0 && u.Lo == 0
}

func (u U128) String() string {
	return u.Big().String()
}

func (u U128) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

func (u *U128) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("u128 must be a decimal string: %w", err)
	}
	v, err := ParseU128(s)
	if err != nil {
		return err
	}
	*u = v
	return nil
}
