package core

import (
	"fmt"
	"regexp"
)

const (
	MinAccountIDLen = 2
	MaxAccountIDLen = 64
)

var accountIDPattern = regexp.MustCompile(`^(([a-z\d]+[\-_])*[a-z\d]+\.)*([a-z\d]+[\-_])*[a-z\d]+$`)

// AccountID identifies an account, e.g. "priceoracle.testnet"
type AccountID string

// ParseAccountID validates s and returns it as an AccountID
func ParseAccountID(s string) (AccountID, error) {
	if len(s) < MinAccountIDLen || len(s) > MaxAccountIDLen {
		return "", fmt.Errorf("%w: %q has length %d", ErrInvalidAccountID, s, len(s))
	}
	if !accountIDPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAccountID, s)
	}
	return AccountID(s), nil
}

// MustAccountID is like ParseAccountID but panics on invalid input
func MustAccountID(s string) AccountID {
	id, err := ParseAccountID(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id AccountID) String() string {
	return string(id)
}

// Validate reports whether id is well formed
func (id AccountID) Validate() error {
	_, err := ParseAccountID(string(id))
	return err
}
