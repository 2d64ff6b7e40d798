// Package gas meters the gas burnt by one receipt execution
package gas

import (
	"fmt"
	"sync"

	"github.com/govm-net/pricefetcher/core"
)

// Meter tracks the gas left for one call
type Meter struct {
	mu    sync.RWMutex
	limit core.Gas
	gas   core.Gas
	used  core.Gas
}

// NewMeter 初始化gas
func NewMeter(limit core.Gas) *Meter {
	return &Meter{limit: limit, gas: limit}
}

// Limit returns the gas the meter was created with
func (m *Meter) Limit() core.Gas {
	return m.limit
}

// Remaining 获取剩余gas
func (m *Meter) Remaining() core.Gas {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gas
}

// Used 获取已使用的gas
func (m *Meter) Used() core.Gas {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.used
}

// Consume 消耗gas, returns core.ErrOutOfGas without consuming anything if not enough is left
func (m *Meter) Consume(amount core.Gas) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if amount == 0 {
		return nil
	}
	if m.gas < amount {
		return fmt.Errorf("%w: gas=%d, need=%d", core.ErrOutOfGas, m.gas, amount)
	}

	m.gas -= amount
	m.used += amount
	return nil
}

// MustConsume is Consume for contract code paths, panicking when out of gas
func (m *Meter) MustConsume(amount core.Gas) {
	if err := m.Consume(amount); err != nil {
		panic(err)
	}
}

// Refund 退还gas
func (m *Meter) Refund(amount core.Gas) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if amount == 0 {
		return nil
	}
	if m.used < amount {
		return fmt.Errorf("invalid refund: used=%d, refund=%d", m.used, amount)
	}

	m.gas += amount
	m.used -= amount
	return nil
}

// Exhaust burns all remaining gas
func (m *Meter) Exhaust() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.used += m.gas
	m.gas = 0
}
