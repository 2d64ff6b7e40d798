// Package contract keeps the contract kinds the VM is able to deploy
package contract

import (
	"fmt"
	"sort"
	"sync"

	"github.com/govm-net/pricefetcher/core"
)

// Constructor creates a new instance of a contract kind
type Constructor func() core.Contract

// Registry defines the interface for managing deployable contract kinds
type Registry interface {
	// Register adds a new contract kind to the registry
	Register(kind string, constructor Constructor) error
	// Get returns a new instance of the specified contract kind
	Get(kind string) (core.Contract, error)
	// ListRegistered returns the registered kinds in sorted order
	ListRegistered() []string
}

// registry implements the Registry interface
type registry struct {
	mu        sync.RWMutex
	contracts map[string]Constructor
}

var defaultRegistry Registry = NewRegistry()

// NewRegistry creates an empty registry
func NewRegistry() Registry {
	return &registry{contracts: make(map[string]Constructor)}
}

// GetRegistry returns the global Registry instance
func GetRegistry() Registry {
	return defaultRegistry
}

func (r *registry) Register(kind string, constructor Constructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if kind == "" || constructor == nil {
		return fmt.Errorf("invalid contract kind %q", kind)
	}
	if _, exists := r.contracts[kind]; exists {
		return fmt.Errorf("contract kind %s already registered", kind)
	}

	r.contracts[kind] = constructor
	return nil
}

func (r *registry) Get(kind string) (core.Contract, error) {
	r.mu.RLock()
	constructor, exists := r.contracts[kind]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: kind %s not registered", core.ErrContractNotFound, kind)
	}
	return constructor(), nil
}

func (r *registry) ListRegistered() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.contracts))
	for kind := range r.contracts {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Package level functions that delegate to defaultRegistry

// Register adds a new contract kind to the global registry
func Register(kind string, constructor Constructor) error {
	return GetRegistry().Register(kind, constructor)
}

// MustRegister is Register for use in init functions
func MustRegister(kind string, constructor Constructor) {
	if err := Register(kind, constructor); err != nil {
		panic(err)
	}
}

// Get returns a new instance of the specified contract kind
func Get(kind string) (core.Contract, error) {
	return GetRegistry().Get(kind)
}

// ListRegistered returns all registered contract kinds
func ListRegistered() []string {
	return GetRegistry().ListRegistered()
}
