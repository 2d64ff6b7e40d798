// Package abi describes the entry points a deployed contract exposes
package abi

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/govm-net/pricefetcher/core"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var methodNamePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)*$`)

// Function is one entry point of a contract
type Function struct {
	Name    string `json:"name"`
	GoName  string `json:"go_name"`
	Init    bool   `json:"init,omitempty"`
	Private bool   `json:"private,omitempty"`
}

// ABI is the interface of a contract kind
type ABI struct {
	Kind      string     `json:"kind"`
	Functions []Function `json:"functions"`
}

// GoName converts a snake_case method name to the exported Go identifier
// of the function implementing it, e.g. query_price -> QueryPrice.
func GoName(method string) string {
	caser := cases.Title(language.English)
	var sb strings.Builder
	for _, part := range strings.Split(method, "_") {
		sb.WriteString(caser.String(part))
	}
	return sb.String()
}

// ExtractABI builds the ABI of contract c.
// Method names must be unique snake_case identifiers with a handler.
func ExtractABI(kind string, c core.Contract) (*ABI, error) {
	methods := c.Methods()
	abi := &ABI{
		Kind:      kind,
		Functions: make([]Function, 0, len(methods)),
	}

	seen := make(map[string]bool, len(methods))
	for _, m := range methods {
		if !methodNamePattern.MatchString(m.Name) {
			return nil, fmt.Errorf("invalid method name %q", m.Name)
		}
		if seen[m.Name] {
			return nil, fmt.Errorf("duplicate method %q", m.Name)
		}
		if m.Handler == nil {
			return nil, fmt.Errorf("method %q has no handler", m.Name)
		}
		seen[m.Name] = true

		abi.Functions = append(abi.Functions, Function{
			Name:    m.Name,
			GoName:  GoName(m.Name),
			Init:    m.Init,
			Private: m.Private,
		})
	}

	return abi, nil
}

// Function returns the entry point called name
func (a *ABI) Function(name string) (Function, bool) {
	for _, fn := range a.Functions {
		if fn.Name == name {
			return fn, true
		}
	}
	return Function{}, false
}

// JSON returns the indented JSON form of the ABI
func (a *ABI) JSON() ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}
