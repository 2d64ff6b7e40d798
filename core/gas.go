package core

import "fmt"

// Gas is a computational allowance, enforced by the VM
type Gas uint64

// TGas is one teragas
const TGas Gas = 1_000_000_000_000

func (g Gas) String() string {
	if g%TGas == 0 {
		return fmt.Sprintf("%d TGas", g/TGas)
	}
	return fmt.Sprintf("%d gas", uint64(g))
}
