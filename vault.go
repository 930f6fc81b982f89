package pgc

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// ValueSink releases plaintext value out of the ledger on burn. Release runs
// after the burn is committed; an error reverts the burn.
type ValueSink interface {
	Release(receiver common.Address, amount uint64) error
}

// MemoryVault tracks released value per receiver.
type MemoryVault struct {
	mu       sync.Mutex
	released map[common.Address]uint64
}

func NewMemoryVault() *MemoryVault {
	return &MemoryVault{released: make(map[common.Address]uint64)}
}

func (v *MemoryVault) Release(receiver common.Address, amount uint64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.released[receiver] += amount
	return nil
}

func (v *MemoryVault) Released(receiver common.Address) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.released[receiver]
}
