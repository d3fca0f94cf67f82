package stores

import (
	"sync"

	"github.com/raffle-labs/raffler-go/internal/contract"
)

// ContractCache memoizes the ledger-call client bound to the active account.
// At most one binding exists at a time; it is rebuilt only when the account
// identity changes.
type ContractCache struct {
	mu         sync.Mutex
	caller     contract.Caller
	contractID string
	bound      *contract.Raffler
}

// NewContractCache creates an empty binding cache over the given transport.
func NewContractCache(caller contract.Caller, contractID string) *ContractCache {
	return &ContractCache{
		caller:     caller,
		contractID: contractID,
	}
}

// Raffler returns the memoized binding for account, constructing a new one
// only when the bound account differs.
func (c *ContractCache) Raffler(account contract.AccountID) *contract.Raffler {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bound != nil && c.bound.Account() == account {
		return c.bound
	}

	c.bound = contract.NewRaffler(c.caller, c.contractID, account)
	return c.bound
}
