package stores

import "sync"

// inflightGuard rejects concurrent duplicates of the same mutating ledger
// call. Keys are "(operation, entity, account)" strings; the double-click
// problem, solved at the store boundary.
type inflightGuard struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newInflightGuard() *inflightGuard {
	return &inflightGuard{keys: make(map[string]struct{})}
}

// begin claims the key, or returns ErrCallInFlight if it is already held.
func (g *inflightGuard) begin(key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.keys[key]; ok {
		return ErrCallInFlight
	}
	g.keys[key] = struct{}{}
	return nil
}

// end releases the key.
func (g *inflightGuard) end(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, key)
}
