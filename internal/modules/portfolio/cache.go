package portfolio

import "sync"

// positionCache is a read-through cache over the position table. Entries are
// invalidated whenever the ledger records or edits a trade for the symbol, so
// a hit is always consistent with the persisted state.
type positionCache struct {
	mu        sync.RWMutex
	positions map[string]Position
}

func newPositionCache() *positionCache {
	return &positionCache{positions: make(map[string]Position)}
}

func (c *positionCache) get(symbol string) (Position, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.positions[symbol]
	return p, ok
}

func (c *positionCache) set(p Position) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.positions[p.Symbol] = p
}

func (c *positionCache) invalidate(symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.positions, symbol)
}

func (c *positionCache) invalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.positions = make(map[string]Position)
}
