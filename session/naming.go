package session

import (
	"strconv"
	"sync"
)

// AnonymousPrefix prefixes every allocated name.
const AnonymousPrefix = "df_"

// Namer allocates names for datasets loaded without one.
// Indexes start at 1 and are never reused, even when the load that took a
// name fails.
type Namer struct {
	mu   sync.Mutex
	last int
}

// Allocate returns the next unused anonymous name.
func (n *Namer) Allocate() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.last++
	return AnonymousPrefix + strconv.Itoa(n.last)
}

// Allocated returns how many names have been handed out.
func (n *Namer) Allocated() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}
