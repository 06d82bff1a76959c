package pennon

import (
	"sync"

	"github.com/pennon-io/openfeature-provider-go/sdk"
)

// clientHolder stores the wrapped client handle between Init and Shutdown.
// The handle is either present or absent; callers check the second return
// value instead of comparing against nil.
//
// The lock only makes the handle reads and writes themselves safe. Calling
// Shutdown while evaluations are in flight remains caller misuse: an
// evaluation that already fetched the handle will keep using the destroyed
// client.
type clientHolder struct {
	mu      sync.RWMutex
	client  sdk.Client
	present bool
}

// Get returns the held client, if any.
func (h *clientHolder) Get() (sdk.Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.client, h.present
}

// Set stores client as the held handle, replacing any previous one.
func (h *clientHolder) Set(client sdk.Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.client = client
	h.present = true
}

// Clear removes the held handle.
func (h *clientHolder) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.client = nil
	h.present = false
}
