package server

import (
	"net/http"
	"sync"
)

// flashes holds one-shot messages keyed by the client's remote address.
type flashes struct {
	mu       sync.Mutex
	messages map[string]string
}

func newFlashes() *flashes {
	return &flashes{messages: make(map[string]string)}
}

func (f *flashes) set(r *http.Request, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[r.RemoteAddr] = message
}

// pop retrieves and immediately deletes a message
func (f *flashes) pop(r *http.Request) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	message, ok := f.messages[r.RemoteAddr]
	if ok {
		delete(f.messages, r.RemoteAddr)
	}
	return message
}
