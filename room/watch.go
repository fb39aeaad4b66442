/*
watch.go - Observer hub for room change notifications

PURPOSE:
  The surrounding system is event-driven: whenever a room changes, every
  subscribed caller should re-run the pure computations and re-render.
  The hub is that contract in-process. It carries no payload - just a
  "something changed" tick - because views are always recomputed from the
  store, never patched incrementally.

  Notifications are non-blocking: a slow watcher misses intermediate
  ticks but always sees one after the latest change, which is all a
  recompute-from-scratch consumer needs.
*/
package room

import "sync"

type watchHub struct {
	mu       sync.Mutex
	nextID   int
	watchers map[string]map[int]chan struct{}
}

func newWatchHub() *watchHub {
	return &watchHub{watchers: make(map[string]map[int]chan struct{})}
}

func (h *watchHub) watch(roomID string) (<-chan struct{}, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++

	ch := make(chan struct{}, 1)
	if h.watchers[roomID] == nil {
		h.watchers[roomID] = make(map[int]chan struct{})
	}
	h.watchers[roomID][id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if set, ok := h.watchers[roomID]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(h.watchers, roomID)
			}
		}
	}
	return ch, cancel
}

func (h *watchHub) notify(roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.watchers[roomID] {
		select {
		case ch <- struct{}{}:
		default: // watcher already has a pending tick
		}
	}
}

// Watch subscribes to change ticks for one room. The returned cancel
// function must be called to release the subscription.
func (s *Service) Watch(roomID string) (<-chan struct{}, func()) {
	return s.hub.watch(roomID)
}
