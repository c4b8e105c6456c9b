package search

import "sync"

// Cell is an observable value. Subscribers are called with every value set
// after they subscribed. Calls for different changes may run concurrently, so a
// subscriber that needs the latest value should call Get.
type Cell[T any] struct {
	mu     sync.Mutex
	value  T
	nextID int
	subs   map[int]func(T)
}

func newCell[T any](initial T) *Cell[T] {
	return &Cell[T]{value: initial, subs: make(map[int]func(T))}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Subscribe registers fn and returns a function that removes it.
// fn must not block; it runs on whichever goroutine changed the value.
func (c *Cell[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// set stores v and returns the subscribers to notify. Callers notify after
// releasing the controller lock.
func (c *Cell[T]) set(v T) func() {
	c.mu.Lock()
	c.value = v
	fns := make([]func(T), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	return func() {
		for _, fn := range fns {
			fn(v)
		}
	}
}
