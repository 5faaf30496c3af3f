package mediator

import (
	"reflect"
	"sync"
)

// Cache memoizes resolution per request and notification type: the composed
// behavior chain around a handler, and the subscriber list of a notification.
//
// A Cache is created once at startup and belongs to the mediators built from
// one registry. Entries are immutable; concurrent first use may compute an
// entry twice, and the first stored value wins. Reset is for tests and hot
// reload tooling; it never changes what a dispatch returns.
type Cache struct {
	pipelines   sync.Map // reflect.Type -> invoker
	subscribers sync.Map // reflect.Type -> []subscriberEntry
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Reset drops every entry.
func (c *Cache) Reset() {
	c.pipelines.Clear()
	c.subscribers.Clear()
}

// Len returns the number of cached entries of both kinds.
func (c *Cache) Len() int {
	n := 0
	count := func(_, _ any) bool {
		n++
		return true
	}
	c.pipelines.Range(count)
	c.subscribers.Range(count)
	return n
}

func (c *Cache) pipeline(t reflect.Type, build func() (invoker, error)) (invoker, error) {
	if v, ok := c.pipelines.Load(t); ok {
		return v.(invoker), nil
	}
	inv, err := build()
	if err != nil {
		return nil, err
	}
	actual, _ := c.pipelines.LoadOrStore(t, inv)
	return actual.(invoker), nil
}

func (c *Cache) subscribersOf(t reflect.Type, build func() []subscriberEntry) []subscriberEntry {
	if v, ok := c.subscribers.Load(t); ok {
		return v.([]subscriberEntry)
	}
	actual, _ := c.subscribers.LoadOrStore(t, build())
	return actual.([]subscriberEntry)
}
