// Package history caches the account's document list for the navigation
// panel. Consistency is lazy: the cache is refreshed when the panel is
// activated, never pushed to by a fresh upload.
package history

import "docchat/internal/api"

// Cache holds the last successfully fetched document list. A failed refresh
// keeps the previous list and records a distinct error state, so the panel
// can tell "no documents yet" from "could not load".
type Cache struct {
	docs   []api.Document
	err    error
	loaded bool
}

func NewCache() *Cache {
	return &Cache{}
}

// Apply records the outcome of a refresh.
func (c *Cache) Apply(docs []api.Document, err error) {
	if err != nil {
		c.err = err
		return
	}
	c.docs = docs
	c.err = nil
	c.loaded = true
}

// Documents returns the cached list, possibly from before a failed refresh.
func (c *Cache) Documents() []api.Document { return c.docs }

// Err reports the most recent refresh failure, cleared by a success.
func (c *Cache) Err() error { return c.err }

// Loaded reports whether at least one refresh has succeeded; false plus an
// empty list means "never loaded", not "no documents".
func (c *Cache) Loaded() bool { return c.loaded }
