// Package cache provides a generic, size-bounded LRU cache for derived
// bitmaps.
//
//	c := cache.New[Key, *image.Alpha](64)
//	m := c.GetOrCreate(k, func() *image.Alpha { return build(k) })
//	c.DeleteFunc(func(k Key) bool { return k.Source == replaced })
//
// Entries are never mutated in place: when the source of a derived value
// changes, the caller drops the stale keys and lets the next lookup rebuild
// them.
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
