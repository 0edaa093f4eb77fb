// Package cache provides a keyed resource cache with weak retention.
//
// A ResourceCache remembers how to find a resource while some caller still
// holds it, but never keeps it alive on its own. When the last strong
// reference is dropped the garbage collector reclaims the resource, and the
// next Get for that key runs the Factory again.
//
// Resources should be pointers to values of at least a few words with some
// pointer field or padding; the runtime may batch very small pointer-free
// allocations, which delays their collection.
package cache
