package respconn

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// Registry tracks one live Conn per connection id, so a server
// handling many concurrent connections can look one up (to push a
// message, or to close it) without its own locking. Each entry is
// touched only by the goroutine servicing that connection; the
// registry itself is safe for concurrent Store/Load/Delete.
type Registry struct {
	conns *xsync.MapOf[string, Conn]
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{conns: xsync.NewMapOf[string, Conn]()}
}

// Store registers conn under id, replacing any previous entry.
func (r *Registry) Store(id string, conn Conn) {
	r.conns.Store(id, conn)
}

// Load returns the Conn registered under id, if any.
func (r *Registry) Load(id string) (Conn, bool) {
	return r.conns.Load(id)
}

// Delete removes id from the registry without closing its Conn.
func (r *Registry) Delete(id string) {
	r.conns.Delete(id)
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	return r.conns.Size()
}

// Range calls f for every registered connection, in no particular
// order. Range stops early if f returns false.
func (r *Registry) Range(f func(id string, conn Conn) bool) {
	r.conns.Range(f)
}
