package gamehub

// PresenceRegistry maps a user identity to all of its live connections
// (the "personal room"). It is owned by the hub goroutine and must only be
// mutated from there; nothing here is safe for concurrent use.
type PresenceRegistry struct {
	byUser map[string]map[string]Client
}

func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{
		byUser: make(map[string]map[string]Client),
	}
}

// Join adds the connection to the identity's personal room. Re-joining is a
// no-op for an already-tracked connection.
func (r *PresenceRegistry) Join(identity string, c Client) {
	conns, ok := r.byUser[identity]
	if !ok {
		conns = make(map[string]Client)
		r.byUser[identity] = conns
	}
	conns[c.ConnID()] = c
}

// Resolve returns every live connection for the identity. Empty means the
// user is offline; callers must treat delivery as best-effort.
func (r *PresenceRegistry) Resolve(identity string) []Client {
	conns := r.byUser[identity]
	out := make([]Client, 0, len(conns))
	for _, c := range conns {
		out = append(out, c)
	}
	return out
}

// Drop removes the connection from its identity's personal room and reports
// whether that identity has any connections left. Entries for empty
// identities are pruned lazily here rather than swept.
func (r *PresenceRegistry) Drop(c Client) (remaining bool) {
	identity := c.UserID()
	if identity == "" {
		return false
	}
	conns, ok := r.byUser[identity]
	if !ok {
		return false
	}
	delete(conns, c.ConnID())
	if len(conns) == 0 {
		delete(r.byUser, identity)
		return false
	}
	return true
}
