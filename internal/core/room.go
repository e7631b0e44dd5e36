package core

// room groups sessions subscribed to the same channel. Access is guarded by
// the owning registry's lock.
type room struct {
	name     string
	sessions map[*Session]struct{}
}

func newRoom(name string) *room {
	return &room{
		name:     name,
		sessions: make(map[*Session]struct{}),
	}
}

// add inserts a session into the room. Returns true if newly added.
func (r *room) add(s *Session) bool {
	if _, exists := r.sessions[s]; exists {
		return false
	}
	r.sessions[s] = struct{}{}
	return true
}

// remove deletes a session from the room. Returns true if removed.
func (r *room) remove(s *Session) bool {
	if _, exists := r.sessions[s]; !exists {
		return false
	}
	delete(r.sessions, s)
	return true
}

// broadcast sends an event to all sessions in the room, except the excluded
// session when one is given.
func (r *room) broadcast(ev *Event, except *Session) {
	for s := range r.sessions {
		if s == except {
			continue
		}
		s.send(ev)
	}
}

func (r *room) empty() bool {
	return len(r.sessions) == 0
}
