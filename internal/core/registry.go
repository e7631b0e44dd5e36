package core

import "sync"

// Registry tracks which live sessions belong to which room name. Membership
// is purely in-process: it is rebuilt by clients re-joining after reconnect
// and a room with no members simply ceases to exist.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

// NewRegistry constructs an empty room registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*room),
	}
}

// Join adds the session to the room's member set, creating the room if
// absent. Joining a room twice is a no-op; returns true if newly joined.
func (r *Registry) Join(s *Session, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[name]
	if !ok {
		rm = newRoom(name)
		r.rooms[name] = rm
	}
	if !rm.add(s) {
		return false
	}
	s.Rooms[name] = struct{}{}
	return true
}

// Leave removes the session from the room. Returns false if the session was
// not a member.
func (r *Registry) Leave(s *Session, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.leaveLocked(s, name)
}

// LeaveAll removes the session from every room it is in. Invoked on
// disconnect.
func (r *Registry) LeaveAll(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name := range s.Rooms {
		r.leaveLocked(s, name)
	}
}

func (r *Registry) leaveLocked(s *Session, name string) bool {
	rm, ok := r.rooms[name]
	if !ok || !rm.remove(s) {
		return false
	}
	delete(s.Rooms, name)
	if rm.empty() {
		delete(r.rooms, name)
	}
	return true
}

// Members returns the sessions currently in the room.
func (r *Registry) Members(name string) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[name]
	if !ok {
		return nil
	}
	members := make([]*Session, 0, len(rm.sessions))
	for s := range rm.sessions {
		members = append(members, s)
	}
	return members
}

// Broadcast delivers an event to every session in the room, sender included.
func (r *Registry) Broadcast(name string, ev *Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if rm, ok := r.rooms[name]; ok {
		rm.broadcast(ev, nil)
	}
}

// BroadcastExcept delivers an event to every session in the room except one.
// Used for typing signals, which never echo back to the typist.
func (r *Registry) BroadcastExcept(name string, except *Session, ev *Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if rm, ok := r.rooms[name]; ok {
		rm.broadcast(ev, except)
	}
}
