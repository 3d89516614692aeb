package main

import (
	"log"
	"sync"
	"time"
)

// Session is one loaded player: the owned profile copy, its companion feed,
// and a dirty flag for the saver. All mutation is funneled through
// Registry.Mutate so engine calls on a profile never interleave.
type Session struct {
	mu       sync.Mutex
	profile  PlayerProfile
	messages *MessageLog
	dirty    bool
}

// Registry owns every in-memory session. It replaces the browser client's
// implicit singleton game context with an explicit container injected into
// the handlers.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	engine *Engine
	store  *Store
	mirror *Mirror
}

func NewRegistry(engine *Engine, store *Store, mirror *Mirror) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		engine:   engine,
		store:    store,
		mirror:   mirror,
	}
}

// Create registers a freshly set-up profile and persists it immediately.
func (r *Registry) Create(profile PlayerProfile, now time.Time) *Session {
	session := &Session{
		profile:  profile,
		messages: NewMessageLog(),
		dirty:    true,
	}

	r.mu.Lock()
	r.sessions[profile.ID] = session
	r.mu.Unlock()

	if err := r.store.SaveProfile(profile, now); err != nil {
		log.Println("initial profile save failed:", err)
	}
	syncMirror(r.mirror, profile)
	return session
}

// Open returns the live session for a profile, loading it from the local
// store on first access. The load pipeline runs offline progress exactly
// once (before any other logic), then re-derives every derived field.
// Subsequent Opens for the same id return the cached session and never
// re-apply offline progress.
func (r *Registry) Open(profileID string, now time.Time) (*Session, bool, error) {
	r.mu.Lock()
	if session, ok := r.sessions[profileID]; ok {
		r.mu.Unlock()
		return session, true, nil
	}
	r.mu.Unlock()

	profile, found, err := r.store.LoadProfile(profileID)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	session := &Session{messages: NewMessageLog()}
	earned, notes := r.engine.ApplyOfflineProgress(&profile, now)
	profile.HydrateDerived()
	session.profile = profile
	session.dirty = true
	session.messages.AddNotifications(notes, now)
	if earned > 0 {
		log.Printf("offline progress: profile=%s earned=%d", profileID, earned)
	}

	r.mu.Lock()
	// Another request may have loaded the same profile concurrently; the
	// first one in wins so there is only ever one owned copy.
	if existing, ok := r.sessions[profileID]; ok {
		r.mu.Unlock()
		return existing, true, nil
	}
	r.sessions[profileID] = session
	r.mu.Unlock()

	return session, true, nil
}

// Mutate applies an engine transition to the session's profile under the
// session lock. Notifications are appended to the companion feed, the
// session is marked dirty for the saver, and the mirror sync is kicked off
// fire-and-forget. Rejected transitions leave the profile untouched.
func (r *Registry) Mutate(session *Session, now time.Time, fn func(*PlayerProfile) ([]Notification, error)) (PlayerProfile, []Notification, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	working := session.profile.Clone()
	notes, err := fn(&working)
	if err != nil {
		// Rejections can still carry player-facing output, like the
		// out-of-energy line with its remaining cooldown. Route it to the
		// feed before discarding the working copy.
		session.messages.AddNotifications(notes, now)
		return session.profile.Clone(), notes, err
	}

	session.profile = working
	session.dirty = true
	session.messages.AddNotifications(notes, now)

	snapshot := working.Clone()
	syncMirror(r.mirror, snapshot)
	return snapshot, notes, nil
}

// View returns a copy of the current profile for read-only handlers.
func (r *Registry) View(session *Session) PlayerProfile {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.profile.Clone()
}

// flushDirty persists every dirty session to the local store. Called from
// the saver loop; a failed write stays dirty and is retried next pass.
func (r *Registry) flushDirty(now time.Time) {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	for _, session := range sessions {
		session.mu.Lock()
		if !session.dirty {
			session.mu.Unlock()
			continue
		}
		snapshot := session.profile.Clone()
		session.dirty = false
		session.mu.Unlock()

		if err := r.store.SaveProfile(snapshot, now); err != nil {
			log.Println("profile save failed:", err)
			session.mu.Lock()
			session.dirty = true
			session.mu.Unlock()
		}
	}
}
