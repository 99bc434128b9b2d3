package tasks

import (
	"sync"
	"time"

	"github.com/desertthunder/subx/internal/models"
)

// Phase is the overall state of the my-page view.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseError
	PhaseLoginRequired
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	case PhaseLoginRequired:
		return "login_required"
	default:
		return ""
	}
}

// Status tracks one slice of the view (profile or project list) independently of the other.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return ""
	}
}

// Snapshot is a copy of the view state. Mutating it does not affect the [Store].
type Snapshot struct {
	Phase          Phase
	Entries        []models.SubtitleEntry
	Profile        *models.UserProfile
	ProfileStatus  Status
	ProjectsStatus Status
	Form           models.ModalFormState
	Alert          string
}

// Empty reports a loaded, legitimately empty project list.
// A list that failed to load is not empty; check ProjectsStatus.
func (s Snapshot) Empty() bool {
	return s.ProjectsStatus == StatusReady && len(s.Entries) == 0
}

// Store holds the client-side view state. All methods are safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	state Snapshot
	now   func() time.Time
}

// NewStore creates an idle, empty [Store].
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.state
	snap.Entries = append([]models.SubtitleEntry(nil), s.state.Entries...)
	if s.state.Profile != nil {
		p := *s.state.Profile
		snap.Profile = &p
	}
	return snap
}

func (s *Store) update(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// SetPhase sets the overall phase.
func (s *Store) SetPhase(p Phase) {
	s.update(func(st *Snapshot) { st.Phase = p })
}

// SetProfileStatus sets the profile slice status.
func (s *Store) SetProfileStatus(status Status) {
	s.update(func(st *Snapshot) { st.ProfileStatus = status })
}

// SetProjectsStatus sets the project list slice status.
func (s *Store) SetProjectsStatus(status Status) {
	s.update(func(st *Snapshot) { st.ProjectsStatus = status })
}

// SetProfile stores the profile and marks its slice ready.
func (s *Store) SetProfile(p models.UserProfile) {
	s.update(func(st *Snapshot) {
		st.Profile = &p
		st.ProfileStatus = StatusReady
	})
}

// SetProjects replaces the entries with projects in server order and marks the slice ready.
func (s *Store) SetProjects(projects []models.Project) {
	entries := models.NewEntries(projects, s.now())
	s.update(func(st *Snapshot) {
		st.Entries = entries
		st.ProjectsStatus = StatusReady
	})
}

// AppendEntry adds a project at the end of the list.
func (s *Store) AppendEntry(p models.Project) {
	now := s.now()
	s.update(func(st *Snapshot) {
		st.Entries = append(st.Entries, models.SubtitleEntry{
			ID:      p.ID,
			Title:   models.EntryTitle(len(st.Entries)),
			Summary: p.Title,
			Date:    now,
		})
	})
}

// RemoveEntry removes the entry with id and renumbers the titles that follow it.
// It reports whether an entry was removed.
func (s *Store) RemoveEntry(id string) bool {
	removed := false
	s.update(func(st *Snapshot) {
		for i, e := range st.Entries {
			if e.ID != id {
				continue
			}
			st.Entries = append(st.Entries[:i:i], st.Entries[i+1:]...)
			for j := i; j < len(st.Entries); j++ {
				st.Entries[j].Title = models.EntryTitle(j)
			}
			removed = true
			return
		}
	})
	return removed
}

// Entry returns the entry with id.
func (s *Store) Entry(id string) (models.SubtitleEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.state.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return models.SubtitleEntry{}, false
}

// SetForm replaces the add-project form input.
func (s *Store) SetForm(f models.ModalFormState) {
	s.update(func(st *Snapshot) { st.Form = f })
}

// ResetForm clears the add-project form.
func (s *Store) ResetForm() {
	s.update(func(st *Snapshot) { st.Form = models.ModalFormState{} })
}

// SetAlert records a message to show the user.
func (s *Store) SetAlert(msg string) {
	s.update(func(st *Snapshot) { st.Alert = msg })
}

// ClearAlert dismisses the current alert.
func (s *Store) ClearAlert() {
	s.update(func(st *Snapshot) { st.Alert = "" })
}

// Reset drops everything loaded for the signed-in user.
func (s *Store) Reset(p Phase) {
	s.update(func(st *Snapshot) { *st = Snapshot{Phase: p} })
}
