package session

import (
	"sync"
	"time"

	"resumelens/internal/errors"
	"resumelens/internal/types"
)

// Phase represents the lifecycle of the shared analysis state
type Phase string

const (
	PhaseIdle      Phase = "idle"      // No analysis has run yet
	PhaseAnalyzing Phase = "analyzing" // An upload/analyze sequence is in flight
	PhaseReady     Phase = "ready"     // A completed analysis is available
)

// Analysis holds the result of a completed upload/analyze sequence.
// Filename is the server-assigned name from the upload step, kept so
// that later optimize calls reference the real stored file.
type Analysis struct {
	Filename       string
	JobDescription string
	Result         *types.AnalysisResult
	CompletedAt    time.Time
}

// Store is a single-slot holder for the shared analysis state.
// There is one writer (the upload flow) and many readers (the views);
// at most one upload/analyze sequence may be in flight at a time.
type Store struct {
	mu       sync.RWMutex
	phase    Phase
	analysis *Analysis
}

// NewStore creates an empty store in the idle phase
func NewStore() *Store {
	return &Store{phase: PhaseIdle}
}

// Begin marks the start of an upload/analyze sequence. It fails if
// another sequence is already in flight, closing the double-submission
// window at the store rather than relying on the UI disabling buttons.
func (s *Store) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseAnalyzing {
		return errors.NewValidationError(errors.ErrCodeAnalysisInFlight,
			"An analysis is already in progress", nil)
	}
	s.phase = PhaseAnalyzing
	return nil
}

// Complete stores a finished analysis and moves the store to the ready phase.
// A new result replaces any previous one; no two analyses coexist.
func (s *Store) Complete(filename, jobDescription string, result *types.AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.analysis = &Analysis{
		Filename:       filename,
		JobDescription: jobDescription,
		Result:         result,
		CompletedAt:    time.Now(),
	}
	s.phase = PhaseReady
}

// Fail aborts an in-flight sequence, restoring the previous phase so a
// failed analyze does not wipe an earlier successful result.
func (s *Store) Fail() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.analysis != nil {
		s.phase = PhaseReady
	} else {
		s.phase = PhaseIdle
	}
}

// Get returns the current analysis, or nil if none has completed
func (s *Store) Get() *Analysis {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.analysis
}

// Phase returns the current lifecycle phase
func (s *Store) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Busy reports whether an upload/analyze sequence is in flight
func (s *Store) Busy() bool {
	return s.Phase() == PhaseAnalyzing
}

// Clear resets the store to its initial state
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analysis = nil
	s.phase = PhaseIdle
}
