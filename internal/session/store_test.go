package session

import (
	"sync"
	"testing"

	"resumelens/internal/errors"
	"resumelens/internal/types"
)

func TestStoreLifecycle(t *testing.T) {
	store := NewStore()

	if store.Phase() != PhaseIdle {
		t.Errorf("new store phase = %v, want %v", store.Phase(), PhaseIdle)
	}
	if store.Get() != nil {
		t.Error("new store should have no analysis")
	}

	if err := store.Begin(); err != nil {
		t.Fatalf("Begin() on idle store failed: %v", err)
	}
	if !store.Busy() {
		t.Error("store should be busy after Begin()")
	}

	result := &types.AnalysisResult{
		ATSScore: types.ATSScore{TotalScore: 82},
	}
	store.Complete("r.pdf", "some job", result)

	if store.Phase() != PhaseReady {
		t.Errorf("phase after Complete = %v, want %v", store.Phase(), PhaseReady)
	}

	analysis := store.Get()
	if analysis == nil {
		t.Fatal("Get() returned nil after Complete")
	}
	if analysis.Filename != "r.pdf" {
		t.Errorf("stored filename = %q, want %q", analysis.Filename, "r.pdf")
	}
	if analysis.JobDescription != "some job" {
		t.Errorf("stored job description = %q, want %q", analysis.JobDescription, "some job")
	}
	if analysis.Result != result {
		t.Error("stored result should be the analyze response verbatim")
	}
}

func TestStoreRejectsConcurrentBegin(t *testing.T) {
	store := NewStore()

	if err := store.Begin(); err != nil {
		t.Fatalf("first Begin() failed: %v", err)
	}

	err := store.Begin()
	if err == nil {
		t.Fatal("second Begin() should fail while a sequence is in flight")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *errors.AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeAnalysisInFlight {
		t.Errorf("error code = %q, want %q", appErr.Code, errors.ErrCodeAnalysisInFlight)
	}
}

func TestStoreFailRestoresPhase(t *testing.T) {
	store := NewStore()

	// Failure with no prior result goes back to idle
	if err := store.Begin(); err != nil {
		t.Fatalf("Begin() failed: %v", err)
	}
	store.Fail()
	if store.Phase() != PhaseIdle {
		t.Errorf("phase after failed first analysis = %v, want %v", store.Phase(), PhaseIdle)
	}

	// Failure after a successful analysis keeps the earlier result
	if err := store.Begin(); err != nil {
		t.Fatalf("Begin() failed: %v", err)
	}
	store.Complete("r.pdf", "", &types.AnalysisResult{})

	if err := store.Begin(); err != nil {
		t.Fatalf("Begin() after ready failed: %v", err)
	}
	store.Fail()

	if store.Phase() != PhaseReady {
		t.Errorf("phase after failed re-analysis = %v, want %v", store.Phase(), PhaseReady)
	}
	if store.Get() == nil {
		t.Error("earlier result should survive a failed re-analysis")
	}
}

func TestStoreClear(t *testing.T) {
	store := NewStore()
	if err := store.Begin(); err != nil {
		t.Fatalf("Begin() failed: %v", err)
	}
	store.Complete("r.pdf", "", &types.AnalysisResult{})

	store.Clear()

	if store.Phase() != PhaseIdle {
		t.Errorf("phase after Clear = %v, want %v", store.Phase(), PhaseIdle)
	}
	if store.Get() != nil {
		t.Error("analysis should be nil after Clear")
	}
}

func TestStoreSingleWinnerUnderContention(t *testing.T) {
	store := NewStore()

	const goroutines = 16
	var wg sync.WaitGroup
	successes := make(chan struct{}, goroutines)

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.Begin(); err == nil {
				successes <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(successes)

	count := 0
	for range successes {
		count++
	}
	if count != 1 {
		t.Errorf("Begin() succeeded %d times under contention, want exactly 1", count)
	}
}
