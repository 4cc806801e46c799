package analysis

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"resumelens/internal/config"
	"resumelens/internal/errors"
	"resumelens/internal/session"
	"resumelens/internal/types"
)

type fakeBackend struct {
	uploadCalls   int
	analyzeCalls  int
	optimizeCalls int

	uploadResp   *types.UploadResponse
	uploadErr    error
	analyzeResp  *types.AnalysisResult
	analyzeErr   error
	optimizeResp *types.OptimizeResponse
	optimizeErr  error

	lastAnalyzeFilename  string
	lastOptimizeFilename string
	lastOptimizeRegion   string
}

func (f *fakeBackend) UploadResume(_ context.Context, _ string, _ io.Reader, _ string) (*types.UploadResponse, error) {
	f.uploadCalls++
	return f.uploadResp, f.uploadErr
}

func (f *fakeBackend) AnalyzeResume(_ context.Context, filename, _ string) (*types.AnalysisResult, error) {
	f.analyzeCalls++
	f.lastAnalyzeFilename = filename
	return f.analyzeResp, f.analyzeErr
}

func (f *fakeBackend) OptimizeResume(_ context.Context, filename, _, region string) (*types.OptimizeResponse, error) {
	f.optimizeCalls++
	f.lastOptimizeFilename = filename
	f.lastOptimizeRegion = region
	return f.optimizeResp, f.optimizeErr
}

func testAppConfig() config.AppConfig {
	return config.AppConfig{
		MaxUploadSize:     5 * 1024 * 1024,
		AllowedExtensions: []string{".pdf", ".docx"},
		Regions:           []string{"US", "UK", "India"},
		DefaultRegion:     "US",
	}
}

func newTestPipeline(backend Backend) (*Pipeline, *session.Store) {
	logger := errors.NewLogger(slog.LevelError)
	store := session.NewStore()
	return NewPipeline(backend, store, testAppConfig(), logger), store
}

func TestAnalyzeRejectsUnsupportedTypeWithoutNetworkCall(t *testing.T) {
	tests := []struct {
		name     string
		filename string
	}{
		{"plain text", "resume.txt"},
		{"image", "resume.png"},
		{"no extension", "resume"},
		{"doc but not docx", "resume.doc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{}
			pipeline, _ := newTestPipeline(backend)

			_, err := pipeline.Analyze(context.Background(), tt.filename, 100, strings.NewReader("x"), "")
			if err == nil {
				t.Fatal("expected validation error")
			}

			appErr, ok := err.(*errors.AppError)
			if !ok {
				t.Fatalf("expected *errors.AppError, got %T", err)
			}
			if appErr.Code != errors.ErrCodeUnsupportedFile {
				t.Errorf("error code = %q, want %q", appErr.Code, errors.ErrCodeUnsupportedFile)
			}
			if backend.uploadCalls != 0 || backend.analyzeCalls != 0 {
				t.Errorf("backend was called (%d uploads, %d analyzes), want none",
					backend.uploadCalls, backend.analyzeCalls)
			}
		})
	}
}

func TestAnalyzeRejectsOversizedFileWithoutNetworkCall(t *testing.T) {
	backend := &fakeBackend{}
	pipeline, _ := newTestPipeline(backend)

	// One byte over the 5 MiB limit
	_, err := pipeline.Analyze(context.Background(), "resume.pdf", 5*1024*1024+1, strings.NewReader("x"), "")
	if err == nil {
		t.Fatal("expected validation error")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *errors.AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeFileTooLarge {
		t.Errorf("error code = %q, want %q", appErr.Code, errors.ErrCodeFileTooLarge)
	}
	if backend.uploadCalls != 0 {
		t.Errorf("upload was called %d times, want 0", backend.uploadCalls)
	}
}

func TestAnalyzeAcceptsFileAtExactSizeLimit(t *testing.T) {
	backend := &fakeBackend{
		uploadResp:  &types.UploadResponse{Filename: "r.pdf"},
		analyzeResp: &types.AnalysisResult{},
	}
	pipeline, _ := newTestPipeline(backend)

	_, err := pipeline.Analyze(context.Background(), "resume.pdf", 5*1024*1024, strings.NewReader("x"), "")
	if err != nil {
		t.Fatalf("file at exact size limit should be accepted: %v", err)
	}
}

func TestAnalyzeStoresVerbatimResult(t *testing.T) {
	result := &types.AnalysisResult{
		ATSScore: types.ATSScore{
			TotalScore: 82,
			Breakdown: map[string]types.CategoryScore{
				"skills_match": {Score: 35, MaxScore: 40},
			},
		},
		LinkedInSuggestions: types.LinkedInSuggestions{
			Headline: []string{"A", "B"},
		},
	}
	backend := &fakeBackend{
		uploadResp:  &types.UploadResponse{Filename: "r.pdf"},
		analyzeResp: result,
	}
	pipeline, store := newTestPipeline(backend)

	got, err := pipeline.Analyze(context.Background(), "resume.pdf", 1024, strings.NewReader("content"), "a job")
	if err != nil {
		t.Fatalf("Analyze() failed: %v", err)
	}
	if got != result {
		t.Error("Analyze() should return the backend response verbatim")
	}

	if backend.lastAnalyzeFilename != "r.pdf" {
		t.Errorf("analyze used filename %q, want server-assigned %q", backend.lastAnalyzeFilename, "r.pdf")
	}

	analysis := store.Get()
	if analysis == nil {
		t.Fatal("store has no analysis after successful flow")
	}
	if analysis.Result != result {
		t.Error("stored result should be the backend response verbatim")
	}
	if analysis.Filename != "r.pdf" {
		t.Errorf("stored filename = %q, want %q", analysis.Filename, "r.pdf")
	}
	if store.Phase() != session.PhaseReady {
		t.Errorf("store phase = %v, want %v", store.Phase(), session.PhaseReady)
	}
}

func TestAnalyzeFailureAfterUploadIsObservable(t *testing.T) {
	backend := &fakeBackend{
		uploadResp: &types.UploadResponse{Filename: "orphan.pdf"},
		analyzeErr: errors.NewBackendError(errors.ErrCodeBackendStatus, "Backend returned status 500", nil),
	}
	pipeline, store := newTestPipeline(backend)

	_, err := pipeline.Analyze(context.Background(), "resume.pdf", 1024, strings.NewReader("content"), "")
	if err == nil {
		t.Fatal("expected error from failed analyze step")
	}

	orphaned, ok := err.(*OrphanedUploadError)
	if !ok {
		t.Fatalf("expected *OrphanedUploadError, got %T", err)
	}
	if orphaned.UploadedFilename != "orphan.pdf" {
		t.Errorf("orphaned filename = %q, want %q", orphaned.UploadedFilename, "orphan.pdf")
	}
	if orphaned.Unwrap() == nil {
		t.Error("orphaned error should wrap the underlying cause")
	}

	if store.Get() != nil {
		t.Error("no result should be stored after a failed analyze")
	}
	if store.Busy() {
		t.Error("store should not stay busy after a failed flow")
	}
}

func TestAnalyzeUploadFailureLeavesStoreIdle(t *testing.T) {
	backend := &fakeBackend{
		uploadErr: errors.NewNetworkError(errors.ErrCodeBackendFailed, "Backend request failed", nil),
	}
	pipeline, store := newTestPipeline(backend)

	_, err := pipeline.Analyze(context.Background(), "resume.docx", 1024, strings.NewReader("content"), "")
	if err == nil {
		t.Fatal("expected error from failed upload")
	}
	if backend.analyzeCalls != 0 {
		t.Errorf("analyze called %d times after failed upload, want 0", backend.analyzeCalls)
	}
	if store.Phase() != session.PhaseIdle {
		t.Errorf("store phase = %v, want %v", store.Phase(), session.PhaseIdle)
	}
}

func TestOptimizeUsesStoredUploadFilename(t *testing.T) {
	backend := &fakeBackend{
		uploadResp:   &types.UploadResponse{Filename: "server-assigned.pdf"},
		analyzeResp:  &types.AnalysisResult{},
		optimizeResp: &types.OptimizeResponse{OptimizedFilename: "optimized_server-assigned.pdf"},
	}
	pipeline, _ := newTestPipeline(backend)

	if _, err := pipeline.Analyze(context.Background(), "resume.pdf", 1024, strings.NewReader("content"), "jd"); err != nil {
		t.Fatalf("Analyze() failed: %v", err)
	}

	resp, err := pipeline.Optimize(context.Background(), "UK")
	if err != nil {
		t.Fatalf("Optimize() failed: %v", err)
	}
	if resp.OptimizedFilename != "optimized_server-assigned.pdf" {
		t.Errorf("optimized filename = %q", resp.OptimizedFilename)
	}
	if backend.lastOptimizeFilename != "server-assigned.pdf" {
		t.Errorf("optimize used filename %q, want the stored upload filename %q",
			backend.lastOptimizeFilename, "server-assigned.pdf")
	}
	if backend.lastOptimizeRegion != "UK" {
		t.Errorf("optimize region = %q, want %q", backend.lastOptimizeRegion, "UK")
	}
}

func TestOptimizeWithoutAnalysis(t *testing.T) {
	backend := &fakeBackend{}
	pipeline, _ := newTestPipeline(backend)

	_, err := pipeline.Optimize(context.Background(), "US")
	if err == nil {
		t.Fatal("expected error when no analysis is stored")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *errors.AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeNoAnalysis {
		t.Errorf("error code = %q, want %q", appErr.Code, errors.ErrCodeNoAnalysis)
	}
	if backend.optimizeCalls != 0 {
		t.Errorf("optimize called %d times, want 0", backend.optimizeCalls)
	}
}

func TestOptimizeRejectsUnknownRegion(t *testing.T) {
	backend := &fakeBackend{}
	pipeline, _ := newTestPipeline(backend)

	_, err := pipeline.Optimize(context.Background(), "Mars")
	if err == nil {
		t.Fatal("expected error for unsupported region")
	}
	if backend.optimizeCalls != 0 {
		t.Errorf("optimize called %d times, want 0", backend.optimizeCalls)
	}
}
