package backend

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"resumelens/internal/config"
	"resumelens/internal/errors"
)

func testBackendConfig(baseURL string) *config.BackendConfig {
	return &config.BackendConfig{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled: false,
		},
	}
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := errors.NewLogger(slog.LevelError)
	return NewClient(testBackendConfig(server.URL), logger), server
}

func TestUploadResumeSendsMultipart(t *testing.T) {
	var gotFilename, gotJobDescription, gotContent string

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/upload-resume" {
			t.Errorf("Expected path /api/upload-resume, got %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("Expected multipart form: %v", err)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("Expected file field: %v", err)
		}
		defer func() { _ = file.Close() }()
		gotFilename = header.Filename
		buf := make([]byte, header.Size)
		n, _ := file.Read(buf)
		gotContent = string(buf[:n])
		gotJobDescription = r.FormValue("job_description")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"filename": "stored_resume.pdf", "message": "uploaded"}`))
	}))

	resp, err := client.UploadResume(t.Context(), "resume.pdf", strings.NewReader("%PDF-1.4 fake"), "Go developer role")
	if err != nil {
		t.Fatalf("UploadResume failed: %v", err)
	}

	if resp.Filename != "stored_resume.pdf" {
		t.Errorf("Expected server-assigned filename stored_resume.pdf, got %s", resp.Filename)
	}
	if gotFilename != "resume.pdf" {
		t.Errorf("Expected uploaded filename resume.pdf, got %s", gotFilename)
	}
	if gotContent != "%PDF-1.4 fake" {
		t.Errorf("Expected file content to be forwarded, got %q", gotContent)
	}
	if gotJobDescription != "Go developer role" {
		t.Errorf("Expected job_description field, got %q", gotJobDescription)
	}
}

func TestUploadResumeOmitsEmptyJobDescription(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("Expected multipart form: %v", err)
		}
		if _, ok := r.MultipartForm.Value["job_description"]; ok {
			t.Errorf("Expected job_description field to be absent")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"filename": "stored.pdf", "message": "uploaded"}`))
	}))

	if _, err := client.UploadResume(t.Context(), "resume.pdf", strings.NewReader("data"), ""); err != nil {
		t.Fatalf("UploadResume failed: %v", err)
	}
}

func TestUploadResumeRejectsMissingFilename(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message": "uploaded"}`))
	}))

	_, err := client.UploadResume(t.Context(), "resume.pdf", strings.NewReader("data"), "")
	if err == nil {
		t.Fatal("Expected error for missing server-assigned filename")
	}

	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		t.Fatalf("Expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeBackendDecode {
		t.Errorf("Expected code %s, got %s", errors.ErrCodeBackendDecode, appErr.Code)
	}
}

func TestAnalyzeResumeSendsForm(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/analyze-resume" {
			t.Errorf("Expected path /api/analyze-resume, got %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Expected form content type, got %s", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm failed: %v", err)
		}
		if got := r.PostFormValue("filename"); got != "stored.pdf" {
			t.Errorf("Expected filename stored.pdf, got %s", got)
		}
		if got := r.PostFormValue("job_description"); got != "backend engineer" {
			t.Errorf("Expected job_description to be sent, got %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"parsed_data": {"skills": ["Go", "SQL"], "summary": "Engineer"},
			"ats_score": {
				"total_score": 82.5,
				"breakdown": {
					"skills_match": {"score": 25, "max_score": 30, "details": ["Matched Go"]}
				}
			},
			"optimization_suggestions": {"skills": ["Kubernetes"]},
			"linkedin_suggestions": {"headline": ["Go Engineer"], "about_section": "About me"}
		}`))
	}))

	result, err := client.AnalyzeResume(t.Context(), "stored.pdf", "backend engineer")
	if err != nil {
		t.Fatalf("AnalyzeResume failed: %v", err)
	}

	if result.ATSScore.TotalScore != 82.5 {
		t.Errorf("Expected total score 82.5, got %v", result.ATSScore.TotalScore)
	}
	category, ok := result.ATSScore.Breakdown["skills_match"]
	if !ok {
		t.Fatal("Expected skills_match category in breakdown")
	}
	if category.Score != 25 || category.MaxScore != 30 {
		t.Errorf("Unexpected category score: %+v", category)
	}
	if len(result.ParsedData.Skills) != 2 {
		t.Errorf("Expected 2 parsed skills, got %d", len(result.ParsedData.Skills))
	}
	if len(result.LinkedInSuggestions.Headline) != 1 || result.LinkedInSuggestions.Headline[0] != "Go Engineer" {
		t.Errorf("Unexpected LinkedIn headlines: %v", result.LinkedInSuggestions.Headline)
	}
}

func TestOptimizeResumeSendsRegion(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/optimize-resume" {
			t.Errorf("Expected path /api/optimize-resume, got %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm failed: %v", err)
		}
		if got := r.PostFormValue("region"); got != "UK" {
			t.Errorf("Expected region UK, got %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"optimized_filename": "optimized_stored.pdf", "optimized_content": {"summary": "Improved"}}`))
	}))

	resp, err := client.OptimizeResume(t.Context(), "stored.pdf", "job", "UK")
	if err != nil {
		t.Fatalf("OptimizeResume failed: %v", err)
	}
	if resp.OptimizedFilename != "optimized_stored.pdf" {
		t.Errorf("Expected optimized_stored.pdf, got %s", resp.OptimizedFilename)
	}
	if resp.OptimizedContent["summary"] != "Improved" {
		t.Errorf("Unexpected optimized content: %v", resp.OptimizedContent)
	}
}

func TestDownloadFileEscapesFilename(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/api/download/optimized%20resume.pdf" {
			t.Errorf("Expected escaped download path, got %s", r.URL.EscapedPath())
		}
		_, _ = w.Write([]byte("pdf bytes"))
	}))

	data, err := client.DownloadFile(t.Context(), "optimized resume.pdf")
	if err != nil {
		t.Fatalf("DownloadFile failed: %v", err)
	}
	if string(data) != "pdf bytes" {
		t.Errorf("Expected downloaded bytes, got %q", data)
	}
}

func TestClientMapsBadStatus(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "File not found"}`, http.StatusNotFound)
	}))

	_, err := client.AnalyzeResume(t.Context(), "missing.pdf", "")
	if err == nil {
		t.Fatal("Expected error for 404 response")
	}

	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		t.Fatalf("Expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeBackendStatus {
		t.Errorf("Expected code %s, got %s", errors.ErrCodeBackendStatus, appErr.Code)
	}
	if appErr.Context["status_code"] != 404 {
		t.Errorf("Expected status_code 404 in context, got %v", appErr.Context["status_code"])
	}
}

func TestClientMapsDecodeFailure(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))

	_, err := client.AnalyzeResume(t.Context(), "stored.pdf", "")
	if err == nil {
		t.Fatal("Expected decode error")
	}

	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		t.Fatalf("Expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeBackendDecode {
		t.Errorf("Expected code %s, got %s", errors.ErrCodeBackendDecode, appErr.Code)
	}
}

func TestClientSendsAPIKeyHeader(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"filename": "stored.pdf", "message": "ok"}`))
	}))
	defer server.Close()

	cfg := testBackendConfig(server.URL)
	cfg.APIKey = "secret-key"
	client := NewClient(cfg, errors.NewLogger(slog.LevelError))

	if _, err := client.UploadResume(t.Context(), "resume.pdf", strings.NewReader("data"), ""); err != nil {
		t.Fatalf("UploadResume failed: %v", err)
	}
	if gotKey != "secret-key" {
		t.Errorf("Expected X-API-Key header, got %q", gotKey)
	}
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testBackendConfig(server.URL)
	cfg.CircuitBreaker = config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		MinRequests:      2,
		FailureThreshold: 0.5,
	}
	client := NewClient(cfg, errors.NewLogger(slog.LevelError))

	for range 3 {
		_, _ = client.AnalyzeResume(t.Context(), "stored.pdf", "")
	}

	if client.IsHealthy() {
		t.Error("Expected circuit breaker to be open after repeated failures")
	}

	stats := client.BreakerStats()
	if stats["enabled"] != true {
		t.Errorf("Expected breaker stats to report enabled, got %v", stats)
	}
}
