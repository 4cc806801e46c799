package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"resumelens/internal/analysis"
	"resumelens/internal/errors"
	"resumelens/internal/observability"
	"resumelens/internal/types"
	"resumelens/internal/utils"

	"go.opentelemetry.io/otel/attribute"
)

type pageBase struct {
	Active  string
	Version string
}

type uploadPage struct {
	pageBase
	Error             string
	Busy              bool
	JobDescription    string
	AllowedExtensions []string
	MaxUploadMB       int64
}

type resultsPage struct {
	pageBase
	HasAnalysis bool
	Filename    string
	Result      *types.AnalysisResult
}

type optimizationPage struct {
	pageBase
	HasAnalysis   bool
	Error         string
	Suggestions   types.OptimizationSuggestions
	Regions       []string
	DefaultRegion string
}

type linkedinPage struct {
	pageBase
	HasAnalysis bool
	LinkedIn    types.LinkedInSuggestions
}

func (s *Server) newUploadPage(errMsg string) uploadPage {
	return uploadPage{
		pageBase:          pageBase{Active: "upload", Version: s.Version},
		Error:             errMsg,
		Busy:              s.Store.Busy(),
		AllowedExtensions: s.AppConfig.App.AllowedExtensions,
		MaxUploadMB:       s.AppConfig.App.MaxUploadSize / (1024 * 1024),
	}
}

// createIndexHandler serves the upload page
func (s *Server) createIndexHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.renderPage(w, "upload", http.StatusOK, s.newUploadPage(""))
	}
}

// createUploadHandler accepts a resume upload and runs the analysis pipeline
func (s *Server) createUploadHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		ctx := r.Context()
		tracer := om.Tracer("resumelens.web")
		ctx, span := tracer.Start(ctx, "web.upload")
		defer span.End()

		file, header, err := r.FormFile("resume")
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			page := s.newUploadPage("Please choose a resume file to upload.")
			s.renderPage(w, "upload", http.StatusBadRequest, page)
			return
		}
		defer func() { _ = file.Close() }()

		jobDescription := r.FormValue("job_description")

		span.SetAttributes(
			attribute.String("upload.filename", header.Filename),
			attribute.Int64("upload.size_bytes", header.Size),
			attribute.Int("request.job_length", len(jobDescription)),
		)

		metrics := om.GetMetrics()
		err = metrics.TrackBackendOperation(ctx, "analyze", func(ctx context.Context) *observability.BackendOperationResult {
			_, analyzeErr := s.Pipeline.Analyze(ctx, header.Filename, header.Size, file, jobDescription)
			return &observability.BackendOperationResult{
				Error:        analyzeErr,
				PayloadBytes: header.Size,
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "resume_analyzed", false, om,
				attribute.String("error", err.Error()))

			statusCode, message := s.classifyAnalyzeError(err)
			page := s.newUploadPage(message)
			page.JobDescription = jobDescription
			s.renderPage(w, "upload", statusCode, page)
			return
		}

		metrics.RecordBusinessMetric(ctx, "resume_analyzed", true, om,
			attribute.Int64("upload.size_bytes", header.Size))
		span.SetAttributes(attribute.Bool("success", true))

		http.Redirect(w, r, "/results", http.StatusSeeOther)
	}
}

// classifyAnalyzeError maps pipeline failures to an HTTP status and user message
func (s *Server) classifyAnalyzeError(err error) (int, string) {
	var orphaned *analysis.OrphanedUploadError
	if stderrors.As(err, &orphaned) {
		return http.StatusBadGateway, fmt.Sprintf(
			"The resume was uploaded as %q but the analysis failed. Please try again.",
			orphaned.UploadedFilename)
	}

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		switch appErr.Code {
		case errors.ErrCodeUnsupportedFile, errors.ErrCodeFileTooLarge, errors.ErrCodeInvalidRequest:
			return http.StatusBadRequest, appErr.Message
		case errors.ErrCodeAnalysisInFlight:
			return http.StatusConflict, "An analysis is already in progress. Please wait for it to finish."
		}
	}

	return http.StatusBadGateway, "The analysis service is unavailable. Please try again later."
}

// createResultsHandler serves the ATS score view
func (s *Server) createResultsHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		page := resultsPage{pageBase: pageBase{Active: "results", Version: s.Version}}
		if current := s.Store.Get(); current != nil {
			page.HasAnalysis = true
			page.Filename = current.Filename
			page.Result = current.Result
		}

		s.renderPage(w, "results", http.StatusOK, page)
	}
}

// createOptimizationHandler serves the optimization suggestions view
func (s *Server) createOptimizationHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		s.renderPage(w, "optimization", http.StatusOK, s.newOptimizationPage(""))
	}
}

func (s *Server) newOptimizationPage(errMsg string) optimizationPage {
	page := optimizationPage{
		pageBase:      pageBase{Active: "optimization", Version: s.Version},
		Error:         errMsg,
		Regions:       s.AppConfig.App.Regions,
		DefaultRegion: s.AppConfig.App.DefaultRegion,
	}
	if current := s.Store.Get(); current != nil {
		page.HasAnalysis = true
		page.Suggestions = current.Result.OptimizationSuggestions
	}
	return page
}

// createOptimizationDownloadHandler optimizes the stored resume and streams the result
func (s *Server) createOptimizationDownloadHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		ctx := r.Context()
		tracer := om.Tracer("resumelens.web")
		ctx, span := tracer.Start(ctx, "web.optimize_download")
		defer span.End()

		region := r.FormValue("region")
		span.SetAttributes(attribute.String("optimize.region", region))

		metrics := om.GetMetrics()
		var optimized *types.OptimizeResponse
		var content []byte
		err := metrics.TrackBackendOperation(ctx, "optimize", func(ctx context.Context) *observability.BackendOperationResult {
			resp, optErr := s.Pipeline.Optimize(ctx, region)
			if optErr != nil {
				return &observability.BackendOperationResult{Error: optErr}
			}
			optimized = resp

			data, dlErr := s.Backend.DownloadFile(ctx, resp.OptimizedFilename)
			if dlErr != nil {
				return &observability.BackendOperationResult{Error: dlErr}
			}
			content = data
			return &observability.BackendOperationResult{PayloadBytes: int64(len(data))}
		}, om)

		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "resume_optimized", false, om,
				attribute.String("error", err.Error()))

			statusCode, message := s.classifyOptimizeError(err)
			s.renderPage(w, "optimization", statusCode, s.newOptimizationPage(message))
			return
		}

		metrics.RecordBusinessMetric(ctx, "resume_optimized", true, om,
			attribute.String("region", region))
		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("optimize.filename", optimized.OptimizedFilename),
		)

		w.Header().Set("Content-Type", utils.ResumeContentType(optimized.OptimizedFilename))
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", optimized.OptimizedFilename))
		w.Header().Set("Content-Length", strconv.Itoa(len(content)))
		_, _ = w.Write(content)
	}
}

// classifyOptimizeError maps optimization failures to an HTTP status and user message
func (s *Server) classifyOptimizeError(err error) (int, string) {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		switch appErr.Code {
		case errors.ErrCodeNoAnalysis:
			return http.StatusConflict, "Analyze a resume before requesting an optimized version."
		case errors.ErrCodeInvalidRequest:
			return http.StatusBadRequest, appErr.Message
		}
	}

	return http.StatusBadGateway, "The optimization service is unavailable. Please try again later."
}

// createLinkedInHandler serves the LinkedIn suggestions view
func (s *Server) createLinkedInHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		page := linkedinPage{pageBase: pageBase{Active: "linkedin", Version: s.Version}}
		if current := s.Store.Get(); current != nil {
			page.HasAnalysis = true
			page.LinkedIn = current.Result.LinkedInSuggestions

			metrics := om.GetMetrics()
			metrics.RecordBusinessMetric(r.Context(), "suggestions_served", true, om,
				attribute.String("surface", "linkedin"))
		}

		s.renderPage(w, "linkedin", http.StatusOK, page)
	}
}

// createLinkedInCopyHandler returns a single LinkedIn suggestion as plain text
// so the clipboard receives exactly the selected entry.
func (s *Server) createLinkedInCopyHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		current := s.Store.Get()
		if current == nil {
			http.Error(w, "No analysis available", http.StatusNotFound)
			return
		}

		section := r.URL.Query().Get("section")
		index, err := strconv.Atoi(r.URL.Query().Get("index"))
		if err != nil || index < 0 {
			http.Error(w, "Invalid index", http.StatusBadRequest)
			return
		}

		linkedin := current.Result.LinkedInSuggestions
		var text string
		switch section {
		case "headline":
			if index >= len(linkedin.Headline) {
				http.Error(w, "Suggestion not found", http.StatusNotFound)
				return
			}
			text = linkedin.Headline[index]
		case "about":
			if linkedin.AboutSection == "" {
				http.Error(w, "Suggestion not found", http.StatusNotFound)
				return
			}
			text = linkedin.AboutSection
		case "skill":
			if index >= len(linkedin.Skills) {
				http.Error(w, "Suggestion not found", http.StatusNotFound)
				return
			}
			text = linkedin.Skills[index]
		default:
			http.Error(w, "Unknown section", http.StatusBadRequest)
			return
		}

		metrics := om.GetMetrics()
		metrics.RecordBusinessMetric(r.Context(), "suggestions_served", true, om,
			attribute.String("surface", "clipboard"),
			attribute.String("section", section))

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(text))
	}
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			// If rate limited, record metric
			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true, om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
