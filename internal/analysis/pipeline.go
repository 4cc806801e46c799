package analysis

import (
	"context"
	"fmt"
	"io"

	"resumelens/internal/common"
	"resumelens/internal/config"
	"resumelens/internal/errors"
	"resumelens/internal/session"
	"resumelens/internal/types"
)

// Backend is the subset of the backend client the pipeline depends on
type Backend interface {
	UploadResume(ctx context.Context, filename string, content io.Reader, jobDescription string) (*types.UploadResponse, error)
	AnalyzeResume(ctx context.Context, filename, jobDescription string) (*types.AnalysisResult, error)
	OptimizeResume(ctx context.Context, filename, jobDescription, region string) (*types.OptimizeResponse, error)
}

// OrphanedUploadError reports an analyze failure after a successful upload.
// The uploaded file still exists server-side under UploadedFilename, so the
// failure between the two steps stays observable instead of silent.
type OrphanedUploadError struct {
	UploadedFilename string
	Err              error
}

func (e *OrphanedUploadError) Error() string {
	return fmt.Sprintf("analysis failed after upload (orphaned file %q): %v", e.UploadedFilename, e.Err)
}

func (e *OrphanedUploadError) Unwrap() error {
	return e.Err
}

// Pipeline runs the two-step upload/analyze sequence against the backend
// and owns the transitions of the shared session store.
type Pipeline struct {
	backend Backend
	store   *session.Store
	app     config.AppConfig
	logger  *errors.Logger
}

// NewPipeline creates an analysis pipeline
func NewPipeline(backend Backend, store *session.Store, app config.AppConfig, logger *errors.Logger) *Pipeline {
	return &Pipeline{
		backend: backend,
		store:   store,
		app:     app,
		logger:  logger,
	}
}

// Analyze validates the submission, uploads the resume, requests the
// analysis, and stores the verbatim result. Validation failures return
// before any network call is made.
func (p *Pipeline) Analyze(ctx context.Context, filename string, size int64, content io.Reader, jobDescription string) (*types.AnalysisResult, error) {
	if err := common.ValidateResumeFile(filename, size, p.app.MaxUploadSize, p.app.AllowedExtensions); err != nil {
		p.logger.LogError(err, "Resume rejected by validation", "filename", filename)
		return nil, err
	}

	if err := p.store.Begin(); err != nil {
		return nil, err
	}

	uploadResp, err := p.backend.UploadResume(ctx, filename, content, jobDescription)
	if err != nil {
		p.store.Fail()
		p.logger.LogError(err, "Upload step failed", "filename", filename)
		return nil, err
	}

	result, err := p.backend.AnalyzeResume(ctx, uploadResp.Filename, jobDescription)
	if err != nil {
		p.store.Fail()
		orphaned := &OrphanedUploadError{UploadedFilename: uploadResp.Filename, Err: err}
		p.logger.LogError(err, "Analyze step failed after successful upload",
			"orphaned_filename", uploadResp.Filename)
		return nil, orphaned
	}

	p.store.Complete(uploadResp.Filename, jobDescription, result)
	p.logger.Info("Analysis completed",
		"filename", uploadResp.Filename,
		"total_score", result.ATSScore.TotalScore)
	return result, nil
}

// Optimize requests an optimized resume for the stored analysis using the
// server-assigned filename from the upload step.
func (p *Pipeline) Optimize(ctx context.Context, region string) (*types.OptimizeResponse, error) {
	if err := common.ValidateRegion(region, p.app.Regions); err != nil {
		return nil, err
	}

	analysis := p.store.Get()
	if analysis == nil {
		return nil, errors.NewValidationError(errors.ErrCodeNoAnalysis,
			"No analysis available. Upload a resume first.", nil)
	}

	resp, err := p.backend.OptimizeResume(ctx, analysis.Filename, analysis.JobDescription, region)
	if err != nil {
		p.logger.LogError(err, "Optimize request failed",
			"filename", analysis.Filename,
			"region", region)
		return nil, err
	}

	return resp, nil
}

// Current returns the stored analysis, or nil if none has completed
func (p *Pipeline) Current() *session.Analysis {
	return p.store.Get()
}
