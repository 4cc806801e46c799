package common

import (
	"bytes"
	"context"
	"io"
	"path/filepath"

	"resumelens/internal/errors"
)

// ResumeOperationFunc is a generic signature for a backend operation that
// consumes an uploaded resume and an optional job description.
type ResumeOperationFunc[Output any] func(ctx context.Context, filename string, size int64, content io.Reader, jobDescription string) (Output, error)

// LogDetailsFunc defines how to log the start of an operation.
type LogDetailsFunc func(resumePath, jobDescription string, cfg CommandConfig)

// RunResumeCommand encapsulates the common logic for resume-based CLI commands:
// read the resume file, optionally read a job description file, run the backend
// operation, and write the formatted result.
func RunResumeCommand[Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	resumePath string,
	jobDescriptionPath string,
	operation ResumeOperationFunc[Output],
	logDetails LogDetailsFunc,
) error {
	// Pass the logger when creating helpers
	fileProcessor := NewFileProcessor(logger)
	outputHandler := NewOutputHandler(logger)

	content, err := fileProcessor.ReadFileBytes(resumePath)
	if err != nil {
		return err
	}

	jobDescription := ""
	if jobDescriptionPath != "" {
		contents, err := fileProcessor.ValidateAndReadFiles(jobDescriptionPath)
		if err != nil {
			return err
		}
		jobDescription = contents[0]
	}

	logDetails(resumePath, jobDescription, cmdConfig)

	result, err := operation(ctx, filepath.Base(resumePath), int64(len(content)), bytes.NewReader(content), jobDescription)
	if err != nil {
		return err
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}
