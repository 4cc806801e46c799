package common

import (
	"fmt"
	"slices"
	"strings"

	"resumelens/internal/errors"
	"resumelens/internal/utils"
)

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}

// GetSupportedFormats returns the list of supported formats
func GetSupportedFormats(supportedFormats []string) []string {
	return supportedFormats
}

// ValidateResumeFile checks a resume submission against the configured
// type and size limits. It runs before any network call is made.
func ValidateResumeFile(filename string, size int64, maxSize int64, allowedExtensions []string) error {
	if !utils.IsAllowedResumeFile(filename, allowedExtensions) {
		return errors.NewValidationError(errors.ErrCodeUnsupportedFile,
			fmt.Sprintf("Unsupported file type %q. Allowed types: %s",
				utils.GetFileExtension(filename), strings.Join(allowedExtensions, ", ")), nil).
			WithContext("filename", filename)
	}

	if size > maxSize {
		return errors.NewValidationError(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("File is %s, which exceeds the %s limit",
				utils.FormatFileSize(size), utils.FormatFileSize(maxSize)), nil).
			WithContext("filename", filename).
			WithContext("size", size)
	}

	return nil
}

// ValidateRegion checks a region against the configured set
func ValidateRegion(region string, regions []string) error {
	if slices.Contains(regions, region) {
		return nil
	}
	return errors.NewValidationError(errors.ErrCodeInvalidRequest,
		fmt.Sprintf("Unsupported region %q. Supported regions: %s",
			region, strings.Join(regions, ", ")), nil)
}
