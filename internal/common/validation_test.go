package common

import (
	stderrors "errors"
	"testing"

	"resumelens/internal/errors"
)

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		name             string
		format           string
		supportedFormats []string
		expectError      bool
		expectedError    string
	}{
		{
			name:             "valid format - json",
			format:           "json",
			supportedFormats: []string{"json", "text", "markdown"},
			expectError:      false,
		},
		{
			name:             "valid format - text",
			format:           "text",
			supportedFormats: []string{"json", "text", "markdown"},
			expectError:      false,
		},
		{
			name:             "valid format - markdown",
			format:           "markdown",
			supportedFormats: []string{"json", "text", "markdown"},
			expectError:      false,
		},
		{
			name:             "invalid format - xml",
			format:           "xml",
			supportedFormats: []string{"json", "text", "markdown"},
			expectError:      true,
			expectedError:    "unsupported output format 'xml'. Supported formats: [json text markdown]",
		},
		{
			name:             "invalid format - yaml",
			format:           "yaml",
			supportedFormats: []string{"json", "text", "markdown"},
			expectError:      true,
			expectedError:    "unsupported output format 'yaml'. Supported formats: [json text markdown]",
		},
		{
			name:             "invalid format - csv",
			format:           "csv",
			supportedFormats: []string{"json", "text", "markdown"},
			expectError:      true,
			expectedError:    "unsupported output format 'csv'. Supported formats: [json text markdown]",
		},
		{
			name:             "case sensitive - JSON uppercase",
			format:           "JSON",
			supportedFormats: []string{"json", "text", "markdown"},
			expectError:      true,
			expectedError:    "unsupported output format 'JSON'. Supported formats: [json text markdown]",
		},
		{
			name:             "empty format string",
			format:           "",
			supportedFormats: []string{"json", "text", "markdown"},
			expectError:      true,
			expectedError:    "unsupported output format ''. Supported formats: [json text markdown]",
		},
		{
			name:             "empty supported formats - should allow all",
			format:           "xml",
			supportedFormats: []string{},
			expectError:      false,
		},
		{
			name:             "single supported format - valid",
			format:           "json",
			supportedFormats: []string{"json"},
			expectError:      false,
		},
		{
			name:             "single supported format - invalid",
			format:           "text",
			supportedFormats: []string{"json"},
			expectError:      true,
			expectedError:    "unsupported output format 'text'. Supported formats: [json]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Run validation
			err := ValidateOutputFormat(tt.format, tt.supportedFormats)

			// Check results
			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
					return
				}
				if tt.expectedError != "" && err.Error() != tt.expectedError {
					t.Errorf("Expected error '%s', got '%s'", tt.expectedError, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("Expected no error but got: %v", err)
				}
			}
		})
	}
}

func TestGetSupportedFormats(t *testing.T) {
	tests := []struct {
		name             string
		supportedFormats []string
		expected         []string
	}{
		{
			name:             "normal config with formats",
			supportedFormats: []string{"json", "text", "markdown"},
			expected:         []string{"json", "text", "markdown"},
		},
		{
			name:             "config with single format",
			supportedFormats: []string{"json"},
			expected:         []string{"json"},
		},
		{
			name:             "config with empty formats",
			supportedFormats: []string{},
			expected:         []string{},
		},
		{
			name:             "custom formats",
			supportedFormats: []string{"xml", "yaml", "csv"},
			expected:         []string{"xml", "yaml", "csv"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Get supported formats
			result := GetSupportedFormats(tt.supportedFormats)

			// Check results
			if len(result) != len(tt.expected) {
				t.Errorf("Expected %d formats, got %d", len(tt.expected), len(result))
				return
			}

			for i, expected := range tt.expected {
				if i >= len(result) || result[i] != expected {
					t.Errorf("Expected format[%d] = '%s', got '%s'", i, expected, result[i])
				}
			}
		})
	}
}

func TestValidateResumeFile(t *testing.T) {
	maxSize := int64(5 * 1024 * 1024)
	allowed := []string{".pdf", ".docx"}

	tests := []struct {
		name         string
		filename     string
		size         int64
		expectError  bool
		expectedCode string
	}{
		{
			name:     "pdf within limit",
			filename: "resume.pdf",
			size:     1024,
		},
		{
			name:     "docx within limit",
			filename: "resume.docx",
			size:     2048,
		},
		{
			name:     "uppercase extension",
			filename: "RESUME.PDF",
			size:     1024,
		},
		{
			name:     "exactly at size limit",
			filename: "resume.pdf",
			size:     maxSize,
		},
		{
			name:         "one byte over limit",
			filename:     "resume.pdf",
			size:         maxSize + 1,
			expectError:  true,
			expectedCode: errors.ErrCodeFileTooLarge,
		},
		{
			name:         "unsupported extension",
			filename:     "resume.txt",
			size:         1024,
			expectError:  true,
			expectedCode: errors.ErrCodeUnsupportedFile,
		},
		{
			name:         "no extension",
			filename:     "resume",
			size:         1024,
			expectError:  true,
			expectedCode: errors.ErrCodeUnsupportedFile,
		},
		{
			name:         "unsupported type checked before size",
			filename:     "resume.exe",
			size:         maxSize + 1,
			expectError:  true,
			expectedCode: errors.ErrCodeUnsupportedFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResumeFile(tt.filename, tt.size, maxSize, allowed)

			if !tt.expectError {
				if err != nil {
					t.Errorf("Expected no error but got: %v", err)
				}
				return
			}

			if err == nil {
				t.Fatalf("Expected error but got none")
			}
			var appErr *errors.AppError
			if !stderrors.As(err, &appErr) {
				t.Fatalf("Expected AppError, got %T", err)
			}
			if appErr.Code != tt.expectedCode {
				t.Errorf("Expected code %s, got %s", tt.expectedCode, appErr.Code)
			}
		})
	}
}

func TestValidateRegion(t *testing.T) {
	regions := []string{"US", "UK", "India"}

	tests := []struct {
		name        string
		region      string
		expectError bool
	}{
		{name: "US", region: "US"},
		{name: "UK", region: "UK"},
		{name: "India", region: "India"},
		{name: "unknown region", region: "Mars", expectError: true},
		{name: "case sensitive", region: "us", expectError: true},
		{name: "empty region", region: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegion(tt.region, regions)
			if tt.expectError && err == nil {
				t.Errorf("Expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
		})
	}
}

// Benchmark tests to ensure validation is fast
func BenchmarkValidateOutputFormat(b *testing.B) {
	supportedFormats := []string{"json", "text", "markdown"}

	b.Run("valid format", func(b *testing.B) {
		for b.Loop() {
			_ = ValidateOutputFormat("json", supportedFormats)
		}
	})

	b.Run("invalid format", func(b *testing.B) {
		for b.Loop() {
			_ = ValidateOutputFormat("xml", supportedFormats)
		}
	})
}

func BenchmarkGetSupportedFormats(b *testing.B) {
	supportedFormats := []string{"json", "text", "markdown"}

	for b.Loop() {
		GetSupportedFormats(supportedFormats)
	}
}
