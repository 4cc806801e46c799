package formatters

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"resumelens/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "AnalysisResult", &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", "AnalysisResult", &AnalysisMarkdownFormatter{})
	registry.RegisterFormatter("text", "OptimizeResponse", &OptimizeTextFormatter{})
	registry.RegisterFormatter("markdown", "OptimizeResponse", &OptimizeMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.AnalysisResult, *types.AnalysisResult:
		return "AnalysisResult"
	case types.OptimizeResponse, *types.OptimizeResponse:
		return "OptimizeResponse"
	default:
		return "any"
	}
}

func asAnalysisResult(data any) (*types.AnalysisResult, bool) {
	switch v := data.(type) {
	case types.AnalysisResult:
		return &v, true
	case *types.AnalysisResult:
		return v, true
	default:
		return nil, false
	}
}

func asOptimizeResponse(data any) (*types.OptimizeResponse, bool) {
	switch v := data.(type) {
	case types.OptimizeResponse:
		return &v, true
	case *types.OptimizeResponse:
		return v, true
	default:
		return nil, false
	}
}

// sortedCategories returns breakdown category names in stable order
func sortedCategories(breakdown map[string]types.CategoryScore) []string {
	categories := make([]string, 0, len(breakdown))
	for name := range breakdown {
		categories = append(categories, name)
	}
	sort.Strings(categories)
	return categories
}

func categoryLabel(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// AnalysisTextFormatter handles text formatting for analysis results
type AnalysisTextFormatter struct{}

func (atf *AnalysisTextFormatter) Format(data any) (string, error) {
	result, ok := asAnalysisResult(data)
	if !ok {
		return "", fmt.Errorf("expected AnalysisResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== ATS SCORE ===\n")
	output.WriteString(fmt.Sprintf("Total: %.1f/100\n\n", result.ATSScore.TotalScore))

	for _, name := range sortedCategories(result.ATSScore.Breakdown) {
		category := result.ATSScore.Breakdown[name]
		output.WriteString(fmt.Sprintf("%s: %.1f/%.1f\n", categoryLabel(name), category.Score, category.MaxScore))
		for _, detail := range category.Details {
			output.WriteString(fmt.Sprintf("  - %s\n", detail))
		}
	}
	output.WriteString("\n")

	suggestions := result.OptimizationSuggestions
	output.WriteString("=== OPTIMIZATION SUGGESTIONS ===\n\n")
	if len(suggestions.Skills) > 0 {
		output.WriteString("Skills to add:\n")
		for _, skill := range suggestions.Skills {
			output.WriteString(fmt.Sprintf("- %s\n", skill))
		}
		output.WriteString("\n")
	}
	if len(suggestions.Summary) > 0 {
		output.WriteString("Summary feedback:\n")
		for _, item := range suggestions.Summary {
			output.WriteString(fmt.Sprintf("- %s\n", item))
		}
		output.WriteString("\n")
	}
	if len(suggestions.BulletPoints) > 0 {
		output.WriteString("Bullet point rewrites:\n")
		for _, bullet := range suggestions.BulletPoints {
			output.WriteString(fmt.Sprintf("- Original: %s\n", bullet.Original))
			output.WriteString(fmt.Sprintf("  Improved: %s\n", bullet.Improved))
			if bullet.Reason != "" {
				output.WriteString(fmt.Sprintf("  Reason: %s\n", bullet.Reason))
			}
		}
		output.WriteString("\n")
	}
	if len(suggestions.Keywords) > 0 {
		output.WriteString("Keywords:\n")
		output.WriteString(strings.Join(suggestions.Keywords, ", "))
		output.WriteString("\n\n")
	}

	linkedin := result.LinkedInSuggestions
	output.WriteString("=== LINKEDIN SUGGESTIONS ===\n\n")
	if len(linkedin.Headline) > 0 {
		output.WriteString("Headline options:\n")
		for i, headline := range linkedin.Headline {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, headline))
		}
		output.WriteString("\n")
	}
	if linkedin.AboutSection != "" {
		output.WriteString("About section:\n")
		output.WriteString(linkedin.AboutSection)
		output.WriteString("\n\n")
	}
	if len(linkedin.Skills) > 0 {
		output.WriteString("Skills:\n")
		output.WriteString(strings.Join(linkedin.Skills, ", "))
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (atf *AnalysisTextFormatter) SupportedType() string {
	return "AnalysisResult"
}

// AnalysisMarkdownFormatter handles markdown formatting for analysis results
type AnalysisMarkdownFormatter struct{}

func (amf *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	result, ok := asAnalysisResult(data)
	if !ok {
		return "", fmt.Errorf("expected AnalysisResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Resume Analysis\n\n")
	output.WriteString(fmt.Sprintf("**ATS Score:** %.1f/100\n\n", result.ATSScore.TotalScore))

	if len(result.ATSScore.Breakdown) > 0 {
		output.WriteString("## Score Breakdown\n\n")
		for _, name := range sortedCategories(result.ATSScore.Breakdown) {
			category := result.ATSScore.Breakdown[name]
			output.WriteString(fmt.Sprintf("### %s: %.1f/%.1f\n\n", categoryLabel(name), category.Score, category.MaxScore))
			for _, detail := range category.Details {
				output.WriteString(fmt.Sprintf("- %s\n", detail))
			}
			if len(category.Details) > 0 {
				output.WriteString("\n")
			}
		}
	}

	suggestions := result.OptimizationSuggestions
	output.WriteString("## Optimization Suggestions\n\n")
	if len(suggestions.Skills) > 0 {
		output.WriteString("### Skills to Add\n\n")
		for _, skill := range suggestions.Skills {
			output.WriteString(fmt.Sprintf("- %s\n", skill))
		}
		output.WriteString("\n")
	}
	if len(suggestions.Summary) > 0 {
		output.WriteString("### Summary Feedback\n\n")
		for _, item := range suggestions.Summary {
			output.WriteString(fmt.Sprintf("- %s\n", item))
		}
		output.WriteString("\n")
	}
	if len(suggestions.BulletPoints) > 0 {
		output.WriteString("### Bullet Point Rewrites\n\n")
		for _, bullet := range suggestions.BulletPoints {
			output.WriteString(fmt.Sprintf("- **Original:** %s\n", bullet.Original))
			output.WriteString(fmt.Sprintf("  **Improved:** %s\n", bullet.Improved))
			if bullet.Reason != "" {
				output.WriteString(fmt.Sprintf("  **Reason:** %s\n", bullet.Reason))
			}
		}
		output.WriteString("\n")
	}
	if len(suggestions.Keywords) > 0 {
		output.WriteString("### Keywords\n\n")
		output.WriteString(strings.Join(suggestions.Keywords, ", "))
		output.WriteString("\n\n")
	}

	linkedin := result.LinkedInSuggestions
	output.WriteString("## LinkedIn Suggestions\n\n")
	if len(linkedin.Headline) > 0 {
		output.WriteString("### Headline Options\n\n")
		for i, headline := range linkedin.Headline {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, headline))
		}
		output.WriteString("\n")
	}
	if linkedin.AboutSection != "" {
		output.WriteString("### About Section\n\n")
		output.WriteString(linkedin.AboutSection)
		output.WriteString("\n\n")
	}
	if len(linkedin.Skills) > 0 {
		output.WriteString("### Skills\n\n")
		output.WriteString(strings.Join(linkedin.Skills, ", "))
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (amf *AnalysisMarkdownFormatter) SupportedType() string {
	return "AnalysisResult"
}

// OptimizeTextFormatter handles text formatting for optimize responses
type OptimizeTextFormatter struct{}

func (otf *OptimizeTextFormatter) Format(data any) (string, error) {
	result, ok := asOptimizeResponse(data)
	if !ok {
		return "", fmt.Errorf("expected OptimizeResponse, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== OPTIMIZED RESUME ===\n\n")
	output.WriteString(fmt.Sprintf("Optimized file: %s\n", result.OptimizedFilename))

	if len(result.OptimizedContent) > 0 {
		output.WriteString("\n")
		content, err := json.MarshalIndent(result.OptimizedContent, "", "  ")
		if err != nil {
			return "", err
		}
		output.Write(content)
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (otf *OptimizeTextFormatter) SupportedType() string {
	return "OptimizeResponse"
}

// OptimizeMarkdownFormatter handles markdown formatting for optimize responses
type OptimizeMarkdownFormatter struct{}

func (omf *OptimizeMarkdownFormatter) Format(data any) (string, error) {
	result, ok := asOptimizeResponse(data)
	if !ok {
		return "", fmt.Errorf("expected OptimizeResponse, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Optimized Resume\n\n")
	output.WriteString(fmt.Sprintf("**Optimized file:** %s\n", result.OptimizedFilename))

	if len(result.OptimizedContent) > 0 {
		output.WriteString("\n```json\n")
		content, err := json.MarshalIndent(result.OptimizedContent, "", "  ")
		if err != nil {
			return "", err
		}
		output.Write(content)
		output.WriteString("\n```\n")
	}

	return output.String(), nil
}

func (omf *OptimizeMarkdownFormatter) SupportedType() string {
	return "OptimizeResponse"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
