package types

// UploadResponse is returned by the backend after a resume file is stored
type UploadResponse struct {
	Filename string `json:"filename"`
	Message  string `json:"message,omitempty"`
}

// CategoryScore represents one scored category in the ATS breakdown
type CategoryScore struct {
	Score    float64  `json:"score"`
	MaxScore float64  `json:"max_score"`
	Details  []string `json:"details,omitempty"`
}

// ATSScore represents the total score plus its per-category breakdown
type ATSScore struct {
	TotalScore float64                  `json:"total_score"`
	Breakdown  map[string]CategoryScore `json:"breakdown,omitempty"`
}

// ExperienceEntry represents one job extracted from the resume
type ExperienceEntry struct {
	Title       string   `json:"title"`
	Company     string   `json:"company,omitempty"`
	Dates       []string `json:"dates,omitempty"`
	Description []string `json:"description,omitempty"`
}

// ParsedData represents the structured content extracted from the resume
type ParsedData struct {
	Skills     []string          `json:"skills,omitempty"`
	Experience []ExperienceEntry `json:"experience,omitempty"`
	Education  []string          `json:"education,omitempty"`
	Summary    string            `json:"summary,omitempty"`
}

// BulletSuggestion pairs an original bullet point with its suggested rewrite
type BulletSuggestion struct {
	Original   string `json:"original"`
	Improved   string `json:"improved,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// ExperienceSuggestion groups bullet-point rewrites under the job they belong to
type ExperienceSuggestion struct {
	Title       string             `json:"title"`
	Suggestions []BulletSuggestion `json:"suggestions,omitempty"`
}

// OptimizationSuggestions represents improvement suggestions per resume section
type OptimizationSuggestions struct {
	Skills       []string               `json:"skills,omitempty"`
	Experience   []ExperienceSuggestion `json:"experience,omitempty"`
	Summary      []string               `json:"summary,omitempty"`
	Keywords     []string               `json:"keywords,omitempty"`
	BulletPoints []BulletSuggestion     `json:"bullet_points,omitempty"`
}

// LinkedInSuggestions represents generated LinkedIn profile content
type LinkedInSuggestions struct {
	Headline     []string `json:"headline,omitempty"`
	AboutSection string   `json:"about_section,omitempty"`
	Skills       []string `json:"skills,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
}

// AnalysisResult is the full payload returned by the analyze endpoint.
// Any subset of fields may be absent; consumers must handle zero values.
type AnalysisResult struct {
	ParsedData              ParsedData              `json:"parsed_data"`
	ATSScore                ATSScore                `json:"ats_score"`
	OptimizationSuggestions OptimizationSuggestions `json:"optimization_suggestions"`
	LinkedInSuggestions     LinkedInSuggestions     `json:"linkedin_suggestions"`
}

// OptimizeResponse is returned by the optimize endpoint
type OptimizeResponse struct {
	OptimizedFilename string         `json:"optimized_filename"`
	OptimizedContent  map[string]any `json:"optimized_content,omitempty"`
}

// UploadInput represents a validated resume submission before upload
type UploadInput struct {
	Filename       string
	Size           int64
	ContentType    string
	JobDescription string
}
