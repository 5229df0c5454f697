package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pubscope/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the source query stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of rows requested per source (default 200).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// EnableClinicalTrials controls whether the ClinicalTrials.gov adapter is used.
	EnableClinicalTrials bool `json:"enable_clinical_trials" yaml:"enable_clinical_trials"`

	// EnableLensScholar controls whether the Lens scholarly adapter is used.
	EnableLensScholar bool `json:"enable_lens_scholar" yaml:"enable_lens_scholar"`

	// EnableLensPatent controls whether the Lens patent adapter is used.
	EnableLensPatent bool `json:"enable_lens_patent" yaml:"enable_lens_patent"`

	// EnableNIHReporter controls whether the NIH RePORTER adapter is used.
	EnableNIHReporter bool `json:"enable_nih_reporter" yaml:"enable_nih_reporter"`

	// LensAPIKey authenticates against the Lens.org scholarly and patent APIs.
	LensAPIKey string `json:"lens_api_key,omitempty" yaml:"lens_api_key,omitempty"`

	// InterSourceDelay is the delay between dispatching calls to different
	// sources (default 0; Lens rate limits are handled by 429 backoff).
	InterSourceDelay time.Duration `json:"inter_source_delay" yaml:"inter_source_delay"`
}

// ReportConfig holds settings for the report rendering stage.
type ReportConfig struct {
	// OutputDir is the directory for rendered reports (e.g. "output/reports/").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// ExportConfig holds settings for the spreadsheet export stage.
type ExportConfig struct {
	// OutputDir is the directory for exported workbooks (e.g. "output/sheets/").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// HistoryConfig holds settings for the run history store.
type HistoryConfig struct {
	// HistoryDir is the base directory for the history database (contains index/).
	HistoryDir string `json:"history_dir" yaml:"history_dir"`

	// MaxResults is the default maximum number of history query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ConversionConfig holds settings for the PDF-to-text conversion stage.
type ConversionConfig struct {
	// OutputDir is the directory for extracted text files (e.g. "output/text/").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Search     SearchConfig     `json:"search" yaml:"search"`
	Report     ReportConfig     `json:"report" yaml:"report"`
	Export     ExportConfig     `json:"export" yaml:"export"`
	History    HistoryConfig    `json:"history" yaml:"history"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion"`
}
