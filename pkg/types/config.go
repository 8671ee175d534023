package types

// ExtractConfig holds settings for the extraction stage.
type ExtractConfig struct {
	// PagesDir is the directory of saved article HTML files.
	PagesDir string `json:"pages_dir" yaml:"pages_dir"`

	// OutputDir is the directory where extraction output is written
	// (articles.json, references.csv).
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Workers is the number of documents extracted concurrently
	// (default 1). Extraction is side-effect free per document, so any
	// value is safe.
	Workers int `json:"workers" yaml:"workers"`
}

// HarvestConfig holds settings for index-page link harvesting.
type HarvestConfig struct {
	// VolumesOut is the CSV path for harvested volume/issue links.
	VolumesOut string `json:"volumes_out" yaml:"volumes_out"`

	// DOIsOut is the CSV path harvested DOIs are appended to.
	DOIsOut string `json:"dois_out" yaml:"dois_out"`
}

// IndexConfig holds settings for the citation index.
type IndexConfig struct {
	// IndexDir is the directory containing the SQLite database.
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Extract ExtractConfig `json:"extract" yaml:"extract"`
	Harvest HarvestConfig `json:"harvest" yaml:"harvest"`
	Index   IndexConfig   `json:"index" yaml:"index"`
}
