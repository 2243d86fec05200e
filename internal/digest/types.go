package digest

// FileStatus is the version-control status of a changed file
type FileStatus string

const (
	StatusAdded    FileStatus = "added"
	StatusRemoved  FileStatus = "removed"
	StatusModified FileStatus = "modified"
	StatusRenamed  FileStatus = "renamed"
)

// FileDiff is one changed file as supplied by the caller
type FileDiff struct {
	Path         string     `json:"path"`
	PreviousPath string     `json:"previous_path,omitempty"`
	Status       FileStatus `json:"status"`
	Additions    int        `json:"additions"`
	Deletions    int        `json:"deletions"`
	Patch        string     `json:"-"`
}

// Direction tells whether a change line was added or removed
type Direction string

const (
	DirectionAdded   Direction = "added"
	DirectionRemoved Direction = "removed"
)

// MeaningfulChange is a single retained patch line
type MeaningfulChange struct {
	Direction Direction `json:"direction"`
	Content   string    `json:"content"`
	Context   string    `json:"context,omitempty"`
	// Line is the position in the new file, only set for additions
	Line int `json:"line,omitempty"`
}

// Category is the closed set of file buckets
type Category string

const (
	CategoryBackend  Category = "backend"
	CategoryFrontend Category = "frontend"
	CategoryInfra    Category = "infra"
	CategoryConfig   Category = "config"
	CategoryTest     Category = "test"
	CategoryDocs     Category = "docs"
	CategoryOther    Category = "other"
)

// CategoryPriority lists categories from highest to lowest budget priority
var CategoryPriority = []Category{
	CategoryBackend,
	CategoryFrontend,
	CategoryConfig,
	CategoryInfra,
	CategoryOther,
	CategoryDocs,
	CategoryTest,
}

// ChangeType is the kind of change a file carries
type ChangeType string

const (
	ChangeFeature    ChangeType = "feature"
	ChangeRefactor   ChangeType = "refactor"
	ChangeFix        ChangeType = "fix"
	ChangeStyle      ChangeType = "style"
	ChangeDependency ChangeType = "dependency"
	ChangeConfig     ChangeType = "config"
	ChangeDocs       ChangeType = "docs"
)

// Importance orders files for sorting and truncation. Lower values sort first.
type Importance int

const (
	ImportanceHigh Importance = iota
	ImportanceMedium
	ImportanceLow
)

func (i Importance) String() string {
	switch i {
	case ImportanceHigh:
		return "high"
	case ImportanceMedium:
		return "medium"
	case ImportanceLow:
		return "low"
	default:
		return "unknown"
	}
}

// MarshalText renders the importance by name so JSON output stays readable
func (i Importance) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// EnhancedFileDiff is a surviving file with everything the pipeline derived for it
type EnhancedFileDiff struct {
	FileDiff
	Category         Category           `json:"category"`
	ChangeType       ChangeType         `json:"change_type"`
	Importance       Importance         `json:"importance"`
	Language         string             `json:"language,omitempty"`
	IsGenerated      bool               `json:"is_generated"`
	IsFormattingOnly bool               `json:"is_formatting_only"`
	Changes          []MeaningfulChange `json:"changes"`
	Truncated        bool               `json:"truncated"`
	// OriginalChangeCount is the number of changes extracted before budgeting
	OriginalChangeCount int `json:"original_change_count"`
}

// CategorizedFiles maps each category to its files, high importance first
type CategorizedFiles map[Category][]EnhancedFileDiff

// Files returns every file in category priority order
func (c CategorizedFiles) Files() []EnhancedFileDiff {
	var all []EnhancedFileDiff
	for _, category := range CategoryPriority {
		all = append(all, c[category]...)
	}
	return all
}

// CategorySummary is an audience-specific view over one category
type CategorySummary struct {
	Category           Category     `json:"category"`
	Files              []string     `json:"files"`
	Highlights         []string     `json:"highlights"`
	HasBreakingChanges bool         `json:"has_breaking_changes"`
	ChangeTypes        []ChangeType `json:"change_types"`
}

// ProcessingStats is derived from the final categorized state
type ProcessingStats struct {
	TotalFiles          int              `json:"total_files"`
	ProcessedFiles      int              `json:"processed_files"`
	SkippedFiles        int              `json:"skipped_files"`
	TruncatedFiles      int              `json:"truncated_files"`
	EstimatedTokens     int              `json:"estimated_tokens"`
	FilesByCategory     map[Category]int `json:"files_by_category"`
	FormattingOnlyFiles int              `json:"formatting_only_files"`
	SkippedPaths        []string         `json:"skipped_paths"`
	DroppedFiles        []string         `json:"dropped_files"`
	ExhaustedCategories []Category       `json:"exhausted_categories"`
}

// Commit is one commit of the change request
type Commit struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
	// Type is the conventional-commit type token, empty when the message has none
	Type string `json:"type,omitempty"`
}

// Input is everything the pipeline needs for one change request
type Input struct {
	URL     string
	Title   string
	Body    string
	Files   []FileDiff
	Commits []Commit
}

// Metadata describes the change request the output was built from
type Metadata struct {
	Title          string          `json:"title"`
	Body           string          `json:"body,omitempty"`
	URL            string          `json:"url,omitempty"`
	TotalFiles     int             `json:"total_files"`
	TotalAdditions int             `json:"total_additions"`
	TotalDeletions int             `json:"total_deletions"`
	Stats          ProcessingStats `json:"stats"`
	Commits        []Commit        `json:"commits"`
}

// StructuredDiffOutput is the single result of the pipeline
type StructuredDiffOutput struct {
	Metadata            Metadata          `json:"metadata"`
	Files               CategorizedFiles  `json:"files"`
	PRSummary           []CategorySummary `json:"pr_summary"`
	DocsSummary         []CategorySummary `json:"docs_summary"`
	ArchitectureSummary []CategorySummary `json:"architecture_summary"`
	LegacyText          string            `json:"legacy_text"`
}
