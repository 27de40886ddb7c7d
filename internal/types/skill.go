package types

// Requirements lists the packages a skill needs before it can be installed.
// Each item is a constraint string, e.g. "requests>=2.0" or "libasound2".
type Requirements struct {
	Python []string `yaml:"python,omitempty" json:"python,omitempty"`
	System []string `yaml:"system,omitempty" json:"system,omitempty"`
}

// SkillEntry is one installable unit of the catalog.
type SkillEntry struct {
	Name         string       `yaml:"name" json:"name"`
	Author       string       `yaml:"author,omitempty" json:"author,omitempty"`
	URL          string       `yaml:"url,omitempty" json:"url,omitempty"`
	Revision     string       `yaml:"revision,omitempty" json:"revision,omitempty"`
	Requirements Requirements `yaml:"requirements,omitempty" json:"requirements,omitempty"`

	// IsLocal is derived from the skills directory, never persisted.
	IsLocal bool `yaml:"-" json:"is_local"`
}

// CatalogIndexFile is the on-disk catalog listing.
type CatalogIndexFile struct {
	Skills []SkillEntry `yaml:"skills"`
}

// BatchResult records the outcome of a batch operation by skill name.
type BatchResult struct {
	Succeeded []string
	Failed    map[string]error
}

func NewBatchResult() BatchResult {
	return BatchResult{Failed: map[string]error{}}
}
