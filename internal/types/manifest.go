package types

import "sort"

// ManifestEntry is the persisted per-skill metadata.
type ManifestEntry struct {
	Name          string   `yaml:"name" json:"name"`
	Beta          bool     `yaml:"beta" json:"beta"`
	ManualInstall bool     `yaml:"manual_install" json:"manual_install"`
	Devices       []string `yaml:"devices,omitempty" json:"devices,omitempty"`
	UpdatedAt     string   `yaml:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// Manifest holds at most one entry per skill name.
type Manifest map[string]ManifestEntry

// ManifestFile is the serialized form of a Manifest.
type ManifestFile struct {
	Skills []ManifestEntry `yaml:"skills" json:"skills"`
}

// Entries returns the manifest entries ordered by name.
func (m Manifest) Entries() []ManifestEntry {
	out := make([]ManifestEntry, 0, len(m))
	for _, entry := range m {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// Clone returns a copy that can be mutated independently.
func (m Manifest) Clone() Manifest {
	out := make(Manifest, len(m))
	for name, entry := range m {
		entry.Devices = append([]string(nil), entry.Devices...)
		out[name] = entry
	}
	return out
}

func ManifestFromFile(file ManifestFile) Manifest {
	out := Manifest{}
	for _, entry := range file.Skills {
		if entry.Name == "" {
			continue
		}
		out[entry.Name] = entry
	}
	return out
}

func (m Manifest) File() ManifestFile {
	return ManifestFile{Skills: m.Entries()}
}
