package types

import "gopkg.in/yaml.v3"

// DirectiveItem names one skill and, optionally, the devices it targets.
type DirectiveItem struct {
	Name    string   `yaml:"name" json:"name"`
	Devices []string `yaml:"devices,omitempty" json:"devices,omitempty"`
}

// Directive is an externally issued desired-state instruction.
type Directive struct {
	ToInstall []DirectiveItem `yaml:"to_install" json:"to_install"`
	ToRemove  []DirectiveItem `yaml:"to_remove" json:"to_remove"`
}

// Settings mirrors the remotely editable installer settings.
type Settings struct {
	InstallerLink string `yaml:"installer_link,omitempty" json:"installer_link,omitempty"`
	PreviousLink  string `yaml:"previous_link,omitempty" json:"previous_link,omitempty"`
	AutoInstall   bool   `yaml:"auto_install,omitempty" json:"auto_install,omitempty"`
}

// UnmarshalYAML accepts either a bare skill name or a mapping.
func (d *DirectiveItem) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		d.Name = node.Value
		d.Devices = nil
		return nil
	}
	type plain DirectiveItem
	var item plain
	if err := node.Decode(&item); err != nil {
		return err
	}
	*d = DirectiveItem(item)
	return nil
}
