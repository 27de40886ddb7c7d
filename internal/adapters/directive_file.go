package adapters

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"skill-installer/internal/core"
	"skill-installer/internal/ports"
	"skill-installer/internal/types"
)

// DirectiveFileAdapter reads a reconciliation directive from a JSON or
// YAML file. A missing file is an empty directive.
type DirectiveFileAdapter struct {
	Path string
}

func NewDirectiveFileAdapter(path string) DirectiveFileAdapter {
	return DirectiveFileAdapter{Path: path}
}

func (a DirectiveFileAdapter) Load(ctx context.Context) (types.Directive, error) {
	if err := ctx.Err(); err != nil {
		return types.Directive{}, err
	}
	if strings.TrimSpace(a.Path) == "" {
		return types.Directive{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("directive path is empty")
	}
	data, err := os.ReadFile(a.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.Directive{}, nil
		}
		return types.Directive{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read directive").
			WithCause(err)
	}
	return core.ParseDirective(string(data))
}

// SettingsFileAdapter stores the installer settings as YAML.
type SettingsFileAdapter struct {
	Path string
}

func NewSettingsFileAdapter(path string) SettingsFileAdapter {
	return SettingsFileAdapter{Path: path}
}

func (a SettingsFileAdapter) LoadSettings(ctx context.Context) (types.Settings, error) {
	if err := ctx.Err(); err != nil {
		return types.Settings{}, err
	}
	data, err := os.ReadFile(a.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.Settings{}, nil
		}
		return types.Settings{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read settings").
			WithCause(err)
	}
	var settings types.Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return types.Settings{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid settings format").
			WithCause(err)
	}
	return settings, nil
}

func (a SettingsFileAdapter) SaveSettings(ctx context.Context, settings types.Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := yaml.Marshal(settings)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode settings").
			WithCause(err)
	}
	if err := os.MkdirAll(filepath.Dir(a.Path), 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create settings directory").
			WithCause(err)
	}
	if err := os.WriteFile(a.Path, data, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write settings").
			WithCause(err)
	}
	return nil
}

var _ ports.DirectiveSourcePort = DirectiveFileAdapter{}
var _ ports.SettingsSourcePort = SettingsFileAdapter{}
