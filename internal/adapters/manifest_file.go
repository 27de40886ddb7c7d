package adapters

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"skill-installer/internal/lockfile"
	"skill-installer/internal/ports"
	"skill-installer/internal/types"
)

// ManifestFileAdapter keeps the manifest in a YAML file. Saves are atomic
// (write to a temp file, then rename).
type ManifestFileAdapter struct {
	Path string

	mu sync.Mutex
}

func NewManifestFileAdapter(path string) *ManifestFileAdapter {
	return &ManifestFileAdapter{Path: path}
}

func (a *ManifestFileAdapter) Load(ctx context.Context) (types.Manifest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(a.Path) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("manifest path is empty")
	}
	data, err := os.ReadFile(a.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.Manifest{}, nil
		}
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read manifest").
			WithCause(err)
	}
	var file types.ManifestFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid manifest format").
			WithCause(err)
	}
	for i := range file.Skills {
		file.Skills[i].UpdatedAt = canonicalTimestamp(file.Skills[i].UpdatedAt)
	}
	return types.ManifestFromFile(file), nil
}

func (a *ManifestFileAdapter) Save(ctx context.Context, manifest types.Manifest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(a.Path) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("manifest path is empty")
	}
	data, err := yaml.Marshal(manifest.File())
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode manifest").
			WithCause(err)
	}
	dir := filepath.Dir(a.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create manifest directory").
			WithCause(err)
	}
	tmp, err := os.CreateTemp(dir, ".manifest-*.yaml")
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create temp manifest").
			WithCause(err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write manifest").
			WithCause(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write manifest").
			WithCause(err)
	}
	if err := os.Rename(tmpPath, a.Path); err != nil {
		_ = os.Remove(tmpPath)
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to replace manifest").
			WithCause(err)
	}
	return nil
}

// Lock serializes manifest access within this process and across
// installer processes sharing the file.
func (a *ManifestFileAdapter) Lock(ctx context.Context) (func(), error) {
	return lockManifest(ctx, &a.mu, a.Path)
}

func lockManifest(ctx context.Context, mu *sync.Mutex, path string) (func(), error) {
	mu.Lock()
	lock, err := lockfile.Acquire(ctx, path+".lock")
	if err != nil {
		mu.Unlock()
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to lock manifest").
			WithCause(err)
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			_ = lock.Release()
			mu.Unlock()
		})
	}, nil
}

var _ ports.ManifestStorePort = (*ManifestFileAdapter)(nil)
