package adapters

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"skill-installer/internal/ports"
	"skill-installer/internal/shared"
	"skill-installer/internal/types"
)

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// SystemInventoryAdapter lists installed pip and dpkg packages. Results are
// cached for the lifetime of the adapter.
type SystemInventoryAdapter struct {
	Python string
	run    commandRunner
	mu     sync.Mutex
	cache  map[types.DependencyType]map[string]string
}

type pipListEntry struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func NewSystemInventoryAdapter() *SystemInventoryAdapter {
	return &SystemInventoryAdapter{
		Python: "python3",
		run:    runCommand,
		cache:  map[types.DependencyType]map[string]string{},
	}
}

func (a *SystemInventoryAdapter) InstalledVersions(ctx context.Context, depType types.DependencyType) (map[string]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if cached, ok := a.cache[depType]; ok {
		return cached, nil
	}
	var versions map[string]string
	var err error
	switch depType {
	case types.DependencyTypePip:
		versions, err = a.pipList(ctx)
	case types.DependencyTypeApt:
		versions, err = a.dpkgList(ctx)
	default:
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported dependency type %q", depType))
	}
	if err != nil {
		return nil, err
	}
	if a.cache == nil {
		a.cache = map[types.DependencyType]map[string]string{}
	}
	a.cache[depType] = versions
	return versions, nil
}

func (a *SystemInventoryAdapter) runner() commandRunner {
	if a.run != nil {
		return a.run
	}
	return runCommand
}

func (a *SystemInventoryAdapter) pipList(ctx context.Context) (map[string]string, error) {
	python := a.Python
	if python == "" {
		python = "python3"
	}
	output, err := a.runner()(ctx, python, "-m", "pip", "list", "--format=json")
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("pip list failed").
			WithCause(err)
	}
	return parsePipList(output)
}

func (a *SystemInventoryAdapter) dpkgList(ctx context.Context) (map[string]string, error) {
	output, err := a.runner()(ctx, "dpkg-query", "-W", "-f=${Package}=${Version}\n")
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("dpkg-query failed").
			WithCause(err)
	}
	return parseDpkgList(output), nil
}

func parsePipList(output []byte) (map[string]string, error) {
	var entries []pipListEntry
	if err := json.Unmarshal(output, &entries); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("pip list output is invalid").
			WithCause(err)
	}
	versions := map[string]string{}
	for _, entry := range entries {
		name := shared.NormalizePipName(entry.Name)
		if name == "" {
			continue
		}
		versions[name] = strings.TrimSpace(entry.Version)
	}
	return versions, nil
}

func parseDpkgList(output []byte) map[string]string {
	versions := map[string]string{}
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		name, version, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok || name == "" || version == "" {
			continue
		}
		// multiarch packages are reported as name:arch
		name, _, _ = strings.Cut(name, ":")
		versions[name] = version
	}
	return versions
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return nil, shared.CommandError([]byte(stderr.String()), err)
	}
	return output, nil
}

var _ ports.InventoryPort = (*SystemInventoryAdapter)(nil)
