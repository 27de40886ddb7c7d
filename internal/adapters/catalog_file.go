package adapters

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"skill-installer/internal/ports"
	"skill-installer/internal/shared"
	"skill-installer/internal/types"
)

const defaultCatalogWorkers = 4

// CatalogFileAdapter serves the catalog from a YAML index file and treats
// every directory under SkillsDir as an installed skill. The index is read
// once; local state is rescanned on every List.
type CatalogFileAdapter struct {
	IndexPath string
	SkillsDir string
	Executor  ports.ExecutorPort
	Workers   int

	mu      sync.Mutex
	index   []types.SkillEntry
	indexed bool
}

func NewCatalogFileAdapter(indexPath string, skillsDir string, executor ports.ExecutorPort, workers int) *CatalogFileAdapter {
	if workers <= 0 {
		workers = defaultCatalogWorkers
	}
	return &CatalogFileAdapter{
		IndexPath: indexPath,
		SkillsDir: skillsDir,
		Executor:  executor,
		Workers:   workers,
	}
}

func (a *CatalogFileAdapter) List(ctx context.Context) ([]types.SkillEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

// FindByName matches text against skill names: an exact (case-insensitive)
// name wins, otherwise names containing text are candidates.
func (a *CatalogFileAdapter) FindByName(ctx context.Context, text string) (types.SkillEntry, error) {
	entries, err := a.List(ctx)
	if err != nil {
		return types.SkillEntry{}, err
	}
	query := strings.ToLower(strings.TrimSpace(text))
	if query == "" {
		return types.SkillEntry{}, types.NewSkillError(types.KindNotFound, text, nil)
	}
	var partial []types.SkillEntry
	for _, entry := range entries {
		name := strings.ToLower(entry.Name)
		if name == query {
			return entry, nil
		}
		if strings.Contains(name, query) || strings.Contains(strings.ReplaceAll(name, "-", " "), query) {
			partial = append(partial, entry)
		}
	}
	switch len(partial) {
	case 0:
		return types.SkillEntry{}, types.NewSkillError(types.KindNotFound, text, nil)
	case 1:
		return partial[0], nil
	default:
		return types.SkillEntry{}, &types.AmbiguousMatchError{Query: text, Candidates: partial}
	}
}

func (a *CatalogFileAdapter) Install(ctx context.Context, entry types.SkillEntry) error {
	current, err := a.lookup(ctx, entry.Name)
	if err != nil {
		return err
	}
	if current.IsLocal {
		return types.NewSkillError(types.KindAlreadyInstalled, entry.Name, nil)
	}
	if entry.URL == "" {
		entry.URL = current.URL
	}
	if err := a.Executor.Install(ctx, entry, a.skillDir(entry.Name)); err != nil {
		if _, tagged := types.KindOf(err); tagged {
			return err
		}
		return types.NewSkillError(types.KindTransportFailure, entry.Name, err)
	}
	log.Ctx(ctx).Info().Str("skill", entry.Name).Msg("skill installed")
	return nil
}

func (a *CatalogFileAdapter) Remove(ctx context.Context, entry types.SkillEntry) error {
	current, err := a.lookup(ctx, entry.Name)
	if err != nil {
		return err
	}
	if !current.IsLocal {
		return types.NewSkillError(types.KindAlreadyRemoved, entry.Name, nil)
	}
	if err := a.Executor.Remove(ctx, entry, a.skillDir(entry.Name)); err != nil {
		return types.NewSkillError(types.KindTransportFailure, entry.Name, err)
	}
	log.Ctx(ctx).Info().Str("skill", entry.Name).Msg("skill removed")
	return nil
}

// Update moves a local skill to entry.Revision, or to the latest revision
// when none is pinned.
func (a *CatalogFileAdapter) Update(ctx context.Context, entry types.SkillEntry) error {
	current, err := a.lookup(ctx, entry.Name)
	if err != nil {
		return err
	}
	if !current.IsLocal {
		return a.Install(ctx, entry)
	}
	if err := a.Executor.Update(ctx, entry, a.skillDir(entry.Name)); err != nil {
		return types.NewSkillError(types.KindTransportFailure, entry.Name, err)
	}
	log.Ctx(ctx).Info().Str("skill", entry.Name).Str("revision", entry.Revision).Msg("skill updated")
	return nil
}

// InstallURL installs a skill straight from a repository link, adding it to
// the catalog if the index does not know it.
func (a *CatalogFileAdapter) InstallURL(ctx context.Context, url string) (types.SkillEntry, error) {
	name := shared.ExtractRepoName(url)
	if name == "" {
		return types.SkillEntry{}, types.NewSkillError(types.KindNotFound, url, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("cannot derive skill name from link"))
	}
	entries, err := a.List(ctx)
	if err != nil {
		return types.SkillEntry{}, err
	}
	entry := types.SkillEntry{Name: name, URL: url}
	known := false
	for _, existing := range entries {
		if existing.Name == name {
			entry = existing
			entry.URL = url
			known = true
			break
		}
	}
	if entry.IsLocal {
		return entry, types.NewSkillError(types.KindAlreadyInstalled, name, nil)
	}
	if !known {
		a.mu.Lock()
		a.index = append(a.index, types.SkillEntry{Name: name, URL: url})
		a.mu.Unlock()
	}
	if err := a.Install(ctx, entry); err != nil {
		return entry, err
	}
	entry.IsLocal = true
	return entry, nil
}

// ApplyBatch runs fn over the named entries on a bounded worker pool.
// Unknown names fail individually with NotFound.
func (a *CatalogFileAdapter) ApplyBatch(ctx context.Context, fn ports.BatchFunc, names []string) types.BatchResult {
	result := types.NewBatchResult()
	if len(names) == 0 {
		return result
	}
	entries, err := a.List(ctx)
	if err != nil {
		for _, name := range names {
			result.Failed[name] = err
		}
		return result
	}
	byName := make(map[string]types.SkillEntry, len(entries))
	for _, entry := range entries {
		byName[entry.Name] = entry
	}

	type outcome struct {
		name string
		err  error
	}
	workerCount := a.Workers
	if workerCount <= 0 {
		workerCount = defaultCatalogWorkers
	}
	if len(names) < workerCount {
		workerCount = len(names)
	}
	tasks := make(chan string)
	results := make(chan outcome, len(names))
	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range tasks {
				if err := ctx.Err(); err != nil {
					results <- outcome{name: name, err: err}
					continue
				}
				entry, ok := byName[name]
				if !ok {
					results <- outcome{name: name, err: types.NewSkillError(types.KindNotFound, name, nil)}
					continue
				}
				results <- outcome{name: name, err: runBatchItem(ctx, fn, entry)}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()
	for _, name := range names {
		tasks <- name
	}
	close(tasks)

	for item := range results {
		if item.err != nil {
			result.Failed[item.name] = item.err
			continue
		}
		result.Succeeded = append(result.Succeeded, item.name)
	}
	sort.Strings(result.Succeeded)
	return result
}

func runBatchItem(ctx context.Context, fn ports.BatchFunc, entry types.SkillEntry) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg(fmt.Sprintf("batch item %s panicked: %v", entry.Name, recovered))
		}
	}()
	return fn(ctx, entry)
}

func (a *CatalogFileAdapter) lookup(ctx context.Context, name string) (types.SkillEntry, error) {
	entries, err := a.List(ctx)
	if err != nil {
		return types.SkillEntry{}, err
	}
	for _, entry := range entries {
		if entry.Name == name {
			return entry, nil
		}
	}
	return types.SkillEntry{}, types.NewSkillError(types.KindNotFound, name, nil)
}

func (a *CatalogFileAdapter) skillDir(name string) string {
	return filepath.Join(a.SkillsDir, name)
}

func (a *CatalogFileAdapter) loadIndexLocked() error {
	if a.indexed {
		return nil
	}
	var index types.CatalogIndexFile
	if strings.TrimSpace(a.IndexPath) != "" {
		data, err := os.ReadFile(a.IndexPath)
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("catalog index file not found").
				WithCause(err)
		}
		if err := yaml.Unmarshal(data, &index); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("invalid catalog index format").
				WithCause(err)
		}
	}
	seen := map[string]struct{}{}
	for _, entry := range index.Skills {
		entry.Name = strings.TrimSpace(entry.Name)
		if entry.Name == "" {
			continue
		}
		if _, dup := seen[entry.Name]; dup {
			continue
		}
		seen[entry.Name] = struct{}{}
		entry.IsLocal = false
		a.index = append(a.index, entry)
	}
	a.indexed = true
	return nil
}

// snapshotLocked joins the cached index with the skills currently on disk.
func (a *CatalogFileAdapter) snapshotLocked() ([]types.SkillEntry, error) {
	if err := a.loadIndexLocked(); err != nil {
		return nil, err
	}
	local, err := a.localSkills()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(a.index))
	entries := make([]types.SkillEntry, 0, len(a.index))
	for _, entry := range a.index {
		seen[entry.Name] = struct{}{}
		_, entry.IsLocal = local[entry.Name]
		entries = append(entries, entry)
	}
	var extra []string
	for name := range local {
		if _, ok := seen[name]; !ok {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		entries = append(entries, types.SkillEntry{Name: name, IsLocal: true})
	}
	return entries, nil
}

func (a *CatalogFileAdapter) localSkills() (map[string]struct{}, error) {
	local := map[string]struct{}{}
	if strings.TrimSpace(a.SkillsDir) == "" {
		return local, nil
	}
	dirEntries, err := os.ReadDir(a.SkillsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return local, nil
		}
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read skills directory").
			WithCause(err)
	}
	for _, entry := range dirEntries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		local[entry.Name()] = struct{}{}
	}
	return local, nil
}

var _ ports.CatalogPort = (*CatalogFileAdapter)(nil)
