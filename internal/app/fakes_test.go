package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"skill-installer/internal/ports"
	"skill-installer/internal/shared"
	"skill-installer/internal/types"
)

var fixedNow = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

type fakeCatalog struct {
	mu       sync.Mutex
	entries  []types.SkillEntry
	fail     map[string]error
	findErr  error
	calls    []string
	executed []types.SkillEntry
}

func (f *fakeCatalog) List(context.Context) ([]types.SkillEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.SkillEntry(nil), f.entries...), nil
}

func (f *fakeCatalog) FindByName(_ context.Context, text string) (types.SkillEntry, error) {
	if f.findErr != nil {
		return types.SkillEntry{}, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, entry := range f.entries {
		if entry.Name == text {
			return entry, nil
		}
	}
	return types.SkillEntry{}, types.NewSkillError(types.KindNotFound, text, nil)
}

func (f *fakeCatalog) mutate(action string, entry types.SkillEntry, local bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, action+":"+entry.Name)
	f.executed = append(f.executed, entry)
	if err := f.fail[entry.Name]; err != nil {
		return err
	}
	for i := range f.entries {
		if f.entries[i].Name == entry.Name {
			f.entries[i].IsLocal = local
		}
	}
	return nil
}

func (f *fakeCatalog) Install(_ context.Context, entry types.SkillEntry) error {
	return f.mutate("install", entry, true)
}

func (f *fakeCatalog) Remove(_ context.Context, entry types.SkillEntry) error {
	return f.mutate("remove", entry, false)
}

func (f *fakeCatalog) Update(_ context.Context, entry types.SkillEntry) error {
	return f.mutate("update", entry, true)
}

func (f *fakeCatalog) InstallURL(ctx context.Context, url string) (types.SkillEntry, error) {
	entry := types.SkillEntry{Name: shared.ExtractRepoName(url), URL: url}
	f.mu.Lock()
	f.entries = append(f.entries, entry)
	f.mu.Unlock()
	if err := f.Install(ctx, entry); err != nil {
		return entry, err
	}
	entry.IsLocal = true
	return entry, nil
}

func (f *fakeCatalog) ApplyBatch(ctx context.Context, fn ports.BatchFunc, names []string) types.BatchResult {
	result := types.NewBatchResult()
	for _, name := range names {
		entry, err := f.FindByName(ctx, name)
		if err == nil {
			err = fn(ctx, entry)
		}
		if err != nil {
			result.Failed[name] = err
			continue
		}
		result.Succeeded = append(result.Succeeded, name)
	}
	return result
}

type memoryManifest struct {
	mu    sync.Mutex
	data  types.Manifest
	saves int
	locks int
}

func (m *memoryManifest) Load(context.Context) (types.Manifest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.Clone(), nil
}

func (m *memoryManifest) Save(_ context.Context, manifest types.Manifest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.data = manifest.Clone()
	return nil
}

func (m *memoryManifest) Lock(context.Context) (func(), error) {
	m.mu.Lock()
	m.locks++
	m.mu.Unlock()
	return func() {}, nil
}

type recordingReporter struct {
	outcomes []types.Outcome
}

func (r *recordingReporter) Report(_ context.Context, outcome types.Outcome) error {
	r.outcomes = append(r.outcomes, outcome)
	return nil
}

func (r *recordingReporter) keys() []types.ReportKey {
	var keys []types.ReportKey
	for _, outcome := range r.outcomes {
		keys = append(keys, outcome.Key)
	}
	return keys
}

type scriptedAsker struct {
	responses []string
	prompts   []string
}

func (a *scriptedAsker) Ask(_ context.Context, prompt string, _ map[string]string, _ int) (string, error) {
	a.prompts = append(a.prompts, prompt)
	if len(a.responses) == 0 {
		return "", nil
	}
	response := a.responses[0]
	a.responses = a.responses[1:]
	return response, nil
}

type fakePush struct {
	calls int
	err   error
}

func (p *fakePush) Push(context.Context, types.Manifest) error {
	p.calls++
	return p.err
}

type memorySettings struct {
	settings types.Settings
	saved    []types.Settings
}

func (m *memorySettings) LoadSettings(context.Context) (types.Settings, error) {
	return m.settings, nil
}

func (m *memorySettings) SaveSettings(_ context.Context, settings types.Settings) error {
	m.settings = settings
	m.saved = append(m.saved, settings)
	return nil
}

type fakeDirectives struct {
	directive types.Directive
	err       error
}

func (f fakeDirectives) Load(context.Context) (types.Directive, error) {
	return f.directive, f.err
}

type fakeDevice struct {
	id string
}

func (f fakeDevice) DeviceID(context.Context) (string, error) {
	return f.id, nil
}

type fakeInventory map[types.DependencyType]map[string]string

func (f fakeInventory) InstalledVersions(_ context.Context, depType types.DependencyType) (map[string]string, error) {
	return f[depType], nil
}

type harness struct {
	svc      *Service
	catalog  *fakeCatalog
	manifest *memoryManifest
	reporter *recordingReporter
	asker    *scriptedAsker
	push     *fakePush
	settings *memorySettings
}

func newHarness(t *testing.T, entries []types.SkillEntry, responses ...string) *harness {
	t.Helper()
	h := &harness{
		catalog:  &fakeCatalog{entries: entries, fail: map[string]error{}},
		manifest: &memoryManifest{data: types.Manifest{}},
		reporter: &recordingReporter{},
		asker:    &scriptedAsker{responses: responses},
		push:     &fakePush{},
		settings: &memorySettings{},
	}
	h.svc = NewService(Ports{
		Catalog:  h.catalog,
		Manifest: h.manifest,
		Push:     h.push,
		Asker:    h.asker,
		Reporter: h.reporter,
		Settings: h.settings,
		Device:   fakeDevice{id: "kitchen"},
	}, Options{})
	h.svc.Clock = func() time.Time { return fixedNow }
	return h
}

func remote(name string) types.SkillEntry {
	return types.SkillEntry{Name: name, Author: "mycroft", URL: "https://example.com/" + name + ".git"}
}

func local(name string) types.SkillEntry {
	entry := remote(name)
	entry.IsLocal = true
	return entry
}
