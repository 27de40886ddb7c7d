package app

import (
	"math/rand/v2"
	"sync"
	"time"

	"skill-installer/internal/core"
	"skill-installer/internal/ports"
)

// Ports are the collaborators a Service acts through. Push, Settings,
// Directives, Device and Inventory are optional.
type Ports struct {
	Catalog    ports.CatalogPort
	Manifest   ports.ManifestStorePort
	Push       ports.ManifestPushPort
	Asker      ports.AskPort
	Reporter   ports.ReporterPort
	Settings   ports.SettingsSourcePort
	Directives ports.DirectiveSourcePort
	Device     ports.DeviceIdentityPort
	Inventory  ports.InventoryPort
}

// Options tune matching and confirmation. Zero values select the defaults.
type Options struct {
	ChoiceLimit int
	YesWords    []string
	CommonWords []string
	Homophones  map[string]string
}

type Service struct {
	Catalog    ports.CatalogPort
	Manifest   ports.ManifestStorePort
	Push       ports.ManifestPushPort
	Asker      ports.AskPort
	Reporter   ports.ReporterPort
	Settings   ports.SettingsSourcePort
	Directives ports.DirectiveSourcePort
	Device     ports.DeviceIdentityPort

	Resolver      core.Resolver
	Disambiguator core.Disambiguator
	Gate          core.ConfirmationGate
	Requirements  core.RequirementsChecker

	Clock   func() time.Time
	Shuffle func(n int, swap func(i, j int))

	// mu serializes manifest mutations of interactive transactions and
	// batch reconciliation within this process.
	mu sync.Mutex
}

func NewService(p Ports, opts Options) *Service {
	normalizer := core.NewNormalizer(opts.CommonWords, opts.Homophones)
	return &Service{
		Catalog:       p.Catalog,
		Manifest:      p.Manifest,
		Push:          p.Push,
		Asker:         p.Asker,
		Reporter:      p.Reporter,
		Settings:      p.Settings,
		Directives:    p.Directives,
		Device:        p.Device,
		Resolver:      core.NewResolver(normalizer),
		Disambiguator: core.NewDisambiguator(normalizer, opts.ChoiceLimit),
		Gate:          core.NewConfirmationGate(opts.YesWords),
		Requirements:  core.NewRequirementsChecker(p.Inventory),
		Clock:         time.Now,
		Shuffle:       rand.Shuffle,
	}
}

func (s *Service) now() string {
	clock := s.Clock
	if clock == nil {
		clock = time.Now
	}
	return clock().UTC().Format(time.RFC3339)
}
