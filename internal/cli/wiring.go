package cli

import (
	"context"
	"io"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"skill-installer/internal/adapters"
	"skill-installer/internal/app"
	"skill-installer/internal/ports"
	"skill-installer/internal/types"
)

// serviceIO carries the interactive streams a service talks through.
type serviceIO struct {
	In  io.Reader
	Out io.Writer
}

// newAppService wires the configured adapters into a Service. The returned
// func releases resources held by the adapters.
func newAppService(ctx context.Context, stdio serviceIO) (*app.Service, func(), error) {
	closers := []func() error{}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Ctx(ctx).Warn().Err(err).Msg("failed to close adapter")
			}
		}
	}

	manifest, closeManifest, err := newManifestStore()
	if err != nil {
		return nil, nil, err
	}
	if closeManifest != nil {
		closers = append(closers, closeManifest)
	}

	device := adapters.NewDeviceIdentityAdapter(viper.GetString("device.id"))
	portSet := app.Ports{
		Catalog: adapters.NewCatalogFileAdapter(
			viper.GetString("catalog.index"),
			viper.GetString("catalog.skills_dir"),
			adapters.NewGitExecutorAdapter(viper.GetString("catalog.git_binary")),
			viper.GetInt("catalog.workers"),
		),
		Manifest: manifest,
		Push:     newManifestPush(ctx, device),
		Asker:    adapters.NewConsoleAskAdapter(stdio.In, stdio.Out),
		Reporter: adapters.NewConsoleReporterAdapter(stdio.Out),
		Device:   device,
	}
	if path := strings.TrimSpace(viper.GetString("directive.path")); path != "" {
		portSet.Directives = adapters.NewDirectiveFileAdapter(path)
	}
	if path := strings.TrimSpace(viper.GetString("settings.path")); path != "" {
		portSet.Settings = adapters.NewSettingsFileAdapter(path)
	}
	if viper.GetBool("requirements.check") {
		portSet.Inventory = adapters.NewSystemInventoryAdapter()
	}

	service := app.NewService(portSet, app.Options{
		ChoiceLimit: viper.GetInt("disambiguation.limit"),
		YesWords:    viper.GetStringSlice("confirmation.yes_words"),
		CommonWords: viper.GetStringSlice("normalizer.common_words"),
		Homophones:  homophonesFromConfig(),
	})
	return service, closeAll, nil
}

func newManifestStore() (ports.ManifestStorePort, func() error, error) {
	path := viper.GetString("manifest.path")
	backend := types.ManifestBackend(strings.ToLower(strings.TrimSpace(viper.GetString("manifest.backend"))))
	switch backend {
	case "", types.ManifestBackendFile:
		return adapters.NewManifestFileAdapter(path), nil, nil
	case types.ManifestBackendSQLite:
		store, err := adapters.OpenManifestSQLiteAdapter(path)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unsupported manifest backend: " + string(backend))
	}
}

// newManifestPush uploads only for paired devices with an endpoint.
func newManifestPush(ctx context.Context, device ports.DeviceIdentityPort) ports.ManifestPushPort {
	endpoint := strings.TrimSpace(viper.GetString("push.endpoint"))
	if !viper.GetBool("push.enabled") || !viper.GetBool("device.paired") || endpoint == "" {
		return adapters.ManifestPushNoopAdapter{}
	}
	deviceID, err := device.DeviceID(ctx)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("device identity unavailable, manifest push disabled")
		return adapters.ManifestPushNoopAdapter{}
	}
	return adapters.NewManifestPushHTTPAdapter(
		endpoint,
		viper.GetString("push.token"),
		deviceID,
		viper.GetInt("push.timeout_sec"),
		viper.GetInt("push.retries"),
		viper.GetInt("push.retry_delay_ms"),
	)
}

// homophonesFromConfig returns nil when unset so the built-in table applies.
func homophonesFromConfig() map[string]string {
	if !viper.IsSet("normalizer.homophones") {
		return nil
	}
	return viper.GetStringMapString("normalizer.homophones")
}
