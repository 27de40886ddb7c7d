package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"skill-installer/internal/adapters"
	"skill-installer/internal/app"
	"skill-installer/internal/types"
)

type reconcileOptions struct {
	Directive string
	Payload   string
}

func newReconcileCommand() *cobra.Command {
	opts := reconcileOptions{}
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Apply the install/remove directive once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReconcile(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Directive, "directive", "", "Directive file (JSON or YAML)")
	cmd.Flags().StringVar(&opts.Payload, "payload", "", "Inline directive payload (JSON or YAML)")
	_ = viper.BindPFlag("directive.path", cmd.Flags().Lookup("directive"))
	return cmd
}

func runReconcile(ctx context.Context, cmd *cobra.Command, opts reconcileOptions) error {
	service, closeService, err := newAppService(ctx, serviceIO{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()})
	if err != nil {
		return err
	}
	defer closeService()

	var result app.ReconcileResult
	if payload := strings.TrimSpace(opts.Payload); payload != "" {
		result, err = service.ApplyDirectivePayload(ctx, payload)
	} else {
		path := resolveString(cmd, opts.Directive, "directive.path", "directive")
		if path == "" {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("directive path is required")
		}
		service.Directives = adapters.NewDirectiveFileAdapter(path)
		result, err = service.Reconcile(ctx)
	}
	if err != nil {
		return err
	}
	printReconcile(cmd.OutOrStdout(), result)
	return nil
}

func printReconcile(out io.Writer, result app.ReconcileResult) {
	fmt.Fprintf(out, "installed: %s\n", joinOrNone(result.Installed.Succeeded))
	fmt.Fprintf(out, "removed: %s\n", joinOrNone(result.Removed.Succeeded))
	failed := failedNames(result.Installed, result.Removed)
	if len(failed) > 0 {
		fmt.Fprintf(out, "failed: %s\n", strings.Join(failed, ", "))
	}
}

func failedNames(results ...types.BatchResult) []string {
	var names []string
	for _, result := range results {
		for name := range result.Failed {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

type watchOptions struct {
	Debounce time.Duration
}

func newWatchCommand() *cobra.Command {
	opts := watchOptions{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reconcile whenever the directive or settings file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", 500*time.Millisecond, "Quiet period before reacting to a change")
	_ = viper.BindPFlag("watch.debounce", cmd.Flags().Lookup("debounce"))
	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, opts watchOptions) error {
	service, closeService, err := newAppService(ctx, serviceIO{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()})
	if err != nil {
		return err
	}
	defer closeService()

	directivePath := strings.TrimSpace(viper.GetString("directive.path"))
	settingsPath := strings.TrimSpace(viper.GetString("settings.path"))
	if directivePath == "" && settingsPath == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("directive.path or settings.path must be configured")
	}

	onChange := watchHandler(service, directivePath, settingsPath)
	// Catch up with anything that changed while not running.
	if directivePath != "" {
		onChange(ctx, directivePath)
	}
	if settingsPath != "" {
		onChange(ctx, settingsPath)
	}

	debounce := resolveDuration(cmd, opts.Debounce, "watch.debounce", "debounce")
	watcher := adapters.NewFileWatcher(debounce, onChange, directivePath, settingsPath)
	log.Ctx(ctx).Info().Str("directive", directivePath).Str("settings", settingsPath).Msg("watching for changes")
	return watcher.Run(ctx)
}

func watchHandler(service *app.Service, directivePath string, settingsPath string) adapters.ChangeHandler {
	directivePath = cleanPath(directivePath)
	settingsPath = cleanPath(settingsPath)
	return func(ctx context.Context, path string) {
		switch filepath.Clean(path) {
		case directivePath:
			if _, err := service.Reconcile(ctx); err != nil {
				log.Ctx(ctx).Error().Err(err).Msg("reconciliation failed")
			}
		case settingsPath:
			if _, _, err := service.ReloadSettings(ctx); err != nil {
				log.Ctx(ctx).Error().Err(err).Msg("settings change failed")
			}
		}
	}
}

func cleanPath(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Clean(path)
}
