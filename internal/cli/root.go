package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"skill-installer/internal/types"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "SKILL_INSTALLER"

type RootConfig struct {
	ConfigFile string
	LogLevel   string
	CatalogDir string
	SkillsDir  string
	Manifest   string
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	root := newRootCommand()
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	cfg := RootConfig{}
	cmd := &cobra.Command{
		Use:          "skill-installer",
		Short:        "Install, remove and reconcile voice assistant skills",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cfg.ConfigFile); err != nil {
				return err
			}
			setupLogging(viper.GetString("log_level"))
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(log.Logger.WithContext(ctx))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	cmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", "info", "Log level")
	cmd.PersistentFlags().StringVar(&cfg.CatalogDir, "catalog", "", "Catalog index file")
	cmd.PersistentFlags().StringVar(&cfg.SkillsDir, "skills-dir", "", "Directory holding installed skills")
	cmd.PersistentFlags().StringVar(&cfg.Manifest, "manifest", "", "Manifest path")
	_ = viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("catalog.index", cmd.PersistentFlags().Lookup("catalog"))
	_ = viper.BindPFlag("catalog.skills_dir", cmd.PersistentFlags().Lookup("skills-dir"))
	_ = viper.BindPFlag("manifest.path", cmd.PersistentFlags().Lookup("manifest"))

	cmd.AddCommand(newInstallCommand())
	cmd.AddCommand(newInstallBetaCommand())
	cmd.AddCommand(newRemoveCommand())
	cmd.AddCommand(newIsInstalledCommand())
	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newInstallCustomCommand())
	cmd.AddCommand(newResolveCommand())
	cmd.AddCommand(newReconcileCommand())
	cmd.AddCommand(newWatchCommand())
	return cmd
}

func initConfig(configFile string) error {
	setDefaults()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read config file").
				WithCause(err)
		}
		return nil
	}

	viper.SetConfigName("skill-installer")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/skill-installer")
	if err := viper.ReadInConfig(); err != nil {
		return nil
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("catalog.index", "catalog.yaml")
	viper.SetDefault("catalog.skills_dir", "skills")
	viper.SetDefault("catalog.workers", 4)
	viper.SetDefault("catalog.git_binary", "git")
	viper.SetDefault("manifest.path", "skills-manifest.yaml")
	viper.SetDefault("manifest.backend", string(types.ManifestBackendFile))
	viper.SetDefault("push.timeout_sec", 10)
	viper.SetDefault("push.retries", 3)
	viper.SetDefault("push.retry_delay_ms", 200)
	viper.SetDefault("disambiguation.limit", 8)
	viper.SetDefault("requirements.check", true)
	viper.SetDefault("watch.debounce", "500ms")
}

// setupLogging writes logs to stderr so reports on stdout stay parseable.
func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func exitCodeForError(err error) int {
	if kind, ok := types.KindOf(err); ok {
		switch kind {
		case types.KindAlreadyInstalled, types.KindAlreadyRemoved:
			return 2
		case types.KindAmbiguousSelection:
			return 3
		case types.KindRequirementsUnmet, types.KindPipRequirementsUnmet, types.KindSystemRequirementsUnmet:
			return 4
		case types.KindNotFound, types.KindTransportFailure:
			return 5
		case types.KindCancelled:
			return 0
		}
	}
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeInvalidArgument, errbuilder.CodeAlreadyExists:
		return 2
	case errbuilder.CodePermissionDenied:
		return 3
	case errbuilder.CodeFailedPrecondition:
		return 4
	case errbuilder.CodeNotFound, errbuilder.CodeInternal:
		return 5
	default:
		return 1
	}
}

func errorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}
