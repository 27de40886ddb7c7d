package cli

import (
	"context"

	"github.com/spf13/cobra"

	"skill-installer/internal/app"
	"skill-installer/internal/types"
)

type skillAction func(svc *app.Service, ctx context.Context, target string) (types.Outcome, error)

func newSkillCommand(use string, short string, action skillAction) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <words...>",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSkillAction(cmd, targetText(args), action)
		},
	}
}

func runSkillAction(cmd *cobra.Command, target string, action skillAction) error {
	ctx := cmd.Context()
	service, closeService, err := newAppService(ctx, serviceIO{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()})
	if err != nil {
		return err
	}
	defer closeService()
	_, err = action(service, ctx, target)
	return err
}

func newInstallCommand() *cobra.Command {
	return newSkillCommand("install", "Install a skill by name", (*app.Service).Install)
}

func newInstallBetaCommand() *cobra.Command {
	return newSkillCommand("install-beta", "Install or switch a skill to its beta version", (*app.Service).InstallBeta)
}

func newRemoveCommand() *cobra.Command {
	return newSkillCommand("remove", "Remove an installed skill", (*app.Service).Remove)
}

func newIsInstalledCommand() *cobra.Command {
	return newSkillCommand("is-installed", "Report whether a skill is installed", (*app.Service).IsInstalled)
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Suggest skills that are not installed yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSkillAction(cmd, "", func(svc *app.Service, ctx context.Context, _ string) (types.Outcome, error) {
				return svc.ListAvailable(ctx)
			})
		},
	}
}

func newInstallCustomCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "install-custom [url]",
		Short: "Install a skill from a repository link, or the configured installer link",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSkillAction(cmd, targetText(args), (*app.Service).InstallCustom)
		},
	}
}
