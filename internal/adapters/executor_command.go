package adapters

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"skill-installer/internal/ports"
	"skill-installer/internal/shared"
	"skill-installer/internal/types"
)

// GitExecutorAdapter fetches skills with git and removes them from disk.
type GitExecutorAdapter struct {
	GitBinary string
}

func NewGitExecutorAdapter(gitBinary string) GitExecutorAdapter {
	if strings.TrimSpace(gitBinary) == "" {
		gitBinary = "git"
	}
	return GitExecutorAdapter{GitBinary: gitBinary}
}

func (a GitExecutorAdapter) Install(ctx context.Context, entry types.SkillEntry, dir string) error {
	if strings.TrimSpace(entry.URL) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("skill has no repository url")
	}
	if err := os.MkdirAll(filepath.Dir(dir), 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create skills directory").
			WithCause(err)
	}
	// A failed clone only removes a directory this call created.
	if err := os.Mkdir(dir, 0755); err != nil {
		if os.IsExist(err) {
			return types.NewSkillError(types.KindAlreadyInstalled, entry.Name, nil)
		}
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create skill directory").
			WithCause(err)
	}
	if err := a.runGit(ctx, "", "clone", entry.URL, dir); err != nil {
		_ = os.RemoveAll(dir)
		return err
	}
	if strings.TrimSpace(entry.Revision) != "" {
		if err := a.runGit(ctx, dir, "checkout", entry.Revision); err != nil {
			_ = os.RemoveAll(dir)
			return err
		}
	}
	return nil
}

func (a GitExecutorAdapter) Update(ctx context.Context, entry types.SkillEntry, dir string) error {
	if err := a.runGit(ctx, dir, "fetch", "--all"); err != nil {
		return err
	}
	if strings.TrimSpace(entry.Revision) != "" {
		return a.runGit(ctx, dir, "checkout", entry.Revision)
	}
	return a.runGit(ctx, dir, "pull", "--ff-only")
}

func (a GitExecutorAdapter) Remove(ctx context.Context, _ types.SkillEntry, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to remove skill directory").
			WithCause(err)
	}
	return nil
}

func (a GitExecutorAdapter) runGit(ctx context.Context, dir string, args ...string) error {
	verb := args[0]
	if dir != "" {
		args = append([]string{"-C", dir}, args...)
	}
	cmd := exec.CommandContext(ctx, a.GitBinary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("git " + verb + " failed").
			WithCause(shared.CommandError(output, err))
	}
	return nil
}

var _ ports.ExecutorPort = GitExecutorAdapter{}
