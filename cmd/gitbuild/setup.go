package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/NicabarNimble/go-buildrepo/internal/config"
	"github.com/NicabarNimble/go-buildrepo/internal/git"
	"github.com/NicabarNimble/go-buildrepo/internal/progress"
	"github.com/NicabarNimble/go-buildrepo/internal/urlutils"
)

type setupOptions struct {
	remote  string
	ref     string
	shallow bool
	clean   bool
}

// setupFunc allows for mocking in tests
var setupFunc = func(ctx context.Context, cfg *config.Config, spec git.RemoteSpec, tracker progress.Tracker, clean bool) (*git.BuildState, string, error) {
	session, err := git.New(cfg, spec, tracker,
		git.WithClean(clean),
		git.WithLocalExecutor(newLocalExecutor()),
	)
	if err != nil {
		return nil, "", err
	}
	state, err := session.SetupBuild(ctx)
	return state, session.LocalDirectory(), err
}

func newSetupCmd(global *globalOptions) *cobra.Command {
	opts := &setupOptions{}

	cmd := &cobra.Command{
		Use:   "setup [repo-url]",
		Short: "Clone or update a repository and check out a ref",
		Example: `  gitbuild setup ssh://scm.example.com/box/www --ref refs/changes/78/151978/27
  gitbuild setup git@github.com:org/repo.git --ref main --shallow
  gitbuild setup https://github.com/org/repo.git --strict-host-key-checking`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("shallow") {
				cfg.GitShallowClone = opts.shallow
			}
			return runSetup(cmd, cfg, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.remote, "remote", git.DefaultRemote, "Remote name to fetch from")
	cmd.Flags().StringVar(&opts.ref, "ref", git.DefaultRef, "Branch, tag or ref to check out")
	cmd.Flags().BoolVar(&opts.shallow, "shallow", false, fmt.Sprintf("Clone only the last %d commits", git.CloneDepth))
	cmd.Flags().BoolVar(&opts.clean, "clean", false, "Remove untracked files after checkout")

	return cmd
}

func runSetup(cmd *cobra.Command, cfg *config.Config, repoURL string, opts *setupOptions) error {
	if err := urlutils.ValidateURL(repoURL); err != nil {
		return fmt.Errorf("invalid repository URL %q: %w", urlutils.RedactURL(repoURL), err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	spec := git.RemoteSpec{URL: repoURL, RemoteName: opts.remote, Ref: opts.ref}
	tracker := progress.NewConsoleTracker(cmd.ErrOrStderr())

	state, dir, err := setupFunc(ctx, cfg, spec, tracker, opts.clean)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	action := "updated"
	if state.Cloned {
		action = "cloned"
	}
	fmt.Fprintf(out, "%s %s at %s\n", color.GreenString(action), urlutils.RedactURL(repoURL), dir)
	fmt.Fprintf(out, "commit: %s\nref:    %s\n", state.CommitHash, state.LocalRef)
	return nil
}
