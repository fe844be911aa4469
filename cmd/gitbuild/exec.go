package main

import (
	"fmt"

	"al.essio.dev/pkg/shellescape"
	"github.com/spf13/cobra"

	"github.com/NicabarNimble/go-buildrepo/internal/command"
	"github.com/NicabarNimble/go-buildrepo/internal/errors"
	"github.com/NicabarNimble/go-buildrepo/internal/git"
)

// newLocalExecutor allows for mocking in tests
var newLocalExecutor = func() command.Executor {
	return command.NewShellExecutor()
}

func newExecCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec [repo-url] -- command...",
		Short: "Run a command inside a repository's clone directory",
		Long: `Run a shell command in the clone directory of a repository with
PROJECT_DIR exported. When the directory does not exist yet the command runs
from the current directory without PROJECT_DIR.

Each argument after -- is quoted for the shell, so the command runs exactly as
written. gitbuild exits with the command's own exit status.`,
		Example: `  gitbuild exec ssh://scm.example.com/box/www -- git log -1 --oneline`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.load()
			if err != nil {
				return err
			}
			session, err := git.NewSession(git.SessionOptions{
				Spec:   git.RemoteSpec{URL: args[0]},
				Layout: git.NewLayout(cfg),
				Remote: git.NewDriver(cfg),
				Local:  newLocalExecutor(),
			})
			if err != nil {
				return err
			}

			line := shellescape.QuoteCommand(args[1:])
			result, err := session.ExecuteCommandInProject(cmd.Context(), line)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), result.Output)
			if !result.Success() {
				return errors.NewCommandError(errors.OpCommand, line, result.ExitStatus, "")
			}
			return nil
		},
	}
	return cmd
}
