package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NicabarNimble/go-buildrepo/internal/git"
	"github.com/NicabarNimble/go-buildrepo/internal/repopath"
)

type pathsOptions struct {
	job    string
	branch string
}

func newPathsCmd(global *globalOptions) *cobra.Command {
	opts := &pathsOptions{}

	cmd := &cobra.Command{
		Use:   "paths [repo-url]",
		Short: "Print the clone and timing directories for a repository",
		Example: `  gitbuild paths ssh://scm.example.com/box/www
  gitbuild paths ssh://scm.example.com/box/www --job QUnit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.load()
			if err != nil {
				return err
			}
			layout := git.NewLayout(cfg)
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "repo:    %s\n", layout.RepoDirectory(args[0]))
			fmt.Fprintf(out, "timings: %s\n", layout.TimingFileDirectory(args[0]))
			if opts.job != "" {
				fmt.Fprintf(out, "timing:  %s\n", layout.TimingFilePath(args[0], opts.branch, opts.job))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.job, "job", "", "Job name to print the timing file path for")
	cmd.Flags().StringVar(&opts.branch, "branch", repopath.DefaultBranch, "Branch label of the timing data")

	return cmd
}
