// Command gitbuild prepares the local clone a build runs against and reports
// where its clone and timing data live.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/NicabarNimble/go-buildrepo/internal/config"
	"github.com/NicabarNimble/go-buildrepo/internal/errors"
)

type globalOptions struct {
	configPath string
	envFile    string
	strict     bool
	noStrict   bool
}

func (o *globalOptions) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "", "Path to a YAML or JSON config file")
	fs.StringVar(&o.envFile, "env-file", ".env", "Env file with BUILDREPO_* overrides")
	fs.BoolVar(&o.strict, "strict-host-key-checking", false, "Refuse to trust unknown ssh hosts")
	fs.BoolVar(&o.noStrict, "no-strict-host-key-checking", false, "Answer yes when ssh asks to trust an unknown host")
}

// load reads the configuration and applies host key flags on top of it.
func (o *globalOptions) load() (*config.Config, error) {
	if o.strict && o.noStrict {
		return nil, errors.New(errors.OpConfig, fmt.Errorf("--strict-host-key-checking and --no-strict-host-key-checking are mutually exclusive"))
	}
	cfg, err := config.Load(o.configPath, o.envFile)
	if err != nil {
		return nil, err
	}
	switch {
	case o.strict:
		cfg.GitStrictHostKeyChecking = true
	case o.noStrict:
		cfg.GitStrictHostKeyChecking = false
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "gitbuild",
		Short: "Prepare git checkouts for builds",
		Long: `A CLI tool that clones or updates a repository into a stable, per-URL
directory, checks out the requested ref and answers ssh host key prompts
according to the configured trust policy.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts.addFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newSetupCmd(opts),
		newPathsCmd(opts),
		newExecCmd(opts),
	)

	return cmd
}

func main() {
	// Progress goes to stderr, which color only checks for stdout.
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		color.NoColor = true
	}

	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(errors.ExitCode(err))
	}
}
