package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GlobalFlags holds persistent flags shared by all commands
type GlobalFlags struct {
	ConfigPath string
}

// APIFlags holds remote daemon connection flags
type APIFlags struct {
	APIUrl     string
	APITimeout time.Duration
}

// RunFlags holds flags for the local one-shot run command
type RunFlags struct {
	BinDir  string
	Options map[string]string
	Poll    time.Duration
}

// StartFlags holds flags for submitting a run to the daemon
type StartFlags struct {
	Input   string
	File    string
	Options map[string]string
	Wait    bool
	APIFlags
}

func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}
	root := createRootCommand(globalFlags)
	root.AddCommand(
		createServeCommand(globalFlags),
		createRunCommand(),
		createStartCommand(),
		createStatusCommand(),
		createListCommand(),
		createPauseCommand(),
		createResumeCommand(),
		createKillCommand(),
		createExitsCommand(),
	)
	return root
}

func createRootCommand(flags *GlobalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:   "proverd",
		Short: "Supervisor for LADR reasoning programs",
		Long: `Proverd launches and supervises prover9, mace4 and their companion
tools, tracking each invocation with live resource usage, extracted
search statistics and annotated exit codes.

Examples:
  proverd run prover9 problem.in          # Run locally, wait for result
  proverd serve --config proverd.toml     # Start daemon
  proverd start prover9 --file problem.in # Submit to daemon
  proverd status 3                        # Inspect a tracked run`,
	}
	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to TOML config file (optional)")
	return root
}

func addAPIFlags(cmd *cobra.Command, f *APIFlags) {
	cmd.Flags().StringVar(&f.APIUrl, "api-url", "", "daemon URL (default http://127.0.0.1:8080)")
	cmd.Flags().DurationVar(&f.APITimeout, "api-timeout", 10*time.Second, "request timeout")
}
