package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ladrtools/proverd/internal/program"
	"github.com/ladrtools/proverd/internal/supervise"
	"github.com/ladrtools/proverd/pkg/client"
)

func createRunCommand() *cobra.Command {
	flags := &RunFlags{}
	cmd := &cobra.Command{
		Use:   "run <program> [input-file]",
		Short: "Run a program locally and wait for its result",
		Long: `Run one of the reasoning programs directly, without a daemon. Input is
read from the given file, or from stdin when no file is given.

Examples:
  proverd run prover9 problem.in
  cat problem.in | proverd run mace4 --opt max_seconds=30`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocal(flags, args)
		},
	}
	cmd.Flags().StringVar(&flags.BinDir, "bin-dir", "bin", "directory holding the program binaries")
	cmd.Flags().StringToStringVar(&flags.Options, "opt", nil, "program option as key=value (repeatable)")
	cmd.Flags().DurationVar(&flags.Poll, "poll", 500*time.Millisecond, "status poll interval")
	return cmd
}

func runLocal(flags *RunFlags, args []string) error {
	prog, err := program.Parse(args[0])
	if err != nil {
		return err
	}
	input, err := readInput(args)
	if err != nil {
		return err
	}

	sup := supervise.New(flags.BinDir, supervise.WithPollInterval(flags.Poll))
	id, err := sup.Create(prog, input, toOptionMap(flags.Options))
	if err != nil {
		return err
	}
	rec, err := sup.Wait(context.Background(), id)
	if err != nil {
		return err
	}

	fmt.Print(rec.Output)
	if rec.Errout != "" {
		_, _ = fmt.Fprint(os.Stderr, rec.Errout)
	}
	if rec.Stats != nil {
		printJSON(rec.Stats)
	}
	if rec.ExitCode != nil {
		fmt.Printf("exit: %d (%s)\n", *rec.ExitCode, rec.ExitLabel())
		if *rec.ExitCode != 0 {
			os.Exit(*rec.ExitCode & 0xff)
		}
	}
	return nil
}

func readInput(args []string) (string, error) {
	if len(args) == 2 {
		b, err := os.ReadFile(args[1])
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func createStartCommand() *cobra.Command {
	flags := &StartFlags{}
	cmd := &cobra.Command{
		Use:   "start <program>",
		Short: "Submit a run to the daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := flags.Input
			if input == "" && flags.File != "" {
				b, err := os.ReadFile(flags.File)
				if err != nil {
					return err
				}
				input = string(b)
			}
			if input == "" {
				return fmt.Errorf("one of --input or --file is required")
			}

			c := apiClient(flags.APIFlags)
			ctx := context.Background()
			id, err := c.Start(ctx, client.StartRequest{
				Program: args[0],
				Input:   input,
				Options: toOptionMap(flags.Options),
			})
			if err != nil {
				return err
			}
			if !flags.Wait {
				fmt.Println(id)
				return nil
			}
			st, err := c.WaitDone(ctx, id, 0)
			if err != nil {
				return err
			}
			printJSON(st)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.Input, "input", "", "input text for the program")
	cmd.Flags().StringVar(&flags.File, "file", "", "read input from file")
	cmd.Flags().StringToStringVar(&flags.Options, "opt", nil, "program option as key=value (repeatable)")
	cmd.Flags().BoolVar(&flags.Wait, "wait", false, "poll until the run finishes and print its status")
	addAPIFlags(cmd, &flags.APIFlags)
	return cmd
}

func createStatusCommand() *cobra.Command {
	flags := &APIFlags{}
	cmd := &cobra.Command{
		Use:   "status <id>",
		Short: "Show the full state of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			st, err := apiClient(*flags).Status(context.Background(), id)
			if err != nil {
				return err
			}
			printJSON(st)
			return nil
		},
	}
	addAPIFlags(cmd, flags)
	return cmd
}

func createListCommand() *cobra.Command {
	flags := &APIFlags{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ids of all tracked runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := apiClient(*flags).List(context.Background())
			if err != nil {
				return err
			}
			printJSON(ids)
			return nil
		},
	}
	addAPIFlags(cmd, flags)
	return cmd
}

func createPauseCommand() *cobra.Command {
	return actionCommand("pause", "Suspend a running process", func(c *client.Client, id uint64) error {
		return c.Pause(context.Background(), id)
	})
}

func createResumeCommand() *cobra.Command {
	return actionCommand("resume", "Continue a suspended process", func(c *client.Client, id uint64) error {
		return c.Resume(context.Background(), id)
	})
}

func createKillCommand() *cobra.Command {
	return actionCommand("kill", "Terminate a live run", func(c *client.Client, id uint64) error {
		return c.Kill(context.Background(), id)
	})
}

func actionCommand(name, short string, action func(*client.Client, uint64) error) *cobra.Command {
	flags := &APIFlags{}
	cmd := &cobra.Command{
		Use:   name + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := action(apiClient(*flags), id); err != nil {
				return err
			}
			fmt.Println("ok")
			return nil
		},
	}
	addAPIFlags(cmd, flags)
	return cmd
}

func createExitsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "exits <program>",
		Short: "Print the exit code label table for a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := program.Parse(args[0])
			if err != nil {
				return err
			}
			printJSON(program.ExitTable(prog))
			return nil
		},
	}
}

func apiClient(f APIFlags) *client.Client {
	url := f.APIUrl
	if url == "" {
		url = "http://127.0.0.1:8080"
	}
	return client.New(client.Config{BaseURL: url, Timeout: f.APITimeout})
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid process id %q", s)
	}
	return id, nil
}

func toOptionMap(opts map[string]string) map[string]any {
	if len(opts) == 0 {
		return nil
	}
	out := make(map[string]any, len(opts))
	for k, v := range opts {
		switch v {
		case "true":
			out[k] = true
		case "false":
			out[k] = false
		default:
			out[k] = v
		}
	}
	return out
}
