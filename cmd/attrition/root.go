package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/backmassage/attrition/internal/check"
	"github.com/backmassage/attrition/internal/config"
	"github.com/backmassage/attrition/internal/display"
	"github.com/backmassage/attrition/internal/logging"
	"github.com/backmassage/attrition/internal/pipeline"
)

// app carries what the persistent pre-run resolves for every subcommand.
type app struct {
	cfg config.Config
	v   *viper.Viper
	log *logging.Logger
}

// run executes the CLI with args and returns the process exit code.
func run(args []string) int {
	a := &app{cfg: config.DefaultConfig(), v: viper.New()}
	defer func() {
		if a.log != nil {
			_ = a.log.Close()
		}
	}()

	root, err := rootCmd(a)
	if err != nil {
		fmt.Fprintf(os.Stderr, "attrition: %v\n", err)
		return 1
	}
	root.SetArgs(args)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		if a.log != nil {
			a.log.Error("%v", err)
		} else {
			fmt.Fprintf(os.Stderr, "attrition: %v\n", err)
		}
		return 1
	}
	return 0
}

// rootCmd builds the command tree. Flags are shared by every subcommand.
func rootCmd(a *app) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:           "attrition",
		Short:         "attrition writes the HR attrition reports.",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	if err := config.BindFlags(cmd.PersistentFlags(), a.v, &a.cfg); err != nil {
		return nil, err
	}

	for _, j := range pipeline.Jobs() {
		cmd.AddCommand(jobCmd(a, j))
	}
	cmd.AddCommand(allCmd(a), checkCmd(a))
	return cmd, nil
}

// setup loads configuration and starts logging.
func (a *app) setup() error {
	if err := config.Load(a.v, &a.cfg); err != nil {
		return err
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	log, err := logging.NewLogger(&a.cfg)
	if err != nil {
		return err
	}
	a.log = log
	display.PrintBanner(os.Stdout)
	return nil
}

func jobCmd(a *app, j pipeline.Job) *cobra.Command {
	return &cobra.Command{
		Use:   j.Name,
		Short: fmt.Sprintf("Run %s", j.Title),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runJobs(cmd.Context(), j)
		},
	}
}

func allCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run every report in order; the first failure stops the run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runJobs(cmd.Context(), pipeline.Jobs()...)
		},
	}
}

func checkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the input columns and that the output directories are writable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !check.RunCheck(&a.cfg, pipeline.Requirements(pipeline.Jobs()), a.log) {
				return errCheckFailed
			}
			return nil
		},
	}
}

func (a *app) runJobs(ctx context.Context, jobs ...pipeline.Job) error {
	a.log.Info("=== attrition v%s (%s) ===", version, commit)
	stats := pipeline.Run(ctx, &a.cfg, a.log, jobs...)
	if !stats.OK() {
		return errRunFailed
	}
	return nil
}
