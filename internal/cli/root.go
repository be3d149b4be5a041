// Package cli wires the cobra root command to the app modes
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/UnendingLoop/minigrep/internal/appmode"
	"github.com/UnendingLoop/minigrep/internal/model"
	"github.com/UnendingLoop/minigrep/internal/parser"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Exit codes
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitSource  = 2
)

// Version is injected at build time via -ldflags
var Version = "dev"

func NewRootCommand() *cobra.Command {
	return newRootCommand(os.LookupEnv)
}

func newRootCommand(lookupEnv func(string) (string, bool)) *cobra.Command {
	var opts parser.Options

	cmd := &cobra.Command{
		Use:   "minigrep [flags] <query> <file>...",
		Short: "Print lines of files that contain a query",
		Long: `minigrep scans every file line by line and prints the lines containing
the query as a plain substring. With several files, or with -n, every file
gets a banner and each line its number.

Case-insensitive search is enabled by -i or by setting IGNORE_CASE.

minigrep can also run as a slave-node serving searches over HTTP, and as a
master that sends each file to several slave-nodes and prints the answer a
quorum of them agrees on.

Examples:
  minigrep duct poem.txt
  minigrep -i rust poem.txt notes.txt
  minigrep -- -i poem.txt                  # search for "-i"
  minigrep --mode slave --address :9090
  minigrep --mode master --node localhost:9090 --node localhost:9091 rust poem.txt`,
		Version:       Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Changed = cmd.Flags().Changed
			ai, err := parser.InitAppMode(opts, args)
			if err != nil {
				return err
			}
			setupLogging(cmd.ErrOrStderr(), ai.Verbose)
			return run(cmd.Context(), ai, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&opts.IgnoreCase, parser.FlagIgnoreCase, "i", parser.IgnoreCaseFromEnv(lookupEnv), "case-insensitive search (default true when "+parser.EnvIgnoreCase+" is set)")
	f.BoolVarP(&opts.LineNumbers, parser.FlagLineNumbers, "n", false, "print file banners and line numbers even for a single file")
	f.BoolVar(&opts.FailFast, parser.FlagFailFast, false, "stop at the first file that cannot be read")
	f.StringVar(&opts.Mode, parser.FlagMode, "", "mode of the app: 'local' (default), 'master' or 'slave'")
	f.StringVar(&opts.Address, parser.FlagAddress, "", "listen address of the slave-node")
	f.StringArrayVar(&opts.Nodes, parser.FlagNode, nil, "slave-node address, repeatable (master)")
	f.IntVar(&opts.Quorum, parser.FlagQuorum, 0, "equal slave-node answers required (master, default majority)")
	f.StringVar(&opts.ConfigPath, parser.FlagConfig, "", "YAML config file")
	f.BoolVarP(&opts.Verbose, parser.FlagVerbose, "v", false, "debug logging")

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &model.UsageError{Reason: err.Error()}
	})

	return cmd
}

func run(ctx context.Context, ai *model.AppInit, w io.Writer) error {
	switch ai.Mode {
	case model.ModeMaster:
		return appmode.RunMaster(ctx, ai, w)
	case model.ModeSlave:
		ctx, stop := context.WithCancel(ctx)
		defer stop()
		return appmode.RunSlave(ctx, stop, ai)
	default:
		return appmode.RunLocal(ctx, ai, w)
	}
}

func setupLogging(w io.Writer, verbose bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339})
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// Report prints err to w and returns the process exit code. Unreadable files
// were already logged one by one, so they only change the code.
func Report(w io.Writer, err error) int {
	if err == nil {
		return ExitOK
	}

	var usageErr *model.UsageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(w, "minigrep: %s\n", usageErr.Reason)
		return ExitFailure
	}

	if onlySourceErrors(err) {
		return ExitSource
	}

	fmt.Fprintf(w, "minigrep: %v\n", err)
	var srcErr *model.SourceError
	if errors.As(err, &srcErr) {
		return ExitSource
	}
	return ExitFailure
}

func onlySourceErrors(err error) bool {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if !onlySourceErrors(e) {
				return false
			}
		}
		return true
	}
	var srcErr *model.SourceError
	return errors.As(err, &srcErr)
}
