package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bamsammich/fileops/internal/config"
	"github.com/bamsammich/fileops/internal/engine"
	"github.com/bamsammich/fileops/internal/event"
	"github.com/bamsammich/fileops/internal/pathres"
	"github.com/bamsammich/fileops/internal/platform"
	"github.com/bamsammich/fileops/internal/stats"
	"github.com/bamsammich/fileops/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run())
}

// opFlags holds the flags shared by the copy and move subcommands.
type opFlags struct {
	bwLimit       string
	logFile       string
	copyOpts      engine.CopyOptions
	moveOpts      engine.MoveOptions
	verify        engine.Algorithm
	pathFormat    pathres.Format
	preserveTimes bool
	recursive     bool
	progress      bool
	transacted    bool
	verbose       bool
	quiet         bool
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var showVersion bool
	rootCmd := &cobra.Command{
		Use:           "fileops",
		Short:         "Copy and move files through the native copy engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				fmt.Fprintf(stdout, "fileops %s\n", version)
				return nil
			}
			return cmd.Help()
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")

	rootCmd.AddCommand(newOpCmd("copy", stdout, stderr))
	rootCmd.AddCommand(newOpCmd("move", stdout, stderr))
	rootCmd.AddCommand(docsCmd)
	return rootCmd
}

func newOpCmd(op string, stdout, stderr io.Writer) *cobra.Command {
	f := &opFlags{progress: true}
	cmd := &cobra.Command{
		Use:   op + " [flags] <source> <destination>",
		Short: op + " a file or, with -r, a directory tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				slog.Warn("failed to load config", "error", err)
			}
			if err := applyConfigDefaults(cmd, op, cfg.Defaults, f); err != nil {
				return err
			}
			ui.ApplyTheme(cfg.Theme)
			return execute(cmd.Context(), op, args[0], args[1], f, stdout, stderr)
		},
	}

	flags := cmd.Flags()
	if op == "copy" {
		flags.Var(copyOptionsFlag{opts: &f.copyOpts}, "options",
			"comma-separated copy options (fail-if-exists, restartable, no-buffering, reset-read-only-target, ...)")
		flags.BoolVar(&f.preserveTimes, "preserve-times", false, "copy creation, access and write times to the destination")
		flags.Var(verifyFlag{algo: &f.verify}, "verify", "verify copied files (blake3 or xxhash)")
		flags.Lookup("verify").NoOptDefVal = engine.VerifyBLAKE3.String()
	} else {
		flags.Var(moveOptionsFlag{opts: &f.moveOpts}, "options",
			"comma-separated move options (replace-existing, copy-allowed, write-through, ...)")
	}
	flags.Var(pathFormatFlag{format: &f.pathFormat}, "path-format", "path resolution: relative, full or long")
	flags.BoolVarP(&f.recursive, "recursive", "r", false, op+" directories recursively")
	flags.BoolVar(&f.progress, "progress", true, "register a progress callback and show live progress")
	flags.BoolVar(&f.transacted, "transacted", false, "run inside a kernel transaction (Windows)")
	flags.StringVar(&f.bwLimit, "bwlimit", "", "bandwidth limit (e.g. 100M, 1G)")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "verbose output")
	flags.BoolVarP(&f.quiet, "quiet", "q", false, "suppress all output except errors")
	flags.StringVar(&f.logFile, "log", "", "write structured JSON log to FILE")
	return cmd
}

// applyConfigDefaults applies config file defaults for flags not explicitly set on the CLI.
func applyConfigDefaults(cmd *cobra.Command, op string, defaults config.DefaultsConfig, f *opFlags) error {
	changed := cmd.Flags().Changed
	if op == "copy" {
		if !changed("preserve-times") && defaults.PreserveTimes != nil {
			f.preserveTimes = *defaults.PreserveTimes
		}
		if !changed("options") && defaults.CopyOptions != nil {
			opts, err := engine.ParseCopyOptions(*defaults.CopyOptions)
			if err != nil {
				return fmt.Errorf("config copy_options: %w", err)
			}
			f.copyOpts = opts
		}
		if !changed("verify") && defaults.Verify != nil {
			algo, err := engine.ParseAlgorithm(*defaults.Verify)
			if err != nil {
				return fmt.Errorf("config verify: %w", err)
			}
			f.verify = algo
		}
	}
	if op == "move" && !changed("options") && defaults.MoveOptions != nil {
		opts, err := engine.ParseMoveOptions(*defaults.MoveOptions)
		if err != nil {
			return fmt.Errorf("config move_options: %w", err)
		}
		f.moveOpts = opts
	}
	if !changed("progress") && defaults.Progress != nil {
		f.progress = *defaults.Progress
	}
	if !changed("bwlimit") && defaults.BWLimit != nil {
		f.bwLimit = *defaults.BWLimit
	}
	if !changed("path-format") && defaults.PathFormat != nil {
		pf, err := pathres.ParseFormat(*defaults.PathFormat)
		if err != nil {
			return fmt.Errorf("config path_format: %w", err)
		}
		f.pathFormat = pf
	}
	return nil
}

//nolint:gocyclo,revive // cyclomatic,cognitive-complexity: wires logging, presenter, transaction and engine
func execute(ctx context.Context, op, src, dst string, f *opFlags, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var bwLimit int64
	if f.bwLimit != "" {
		n, err := config.ParseSize(f.bwLimit)
		if err != nil {
			return fmt.Errorf("invalid --bwlimit: %w", err)
		}
		bwLimit = n
	}

	// Configure logging.
	logLevel := slog.LevelInfo
	if f.verbose {
		logLevel = slog.LevelDebug
	} else if f.quiet {
		logLevel = slog.LevelWarn
	}
	textHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel})
	var logHandler slog.Handler = textHandler
	if f.logFile != "" {
		lf, err := os.Create(f.logFile)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer lf.Close()
		jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{Level: slog.LevelDebug})
		logHandler = ui.NewMultiHandler(textHandler, jsonHandler)
	}
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	info, err := os.Stat(src)
	if err == nil && info.IsDir() && !f.recursive {
		return fmt.Errorf("%s is a directory (use -r)", src)
	}

	ctx, stop := context.WithCancel(ctx)
	defer stop()
	opDone := make(chan struct{})
	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go watchInterrupt(sigs, stop, opDone, os.Exit)

	collector := stats.NewCollector()
	if err == nil && !info.IsDir() {
		collector.SetTotals(1, info.Size())
	}

	events := make(chan event.Event, 256)
	presenterEvents := (<-chan event.Event)(events)
	if f.logFile != "" {
		presenterEvents = teeEvents(events)
	}

	presenter := ui.NewPresenter(ui.Config{
		Writer:     stdout,
		ErrWriter:  stderr,
		Stats:      collector,
		DstRoot:    dst,
		Width:      ui.TermWidth(os.Stderr.Fd()),
		IsTTY:      ui.IsTTY(os.Stderr.Fd()),
		Quiet:      f.quiet,
		Verbose:    f.verbose,
		NoProgress: !f.progress,
	})

	eng := engine.New(engine.Config{
		Logger: logger,
		Events: events,
		Stats:  collector,
	})

	var progress engine.ProgressFunc
	if f.progress {
		progress = func(_, _, _, _ int64, _ int, _ engine.CallbackReason, _ any) engine.Disposition {
			if ctx.Err() != nil {
				return engine.Cancel
			}
			return engine.Continue
		}
	}
	if bwLimit > 0 {
		progress = engine.Throttle(ctx, engine.NewBWLimiter(bwLimit), progress)
	}

	var tx *platform.KernelTransaction
	if f.transacted {
		tx, err = platform.NewKernelTransaction("fileops "+op, 0)
		if err != nil {
			slog.Warn("kernel transactions unavailable, running without one", "error", err)
			tx = nil
		} else {
			defer tx.Close()
		}
	}

	var presenterErr error
	var presenterWg sync.WaitGroup
	presenterWg.Add(1)
	go func() {
		defer presenterWg.Done()
		presenterErr = presenter.Run(presenterEvents)
	}()

	slog.Debug("starting "+op,
		"src", src,
		"dst", dst,
		"recursive", f.recursive,
		"transacted", tx != nil,
	)

	res, opErr := runOp(ctx, eng, op, src, dst, f, progress, tx)
	close(opDone)
	if ctx.Err() != nil || res.IsCanceled {
		platform.CleanupTmpFiles()
	}

	if tx != nil {
		if opErr == nil && !res.IsCanceled {
			if err := tx.Commit(); err != nil {
				opErr = fmt.Errorf("commit transaction: %w", err)
			}
		} else if err := tx.Rollback(); err != nil {
			slog.Warn("rollback failed", "error", err)
		}
	}

	stop()
	close(events)
	presenterWg.Wait()
	if presenterErr != nil {
		fmt.Fprintf(stderr, "presenter: %v\n", presenterErr)
	}

	if !f.quiet {
		if summary := presenter.Summary(); summary != "" {
			fmt.Fprintln(stderr, summary)
		}
	}

	switch {
	case opErr != nil:
		slog.Error(op+" failed", "error", opErr)
		return &exitError{code: 2}
	case res.IsCanceled:
		return &exitError{code: 1}
	}
	return nil
}

// runOp dispatches to the single-file or tree entry points.
func runOp(
	ctx context.Context,
	eng *engine.Engine,
	op, src, dst string,
	f *opFlags,
	progress engine.ProgressFunc,
	tx *platform.KernelTransaction,
) (*engine.Result, error) {
	var txn engine.Transaction
	if tx != nil {
		txn = tx
	}

	if f.recursive {
		opts := engine.TreeOptions{
			Transaction: txn,
			Progress:    progress,
			PathFormat:  f.pathFormat,
		}
		if op == "move" {
			opts.Move = &f.moveOpts
			return eng.MoveTree(ctx, src, dst, opts)
		}
		opts.Copy = &f.copyOpts
		opts.Verify = f.verify
		opts.PreserveTimestamps = f.preserveTimes
		return eng.CopyTree(ctx, src, dst, opts)
	}

	req := engine.Request{
		Transaction: txn,
		Progress:    progress,
		Source:      src,
		Destination: dst,
		PathFormat:  f.pathFormat,
	}
	if op == "move" {
		req.Move = &f.moveOpts
		return eng.Execute(req)
	}
	req.Copy = &f.copyOpts
	req.PreserveTimestamps = f.preserveTimes
	res, err := eng.Execute(req)
	if err != nil || res.IsCanceled || f.verify == engine.VerifyNone {
		return res, err
	}
	if err := eng.Verify(src, dst, f.verify); err != nil {
		res.Err = err
		return res, err
	}
	return res, nil
}

// watchInterrupt cancels the operation on the first signal. A second signal
// removes the temp files of copies still in flight and exits.
func watchInterrupt(sigs <-chan os.Signal, cancel context.CancelFunc, done <-chan struct{}, exit func(int)) {
	interrupted := false
	for {
		select {
		case <-done:
			return
		case sig := <-sigs:
			if !interrupted {
				interrupted = true
				slog.Info("interrupted, canceling", "signal", sig)
				cancel()
				continue
			}
			slog.Warn("interrupted again, removing partial copies", "signal", sig)
			platform.CleanupTmpFiles()
			exit(1)
			return
		}
	}
}

// teeEvents logs every event as a debug record before forwarding it. The
// log file handler takes debug records; stderr only shows them with -v.
func teeEvents(events <-chan event.Event) <-chan event.Event {
	teed := make(chan event.Event, 256)
	go func() {
		for ev := range events {
			attrs := []slog.Attr{
				slog.String("type", ev.Type.String()),
				slog.String("source", ev.Source),
				slog.String("destination", ev.Destination),
				slog.Int64("size", ev.Size),
			}
			if ev.Code != 0 {
				attrs = append(attrs, slog.Any("code", platform.ErrorCode(ev.Code)))
			}
			if ev.Error != nil {
				attrs = append(attrs, slog.String("error", ev.Error.Error()))
			}
			slog.LogAttrs(context.Background(), slog.LevelDebug, "fileops.event", attrs...)
			teed <- ev
		}
		close(teed)
	}()
	return teed
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
