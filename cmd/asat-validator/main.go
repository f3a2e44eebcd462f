// Command asat-validator validates a batch of orders for resend eligibility
// against the order-management backend and optionally resends the approved
// ones. Order ids come from CSV files in the input directory; the verdicts
// land as a JSONL report plus a timestamped run log in the output
// directory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/wppops/asat-validator/internal/config"
	"github.com/wppops/asat-validator/internal/csvio"
	"github.com/wppops/asat-validator/internal/gateway"
	"github.com/wppops/asat-validator/internal/logging"
	"github.com/wppops/asat-validator/internal/pipeline"
	"github.com/wppops/asat-validator/internal/report"
	"github.com/wppops/asat-validator/internal/resend"
	"github.com/wppops/asat-validator/internal/runner"
	"github.com/wppops/asat-validator/pkg/types"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// Exit codes: per-order blocks are not failures, only a run that could not
// validate every input order is
const (
	exitOK          = 0
	exitFailure     = 1
	exitInterrupted = 130
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var (
		cfg         config.Config
		timeoutSec  int
		showVersion bool
	)

	fs := flag.NewFlagSet("asat-validator", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.InputDir, "input-dir", "", "directory holding the input CSV files")
	fs.StringVar(&cfg.OutputDir, "output-dir", "", "directory for the report and run log")
	fs.StringVar(&cfg.OutputName, "output", "", "report file name (default validation_results_<timestamp>.jsonl)")
	fs.StringVar(&cfg.AuthUser, "auth-user", "", "backend user (env "+config.EnvAuthUser+")")
	fs.StringVar(&cfg.AuthPass, "auth-pass", "", "backend password (env "+config.EnvAuthPass+")")
	fs.StringVar(&cfg.BaseURL, "base-url", "", "backend base URL (env "+config.EnvBaseURL+")")
	fs.StringVar(&cfg.ResendURL, "resend-url", "", "resend service URL (env "+config.EnvResendURL+")")
	fs.IntVar(&cfg.MaxWorkers, "max-workers", config.DefaultMaxWorkers, "concurrent order validations")
	fs.IntVar(&timeoutSec, "timeout", int(config.DefaultTimeout/time.Second), "per-call backend timeout in seconds")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "mirror debug output to the console")
	fs.BoolVar(&cfg.NoInteractive, "no-interactive", false, "skip the resend menu; validate and report only")
	fs.BoolVar(&showVersion, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitFailure
	}

	if showVersion {
		fmt.Fprintf(stdout, "asat-validator %s (built %s)\n", version, buildTime)
		return exitOK
	}

	cfg.Timeout = time.Duration(timeoutSec) * time.Second
	cfg = config.Load(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		fs.Usage()
		return exitFailure
	}

	log, logPath, err := logging.New(cfg.OutputDir, stdout, cfg.Verbose)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	defer func() {
		_ = log.Close()
	}()

	runID := uuid.NewString()
	log.Infof("asat-validator %s, run %s (log: %s)", version, runID, logPath)

	orders, problems, err := csvio.LoadDir(cfg.InputDir)
	for _, problem := range problems {
		log.Warnf("input: %v", problem)
	}
	if err != nil {
		log.Errorf("input: %v", err)
		return exitFailure
	}
	log.Infof("loaded %d order(s) from %s", len(orders), cfg.InputDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := gateway.NewClient(gateway.Config{
		BaseURL:   cfg.BaseURL,
		ResendURL: cfg.ResendURL,
		Username:  cfg.AuthUser,
		Password:  cfg.AuthPass,
		Timeout:   cfg.Timeout,
	})
	if err != nil {
		log.Errorf("backend client: %v", err)
		return exitFailure
	}
	if err := client.Login(ctx); err != nil {
		log.Errorf("login failed: %v", err)
		if errors.Is(err, context.Canceled) {
			return exitInterrupted
		}
		return exitFailure
	}
	log.Infof("authenticated as %s", cfg.AuthUser)

	ids := make([]string, len(orders))
	for i, in := range orders {
		ids[i] = in.OrderID
	}

	r := runner.New(pipeline.New(client), cfg.MaxWorkers, log)
	verdicts, runErr := r.RunAll(ctx, ids)

	summary := runner.Summarize(verdicts)
	report.PrintSummary(stdout, summary)
	log.Infof("run %s: %d evaluated, %d approved, %d blocked, %d for review",
		runID, summary.Total, summary.Approved, summary.Blocked, summary.Review)

	resent := make(map[string]*types.ResendOutcome)
	if runErr == nil && !cfg.NoInteractive {
		resendPhase(ctx, client, verdicts, &resend.ConsoleSelector{In: stdin, Out: stdout}, log, resent)
	}

	records := make([]report.Record, 0, len(orders))
	for i, in := range orders {
		if verdicts[i].Step == "" {
			// Never evaluated: the run aborted before this order ran
			continue
		}
		records = append(records, report.Build(runID, in, verdicts[i], resent[in.OrderID]))
	}

	name := cfg.OutputName
	if name == "" {
		name = report.DefaultName(time.Now())
	}
	path := filepath.Join(cfg.OutputDir, name)
	if err := report.WriteJSONL(path, records); err != nil {
		log.Errorf("report: %v", err)
		return exitFailure
	}
	log.Infof("report written: %s (%d record(s))", path, len(records))

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			log.Errorf("run interrupted; partial report written")
			return exitInterrupted
		}
		log.Errorf("run aborted: %v", runErr)
		return exitFailure
	}
	return exitOK
}

// resendPhase runs the interactive selection and resend over the approved
// subset. Selection and per-order resend failures are logged, never fatal:
// the report still gets written.
func resendPhase(ctx context.Context, gw gateway.Gateway, verdicts []types.Verdict, selector resend.Selector, log *logging.RunLog, resent map[string]*types.ResendOutcome) {
	var approved []types.Verdict
	for _, v := range verdicts {
		if v.CanResend() {
			approved = append(approved, v)
		}
	}
	if len(approved) == 0 {
		log.Infof("no orders approved for resend")
		return
	}

	selection, err := selector.Select(approved)
	switch {
	case errors.Is(err, resend.ErrQuit):
		log.Infof("resend skipped")
		return
	case err != nil:
		log.Errorf("resend selection: %v", err)
		return
	case len(selection) == 0:
		log.Infof("nothing selected for resend")
		return
	}

	outcomes, err := resend.NewCoordinator(gw, verdicts, log).Resend(ctx, selection)
	if err != nil {
		log.Errorf("resend rejected: %v", err)
		return
	}

	succeeded := 0
	for i := range outcomes {
		resent[outcomes[i].OrderID] = &outcomes[i]
		if outcomes[i].Success {
			succeeded++
		}
	}
	log.Infof("resend phase: %d/%d succeeded", succeeded, len(outcomes))
}
