package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/systemstart/gaia-node-manager/pkg/api"
	"github.com/systemstart/gaia-node-manager/pkg/jobs"
	"github.com/systemstart/gaia-node-manager/pkg/lifecycle"
	"github.com/systemstart/gaia-node-manager/pkg/logging"
	"github.com/systemstart/gaia-node-manager/pkg/metrics"
	"github.com/systemstart/gaia-node-manager/pkg/runner"
)

var version = "dev"

const (
	_ = iota
	exitNoJobParameter
	exitUnknownJob
	exitDotenvError
	exitLoggingSetupFailed
	exitLoadNodeConfigFailed
	exitLoadUpdatesFailed
	exitMetricsSetupFailed
	exitPlanFailed
	exitJobFailed
	exitWriteResultFailed
)

// assignments collects repeated -set key=value flags in order.
type assignments []api.ConfigUpdate

func (a *assignments) String() string {
	parts := make([]string, len(*a))
	for i, u := range *a {
		parts[i] = u.Key + "=" + u.Value
	}
	return strings.Join(parts, ",")
}

func (a *assignments) Set(s string) error {
	u, err := api.ParseAssignment(s)
	if err != nil {
		return err
	}
	*a = append(*a, u)
	return nil
}

var (
	jobName         string
	nodeConfigFile  string
	updatesFile     string
	setUpdates      assignments
	dryRun          bool
	timeout         time.Duration
	metricsTextfile string
	loggingType     string
	logLevel        string
	showVersion     bool
)

func init() {
	flag.StringVar(
		&jobName,
		"job",
		"",
		"lifecycle job: install (1), stop (2), upgrade (3) or configure (4)")
	flag.StringVar(
		&nodeConfigFile,
		"node-config",
		"",
		"node YAML file (defaults apply when unset)")
	flag.StringVar(
		&updatesFile,
		"updates",
		"",
		"YAML or JSON file with the configure batch")
	flag.Var(
		&setUpdates,
		"set",
		"configure update key=value (repeatable, applied after -updates)")
	flag.BoolVar(
		&dryRun,
		"dry-run",
		false,
		"print the steps the job would run and exit")
	flag.DurationVar(
		&timeout,
		"timeout",
		0,
		"abandon the job after this long (0 = no timeout)")
	flag.StringVar(
		&metricsTextfile,
		"metrics-textfile",
		"",
		"write Prometheus metrics to this file when done")
	flag.StringVar(
		&loggingType,
		"logging-type",
		"tint",
		"logging type: json, text or tint")
	flag.StringVar(
		&logLevel,
		"log-level",
		"info",
		"logging level: debug, info, warn, error")
	flag.BoolVar(
		&showVersion,
		"version",
		false,
		"print version and exit")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := logging.Initialize(loggingType, logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitLoggingSetupFailed)
	}

	includeEnv()
	job := parseJob()
	node := loadNodeConfig()
	updates := collectUpdates(job)

	registry := prometheus.NewRegistry()
	recorder, err := metrics.NewRecorder(registry)
	if err != nil {
		slog.Error("failed to set up metrics", "error", err)
		os.Exit(exitMetricsSetupFailed)
	}

	ops, err := lifecycle.New(lifecycle.Config{
		Node:    node,
		Runner:  runner.NewShellRunner(node.Shell),
		Metrics: recorder,
	})
	if err != nil {
		slog.Error("failed to prepare lifecycle operations", "error", err)
		os.Exit(exitLoadNodeConfigFailed)
	}

	if dryRun {
		printPlan(ops, job, updates)
		return
	}

	code := runJob(ops, node.Name, job, updates)
	writeMetrics(registry)
	if code != 0 {
		os.Exit(code)
	}
	slog.Info("done")
}

func includeEnv() {
	err := godotenv.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("failed to load .env", "error", err)
			os.Exit(exitDotenvError)
		}
		slog.Debug("no .env file found")
	} else {
		slog.Info("using .env file")
	}
}

func parseJob() jobs.ID {
	if jobName == "" {
		slog.Error("-job not set")
		flag.Usage()
		os.Exit(exitNoJobParameter)
	}

	id, err := jobs.ParseID(jobName)
	if err != nil {
		slog.Error("invalid -job", "job", jobName, "error", err)
		os.Exit(exitUnknownJob)
	}
	return id
}

func loadNodeConfig() *api.NodeConfig {
	cfg, err := api.LoadNodeConfig(nodeConfigFile)
	if err != nil {
		slog.Error("failed to load node config", "filename", nodeConfigFile, "error", err)
		os.Exit(exitLoadNodeConfigFailed)
	}
	return cfg
}

func collectUpdates(job jobs.ID) []api.ConfigUpdate {
	var updates []api.ConfigUpdate
	if updatesFile != "" {
		fromFile, err := api.LoadUpdates(updatesFile)
		if err != nil {
			slog.Error("failed to load updates", "filename", updatesFile, "error", err)
			os.Exit(exitLoadUpdatesFailed)
		}
		updates = append(updates, fromFile...)
	}
	updates = append(updates, setUpdates...)

	if job != jobs.Configure && len(updates) > 0 {
		slog.Warn("config updates are ignored for this job", "job", job, "count", len(updates))
		return nil
	}
	return updates
}

func printPlan(ops *lifecycle.Operations, job jobs.ID, updates []api.ConfigUpdate) {
	steps, err := ops.Plan(job.String(), updates)
	if err != nil {
		slog.Error("failed to plan job", "job", job, "error", err)
		os.Exit(exitPlanFailed)
	}

	name := color.New(color.FgCyan, color.Bold)
	for i, s := range steps {
		fmt.Printf("%d. %s\n   %s\n", i+1, name.Sprint(s.Name), s.Command)
	}
}

func runJob(ops *lifecycle.Operations, nodeName string, job jobs.ID, updates []api.ConfigUpdate) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var payload []byte
	if job == jobs.Configure {
		var err error
		if payload, err = json.Marshal(updates); err != nil {
			slog.Error("failed to encode updates", "error", err)
			return exitJobFailed
		}
	}

	dispatcher := jobs.NewDispatcher()
	dispatcher.Register(nodeName, ops)

	result, err := dispatcher.Dispatch(ctx, nodeName, job, payload)
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "%s failed: %v\n", job, err)
		if _, wErr := os.Stdout.Write(append(jobs.EncodeFailure(err), '\n')); wErr != nil {
			slog.Error("failed to write failure", "error", wErr)
		}
		return exitJobFailed
	}

	if _, err := os.Stdout.Write(append(result, '\n')); err != nil {
		slog.Error("failed to write result", "error", err)
		return exitWriteResultFailed
	}
	color.New(color.FgGreen).Fprintf(os.Stderr, "%s succeeded\n", job)
	return 0
}

func writeMetrics(registry *prometheus.Registry) {
	if metricsTextfile == "" {
		return
	}
	if err := metrics.WriteTextfile(metricsTextfile, registry); err != nil {
		slog.Warn("failed to write metrics", "filename", metricsTextfile, "error", err)
	}
}
