package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/treeq/internal/config"
	"github.com/Sumatoshi-tech/treeq/internal/observability"
	"github.com/Sumatoshi-tech/treeq/pkg/query"
	"github.com/Sumatoshi-tech/treeq/pkg/version"
)

// ErrNoPackFiles indicates a pack run was given nothing to search.
var ErrNoPackFiles = errors.New("no input files for pack run")

// metricsReadTimeout bounds header reads on the scrape endpoint.
const metricsReadTimeout = 5 * time.Second

// traceFlushTimeout bounds the final span flush on shutdown.
const traceFlushTimeout = 5 * time.Second

// tracerName names the tracer for pack-run spans.
const tracerName = "treeq.packs"

func packsCmd() *cobra.Command {
	var metricsListen, traceEndpoint string

	var serveMetrics bool

	cmd := &cobra.Command{
		Use:   "packs <manifest.yaml> [files...]",
		Short: "Run a manifest of named queries over source files",
		Long: `Load a YAML manifest of named queries and run every pack over the given
files, printing a per-pack summary.

Examples:
  treeq packs audit.yaml src/*.go
  treeq packs --metrics audit.yaml src/*.go`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPacks(cmd.Context(), args[0], args[1:], serveMetrics, metricsListen, traceEndpoint, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&serveMetrics, "metrics", false, "serve Prometheus metrics while running")
	cmd.Flags().StringVar(&metricsListen, "metrics-listen", "", "metrics listen address (default from config)")
	cmd.Flags().StringVar(&traceEndpoint, "trace-endpoint", "", "OTLP gRPC collector for spans (default from config)")

	return cmd
}

// packSummary accumulates results for one manifest entry across files.
type packSummary struct {
	Name     string
	Files    int
	Matches  int
	Captures int
	Errors   int
}

func runPacks(ctx context.Context, manifestPath string, files []string, serveMetrics bool, metricsListen, traceEndpoint string, writer io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return ErrNoPackFiles
	}

	manifest, err := config.LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	metrics, shutdown, err := setupMetrics(ctx, cfg, serveMetrics, metricsListen)
	if err != nil {
		return err
	}
	defer shutdown()

	stopTracing, err := setupTracing(ctx, cfg, traceEndpoint)
	if err != nil {
		return err
	}
	defer stopTracing()

	started := time.Now()
	summaries := make([]packSummary, 0, len(manifest.Packs))

	for _, pack := range manifest.Packs {
		summary := runPack(ctx, cfg, metrics, pack, files)
		summaries = append(summaries, summary)
	}

	renderPackSummaries(writer, manifest.Name, summaries, time.Since(started))

	return nil
}

// runPack executes one manifest entry over every file, accumulating its
// summary. Per-file failures are counted, not fatal: one unparseable file
// must not sink the whole run.
func runPack(ctx context.Context, cfg *config.Config, metrics *observability.QueryMetrics, pack config.PackEntry, files []string) packSummary {
	summary := packSummary{Name: pack.Name}
	session := newSession()
	opts := query.ExecOptions{MatchLimit: cfg.Query.MatchLimit}

	tr := otel.Tracer(tracerName)
	ctx, packSpan := tr.Start(ctx, "treeq.pack",
		trace.WithAttributes(
			attribute.String("pack.name", pack.Name),
			attribute.Int("pack.files", len(files)),
		))

	defer func() {
		packSpan.SetAttributes(
			attribute.Int("pack.matches", summary.Matches),
			attribute.Int("pack.captures", summary.Captures),
			attribute.Int("pack.errors", summary.Errors),
		)
		packSpan.End()
	}()

	forced := pack.Language
	if forced == "" {
		forced = cfg.Query.Language
	}

	compiled := false

	for _, file := range files {
		source, ok, err := readSource(file, cfg.Query.MaxFileSize)
		if err != nil || !ok {
			if err != nil {
				summary.Errors++

				slog.Warn("skipping file", "pack", pack.Name, "file", file, "error", err)
			}

			continue
		}

		started := time.Now()
		release := trackInflight(ctx, metrics, forced)

		result, err := session.run(ctx, pack.Query, forced, file, source, opts)

		release()

		if !compiled {
			compiled = true

			recordCompile(ctx, metrics, forced, err)
		}

		if err != nil {
			summary.Errors++

			recordExec(ctx, metrics, forced, observability.StatusError, nil, time.Since(started))
			slog.Warn("pack query failed", "pack", pack.Name, "file", file, "error", err)

			continue
		}

		summary.Files++
		summary.Matches += len(result.Matches)
		summary.Captures += result.CaptureCount

		recordExec(ctx, metrics, forced, observability.StatusOK, result, time.Since(started))
	}

	return summary
}

// trackInflight enters the in-flight gauge when metrics are enabled and
// returns the matching exit.
func trackInflight(ctx context.Context, metrics *observability.QueryMetrics, language string) func() {
	if metrics == nil {
		return func() {}
	}

	return metrics.TrackInflight(ctx, languageLabel(language))
}

// recordCompile records the first compilation outcome of a pack.
func recordCompile(ctx context.Context, metrics *observability.QueryMetrics, language string, err error) {
	if metrics == nil {
		return
	}

	status := observability.StatusOK
	if err != nil {
		status = observability.StatusError
	}

	metrics.RecordCompile(ctx, languageLabel(language), status)
}

// recordExec forwards one execution to the metrics instruments when they
// are enabled.
func recordExec(ctx context.Context, metrics *observability.QueryMetrics, language, status string, result *runResult, duration time.Duration) {
	if metrics == nil {
		return
	}

	var matches, captures int64

	if result != nil {
		matches = int64(len(result.Matches))
		captures = int64(result.CaptureCount)
	}

	metrics.RecordExec(ctx, languageLabel(language), status, matches, captures, duration)
}

// languageLabel names the grammar attribute for metrics, with a stable
// placeholder when detection decides per file.
func languageLabel(language string) string {
	if language == "" {
		return "auto"
	}

	return language
}

// setupTracing installs the OTLP span pipeline when a collector endpoint
// is configured and returns the flush function. Without an endpoint the
// pack spans stay non-recording.
func setupTracing(ctx context.Context, cfg *config.Config, endpoint string) (func(), error) {
	if endpoint == "" {
		endpoint = cfg.Tracing.Endpoint
	}

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
		Endpoint:       endpoint,
		Insecure:       cfg.Tracing.Insecure,
		SampleRatio:    cfg.Tracing.SampleRatio,
		ServiceName:    "treeq",
		ServiceVersion: version.Version,
	})
	if err != nil {
		return nil, err
	}

	return func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), traceFlushTimeout)
		defer cancel()

		flushErr := shutdown(flushCtx)
		if flushErr != nil {
			slog.Warn("trace flush failed", "error", flushErr)
		}
	}, nil
}

// setupMetrics starts the optional Prometheus endpoint and returns the
// instruments plus a shutdown function.
func setupMetrics(ctx context.Context, cfg *config.Config, serve bool, listen string) (*observability.QueryMetrics, func(), error) {
	if !serve && !cfg.Metrics.Enabled {
		return nil, func() {}, nil
	}

	exporter, err := observability.NewPrometheusExporter()
	if err != nil {
		return nil, nil, err
	}

	metrics, err := observability.NewQueryMetrics(exporter.Meter)
	if err != nil {
		return nil, nil, err
	}

	if listen == "" {
		listen = cfg.Metrics.Listen
	}

	server := &http.Server{
		Addr:              listen,
		Handler:           exporter.Handler,
		ReadHeaderTimeout: metricsReadTimeout,
	}

	go func() {
		serveErr := server.ListenAndServe()
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("metrics endpoint failed", "listen", listen, "error", serveErr)
		}
	}()

	slog.Info("serving metrics", "listen", listen)

	shutdown := func() {
		_ = server.Close()
		_ = exporter.Shutdown(ctx)
	}

	return metrics, shutdown, nil
}

func renderPackSummaries(writer io.Writer, name string, summaries []packSummary, elapsed time.Duration) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(writer)
	tbl.SetStyle(table.StyleLight)

	tbl.AppendHeader(table.Row{"PACK", "FILES", "MATCHES", "CAPTURES", "ERRORS"})

	totalMatches, totalCaptures := 0, 0

	for _, summary := range summaries {
		tbl.AppendRow(table.Row{
			summary.Name,
			summary.Files,
			humanize.Comma(int64(summary.Matches)),
			humanize.Comma(int64(summary.Captures)),
			summary.Errors,
		})

		totalMatches += summary.Matches
		totalCaptures += summary.Captures
	}

	tbl.Render()

	if name != "" {
		fmt.Fprintf(writer, "%s: ", name)
	}

	fmt.Fprintf(writer, "%s matches, %s captures in %s\n",
		humanize.Comma(int64(totalMatches)),
		humanize.Comma(int64(totalCaptures)),
		elapsed.Round(time.Millisecond))
}
