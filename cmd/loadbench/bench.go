package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math"
	"math/rand"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"runtime/metrics"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/loadable-dev/loadable/internal/errors"
	"github.com/loadable-dev/loadable/pkg/future"
	"github.com/loadable-dev/loadable/pkg/live"
	"github.com/loadable-dev/loadable/pkg/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// errSyntheticFailure marks operations failed on purpose by the
// workload generator.
var errSyntheticFailure = fmt.Errorf("synthetic operation failure")

type benchCounters struct {
	refreshesIssued atomic.Uint64
	refreshFailures atomic.Uint64
	snapshotsTotal  atomic.Uint64
	snapshotBytes   atomic.Uint64
	errorSnapshots  atomic.Uint64
}

type benchFailures struct {
	dialFailures atomic.Uint64
	readFailures atomic.Uint64
}

func runBench(ctx context.Context, cfg benchConfig) error {
	log.SetFlags(0)

	if cfg.MaxProcs > 0 {
		runtime.GOMAXPROCS(cfg.MaxProcs)
	}

	// Failures are synthetic and tracked by counters; component logs
	// would only drown the summary.
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	var metricsProbe *telemetry.Metrics
	var registry *prometheus.Registry
	if cfg.Metrics {
		registry = prometheus.NewRegistry()
		metricsProbe = telemetry.NewMetrics(telemetry.WithRegistry(registry))
	}

	hub := live.NewHub(
		live.WithLogger(quiet),
		live.WithCheckOrigin(func(r *http.Request) bool { return true }),
	)

	managers := make([]*future.Manager[int64], cfg.Managers)
	for i := range managers {
		name := fmt.Sprintf("src-%d", i)
		opts := []future.Option{future.WithName(name), future.WithLogger(quiet)}
		if metricsProbe != nil {
			opts = append(opts, future.WithProbe(metricsProbe))
		}
		m := future.New[int64](opts...)
		managers[i] = m
		if err := live.Register(hub, name, m); err != nil {
			return err
		}
	}
	defer func() {
		for _, m := range managers {
			m.Dispose()
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/", hub.Handler())
	if registry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	ln, err := net.Listen("tcp4", cfg.ListenAddr)
	if err != nil {
		return errors.New("E021").
			WithDetail("Could not listen on " + cfg.ListenAddr).
			Wrap(err)
	}

	httpServer := &http.Server{Handler: mux}
	go func() {
		_ = httpServer.Serve(ln)
	}()
	defer func() {
		_ = httpServer.Shutdown(context.Background())
	}()

	baseURL := "ws://" + ln.Addr().String()
	log.Printf("serving %d managers on http://%s (profile %s)", cfg.Managers, ln.Addr(), cfg.Profile)
	if cfg.Metrics {
		log.Printf("metrics at http://%s/metrics", ln.Addr())
	}

	runCtx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	samplesCh := make(chan time.Duration, sampleBuffer(cfg.Clients))
	var samples []time.Duration
	var samplesMu sync.Mutex
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for lat := range samplesCh {
			samplesMu.Lock()
			samples = append(samples, lat)
			samplesMu.Unlock()
		}
	}()

	var counters benchCounters
	var failures benchFailures

	var before runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	beforeMetrics := readRuntimeMetrics()

	benchStart := time.Now()

	g, gctx := errgroup.WithContext(runCtx)
	for i := range managers {
		m := managers[i]
		seed := cfg.Seed + int64(i)
		g.Go(func() error {
			runRefresher(gctx, m, cfg, seed, benchStart, &counters)
			return nil
		})
	}
	for i := 0; i < cfg.Clients; i++ {
		url := fmt.Sprintf("%s/sources/src-%d/ws", baseURL, i%cfg.Managers)
		g.Go(func() error {
			return runSubscriber(gctx, url, benchStart, &counters, &failures, samplesCh)
		})
	}

	waitErr := g.Wait()
	close(samplesCh)
	<-collectorDone

	elapsed := time.Since(benchStart)

	if waitErr != nil {
		return errors.New("E022").Wrap(waitErr)
	}

	var after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&after)
	afterMetrics := readRuntimeMetrics()

	samplesMu.Lock()
	latencies := append([]time.Duration(nil), samples...)
	samplesMu.Unlock()
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	report := buildReport(cfg, elapsed, latencies, &counters, &failures, before, after, beforeMetrics, afterMetrics)

	writeSummary(os.Stderr, report)
	if err := writeJSON(cfg.JSONOutput, report); err != nil {
		return errors.New("E040").
			WithDetail("Could not write report to " + cfg.JSONOutput).
			Wrap(err)
	}

	if len(latencies) == 0 {
		return errors.New("E023")
	}
	return nil
}

func sampleBuffer(clients int) int {
	if clients < 1 {
		return 1024
	}
	buf := clients * 4
	if buf < 1024 {
		buf = 1024
	}
	return buf
}

// runRefresher drives one manager: an initial load, then paced silent
// refreshes until the run context expires. The stored value is the
// elapsed run time in microseconds, which subscribers turn into a
// notify latency.
func runRefresher(
	ctx context.Context,
	m *future.Manager[int64],
	cfg benchConfig,
	seed int64,
	benchStart time.Time,
	counters *benchCounters,
) {
	rng := rand.New(rand.NewSource(seed))

	op := func(opCtx context.Context) (int64, error) {
		if cfg.OpLatency > 0 {
			timer := time.NewTimer(cfg.OpLatency)
			select {
			case <-opCtx.Done():
				timer.Stop()
				return 0, opCtx.Err()
			case <-timer.C:
			}
		}
		if cfg.FailureRate > 0 && rng.Float64() < cfg.FailureRate {
			return 0, errSyntheticFailure
		}
		return time.Since(benchStart).Microseconds(), nil
	}

	counters.refreshesIssued.Add(1)
	if _, err := m.Execute(ctx, op, future.Silent()); err != nil {
		if ctx.Err() != nil {
			return
		}
		counters.refreshFailures.Add(1)
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.RefreshRate), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		counters.refreshesIssued.Add(1)
		if _, err := m.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			counters.refreshFailures.Add(1)
		}
	}
}

// runSubscriber reads the snapshot stream for one source and turns
// fresh values into latency samples. The first data value is the
// connect baseline, not a notification.
func runSubscriber(
	ctx context.Context,
	url string,
	benchStart time.Time,
	counters *benchCounters,
	failures *benchFailures,
	samples chan<- time.Duration,
) error {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		failures.dialFailures.Add(1)
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer conn.Close()

	// Unblock the read loop when the run ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			deadline := time.Now().Add(time.Second)
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, deadline)
			_ = conn.Close()
		case <-done:
		}
	}()

	var (
		lastValue int64
		seen      bool
	)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				failures.readFailures.Add(1)
			}
			return nil
		}

		counters.snapshotsTotal.Add(1)
		counters.snapshotBytes.Add(uint64(len(msg)))

		var snap live.Snapshot
		if err := json.Unmarshal(msg, &snap); err != nil {
			failures.readFailures.Add(1)
			return nil
		}
		if snap.Error != "" {
			counters.errorSnapshots.Add(1)
		}

		value, ok := snap.Data.(float64)
		if !ok {
			continue
		}
		v := int64(value)
		if !seen {
			lastValue, seen = v, true
			continue
		}
		if v == lastValue {
			continue
		}
		lastValue = v

		lat := time.Since(benchStart) - time.Duration(v)*time.Microsecond
		if lat < 0 {
			lat = 0
		}
		samples <- lat
	}
}

type runtimeMetricsSnapshot struct {
	cpuTotalSeconds float64
	cpuGCSeconds    float64

	heapAllocsBytes   uint64
	heapAllocsObjects uint64
}

func readRuntimeMetrics() runtimeMetricsSnapshot {
	samples := []metrics.Sample{
		{Name: "/cpu/classes/total:cpu-seconds"},
		{Name: "/cpu/classes/gc/total:cpu-seconds"},
		{Name: "/gc/heap/allocs:bytes"},
		{Name: "/gc/heap/allocs:objects"},
	}
	metrics.Read(samples)

	var out runtimeMetricsSnapshot
	for _, s := range samples {
		switch s.Name {
		case "/cpu/classes/total:cpu-seconds":
			out.cpuTotalSeconds = s.Value.Float64()
		case "/cpu/classes/gc/total:cpu-seconds":
			out.cpuGCSeconds = s.Value.Float64()
		case "/gc/heap/allocs:bytes":
			out.heapAllocsBytes = s.Value.Uint64()
		case "/gc/heap/allocs:objects":
			out.heapAllocsObjects = s.Value.Uint64()
		}
	}
	return out
}

func cpuFraction(after, before runtimeMetricsSnapshot) float64 {
	total := after.cpuTotalSeconds - before.cpuTotalSeconds
	if total <= 0 {
		return 0
	}
	gc := after.cpuGCSeconds - before.cpuGCSeconds
	if gc < 0 {
		return 0
	}
	return gc / total
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func avgPause(after, before runtime.MemStats) time.Duration {
	gcCount := after.NumGC - before.NumGC
	if gcCount == 0 {
		return 0
	}
	return time.Duration((after.PauseTotalNs - before.PauseTotalNs) / uint64(gcCount))
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

type benchReport struct {
	Version    string         `json:"version"`
	Run        runInfo        `json:"run"`
	Workload   workloadInfo   `json:"workload"`
	LatencyMS  latencyInfo    `json:"latency_ms"`
	Throughput throughputInfo `json:"throughput"`
	Refreshes  refreshInfo    `json:"refreshes"`
	GC         gcInfo         `json:"gc"`
	Errors     errorInfo      `json:"errors"`
}

type runInfo struct {
	Timestamp string `json:"timestamp"`
	Go        string `json:"go"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	CPUCount  int    `json:"cpu_count"`
	GitCommit string `json:"git_commit,omitempty"`
}

type workloadInfo struct {
	Profile     string  `json:"profile"`
	Managers    int     `json:"managers"`
	Clients     int     `json:"clients"`
	DurationMS  int64   `json:"duration_ms"`
	RefreshRate float64 `json:"refresh_rate_per_manager"`
	OpLatencyMS float64 `json:"op_latency_ms"`
	FailureRate float64 `json:"failure_rate"`
	Seed        int64   `json:"seed"`
	MaxProcs    int     `json:"max_procs"`
}

type latencyInfo struct {
	Min float64 `json:"min"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
	Max float64 `json:"max"`
}

type throughputInfo struct {
	SnapshotsTotal        uint64  `json:"snapshots_total"`
	SnapshotsPerSec       float64 `json:"snapshots_per_sec"`
	SnapshotsPerSecClient float64 `json:"snapshots_per_sec_per_client"`
	AvgSnapshotBytes      float64 `json:"avg_snapshot_bytes"`
}

type refreshInfo struct {
	Issued         uint64  `json:"issued"`
	PerSec         float64 `json:"per_sec"`
	Failures       uint64  `json:"failures"`
	ObservedRate   float64 `json:"observed_failure_rate"`
	ErrorSnapshots uint64  `json:"error_snapshots"`
}

type gcInfo struct {
	AllocMB       float64 `json:"alloc_mb"`
	HeapLiveMB    float64 `json:"heap_live_mb"`
	NumGC         uint32  `json:"num_gc"`
	PauseTotalMS  float64 `json:"pause_total_ms"`
	PauseAvgMS    float64 `json:"pause_avg_ms"`
	GCCPUFraction float64 `json:"gc_cpu_fraction"`
	AllocsObjects uint64  `json:"allocs_objects"`
}

type errorInfo struct {
	TotalErrors  uint64 `json:"total_errors"`
	DialFailures uint64 `json:"dial_failures"`
	ReadFailures uint64 `json:"read_failures"`
}

func buildReport(
	cfg benchConfig,
	elapsed time.Duration,
	latencies []time.Duration,
	counters *benchCounters,
	failures *benchFailures,
	before runtime.MemStats,
	after runtime.MemStats,
	beforeMetrics runtimeMetricsSnapshot,
	afterMetrics runtimeMetricsSnapshot,
) benchReport {
	snapshotsTotal := counters.snapshotsTotal.Load()
	snapshotBytes := counters.snapshotBytes.Load()
	refreshesIssued := counters.refreshesIssued.Load()
	refreshFailures := counters.refreshFailures.Load()

	elapsedSeconds := math.Max(0.001, elapsed.Seconds())
	snapshotsPerSec := float64(snapshotsTotal) / elapsedSeconds
	snapshotsPerSecClient := snapshotsPerSec / float64(cfg.Clients)
	refreshesPerSec := float64(refreshesIssued) / elapsedSeconds

	latency := latencyInfo{}
	if len(latencies) > 0 {
		latency = latencyInfo{
			Min: ms(latencies[0]),
			P50: ms(percentile(latencies, 0.50)),
			P95: ms(percentile(latencies, 0.95)),
			P99: ms(percentile(latencies, 0.99)),
			Max: ms(latencies[len(latencies)-1]),
		}
	}

	avgSnapshotBytes := 0.0
	if snapshotsTotal > 0 {
		avgSnapshotBytes = float64(snapshotBytes) / float64(snapshotsTotal)
	}
	observedRate := 0.0
	if refreshesIssued > 0 {
		observedRate = float64(refreshFailures) / float64(refreshesIssued)
	}

	dialFailures := failures.dialFailures.Load()
	readFailures := failures.readFailures.Load()

	pauseTotal := time.Duration(after.PauseTotalNs - before.PauseTotalNs)
	pauseAvg := avgPause(after, before)

	report := benchReport{
		Version: "1",
		Run: runInfo{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Go:        runtime.Version(),
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			CPUCount:  runtime.NumCPU(),
			GitCommit: gitCommit(),
		},
		Workload: workloadInfo{
			Profile:     cfg.Profile,
			Managers:    cfg.Managers,
			Clients:     cfg.Clients,
			DurationMS:  cfg.Duration.Milliseconds(),
			RefreshRate: cfg.RefreshRate,
			OpLatencyMS: ms(cfg.OpLatency),
			FailureRate: cfg.FailureRate,
			Seed:        cfg.Seed,
			MaxProcs:    cfg.MaxProcs,
		},
		LatencyMS: latency,
		Throughput: throughputInfo{
			SnapshotsTotal:        snapshotsTotal,
			SnapshotsPerSec:       snapshotsPerSec,
			SnapshotsPerSecClient: snapshotsPerSecClient,
			AvgSnapshotBytes:      avgSnapshotBytes,
		},
		Refreshes: refreshInfo{
			Issued:         refreshesIssued,
			PerSec:         refreshesPerSec,
			Failures:       refreshFailures,
			ObservedRate:   observedRate,
			ErrorSnapshots: counters.errorSnapshots.Load(),
		},
		GC: gcInfo{
			AllocMB:       float64(after.TotalAlloc-before.TotalAlloc) / (1024 * 1024),
			HeapLiveMB:    float64(after.HeapAlloc) / (1024 * 1024),
			NumGC:         after.NumGC - before.NumGC,
			PauseTotalMS:  ms(pauseTotal),
			PauseAvgMS:    ms(pauseAvg),
			GCCPUFraction: cpuFraction(afterMetrics, beforeMetrics),
			AllocsObjects: afterMetrics.heapAllocsObjects - beforeMetrics.heapAllocsObjects,
		},
		Errors: errorInfo{
			TotalErrors:  dialFailures + readFailures,
			DialFailures: dialFailures,
			ReadFailures: readFailures,
		},
	}

	return report
}

func writeSummary(w io.Writer, report benchReport) {
	fmt.Fprintln(w, "=== Loadable Notify Benchmark ===")
	fmt.Fprintf(w, "Profile: %s\n", report.Workload.Profile)
	fmt.Fprintf(w, "Managers: %d\n", report.Workload.Managers)
	fmt.Fprintf(w, "Clients: %d\n", report.Workload.Clients)
	fmt.Fprintf(w, "Duration: %s\n", time.Duration(report.Workload.DurationMS)*time.Millisecond)
	fmt.Fprintf(w, "Target refresh rate: %.2f /s per manager\n", report.Workload.RefreshRate)
	fmt.Fprintf(w, "Op latency: %.1f ms\n", report.Workload.OpLatencyMS)
	fmt.Fprintf(w, "Failure rate: %.1f%%\n", report.Workload.FailureRate*100)
	fmt.Fprintf(w, "Seed: %d\n", report.Workload.Seed)
	if report.Workload.MaxProcs > 0 {
		fmt.Fprintf(w, "GOMAXPROCS cap: %d\n", report.Workload.MaxProcs)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Total snapshots: %d\n", report.Throughput.SnapshotsTotal)
	fmt.Fprintf(w, "Throughput: %.1f snapshots/s (%.2f per client)\n", report.Throughput.SnapshotsPerSec, report.Throughput.SnapshotsPerSecClient)
	fmt.Fprintf(w, "Refreshes: %d (%.1f/s), failures: %d (%.1f%% observed)\n",
		report.Refreshes.Issued, report.Refreshes.PerSec, report.Refreshes.Failures, report.Refreshes.ObservedRate*100)
	fmt.Fprintf(w, "Errors: %d\n", report.Errors.TotalErrors)
	fmt.Fprintln(w)

	if report.LatencyMS.Max == 0 {
		fmt.Fprintln(w, "No latency samples recorded.")
	} else {
		fmt.Fprintln(w, "Notify latency (operation result -> client snapshot):")
		fmt.Fprintf(w, "  min: %.2f ms\n", report.LatencyMS.Min)
		fmt.Fprintf(w, "  p50: %.2f ms\n", report.LatencyMS.P50)
		fmt.Fprintf(w, "  p95: %.2f ms\n", report.LatencyMS.P95)
		fmt.Fprintf(w, "  p99: %.2f ms\n", report.LatencyMS.P99)
		fmt.Fprintf(w, "  max: %.2f ms\n", report.LatencyMS.Max)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Transport: %.1f bytes/snapshot, %d error snapshots\n",
		report.Throughput.AvgSnapshotBytes, report.Refreshes.ErrorSnapshots)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Go runtime / GC (process-wide):")
	fmt.Fprintf(w, "  alloc:     %.2f MB\n", report.GC.AllocMB)
	fmt.Fprintf(w, "  heap_live: %.2f MB\n", report.GC.HeapLiveMB)
	fmt.Fprintf(w, "  num_gc:    %d\n", report.GC.NumGC)
	fmt.Fprintf(w, "  gc_pause:  %.2f ms (total)\n", report.GC.PauseTotalMS)
	fmt.Fprintf(w, "  gc_pause:  %.2f ms (avg)\n", report.GC.PauseAvgMS)
	fmt.Fprintf(w, "  gc_cpu:    %.2f%%\n", report.GC.GCCPUFraction*100)
}

func writeJSON(path string, report benchReport) error {
	var out io.Writer
	if path == "-" {
		out = os.Stdout
	} else {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func gitCommit() string {
	if val := strings.TrimSpace(os.Getenv("LOADBENCH_GIT_COMMIT")); val != "" {
		return val
	}
	if val := strings.TrimSpace(os.Getenv("GIT_COMMIT")); val != "" {
		return val
	}
	cmd := exec.Command("git", "rev-parse", "HEAD")
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
