package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/loadable-dev/loadable/internal/config"
	"github.com/loadable-dev/loadable/internal/errors"
)

// profile is a named workload preset.
type profile struct {
	Name        string
	Managers    int
	Clients     int
	Duration    time.Duration
	RefreshRate float64
	OpLatency   time.Duration
	FailureRate float64
	MaxProcs    int
}

var profiles = map[string]profile{
	"fast": {
		Name:        "fast",
		Managers:    4,
		Clients:     50,
		Duration:    10 * time.Second,
		RefreshRate: 2,
		OpLatency:   5 * time.Millisecond,
		FailureRate: 0.05,
	},
	"standard": {
		Name:        "standard",
		Managers:    16,
		Clients:     200,
		Duration:    30 * time.Second,
		RefreshRate: 5,
		OpLatency:   10 * time.Millisecond,
		FailureRate: 0.05,
	},
	"stress": {
		Name:        "stress",
		Managers:    64,
		Clients:     500,
		Duration:    60 * time.Second,
		RefreshRate: 10,
		OpLatency:   20 * time.Millisecond,
		FailureRate: 0.10,
		MaxProcs:    4,
	},
}

// profileNames returns the defined profile names in display order.
func profileNames() []string {
	return []string{"fast", "standard", "stress"}
}

// benchConfig is the fully resolved configuration for one run: profile
// values overridden by loadbench.json, overridden by flags.
type benchConfig struct {
	Profile     string
	Managers    int
	Clients     int
	Duration    time.Duration
	RefreshRate float64
	OpLatency   time.Duration
	FailureRate float64
	Seed        int64
	MaxProcs    int
	ListenAddr  string
	Metrics     bool
	JSONOutput  string
}

func runCmd() *cobra.Command {
	var (
		profileFlag     string
		configFlag      string
		managersFlag    int
		clientsFlag     int
		durationFlag    time.Duration
		rateFlag        float64
		opLatencyFlag   time.Duration
		failureRateFlag float64
		seedFlag        int64
		maxProcsFlag    int
		metricsFlag     bool
		jsonFlag        string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a notification latency benchmark",
		Long: `Run an in-process benchmark against a fleet of loadable managers.

The run starts N managers behind a live stream server, connects W
WebSocket subscribers, and refreshes every manager at a paced rate
against a synthetic operation with configurable latency and failure
rate. Refreshes run silently, so failures keep the last good value
visible while still being counted.

Values resolve in order: profile defaults, loadbench.json overrides,
then flags. A human summary goes to stderr and the JSON report to
--json (stdout by default).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveRunConfig(cmd, resolveInputs{
				profile:     profileFlag,
				configPath:  configFlag,
				managers:    managersFlag,
				clients:     clientsFlag,
				duration:    durationFlag,
				rate:        rateFlag,
				opLatency:   opLatencyFlag,
				failureRate: failureRateFlag,
				seed:        seedFlag,
				maxProcs:    maxProcsFlag,
				metrics:     metricsFlag,
				json:        jsonFlag,
			})
			if err != nil {
				return err
			}
			return runBench(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&profileFlag, "profile", "p", "", "benchmark profile: fast|standard|stress")
	cmd.Flags().StringVarP(&configFlag, "config", "c", "", "path to loadbench.json (default: ./loadbench.json if present)")
	cmd.Flags().IntVar(&managersFlag, "managers", -1, "number of managers to drive")
	cmd.Flags().IntVar(&clientsFlag, "clients", -1, "number of WebSocket subscribers")
	cmd.Flags().DurationVar(&durationFlag, "duration", 0, "benchmark duration, e.g. 30s")
	cmd.Flags().Float64Var(&rateFlag, "rate", -1, "refreshes/sec per manager")
	cmd.Flags().DurationVar(&opLatencyFlag, "op-latency", 0, "simulated operation latency, e.g. 10ms")
	cmd.Flags().Float64Var(&failureRateFlag, "failure-rate", -1, "fraction of operations that fail (0 to 1)")
	cmd.Flags().Int64Var(&seedFlag, "seed", 0, "failure generator seed (0 derives from the clock)")
	cmd.Flags().IntVar(&maxProcsFlag, "max-procs", -1, "GOMAXPROCS cap (0 to leave unchanged)")
	cmd.Flags().BoolVar(&metricsFlag, "metrics", false, "expose Prometheus collectors on /metrics during the run")
	cmd.Flags().StringVar(&jsonFlag, "json", "", "JSON report path ('-' for stdout)")

	return cmd
}

// resolveInputs carries the raw flag values into config resolution.
// Numeric sentinels (-1, 0) mean "not set".
type resolveInputs struct {
	profile     string
	configPath  string
	managers    int
	clients     int
	duration    time.Duration
	rate        float64
	opLatency   time.Duration
	failureRate float64
	seed        int64
	maxProcs    int
	metrics     bool
	json        string
}

func resolveRunConfig(cmd *cobra.Command, in resolveInputs) (benchConfig, error) {
	var (
		fileCfg *config.Config
		err     error
	)
	if in.configPath != "" {
		fileCfg, err = config.LoadFile(in.configPath)
	} else {
		fileCfg, err = config.LoadOptional(".")
	}
	if err != nil {
		return benchConfig{}, err
	}
	if err := fileCfg.Validate(); err != nil {
		return benchConfig{}, err
	}

	name := strings.ToLower(strings.TrimSpace(in.profile))
	if name == "" {
		name = fileCfg.Profile
	}

	base, ok := profiles[name]
	if !ok {
		return benchConfig{}, errors.New("E020").
			WithDetailf("No benchmark profile named %q", name).
			WithSuggestion("Valid profiles are " + strings.Join(profileNames(), ", "))
	}

	cfg := benchConfig{
		Profile:     base.Name,
		Managers:    base.Managers,
		Clients:     base.Clients,
		Duration:    base.Duration,
		RefreshRate: base.RefreshRate,
		OpLatency:   base.OpLatency,
		FailureRate: base.FailureRate,
		MaxProcs:    base.MaxProcs,
		ListenAddr:  fileCfg.ListenAddress(),
		Metrics:     fileCfg.HasMetrics(),
		JSONOutput:  strings.TrimSpace(fileCfg.Report.JSON),
	}

	// loadbench.json overrides (zero keeps the profile value).
	w := fileCfg.Workload
	if w.Managers > 0 {
		cfg.Managers = w.Managers
	}
	if w.Clients > 0 {
		cfg.Clients = w.Clients
	}
	if d, _ := w.DurationValue(); d > 0 {
		cfg.Duration = d
	}
	if w.RefreshRate > 0 {
		cfg.RefreshRate = w.RefreshRate
	}
	if l, _ := w.OpLatencyValue(); l > 0 {
		cfg.OpLatency = l
	}
	if w.FailureRate > 0 {
		cfg.FailureRate = w.FailureRate
	}
	if w.Seed != 0 {
		cfg.Seed = w.Seed
	}
	if w.MaxProcs > 0 {
		cfg.MaxProcs = w.MaxProcs
	}

	// Flag overrides.
	if in.managers != -1 {
		cfg.Managers = in.managers
	}
	if in.clients != -1 {
		cfg.Clients = in.clients
	}
	if in.duration != 0 {
		cfg.Duration = in.duration
	}
	if in.rate != -1 {
		cfg.RefreshRate = in.rate
	}
	if in.opLatency != 0 {
		cfg.OpLatency = in.opLatency
	}
	if in.failureRate != -1 {
		cfg.FailureRate = in.failureRate
	}
	if in.seed != 0 {
		cfg.Seed = in.seed
	}
	if in.maxProcs != -1 {
		cfg.MaxProcs = in.maxProcs
	}
	if cmd.Flags().Changed("metrics") {
		cfg.Metrics = in.metrics
	}
	if cmd.Flags().Changed("json") {
		cfg.JSONOutput = strings.TrimSpace(in.json)
	}
	if cfg.JSONOutput == "" {
		cfg.JSONOutput = "-"
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	if cfg.Managers <= 0 {
		return benchConfig{}, errors.New("E041").WithDetail("--managers must be > 0")
	}
	if cfg.Clients <= 0 {
		return benchConfig{}, errors.New("E041").WithDetail("--clients must be > 0")
	}
	if cfg.Duration <= 0 {
		return benchConfig{}, errors.New("E041").WithDetail("--duration must be > 0")
	}
	if cfg.RefreshRate <= 0 {
		return benchConfig{}, errors.New("E041").WithDetail("--rate must be > 0")
	}
	if cfg.OpLatency < 0 {
		return benchConfig{}, errors.New("E041").WithDetail("--op-latency must be >= 0")
	}
	if cfg.FailureRate < 0 || cfg.FailureRate > 1 {
		return benchConfig{}, errors.New("E041").WithDetail("--failure-rate must be between 0 and 1")
	}
	if cfg.MaxProcs < 0 {
		return benchConfig{}, errors.New("E041").WithDetail("--max-procs must be >= 0")
	}

	return cfg, nil
}
