package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/loadable-dev/loadable/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "loadbench.json"

	// DefaultProfile is the profile used when none is configured.
	DefaultProfile = "standard"

	// DefaultHost is the default listen host for the in-process server.
	DefaultHost = "127.0.0.1"
)

// Config represents the complete loadbench.json configuration.
type Config struct {
	// Profile is the base benchmark profile (fast, standard, stress).
	Profile string `json:"profile,omitempty"`

	// Listen contains settings for the in-process stream server.
	Listen ListenConfig `json:"listen,omitempty"`

	// Workload contains overrides for the selected profile. Zero-valued
	// fields keep the profile's value.
	Workload WorkloadConfig `json:"workload,omitempty"`

	// Report contains report output settings.
	Report ReportConfig `json:"report,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ListenConfig contains settings for the in-process stream server.
type ListenConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to bind to. Zero picks an ephemeral port.
	Port int `json:"port,omitempty"`

	// Metrics exposes Prometheus collectors on /metrics for the run.
	Metrics bool `json:"metrics,omitempty"`
}

// WorkloadConfig contains profile overrides for a benchmark run.
type WorkloadConfig struct {
	// Managers is the number of async sources to drive.
	Managers int `json:"managers,omitempty"`

	// Clients is the number of WebSocket subscribers to connect.
	Clients int `json:"clients,omitempty"`

	// Duration is how long the run lasts (e.g., "30s").
	Duration string `json:"duration,omitempty"`

	// RefreshRate is the paced refresh rate per manager, in refreshes
	// per second.
	RefreshRate float64 `json:"refreshRate,omitempty"`

	// OpLatency is the simulated latency of each operation (e.g., "10ms").
	OpLatency string `json:"opLatency,omitempty"`

	// FailureRate is the fraction of operations that fail, from 0 to 1.
	FailureRate float64 `json:"failureRate,omitempty"`

	// Seed seeds the failure generator for reproducible runs. Zero
	// derives a seed from the clock.
	Seed int64 `json:"seed,omitempty"`

	// MaxProcs caps GOMAXPROCS for the run. Zero keeps the runtime
	// default.
	MaxProcs int `json:"maxProcs,omitempty"`
}

// ReportConfig contains report output settings.
type ReportConfig struct {
	// JSON is the path the JSON report is written to. "-" writes to
	// stdout; empty disables the JSON report.
	JSON string `json:"json,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Profile: DefaultProfile,
		Listen: ListenConfig{
			Host: DefaultHost,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for loadbench.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadOptional reads configuration from the specified directory if a
// config file exists there, and returns defaults otherwise.
func LoadOptional(dir string) (*Config, error) {
	if !Exists(dir) {
		return New(), nil
	}
	return Load(dir)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E002").
				WithDetail("No config file found at " + path).
				WithSuggestion("Pass --config with an existing file, or omit it to use profile defaults")
		}
		return nil, errors.New("E001").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E001").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that the file is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E005").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E005").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Profile == "" {
		c.Profile = DefaultProfile
	}
	if c.Listen.Host == "" {
		c.Listen.Host = DefaultHost
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Listen.Port < 0 || c.Listen.Port > 65535 {
		return errors.New("E004").
			WithDetail("Listen port must be between 0 and 65535")
	}
	if c.Workload.Managers < 0 {
		return errors.New("E004").
			WithDetail("workload.managers cannot be negative")
	}
	if c.Workload.Clients < 0 {
		return errors.New("E004").
			WithDetail("workload.clients cannot be negative")
	}
	if c.Workload.RefreshRate < 0 {
		return errors.New("E004").
			WithDetail("workload.refreshRate cannot be negative")
	}
	if c.Workload.FailureRate < 0 || c.Workload.FailureRate > 1 {
		return errors.New("E004").
			WithDetailf("workload.failureRate must be between 0 and 1, got %v", c.Workload.FailureRate)
	}
	if c.Workload.MaxProcs < 0 {
		return errors.New("E004").
			WithDetail("workload.maxProcs cannot be negative")
	}
	if _, err := c.Workload.DurationValue(); err != nil {
		return err
	}
	if _, err := c.Workload.OpLatencyValue(); err != nil {
		return err
	}
	return nil
}

// DurationValue parses the run duration. Zero means the profile's
// duration applies.
func (w WorkloadConfig) DurationValue() (time.Duration, error) {
	return parseDuration(w.Duration, "workload.duration")
}

// OpLatencyValue parses the simulated operation latency. Zero means
// the profile's latency applies.
func (w WorkloadConfig) OpLatencyValue() (time.Duration, error) {
	return parseDuration(w.OpLatency, "workload.opLatency")
}

func parseDuration(s, field string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.New("E003").
			WithDetailf("Field %s has value %q", field, s).
			Wrap(err)
	}
	if d < 0 {
		return 0, errors.New("E004").
			WithDetailf("Field %s cannot be negative", field)
	}
	return d, nil
}

// ListenAddress returns the address string for the in-process server.
func (c *Config) ListenAddress() string {
	return c.Listen.Host + ":" + itoa(c.Listen.Port)
}

// HasMetrics returns true if the /metrics endpoint is enabled.
func (c *Config) HasMetrics() bool {
	return c.Listen.Metrics
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// itoa converts int to string without importing strconv.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + itoa(-n)
	}
	digits := make([]byte, 0, 10)
	for n > 0 {
		digits = append(digits, byte('0'+n%10))
		n /= 10
	}
	// Reverse
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}
