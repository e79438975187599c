package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (E001-E019)
	// ============================================

	"E001": {
		Category: CategoryConfig,
		Message:  "Invalid loadbench.json",
		Detail:   "The loadbench.json configuration file is malformed and could not be parsed.",
		DocURL:   "https://loadable.dev/docs/errors/E001",
	},
	"E002": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "The configuration file passed with --config does not exist.",
		DocURL:   "https://loadable.dev/docs/errors/E002",
	},
	"E003": {
		Category: CategoryConfig,
		Message:  "Invalid duration value",
		Detail:   "A duration field could not be parsed. Use Go duration syntax such as \"30s\" or \"2m\".",
		DocURL:   "https://loadable.dev/docs/errors/E003",
	},
	"E004": {
		Category: CategoryConfig,
		Message:  "Configuration value out of range",
		Detail:   "A configuration value is outside its allowed range.",
		DocURL:   "https://loadable.dev/docs/errors/E004",
	},
	"E005": {
		Category: CategoryConfig,
		Message:  "Config write failed",
		Detail:   "The configuration file could not be written.",
		DocURL:   "https://loadable.dev/docs/errors/E005",
	},

	// ============================================
	// Benchmark Errors (E020-E039)
	// ============================================

	"E020": {
		Category: CategoryBench,
		Message:  "Unknown benchmark profile",
		Detail:   "The requested profile is not defined. Valid profiles are fast, standard, and stress.",
		DocURL:   "https://loadable.dev/docs/errors/E020",
	},
	"E021": {
		Category: CategoryBench,
		Message:  "Benchmark server failed to start",
		Detail:   "The in-process stream server could not bind its listen address.",
		DocURL:   "https://loadable.dev/docs/errors/E021",
	},
	"E022": {
		Category: CategoryBench,
		Message:  "Client connection failed",
		Detail:   "A benchmark client could not establish its WebSocket connection.",
		DocURL:   "https://loadable.dev/docs/errors/E022",
	},
	"E023": {
		Category: CategoryBench,
		Message:  "Benchmark produced no samples",
		Detail:   "No notification latencies were recorded. The run may be too short for the configured refresh rate.",
		DocURL:   "https://loadable.dev/docs/errors/E023",
	},

	// ============================================
	// CLI Errors (E040-E059)
	// ============================================

	"E040": {
		Category: CategoryCLI,
		Message:  "Report write failed",
		Detail:   "The JSON report could not be written to the requested path.",
		DocURL:   "https://loadable.dev/docs/errors/E040",
	},
	"E041": {
		Category: CategoryCLI,
		Message:  "Invalid flag value",
		Detail:   "A command-line flag has a value outside its allowed range.",
		DocURL:   "https://loadable.dev/docs/errors/E041",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
