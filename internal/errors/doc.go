// Package errors provides structured, actionable error messages for the
// loadbench CLI.
//
// Each error carries a short code, a category, and optional detail and
// fix suggestions. Registered codes come with their message, detail,
// and documentation link pre-filled.
//
// # Error Categories
//
// Errors are organized into categories:
//   - config: loadbench.json problems (malformed file, bad values)
//   - bench: benchmark execution errors (unknown profile, server failure)
//   - cli: command-line errors (bad flags, report output failures)
//
// # Error Codes
//
// Each error has a unique code (e.g., "E001") that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A documentation URL
//
// # Usage
//
//	err := errors.New("E020").
//	    WithDetail(`No benchmark profile named "turbo"`).
//	    WithSuggestion("Valid profiles are fast, standard, and stress")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E020: Unknown benchmark profile
//	//
//	//   No benchmark profile named "turbo"
//	//
//	//   Hint: Valid profiles are fast, standard, and stress
//	//
//	//   Learn more: https://loadable.dev/docs/errors/E020
//
// Library packages return plain errors; this package is the CLI's
// presentation layer only.
package errors
