// Package logging provides quill's logging infrastructure built on charmbracelet/log.
//
// All log output goes to stderr; stdout is reserved for the rendered commit
// message and structured output (--json).
//
// Usage:
//
//	// During CLI initialization (PersistentPreRun):
//	logging.Setup(logging.OptionsFromEnv(os.LookupEnv, logging.Options{Verbose: verbose}))
//
//	// In each command:
//	logger := logging.New("commit")
//	logger.Debug("loaded config", "path", ".quill.toml")
//
// Setup must be called before New. charmbracelet/log copies the default
// logger's state into child loggers at creation time.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// Level aliases for charmbracelet/log levels.
// Re-exported so consumers do not need to import charmbracelet/log directly.
const (
	LevelDebug = log.DebugLevel
	LevelInfo  = log.InfoLevel
	LevelWarn  = log.WarnLevel
	LevelError = log.ErrorLevel
	LevelFatal = log.FatalLevel
)

// Environment variables read by OptionsFromEnv.
const (
	EnvVerbose   = "QUILL_VERBOSE"
	EnvQuiet     = "QUILL_QUIET"
	EnvLogFormat = "QUILL_LOG_FORMAT"
)

// Options configures the default logger.
type Options struct {
	// Verbose lowers the level to Debug.
	Verbose bool
	// Quiet raises the level to Error. Quiet wins over Verbose.
	Quiet bool
	// JSON switches to the NDJSON formatter.
	JSON bool
	// Output defaults to os.Stderr.
	Output io.Writer
}

// Level returns the log level the options select.
func (o Options) Level() log.Level {
	switch {
	case o.Quiet:
		return log.ErrorLevel
	case o.Verbose:
		return log.DebugLevel
	default:
		return log.InfoLevel
	}
}

// OptionsFromEnv fills in options from QUILL_VERBOSE, QUILL_QUIET and
// QUILL_LOG_FORMAT. Flags already set in base are kept; the environment can
// only switch things on.
func OptionsFromEnv(lookup func(string) (string, bool), base Options) Options {
	if lookup == nil {
		return base
	}
	if v, ok := lookup(EnvVerbose); ok && truthy(v) {
		base.Verbose = true
	}
	if v, ok := lookup(EnvQuiet); ok && truthy(v) {
		base.Quiet = true
	}
	if v, ok := lookup(EnvLogFormat); ok && strings.EqualFold(strings.TrimSpace(v), "json") {
		base.JSON = true
	}
	return base
}

func truthy(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

// Setup configures the global logging defaults. Call once during CLI
// initialization, before any call to New.
func Setup(opts Options) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	log.SetLevel(opts.Level())
	log.SetOutput(out)
	log.SetReportTimestamp(opts.JSON)

	if opts.JSON {
		log.SetFormatter(log.JSONFormatter)
	} else {
		log.SetFormatter(log.TextFormatter)
	}
}

// New creates a logger with the given component prefix. An empty component
// produces a logger without a prefix.
//
//	logger := logging.New("git")
//	logger.Debug("running", "args", args)
//	// Output: DEBU <git> running args=[commit -F -]
func New(component string) *log.Logger {
	return log.WithPrefix(component)
}

// SetOutput overrides the output writer for the default logger.
// Tests use it to capture output in a buffer.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}
