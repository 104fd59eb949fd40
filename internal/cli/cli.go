package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/vk/facegraph/internal/app"
	"github.com/vk/facegraph/internal/compiled"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// userValues collects repeated -set flags of the form name=value[:op].
type userValues []app.UserValue

func (v *userValues) String() string { return fmt.Sprint(len(*v)) }

func (v *userValues) Set(s string) error {
	name, rest, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected name=value[:op], got '%s'", s)
	}
	valueStr, opStr, hasOp := strings.Cut(rest, ":")
	value, err := strconv.ParseFloat(valueStr, 32)
	if err != nil {
		return fmt.Errorf("invalid value in '%s': %w", s, err)
	}
	op := compiled.OpReplace
	if hasOp {
		if op, err = compiled.ParseValueOp(opStr); err != nil {
			return err
		}
	}
	*v = append(*v, app.UserValue{Node: name, Value: float32(value), Op: op})
	return nil
}

// blends collects repeated -blend flags of the form name=value:seconds.
type blends []app.Blend

func (b *blends) String() string { return fmt.Sprint(len(*b)) }

func (b *blends) Set(s string) error {
	name, rest, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected name=value:seconds, got '%s'", s)
	}
	valueStr, secondsStr, ok := strings.Cut(rest, ":")
	if !ok {
		return fmt.Errorf("expected name=value:seconds, got '%s'", s)
	}
	value, err := strconv.ParseFloat(valueStr, 32)
	if err != nil {
		return fmt.Errorf("invalid value in '%s': %w", s, err)
	}
	seconds, err := strconv.ParseFloat(secondsStr, 32)
	if err != nil {
		return fmt.Errorf("invalid duration in '%s': %w", s, err)
	}
	*b = append(*b, app.Blend{Node: name, Value: float32(value), Seconds: float32(seconds)})
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("facegraph", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
facegraph - Compile and evaluate facial animation graphs.

Usage:
  facegraph [options] GRAPH_PATH

Arguments:
  GRAPH_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	var sets userValues
	var blendFlags blends
	framesFlag := flagSet.Int("frames", 1, "Number of frames to evaluate.")
	fpsFlag := flagSet.Float64("fps", 30, "Frames per second used to derive frame times.")
	outFlag := flagSet.String("out", "", "Write the compiled graph to this file and evaluate the reloaded copy.")
	flagSet.Var(&sets, "set", "User value as name=value[:op], op is add, multiply or replace. Repeatable.")
	flagSet.Var(&blendFlags, "blend", "Register blend as name=value:seconds. Repeatable.")
	liveURLFlag := flagSet.String("live-url", "", "Socket.IO server URL to publish frames to.")
	liveNamespaceFlag := flagSet.String("live-namespace", "/", "Socket.IO namespace for published frames.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	if path == "" {
		slog.Debug("No graph path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		GraphPath:       path,
		BlobPath:        *outFlag,
		Frames:          *framesFlag,
		FPS:             *fpsFlag,
		UserValues:      sets,
		Blends:          blendFlags,
		LiveURL:         *liveURLFlag,
		LiveNamespace:   *liveNamespaceFlag,
		HealthcheckPort: *healthPortFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
