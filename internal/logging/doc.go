// Package logging builds the application's slog loggers.
//
// Two formats are supported: a compact console format for terminal
// output and JSON for log files that get shipped elsewhere. Interactive
// sessions log to a per-session file only, since stdout belongs to the
// terminal UI; CLI subcommands log to stdout plus the shared log file.
package logging
