// Package logging provides tubevault's leveled printf-style logging facade.
package logging

import (
	"fmt"
	"os"
	"time"

	"tubevault/internal/domain/consts"

	"github.com/rs/zerolog"
)

// Level is the debug verbosity (0-5). Messages from D(l, ...) print when l <= Level.
var Level int

var (
	logger  zerolog.Logger
	logFile *os.File
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger = zerolog.New(consoleWriter()).With().Timestamp().Logger()
}

func consoleWriter() zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
}

// SetupLogging opens (or creates) the log file and begins mirroring output to it.
func SetupLogging(logFilePath string) error {
	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, consts.PermsLogFile)
	if err != nil {
		return fmt.Errorf("failed to open log file %q: %w", logFilePath, err)
	}
	logFile = f
	logger = zerolog.New(zerolog.MultiLevelWriter(consoleWriter(), f)).With().Timestamp().Logger()
	logger.Info().Msgf("=========== %s ===========", time.Now().Format(time.RFC1123Z))
	return nil
}

// CloseLogging closes the log file if one was opened.
func CloseLogging() {
	if logFile != nil {
		if err := logFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
		}
		logFile = nil
	}
}

// I logs informational messages.
func I(format string, args ...any) {
	logger.Info().Msgf(consts.BlueInfo+format, args...)
}

// S logs success messages.
func S(format string, args ...any) {
	logger.Info().Msgf(consts.GreenSuccess+format, args...)
}

// W logs warnings.
func W(format string, args ...any) {
	logger.Warn().Msgf(consts.YellowWarn+format, args...)
}

// E logs errors.
func E(format string, args ...any) {
	logger.Error().Msgf(consts.RedError+format, args...)
}

// D logs debug messages at verbosity level l (prints when l <= Level).
func D(l int, format string, args ...any) {
	if l > Level {
		return
	}
	logger.Debug().Msgf(consts.YellowDebug+format, args...)
}
