package logging

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/armadaproject/fairshare/internal/common/fscontext"
)

const Stacktrace = "stacktrace"

// Config defines console logging.
type Config struct {
	// Log level, e.g. info, debug
	Level string `validate:"omitempty,oneof=debug info warn warning error"`
	// Either text or json
	Format string `validate:"omitempty,oneof=text json"`
}

// Configure sets up the standard logrus logger to write to out at the configured level and in the configured format.
func Configure(config Config, out io.Writer) error {
	level := log.InfoLevel
	if config.Level != "" {
		var err error
		level, err = log.ParseLevel(strings.ToLower(config.Level))
		if err != nil {
			return errors.WithStack(err)
		}
	}
	switch strings.ToLower(config.Format) {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return errors.Errorf("unknown log format: %s", config.Format)
	}
	log.SetLevel(level)
	log.SetOutput(out)
	return nil
}

// Unexported but considered part of the stable interface of pkg/errors.
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Unexported but considered part of the stable interface of pkg/errors.
type causer interface {
	Cause() error
}

// WithStacktrace returns the logger of ctx with error information and, if available, a stack trace added as fields.
func WithStacktrace(ctx *fscontext.Context, err error) *log.Entry {
	logger := ctx.Log.WithError(err)
	if stack := ExtractStack(err); stack != nil {
		logger = logger.WithField(Stacktrace, stack)
	}
	return logger
}

// ExtractStack walks down the chain of errors and returns the first errors.StackTrace it encounters, or nil.
func ExtractStack(err error) errors.StackTrace {
	if stackErr, ok := err.(stackTracer); ok {
		return stackErr.StackTrace()
	} else if causeErr, ok := err.(causer); ok {
		return ExtractStack(causeErr.Cause())
	}
	return nil
}
