package error

import (
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
)

var (
	mux         sync.RWMutex
	logger      = zerolog.Nop()
	printErrors bool
)

// Init wires the process logger; until called errors only go to sentry.
func Init(l zerolog.Logger, print bool) {
	mux.Lock()
	defer mux.Unlock()
	logger = l
	printErrors = print
}

func SaveError(message string, err error) {
	mux.RLock()
	l, print := logger, printErrors
	mux.RUnlock()

	if print {
		l.Error().Err(err).Msg(message)
	}

	if err == nil {
		sentry.CaptureMessage(message)
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetExtra("message", message)
		sentry.CaptureException(err)
	})
}
