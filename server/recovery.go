package server

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/ashishkumar256/sunspot/observe"
)

// PanicReporter forwards a recovered panic to an error tracker.
type PanicReporter interface {
	Report(r *http.Request, recovered any)
}

// Recovery turns a panicking handler into a 500 JSON answer. The panic is
// logged with its stack and handed to reporter when one is set.
//
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func Recovery(logger observe.Logger, reporter PanicReporter) func(http.Handler) http.Handler {
	if logger == nil {
		logger = observe.NopLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}
				logger.Error(r.Context(), "handler panicked",
					observe.Field{Key: "panic", Value: fmt.Sprint(v)},
					observe.Field{Key: "http.path", Value: r.URL.Path},
					observe.Field{Key: "stack", Value: string(debug.Stack())},
				)
				if reporter != nil {
					reporter.Report(r, v)
				}
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
