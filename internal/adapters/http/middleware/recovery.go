package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/jsamuelsen11/health-aggregator/internal/adapters/http/dto"
	"github.com/jsamuelsen11/health-aggregator/internal/platform/logging"
)

// errPanic is what the client sees; the panic value itself is only logged.
var errPanic = errors.New("internal server error")

// Recovery turns a handler panic into a logged stack trace and an RFC 9457
// 500 response. Nothing is written when the handler had already started the
// response. http.ErrAbortHandler is re-panicked so net/http can abort the
// connection quietly.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sr := record(w)

			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(v)
				}

				logging.FromContextOr(r.Context(), logger).ErrorContext(r.Context(), "panic recovered",
					slog.String("panic", fmt.Sprint(v)),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)

				if !sr.wroteHeader {
					dto.WriteErrorResponse(sr, r, errPanic)
				}
			}()

			next.ServeHTTP(sr, r)
		})
	}
}
