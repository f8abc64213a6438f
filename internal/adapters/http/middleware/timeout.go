package middleware

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/jsamuelsen11/health-aggregator/internal/adapters/http/dto"
	"github.com/jsamuelsen11/health-aggregator/internal/domain"
)

// Timeout bounds each request. The handler runs on its own goroutine with a
// context carrying the deadline, writing into a buffer; the buffer is copied
// out only if the handler finishes in time. Otherwise an RFC 9457 504 is sent
// and later handler writes fail with http.ErrHandlerTimeout.
//
// A handler panic is re-raised on the request goroutine so that Recovery,
// installed further out, still sees it.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			bw := &bufferedWriter{header: make(http.Header)}
			done := make(chan struct{})
			panicked := make(chan handlerPanic, 1)

			go func() {
				defer func() {
					if v := recover(); v != nil {
						panicked <- handlerPanic{value: v, stack: debug.Stack()}
					}
				}()
				next.ServeHTTP(bw, r.WithContext(ctx))
				close(done)
			}()

			select {
			case p := <-panicked:
				if p.value == http.ErrAbortHandler {
					panic(p.value)
				}
				panic(p)
			case <-done:
				bw.mu.Lock()
				defer bw.mu.Unlock()
				bw.copyTo(w)
			case <-ctx.Done():
				bw.mu.Lock()
				defer bw.mu.Unlock()
				bw.timedOut = true
				dto.WriteErrorResponse(w, r, domain.ErrTimeout)
			}
		})
	}
}

// handlerPanic carries a panic from the handler goroutine together with the
// stack at the original panic site.
type handlerPanic struct {
	value any
	stack []byte
}

func (p handlerPanic) String() string {
	return fmt.Sprintf("%v\n\n%s", p.value, p.stack)
}

// bufferedWriter collects a response until the Timeout middleware decides
// whether to send it.
type bufferedWriter struct {
	mu       sync.Mutex
	header   http.Header
	body     bytes.Buffer
	status   int
	timedOut bool
}

func (bw *bufferedWriter) Header() http.Header {
	return bw.header
}

func (bw *bufferedWriter) WriteHeader(code int) {
	bw.mu.Lock()
	defer bw.mu.Unlock()

	if bw.timedOut || bw.status != 0 {
		return
	}
	bw.status = code
}

func (bw *bufferedWriter) Write(b []byte) (int, error) {
	bw.mu.Lock()
	defer bw.mu.Unlock()

	if bw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	if bw.status == 0 {
		bw.status = http.StatusOK
	}
	return bw.body.Write(b)
}

// copyTo must be called with bw.mu held.
func (bw *bufferedWriter) copyTo(w http.ResponseWriter) {
	maps.Copy(w.Header(), bw.header)
	if bw.status != 0 {
		w.WriteHeader(bw.status)
	}
	if bw.body.Len() > 0 {
		_, _ = w.Write(bw.body.Bytes())
	}
}
