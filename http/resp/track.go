package resp

import (
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/felixge/httpsnoop"
	"github.com/xy-planning-network/viewpoint"
)

// A Tracker records whether a response has been started for a request.
//
// Track installs one for each request;
// Responder methods consult it to refuse a second response.
type Tracker struct {
	mu        sync.Mutex
	performed bool
	by        string
}

// Track wraps w so writing to it marks the request as responded to,
// and stores a new *Tracker in the *http.Request's context.
//
// The http.ResponseWriter returned keeps every optional interface w implements.
func Track(w http.ResponseWriter, r *http.Request) (http.ResponseWriter, *http.Request) {
	if _, ok := TrackerFrom(r.Context()); ok {
		return w, r
	}

	t := new(Tracker)
	hooks := httpsnoop.Hooks{
		WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
			return func(code int) {
				t.mark("WriteHeader")
				next(code)
			}
		},
		Write: func(next httpsnoop.WriteFunc) httpsnoop.WriteFunc {
			return func(b []byte) (int, error) {
				t.mark("Write")
				return next(b)
			}
		},
		ReadFrom: func(next httpsnoop.ReadFromFunc) httpsnoop.ReadFromFunc {
			return func(src io.Reader) (int64, error) {
				t.mark("ReadFrom")
				return next(src)
			}
		},
	}

	return httpsnoop.Wrap(w, hooks), r.WithContext(context.WithValue(r.Context(), viewpoint.TrackerKey, t))
}

// TrackerFrom retrieves the *Tracker Track stored in ctx.
func TrackerFrom(ctx context.Context) (*Tracker, bool) {
	t, ok := ctx.Value(viewpoint.TrackerKey).(*Tracker)
	return t, ok && t != nil
}

// Performed reports whether a response was started.
func (t *Tracker) Performed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.performed
}

// By names what started the response, if anything did.
func (t *Tracker) By() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.by
}

// claim marks the request as responded to by what,
// returning ErrDoubleRender if it already was.
func (t *Tracker) claim(what string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.performed {
		return ErrDoubleRender
	}

	t.performed = true
	t.by = what
	return nil
}

func (t *Tracker) mark(what string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.performed {
		return
	}

	t.performed = true
	t.by = what
}
