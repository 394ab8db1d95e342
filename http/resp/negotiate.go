package resp

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/xy-planning-network/viewpoint/format"
)

// An Offer is one way of responding to a request,
// chosen by RespondTo when the request accepts its format.
type Offer struct {
	Type format.Type
	Fns  []Fn
}

// On offers to respond in the format t by rendering what fns describe.
func On(t format.Type, fns ...Fn) Offer { return Offer{Type: t, Fns: fns} }

// RespondTo renders the first offer, in the request's order of preference, it accepts.
// Templates are looked up in that offer's format.
//
// When the request accepts none of the offers, RespondTo responds with http.StatusNotAcceptable and no body.
func (doer *Responder) RespondTo(w http.ResponseWriter, r *http.Request, offers ...Offer) error {
	if len(offers) == 0 {
		return fmt.Errorf("%w: no offers to respond with", ErrMissingData)
	}

	types := make([]format.Type, len(offers))
	for i, o := range offers {
		types[i] = o.Type
	}

	w.Header().Add("Vary", "Accept")

	t, err := format.Negotiate(r, types...)
	if errors.Is(err, format.ErrNotAcceptable) {
		doer.logger.Debug(err.Error(), newLogContext(r, err, nil, nil))
		return doer.Head(w, r, http.StatusNotAcceptable)
	}

	if err != nil {
		return err
	}

	for _, o := range offers {
		if o.Type.Symbol != t.Symbol {
			continue
		}

		fns := o.Fns
		if t.Symbol != format.All.Symbol {
			fns = append([]Fn{Formats(t.Symbol)}, o.Fns...)
		}

		return doer.Render(w, r, fns...)
	}

	return fmt.Errorf("%w: %s", format.ErrNotAcceptable, t)
}
