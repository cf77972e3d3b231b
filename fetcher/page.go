package fetcher

import (
	"encoding/json"
	"errors"
	"fmt"

	"swiggytracker/model"
)

// ErrMalformedPayload is returned by DecodePage when the body is not an
// order page. The fetcher treats it as the end of the listing.
var ErrMalformedPayload = errors.New("malformed order page payload")

// TransportError means a page request failed or came back with a non-2xx status.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("order page request failed: %v", e.Err)
	}
	return fmt.Sprintf("order page request failed with status %d", e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type pageEnvelope struct {
	StatusCode *int `json:"statusCode"`
	Data       *struct {
		Orders json.RawMessage `json:"orders"`
	} `json:"data"`
}

// DecodePage reads `{statusCode, data: {orders: [...]}}`. statusCode 0 is
// success. An element that is not an object becomes an empty RawOrder so
// that it still normalizes to defaults instead of dropping the page.
func DecodePage(body []byte) ([]model.RawOrder, error) {
	var env pageEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if env.StatusCode == nil {
		return nil, fmt.Errorf("%w: statusCode missing", ErrMalformedPayload)
	}
	if *env.StatusCode != 0 {
		return nil, fmt.Errorf("%w: statusCode %d", ErrMalformedPayload, *env.StatusCode)
	}
	if env.Data == nil || len(env.Data.Orders) == 0 {
		return nil, fmt.Errorf("%w: data.orders missing", ErrMalformedPayload)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(env.Data.Orders, &elems); err != nil {
		return nil, fmt.Errorf("%w: data.orders is not a list", ErrMalformedPayload)
	}
	raws := make([]model.RawOrder, len(elems))
	for i, elem := range elems {
		var raw model.RawOrder
		if err := json.Unmarshal(elem, &raw); err == nil {
			raws[i] = raw
		}
	}
	return raws, nil
}
