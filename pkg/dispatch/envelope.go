// pkg/dispatch/envelope.go
package dispatch

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedPayload reports an envelope missing 'id' or 'params'.
var ErrMalformedPayload = errors.New("dispatch: malformed payload")

// MalformedPayloadMessage is the wire-level error text for a rejected envelope.
const MalformedPayloadMessage = "Payload must contain 'id' and 'params'"

// Envelope is the wire shape accepted on every dispatch path:
//
//	{"id": <integer>, "params": {"operation": "<string>", "input": <any>}}
//
// Pointer fields distinguish absent keys from zero values.
type Envelope struct {
	ID     *int64  `json:"id"`
	Params *Params `json:"params"`
}

type Params struct {
	Operation string          `json:"operation"`
	Input     json.RawMessage `json:"input"`
}

// Validate enforces the envelope invariant: 'id' and 'params' must both be
// present. Operation and input are checked later, during resolution.
func (e *Envelope) Validate() error {
	if e.ID == nil || e.Params == nil {
		return fmt.Errorf("%s: %w", MalformedPayloadMessage, ErrMalformedPayload)
	}
	return nil
}
