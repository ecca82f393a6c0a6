// pkg/codec/jsoncodec.go
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	ContentType() string
}

// JSON decodes leniently: unknown fields are tolerated, trailing content is
// not. Workflow engines routinely send sibling fields we do not model, so
// this is the codec the dispatcher reads envelopes with.
var JSON Codec = jsonCodec{strict: false}

// JSONStrict additionally rejects unknown fields; use it where the payload
// shape is fully owned by this process.
var JSONStrict Codec = jsonCodec{strict: true}

type jsonCodec struct{ strict bool }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (c jsonCodec) Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if c.strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("json decode: %w", err)
	}
	// Probe for trailing data (must be EOF)
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		return fmt.Errorf("json trailing content")
	}
	return nil
}

func (jsonCodec) ContentType() string { return "application/json" }
