package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

func TestMarshal_NoHTMLEscapeNoTrailingNewline(t *testing.T) {
	out, err := JSON.Marshal(sample{Name: "a", URL: "https://x?a=1&b=2"})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"a","url":"https://x?a=1&b=2"}`, string(out))
}

func TestUnmarshal_LenientToleratesUnknownFields(t *testing.T) {
	var s sample
	require.NoError(t, JSON.Unmarshal([]byte(`{"name":"a","extra":true}`), &s))
	assert.Equal(t, "a", s.Name)
}

func TestUnmarshal_StrictRejectsUnknownFields(t *testing.T) {
	var s sample
	require.Error(t, JSONStrict.Unmarshal([]byte(`{"name":"a","extra":true}`), &s))
}

func TestUnmarshal_RejectsTrailingContent(t *testing.T) {
	var s sample
	require.Error(t, JSON.Unmarshal([]byte(`{"name":"a"} {"name":"b"}`), &s))
	require.Error(t, JSONStrict.Unmarshal([]byte(`{"name":"a"} garbage`), &s))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", JSON.ContentType())
}
