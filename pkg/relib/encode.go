package relib

import (
	"bytes"
	"encoding/json"
)

// canonicalMarshal renders v as checksum-stable JSON: 4-space indent, sorted
// object keys (encoding/json already sorts map[string]any keys), UTF-8, LF
// line endings, no BOM, with a single trailing newline. Every byte this
// package writes to a backend must go through this function.
func canonicalMarshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// json.Encoder.Encode already appends a trailing "\n"; MarshalIndent
	// would not, so Encoder is used deliberately here.
	return buf.Bytes(), nil
}

func canonicalUnmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
