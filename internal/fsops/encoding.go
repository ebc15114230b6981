package fsops

import (
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// decodeBytes decodes a whole file's bytes using the named codec, falling
// back to the raw bytes (treated as UTF-8) for an empty or unrecognized
// label, mirroring internal/procmanager's decodeLine policy for the same
// reason: a single bad byte should never fail the whole read.
func decodeBytes(raw []byte, label string) string {
	if label == "" {
		return string(raw)
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return string(raw)
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

// encodeString encodes content using the named codec before writing it to
// disk, falling back to raw UTF-8 bytes for an empty or unrecognized label.
func encodeString(content, label string) []byte {
	if label == "" {
		return []byte(content)
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return []byte(content)
	}
	out, _, err := transform.Bytes(enc.NewEncoder(), []byte(content))
	if err != nil {
		return []byte(content)
	}
	return out
}
