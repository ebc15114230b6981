package procmanager

import (
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// decodeLine decodes raw bytes read from a child process pipe using the
// named codec, replacing undecodable bytes rather than dropping the line.
// An empty or unrecognized label falls back to UTF-8, since Go's os/exec
// never round-trips through a host code page the way the original
// implementation's Windows "gbk" default did — the only place that distinction
// still matters is the default label chosen by internal/config.
func decodeLine(raw []byte, label string) string {
	if label == "" {
		return string(raw)
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return string(raw)
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		// Partial decode is still better than dropping the line; fall back
		// to the raw bytes interpreted as UTF-8 with replacement runes.
		return string(raw)
	}
	return string(out)
}
