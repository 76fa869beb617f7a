package wire

import (
	"sort"
	"strings"

	"github.com/haldor/sockrelay/pkg/packet"
)

// encodeHeaders serialises h into the wire header-block syntax: entries
// separated by LF, key and value separated by '='. Keys are sorted so two
// Encode calls over an identical header set always produce identical bytes
// — Go's map iteration order is randomized per range, and headers is a map.
// h must already have passed packet.Headers.Validate (no '=' or LF in any
// key or value); this function does not re-check.
func encodeHeaders(h packet.Headers) []byte {
	if len(h) == 0 {
		return nil
	}
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(h[k])
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// decodeHeaders parses the wire header-block syntax back into a
// packet.Headers. A line without '=' is a malformed header set.
func decodeHeaders(data []byte) (packet.Headers, error) {
	h := make(packet.Headers)
	if len(data) == 0 {
		return h, nil
	}

	lines := strings.Split(string(data), "\n")
	for _, line := range lines {
		if line == "" {
			continue
		}
		idx := strings.IndexByte(line, '=')
		if idx < 0 {
			return nil, ErrFramingError
		}
		h.Set(line[:idx], line[idx+1:])
	}
	return h, nil
}
