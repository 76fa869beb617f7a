package codec

import (
	"github.com/golang/snappy"
)

// Compress compresses a payload with Snappy block compression. Snappy
// favors speed over ratio, which matches the library's goal of hiding
// compression behind a per-packet flag rather than behind a slow transform.
func Compress(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

// Decompress reverses Compress. Corrupt or non-Snappy input is reported as
// ErrDecompressionFailed rather than the underlying snappy error, so callers
// never need to import the codec's third-party dependency to match on it.
func Decompress(data []byte) ([]byte, error) {
	out, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, ErrDecompressionFailed
	}
	return out, nil
}
