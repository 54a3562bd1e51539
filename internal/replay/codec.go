package replay

import (
	"fmt"

	lzstring "github.com/daku10/go-lz-string"
)

// Decompressor turns a raw replay blob into its JSON payload.
type Decompressor interface {
	Decompress(blob []byte) ([]byte, error)
}

// LZStringCodec handles blobs produced by lz-string's Uint8Array encoding,
// which is how replay files are stored.
type LZStringCodec struct{}

func (LZStringCodec) Decompress(blob []byte) ([]byte, error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("decompress: empty blob: %w", ErrMalformed)
	}
	s, err := lzstring.DecompressFromUint8Array(blob)
	if err != nil {
		return nil, fmt.Errorf("decompress: %v: %w", err, ErrMalformed)
	}
	if s == "" {
		return nil, fmt.Errorf("decompress: no payload: %w", ErrMalformed)
	}
	return []byte(s), nil
}

// Compress encodes a JSON payload the way replay files are stored.
func (LZStringCodec) Compress(payload []byte) ([]byte, error) {
	return lzstring.CompressToUint8Array(string(payload))
}
