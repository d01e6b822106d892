package hasher

import (
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/AnyUserName/imgsel-cli/internal/selection"
	"github.com/cespare/xxhash/v2"
)

// ContentHash computes the xxHash64 of data as a hex string truncated to
// hexLen characters (0 keeps all 16).
func ContentHash(data []byte, hexLen int) string {
	return truncHex(xxhash.Sum64(data), hexLen)
}

// ContentHashReader computes xxHash64 from a reader, streaming.
func ContentHashReader(r io.Reader, hexLen int) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return truncHex(h.Sum64(), hexLen), nil
}

// RawDigest hashes the dimensions and pixel buffer of a raw image. Two raw
// images have the same digest when they are Equal; the encoded file format
// does not matter.
func RawDigest(raw selection.RawImage) string {
	var dims [16]byte
	binary.BigEndian.PutUint64(dims[:8], uint64(raw.Width()))
	binary.BigEndian.PutUint64(dims[8:], uint64(raw.Height()))

	h := xxhash.New()
	h.Write(dims[:])
	h.Write(raw.Bytes())
	return truncHex(h.Sum64(), 0)
}

func truncHex(v uint64, hexLen int) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	full := hex.EncodeToString(b[:])
	if hexLen > 0 && hexLen < len(full) {
		return full[:hexLen]
	}
	return full
}
