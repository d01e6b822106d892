package hasher

import (
	"bytes"
	"testing"

	"github.com/AnyUserName/imgsel-cli/internal/selection"
)

func TestContentHash(t *testing.T) {
	data := []byte("imgsel")
	full := ContentHash(data, 0)
	if len(full) != 16 {
		t.Fatalf("full hash length: got %d", len(full))
	}
	if short := ContentHash(data, 8); short != full[:8] {
		t.Errorf("truncated: got %q, want %q", short, full[:8])
	}
	if ContentHash([]byte("other"), 0) == full {
		t.Error("different data hashed equal")
	}
}

func TestContentHashReader_MatchesContentHash(t *testing.T) {
	data := bytes.Repeat([]byte{1, 2, 3, 4}, 4096)
	got, err := ContentHashReader(bytes.NewReader(data), 16)
	if err != nil {
		t.Fatalf("hash reader: %v", err)
	}
	if want := ContentHash(data, 16); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRawDigest(t *testing.T) {
	pix := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	a := selection.MustRawImage(2, 1, pix)
	b := selection.MustRawImage(2, 1, append([]byte(nil), pix...))
	c := selection.MustRawImage(1, 2, append([]byte(nil), pix...))

	if RawDigest(a) != RawDigest(b) {
		t.Error("equal images have different digests")
	}
	if RawDigest(a) == RawDigest(c) {
		t.Error("same bytes with different dimensions share a digest")
	}
}
