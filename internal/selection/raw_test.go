package selection

import (
	"errors"
	"testing"
)

func TestNewRawImage_Invariant(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		n       int
		wantErr bool
	}{
		{"exact", 3, 5, 60, false},
		{"zero width", 0, 4, 0, false},
		{"zero height", 4, 0, 0, false},
		{"short buffer", 2, 2, 15, true},
		{"long buffer", 2, 2, 17, true},
		{"negative width", -1, 2, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRawImage(tt.w, tt.h, make([]byte, tt.n))
			if tt.wantErr {
				if !errors.Is(err, ErrFatal) {
					t.Fatalf("got %v, want ErrFatal", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestMustRawImage_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for malformed buffer")
		}
	}()
	MustRawImage(2, 2, make([]byte, 3))
}

func TestRawImage_Geometry(t *testing.T) {
	r := MustRawImage(3, 5, make([]byte, 60))
	if r.RowBytes() != 12 {
		t.Errorf("row bytes: got %d, want 12", r.RowBytes())
	}
	if r.TotalByteCount() != 60 {
		t.Errorf("total bytes: got %d, want 60", r.TotalByteCount())
	}
	if b := r.Bounds(); b.Dx() != 3 || b.Dy() != 5 || b.Min.X != 0 || b.Min.Y != 0 {
		t.Errorf("bounds: got %v", b)
	}
}

func TestRawImage_IsSameSize(t *testing.T) {
	a := MustRawImage(2, 1, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	b := MustRawImage(2, 1, make([]byte, 8))
	c := MustRawImage(1, 2, make([]byte, 8))

	if !a.IsSameSize(b) {
		t.Error("2x1 and 2x1 reported as different sizes")
	}
	if a.IsSameSize(c) {
		t.Error("2x1 and 1x2 reported as same size")
	}
	if a.Equal(b) {
		t.Error("images with different content reported equal")
	}
}

func TestRawImage_PixelAt(t *testing.T) {
	pix := make([]byte, 2*2*4)
	for i := range pix {
		pix[i] = byte(i)
	}
	r := MustRawImage(2, 2, pix)

	want := Pixel{12, 13, 14, 15}
	if got := r.PixelAt(1, 1); got != want {
		t.Errorf("PixelAt(1,1): got %v, want %v", got, want)
	}
	want = Pixel{4, 5, 6, 7}
	if got := r.PixelAt(1, 0); got != want {
		t.Errorf("PixelAt(1,0): got %v, want %v", got, want)
	}
}

func TestRawImage_BytesIsCopy(t *testing.T) {
	r := MustRawImage(1, 1, []byte{9, 9, 9, 9})
	b := r.Bytes()
	b[0] = 0
	if r.PixelAt(0, 0)[0] != 9 {
		t.Fatal("mutating Bytes() changed the image")
	}
}
