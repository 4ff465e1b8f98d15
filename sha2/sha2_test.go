package sha2

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
)

func TestSum256Vectors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty",
			input: "",
			want:  "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:  "abc",
			input: "abc",
			want:  "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		},
		{
			name:  "two blocks",
			input: "abcdbcdecdefdefgefghfghighijhijkijkljklmklmnlmnomnopnopq",
			want:  "248d6a61d20638b8e5c026930c3e6039a33ce45964ff2167f6ecedd419db06c1",
		},
		{
			name:  "million a",
			input: strings.Repeat("a", 1000000),
			want:  "cdc76e5c9914fb9281a1c7e284d73e67f1809a48a497200e046d39ccc7112cd0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sum256([]byte(tt.input))
			if hex.EncodeToString(got[:]) != tt.want {
				t.Errorf("Sum256 = %x, want %s", got, tt.want)
			}
		})
	}
}

// Sweep every length across the padding boundaries (one block, the
// 55/56 spill point, two blocks) and compare against the standard
// library implementation.
func TestSum256PaddingBoundaries(t *testing.T) {
	buf := make([]byte, 200)
	for i := range buf {
		buf[i] = byte(i*7 + 3)
	}

	for n := 0; n <= len(buf); n++ {
		got := Sum256(buf[:n])
		want := sha256.Sum256(buf[:n])
		if !bytes.Equal(got[:], want[:]) {
			t.Fatalf("length %d: Sum256 = %x, want %x", n, got, want)
		}
	}
}

func TestSum256LargeInput(t *testing.T) {
	buf := make([]byte, 512*1024)
	for i := range buf {
		buf[i] = byte(i ^ i>>8)
	}

	got := Sum256(buf)
	want := sha256.Sum256(buf)
	if !bytes.Equal(got[:], want[:]) {
		t.Fatalf("Sum256 = %x, want %x", got, want)
	}

	if len(got) != Size {
		t.Fatalf("digest length = %d, want %d", len(got), Size)
	}
}

func BenchmarkSum256(b *testing.B) {
	buf := make([]byte, 512*1024)
	b.SetBytes(int64(len(buf)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Sum256(buf)
	}
}
