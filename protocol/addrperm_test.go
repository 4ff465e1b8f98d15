package protocol

import "testing"

func TestPermuteBijection(t *testing.T) {
	seen := make(map[uint32]uint32, 512)

	for addr := uint32(0); addr < 0x200; addr++ {
		out := Permute(addr)
		if out >= 0x200 {
			t.Fatalf("Permute(0x%03X) = 0x%X, escapes the low 9 bits", addr, out)
		}
		if prev, dup := seen[out]; dup {
			t.Fatalf("Permute(0x%03X) = Permute(0x%03X) = 0x%03X", addr, prev, out)
		}
		seen[out] = addr
	}

	if len(seen) != 512 {
		t.Fatalf("got %d distinct outputs, want 512", len(seen))
	}
}

func TestPermuteKnownValues(t *testing.T) {
	tests := []struct {
		addr uint32
		want uint32
	}{
		{0x000, 0x000},
		{0x001, 0x080},
		{0x002, 0x002}, // bit 1 passes through
		{UnlockAddr1, 0x5C9},
		{UnlockAddr2, 0x236},
		{0x1FF, 0x1FF},
		{0x12345, 0x123C8},
	}

	for _, tt := range tests {
		if got := Permute(tt.addr); got != tt.want {
			t.Errorf("Permute(0x%X) = 0x%X, want 0x%X", tt.addr, got, tt.want)
		}
	}
}

func TestPermuteHighBitsUntouched(t *testing.T) {
	for _, addr := range []uint32{0x200, 0x7FE00, 0xFFFFFE00, 0x12345600} {
		for low := uint32(0); low < 0x200; low += 0x55 {
			in := addr | low
			out := Permute(in)
			if out&0xFFFFFE00 != addr {
				t.Errorf("Permute(0x%X) = 0x%X, altered bits above 8", in, out)
			}
		}
	}
}
