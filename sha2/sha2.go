package sha2

import (
	"encoding/binary"
	"math/bits"
)

// Size is the length of a SHA-256 digest in bytes.
const Size = 32

// BlockSize is the SHA-256 block size in bytes.
const BlockSize = 64

// Initialization vector per FIPS 180-4 §5.3.3.
var initState = [8]uint32{
	0x6a09e667, 0xbb67ae85, 0x3c6ef372, 0xa54ff53a,
	0x510e527f, 0x9b05688c, 0x1f83d9ab, 0x5be0cd19,
}

// Round constants per FIPS 180-4 §4.2.2.
var roundK = [64]uint32{
	0x428a2f98, 0x71374491, 0xb5c0fbcf, 0xe9b5dba5, 0x3956c25b, 0x59f111f1, 0x923f82a4, 0xab1c5ed5,
	0xd807aa98, 0x12835b01, 0x243185be, 0x550c7dc3, 0x72be5d74, 0x80deb1fe, 0x9bdc06a7, 0xc19bf174,
	0xe49b69c1, 0xefbe4786, 0x0fc19dc6, 0x240ca1cc, 0x2de92c6f, 0x4a7484aa, 0x5cb0a9dc, 0x76f988da,
	0x983e5152, 0xa831c66d, 0xb00327c8, 0xbf597fc7, 0xc6e00bf3, 0xd5a79147, 0x06ca6351, 0x14292967,
	0x27b70a85, 0x2e1b2138, 0x4d2c6dfc, 0x53380d13, 0x650a7354, 0x766a0abb, 0x81c2c92e, 0x92722c85,
	0xa2bfe8a1, 0xa81a664b, 0xc24b8b70, 0xc76c51a3, 0xd192e819, 0xd6990624, 0xf40e3585, 0x106aa070,
	0x19a4c116, 0x1e376c08, 0x2748774c, 0x34b0bcb5, 0x391c0cb3, 0x4ed8aa4a, 0x5b9cca4f, 0x682e6ff3,
	0x748f82ee, 0x78a5636f, 0x84c87814, 0x8cc70208, 0x90befffa, 0xa4506ceb, 0xbef9a3f7, 0xc67178f2,
}

// Sum256 returns the SHA-256 digest of data.
func Sum256(data []byte) [Size]byte {
	state := initState
	bitLen := uint64(len(data)) << 3

	for len(data) >= BlockSize {
		block(&state, data)
		data = data[BlockSize:]
	}

	var tail [BlockSize]byte
	n := copy(tail[:], data)
	tail[n] = 0x80

	// The 64-bit length field needs 8 trailing bytes; spill into an
	// extra block when the marker leaves no room.
	if n >= BlockSize-8 {
		block(&state, tail[:])
		tail = [BlockSize]byte{}
	}

	binary.BigEndian.PutUint64(tail[BlockSize-8:], bitLen)
	block(&state, tail[:])

	var digest [Size]byte
	for i, v := range state {
		binary.BigEndian.PutUint32(digest[i*4:], v)
	}
	return digest
}

// block runs the 64-round compression function over one 64-byte block.
// The message schedule lives in a rolling 16-word window: round i reads
// w[i mod 16] and immediately folds in the expansion term for round
// i+16.
func block(state *[8]uint32, p []byte) {
	var w [16]uint32
	for i := range w {
		w[i] = binary.BigEndian.Uint32(p[i*4:])
	}

	a, b, c, d := state[0], state[1], state[2], state[3]
	e, f, g, h := state[4], state[5], state[6], state[7]

	for i := 0; i < 64; i++ {
		wi := i & 15

		s1 := bits.RotateLeft32(e, -6) ^ bits.RotateLeft32(e, -11) ^ bits.RotateLeft32(e, -25)
		ch := (e & f) ^ (^e & g)
		t1 := h + s1 + ch + roundK[i] + w[wi]

		s0 := bits.RotateLeft32(a, -2) ^ bits.RotateLeft32(a, -13) ^ bits.RotateLeft32(a, -22)
		maj := (a & b) ^ (a & c) ^ (b & c)
		t2 := s0 + maj

		w1 := w[(i+1)&15]
		w9 := w[(i+9)&15]
		w14 := w[(i+14)&15]
		w[wi] += w9 +
			(bits.RotateLeft32(w1, -7) ^ bits.RotateLeft32(w1, -18) ^ (w1 >> 3)) +
			(bits.RotateLeft32(w14, -17) ^ bits.RotateLeft32(w14, -19) ^ (w14 >> 10))

		h, g, f, e = g, f, e, d+t1
		d, c, b, a = c, b, a, t1+t2
	}

	state[0] += a
	state[1] += b
	state[2] += c
	state[3] += d
	state[4] += e
	state[5] += f
	state[6] += g
	state[7] += h
}
