// Package sha2 implements the SHA-256 hash used to fingerprint
// firmware images.
//
// It is a self-contained single-shot implementation (the flashing tool
// always hashes complete in-memory buffers) and matches the FIPS 180-4
// algorithm exactly, including the standard test vectors. The
// compression loop keeps the message schedule in a rolling 16-word
// window instead of expanding all 64 words up front.
package sha2
