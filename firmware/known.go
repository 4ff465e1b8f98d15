package firmware

import (
	"bytes"

	"github.com/superfw/go-scflash/sha2"
)

// KnownImage pairs a firmware label with the first 16 bytes of its
// SHA-256 digest over the full 512 KiB flash contents.
type KnownImage struct {
	Name   string
	Digest [16]byte
}

// knownImages is the static classification table. Digest prefixes are
// truncated to 16 bytes to keep the table small; a malicious image
// could in principle be crafted to collide on the prefix, so the label
// is informational only and never gates correctness.
var knownImages = []KnownImage{
	{
		Name: "Empty/Zeroed", // all 0x00
		Digest: [16]byte{
			0x07, 0x85, 0x4d, 0x2f, 0xef, 0x29, 0x7a, 0x06,
			0xba, 0x81, 0x68, 0x5e, 0x66, 0x0c, 0x33, 0x2d,
		},
	},
	{
		Name: "Empty/Cleared", // all 0xFF
		Digest: [16]byte{
			0x04, 0x3e, 0x23, 0x8a, 0x76, 0x5f, 0x7c, 0xfb,
			0xc6, 0x25, 0x96, 0xa5, 0x0e, 0x53, 0xc8, 0xff,
		},
	},
	{
		Name: "Official firmware v1.85 (EN)",
		Digest: [16]byte{
			0xc1, 0x1d, 0x86, 0x4d, 0x39, 0xa4, 0x58, 0x60,
			0xa7, 0xc5, 0xc3, 0x4c, 0xa6, 0x65, 0xa9, 0xc1,
		},
	},
}

// Identify returns the label of the known firmware image whose digest
// prefix matches, if any. Only the first 16 bytes of the digest are
// compared.
func Identify(digest [sha2.Size]byte) (string, bool) {
	for _, img := range knownImages {
		if bytes.Equal(digest[:len(img.Digest)], img.Digest[:]) {
			return img.Name, true
		}
	}
	return "", false
}
