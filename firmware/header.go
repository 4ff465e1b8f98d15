package firmware

import (
	"bytes"

	"github.com/superfw/go-scflash/sha2"
)

// Cart header layout.
const (
	// logoOffset and logoLength delimit the fixed logo bitmap whose
	// digest gates header validity
	logoOffset = 0x04
	logoLength = 156

	// checksumStart..checksumEnd (exclusive) is the region covered by
	// the header checksum; the checksum byte itself lives at
	// checksumAddr
	checksumStart = 0xA0
	checksumEnd   = 0xBD
	checksumAddr  = 0xBD

	// checksumSeed is the initial value of the header checksum
	checksumSeed = 0x19

	// headerSize is the minimum buffer length that can hold a header
	headerSize = 0xBE
)

// logoDigest is the first 16 bytes of the SHA-256 digest of the
// canonical logo bitmap.
var logoDigest = [16]byte{
	0x08, 0xa0, 0x15, 0x3c, 0xfd, 0x6b, 0x0e, 0xa5,
	0x4b, 0x93, 0x8f, 0x7d, 0x20, 0x99, 0x33, 0xfa,
}

// ValidHeader reports whether buf begins with a valid cart header:
// the logo region digest matches the canonical fingerprint and the
// header checksum byte is consistent. Buffers shorter than the header
// are invalid.
func ValidHeader(buf []byte) bool {
	if len(buf) < headerSize {
		return false
	}

	digest := sha2.Sum256(buf[logoOffset : logoOffset+logoLength])
	if !bytes.Equal(digest[:len(logoDigest)], logoDigest[:]) {
		return false
	}

	return HeaderChecksum(buf) == buf[checksumAddr]
}

// HeaderChecksum computes the complement checksum stored at offset
// 0xBD: the byte sum of 0xA0..0xBC seeded with 0x19, negated. The
// caller must provide at least headerSize bytes.
func HeaderChecksum(buf []byte) byte {
	sum := byte(checksumSeed)
	for _, b := range buf[checksumStart:checksumEnd] {
		sum += b
	}
	return -sum
}
