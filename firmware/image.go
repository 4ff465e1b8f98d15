package firmware

import (
	"fmt"
	"os"

	"github.com/superfw/go-scflash/protocol"
	"github.com/superfw/go-scflash/sha2"
)

// MaxImageSize is the largest loadable firmware image: the full
// capacity of the device flash.
const MaxImageSize = protocol.FlashSize

// SizeError indicates an image larger than the device flash.
type SizeError struct {
	Size int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("image is %d bytes, maximum is %d (512 KiB)", e.Size, MaxImageSize)
}

// Image is a firmware image held in memory, with its digest computed
// on first use.
type Image struct {
	Data []byte

	digest [sha2.Size]byte
	hashed bool
}

// FromBytes wraps an in-memory buffer as an Image. The buffer must not
// exceed the device flash capacity.
func FromBytes(data []byte) (*Image, error) {
	if len(data) > MaxImageSize {
		return nil, &SizeError{Size: len(data)}
	}
	return &Image{Data: data}, nil
}

// Load reads a firmware image from disk, enforcing the size cap before
// reading the contents.
func Load(path string) (*Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat image: %w", err)
	}
	if info.Size() > MaxImageSize {
		return nil, &SizeError{Size: int(info.Size())}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	return FromBytes(data)
}

// Digest returns the SHA-256 fingerprint of the image contents.
func (img *Image) Digest() [sha2.Size]byte {
	if !img.hashed {
		img.digest = sha2.Sum256(img.Data)
		img.hashed = true
	}
	return img.digest
}

// ValidHeader reports whether the image begins with a valid cart
// header.
func (img *Image) ValidHeader() bool {
	return ValidHeader(img.Data)
}
