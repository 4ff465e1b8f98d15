package flash

import (
	"fmt"
)

// TimeoutError indicates that the chip never reported completion
// within the polling budget for an operation.
type TimeoutError struct {
	Op     string
	Budget int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out: toggle bit never settled within %d probes", e.Op, e.Budget)
}

// VerifyError indicates that a device word does not match the expected
// value. Offset is the byte offset into the flash window.
type VerifyError struct {
	Offset   uint32
	Expected uint16
	Actual   uint16
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("verify failed at offset 0x%05X: expected 0x%04X, got 0x%04X",
		e.Offset, e.Expected, e.Actual)
}

// ImageError indicates that a firmware image cannot be programmed as
// given.
type ImageError struct {
	Reason string
	Size   int
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("bad firmware image: %s", e.Reason)
}

// RangeError indicates that a read request falls outside the flash
// window or is not word aligned.
type RangeError struct {
	Offset int
	Length int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("range [0x%X, +0x%X) is not a word-aligned region inside flash",
		e.Offset, e.Length)
}
