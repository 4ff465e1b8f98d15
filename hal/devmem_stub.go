//go:build !linux

package hal

import "errors"

// MemBus requires /dev/mem and is only functional on Linux. This stub
// keeps the package buildable on other platforms; the simulated cart
// covers development there.
type MemBus struct{}

// NewMemBus always fails on non-Linux platforms.
func NewMemBus() (*MemBus, error) {
	return nil, errors.New("direct cart access requires linux (/dev/mem)")
}

func (b *MemBus) Close() error { return nil }

func (b *MemBus) Read16(addr uint32) uint16 { return 0 }

func (b *MemBus) Write16(addr uint32, value uint16) {}

func (b *MemBus) Read8(addr uint32) byte { return 0 }

func (b *MemBus) Write8(addr uint32, value byte) {}

func (b *MemBus) Acquire() error { return errors.New("cart bus unavailable on this platform") }

func (b *MemBus) Release() {}
