//go:build linux

package hal

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/superfw/go-scflash/protocol"
)

// I/O register page holding the external memory control register.
const (
	ioBase      = 0x04000000
	ioSize      = 0x1000
	exmemcntOff = 0x204

	// exmemOtherOwner gives the other processor ownership of the cart
	// bus when set
	exmemOtherOwner = 0x0080

	// exmemSlowTimings selects the slowest SRAM and ROM wait states;
	// the flash chip needs them during command sequences
	exmemSlowTimings = 0x001F
)

// Span of the 16-bit window mapping: the flash/SDRAM window plus the
// mode register page at the top of the slot.
const windowSpan = protocol.ModeRegister + 2 - protocol.WindowBase

// MemBus accesses the cart through /dev/mem mappings of the slot
// address space. It implements Bus.
//
// Acquire flips the cart-owner bit in the external memory control
// register to this processor and forces slow access timings; Release
// restores the previous owner. A mutex backs the non-reentrancy
// contract within the process.
type MemBus struct {
	mu    sync.Mutex
	owned bool

	prevOwner uint16

	f      *os.File
	window []byte
	sram   []byte
	io     []byte
}

// NewMemBus opens /dev/mem and maps the cart windows and the I/O
// register page.
func NewMemBus() (*MemBus, error) {
	f, err := os.OpenFile("/dev/mem", os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("open /dev/mem: %w", err)
	}

	b := &MemBus{f: f}

	b.window, err = unix.Mmap(int(f.Fd()), protocol.WindowBase, windowSpan,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("map cart window: %w", err)
	}

	b.sram, err = unix.Mmap(int(f.Fd()), protocol.SRAMBase, protocol.SRAMSize,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		b.unmap()
		return nil, fmt.Errorf("map SRAM window: %w", err)
	}

	b.io, err = unix.Mmap(int(f.Fd()), ioBase, ioSize,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		b.unmap()
		return nil, fmt.Errorf("map I/O registers: %w", err)
	}

	return b, nil
}

// Close unmaps all windows and closes the /dev/mem handle.
func (b *MemBus) Close() error {
	b.unmap()
	return b.f.Close()
}

func (b *MemBus) unmap() {
	for _, m := range [][]byte{b.window, b.sram, b.io} {
		if m != nil {
			_ = unix.Munmap(m)
		}
	}
	b.window, b.sram, b.io = nil, nil, nil
}

func (b *MemBus) Read16(addr uint32) uint16 {
	return binary.LittleEndian.Uint16(b.window[addr-protocol.WindowBase:])
}

func (b *MemBus) Write16(addr uint32, value uint16) {
	binary.LittleEndian.PutUint16(b.window[addr-protocol.WindowBase:], value)
}

func (b *MemBus) Read8(addr uint32) byte {
	return b.sram[addr-protocol.SRAMBase]
}

func (b *MemBus) Write8(addr uint32, value byte) {
	b.sram[addr-protocol.SRAMBase] = value
}

func (b *MemBus) exmemcnt() uint16 {
	return binary.LittleEndian.Uint16(b.io[exmemcntOff:])
}

func (b *MemBus) setExmemcnt(v uint16) {
	binary.LittleEndian.PutUint16(b.io[exmemcntOff:], v)
}

// Acquire takes cart-bus ownership for this processor and selects slow
// access timings. The previous owner is restored by Release.
func (b *MemBus) Acquire() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.owned {
		return fmt.Errorf("cart bus already claimed")
	}
	b.owned = true

	v := b.exmemcnt()
	b.prevOwner = v & exmemOtherOwner
	b.setExmemcnt((v &^ exmemOtherOwner) | exmemSlowTimings)
	return nil
}

// Release restores the previous cart-bus owner.
func (b *MemBus) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.owned {
		panic("hal: Release without Acquire")
	}
	b.setExmemcnt(b.exmemcnt()&^exmemOtherOwner | b.prevOwner)
	b.owned = false
}
