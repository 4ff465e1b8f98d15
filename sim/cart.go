package sim

import (
	"encoding/binary"
	"fmt"

	"github.com/superfw/go-scflash/protocol"
)

// Default completion delays, in status reads (program) and erase ticks
// (chip erase).
const (
	DefaultProgramDelay = 3
	DefaultEraseDelay   = 5
)

// Default device IDs reported in autoselect mode.
const (
	DefaultManufacturerID = 0x00BF
	DefaultDeviceID       = 0x2780
)

// Command sequence tracking. The chip decodes unlock cycles at the
// permuted addresses; a reset command returns to idle from any state.
type seqState int

const (
	seqIdle seqState = iota
	seqUnlock1
	seqUnlock2
	seqEraseSetup
	seqEraseUnlock1
	seqEraseUnlock2
	seqProgram
)

// Word offsets the chip's command decoder matches, as seen from the
// bus side of the permuted wiring.
var (
	unlock1Off = protocol.Permute(protocol.UnlockAddr1)
	unlock2Off = protocol.Permute(protocol.UnlockAddr2)
	mfrOff     = protocol.Permute(0x000)
	devOff     = protocol.Permute(0x001)
)

// Cart is an in-memory SuperCard. It implements hal.Bus.
type Cart struct {
	flash []uint16
	sdram []uint16
	sram  []byte

	mode     protocol.Mode
	modeStep int
	modeVal  uint16

	seq      seqState
	identify bool

	manufacturer uint16
	device       uint16

	programDelay int
	eraseDelay   int
	busyReads    int
	eraseTicks   int
	erasing      bool
	stuck        bool
	toggle       bool

	owned bool
}

// NewCart returns a cart with erased flash, zeroed SDRAM and SRAM and
// default IDs and delays.
func NewCart() *Cart {
	c := &Cart{
		flash:        make([]uint16, protocol.FlashSize/2),
		sdram:        make([]uint16, protocol.FlashSize/2),
		sram:         make([]byte, protocol.SRAMSize),
		manufacturer: DefaultManufacturerID,
		device:       DefaultDeviceID,
		programDelay: DefaultProgramDelay,
		eraseDelay:   DefaultEraseDelay,
	}
	for i := range c.flash {
		c.flash[i] = protocol.ErasedWord
	}
	return c
}

// SetIDs sets the manufacturer and device IDs reported in autoselect
// mode.
func (c *Cart) SetIDs(manufacturer, device uint16) {
	c.manufacturer = manufacturer
	c.device = device
}

// SetProgramDelay sets how many status reads a word program stays busy.
func (c *Cart) SetProgramDelay(reads int) { c.programDelay = reads }

// SetEraseDelay sets how many ticks a chip erase takes.
func (c *Cart) SetEraseDelay(ticks int) { c.eraseDelay = ticks }

// StickBusy makes the chip report busy forever. Timeout tests use it.
func (c *Cart) StickBusy() { c.stuck = true }

// Mode returns the currently latched bus mode.
func (c *Cart) Mode() protocol.Mode { return c.mode }

// Owned reports whether the cart bus is currently claimed.
func (c *Cart) Owned() bool { return c.owned }

// Word returns the flash word at the given word index.
func (c *Cart) Word(i int) uint16 { return c.flash[i] }

// SetWord overwrites a flash word directly, bypassing the command
// decoder. Tests use it to perturb device contents.
func (c *Cart) SetWord(i int, v uint16) { c.flash[i] = v }

// LoadFlash fills the flash from a little-endian byte image, leaving
// the remainder erased. Panics if data exceeds the flash capacity or
// has odd length.
func (c *Cart) LoadFlash(data []byte) {
	if len(data) > protocol.FlashSize || len(data)%2 != 0 {
		panic(fmt.Sprintf("sim: bad flash image length %d", len(data)))
	}
	for i := range c.flash {
		c.flash[i] = protocol.ErasedWord
	}
	for i := 0; i < len(data); i += 2 {
		c.flash[i/2] = binary.LittleEndian.Uint16(data[i:])
	}
}

// FlashBytes returns a little-endian byte copy of the full flash
// contents.
func (c *Cart) FlashBytes() []byte {
	out := make([]byte, protocol.FlashSize)
	for i, w := range c.flash {
		binary.LittleEndian.PutUint16(out[i*2:], w)
	}
	return out
}

// Tick advances erase time by one unit. Tests inject this as the
// programmer's erase tick.
func (c *Cart) Tick() {
	if c.stuck || !c.erasing {
		return
	}
	c.eraseTicks--
	if c.eraseTicks <= 0 {
		for i := range c.flash {
			c.flash[i] = protocol.ErasedWord
		}
		c.erasing = false
	}
}

func (c *Cart) busy() bool {
	return c.stuck || c.erasing || c.busyReads > 0
}

func (c *Cart) Read16(addr uint32) uint16 {
	if addr < protocol.WindowBase || addr >= protocol.WindowBase+protocol.FlashSize {
		return 0
	}
	off := (addr - protocol.WindowBase) / 2

	if c.busy() {
		if c.busyReads > 0 {
			c.busyReads--
		}
		c.toggle = !c.toggle
		v := c.array()[off]
		if c.toggle {
			v ^= protocol.ToggleBit
		}
		return v
	}

	if c.identify {
		switch off {
		case mfrOff:
			return c.manufacturer
		case devOff:
			return c.device
		}
	}

	return c.array()[off]
}

func (c *Cart) array() []uint16 {
	if c.mode.MapSDRAM {
		return c.sdram
	}
	return c.flash
}

func (c *Cart) Write16(addr uint32, value uint16) {
	if addr == protocol.ModeRegister {
		c.modeWrite(value)
		return
	}
	if addr < protocol.WindowBase || addr >= protocol.WindowBase+protocol.FlashSize {
		return
	}
	if !c.mode.WriteEnable {
		return
	}
	off := (addr - protocol.WindowBase) / 2

	if c.mode.MapSDRAM {
		c.sdram[off] = value
		return
	}

	c.command(off, value)
}

// modeWrite advances the mode register latch: magic, magic, value,
// value. Any deviation resets the sequence without latching.
func (c *Cart) modeWrite(v uint16) {
	switch c.modeStep {
	case 0, 1:
		if v == protocol.ModeMagic {
			c.modeStep++
		} else {
			c.modeStep = 0
		}
	case 2:
		c.modeVal = v
		c.modeStep = 3
	case 3:
		if v == c.modeVal {
			c.mode = protocol.DecodeMode(c.modeVal)
		}
		c.modeStep = 0
	}
}

// command feeds one write cycle to the flash command decoder.
func (c *Cart) command(off uint32, value uint16) {
	if c.seq == seqProgram {
		// Flash programming can only clear bits.
		c.flash[off] &= value
		c.busyReads = c.programDelay
		c.seq = seqIdle
		return
	}

	if value == protocol.CmdReset {
		c.seq = seqIdle
		c.identify = false
		return
	}

	switch c.seq {
	case seqIdle:
		if off == unlock1Off && value == protocol.CmdUnlock1 {
			c.seq = seqUnlock1
		}
	case seqUnlock1:
		if off == unlock2Off && value == protocol.CmdUnlock2 {
			c.seq = seqUnlock2
		} else {
			c.seq = seqIdle
		}
	case seqUnlock2:
		c.seq = seqIdle
		if off != unlock1Off {
			return
		}
		switch value {
		case protocol.CmdAutoselect:
			c.identify = true
		case protocol.CmdEraseSetup:
			c.seq = seqEraseSetup
		case protocol.CmdProgram:
			c.seq = seqProgram
		}
	case seqEraseSetup:
		if off == unlock1Off && value == protocol.CmdUnlock1 {
			c.seq = seqEraseUnlock1
		} else {
			c.seq = seqIdle
		}
	case seqEraseUnlock1:
		if off == unlock2Off && value == protocol.CmdUnlock2 {
			c.seq = seqEraseUnlock2
		} else {
			c.seq = seqIdle
		}
	case seqEraseUnlock2:
		c.seq = seqIdle
		if off == unlock1Off && value == protocol.CmdEraseChip {
			c.erasing = true
			c.eraseTicks = c.eraseDelay
		}
	}
}

func (c *Cart) Read8(addr uint32) byte {
	if addr < protocol.SRAMBase || addr >= protocol.SRAMBase+protocol.SRAMSize {
		return 0
	}
	return c.sram[addr-protocol.SRAMBase]
}

func (c *Cart) Write8(addr uint32, value byte) {
	if addr < protocol.SRAMBase || addr >= protocol.SRAMBase+protocol.SRAMSize {
		return
	}
	c.sram[addr-protocol.SRAMBase] = value
}

// Acquire claims the cart bus. Claiming an already-claimed bus is an
// error, matching the non-reentrant hal.Bus contract.
func (c *Cart) Acquire() error {
	if c.owned {
		return fmt.Errorf("cart bus already claimed")
	}
	c.owned = true
	return nil
}

// Release returns the cart bus.
func (c *Cart) Release() {
	if !c.owned {
		panic("sim: Release without Acquire")
	}
	c.owned = false
}
