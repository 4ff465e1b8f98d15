package protocol

// Flash command bytes per the JEDEC parallel-NOR command set.
const (
	// CmdReset returns the chip to read-array mode from any state
	CmdReset = 0x00F0

	// CmdUnlock1 is the first unlock cycle byte, written to UnlockAddr1
	CmdUnlock1 = 0x00AA

	// CmdUnlock2 is the second unlock cycle byte, written to UnlockAddr2
	CmdUnlock2 = 0x0055

	// CmdAutoselect enters autoselect (identify) mode; the chip then
	// reports its manufacturer and device IDs at word offsets 0 and 1
	CmdAutoselect = 0x0090

	// CmdEraseSetup arms an erase operation; it must be followed by a
	// second unlock sequence and an erase command
	CmdEraseSetup = 0x0080

	// CmdEraseChip triggers a full-chip erase (after CmdEraseSetup)
	CmdEraseChip = 0x0010

	// CmdProgram arms a single-word program; the next window write is
	// the data word
	CmdProgram = 0x00A0
)

// Unlock cycle addresses (logical, pre-permutation).
const (
	// UnlockAddr1 is the address of the first and third unlock cycles
	UnlockAddr1 = 0x555

	// UnlockAddr2 is the address of the second unlock cycle
	UnlockAddr2 = 0x2AA
)

// Memory map of the cart in the GBA slot address space.
const (
	// WindowBase is the base address of the 16-bit flash/SDRAM window
	WindowBase = 0x08000000

	// ModeRegister is the address of the write-only mode register
	ModeRegister = 0x09FFFFFE

	// SRAMBase is the base address of the 8-bit SRAM window
	SRAMBase = 0x0A000000
)

// Device geometry.
const (
	// FlashSize is the firmware flash capacity in bytes (512 KiB)
	FlashSize = 512 * 1024

	// SRAMSize is the battery-backed SRAM capacity in bytes (64 KiB)
	SRAMSize = 64 * 1024

	// ErasedWord is the value every word reads as after a chip erase
	ErasedWord = 0xFFFF

	// ToggleBit is the DQ6 status bit that alternates between reads
	// while an erase or program cycle is in progress
	ToggleBit = 0x0040
)

// Polling budgets and preamble length.
const (
	// EraseBudget is the polling budget for a full-chip erase: 60000
	// rounds at one tick (~1 ms) each, roughly one minute
	EraseBudget = 60000

	// ProgramBudget is the tight-spin polling budget for a single word
	// program, which normally completes within microseconds
	ProgramBudget = 32768

	// ResetCycles is the number of repeated reset commands issued
	// before and after an operation to recover a chip left
	// mid-sequence
	ResetCycles = 32
)
