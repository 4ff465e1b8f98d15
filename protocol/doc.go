// Package protocol defines the wire-level view of the SuperCard cart:
// the JEDEC flash command set, the address-line permutation between the
// logical bus and the flash die, the mode register encoding and the
// fixed memory map.
//
// # Memory Map
//
// The cart occupies the GBA slot address space:
//
//	0x08000000  16-bit flash/SDRAM window (512 KiB firmware flash)
//	0x09FFFFFE  mode register (write-only, latched)
//	0x0A000000  8-bit battery-backed SRAM (64 KiB)
//
// # Command Cycles
//
// The flash chip follows the common parallel-NOR unlock scheme: a
// command is armed by writing 0xAA to address 0x555 and 0x55 to address
// 0x2AA, then the command byte to 0x555. Because the cart's address
// lines are permuted between the bus and the die (see Permute), all
// command addresses must be pre-permuted before being issued; bulk data
// addresses need no correction since the permutation is a bijection and
// cancels out on read-back.
//
// # Mode Register
//
// The mode register rejects single stray writes: a mode change requires
// the magic value 0xA55A written twice, followed by the encoded mode
// value written twice. See Mode.
package protocol
