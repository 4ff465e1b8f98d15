package protocol

// Permute maps a logical flash offset to the cart's physical address
// line ordering. The cart wires nine of the low address lines to the
// flash die in a scrambled order; bit 1 and every bit above bit 8 pass
// through unchanged. The table is a bijection on the low nine bits (one
// 3-cycle, one 5-cycle, one fixed point) and encodes the board wiring,
// so it cannot be altered without changing hardware.
//
// Command cycle addresses must be permuted before being issued; bulk
// data offsets are written and read through the same wiring and so need
// no correction.
func Permute(addr uint32) uint32 {
	return (addr & 0xFFFFFE02) |
		(addr&0x001)<<7 |
		(addr&0x004)<<4 |
		(addr&0x008)<<2 |
		(addr&0x010)>>4 |
		(addr&0x020)>>3 |
		(addr&0x040)<<2 |
		(addr&0x080)>>3 |
		(addr&0x100)>>5
}
