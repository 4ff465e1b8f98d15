package hal

// Bus provides word and byte access to the cart's memory-mapped
// address space, plus exclusive ownership of the shared cart bus.
//
// Addresses are absolute slot addresses (see the protocol package
// memory map). Read16/Write16 operate on the 16-bit flash window and
// mode register; Read8/Write8 operate on the 8-bit SRAM window.
type Bus interface {
	Read16(addr uint32) uint16
	Write16(addr uint32, value uint16)
	Read8(addr uint32) byte
	Write8(addr uint32, value byte)

	// Acquire claims exclusive ownership of the cart bus. It is not
	// reentrant: acquiring an already-claimed bus is an error. Every
	// successful Acquire must be paired with exactly one Release.
	Acquire() error

	// Release returns ownership of the cart bus.
	Release()
}

// Claim acquires the bus and returns the paired release function, for
// scoped ownership with defer.
func Claim(b Bus) (release func(), err error) {
	if err := b.Acquire(); err != nil {
		return nil, err
	}
	return b.Release, nil
}
