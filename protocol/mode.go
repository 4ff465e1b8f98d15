package protocol

// ModeMagic is the unlock value written twice to the mode register
// before the encoded mode value. The double magic-then-value sequence
// gives the register immunity against spurious single-word writes.
const ModeMagic = 0xA55A

// Mode value bit assignments.
const (
	// ModeBitSDRAM selects the SDRAM instead of the firmware flash
	// as the resource mapped at the window
	ModeBitSDRAM = 0x0001

	// ModeBitSDCard maps the SD card interface into the window
	ModeBitSDCard = 0x0002

	// ModeBitWrite enables write access to the mapped resource
	ModeBitWrite = 0x0004
)

// Mode describes the cart configuration latched through the mode
// register. The zero value is the safe default: firmware flash mapped,
// writes disabled, SD interface hidden.
type Mode struct {
	// MapSDRAM maps the SDRAM at the window instead of the flash
	MapSDRAM bool

	// MapSDCard maps the SD card interface into the window
	MapSDCard bool

	// WriteEnable permits write access to the mapped resource
	WriteEnable bool
}

// Encode returns the 16-bit mode register value for m.
func (m Mode) Encode() uint16 {
	var v uint16
	if m.MapSDRAM {
		v |= ModeBitSDRAM
	}
	if m.MapSDCard {
		v |= ModeBitSDCard
	}
	if m.WriteEnable {
		v |= ModeBitWrite
	}
	return v
}

// DecodeMode interprets a raw mode register value.
func DecodeMode(v uint16) Mode {
	return Mode{
		MapSDRAM:    v&ModeBitSDRAM != 0,
		MapSDCard:   v&ModeBitSDCard != 0,
		WriteEnable: v&ModeBitWrite != 0,
	}
}
