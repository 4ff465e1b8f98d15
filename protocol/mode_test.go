package protocol

import "testing"

func TestModeEncode(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		want uint16
	}{
		{"safe default", Mode{}, 0x0000},
		{"write enabled", Mode{WriteEnable: true}, 0x0004},
		{"sdram mapped", Mode{MapSDRAM: true}, 0x0001},
		{"sd card mapped", Mode{MapSDCard: true}, 0x0002},
		{"sdram writable", Mode{MapSDRAM: true, WriteEnable: true}, 0x0005},
		{"everything", Mode{MapSDRAM: true, MapSDCard: true, WriteEnable: true}, 0x0007},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mode.Encode(); got != tt.want {
				t.Errorf("Encode() = 0x%04X, want 0x%04X", got, tt.want)
			}
			if back := DecodeMode(tt.mode.Encode()); back != tt.mode {
				t.Errorf("DecodeMode(Encode()) = %+v, want %+v", back, tt.mode)
			}
		})
	}
}

func TestDecodeModeIgnoresReservedBits(t *testing.T) {
	m := DecodeMode(0xFFF8)
	if m != (Mode{}) {
		t.Errorf("DecodeMode(0xFFF8) = %+v, want zero Mode", m)
	}
}
