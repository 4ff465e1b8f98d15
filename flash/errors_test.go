package flash

import (
	"strings"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			"timeout",
			&TimeoutError{Op: "chip erase"},
			"chip erase timed out",
		},
		{
			"verify",
			&VerifyError{Offset: 0x1F00, Expected: 0xFFFF, Actual: 0x1234},
			"offset 0x01F00",
		},
		{
			"image",
			&ImageError{Reason: "odd length 5, device is word addressed"},
			"bad firmware image",
		},
		{
			"range",
			&RangeError{Offset: 3, Length: 8},
			"word-aligned",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); !strings.Contains(got, tt.want) {
				t.Errorf("Error() = %q, missing %q", got, tt.want)
			}
		})
	}
}
