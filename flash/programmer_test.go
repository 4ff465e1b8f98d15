package flash

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/superfw/go-scflash/firmware"
	"github.com/superfw/go-scflash/protocol"
	"github.com/superfw/go-scflash/sim"
)

// testLogger collects log lines for assertions.
type testLogger struct {
	lines []string
}

func (l *testLogger) Debug(msg string, kv ...interface{}) { l.record("DEBUG", msg, kv...) }
func (l *testLogger) Info(msg string, kv ...interface{})  { l.record("INFO", msg, kv...) }
func (l *testLogger) Error(msg string, kv ...interface{}) { l.record("ERROR", msg, kv...) }

func (l *testLogger) record(level, msg string, kv ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf("%s %s %v", level, msg, kv))
}

func (l *testLogger) contains(substr string) bool {
	for _, line := range l.lines {
		if bytes.Contains([]byte(line), []byte(substr)) {
			return true
		}
	}
	return false
}

// newSimProgrammer wires a fresh cart to a programmer whose erase
// clock is the cart's own tick.
func newSimProgrammer(opts ...Option) (*sim.Cart, *Programmer) {
	cart := sim.NewCart()
	opts = append([]Option{WithEraseTick(cart.Tick)}, opts...)
	return cart, New(cart, opts...)
}

// checkQuiesced verifies the invariant every operation must leave
// behind: bus released, cart back in read-only flash mapping.
func checkQuiesced(t *testing.T, cart *sim.Cart) {
	t.Helper()
	if cart.Owned() {
		t.Error("bus still claimed after operation")
	}
	if cart.Mode() != (protocol.Mode{}) {
		t.Errorf("mode = %+v after operation, want read-only flash", cart.Mode())
	}
}

func TestIdentify(t *testing.T) {
	cart, prog := newSimProgrammer()
	cart.SetIDs(0x0001, 0x227E)

	id, err := prog.Identify(context.Background())
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if id.Manufacturer != 0x0001 || id.Device != 0x227E {
		t.Errorf("id = %v, want 0001:227E", id)
	}
	checkQuiesced(t, cart)
}

func TestFlashRoundTrip(t *testing.T) {
	var phases []string
	cart, prog := newSimProgrammer(
		WithProgressCallback(func(p Progress) {
			if n := len(phases); n == 0 || phases[n-1] != p.Phase {
				phases = append(phases, p.Phase)
			}
		}),
	)
	// Dirty flash first, so the erase is load-bearing.
	cart.SetWord(100, 0x0000)

	data := make([]byte, 8192)
	for i := range data {
		data[i] = byte(i * 7)
	}
	img, err := firmware.FromBytes(data)
	if err != nil {
		t.Fatal(err)
	}

	if err := prog.Flash(context.Background(), img); err != nil {
		t.Fatalf("Flash: %v", err)
	}

	if got := cart.FlashBytes()[:len(data)]; !bytes.Equal(got, data) {
		t.Error("device contents do not match image after Flash")
	}
	if got := cart.Word(len(data) / 2); got != protocol.ErasedWord {
		t.Errorf("word past image end = %04X, want erased", got)
	}
	checkQuiesced(t, cart)

	want := []string{PhaseErasing, PhaseBlankCheck, PhaseProgramming, PhaseVerifying, PhaseComplete}
	if fmt.Sprint(phases) != fmt.Sprint(want) {
		t.Errorf("phases = %v, want %v", phases, want)
	}
}

func TestProgramRejectsBadLengths(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"odd length", 5},
		{"oversized", protocol.FlashSize + 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart, prog := newSimProgrammer()

			var imgErr *ImageError
			err := prog.Program(context.Background(), make([]byte, tt.size))
			if !errors.As(err, &imgErr) {
				t.Fatalf("error = %v, want *ImageError", err)
			}
			// Rejected before touching the bus.
			if cart.Owned() {
				t.Error("bus was claimed for a rejected image")
			}
		})
	}
}

func TestProgramReadBackMismatch(t *testing.T) {
	cart, prog := newSimProgrammer()
	// Programming over a dirty word can only clear bits, so the
	// read-back cannot match.
	cart.SetWord(0, 0x0F0F)

	err := prog.Program(context.Background(), []byte{0x34, 0x12})

	var verifyErr *VerifyError
	if !errors.As(err, &verifyErr) {
		t.Fatalf("error = %v, want *VerifyError", err)
	}
	if verifyErr.Offset != 0 || verifyErr.Expected != 0x1234 {
		t.Errorf("VerifyError = %+v, want offset 0 expecting 1234", verifyErr)
	}
	checkQuiesced(t, cart)
}

func TestEraseTimeout(t *testing.T) {
	log := &testLogger{}
	cart, prog := newSimProgrammer(WithEraseBudget(5), WithLogger(log))
	cart.StickBusy()

	err := prog.EraseChip(context.Background())

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("error = %v, want *TimeoutError", err)
	}
	if timeoutErr.Op != "chip erase" {
		t.Errorf("Op = %q, want %q", timeoutErr.Op, "chip erase")
	}
	if !log.contains("erase timed out") {
		t.Error("timeout was not logged")
	}
	checkQuiesced(t, cart)
}

func TestProgramTimeout(t *testing.T) {
	cart, prog := newSimProgrammer(WithProgramBudget(4))
	cart.StickBusy()

	err := prog.Program(context.Background(), []byte{0x00, 0x00})

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("error = %v, want *TimeoutError", err)
	}
	if timeoutErr.Op != "word program" {
		t.Errorf("Op = %q, want %q", timeoutErr.Op, "word program")
	}
	checkQuiesced(t, cart)
}

func TestVerifyErased(t *testing.T) {
	cart, prog := newSimProgrammer()

	if err := prog.VerifyErased(context.Background()); err != nil {
		t.Fatalf("VerifyErased on a fresh cart: %v", err)
	}

	cart.SetWord(0x1000, 0xFFFE)
	err := prog.VerifyErased(context.Background())

	var verifyErr *VerifyError
	if !errors.As(err, &verifyErr) {
		t.Fatalf("error = %v, want *VerifyError", err)
	}
	if verifyErr.Offset != 0x2000 || verifyErr.Actual != 0xFFFE {
		t.Errorf("VerifyError = %+v, want offset 0x2000 actual FFFE", verifyErr)
	}
	checkQuiesced(t, cart)
}

func TestVerify(t *testing.T) {
	cart, prog := newSimProgrammer()
	data := bytes.Repeat([]byte{0xDE, 0xAD, 0xBE, 0xEF}, 256)
	cart.LoadFlash(data)

	if err := prog.Verify(context.Background(), data); err != nil {
		t.Fatalf("Verify of matching contents: %v", err)
	}

	cart.SetWord(3, cart.Word(3)^0x0100)
	err := prog.Verify(context.Background(), data)

	var verifyErr *VerifyError
	if !errors.As(err, &verifyErr) {
		t.Fatalf("error = %v, want *VerifyError", err)
	}
	if verifyErr.Offset != 6 {
		t.Errorf("Offset = 0x%X, want 0x6", verifyErr.Offset)
	}
}

func TestReadRegion(t *testing.T) {
	cart, prog := newSimProgrammer()
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	cart.LoadFlash(data)

	got, err := prog.ReadRegion(context.Background(), 16, 32)
	if err != nil {
		t.Fatalf("ReadRegion: %v", err)
	}
	if !bytes.Equal(got, data[16:48]) {
		t.Error("ReadRegion contents do not match device")
	}

	full, err := prog.Dump(context.Background())
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if len(full) != protocol.FlashSize || !bytes.Equal(full[:256], data) {
		t.Error("Dump does not return full flash contents")
	}
}

func TestReadRegionRejectsBadRanges(t *testing.T) {
	_, prog := newSimProgrammer()

	tests := []struct {
		name           string
		offset, length int
	}{
		{"odd offset", 1, 16},
		{"odd length", 0, 15},
		{"negative offset", -2, 16},
		{"past end", protocol.FlashSize - 2, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rangeErr *RangeError
			if _, err := prog.ReadRegion(context.Background(), tt.offset, tt.length); !errors.As(err, &rangeErr) {
				t.Errorf("error = %v, want *RangeError", err)
			}
		})
	}
}

func TestTestSRAM(t *testing.T) {
	cart, prog := newSimProgrammer()

	faults, err := prog.TestSRAM(context.Background())
	if err != nil {
		t.Fatalf("TestSRAM: %v", err)
	}
	if faults != 0 {
		t.Errorf("faults = %d on a healthy cart, want 0", faults)
	}
	// SRAM access must not disturb the mode register.
	checkQuiesced(t, cart)
}

func TestCancelledContext(t *testing.T) {
	cart, prog := newSimProgrammer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := prog.EraseChip(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("EraseChip error = %v, want context.Canceled", err)
	}
	if _, err := prog.TestSRAM(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("TestSRAM error = %v, want context.Canceled", err)
	}
	if cart.Owned() {
		t.Error("bus claimed despite cancelled context")
	}
}

func TestFlashLogsImageDigest(t *testing.T) {
	log := &testLogger{}
	_, prog := newSimProgrammer(WithLogger(log))

	img, err := firmware.FromBytes(make([]byte, 64))
	if err != nil {
		t.Fatal(err)
	}
	if err := prog.Flash(context.Background(), img); err != nil {
		t.Fatalf("Flash: %v", err)
	}
	if !log.contains("flashing image") || !log.contains("flash complete") {
		t.Errorf("expected start and completion log lines, got %v", log.lines)
	}
}

func TestNewPanicsOnNilBus(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("New(nil) did not panic")
		}
	}()
	New(nil)
}
