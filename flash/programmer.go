package flash

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/superfw/go-scflash/firmware"
	"github.com/superfw/go-scflash/hal"
	"github.com/superfw/go-scflash/protocol"
)

// DeviceID is the chip identity read in autoselect mode.
type DeviceID struct {
	Manufacturer uint16
	Device       uint16
}

func (id DeviceID) String() string {
	return fmt.Sprintf("%04X:%04X", id.Manufacturer, id.Device)
}

// Programmer orchestrates flash operations on a SuperCard.
// It handles bus claiming, mode switching, command sequencing and
// completion polling.
//
// Programmer is not safe for concurrent use: the cart has a single
// command decoder and a single mode latch.
type Programmer struct {
	bus    hal.Bus
	config Config
}

// New creates a new Programmer with the given bus and options.
//
// Example:
//
//	bus, _ := hal.NewMemBus()
//	prog := flash.New(bus,
//	    flash.WithProgressCallback(progressFunc),
//	    flash.WithLogger(myLogger),
//	)
func New(bus hal.Bus, opts ...Option) *Programmer {
	if bus == nil {
		panic("bus cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Programmer{
		bus:    bus,
		config: cfg,
	}
}

// windowAddr converts a word offset in the flash window to a bus
// address.
func windowAddr(wordOff uint32) uint32 {
	return protocol.WindowBase + 2*wordOff
}

// session claims the bus, latches the requested mapping and runs fn.
// The cart always comes back in read-only flash mapping with the bus
// released, whatever fn returns.
func (p *Programmer) session(ctx context.Context, m protocol.Mode, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	release, err := hal.Claim(p.bus)
	if err != nil {
		return err
	}
	defer release()

	p.setMode(m)
	defer p.setMode(protocol.Mode{})

	return fn()
}

// setMode latches a bus mode: the magic written twice, then the
// encoded value written twice.
func (p *Programmer) setMode(m protocol.Mode) {
	v := m.Encode()
	p.bus.Write16(protocol.ModeRegister, protocol.ModeMagic)
	p.bus.Write16(protocol.ModeRegister, protocol.ModeMagic)
	p.bus.Write16(protocol.ModeRegister, v)
	p.bus.Write16(protocol.ModeRegister, v)
}

// writeCmd issues one command cycle. The chip address is permuted by
// the cart wiring, so the write lands at the shuffled offset.
func (p *Programmer) writeCmd(chipAddr uint32, cmd uint16) {
	p.bus.Write16(windowAddr(protocol.Permute(chipAddr)), cmd)
}

// unlock issues the two-cycle JEDEC unlock preamble.
func (p *Programmer) unlock() {
	p.writeCmd(protocol.UnlockAddr1, protocol.CmdUnlock1)
	p.writeCmd(protocol.UnlockAddr2, protocol.CmdUnlock2)
}

// resetChip hammers the reset command enough times to exit any
// half-entered command sequence.
func (p *Programmer) resetChip() {
	for i := 0; i < p.config.ResetCycles; i++ {
		p.bus.Write16(windowAddr(0), protocol.CmdReset)
	}
}

// Identify reads the manufacturer and device IDs via the autoselect
// command.
//
// Example:
//
//	id, err := prog.Identify(ctx)
//	fmt.Println("chip:", id)
func (p *Programmer) Identify(ctx context.Context) (DeviceID, error) {
	var id DeviceID
	err := p.session(ctx, protocol.Mode{WriteEnable: true}, func() error {
		p.resetChip()
		p.unlock()
		p.writeCmd(protocol.UnlockAddr1, protocol.CmdAutoselect)

		id.Manufacturer = p.bus.Read16(windowAddr(protocol.Permute(0x000)))
		id.Device = p.bus.Read16(windowAddr(protocol.Permute(0x001)))

		p.bus.Write16(windowAddr(0), protocol.CmdReset)
		return nil
	})
	if err == nil {
		p.logDebug("identified chip", "id", id.String())
	}
	return id, err
}

// EraseChip erases the whole flash array and waits for completion.
// The chip is reset afterwards whether or not the erase finished, so a
// timed out chip is left in read-array mode.
func (p *Programmer) EraseChip(ctx context.Context) error {
	return p.session(ctx, protocol.Mode{WriteEnable: true}, func() error {
		p.reportProgress(Progress{Phase: PhaseErasing})
		p.logInfo("erasing chip")

		p.resetChip()
		p.unlock()
		p.writeCmd(protocol.UnlockAddr1, protocol.CmdEraseSetup)
		p.unlock()
		p.writeCmd(protocol.UnlockAddr1, protocol.CmdEraseChip)

		state := p.waitToggle(p.config.EraseBudget, p.config.EraseTick)
		p.bus.Write16(windowAddr(0), protocol.CmdReset)

		if state != PollDone {
			p.logError("erase timed out")
			return &TimeoutError{Op: "chip erase", Budget: p.config.EraseBudget}
		}
		p.reportProgress(Progress{Phase: PhaseErasing, Percentage: 100})
		return nil
	})
}

// Program writes data to the flash starting at offset zero, one word
// per JEDEC program cycle, reading each word back immediately. The
// chip must be erased first: programming can only clear bits.
//
// The data length must be even and no larger than the flash.
func (p *Programmer) Program(ctx context.Context, data []byte) error {
	if len(data)%2 != 0 {
		return &ImageError{Reason: "odd length, device is word addressed", Size: len(data)}
	}
	if len(data) > protocol.FlashSize {
		return &ImageError{Reason: fmt.Sprintf("exceeds flash size %d", protocol.FlashSize), Size: len(data)}
	}

	return p.session(ctx, protocol.Mode{WriteEnable: true}, func() error {
		startTime := time.Now()
		totalWords := len(data) / 2

		p.resetChip()

		for i := 0; i < len(data); i += 2 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("cancelled: %w", err)
			}

			word := binary.LittleEndian.Uint16(data[i:])

			p.unlock()
			p.writeCmd(protocol.UnlockAddr1, protocol.CmdProgram)
			// Data cycles are not permuted: the shuffle cancels out on
			// read-back, so bulk data goes to linear addresses.
			p.bus.Write16(protocol.WindowBase+uint32(i), word)

			state := p.waitToggle(p.config.ProgramBudget, nil)
			p.bus.Write16(windowAddr(0), protocol.CmdReset)
			if state != PollDone {
				p.logError("word program timed out", "offset", fmt.Sprintf("0x%05X", i))
				return &TimeoutError{Op: "word program", Budget: p.config.ProgramBudget}
			}

			if got := p.bus.Read16(protocol.WindowBase + uint32(i)); got != word {
				return &VerifyError{Offset: uint32(i), Expected: word, Actual: got}
			}

			if w := i/2 + 1; w%p.config.ProgressStride == 0 || w == totalWords {
				p.reportProgress(Progress{
					Phase:        PhaseProgramming,
					CurrentWord:  w,
					TotalWords:   totalWords,
					Percentage:   float64(w) / float64(totalWords) * 100,
					BytesWritten: i + 2,
					ElapsedTime:  time.Since(startTime),
				})
			}
		}

		p.logInfo("programming complete",
			"bytes", len(data),
			"elapsed", time.Since(startTime).String(),
		)
		return nil
	})
}

// VerifyErased checks that every flash word reads back erased.
// Returns a *VerifyError naming the first dirty word.
func (p *Programmer) VerifyErased(ctx context.Context) error {
	return p.session(ctx, protocol.Mode{}, func() error {
		totalWords := protocol.FlashSize / 2
		for off := uint32(0); off < protocol.FlashSize; off += 2 {
			if got := p.bus.Read16(protocol.WindowBase + off); got != protocol.ErasedWord {
				return &VerifyError{Offset: off, Expected: protocol.ErasedWord, Actual: got}
			}

			if w := int(off/2) + 1; w%(p.config.ProgressStride*8) == 0 || w == totalWords {
				p.reportProgress(Progress{
					Phase:       PhaseBlankCheck,
					CurrentWord: w,
					TotalWords:  totalWords,
					Percentage:  float64(w) / float64(totalWords) * 100,
				})
			}
		}
		return nil
	})
}

// Verify compares the flash contents against expected, word by word,
// starting at offset zero. The expected length must be even.
func (p *Programmer) Verify(ctx context.Context, expected []byte) error {
	if len(expected)%2 != 0 {
		return &ImageError{Reason: "odd length, device is word addressed", Size: len(expected)}
	}
	if len(expected) > protocol.FlashSize {
		return &ImageError{Reason: fmt.Sprintf("exceeds flash size %d", protocol.FlashSize), Size: len(expected)}
	}

	return p.session(ctx, protocol.Mode{}, func() error {
		totalWords := len(expected) / 2
		for i := 0; i < len(expected); i += 2 {
			want := binary.LittleEndian.Uint16(expected[i:])
			if got := p.bus.Read16(protocol.WindowBase + uint32(i)); got != want {
				return &VerifyError{Offset: uint32(i), Expected: want, Actual: got}
			}

			if w := i/2 + 1; w%(p.config.ProgressStride*8) == 0 || w == totalWords {
				p.reportProgress(Progress{
					Phase:       PhaseVerifying,
					CurrentWord: w,
					TotalWords:  totalWords,
					Percentage:  float64(w) / float64(totalWords) * 100,
				})
			}
		}
		return nil
	})
}

// ReadRegion reads length bytes of flash starting at the given byte
// offset. Offset and length must be even and inside the flash window.
func (p *Programmer) ReadRegion(ctx context.Context, offset, length int) ([]byte, error) {
	if offset < 0 || length < 0 || offset%2 != 0 || length%2 != 0 ||
		offset+length > protocol.FlashSize {
		return nil, &RangeError{Offset: offset, Length: length}
	}

	out := make([]byte, length)
	err := p.session(ctx, protocol.Mode{}, func() error {
		for i := 0; i < length; i += 2 {
			w := p.bus.Read16(protocol.WindowBase + uint32(offset+i))
			binary.LittleEndian.PutUint16(out[i:], w)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Dump reads the entire flash contents.
func (p *Programmer) Dump(ctx context.Context) ([]byte, error) {
	return p.ReadRegion(ctx, 0, protocol.FlashSize)
}

// Flash performs the complete reflash sequence:
//  1. Erase the chip
//  2. Blank-check the full array
//  3. Program the image word by word with read-back
//  4. Verify the full image against the device (unless disabled)
//
// The operation can be cancelled via context between words.
//
// Example:
//
//	img, _ := firmware.Load("firmware.frm")
//	err := prog.Flash(context.Background(), img)
func (p *Programmer) Flash(ctx context.Context, img *firmware.Image) error {
	if img == nil {
		return fmt.Errorf("image cannot be nil")
	}

	startTime := time.Now()
	digest := img.Digest()
	p.logInfo("flashing image",
		"bytes", len(img.Data),
		"sha256", fmt.Sprintf("%x", digest[:8]),
	)

	if err := p.EraseChip(ctx); err != nil {
		return fmt.Errorf("erase: %w", err)
	}
	if err := p.VerifyErased(ctx); err != nil {
		return fmt.Errorf("blank check: %w", err)
	}
	if err := p.Program(ctx, img.Data); err != nil {
		return fmt.Errorf("program: %w", err)
	}
	if p.config.VerifyAfterProgram {
		if err := p.Verify(ctx, img.Data); err != nil {
			return fmt.Errorf("post-program verify: %w", err)
		}
	}

	p.reportProgress(Progress{
		Phase:        PhaseComplete,
		CurrentWord:  len(img.Data) / 2,
		TotalWords:   len(img.Data) / 2,
		Percentage:   100,
		BytesWritten: len(img.Data),
		ElapsedTime:  time.Since(startTime),
	})
	p.logInfo("flash complete", "elapsed", time.Since(startTime).String())
	return nil
}

// sramPattern is the per-byte test value for TestSRAM.
func sramPattern(i uint32) byte {
	return byte(i ^ i*i ^ 0x5A)
}

// TestSRAM writes a pseudo-random pattern over the whole SRAM, reads
// it back and returns the number of mismatching bytes. SRAM contents
// are destroyed. The flash mapping and mode register are untouched.
func (p *Programmer) TestSRAM(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	release, err := hal.Claim(p.bus)
	if err != nil {
		return 0, err
	}
	defer release()

	for i := uint32(0); i < protocol.SRAMSize; i++ {
		p.bus.Write8(protocol.SRAMBase+i, sramPattern(i))
	}

	faults := 0
	for i := uint32(0); i < protocol.SRAMSize; i++ {
		if p.bus.Read8(protocol.SRAMBase+i) != sramPattern(i) {
			faults++
		}
	}

	if faults > 0 {
		p.logError("SRAM test found faults", "faults", faults)
	}
	return faults, nil
}

// reportProgress calls the progress callback if configured.
func (p *Programmer) reportProgress(progress Progress) {
	if p.config.ProgressCallback != nil {
		p.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (p *Programmer) logDebug(msg string, keysAndValues ...interface{}) {
	if p.config.Logger != nil {
		p.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (p *Programmer) logInfo(msg string, keysAndValues ...interface{}) {
	if p.config.Logger != nil {
		p.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (p *Programmer) logError(msg string, keysAndValues ...interface{}) {
	if p.config.Logger != nil {
		p.config.Logger.Error(msg, keysAndValues...)
	}
}
