// Command scflash flashes, verifies and inspects SuperCard firmware
// from the console of the host system.
//
// Real hardware access goes through /dev/mem, so most commands need
// root. The --sim flag swaps in an in-memory cart, which is handy for
// trying the tool out:
//
//	scflash --sim write firmware.frm --force
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/sigurn/crc16"

	"github.com/superfw/go-scflash/firmware"
	"github.com/superfw/go-scflash/flash"
	"github.com/superfw/go-scflash/hal"
	"github.com/superfw/go-scflash/protocol"
	"github.com/superfw/go-scflash/sha2"
	"github.com/superfw/go-scflash/sim"
)

var cli struct {
	Sim     bool `help:"Use an in-memory simulated cart instead of real hardware."`
	Verbose bool `short:"v" help:"Enable debug logging."`

	Identify IdentifyCmd `cmd:"" help:"Read the flash manufacturer and device IDs."`
	Erase    EraseCmd    `cmd:"" help:"Erase the whole flash chip and blank-check it."`
	Write    WriteCmd    `cmd:"" help:"Erase the chip and program a firmware image."`
	Dump     DumpCmd     `cmd:"" help:"Read flash contents into a file."`
	Verify   VerifyCmd   `cmd:"" help:"Compare flash contents against an image file."`
	Hash     HashCmd     `cmd:"" help:"Print the SHA-256 of the flash contents (or a file) and classify it."`
	SramTest SramTestCmd `cmd:"" name:"sram-test" help:"Pattern-test the battery-backed SRAM."`
}

// app carries the wired-up programmer into command Run methods.
type app struct {
	prog  *flash.Programmer
	close func()
}

// consoleLogger prints programmer logs, with debug lines gated behind
// --verbose.
type consoleLogger struct {
	verbose bool
}

func kvString(kv []interface{}) string {
	var b strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	return b.String()
}

func (l *consoleLogger) Debug(msg string, kv ...interface{}) {
	if l.verbose {
		color.HiBlack("debug: %s%s", msg, kvString(kv))
	}
}

func (l *consoleLogger) Info(msg string, kv ...interface{}) {
	fmt.Printf("%s%s\n", msg, kvString(kv))
}

func (l *consoleLogger) Error(msg string, kv ...interface{}) {
	color.Red("%s%s", msg, kvString(kv))
}

// progressPrinter renders a single updating status line per phase.
func progressPrinter() flash.ProgressCallback {
	lastPhase := ""
	return func(p flash.Progress) {
		if p.Phase != lastPhase && lastPhase != "" {
			fmt.Println()
		}
		lastPhase = p.Phase

		if p.TotalWords > 0 {
			fmt.Printf("\r%-12s %5.1f%% (%d/%d words)",
				p.Phase, p.Percentage, p.CurrentWord, p.TotalWords)
		} else {
			fmt.Printf("\r%-12s", p.Phase)
		}
		if p.Phase == flash.PhaseComplete {
			fmt.Println()
		}
	}
}

func newApp() (*app, error) {
	opts := []flash.Option{
		flash.WithLogger(&consoleLogger{verbose: cli.Verbose}),
		flash.WithProgressCallback(progressPrinter()),
	}

	if cli.Sim {
		cart := sim.NewCart()
		opts = append(opts, flash.WithEraseTick(cart.Tick))
		return &app{
			prog:  flash.New(cart, opts...),
			close: func() {},
		}, nil
	}

	bus, err := hal.NewMemBus()
	if err != nil {
		return nil, err
	}
	return &app{
		prog:  flash.New(bus, opts...),
		close: func() { _ = bus.Close() },
	}, nil
}

// opContext is cancelled on Ctrl-C so a long program loop stops
// between words with the cart restored to read-only mode.
func opContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func integrityLine(data []byte) string {
	digest := sha2.Sum256(data)
	crc := crc16.Checksum(data, crc16.MakeTable(crc16.CRC16_CCITT_FALSE))
	return fmt.Sprintf("sha256 %x  crc16 %04X", digest, crc)
}

type IdentifyCmd struct{}

func (c *IdentifyCmd) Run(a *app) error {
	ctx, stop := opContext()
	defer stop()

	id, err := a.prog.Identify(ctx)
	if err != nil {
		return err
	}
	color.Cyan("manufacturer 0x%04X  device 0x%04X", id.Manufacturer, id.Device)
	return nil
}

type EraseCmd struct{}

func (c *EraseCmd) Run(a *app) error {
	ctx, stop := opContext()
	defer stop()

	if err := a.prog.EraseChip(ctx); err != nil {
		return fmt.Errorf("erase: %w", err)
	}
	if err := a.prog.VerifyErased(ctx); err != nil {
		return fmt.Errorf("blank check: %w", err)
	}
	fmt.Println()
	color.Green("chip erased and blank")
	return nil
}

type WriteCmd struct {
	Image string `arg:"" type:"existingfile" help:"Firmware image to program."`
	Force bool   `help:"Program even if the image has no valid header."`
}

func (c *WriteCmd) Run(a *app) error {
	ctx, stop := opContext()
	defer stop()

	img, err := firmware.Load(c.Image)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d bytes\n", c.Image, len(img.Data))
	fmt.Println(integrityLine(img.Data))
	if name, ok := firmware.Identify(img.Digest()); ok {
		color.Cyan("recognized image: %s", name)
	}

	if !img.ValidHeader() {
		if !c.Force {
			return fmt.Errorf("image has no valid header; use --force to program it anyway")
		}
		color.Yellow("warning: image has no valid header")
	}

	if err := a.prog.Flash(ctx, img); err != nil {
		fmt.Println()
		return err
	}
	color.Green("flash successful")
	return nil
}

type DumpCmd struct {
	Output string `arg:"" help:"Destination file."`
	Offset int    `default:"0" help:"Byte offset into flash (word aligned)."`
	Length int    `default:"${flashsize}" help:"Number of bytes to read (word aligned)."`
}

func (c *DumpCmd) Run(a *app) error {
	ctx, stop := opContext()
	defer stop()

	data, err := a.prog.ReadRegion(ctx, c.Offset, c.Length)
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.Output, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %d bytes to %s\n", len(data), c.Output)
	fmt.Println(integrityLine(data))
	return nil
}

type VerifyCmd struct {
	Image string `arg:"" type:"existingfile" help:"Image file to compare against."`
}

func (c *VerifyCmd) Run(a *app) error {
	ctx, stop := opContext()
	defer stop()

	img, err := firmware.Load(c.Image)
	if err != nil {
		return err
	}
	if err := a.prog.Verify(ctx, img.Data); err != nil {
		return err
	}
	fmt.Println()
	color.Green("flash matches %s", c.Image)
	return nil
}

type HashCmd struct {
	File string `arg:"" optional:"" type:"existingfile" help:"Hash a local file instead of the device."`
}

func (c *HashCmd) Run(a *app) error {
	ctx, stop := opContext()
	defer stop()

	var data []byte
	var err error
	if c.File != "" {
		data, err = os.ReadFile(c.File)
	} else {
		data, err = a.prog.Dump(ctx)
	}
	if err != nil {
		return err
	}
	digest := sha2.Sum256(data)
	fmt.Printf("sha256 %x\n", digest)

	if name, ok := firmware.Identify(digest); ok {
		color.Cyan("firmware: %s", name)
	} else {
		color.Yellow("firmware: unknown")
	}
	return nil
}

type SramTestCmd struct{}

func (c *SramTestCmd) Run(a *app) error {
	ctx, stop := opContext()
	defer stop()

	faults, err := a.prog.TestSRAM(ctx)
	if err != nil {
		return err
	}
	if faults > 0 {
		return fmt.Errorf("SRAM test found %d faulty bytes", faults)
	}
	color.Green("SRAM OK (%d bytes)", protocol.SRAMSize)
	return nil
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("scflash"),
		kong.Description("SuperCard firmware flasher."),
		kong.UsageOnError(),
		kong.Vars{"flashsize": fmt.Sprint(protocol.FlashSize)},
	)

	a, err := newApp()
	if err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
	defer a.close()

	if err := ctx.Run(a); err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
}
