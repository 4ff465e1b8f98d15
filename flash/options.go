package flash

import (
	"time"

	"github.com/superfw/go-scflash/protocol"
)

// Config holds the programmer configuration.
type Config struct {
	// ProgressCallback is called during flash operations to report progress (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// EraseBudget is the number of toggle-bit probes before a chip
	// erase is declared timed out
	EraseBudget int

	// ProgramBudget is the number of toggle-bit probes before a word
	// program is declared timed out
	ProgramBudget int

	// EraseTick runs between erase status probes. The default sleeps
	// one millisecond, so the default budget allows about a minute.
	EraseTick func()

	// VerifyAfterProgram enables a full read-back comparison after
	// programming in Flash
	VerifyAfterProgram bool

	// ResetCycles is the length of the reset preamble issued to recover
	// a chip left mid-sequence
	ResetCycles int

	// ProgressStride is how many words pass between progress reports in
	// the long word loops
	ProgressStride int
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		EraseBudget:        protocol.EraseBudget,
		ProgramBudget:      protocol.ProgramBudget,
		EraseTick:          func() { time.Sleep(time.Millisecond) },
		VerifyAfterProgram: true,
		ResetCycles:        protocol.ResetCycles,
		ProgressStride:     2048,
	}
}

// Option is a functional option for configuring the Programmer.
type Option func(*Config)

// WithProgressCallback sets a callback function to track operation progress.
//
// Example:
//
//	prog := flash.New(bus,
//	    flash.WithProgressCallback(func(p flash.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the programmer operations.
//
// Example:
//
//	prog := flash.New(bus, flash.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithEraseBudget sets the number of toggle-bit probes allowed for a
// chip erase.
//
// Example:
//
//	prog := flash.New(bus, flash.WithEraseBudget(120000))
func WithEraseBudget(probes int) Option {
	return func(c *Config) {
		if probes > 0 {
			c.EraseBudget = probes
		}
	}
}

// WithProgramBudget sets the number of toggle-bit probes allowed for a
// single word program.
//
// Example:
//
//	prog := flash.New(bus, flash.WithProgramBudget(65536))
func WithProgramBudget(probes int) Option {
	return func(c *Config) {
		if probes > 0 {
			c.ProgramBudget = probes
		}
	}
}

// WithEraseTick sets the function run between erase status probes.
// Simulated carts advance their erase timer here.
//
// Example:
//
//	cart := sim.NewCart()
//	prog := flash.New(cart, flash.WithEraseTick(cart.Tick))
func WithEraseTick(tick func()) Option {
	return func(c *Config) {
		if tick != nil {
			c.EraseTick = tick
		}
	}
}

// WithResetCycles sets the length of the reset preamble.
//
// Example:
//
//	prog := flash.New(bus, flash.WithResetCycles(64))
func WithResetCycles(cycles int) Option {
	return func(c *Config) {
		if cycles > 0 {
			c.ResetCycles = cycles
		}
	}
}

// WithProgressInterval sets how many words pass between progress
// reports during programming and verification.
//
// Example:
//
//	prog := flash.New(bus, flash.WithProgressInterval(512))
func WithProgressInterval(words int) Option {
	return func(c *Config) {
		if words > 0 {
			c.ProgressStride = words
		}
	}
}

// WithVerifyAfterProgram enables or disables the full read-back
// comparison at the end of Flash. Default is true.
//
// Example:
//
//	prog := flash.New(bus, flash.WithVerifyAfterProgram(false))
func WithVerifyAfterProgram(verify bool) Option {
	return func(c *Config) {
		c.VerifyAfterProgram = verify
	}
}
