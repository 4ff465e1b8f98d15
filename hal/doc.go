// Package hal is the hardware access boundary between the flash
// protocol logic and the physical cart.
//
// The library never touches memory-mapped registers directly; all
// accesses go through the Bus interface. Production code uses MemBus,
// which maps the cart windows from /dev/mem. Tests and demos use the
// sim package, which implements the same interface over an in-memory
// cart model with real mode-latch and unlock-sequence semantics.
//
// The cart bus is shared between two processors, with exactly one
// owner at a time. Acquire/Release model that ownership; Claim wraps
// the pair for use with defer so the bus is released on every exit
// path:
//
//	release, err := hal.Claim(bus)
//	if err != nil {
//	    return err
//	}
//	defer release()
package hal
