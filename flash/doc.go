// Package flash programs SuperCard NOR flash through a hal.Bus.
//
// The Programmer drives the full reflash sequence: it claims the cart
// bus, enables write access through the mode register, issues JEDEC
// command cycles at the permuted unlock addresses and polls the DQ6
// toggle bit for completion. Every operation restores the cart to
// read-only flash mapping and releases the bus before returning, on
// success and on failure alike.
//
// # Basic usage
//
//	bus, err := hal.NewMemBus()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	prog := flash.New(bus)
//
//	img, err := firmware.Load("firmware.frm")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := prog.Flash(context.Background(), img); err != nil {
//	    log.Fatal(err)
//	}
//
// # Progress tracking
//
//	prog := flash.New(bus,
//	    flash.WithProgressCallback(func(p flash.Progress) {
//	        fmt.Printf("[%s] %.1f%%\n", p.Phase, p.Percentage)
//	    }),
//	)
//
// # Error handling
//
// Failures surface as typed errors that callers can inspect with
// errors.As:
//
//   - *TimeoutError: the chip never reported completion within the
//     polling budget
//   - *VerifyError: a device word does not match the expected value
//   - *ImageError: the image cannot be programmed as given
//
// # Testing
//
// sim.Cart implements hal.Bus with a full behavioral model, so every
// operation here can be exercised without hardware. See the package
// tests and examples/simulated.
package flash
