// Package sim provides an in-memory SuperCard model implementing
// hal.Bus, for testing and bring-up without hardware.
//
// The model reproduces the cart's observable behavior at the bus
// level:
//
//   - the mode register latches only after the double magic-then-value
//     write sequence; any other pattern resets the latch,
//   - flash command cycles are decoded at the permuted unlock
//     addresses and only while write access is enabled,
//   - a busy chip answers status reads with an alternating DQ6 toggle
//     bit until the operation completes,
//   - programming can only clear bits (AND semantics); setting a bit
//     back requires a chip erase.
//
// Word programming completes after a configurable number of status
// reads. Chip erase completes after a configurable number of Tick
// calls, so tests drive erase time deterministically by injecting
// Cart.Tick as the programmer's erase tick. StickBusy makes the chip
// never finish, for timeout tests.
package sim
