// Package firmware handles SuperCard firmware images: loading them
// with the device size cap, validating the cart header and classifying
// images against a table of known firmware fingerprints.
//
// # Header Validity
//
// A bootable image starts with the standard cart header. Two checks
// gate acceptance:
//
//   - the SHA-256 digest of the 156-byte logo region at offset 0x4
//     must match the fixed logo fingerprint, and
//   - the complement checksum over bytes 0xA0..0xBC (seeded with 0x19)
//     must equal the byte stored at 0xBD.
//
// # Classification
//
// Identify compares the first 16 bytes of an image digest against a
// static table of known firmware fingerprints. The comparison is
// deliberately truncated to half the digest to keep the table compact;
// see Identify for the trade-off.
//
// # Usage
//
//	img, err := firmware.Load("superfw.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !img.ValidHeader() {
//	    log.Fatal("not a bootable firmware image")
//	}
//	if name, ok := firmware.Identify(img.Digest()); ok {
//	    fmt.Println("known image:", name)
//	}
package firmware
