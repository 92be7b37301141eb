// Package kernel provides the shared primitives of the ordering domain.
//
// The package includes:
//   - UUID: a validated identifier value object used for orders, companies and users
//   - Clock: the source of "now" for every time based rule (validation cooldown,
//     edit lock expiry), replaceable in tests
//
// UUID values are immutable and safe for concurrent use.
package kernel
