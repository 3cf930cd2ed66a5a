// Package kernel provides the value objects shared by every aggregate of the
// dispatch domain.
//
// The package includes:
//   - UUID: identifier for orders, drivers, users, restaurants and menu items
//   - Money: a non-negative amount in minor currency units with overflow-checked
//     arithmetic
//
// Both are immutable and safe to copy. Their zero values are either invalid
// (UUID) or a meaningful zero (Money).
package kernel
