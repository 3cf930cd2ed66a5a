// Package services holds domain services that coordinate the order and
// driver aggregates.
//
// The package includes:
//   - OrderDispatcher: ranks eligible drivers first-available-first-served and
//     binds an order to one of them atomically at the aggregate level
package services
