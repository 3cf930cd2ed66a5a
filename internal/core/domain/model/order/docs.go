// Package order implements the order aggregate and its lifecycle state
// machine.
//
// The package includes:
//   - Order: the aggregate root holding status, driver, items and totals
//   - Status: placed, accepted, ready_for_pickup, out_for_delivery, delivered,
//     cancelled
//   - Action and the transition table mapping (status, action, role) to the
//     next status
//   - Item: an order line with its captured unit price
//   - StatusChanged: the domain event recorded by every transition
//
// Key business rules:
//   - only edges listed in the transition table exist; everything else fails
//     with errs.ErrInvalidTransition and leaves the order unchanged
//   - ownership is checked before the state machine: customers act on their
//     own orders, restaurant staff on their restaurant's, drivers on orders
//     assigned to them
//   - the total is computed once at creation and re-verified on restore
package order
