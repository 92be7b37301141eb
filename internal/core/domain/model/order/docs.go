// Package order provides the Order aggregate root of the ordering service and
// the lifecycle state machine it follows.
//
// The package includes:
//   - Order: identity, owning company, lines, derived totals, DMS references
//   - Item: an order line with quantity, unit price, optional VAT rate and availability
//   - Status: the state machine Pending -> Validated -> Preparation -> Shipped -> Invoiced,
//     with Pending -> Cancelled as the only side exit
//
// Key business rules:
//   - An order has at least one line and belongs to exactly one company
//   - Status only moves along a defined edge, one edge at a time
//   - Content changes are only accepted while Pending
//   - Delivery note and invoice numbers are write-once
//
// Who may take an edge, the validation cooldown and edit locks are not decided
// here; see the services package and the edit lock coordinator.
package order
