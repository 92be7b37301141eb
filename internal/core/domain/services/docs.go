// Package services provides domain services for rules that span more than a
// single aggregate or need collaborators the aggregate must not know about.
//
// The package includes:
//   - TransitionGuard: who may move an order along which edge, and when
//   - DocumentMatcher: deterministic correlation of DMS documents with orders
//
// Both are pure: they read the aggregates they are given and never persist.
package services
