// Package models defines the core domain models for the SAFE builder.
//
// # Models
//
//   - User: a natural person acting as investor or founder signatory
//   - Fund: an investing entity owned by one investor User
//   - Company: a startup owned by one founder User
//   - Investment: the central SAFE transaction record
//   - Entity: a Fund or Company tagged with its kind, for reuse pickers
//
// # Design Principles
//
//  1. **Incremental records**: Investment foreign keys are filled in across
//     the three wizard steps, so they are pointers that may stay nil.
//  2. **Explicit relations**: joined query results use tagged structs with
//     optional fields (InvestmentWithRelations), never untyped maps.
//  3. **Soft natural keys**: Users are matched by email, Funds/Companies by
//     (name, owner) — filtered in queries, not enforced by constraints.
package models
