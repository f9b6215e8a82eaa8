// Package taxlot turns a broker's raw transaction history into the realized
// gains and losses a tax filing requires. It is designed to be local-first and
// auditable: the same input always reproduces the same report, and nothing is
// silently recovered that would change realized totals.
//
// The core functionalities include:
//   - Tax-Lot Matching: Tracking open positions per instrument and matching
//     closing transactions against opening lots in strict first-in-first-out
//     order, with exact decimal arithmetic throughout.
//   - Corporate Actions: Mutating lots for reverse splits, symbol changes and
//     stock mergers without realizing gains, so holding periods and cost
//     bases survive events the broker reports as fictitious trades.
//   - Asset Classification: A rule table mapping symbols to tax categories
//     and partial-exemption percentages; rules are data, so another
//     jurisdiction is a table change, not an architecture change.
//   - Yearly Aggregation: Folding realized trades and money movements into
//     the per-year buckets the filing forms ask for, including the option
//     netting differential and partial-exemption fund profits.
//
// This package serves as the foundational logic for the `twt` command-line
// tool.
package taxlot
