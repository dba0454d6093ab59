// Package dataset loads the raw marketplace CSV exports and converts
// them into the typed records consumed by the analytics package.
//
// The package handles three tables: order items, products, and orders.
// Headers are matched case-insensitively and accept both the short
// canonical names and the long-form names of the upstream export. A
// table missing a required column fails the whole load with a
// SchemaError listing every absent column; individual malformed rows
// are skipped and logged instead.
package dataset
