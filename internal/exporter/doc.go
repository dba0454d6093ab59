// Package exporter flattens computed metric tables into CSV files and
// Excel workbooks under the configured reports directory. Undefined
// rates are rendered as empty cells so they never collapse into zero.
package exporter
