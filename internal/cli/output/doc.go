// Package output renders pagegate-cli results.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: key/value and columnar tables
//   - encode.go: JSON and YAML (gopkg.in/yaml.v3)
package output
