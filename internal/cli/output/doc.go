// Package output renders kci-cli results.
//
//   - formatter.go: Formatter interface and format parsing
//   - table.go: reflective table rendering; fields tagged table:"wide"
//     only appear in wide mode
//   - json.go, yaml.go: machine-readable output
//   - spinner.go: progress animation on a terminal while a request runs
package output
