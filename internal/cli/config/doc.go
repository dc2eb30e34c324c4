// Package config defines the kci-cli configuration (~/.kci/cli.yaml).
//
// Values are layered with confloader: flags over KCI_* environment
// variables over the YAML file over Default().
package config
