// Package confloader loads layered configuration with koanf.
//
// Priority (highest to lowest):
//
//  1. Command-line flags (LoadMap after Load)
//  2. Environment variables (KCI_SECTION_KEY)
//  3. Configuration file (YAML)
//  4. Default values
//
// An environment variable's first underscore after the prefix separates
// the section from the key, so KCI_HTTP_RATE_LIMIT maps to
// http.rate_limit and KCI_SERVER maps to server.
package confloader
