// Package config loads and defaults the unbrowse configuration.
//
// Configuration lives in a single directory (default ~/.config/unbrowse)
// holding config.yaml, the abilities/ definition directory and the credential
// database. A missing config.yaml is not an error; defaults apply.
package config
