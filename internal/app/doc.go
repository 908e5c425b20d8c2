// Package app bootstraps the unbrowse process: it loads configuration,
// initializes logging, wires the ability catalog, credential store and
// execution engine together, registers them with the api handler registry and
// runs the MCP server until interrupted.
package app
