// Package api defines the shared types, error taxonomy and handler registry
// that decouple unbrowse's subsystems from each other.
//
// # Architecture
//
// Subsystems never import each other directly. Each one registers its handler
// implementation here during startup (service locator pattern), and consumers
// fetch the interface they need:
//
//	api.RegisterCredentialStore(store)
//	...
//	creds := api.GetCredentialStore()
//
// # Error Taxonomy
//
// Every failure mode the engine can surface has a typed error in this package:
// NotFoundError, ValidationError, MissingCredentialsError, DecryptionError and
// ExecutionFaultError. Components return these by value across boundaries
// rather than throwing; the server surface maps them onto result envelopes.
// Upstream HTTP failures (auth and server errors) are not errors in this
// taxonomy: they are classified states of a completed execution attempt and
// live on ExecutionResult.
//
// None of the error messages ever carry secret material, decrypted credential
// values or ability source code.
package api
