// Package server exposes the ability execution engine over the Model Context
// Protocol.
//
// The server publishes four tools: unbrowse_execute runs one ability end to
// end, unbrowse_list and unbrowse_search discover catalog entries, and
// unbrowse_credential_store encrypts and persists a credential for later
// injection. Handlers reach the catalog, credential store and engine through
// the api handler registry, so the server carries no business logic of its
// own.
//
// Two transports are supported: stdio (the default, for editor-embedded
// clients) and streamable HTTP.
package server
