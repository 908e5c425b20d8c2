package api

import (
	"sync"
)

// Handler registry variables store the registered implementations.
// These variables are protected by handlerMutex for thread-safe access.
var (
	catalogHandler   AbilityCatalogHandler
	credStoreHandler CredentialStoreHandler
	executionHandler ExecutionHandler

	// handlerMutex protects all handler registry operations.
	handlerMutex sync.RWMutex
)

// RegisterAbilityCatalog registers the ability catalog handler implementation.
// Only one catalog handler can be registered at a time; subsequent
// registrations replace the previous handler.
//
// Thread-safe: Yes, protected by handlerMutex.
func RegisterAbilityCatalog(h AbilityCatalogHandler) {
	handlerMutex.Lock()
	defer handlerMutex.Unlock()
	catalogHandler = h
}

// GetAbilityCatalog returns the registered ability catalog handler, or nil if
// none has been registered yet.
func GetAbilityCatalog() AbilityCatalogHandler {
	handlerMutex.RLock()
	defer handlerMutex.RUnlock()
	return catalogHandler
}

// RegisterCredentialStore registers the credential store handler
// implementation. Only one store handler can be registered at a time;
// subsequent registrations replace the previous handler.
//
// Thread-safe: Yes, protected by handlerMutex.
func RegisterCredentialStore(h CredentialStoreHandler) {
	handlerMutex.Lock()
	defer handlerMutex.Unlock()
	credStoreHandler = h
}

// GetCredentialStore returns the registered credential store handler, or nil
// if none has been registered yet.
func GetCredentialStore() CredentialStoreHandler {
	handlerMutex.RLock()
	defer handlerMutex.RUnlock()
	return credStoreHandler
}

// RegisterExecution registers the execution engine handler implementation.
// Only one execution handler can be registered at a time; subsequent
// registrations replace the previous handler.
//
// Thread-safe: Yes, protected by handlerMutex.
func RegisterExecution(h ExecutionHandler) {
	handlerMutex.Lock()
	defer handlerMutex.Unlock()
	executionHandler = h
}

// GetExecution returns the registered execution handler, or nil if none has
// been registered yet.
func GetExecution() ExecutionHandler {
	handlerMutex.RLock()
	defer handlerMutex.RUnlock()
	return executionHandler
}
