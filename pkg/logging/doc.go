// Package logging provides a structured logging system for unbrowse with unified
// log handling and level filtering.
//
// The package wraps Go's standard slog package. Every log call names the
// subsystem it originates from so that log lines from the execution engine,
// the catalog, the credential store and the server surface can be told apart:
//
//	logging.Init(logging.LevelInfo, os.Stderr)
//	logging.Info("Engine", "executing ability %s", abilityID)
//	logging.Error("CredStore", err, "failed to expire credentials for %s", domain)
//
// Log levels follow the usual Debug/Info/Warn/Error ladder; entries below the
// configured filter level are dropped by the slog handler.
package logging
