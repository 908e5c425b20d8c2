// Package engine implements the ability execution pipeline.
//
// One execution runs through a fixed sequence:
//
//  1. Credential resolution: the ability's dynamic header keys
//     ("domain::header" tokens) are resolved against the credential store and
//     decrypted. Any unresolved token fails the execution before a single
//     byte leaves the process.
//  2. Header composition: static (ability-defined), dynamic (resolved
//     credential) and in-sandbox-supplied headers merge under a fixed
//     precedence, Cookie values concatenate across layers, and a versioned
//     deny-list of transport-managed headers is stripped last.
//  3. Sandboxed execution: the ability's request construction runs with
//     exactly one capability, the network-call primitive. Declarative
//     abilities expand request templates; procedural ones run interpreted
//     inside yaegi behind an import allow-list.
//  4. Failure recovery: 401–499 marks the credential scope expired and
//     surfaces login-ability suggestions; 5xx and sandbox faults pass through
//     untouched as caller-retryable failures.
//  5. Transformation: optional caller-supplied logic runs in a second,
//     network-less sandbox; its failure never fails the call.
//  6. Shaping: the body is serialized and truncated with a length-disclosing
//     marker when it exceeds the configured maximum.
//
// Decrypted credentials and ability source code stay inside this package; no
// result, log line or error message carries either.
package engine
