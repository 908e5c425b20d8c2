package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"go/parser"
	"go/token"
	"path"
	"strconv"
	"strings"

	"github.com/getfoundry/unbrowse-mcp-sub003/internal/api"
	"github.com/getfoundry/unbrowse-mcp-sub003/internal/template"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// Sandbox executes ability request-construction logic with exactly one
// capability: the network-call primitive. Declaratively expressed abilities
// (URL template + header template + body template) never touch the
// interpreter; procedural logic runs inside a yaegi interpreter restricted to
// a pure-data package allow-list. No filesystem, process, environment or
// direct network access is reachable from interpreted code; the only way out
// is the injected call function.
type Sandbox struct {
	templates *template.Engine

	// allowedPackages is the import allow-list for interpreted logic.
	allowedPackages map[string]bool

	// symbols is the interpreter's stdlib surface, reduced to allowedPackages.
	symbols interp.Exports
}

// NewSandbox creates a sandbox for ability logic.
func NewSandbox() *Sandbox {
	allowed := map[string]bool{
		"strings":         true,
		"strconv":         true,
		"fmt":             true,
		"math":            true,
		"regexp":          true,
		"encoding/json":   true,
		"encoding/base64": true,
		"net/url":         true,
		"time":            true,
		"sort":            true,
		"bytes":           true,

		// Blocked by omission: os, os/exec, net, net/http, io/ioutil,
		// syscall, unsafe, plugin, reflect.
	}
	return &Sandbox{
		templates:       template.New(),
		allowedPackages: allowed,
		symbols:         restrictedSymbols(allowed),
	}
}

// abilityFunc is the contract procedural ability logic must satisfy: a
// package-level Run building and issuing the request through the injected
// call primitive.
type abilityFunc = func(params map[string]interface{}, call CallFn) (map[string]interface{}, error)

// Execute runs an ability's request construction against the call primitive.
// Returns the last upstream response the logic obtained, or an
// ExecutionFaultError when the logic failed before any response.
func (s *Sandbox) Execute(ctx context.Context, ability *api.Ability, params map[string]interface{}, primitive *callPrimitive) (*UpstreamResponse, error) {
	if ability.SourceCode == "" {
		return s.executeDeclarative(ctx, ability, params, primitive)
	}
	return s.executeProcedural(ctx, ability, params, primitive)
}

// executeDeclarative expands the ability's request templates and issues the
// one call they describe.
func (s *Sandbox) executeDeclarative(ctx context.Context, ability *api.Ability, params map[string]interface{}, primitive *callPrimitive) (*UpstreamResponse, error) {
	url, err := s.templates.ExpandURL(ability.URLTemplate, params)
	if err != nil {
		return nil, api.NewExecutionFaultError(err.Error())
	}

	var body string
	if len(ability.BodyTemplate) > 0 {
		expanded, err := s.templates.Replace(copyTemplate(ability.BodyTemplate), params)
		if err != nil {
			return nil, api.NewExecutionFaultError(err.Error())
		}
		encoded, err := json.Marshal(expanded)
		if err != nil {
			return nil, api.NewExecutionFaultError(fmt.Sprintf("failed to encode request body: %v", err))
		}
		body = string(encoded)
	}

	upstream, err := primitive.do(ctx, ability.Method, url, nil, body)
	if err != nil {
		return nil, classifyCallError(ctx, err)
	}
	return upstream, nil
}

// executeProcedural interprets the ability's source code with yaegi and waits
// for it, bounded by the context deadline. The interpreter goroutine holds no
// resources of its own: the in-flight network call is cancelled through the
// context, so every exit path releases deterministically.
func (s *Sandbox) executeProcedural(ctx context.Context, ability *api.Ability, params map[string]interface{}, primitive *callPrimitive) (*UpstreamResponse, error) {
	run, err := s.compile(ability.SourceCode)
	if err != nil {
		return nil, api.NewExecutionFaultError(err.Error())
	}

	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				errCh <- fmt.Errorf("ability logic panicked: %v", r)
			}
		}()
		_, runErr := run(params, primitive.asCallFn(ctx))
		errCh <- runErr
	}()

	select {
	case runErr := <-errCh:
		if runErr != nil {
			if upstream := primitive.lastResponse(); upstream != nil {
				// A response was obtained before the logic failed; classify
				// by status rather than masking it as a fault.
				return upstream, nil
			}
			return nil, api.NewExecutionFaultError(runErr.Error())
		}
	case <-ctx.Done():
		return nil, api.NewExecutionTimeoutError(ctx.Err().Error())
	}

	upstream := primitive.lastResponse()
	if upstream == nil {
		return nil, api.NewExecutionFaultError("ability logic completed without issuing a network call")
	}
	return upstream, nil
}

// compile validates and evaluates procedural source, returning the typed Run
// function.
func (s *Sandbox) compile(sourceCode string) (abilityFunc, error) {
	if err := s.validateImports(sourceCode); err != nil {
		return nil, err
	}

	i := interp.New(interp.Options{})
	if err := i.Use(s.symbols); err != nil {
		return nil, fmt.Errorf("failed to load interpreter stdlib: %w", err)
	}

	if _, err := i.Eval(wrapSource(sourceCode)); err != nil {
		return nil, fmt.Errorf("ability logic evaluation failed: %w", err)
	}

	v, err := i.Eval("main.Run")
	if err != nil {
		return nil, fmt.Errorf("ability logic does not define Run: %w", err)
	}
	run, ok := v.Interface().(abilityFunc)
	if !ok {
		return nil, fmt.Errorf("Run has incorrect signature (expected: func(map[string]interface{}, func(string, string, map[string]string, string) (map[string]interface{}, error)) (map[string]interface{}, error))")
	}
	return run, nil
}

// validateImports checks that interpreted code only imports allowed packages.
func (s *Sandbox) validateImports(code string) error {
	return checkImports(code, s.allowedPackages, "ability logic")
}

// checkImports parses the logic as Go source and rejects any import outside
// the allow-list. Parsing the real syntax tree matters: the interpreter
// accepts every spelling the Go grammar does, so anything short of a parse
// (line or prefix matching) can be sidestepped.
func checkImports(code string, allowed map[string]bool, what string) error {
	imports, err := extractImports(code)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", what, err)
	}

	var forbidden []string
	for _, pkg := range imports {
		if !allowed[pkg] {
			forbidden = append(forbidden, pkg)
		}
	}
	if len(forbidden) > 0 {
		return fmt.Errorf("forbidden imports in %s: %s", what, strings.Join(forbidden, ", "))
	}
	return nil
}

// extractImports returns the import paths of a piece of Go source.
func extractImports(code string) ([]string, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "logic.go", wrapSource(code), parser.ImportsOnly)
	if err != nil {
		return nil, err
	}

	var imports []string
	for _, spec := range file.Imports {
		pkg, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			return nil, fmt.Errorf("malformed import path %s", spec.Path.Value)
		}
		imports = append(imports, pkg)
	}
	return imports, nil
}

// restrictedSymbols reduces the interpreter's stdlib symbol table to the
// allowed packages. Import validation is the first gate; this is the second:
// an import that is never scanned still resolves to nothing inside the
// interpreter. Symbol table keys are "importPath/pkgName".
func restrictedSymbols(allowed map[string]bool) interp.Exports {
	restricted := make(interp.Exports, len(allowed))
	for key, symbols := range stdlib.Symbols {
		pkgPath := strings.TrimSuffix(key, "/"+path.Base(key))
		if allowed[pkgPath] {
			restricted[key] = symbols
		}
	}
	return restricted
}

// wrapSource wraps logic in a main package if it is not already.
func wrapSource(code string) string {
	if strings.Contains(code, "package main") {
		return code
	}
	return "package main\n\n" + code
}

// classifyCallError distinguishes a context-deadline abort from other
// transport failures.
func classifyCallError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return api.NewExecutionTimeoutError(ctx.Err().Error())
	}
	return api.NewExecutionFaultError(err.Error())
}

// copyTemplate shallow-converts the typed body template into the generic tree
// the template engine walks.
func copyTemplate(tmpl map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(tmpl))
	for k, v := range tmpl {
		out[k] = v
	}
	return out
}
