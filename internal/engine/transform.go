package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/getfoundry/unbrowse-mcp-sub003/pkg/logging"

	"github.com/traefik/yaegi/interp"
)

// Transformer runs caller-supplied post-processing logic against the parsed
// response body. The transform sandbox is stricter than the ability sandbox:
// no call primitive is injected and the import allow-list is reduced to pure
// data manipulation, so transformed responses can never trigger further
// network activity.
type Transformer struct {
	allowedPackages map[string]bool
	symbols         interp.Exports
}

// NewTransformer creates the transform sandbox.
func NewTransformer() *Transformer {
	allowed := map[string]bool{
		"strings":       true,
		"strconv":       true,
		"fmt":           true,
		"math":          true,
		"sort":          true,
		"encoding/json": true,
	}
	return &Transformer{
		allowedPackages: allowed,
		symbols:         restrictedSymbols(allowed),
	}
}

// transformFunc is the contract transform logic must satisfy.
type transformFunc = func(data interface{}) (interface{}, error)

// Apply runs the transform against the body. A transform failure never fails
// the overall execution: the caller always receives something usable, either
// the transformed value or an envelope pairing the error with the untouched
// original body.
func (t *Transformer) Apply(ctx context.Context, transformCode string, body interface{}) interface{} {
	transformed, err := t.run(ctx, transformCode, body)
	if err != nil {
		logging.Warn("Engine", "Transform failed, returning original body: %v", err)
		return map[string]interface{}{
			"_transform_error": err.Error(),
			"_original_data":   body,
		}
	}
	return transformed
}

func (t *Transformer) run(ctx context.Context, transformCode string, body interface{}) (interface{}, error) {
	if err := checkImports(transformCode, t.allowedPackages, "transform"); err != nil {
		return nil, err
	}

	i := interp.New(interp.Options{})
	if err := i.Use(t.symbols); err != nil {
		return nil, fmt.Errorf("failed to load interpreter stdlib: %w", err)
	}
	if _, err := i.Eval(wrapSource(transformCode)); err != nil {
		return nil, fmt.Errorf("transform evaluation failed: %w", err)
	}

	v, err := i.Eval("main.Transform")
	if err != nil {
		return nil, fmt.Errorf("transform does not define Transform: %w", err)
	}
	transform, ok := v.Interface().(transformFunc)
	if !ok {
		return nil, fmt.Errorf("Transform has incorrect signature (expected: func(interface{}) (interface{}, error))")
	}

	type outcome struct {
		value interface{}
		err   error
	}
	resultCh := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- outcome{err: fmt.Errorf("transform panicked: %v", r)}
			}
		}()
		value, err := transform(body)
		resultCh <- outcome{value: value, err: err}
	}()

	select {
	case result := <-resultCh:
		if result.err != nil {
			return nil, result.err
		}
		// Sanity check: the result must survive serialization, since it
		// becomes the response body.
		if _, err := json.Marshal(result.value); err != nil {
			return nil, fmt.Errorf("transform returned unserializable value: %v", err)
		}
		return result.value, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("transform timed out: %w", ctx.Err())
	}
}
