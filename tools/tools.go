// Package tools describes the session operations as MCP-shaped tools and
// routes tool calls to the session facade.
package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/toolfoundation/model"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/dataexec/exec"
)

// Namespace is the namespace every catalog tool is listed under.
const Namespace = "session"

// Common errors for catalog operations.
var (
	ErrInvalidToolID = errors.New("invalid tool ID format")
	ErrToolNotFound  = errors.New("tool not found")
)

// Facade is the part of exec.Exec the catalog calls.
type Facade interface {
	Dispatch(ctx context.Context, op exec.Operation, args map[string]any) (string, error)
}

// HandlerFunc is the function signature for tool handlers.
type HandlerFunc func(ctx context.Context, args map[string]any) (string, error)

// ToolDef defines a tool with its handler.
type ToolDef struct {
	Name        string
	Title       string
	Description string
	InputSchema map[string]any
	Annotations *mcp.ToolAnnotations
	Tags        []string
	Handler     HandlerFunc
}

// Catalog holds the fixed set of session tools.
// It is immutable after New and safe for concurrent use.
type Catalog struct {
	defs  []ToolDef
	byKey map[string]ToolDef
}

// New creates the catalog of session tools backed by facade.
func New(facade Facade) *Catalog {
	defs := definitions(facade)
	byKey := make(map[string]ToolDef, len(defs))
	for _, def := range defs {
		byKey[def.Name] = def
	}
	return &Catalog{defs: defs, byKey: byKey}
}

// Definitions returns the tool definitions in operation order.
func (c *Catalog) Definitions() []ToolDef {
	out := make([]ToolDef, len(c.defs))
	copy(out, c.defs)
	return out
}

// Lookup returns the definition of the named tool.
func (c *Catalog) Lookup(name string) (ToolDef, bool) {
	def, ok := c.byKey[name]
	return def, ok
}

// ListTools returns the catalog as tools in the session namespace.
func (c *Catalog) ListTools(_ context.Context) ([]model.Tool, error) {
	out := make([]model.Tool, 0, len(c.defs))
	for _, def := range c.defs {
		out = append(out, model.Tool{
			Tool: mcp.Tool{
				Name:        def.Name,
				Title:       def.Title,
				Description: def.Description,
				InputSchema: def.InputSchema,
				Annotations: def.Annotations,
			},
			Namespace: Namespace,
			Tags:      model.NormalizeTags(def.Tags),
		})
	}
	return out, nil
}

// Execute invokes a tool by ID. Both "session:<name>" and a bare name are
// accepted. Errors from the facade are returned unchanged, so callers can
// still match exec.ErrLoad and exec.ErrExecution.
func (c *Catalog) Execute(ctx context.Context, toolID string, args map[string]any) (string, error) {
	namespace, name, err := ParseToolID(toolID)
	if err != nil {
		return "", err
	}
	if namespace != "" && namespace != Namespace {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, toolID)
	}
	def, ok := c.byKey[name]
	if !ok || def.Handler == nil {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, toolID)
	}
	return def.Handler(ctx, args)
}

// ParseToolID splits a tool ID into namespace and tool name.
func ParseToolID(id string) (namespace, name string, err error) {
	namespace, name, err = model.ParseToolID(id)
	if err != nil {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidToolID, id)
	}
	return namespace, name, nil
}

// FormatToolID builds a tool ID in the session namespace.
func FormatToolID(name string) string {
	return Namespace + ":" + name
}

func dispatcher(facade Facade, op exec.Operation) HandlerFunc {
	return func(ctx context.Context, args map[string]any) (string, error) {
		return facade.Dispatch(ctx, op, args)
	}
}
