package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/jonwraymond/dataexec/exec"
)

// mockFacade records the last dispatched call.
type mockFacade struct {
	lastOp   exec.Operation
	lastArgs map[string]any
	result   string
	err      error
}

func (m *mockFacade) Dispatch(_ context.Context, op exec.Operation, args map[string]any) (string, error) {
	m.lastOp = op
	m.lastArgs = args
	return m.result, m.err
}

func TestCatalog_Definitions(t *testing.T) {
	c := New(&mockFacade{})
	defs := c.Definitions()

	want := exec.Operations()
	if len(defs) != len(want) {
		t.Fatalf("Definitions() = %d tools, want %d", len(defs), len(want))
	}
	for i, def := range defs {
		if def.Name != string(want[i]) {
			t.Errorf("defs[%d].Name = %q, want %q", i, def.Name, want[i])
		}
		if def.Description == "" || def.Title == "" {
			t.Errorf("%s: missing title or description", def.Name)
		}
		if def.InputSchema["type"] != "object" {
			t.Errorf("%s: schema type = %v", def.Name, def.InputSchema["type"])
		}
		if def.Handler == nil {
			t.Errorf("%s: nil handler", def.Name)
		}
	}
}

func TestCatalog_RequiredArguments(t *testing.T) {
	c := New(&mockFacade{})
	tests := []struct {
		tool     string
		required []any
	}{
		{tool: "load_csv", required: []any{exec.ArgCSVPath}},
		{tool: "run_script", required: []any{exec.ArgScript}},
		{tool: "list_all_variables", required: nil},
	}
	for _, tt := range tests {
		def, ok := c.Lookup(tt.tool)
		if !ok {
			t.Fatalf("Lookup(%q) not found", tt.tool)
		}
		got, _ := def.InputSchema["required"].([]any)
		if len(got) != len(tt.required) {
			t.Errorf("%s required = %v, want %v", tt.tool, got, tt.required)
			continue
		}
		for i := range got {
			if got[i] != tt.required[i] {
				t.Errorf("%s required = %v, want %v", tt.tool, got, tt.required)
			}
		}
	}
}

func TestCatalog_ListTools(t *testing.T) {
	c := New(&mockFacade{})
	tools, err := c.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools() error = %v", err)
	}
	if len(tools) != 3 {
		t.Fatalf("ListTools() = %d tools, want 3", len(tools))
	}
	for _, tool := range tools {
		if tool.Namespace != Namespace {
			t.Errorf("%s namespace = %q, want %q", tool.Name, tool.Namespace, Namespace)
		}
		if tool.Annotations == nil {
			t.Errorf("%s has no annotations", tool.Name)
			continue
		}
		readOnly := tool.Name == "list_all_variables"
		if tool.Annotations.ReadOnlyHint != readOnly {
			t.Errorf("%s ReadOnlyHint = %v, want %v", tool.Name, tool.Annotations.ReadOnlyHint, readOnly)
		}
		if len(tool.Tags) == 0 {
			t.Errorf("%s has no tags", tool.Name)
		}
	}
}

func TestCatalog_Execute(t *testing.T) {
	tests := []struct {
		id   string
		want exec.Operation
	}{
		{id: "session:load_csv", want: exec.OpLoadCSV},
		{id: "run_script", want: exec.OpRunScript},
		{id: "session:list_all_variables", want: exec.OpListAllVariables},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			facade := &mockFacade{result: "ok"}
			c := New(facade)
			args := map[string]any{"k": "v"}

			got, err := c.Execute(context.Background(), tt.id, args)
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if got != "ok" {
				t.Errorf("Execute() = %q, want ok", got)
			}
			if facade.lastOp != tt.want {
				t.Errorf("dispatched %q, want %q", facade.lastOp, tt.want)
			}
			if facade.lastArgs["k"] != "v" {
				t.Errorf("args = %v, want passed through", facade.lastArgs)
			}
		})
	}
}

func TestCatalog_ExecuteErrors(t *testing.T) {
	c := New(&mockFacade{})
	tests := []struct {
		id   string
		want error
	}{
		{id: "", want: ErrInvalidToolID},
		{id: "a:b:c", want: ErrInvalidToolID},
		{id: "other:load_csv", want: ErrToolNotFound},
		{id: "session:drop_all", want: ErrToolNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			_, err := c.Execute(context.Background(), tt.id, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("Execute(%q) error = %v, want %v", tt.id, err, tt.want)
			}
		})
	}
}

func TestCatalog_ExecutePassesFacadeErrors(t *testing.T) {
	cause := &exec.Error{Category: exec.CategoryExecution, Message: "boom"}
	c := New(&mockFacade{err: cause})

	_, err := c.Execute(context.Background(), "session:run_script", nil)
	if err != cause {
		t.Errorf("Execute() error = %v, want the facade error unchanged", err)
	}
	if !errors.Is(err, exec.ErrExecution) {
		t.Errorf("Execute() error = %v, want ErrExecution", err)
	}
}

func TestFormatToolID(t *testing.T) {
	id := FormatToolID("run_script")
	if id != "session:run_script" {
		t.Fatalf("FormatToolID() = %q", id)
	}
	ns, name, err := ParseToolID(id)
	if err != nil || ns != Namespace || name != "run_script" {
		t.Errorf("ParseToolID(%q) = %q, %q, %v", id, ns, name, err)
	}
}
