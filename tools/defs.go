package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/dataexec/exec"
)

const loadCSVDescription = `Load CSV File Tool

Purpose:
Load a local CSV file into a dataframe.

Usage Notes:
	- If a df_name is not provided, the tool will automatically assign names sequentially as df_1, df_2, and so on.
	- Loading into an existing name replaces that dataframe.`

const runScriptDescription = `Lua Script Execution Tool

Purpose:
Execute Lua scripts for specific data analytics tasks.

Every loaded dataframe is available as a global under its name. The frame,
stats and num libraries are available, e.g. df_1:head(), df_1:groupby("region", "sum"),
stats.mean(df_1.units), num.linspace(0, 1, 5).

Allowed Actions
	1. Print Results: Output will be displayed as the script's stdout.
	2. [Optional] Save DataFrames: Store dataframes in memory for future use by listing their global names in save_to_memory.

Prohibited Actions
	1. Overwriting Original DataFrames: Do not modify existing dataframes to preserve their integrity for future tasks.
	2. Creating Charts: Chart generation is not permitted.`

const listDescription = `List all dataframes in the current session, rendered as tables.`

func boolPtr(b bool) *bool { return &b }

func definitions(facade Facade) []ToolDef {
	return []ToolDef{
		{
			Name:        string(exec.OpLoadCSV),
			Title:       "Load CSV",
			Description: loadCSVDescription,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					exec.ArgCSVPath: map[string]any{
						"type":        "string",
						"description": "Path of the CSV file to load.",
					},
					exec.ArgDFName: map[string]any{
						"type":        "string",
						"description": "Name to store the dataframe under. Defaults to the next df_N.",
					},
				},
				"required": []any{exec.ArgCSVPath},
			},
			Annotations: &mcp.ToolAnnotations{
				Title:           "Load CSV",
				DestructiveHint: boolPtr(false),
				OpenWorldHint:   boolPtr(false),
			},
			Tags:    []string{"data", "csv", "load"},
			Handler: dispatcher(facade, exec.OpLoadCSV),
		},
		{
			Name:        string(exec.OpRunScript),
			Title:       "Run script",
			Description: runScriptDescription,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					exec.ArgScript: map[string]any{
						"type":        "string",
						"description": "Lua source to execute.",
					},
					exec.ArgSaveToMemory: map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Globals to save as dataframes after a successful run.",
					},
				},
				"required": []any{exec.ArgScript},
			},
			Annotations: &mcp.ToolAnnotations{
				Title:           "Run script",
				DestructiveHint: boolPtr(false),
				OpenWorldHint:   boolPtr(false),
			},
			Tags:    []string{"data", "script", "lua"},
			Handler: dispatcher(facade, exec.OpRunScript),
		},
		{
			Name:        string(exec.OpListAllVariables),
			Title:       "List variables",
			Description: listDescription,
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
			Annotations: &mcp.ToolAnnotations{
				Title:          "List variables",
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(false),
			},
			Tags:    []string{"data", "list"},
			Handler: dispatcher(facade, exec.OpListAllVariables),
		},
	}
}
