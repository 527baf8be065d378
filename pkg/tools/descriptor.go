package tools

// Tool names as the model addresses them.
const (
	ToolComputer = "computer"
	ToolBash     = "bash"
	ToolEditor   = "str_replace_based_edit_tool"
)

// Versioned type tags the wire protocol attaches to each capability.
const (
	TypeComputer = "computer_20251124"
	TypeBash     = "bash_20250124"
	TypeEditor   = "text_editor_20250728"
)

// Descriptor advertises one tool capability to the remote service: its
// name, versioned type tag, argument schema, and tool-specific parameters
// such as display dimensions for the computer tool.
type Descriptor struct {
	Name          string
	Type          string
	Description   string
	InputSchema   map[string]any
	DisplayWidth  int
	DisplayHeight int
}

// computerSchema describes the computer tool's argument shape for the given
// display size.
func computerSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type": "string",
				"enum": []any{
					"screenshot", "key", "type", "mouse_move",
					"left_click", "right_click", "middle_click",
					"double_click", "triple_click", "left_click_drag",
					"scroll", "cursor_position", "wait",
				},
				"description": "The action to perform.",
			},
			"text": map[string]any{
				"type":        "string",
				"description": "Text to type, or an X11 key combo such as ctrl+shift+t.",
			},
			"coordinate": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "integer"},
				"description": "Target [x, y] pixel coordinate.",
			},
			"start_coordinate": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "integer"},
				"description": "Drag origin [x, y] pixel coordinate.",
			},
			"scroll_direction": map[string]any{
				"type": "string",
				"enum": []any{"up", "down", "left", "right"},
			},
			"scroll_amount": map[string]any{"type": "integer"},
			"duration":      map[string]any{"type": "number"},
		},
		"required": []any{"action"},
	}
}

func bashSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"command": map[string]any{
				"type":        "string",
				"description": "The shell command to run.",
			},
			"restart": map[string]any{
				"type":        "boolean",
				"description": "Discard shell state and start a fresh session.",
			},
		},
	}
}

func editorSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"command": map[string]any{
				"type": "string",
				"enum": []any{"view", "str_replace", "create", "insert"},
			},
			"path":        map[string]any{"type": "string"},
			"view_range":  map[string]any{"type": "array", "items": map[string]any{"type": "integer"}},
			"old_str":     map[string]any{"type": "string"},
			"new_str":     map[string]any{"type": "string"},
			"file_text":   map[string]any{"type": "string"},
			"insert_line": map[string]any{"type": "integer"},
			"insert_text": map[string]any{"type": "string"},
		},
		"required": []any{"command", "path"},
	}
}
