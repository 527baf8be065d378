package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harun/juru/pkg/computer"
	"github.com/harun/juru/pkg/shell"
	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"
)

// Dispatcher is the static mapping from tool name to executor. It holds the
// long-lived executor handles for the life of a run and is otherwise
// stateless; all side effects live in the executors. An unknown tool name
// yields an error outcome, never a panic past this boundary.
type Dispatcher struct {
	shell    *shell.Session
	editor   *Editor
	computer computer.Driver
	schemas  map[string]*gojsonschema.Schema
	logger   zerolog.Logger
}

// Config wires the dispatcher's executors.
type Config struct {
	Shell    *shell.Session
	Editor   *Editor
	Computer computer.Driver
	Logger   zerolog.Logger
}

// NewDispatcher creates a dispatcher and compiles the argument schema for
// each routed tool.
func NewDispatcher(cfg Config) (*Dispatcher, error) {
	if cfg.Shell == nil {
		return nil, fmt.Errorf("shell session is required")
	}
	if cfg.Editor == nil {
		return nil, fmt.Errorf("editor is required")
	}
	if cfg.Computer == nil {
		return nil, fmt.Errorf("computer driver is required")
	}

	schemas := make(map[string]*gojsonschema.Schema)
	for name, raw := range map[string]map[string]any{
		ToolComputer: computerSchema(),
		ToolBash:     bashSchema(),
		ToolEditor:   editorSchema(),
	} {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema for %s: %w", name, err)
		}
		schemas[name] = schema
	}

	return &Dispatcher{
		shell:    cfg.Shell,
		editor:   cfg.Editor,
		computer: cfg.Computer,
		schemas:  schemas,
		logger:   cfg.Logger,
	}, nil
}

// Descriptors returns the capability descriptors advertised to the remote
// service, including the computer tool's display dimensions.
func (d *Dispatcher) Descriptors() []Descriptor {
	width, height := d.computer.Size()
	return []Descriptor{
		{
			Name:          ToolComputer,
			Type:          TypeComputer,
			Description:   "Interact with the screen, mouse, and keyboard. Coordinates are (x, y) pixels from the top-left corner.",
			InputSchema:   computerSchema(),
			DisplayWidth:  width,
			DisplayHeight: height,
		},
		{
			Name:        ToolBash,
			Type:        TypeBash,
			Description: "Run commands in a persistent bash session. Directory and environment changes carry across calls.",
			InputSchema: bashSchema(),
		},
		{
			Name:        ToolEditor,
			Type:        TypeEditor,
			Description: "View, create, and edit files relative to the working directory.",
			InputSchema: editorSchema(),
		},
	}
}

// Dispatch routes one tool call. Tool failures of any kind come back as
// error outcomes so the conversation loop can report them and continue.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args map[string]any) Outcome {
	start := time.Now()

	schema, ok := d.schemas[name]
	if !ok {
		d.logger.Warn().Str("tool", name).Msg("Unknown tool requested")
		return Errorf("unknown tool: %s", name)
	}

	if outcome, ok := validate(schema, args); !ok {
		return outcome
	}

	var outcome Outcome
	switch name {
	case ToolComputer:
		outcome = d.dispatchComputer(ctx, args)
	case ToolBash:
		outcome = d.dispatchBash(args)
	case ToolEditor:
		outcome = d.dispatchEditor(args)
	}

	event := d.logger.Info()
	if outcome.IsError() {
		event = d.logger.Warn().Str("error", outcome.Error)
	}
	event.
		Str("tool", name).
		Dur("elapsed", time.Since(start)).
		Bool("image", outcome.Image != "").
		Msg("Tool call finished")

	return outcome
}

// Close releases the executors that own external resources: the shell's
// child process and the display driver.
func (d *Dispatcher) Close() {
	d.shell.Close()
	if err := d.computer.Close(); err != nil {
		d.logger.Warn().Err(err).Msg("Failed to close display driver")
	}
}

// validate checks args against the tool's schema. It returns ok=false with
// a failed outcome describing every violation.
func validate(schema *gojsonschema.Schema, args map[string]any) (Outcome, bool) {
	result, err := schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return Errorf("invalid tool arguments: %v", err), false
	}
	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			messages = append(messages, desc.String())
		}
		return Errorf("invalid tool arguments: %s", strings.Join(messages, "; ")), false
	}
	return Outcome{}, true
}

func (d *Dispatcher) dispatchComputer(ctx context.Context, args map[string]any) Outcome {
	var act computer.Action
	if err := decodeArgs(args, &act); err != nil {
		return Errorf("invalid computer arguments: %v", err)
	}

	d.logger.Info().Str("action", act.Action).Ints("coordinate", act.Coordinate).Msg("Computer action")

	result, err := d.computer.Do(ctx, act)
	if err != nil {
		return Outcome{Error: err.Error()}
	}
	return Outcome{Output: result.Output, Image: result.Image}
}

func (d *Dispatcher) dispatchBash(args map[string]any) Outcome {
	if restart, _ := args["restart"].(bool); restart {
		d.logger.Info().Msg("Bash restart requested")
		out, err := d.shell.Restart()
		if err != nil {
			return Outcome{Error: err.Error()}
		}
		return Outcome{Output: out}
	}

	command, _ := args["command"].(string)
	if strings.TrimSpace(command) == "" {
		return Errorf("command is required")
	}

	d.logger.Info().Str("command", command).Msg("Bash command")

	out, err := d.shell.Execute(command, 0)
	if err != nil {
		return Outcome{Error: err.Error()}
	}
	return Outcome{Output: out}
}

func (d *Dispatcher) dispatchEditor(args map[string]any) Outcome {
	var params struct {
		Command    string `json:"command"`
		Path       string `json:"path"`
		ViewRange  []int  `json:"view_range"`
		OldStr     string `json:"old_str"`
		NewStr     string `json:"new_str"`
		FileText   string `json:"file_text"`
		InsertLine int    `json:"insert_line"`
		InsertText string `json:"insert_text"`
	}
	if err := decodeArgs(args, &params); err != nil {
		return Errorf("invalid editor arguments: %v", err)
	}

	d.logger.Info().Str("command", params.Command).Str("path", params.Path).Msg("Editor command")

	var out string
	var err error
	switch params.Command {
	case "view":
		out, err = d.editor.View(params.Path, params.ViewRange)
	case "str_replace":
		out, err = d.editor.StrReplace(params.Path, params.OldStr, params.NewStr)
	case "create":
		out, err = d.editor.Create(params.Path, params.FileText)
	case "insert":
		out, err = d.editor.Insert(params.Path, params.InsertLine, params.InsertText)
	default:
		return Errorf("unknown editor command %q", params.Command)
	}
	if err != nil {
		return Outcome{Error: err.Error()}
	}
	return Outcome{Output: out}
}

// decodeArgs converts loosely-typed tool arguments into a typed struct via
// a JSON round trip, matching how they arrived on the wire.
func decodeArgs(args map[string]any, dst any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
