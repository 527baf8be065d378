// Package computer exposes the pointer/keyboard/screen driver behind a
// small interface so the dispatcher stays independent of any particular
// display backend. The shipped backend drives a Chrome page over CDP.
package computer

import (
	"context"
	"fmt"
)

// Action names mirror the wire-level computer tool action space.
const (
	ActionScreenshot     = "screenshot"
	ActionKey            = "key"
	ActionType           = "type"
	ActionMouseMove      = "mouse_move"
	ActionLeftClick      = "left_click"
	ActionRightClick     = "right_click"
	ActionMiddleClick    = "middle_click"
	ActionDoubleClick    = "double_click"
	ActionTripleClick    = "triple_click"
	ActionLeftClickDrag  = "left_click_drag"
	ActionScroll         = "scroll"
	ActionCursorPosition = "cursor_position"
	ActionWait           = "wait"
)

// Action is one decoded computer tool invocation.
type Action struct {
	Action          string  `json:"action"`
	Text            string  `json:"text,omitempty"`
	Coordinate      []int   `json:"coordinate,omitempty"`
	StartCoordinate []int   `json:"start_coordinate,omitempty"`
	ScrollDirection string  `json:"scroll_direction,omitempty"`
	ScrollAmount    int     `json:"scroll_amount,omitempty"`
	Duration        float64 `json:"duration,omitempty"`
}

// Result is what an action produced: optional text output and an optional
// base64-encoded PNG still frame.
type Result struct {
	Output string
	Image  string
}

// Driver executes pointer, keyboard, and screen-capture actions against one
// display. Implementations own coordinate mapping between the wire
// coordinate space and the physical one.
type Driver interface {
	// Do performs a single action. Invalid arguments and out-of-bounds
	// coordinates surface as errors; the caller converts them to error
	// outcomes rather than aborting the run.
	Do(ctx context.Context, act Action) (Result, error)

	// Size returns the width and height of the coordinate space the remote
	// service should address, in pixels.
	Size() (width, height int)

	// Close releases the underlying display resources.
	Close() error
}

// point validates a two-element coordinate pair.
func point(coordinate []int) (x, y int, err error) {
	if len(coordinate) != 2 {
		return 0, 0, fmt.Errorf("coordinate must be [x, y], got %v", coordinate)
	}
	return coordinate[0], coordinate[1], nil
}
