package computer

import (
	"fmt"
	"strings"

	"github.com/go-rod/rod/lib/input"
)

// keyMap translates the X11 key names the remote service emits into CDP
// keys. Modifier aliases collapse onto their left-hand variants.
var keyMap = map[string]input.Key{
	"return":    input.Enter,
	"enter":     input.Enter,
	"tab":       input.Tab,
	"space":     input.Space,
	"backspace": input.Backspace,
	"delete":    input.Delete,
	"escape":    input.Escape,
	"super":     input.MetaLeft,
	"super_l":   input.MetaLeft,
	"super_r":   input.MetaRight,
	"cmd":       input.MetaLeft,
	"ctrl":      input.ControlLeft,
	"control_l": input.ControlLeft,
	"control_r": input.ControlRight,
	"alt":       input.AltLeft,
	"alt_l":     input.AltLeft,
	"alt_r":     input.AltRight,
	"shift":     input.ShiftLeft,
	"shift_l":   input.ShiftLeft,
	"shift_r":   input.ShiftRight,
	"up":        input.ArrowUp,
	"down":      input.ArrowDown,
	"left":      input.ArrowLeft,
	"right":     input.ArrowRight,
	"home":      input.Home,
	"end":       input.End,
	"page_up":   input.PageUp,
	"page_down": input.PageDown,
	"f1":        input.F1,
	"f2":        input.F2,
	"f3":        input.F3,
	"f4":        input.F4,
	"f5":        input.F5,
	"f6":        input.F6,
	"f7":        input.F7,
	"f8":        input.F8,
	"f9":        input.F9,
	"f10":       input.F10,
	"f11":       input.F11,
	"f12":       input.F12,
	"minus":     input.Minus,
	"equal":     input.Equal,
	"comma":     input.Comma,
	"period":    input.Period,
	"slash":     input.Slash,
	"semicolon": input.Semicolon,
	"a":         input.KeyA,
	"b":         input.KeyB,
	"c":         input.KeyC,
	"d":         input.KeyD,
	"e":         input.KeyE,
	"f":         input.KeyF,
	"g":         input.KeyG,
	"h":         input.KeyH,
	"i":         input.KeyI,
	"j":         input.KeyJ,
	"k":         input.KeyK,
	"l":         input.KeyL,
	"m":         input.KeyM,
	"n":         input.KeyN,
	"o":         input.KeyO,
	"p":         input.KeyP,
	"q":         input.KeyQ,
	"r":         input.KeyR,
	"s":         input.KeyS,
	"t":         input.KeyT,
	"u":         input.KeyU,
	"v":         input.KeyV,
	"w":         input.KeyW,
	"x":         input.KeyX,
	"y":         input.KeyY,
	"z":         input.KeyZ,
	"0":         input.Digit0,
	"1":         input.Digit1,
	"2":         input.Digit2,
	"3":         input.Digit3,
	"4":         input.Digit4,
	"5":         input.Digit5,
	"6":         input.Digit6,
	"7":         input.Digit7,
	"8":         input.Digit8,
	"9":         input.Digit9,
}

// mapKey resolves a single X11 key name.
func mapKey(name string) (input.Key, error) {
	key, ok := keyMap[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unrecognized key %q", name)
	}
	return key, nil
}

// parseCombo splits a combo like "ctrl+shift+t" into CDP keys, modifiers
// first in the order written.
func parseCombo(combo string) ([]input.Key, error) {
	parts := strings.Split(combo, "+")
	keys := make([]input.Key, 0, len(parts))
	for _, part := range parts {
		key, err := mapKey(part)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("empty key combo")
	}
	return keys, nil
}
