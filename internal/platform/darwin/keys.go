package darwin

import (
	"fmt"
	"strings"
)

// Modifier masks from CGEventTypes.h.
const (
	flagShift   uint64 = 1 << 17
	flagControl uint64 = 1 << 18
	flagOption  uint64 = 1 << 19
	flagCommand uint64 = 1 << 20
	flagFn      uint64 = 1 << 23
)

// keyStroke is one virtual key press with its modifier flags.
type keyStroke struct {
	Code  uint16
	Flags uint64
}

// Virtual key codes from Carbon Events.h (ANSI layout).
var keyCodes = map[string]uint16{
	"a": 0x00, "b": 0x0B, "c": 0x08, "d": 0x02, "e": 0x0E, "f": 0x03,
	"g": 0x05, "h": 0x04, "i": 0x22, "j": 0x26, "k": 0x28, "l": 0x25,
	"m": 0x2E, "n": 0x2D, "o": 0x1F, "p": 0x23, "q": 0x0C, "r": 0x0F,
	"s": 0x01, "t": 0x11, "u": 0x20, "v": 0x09, "w": 0x0D, "x": 0x07,
	"y": 0x10, "z": 0x06,
	"0": 0x1D, "1": 0x12, "2": 0x13, "3": 0x14, "4": 0x15,
	"5": 0x17, "6": 0x16, "7": 0x1A, "8": 0x1C, "9": 0x19,
	"-": 0x1B, "=": 0x18, ",": 0x2B, ".": 0x2F, "/": 0x2C,
	";": 0x29, "'": 0x27, "[": 0x21, "]": 0x1E, "`": 0x32, "\\": 0x2A,
	"return": 0x24, "enter": 0x24, "tab": 0x30, "space": 0x31,
	"delete": 0x33, "backspace": 0x33, "forwarddelete": 0x75, "del": 0x75,
	"escape": 0x35, "esc": 0x35,
	"up": 0x7E, "down": 0x7D, "left": 0x7B, "right": 0x7C,
	"home": 0x73, "end": 0x77,
	"pageup": 0x74, "pgup": 0x74, "pagedown": 0x79, "pgdn": 0x79,
	"f1": 0x7A, "f2": 0x78, "f3": 0x63, "f4": 0x76, "f5": 0x60, "f6": 0x61,
	"f7": 0x62, "f8": 0x64, "f9": 0x65, "f10": 0x6D, "f11": 0x67, "f12": 0x6F,
}

// Shifted symbols resolve to shift plus their base key.
var shiftedKeys = map[string]string{
	"+": "=", "_": "-", "<": ",", ">": ".", "?": "/", ":": ";", "\"": "'",
	"{": "[", "}": "]", "~": "`", "|": "\\",
	"!": "1", "@": "2", "#": "3", "$": "4", "%": "5",
	"^": "6", "&": "7", "*": "8", "(": "9", ")": "0",
}

var modifierFlags = map[string]uint64{
	"cmd": flagCommand, "command": flagCommand, "meta": flagCommand, "super": flagCommand,
	"shift": flagShift,
	"ctrl": flagControl, "control": flagControl,
	"alt": flagOption, "opt": flagOption, "option": flagOption,
	"fn": flagFn,
}

// parseKeyCombo resolves key names such as ["cmd", "shift", "t"] into a
// single stroke. Exactly one non-modifier key is required.
func parseKeyCombo(keys []string) (keyStroke, error) {
	var ks keyStroke
	found := false
	for _, raw := range keys {
		k := strings.ToLower(strings.TrimSpace(raw))
		if k == "" {
			continue
		}
		if flag, ok := modifierFlags[k]; ok {
			ks.Flags |= flag
			continue
		}
		if found {
			return keyStroke{}, fmt.Errorf("key combo has more than one key: %q", keys)
		}
		if base, ok := shiftedKeys[k]; ok {
			k = base
			ks.Flags |= flagShift
		}
		code, ok := keyCodes[k]
		if !ok {
			return keyStroke{}, fmt.Errorf("unknown key: %q", raw)
		}
		ks.Code = code
		found = true
	}
	if !found {
		return keyStroke{}, fmt.Errorf("no key specified in combo, only modifiers")
	}
	return ks, nil
}
