// Package permissions infers whether the process currently holds the OS grants
// needed for screen capture and input control.
//
// The checks are heuristics: a facility that can be instantiated is treated as
// granted. Nothing is cached because grants change while the process runs.
package permissions

import (
	"fmt"

	"github.com/pluxuryv8/astra-bridge/internal/platform"
)

const (
	Granted   = "granted"
	Denied    = "denied"
	Available = "available"
	Blocked   = "blocked"

	MessageOK       = "Permissions OK"
	MessageRequired = "Permissions required: Screen Recording and Accessibility"
)

// Status is the result of one probe.
type Status struct {
	ScreenRecording string `json:"screen_recording" yaml:"screen_recording"`
	Accessibility   string `json:"accessibility"    yaml:"accessibility"`
	InputControl    string `json:"input_control"    yaml:"input_control"`
	Message         string `json:"message"          yaml:"message"`
}

// Prober runs the permission checks. A nil check reports the facility as denied.
type Prober struct {
	ScreenCheck        func() error
	AccessibilityCheck func() error
}

// NewProber returns a Prober backed by the platform checker.
func NewProber(c platform.PermissionChecker) *Prober {
	if c == nil {
		return &Prober{}
	}
	return &Prober{
		ScreenCheck:        c.ScreenRecording,
		AccessibilityCheck: c.Accessibility,
	}
}

// Probe queries the OS and composes a fresh Status.
func (p *Prober) Probe() Status {
	screenOK := check(p.ScreenCheck) == nil
	accessOK := check(p.AccessibilityCheck) == nil

	s := Status{
		ScreenRecording: grant(screenOK),
		Accessibility:   grant(accessOK),
		InputControl:    Blocked,
		Message:         MessageRequired,
	}
	if accessOK {
		s.InputControl = Available
	}
	if screenOK && accessOK {
		s.Message = MessageOK
	}
	return s
}

func grant(ok bool) string {
	if ok {
		return Granted
	}
	return Denied
}

// check runs fn, treating a missing check or a panicking one as denial.
func check(fn func() error) (err error) {
	if fn == nil {
		return fmt.Errorf("check not available")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("check panicked: %v", r)
		}
	}()
	return fn()
}
