// Package hotkey parses accelerator strings and registers them as global
// hotkeys, dispatching presses by action id.
package hotkey

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Action is the numeric id a hotkey is registered under.
type Action int

const (
	ActionCommonQuestion Action = 1
	ActionCorrection     Action = 2
	ActionTranslation    Action = 3
	ActionVariableNames  Action = 4
)

// Actions lists every action in registration order.
var Actions = []Action{ActionCommonQuestion, ActionCorrection, ActionTranslation, ActionVariableNames}

func (a Action) String() string {
	switch a {
	case ActionCommonQuestion:
		return "common-question"
	case ActionCorrection:
		return "correction"
	case ActionTranslation:
		return "translation"
	case ActionVariableNames:
		return "variable-names"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Fallback returns the binding used when the configured accelerator does not
// parse.
func (a Action) Fallback() Binding {
	switch a {
	case ActionCommonQuestion:
		return Binding{Modifiers: ModAlt, Key: '1'}
	case ActionCorrection:
		return Binding{Modifiers: ModAlt, Key: '2'}
	case ActionTranslation:
		return Binding{Modifiers: ModAlt, Key: '3'}
	default:
		return Binding{Modifiers: ModAlt, Key: '4'}
	}
}

// Resolve parses accel for action, falling back to the action's default.
func Resolve(action Action, accel string) Binding {
	b, err := Parse(accel)
	if err != nil {
		fb := action.Fallback()
		slog.Warn("invalid hotkey, using default",
			"action", action, "hotkey", accel, "default", fb, "error", err)
		return fb
	}
	return b
}

// Handler receives the action whose hotkey was pressed.
// It runs on the hotkey loop and must not block.
type Handler func(Action)

// registration is one resolved hotkey.
type registration struct {
	action  Action
	binding Binding
}

func resolveAll(accels map[Action]string) []registration {
	regs := make([]registration, 0, len(accels))
	for action, accel := range accels {
		regs = append(regs, registration{action: action, binding: Resolve(action, accel)})
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].action < regs[j].action })
	return regs
}

// RegisterError lists the hotkeys the OS refused. Hotkeys not listed remain
// registered.
type RegisterError struct {
	Failed map[Action]error
}

func (e *RegisterError) Error() string {
	actions := make([]Action, 0, len(e.Failed))
	for a := range e.Failed {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })

	var b strings.Builder
	b.WriteString("register hotkeys:")
	for _, a := range actions {
		fmt.Fprintf(&b, " %s (%v);", a, e.Failed[a])
	}
	return strings.TrimSuffix(b.String(), ";")
}

// ErrClosed is returned by Register after Close.
var ErrClosed = errors.New("hotkey manager closed")
