package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// Action is what a key press means in a scope.
type Action string

// Binding maps keys to an action within scopes.
type Binding struct {
	Action Action
	Keys   []string
	Help   string
	Scopes []string
}

// KeyRegistry resolves key names to actions per screen scope, falling back
// to the global scope.
type KeyRegistry struct {
	bindingsByScope map[string][]*Binding
	indexByScope    map[string]map[string]*Binding
}

const (
	scopeGlobal    = "global"
	scopeMenu      = "menu"
	scopePicker    = "picker"
	scopePrompt    = "prompt"
	scopeExecuting = "executing"
	scopeResult    = "result"
)

const (
	actionQuit     Action = "quit"
	actionNext     Action = "next"
	actionPrev     Action = "prev"
	actionJumpNext Action = "jump_next"
	actionJumpPrev Action = "jump_prev"
	actionConfirm  Action = "confirm"
	actionYes      Action = "yes"
	actionNo       Action = "no"
)

// NewKeyRegistry returns the default bindings.
func NewKeyRegistry() *KeyRegistry {
	r := &KeyRegistry{
		bindingsByScope: make(map[string][]*Binding),
		indexByScope:    make(map[string]map[string]*Binding),
	}

	reg := func(scope string, action Action, keys []string, help string) {
		r.Register(Binding{Action: action, Keys: keys, Help: help, Scopes: []string{scope}})
	}

	reg(scopeGlobal, actionQuit, []string{"q", "ctrl+c"}, "quit")

	reg(scopeMenu, actionNext, []string{"j", "down"}, "down")
	reg(scopeMenu, actionPrev, []string{"k", "up"}, "up")
	reg(scopeMenu, actionConfirm, []string{"enter", "space"}, "select")
	reg(scopeMenu, actionQuit, []string{"q", "ctrl+c"}, "quit")

	reg(scopePicker, actionNext, []string{"j", "down"}, "down")
	reg(scopePicker, actionPrev, []string{"k", "up"}, "up")
	reg(scopePicker, actionJumpNext, []string{"l", "right", "pgdown"}, "page down")
	reg(scopePicker, actionJumpPrev, []string{"h", "left", "pgup"}, "page up")
	reg(scopePicker, actionConfirm, []string{"enter", "space"}, "open/select")
	reg(scopePicker, actionQuit, []string{"q", "ctrl+c"}, "quit")

	reg(scopePrompt, actionYes, []string{"y", "enter"}, "yes")
	reg(scopePrompt, actionNo, []string{"n", "esc"}, "no")
	reg(scopePrompt, actionQuit, []string{"q", "ctrl+c"}, "quit")

	reg(scopeResult, actionConfirm, []string{"enter", "space"}, "main menu")
	reg(scopeResult, actionQuit, []string{"q", "ctrl+c"}, "quit")

	return r
}

// Register adds b to each of its scopes. Keys already bound in a scope
// keep their first binding.
func (r *KeyRegistry) Register(b Binding) {
	if r == nil {
		return
	}
	for _, scope := range b.Scopes {
		scope = strings.TrimSpace(scope)
		if scope == "" || len(b.Keys) == 0 {
			continue
		}
		if _, ok := r.indexByScope[scope]; !ok {
			r.indexByScope[scope] = make(map[string]*Binding)
		}
		normKeys := normalizeKeyList(b.Keys)
		if len(normKeys) == 0 || r.scopeHasAnyKey(scope, normKeys) {
			continue
		}

		copyBinding := b
		copyBinding.Keys = normKeys
		copyBinding.Scopes = []string{scope}
		r.bindingsByScope[scope] = append(r.bindingsByScope[scope], &copyBinding)
		for _, k := range copyBinding.Keys {
			r.indexByScope[scope][k] = &copyBinding
		}
	}
}

func (r *KeyRegistry) BindingsForScope(scope string) []Binding {
	if r == nil {
		return nil
	}
	items := r.bindingsByScope[scope]
	out := make([]Binding, 0, len(items))
	for _, b := range items {
		out = append(out, *b)
	}
	return out
}

// Lookup finds the binding for keyName in scope, then in the global scope.
func (r *KeyRegistry) Lookup(keyName, scope string) *Binding {
	if r == nil || keyName == "" {
		return nil
	}
	keyName = normalizeKeyName(keyName)
	if b := r.lookupInScope(keyName, scope); b != nil {
		return b
	}
	if scope != scopeGlobal {
		return r.lookupInScope(keyName, scopeGlobal)
	}
	return nil
}

// HelpBindings converts a scope's bindings for bubbles/help.
func (r *KeyRegistry) HelpBindings(scope string) []key.Binding {
	items := r.BindingsForScope(scope)
	out := make([]key.Binding, 0, len(items))
	for _, b := range items {
		out = append(out, key.NewBinding(key.WithKeys(b.Keys...), key.WithHelp(helpKey(b.Keys), b.Help)))
	}
	return out
}

func helpKey(keys []string) string {
	if len(keys) > 1 && len(keys[0]) == 1 && len(keys[1]) > 1 {
		return keys[0] + "/" + keys[1]
	}
	return keys[0]
}

func (r *KeyRegistry) lookupInScope(keyName, scope string) *Binding {
	lookup, ok := r.indexByScope[scope]
	if !ok {
		return nil
	}
	return lookup[keyName]
}

func (r *KeyRegistry) scopeHasAnyKey(scope string, keys []string) bool {
	lookup := r.indexByScope[scope]
	for _, k := range keys {
		if _, exists := lookup[k]; exists {
			return true
		}
	}
	return false
}

func normalizeKeyList(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]bool)
	for _, k := range keys {
		n := normalizeKeyName(k)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func normalizeKeyName(k string) string {
	if k == " " {
		return "space"
	}
	trimmed := strings.TrimSpace(k)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) == 1 {
		ch := trimmed[0]
		if ch >= 'A' && ch <= 'Z' {
			return trimmed
		}
	}
	s := strings.ToLower(trimmed)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "control+", "ctrl+")
	s = strings.ReplaceAll(s, "return", "enter")
	s = strings.ReplaceAll(s, "pagedown", "pgdown")
	s = strings.ReplaceAll(s, "pageup", "pgup")
	return s
}
