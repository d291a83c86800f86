package command

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps command names and aliases to commands.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
	aliases  map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
		aliases:  make(map[string]string),
	}
}

// Register adds cmd. Names and aliases are case-insensitive and must be unique.
func (r *Registry) Register(cmd Command) error {
	name := strings.ToLower(cmd.Help().Name)
	if name == "" {
		return fmt.Errorf("command has no name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.taken(name) {
		return fmt.Errorf("command %q already registered", name)
	}
	aliases := make([]string, 0, len(cmd.Config().Aliases))
	for _, a := range cmd.Config().Aliases {
		a = strings.ToLower(a)
		if a == name || r.taken(a) {
			return fmt.Errorf("alias %q of command %q already registered", a, name)
		}
		aliases = append(aliases, a)
	}
	r.commands[name] = cmd
	for _, a := range aliases {
		r.aliases[a] = name
	}
	return nil
}

func (r *Registry) taken(name string) bool {
	_, isCmd := r.commands[name]
	_, isAlias := r.aliases[name]
	return isCmd || isAlias
}

// Lookup resolves a name or alias. Disabled commands are not found.
func (r *Registry) Lookup(name string) (Command, bool) {
	name = strings.ToLower(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if target, ok := r.aliases[name]; ok {
		name = target
	}
	cmd, ok := r.commands[name]
	if !ok || !cmd.Config().Enabled {
		return nil, false
	}
	return cmd, true
}

// Commands returns all registered commands sorted by name.
func (r *Registry) Commands() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Help().Name < out[j].Help().Name })
	return out
}
