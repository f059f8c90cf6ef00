package eventsocket

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"
)

// Action is a named administrative command with validated arguments.
type Action interface {
	Definition() ActionDefinition
	Command(args []string) (string, error)
}

// ActionDefinition describes an action to API clients.
type ActionDefinition struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Params      []string `json:"params,omitempty"`
}

// Catalog manages a collection of actions.
type Catalog struct {
	mu      sync.RWMutex
	actions map[string]Action
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		actions: make(map[string]Action),
	}
}

// DefaultCatalog returns a catalog with the status and reload actions the
// admin backend triggers after editing configuration.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	c.Add(NewTemplateAction(ActionDefinition{
		Name:        "status",
		Description: "Engine uptime and session counters",
	}, "status"))
	c.Add(NewTemplateAction(ActionDefinition{
		Name:        "reloadxml",
		Description: "Reload the XML configuration",
	}, "reloadxml"))
	c.Add(NewTemplateAction(ActionDefinition{
		Name:        "reload-acl",
		Description: "Reload access control lists",
	}, "reloadacl"))
	c.Add(NewTemplateAction(ActionDefinition{
		Name:        "sofia-status",
		Description: "SIP profile and gateway status",
	}, "sofia status"))
	c.Add(NewTemplateAction(ActionDefinition{
		Name:        "sofia-rescan",
		Description: "Pick up new gateways on a SIP profile",
		Params:      []string{"profile"},
	}, "sofia profile {profile} rescan"))
	c.Add(NewTemplateAction(ActionDefinition{
		Name:        "queue-reload",
		Description: "Reload a call center queue",
		Params:      []string{"queue"},
	}, "callcenter_config queue reload {queue}"))
	c.Add(NewTemplateAction(ActionDefinition{
		Name:        "show-channels",
		Description: "List active channels",
	}, "show channels"))
	c.Add(NewTemplateAction(ActionDefinition{
		Name:        "show-calls",
		Description: "List active calls",
	}, "show calls"))
	return c
}

// Add registers an action, replacing any with the same name.
func (c *Catalog) Add(action Action) {
	def := action.Definition()
	c.mu.Lock()
	c.actions[def.Name] = action
	c.mu.Unlock()
}

// Get retrieves an action by name.
func (c *Catalog) Get(name string) (Action, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	action, ok := c.actions[name]
	return action, ok
}

// Definitions returns all action definitions sorted by name.
func (c *Catalog) Definitions() []ActionDefinition {
	c.mu.RLock()
	defs := make([]ActionDefinition, 0, len(c.actions))
	for _, action := range c.actions {
		defs = append(defs, action.Definition())
	}
	c.mu.RUnlock()

	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Run builds the named action's command and executes it.
func (c *Catalog) Run(ctx context.Context, exec Executor, name string, args ...string) (Result, error) {
	action, ok := c.Get(name)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrActionNotFound, name)
		return Result{OK: false, Output: err.Error()}, err
	}
	command, err := action.Command(args)
	if err != nil {
		return Result{OK: false, Output: err.Error()}, err
	}
	return exec.Run(ctx, command)
}

// TemplateAction fills {param} placeholders of a fixed command template.
type TemplateAction struct {
	def      ActionDefinition
	template string
}

// NewTemplateAction creates an action from a definition and template.
func NewTemplateAction(def ActionDefinition, template string) *TemplateAction {
	return &TemplateAction{def: def, template: template}
}

// Definition returns the action definition.
func (a *TemplateAction) Definition() ActionDefinition {
	return a.def
}

// Command substitutes args, in Params order, into the template. Each
// argument must be a single non-empty token.
func (a *TemplateAction) Command(args []string) (string, error) {
	if len(args) != len(a.def.Params) {
		return "", fmt.Errorf("%w: %s takes %d argument(s), got %d",
			ErrInvalidArgument, a.def.Name, len(a.def.Params), len(args))
	}

	pairs := make([]string, 0, 2*len(args))
	for i, arg := range args {
		if arg == "" || strings.IndexFunc(arg, invalidArgRune) >= 0 {
			return "", fmt.Errorf("%w: %s %q", ErrInvalidArgument, a.def.Params[i], arg)
		}
		pairs = append(pairs, "{"+a.def.Params[i]+"}", arg)
	}
	return strings.NewReplacer(pairs...).Replace(a.template), nil
}

func invalidArgRune(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsControl(r)
}
