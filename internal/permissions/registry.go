package permissions

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Definition describes a registered permission. Names follow the
// "action:resource" convention, e.g. "create:posts".
type Definition struct {
	Name        string
	Action      string
	Resource    string
	Description string
}

type permissionRegistry struct {
	mu          sync.RWMutex
	permissions map[string]*Definition
}

var globalRegistry = &permissionRegistry{
	permissions: make(map[string]*Definition),
}

var (
	errNilPermission = errors.New("permission: nil definition")
	errEmptyName     = errors.New("permission: name is required")
	errDuplicateName = errors.New("permission: already registered")

	// ErrMalformedName indicates a permission name that is not "action:resource".
	ErrMalformedName = errors.New("permission: name must be action:resource")
	// ErrUnknownPermission indicates a lookup for a name that was never registered.
	ErrUnknownPermission = errors.New("permission: unknown permission")
)

// ParseName splits a permission name into its action and resource segments.
// Exactly one ':' separator is required and both segments must be non-empty.
func ParseName(name string) (action, resource string, err error) {
	name = strings.TrimSpace(name)
	parts := strings.Split(name, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedName, name)
	}
	return parts[0], parts[1], nil
}

// Register adds a permission definition to the global registry.
func Register(def *Definition) error {
	if def == nil {
		return errNilPermission
	}

	name := strings.TrimSpace(def.Name)
	if name == "" {
		return errEmptyName
	}

	action, resource, err := ParseName(name)
	if err != nil {
		return err
	}

	cp := *def
	cp.Name = name
	cp.Action = action
	cp.Resource = resource

	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	if _, exists := globalRegistry.permissions[name]; exists {
		return fmt.Errorf("%w: %s", errDuplicateName, name)
	}

	globalRegistry.permissions[name] = &cp
	return nil
}

// Get returns a copy of the permission definition when registered.
func Get(name string) (*Definition, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	def, ok := globalRegistry.permissions[strings.TrimSpace(name)]
	if !ok {
		return nil, false
	}
	cp := *def
	return &cp, true
}

// GetAll returns a copy of all registered permissions keyed by name.
func GetAll() map[string]*Definition {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	out := make(map[string]*Definition, len(globalRegistry.permissions))
	for name, def := range globalRegistry.permissions {
		cp := *def
		out[name] = &cp
	}
	return out
}

// GetByResource gathers permissions registered for the specified resource.
func GetByResource(resource string) []*Definition {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	resource = strings.TrimSpace(resource)
	var defs []*Definition
	for _, def := range globalRegistry.permissions {
		if def.Resource == resource {
			cp := *def
			defs = append(defs, &cp)
		}
	}
	return defs
}

// reset clears registry entries. Intended for testing only.
func reset() {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.permissions = make(map[string]*Definition)
}
