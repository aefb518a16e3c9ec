package colony

import (
	"sort"

	"github.com/spf13/cast"
)

// Animal represents one monitored subject in a dataset.
// The ID is the stable identifier used as the categorical value in every
// measurement table; renaming an animal must be propagated to all tables.
type Animal struct {
	ID         string                 `json:"id"`
	Enabled    bool                   `json:"enabled"`
	Color      string                 `json:"color,omitempty"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// NewAnimal creates an enabled animal with an empty property bag
func NewAnimal(id string) *Animal {
	return &Animal{
		ID:         id,
		Enabled:    true,
		Properties: make(map[string]interface{}),
	}
}

// Clone returns a deep copy of the animal
func (a *Animal) Clone() *Animal {
	props := make(map[string]interface{}, len(a.Properties))
	for k, v := range a.Properties {
		props[k] = v
	}
	return &Animal{ID: a.ID, Enabled: a.Enabled, Color: a.Color, Properties: props}
}

// PropertyString reads a property bag value as a string
func (a *Animal) PropertyString(key string) string {
	v, ok := a.Properties[key]
	if !ok {
		return ""
	}
	return cast.ToString(v)
}

// PropertyFloat reads a property bag value as a float64 (e.g. body weight)
func (a *Animal) PropertyFloat(key string) (float64, bool) {
	v, ok := a.Properties[key]
	if !ok {
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return f, true
}

// EnabledIDs returns the sorted identifiers of all enabled animals in the registry
func EnabledIDs(animals map[string]*Animal) []string {
	ids := make([]string, 0, len(animals))
	for id, a := range animals {
		if a != nil && a.Enabled {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// AllEnabled reports whether every animal in the registry is enabled
func AllEnabled(animals map[string]*Animal) bool {
	for _, a := range animals {
		if a == nil || !a.Enabled {
			return false
		}
	}
	return true
}
