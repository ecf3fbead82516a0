/*
registry.go - Resource lookup for one simulation

PURPOSE:
  A Registry holds every resource store of one farm simulation so
  activities, the API and the journal can find them by resource ID.

NO GLOBAL STATE:
  Each simulation owns its own Registry, passed explicitly to whatever
  needs it. Two simulations in one process never share stores.

LOOKUP:
  IDs are matched case-insensitively ("Manure" == "manure").
  List() returns resources in registration order.

SEE ALSO:
  - types.go: ResourceType interface
  - farm/simulation.go: Owner of the registry
*/
package generic

import (
	"fmt"
	"strings"
)

// Resource is the behaviour every registered resource store provides.
// *Account satisfies it, as does anything embedding *Account.
type Resource interface {
	ResourceType() ResourceType
	Unit() Unit
	Amount() Amount
	LastTransaction() (Transaction, bool)
	Subscribe(l Listener)
	Initialise()
}

var _ Resource = (*Account)(nil)

// =============================================================================
// REGISTRY
// =============================================================================

type Registry struct {
	byID  map[string]Resource
	order []Resource
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Resource)}
}

// Register adds a resource. Fails if the ID is already taken.
func (r *Registry) Register(res Resource) error {
	id := res.ResourceType().ResourceID()
	k := strings.ToLower(id)
	if _, exists := r.byID[k]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateResource, id)
	}
	r.byID[k] = res
	r.order = append(r.order, res)
	return nil
}

// Lookup finds a resource by ID. Returns nil if not found.
func (r *Registry) Lookup(id string) Resource {
	return r.byID[strings.ToLower(id)]
}

// Get finds a resource by ID or returns ErrResourceNotFound.
func (r *Registry) Get(id string) (Resource, error) {
	res := r.Lookup(id)
	if res == nil {
		return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, id)
	}
	return res, nil
}

// List returns all resources in registration order.
func (r *Registry) List() []Resource {
	result := make([]Resource, len(r.order))
	copy(result, r.order)
	return result
}

// ListByDomain returns resources for a specific domain.
func (r *Registry) ListByDomain(domain string) []Resource {
	var result []Resource
	for _, res := range r.order {
		if res.ResourceType().ResourceDomain() == domain {
			result = append(result, res)
		}
	}
	return result
}

// SubscribeAll registers l on every resource currently in the registry.
func (r *Registry) SubscribeAll(l Listener) {
	for _, res := range r.order {
		res.Subscribe(l)
	}
}
