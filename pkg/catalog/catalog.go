// pkg/catalog/catalog.go
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Handler is the signature for user-defined connector operations.
// 'taskID' is the engine's task identifier, passed through untouched;
// 'input' is the opaque operation payload from the request envelope.
type Handler func(ctx context.Context, taskID int64, input json.RawMessage) (any, error)

var (
	// ErrDuplicateRegistration reports a (connector, operation) pair that is
	// already present. The catalog is left unchanged.
	ErrDuplicateRegistration = errors.New("catalog: duplicate registration")

	// ErrCatalogFrozen reports a Register call after Snapshot. Registration is
	// a startup-only activity; hitting this is a composition bug.
	ErrCatalogFrozen = errors.New("catalog: frozen")
)

// Recipe binds one (connector, operation) pair to its handler.
// Recipes are immutable once registered.
type Recipe struct {
	Connector string
	Operation string
	Handler   Handler
}

// RouteKey is the grouping key shared by all recipes of one connector.
func (r Recipe) RouteKey() string { return r.Connector }

// Path is the HTTP mount path derived from the connector name.
func (r Recipe) Path() string { return PathPrefix + r.Connector }

// PathPrefix is the URL prefix under which every connector is exposed.
const PathPrefix = "/csp/"

// Handle identifies a completed registration.
type Handle struct {
	Connector string
	Operation string
}

// Catalog accumulates recipes during startup composition and freezes on the
// first Snapshot. After the freeze it is read-only, which is what makes
// lock-free concurrent resolution safe at request time.
type Catalog struct {
	mu      sync.Mutex
	recipes []Recipe
	seen    map[Handle]struct{}
	frozen  bool
}

func New() *Catalog {
	return &Catalog{seen: make(map[Handle]struct{})}
}

// Register appends a recipe for (connector, operation). Insertion order is
// preserved; it is the tie-break order the dispatcher scans in.
func (c *Catalog) Register(connector, operation string, h Handler) (Handle, error) {
	if err := validateIdentity(connector, operation); err != nil {
		return Handle{}, err
	}
	if h == nil {
		return Handle{}, fmt.Errorf("catalog: nil handler for %s/%s", connector, operation)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frozen {
		return Handle{}, fmt.Errorf("register %s/%s: %w", connector, operation, ErrCatalogFrozen)
	}
	id := Handle{Connector: connector, Operation: operation}
	if _, dup := c.seen[id]; dup {
		return Handle{}, fmt.Errorf("register %s/%s: %w", connector, operation, ErrDuplicateRegistration)
	}
	c.seen[id] = struct{}{}
	c.recipes = append(c.recipes, Recipe{Connector: connector, Operation: operation, Handler: h})
	return id, nil
}

// MustRegister is Register for composition roots that prefer to panic on a
// broken catalog rather than thread errors through wiring code.
func (c *Catalog) MustRegister(connector, operation string, h Handler) Handle {
	id, err := c.Register(connector, operation, h)
	if err != nil {
		panic(err)
	}
	return id
}

// Snapshot freezes the catalog and returns its recipes in registration order.
// The first call freezes; later calls return the same sequence. Callers must
// not mutate the returned slice.
func (c *Catalog) Snapshot() []Recipe {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frozen = true
	return c.recipes
}

// Frozen reports whether Snapshot has been taken.
func (c *Catalog) Frozen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frozen
}

// Len reports the number of registered recipes.
func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.recipes)
}

func validateIdentity(connector, operation string) error {
	if strings.TrimSpace(connector) == "" {
		return fmt.Errorf("catalog: connector name required")
	}
	if strings.Contains(connector, "/") {
		return fmt.Errorf("catalog: connector name %q must not contain '/'", connector)
	}
	if strings.TrimSpace(operation) == "" {
		return fmt.Errorf("catalog: operation name required for connector %q", connector)
	}
	return nil
}
