// Package registry builds the process's singleton components in dependency order.
//
// Components are registered under typed keys together with the keys they
// depend on. Build orders them with Kahn's algorithm, reports a missing
// dependency or a cycle as an error, and constructs each one exactly once.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrDuplicate         = errors.New("registry: duplicate component")
	ErrMissingDependency = errors.New("registry: missing dependency")
	ErrCycle             = errors.New("registry: dependency cycle")
	ErrUndeclared        = errors.New("registry: undeclared dependency")
)

// Dependency names a component another one needs. Every Key is a Dependency.
type Dependency interface {
	Name() string
}

// Key identifies a component of type T.
type Key[T any] struct {
	name string
}

// NewKey returns the key for a component called name.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

func (k Key[T]) Name() string {
	return k.name
}

type provider struct {
	name  string
	deps  []string
	build func(s *Scope) (any, error)
	index int
}

// Registry collects providers. It is not safe for concurrent registration.
type Registry struct {
	providers map[string]*provider
	errs      []error
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{providers: make(map[string]*provider)}
}

func (r *Registry) add(p *provider) {
	if _, ok := r.providers[p.name]; ok {
		r.errs = append(r.errs, fmt.Errorf("%w: %s", ErrDuplicate, p.name))
		return
	}
	p.index = len(r.providers)
	r.providers[p.name] = p
}

// Provide registers build as the constructor of key. build may only Get the listed deps.
func Provide[T any](r *Registry, key Key[T], build func(s *Scope) (T, error), deps ...Dependency) {
	names := make([]string, len(deps))
	for i, d := range deps {
		names[i] = d.Name()
	}
	r.add(&provider{
		name: key.name,
		deps: names,
		build: func(s *Scope) (any, error) {
			return build(s)
		},
	})
}

// Supply registers an already built value.
func Supply[T any](r *Registry, key Key[T], value T) {
	Provide(r, key, func(*Scope) (T, error) { return value, nil })
}

// Order returns the construction order, or the first registration, missing-dependency or cycle error.
func (r *Registry) Order() ([]string, error) {
	if len(r.errs) > 0 {
		return nil, errors.Join(r.errs...)
	}

	indegree := make(map[string]int, len(r.providers))
	dependents := make(map[string][]string, len(r.providers))
	for name, p := range r.providers {
		indegree[name] += 0
		for _, dep := range p.deps {
			if _, ok := r.providers[dep]; !ok {
				return nil, fmt.Errorf("%w: %s needs %s", ErrMissingDependency, name, dep)
			}
			indegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	// ready is kept sorted by registration index so the order is deterministic
	var ready []string
	for name, n := range indegree {
		if n == 0 {
			ready = append(ready, name)
		}
	}
	r.sortByIndex(ready)

	order := make([]string, 0, len(r.providers))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)
		for _, next := range dependents[name] {
			indegree[next]--
			if indegree[next] == 0 {
				ready = append(ready, next)
				r.sortByIndex(ready)
			}
		}
	}

	if len(order) != len(r.providers) {
		var stuck []string
		for name, n := range indegree {
			if n > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("%w: %s", ErrCycle, strings.Join(stuck, ", "))
	}
	return order, nil
}

func (r *Registry) sortByIndex(names []string) {
	sort.Slice(names, func(i, j int) bool {
		return r.providers[names[i]].index < r.providers[names[j]].index
	})
}

// Build constructs every component once, in dependency order.
func (r *Registry) Build() (*Container, error) {
	order, err := r.Order()
	if err != nil {
		return nil, err
	}
	c := &Container{values: make(map[string]any, len(order)), order: order}
	for _, name := range order {
		p := r.providers[name]
		v, err := c.buildOne(p)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", name, err)
		}
		c.values[name] = v
	}
	return c, nil
}

// Container holds the built singletons.
type Container struct {
	values map[string]any
	order  []string
}

// Order returns the names in the order they were built.
func (c *Container) Order() []string {
	return append([]string(nil), c.order...)
}

type undeclaredPanic struct {
	err error
}

func (c *Container) buildOne(p *provider) (v any, err error) {
	allowed := make(map[string]bool, len(p.deps))
	for _, d := range p.deps {
		allowed[d] = true
	}
	defer func() {
		if rec := recover(); rec != nil {
			u, ok := rec.(undeclaredPanic)
			if !ok {
				panic(rec)
			}
			err = u.err
		}
	}()
	return p.build(&Scope{owner: p.name, allowed: allowed, values: c.values})
}

// Scope is what a constructor sees: only the dependencies it declared.
type Scope struct {
	owner   string
	allowed map[string]bool
	values  map[string]any
}

// Get returns the built dependency key of s. Asking for a key that was not
// declared aborts the build with ErrUndeclared.
func Get[T any](s *Scope, key Key[T]) T {
	if !s.allowed[key.name] {
		panic(undeclaredPanic{err: fmt.Errorf("%w: %s uses %s", ErrUndeclared, s.owner, key.name)})
	}
	return s.values[key.name].(T)
}

// Lookup returns the component of key from a built container.
func Lookup[T any](c *Container, key Key[T]) (T, bool) {
	v, ok := c.values[key.name]
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// MustLookup is Lookup that panics when key was never registered.
func MustLookup[T any](c *Container, key Key[T]) T {
	v, ok := Lookup(c, key)
	if !ok {
		panic(fmt.Sprintf("registry: %s not built", key.name))
	}
	return v
}
