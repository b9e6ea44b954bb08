package linklint

import (
	"log/slog"
	"slices"
	"sort"
)

// objectTypes lists the roles each kind answers to, in Sphinx's order. The
// order of kinds is the lookup priority when a role names several kinds.
var objectTypes = []struct {
	kind  string
	roles []string
}{
	{KindFunction, []string{"func", "obj"}},
	{KindData, []string{"data", "obj"}},
	{KindClass, []string{"class", "exc", "obj"}},
	{KindException, []string{"exc", "class", "obj"}},
	{KindMethod, []string{"meth", "obj"}},
	{KindClassMethod, []string{"meth", "obj"}},
	{KindStaticMethod, []string{"meth", "obj"}},
	{KindAttribute, []string{"attr", "obj"}},
	{KindProperty, []string{"attr", "_prop", "obj"}},
	{KindType, []string{"type", "class", "obj"}},
	{KindModule, []string{"mod", "obj"}},
}

// roleKinds maps a role to the kinds it may refer to.
var roleKinds = func() map[string][]string {
	m := make(map[string][]string)
	for _, ot := range objectTypes {
		for _, role := range ot.roles {
			m[role] = append(m[role], ot.kind)
		}
	}
	return m
}()

// RoleKinds returns the kinds role may refer to, in lookup order.
func RoleKinds(role string) []string {
	return slices.Clone(roleKinds[role])
}

// Roles returns every role that refers to a region kind, sorted.
func Roles() []string {
	roles := make([]string, 0, len(roleKinds))
	for role := range roleKinds {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

type regionKey struct {
	kind string
	name string
}

// Resolver finds the region a cross-reference points to.
type Resolver struct {
	regions map[regionKey]Region
	logger  *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger makes the resolver report duplicate regions to l.
func WithLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = l
	}
}

// NewResolver indexes regions by kind and name. When two regions share
// both, the later one wins.
func NewResolver(regions []Region, opts ...ResolverOption) *Resolver {
	r := &Resolver{regions: make(map[regionKey]Region, len(regions))}
	for _, opt := range opts {
		opt(r)
	}
	for _, region := range regions {
		key := regionKey{region.Kind, region.Name}
		if prev, ok := r.regions[key]; ok && r.logger != nil {
			r.logger.Debug("duplicate region",
				"kind", region.Kind,
				"name", region.Name,
				"previous", prev.Start,
				"start", region.Start,
			)
		}
		r.regions[key] = region
	}
	return r
}

// FindRegion returns the region a reference with role and target resolves
// to. Unknown roles resolve to nothing.
func (r *Resolver) FindRegion(role, target string) (Region, bool) {
	for _, kind := range roleKinds[role] {
		if region, ok := r.regions[regionKey{kind, target}]; ok {
			return region, true
		}
	}
	return Region{}, false
}
