package cobalt

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/hashicorp/go-multierror"

	"github.com/maxugly/cobalt/generic"
)

var (
	ErrDuplicateResolver = errors.New("duplicate resolver name")
	ErrInvalidResolver   = errors.New("invalid resolver")
	ErrUnknownResolver   = errors.New("unknown resolver")
)

var (
	PriorityHighest int16 = math.MinInt16
	PriorityDefault int16 = 0
	PriorityLowest  int16 = math.MaxInt16
)

type ResolveFunc = func(context.Context, Request) (Descriptor, error)

// MatchFunc inspects a Request and returns the ResolveFunc that will handle
// it, or an error describing why this resolver does not apply.
type MatchFunc = func(Request) (ResolveFunc, error)

// A Resolver matches any Request it knows how to handle, giving a ResolveFunc
// that produces a Descriptor or a ResolutionError.
type Resolver struct {
	Name  string
	Match MatchFunc
	// Priority of the matcher, lower (including negative) means matching earlier.
	Priority int16
}

func (r Resolver) WithName(name string) Resolver {
	r.Name = name
	return r
}

func (r Resolver) WithPriority(priority int16) Resolver {
	r.Priority = priority
	return r
}

// A ResolverRegistry is a collection of Resolver instances which dispatches
// Requests to whichever resolver matches first.
type ResolverRegistry struct {
	resolvers   []*Resolver
	resolverMap map[string]*Resolver
}

// Add registers a Resolver with the ResolverRegistry. Resolver.Name and
// Resolver.Match must be set, and Resolver.Name must be unique within the
// ResolverRegistry.
func (r *ResolverRegistry) Add(res Resolver) error {
	if r.resolverMap == nil {
		r.resolverMap = make(map[string]*Resolver)
	}
	if res.Name == "" || res.Match == nil {
		return ErrInvalidResolver
	}
	if _, ok := r.resolverMap[res.Name]; ok {
		return ErrDuplicateResolver
	}
	r.resolverMap[res.Name] = &res
	r.resolvers = append(r.resolvers, r.resolverMap[res.Name])
	r.sortByPriority()
	return nil
}

// MustAdd wraps Add but panics if there is an error.
func (r *ResolverRegistry) MustAdd(res Resolver) {
	generic.Unwrap_(r.Add(res))
}

// List returns the names of registered resolvers in priority order.
func (r *ResolverRegistry) List() []string {
	names := make([]string, 0, len(r.resolvers))
	for _, res := range r.resolvers {
		names = append(names, res.Name)
	}
	return names
}

// Resolve dispatches the Request to the first matching resolver in priority
// order. When no resolver matches, the per-resolver match failures are logged
// and the caller gets a plain ErrorUnsupported: the taxonomy stays flat.
func (r *ResolverRegistry) Resolve(ctx context.Context, req Request) (Descriptor, error) {
	var matchErrs error
	for _, res := range r.resolvers {
		if f, err := res.Match(req); f != nil && err == nil {
			return f(ctx, req)
		} else {
			matchErrs = multierror.Append(matchErrs, multierror.Prefix(err, fmt.Sprintf("[%v]", res.Name)))
		}
	}
	if matchErrs != nil {
		Logger(ctx).Sugar().Debugf("no resolver matched request: %v", matchErrs)
	}
	return nil, NewError(ErrKindUnsupported)
}

// ResolveWith dispatches the Request to a specific resolver by name.
func (r *ResolverRegistry) ResolveWith(ctx context.Context, name string, req Request) (Descriptor, error) {
	res, ok := r.resolverMap[name]
	if !ok {
		return nil, ErrUnknownResolver
	}
	f, err := res.Match(req)
	if f == nil || err != nil {
		return nil, NewError(ErrKindUnsupported)
	}
	return f(ctx, req)
}

func (r *ResolverRegistry) sortByPriority() {
	sort.SliceStable(r.resolvers, func(i, j int) bool {
		return r.resolvers[i].Priority < r.resolvers[j].Priority
	})
}

var DefaultResolverRegistry ResolverRegistry

// Resolve dispatches through the DefaultResolverRegistry.
func Resolve(ctx context.Context, req Request) (Descriptor, error) {
	return DefaultResolverRegistry.Resolve(ctx, req)
}
