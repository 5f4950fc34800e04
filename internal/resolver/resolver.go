// Package resolver turns textual member specifications into host member
// handles.
//
// A specification is a dotted path ending in a member name, optionally
// followed by a parenthesized parameter type list:
//
//	Game.Player.Jump
//	Game.Player.Hit(int,string)
//	get.Game.Player.Speed
//	Game.Player..ctor(string)
//	Game.Session.cctor
//
// Resolution failures are returned as errors matching
// errors.ErrResolution; name-only specs that match several overloads
// additionally match errors.ErrAmbiguous.
package resolver

import (
	"errors"
	"slices"
	"strings"

	tkerrors "github.com/vk/tweakrunner/internal/errors"
	"github.com/vk/tweakrunner/internal/host"
)

// Resolver resolves specifications against one host universe.
type Resolver struct {
	universe *host.Universe
}

// New creates a resolver over u.
func New(u *host.Universe) *Resolver {
	return &Resolver{universe: u}
}

// Resolve looks up spec for the requested kind. When the target cannot be
// found and throwIfMissing is false it returns (nil, nil) and the caller is
// expected to skip the override. An ambiguous spec is an error either way.
func (r *Resolver) Resolve(spec string, kind host.MemberKind, throwIfMissing bool) (*host.Member, error) {
	m, err := r.Find(spec, kind)
	if err != nil && !throwIfMissing && !errors.Is(err, tkerrors.ErrAmbiguous) {
		return nil, nil
	}
	return m, err
}

// Find resolves spec and returns a resolution error when the type or member
// does not exist. An explicit getter, setter, constructor or static
// initializer kind takes precedence over a plain method reading of spec.
func (r *Resolver) Find(spec string, kind host.MemberKind) (*host.Member, error) {
	parsed, err := ParseSpec(spec)
	if err != nil {
		return nil, tkerrors.NewResolutionError(spec, "a valid specification", err)
	}

	t, ok := r.universe.TypeByName(parsed.TypeName)
	if !ok {
		return nil, tkerrors.NewResolutionError(spec, "type "+parsed.TypeName, nil)
	}

	if kind == host.KindMethod {
		kind = parsed.Kind()
	}
	name := parsed.Member

	switch kind {
	case host.KindGetter:
		if m := t.Getter(name); m != nil {
			return m, nil
		}
		return nil, tkerrors.NewResolutionError(spec, "getter of property "+name, nil)
	case host.KindSetter:
		if m := t.Setter(name); m != nil {
			return m, nil
		}
		return nil, tkerrors.NewResolutionError(spec, "setter of property "+name, nil)
	case host.KindConstructor:
		return r.constructor(spec, t, parsed)
	case host.KindStaticInitializer:
		if m := t.TypeInitializer(); m != nil {
			return m, nil
		}
		return nil, tkerrors.NewResolutionError(spec, "static initializer of "+t.Name(), nil)
	}

	overloads := t.Methods(name)
	if len(overloads) == 0 {
		// Accessors rendered as get_Name / set_Name.
		if prop, ok := strings.CutPrefix(name, "get_"); ok {
			if m := t.Getter(prop); m != nil {
				return m, nil
			}
		}
		if prop, ok := strings.CutPrefix(name, "set_"); ok {
			if m := t.Setter(prop); m != nil {
				return m, nil
			}
		}
		return nil, tkerrors.NewResolutionError(spec, "method "+name, nil)
	}
	return pick(spec, "method "+name, overloads, parsed)
}

func (r *Resolver) constructor(spec string, t *host.Type, parsed Spec) (*host.Member, error) {
	ctors := t.Constructors()
	if len(ctors) == 0 {
		return nil, tkerrors.NewResolutionError(spec, "constructor of "+t.Name(), nil)
	}
	if !parsed.HasParams {
		if len(ctors) == 1 {
			return ctors[0], nil
		}
		// Without a parameter list the parameterless constructor is meant.
		parsed.HasParams = true
	}
	return pick(spec, "constructor of "+t.Name(), ctors, parsed)
}

func pick(spec, what string, candidates []*host.Member, parsed Spec) (*host.Member, error) {
	if parsed.HasParams {
		for _, m := range candidates {
			if slices.Equal(m.Params(), parsed.Params) {
				return m, nil
			}
		}
		return nil, tkerrors.NewResolutionError(spec, what+"("+strings.Join(parsed.Params, ",")+")", nil)
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}
	names := make([]string, len(candidates))
	for i, m := range candidates {
		names[i] = m.String()
	}
	return nil, tkerrors.NewAmbiguousError(spec, names)
}
