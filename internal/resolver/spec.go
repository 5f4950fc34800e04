// internal/resolver/spec.go
package resolver

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vk/tweakrunner/internal/host"
)

// Member names that stand for the instance constructor and the type
// initializer. Both may also be written with a leading dot (".ctor").
const (
	ctorName  = "ctor"
	cctorName = "cctor"
)

// segmentRegex matches one dotted path segment.
var segmentRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_` + "`" + `]*$`)

// Spec is a parsed member specification such as
// "Game.Player.Hit(int,string)" or "get.Game.Player.Speed".
type Spec struct {
	// Raw is the input string.
	Raw string
	// TypeName is the fully qualified declaring type.
	TypeName string
	// Member is the member name. Constructor sentinels are normalized to
	// "ctor" and "cctor".
	Member string
	// Params holds the parameter type names when HasParams is set.
	Params []string
	// HasParams is true when the spec carried a parameter list, even "()".
	HasParams bool
	// Accessor is KindGetter or KindSetter when the spec started with a
	// get/set marker, otherwise KindMethod.
	Accessor host.MemberKind
}

// Kind returns the member kind implied by the spec alone: a constructor
// sentinel, an accessor marker, or a plain method.
func (s Spec) Kind() host.MemberKind {
	switch s.Member {
	case ctorName:
		return host.KindConstructor
	case cctorName:
		return host.KindStaticInitializer
	}
	return s.Accessor
}

// ParseSpec splits a member specification into its declaring type, member
// name and optional parameter list.
func ParseSpec(raw string) (Spec, error) {
	s := Spec{Raw: raw, Accessor: host.KindMethod}
	path := strings.TrimSpace(raw)
	if path == "" {
		return s, fmt.Errorf("specification cannot be empty")
	}

	// The parameter list goes first so its commas and dots never reach the
	// path split.
	if open := strings.IndexByte(path, '('); open >= 0 {
		if !strings.HasSuffix(path, ")") || strings.Count(path, "(") != 1 || strings.Count(path, ")") != 1 {
			return s, fmt.Errorf("malformed parameter list in %q", raw)
		}
		inner := strings.TrimSpace(path[open+1 : len(path)-1])
		path = path[:open]
		s.HasParams = true
		if inner != "" {
			for _, p := range strings.Split(inner, ",") {
				p = strings.TrimSpace(p)
				if p == "" {
					return s, fmt.Errorf("empty parameter type in %q", raw)
				}
				s.Params = append(s.Params, p)
			}
		}
	}

	segments := strings.Split(path, ".")
	switch segments[0] {
	case "get":
		s.Accessor = host.KindGetter
		segments = segments[1:]
	case "set":
		s.Accessor = host.KindSetter
		segments = segments[1:]
	}

	// "Type..ctor" splits into [... "" "ctor"]; fold the empty segment.
	if n := len(segments); n >= 2 && segments[n-2] == "" && (segments[n-1] == ctorName || segments[n-1] == cctorName) {
		segments = append(segments[:n-2], segments[n-1])
	}

	if len(segments) < 2 {
		return s, fmt.Errorf("specification %q needs a type and a member", raw)
	}
	for _, seg := range segments {
		if seg == "" {
			return s, fmt.Errorf("specification %q contains an empty segment", raw)
		}
		if !segmentRegex.MatchString(seg) {
			return s, fmt.Errorf("invalid path segment %q in %q", seg, raw)
		}
	}

	s.Member = segments[len(segments)-1]
	s.TypeName = strings.Join(segments[:len(segments)-1], ".")
	return s, nil
}
