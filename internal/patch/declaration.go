// Package patch holds override declarations and the per-tweak registry that
// collects, orders, installs and reverts them.
package patch

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/vk/tweakrunner/internal/host"
)

// Unbounded marks an open end of a version range.
const Unbounded = -1

// DefaultSeparator is mapped to '.' when a spec is derived from a function
// name, so Game_Player_Jump targets Game.Player.Jump.
const DefaultSeparator = '_'

// Declaration describes one override: what it targets, the replacement body,
// whether it runs before or after the original, its priority and the host
// versions it applies to.
type Declaration struct {
	// Spec is the target specification. Empty means derive it from the
	// replacement's function name.
	Spec string
	// Target is a pre-resolved handle. When set, Spec is ignored.
	Target *host.Member
	// Replacement is a host.Func, a func(*host.Call), or a
	// func(*host.Call) bool for prefixes that may skip the original.
	Replacement any
	// Prefix runs the replacement before the original; otherwise after.
	Prefix bool
	// Priority orders installation, lowest first.
	Priority int
	// MinVersion and MaxVersion bound the host versions, inclusive.
	MinVersion int
	MaxVersion int
	// Kind selects the accessor the spec refers to.
	Kind host.MemberKind
	// Required turns an unresolved target into a collection failure.
	Required bool
	// Separator is the character mapped to '.' in a derived spec.
	Separator rune

	funcName string
}

// Option configures a Declaration.
type Option func(*Declaration)

// Before declares fn as a prefix override.
func Before(fn any, opts ...Option) Declaration {
	return newDeclaration(fn, true, opts)
}

// After declares fn as a postfix override.
func After(fn any, opts ...Option) Declaration {
	return newDeclaration(fn, false, opts)
}

func newDeclaration(fn any, prefix bool, opts []Option) Declaration {
	d := Declaration{
		Replacement: fn,
		Prefix:      prefix,
		MinVersion:  Unbounded,
		MaxVersion:  Unbounded,
		Kind:        host.KindMethod,
		Separator:   DefaultSeparator,
		funcName:    funcName(fn),
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// On sets an explicit target spec.
func On(spec string) Option {
	return func(d *Declaration) { d.Spec = spec }
}

// Kind selects a getter, setter, constructor or static initializer.
func Kind(k host.MemberKind) Option {
	return func(d *Declaration) { d.Kind = k }
}

// Priority sets the installation order.
func Priority(p int) Option {
	return func(d *Declaration) { d.Priority = p }
}

// Versions limits the declaration to hosts with lo <= version <= hi. Use
// Unbounded for an open end.
func Versions(lo, hi int) Option {
	return func(d *Declaration) {
		d.MinVersion = lo
		d.MaxVersion = hi
	}
}

// Required fails collection when the target cannot be resolved.
func Required() Option {
	return func(d *Declaration) { d.Required = true }
}

// Target pins the declaration to an already resolved member.
func Target(m *host.Member) Option {
	return func(d *Declaration) { d.Target = m }
}

// Separator changes the character mapped to '.' in a derived spec.
func Separator(r rune) Option {
	return func(d *Declaration) { d.Separator = r }
}

// Eligible reports whether the declaration applies to the host version.
func (d Declaration) Eligible(version int) bool {
	return (d.MinVersion == Unbounded || version >= d.MinVersion) &&
		(d.MaxVersion == Unbounded || version <= d.MaxVersion)
}

// TargetSpec returns the explicit spec, or the one derived from the
// replacement's function name.
func (d Declaration) TargetSpec() string {
	if d.Spec != "" {
		return d.Spec
	}
	sep := d.Separator
	if sep == 0 {
		sep = DefaultSeparator
	}
	return strings.ReplaceAll(d.funcName, string(sep), ".")
}

// String describes the declaration for logs and errors.
func (d Declaration) String() string {
	mode := "after"
	if d.Prefix {
		mode = "before"
	}
	target := d.TargetSpec()
	if d.Target != nil {
		target = d.Target.String()
	}
	return fmt.Sprintf("%s %s", mode, target)
}

// funcName returns the bare name of a named function or method value:
// "pkg.(*T).Game_Player_Jump-fm" becomes "Game_Player_Jump".
func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	name := strings.TrimSuffix(f.Name(), "-fm")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}
