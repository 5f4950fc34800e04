package host

import (
	"strings"
	"sync"
)

// MemberKind tells the resolver which accessor of a member a spec refers to.
type MemberKind int

const (
	// KindMethod is a plain method.
	KindMethod MemberKind = iota
	// KindGetter is a property getter.
	KindGetter
	// KindSetter is a property setter.
	KindSetter
	// KindConstructor is an instance constructor.
	KindConstructor
	// KindStaticInitializer is the type initializer.
	KindStaticInitializer
)

// String returns the lower-case name of the kind.
func (k MemberKind) String() string {
	switch k {
	case KindMethod:
		return "method"
	case KindGetter:
		return "getter"
	case KindSetter:
		return "setter"
	case KindConstructor:
		return "constructor"
	case KindStaticInitializer:
		return "static initializer"
	default:
		return "unknown"
	}
}

// Call is the invocation frame that travels through an override chain.
type Call struct {
	// Instance is the receiver, nil for static members.
	Instance any
	// Args holds the call arguments. Prefixes may rewrite them.
	Args []any
	// Result is the return value. Postfixes may rewrite it.
	Result any

	skip bool
}

// SkipOriginal prevents the original body from running. Only meaningful
// inside a prefix.
func (c *Call) SkipOriginal() {
	c.skip = true
}

// Skipped reports whether a prefix suppressed the original body.
func (c *Call) Skipped() bool {
	return c.skip
}

// Func is the shape of every member body and every override.
type Func func(*Call)

type hook struct {
	owner string
	fn    Func
}

// Member is a hookable host member. It is the target handle that the
// resolver returns and the Patcher installs overrides on.
type Member struct {
	owner  *Type
	name   string
	kind   MemberKind
	params []string
	body   Func

	mu        sync.RWMutex
	prefixes  []hook
	postfixes []hook
}

func newMember(owner *Type, name string, kind MemberKind, params []string, body Func) *Member {
	if body == nil {
		body = func(*Call) {}
	}
	return &Member{
		owner:  owner,
		name:   name,
		kind:   kind,
		params: append([]string(nil), params...),
		body:   body,
	}
}

// Name returns the member name. Accessors return the property name.
func (m *Member) Name() string { return m.name }

// Kind returns the member kind.
func (m *Member) Kind() MemberKind { return m.kind }

// DeclaringType returns the type that owns the member.
func (m *Member) DeclaringType() *Type { return m.owner }

// Params returns a copy of the parameter type names.
func (m *Member) Params() []string { return append([]string(nil), m.params...) }

// String renders the member in spec syntax, e.g. "Game.Player.Jump(int)".
func (m *Member) String() string {
	var sb strings.Builder
	if m.owner != nil {
		sb.WriteString(m.owner.Name())
		sb.WriteByte('.')
	}
	switch m.kind {
	case KindGetter:
		sb.WriteString("get_")
	case KindSetter:
		sb.WriteString("set_")
	}
	sb.WriteString(m.name)
	if m.kind == KindMethod || m.kind == KindConstructor {
		sb.WriteByte('(')
		sb.WriteString(strings.Join(m.params, ","))
		sb.WriteByte(')')
	}
	return sb.String()
}

// Invoke runs the override chain: prefixes in installation order, the
// original body unless a prefix skipped it, then postfixes.
func (m *Member) Invoke(c *Call) {
	m.mu.RLock()
	prefixes := m.prefixes
	postfixes := m.postfixes
	m.mu.RUnlock()

	for _, h := range prefixes {
		h.fn(c)
	}
	if !c.skip {
		m.body(c)
	}
	for _, h := range postfixes {
		h.fn(c)
	}
}

// Call is a convenience wrapper around Invoke that returns the result.
func (m *Member) Call(instance any, args ...any) any {
	c := &Call{Instance: instance, Args: args}
	m.Invoke(c)
	return c.Result
}

// Hooked reports how many overrides are currently installed on the member.
func (m *Member) Hooked() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.prefixes) + len(m.postfixes)
}

func (m *Member) attach(owner string, fn Func, prefix bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := hook{owner: owner, fn: fn}
	// Copy on write so a running Invoke keeps its snapshot.
	if prefix {
		m.prefixes = append(append([]hook(nil), m.prefixes...), h)
	} else {
		m.postfixes = append(append([]hook(nil), m.postfixes...), h)
	}
}

func (m *Member) detach(owner string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int
	m.prefixes, removed = without(m.prefixes, owner)
	var n int
	m.postfixes, n = without(m.postfixes, owner)
	return removed + n
}

func without(hooks []hook, owner string) ([]hook, int) {
	kept := make([]hook, 0, len(hooks))
	for _, h := range hooks {
		if h.owner != owner {
			kept = append(kept, h)
		}
	}
	return kept, len(hooks) - len(kept)
}
