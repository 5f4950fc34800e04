package host

import (
	"fmt"
	"slices"
	"sort"
	"sync"
)

// Type is a named host type and its hookable members.
type Type struct {
	name string

	mu        sync.RWMutex
	methods   map[string][]*Member
	getters   map[string]*Member
	setters   map[string]*Member
	ctors     []*Member
	cctor     *Member
	cctorOnce sync.Once
}

func newType(name string) *Type {
	return &Type{
		name:    name,
		methods: make(map[string][]*Member),
		getters: make(map[string]*Member),
		setters: make(map[string]*Member),
	}
}

// Name returns the fully qualified type name.
func (t *Type) Name() string { return t.name }

// Method declares an overload. Declaring the same name and parameter list
// twice replaces the earlier body.
func (t *Type) Method(name string, params []string, body Func) *Member {
	t.mu.Lock()
	defer t.mu.Unlock()
	m := newMember(t, name, KindMethod, params, body)
	overloads := t.methods[name]
	for i, existing := range overloads {
		if slices.Equal(existing.params, m.params) {
			overloads[i] = m
			return m
		}
	}
	t.methods[name] = append(overloads, m)
	return m
}

// Property declares a property. A nil get or set leaves that accessor absent.
func (t *Type) Property(name string, get, set Func) *Type {
	t.mu.Lock()
	defer t.mu.Unlock()
	if get != nil {
		t.getters[name] = newMember(t, name, KindGetter, nil, get)
	}
	if set != nil {
		t.setters[name] = newMember(t, name, KindSetter, []string{"value"}, set)
	}
	return t
}

// Constructor declares an instance constructor overload.
func (t *Type) Constructor(params []string, body Func) *Member {
	t.mu.Lock()
	defer t.mu.Unlock()
	m := newMember(t, ".ctor", KindConstructor, params, body)
	t.ctors = append(t.ctors, m)
	return m
}

// StaticInitializer declares the type initializer.
func (t *Type) StaticInitializer(body Func) *Member {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cctor = newMember(t, ".cctor", KindStaticInitializer, nil, body)
	return t.cctor
}

// Methods returns every overload declared under name, in declaration order.
func (t *Type) Methods(name string) []*Member {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]*Member(nil), t.methods[name]...)
}

// Getter returns the getter of a property, or nil.
func (t *Type) Getter(name string) *Member {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.getters[name]
}

// Setter returns the setter of a property, or nil.
func (t *Type) Setter(name string) *Member {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.setters[name]
}

// Constructors returns the declared constructor overloads.
func (t *Type) Constructors() []*Member {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]*Member(nil), t.ctors...)
}

// TypeInitializer returns the static initializer, or nil.
func (t *Type) TypeInitializer() *Member {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cctor
}

// Initialize runs the static initializer at most once.
func (t *Type) Initialize() {
	cctor := t.TypeInitializer()
	if cctor == nil {
		return
	}
	t.cctorOnce.Do(func() { cctor.Invoke(&Call{}) })
}

// New runs the constructor whose parameter list matches the argument count
// and returns the constructed instance. The body is expected to set
// Call.Result.
func (t *Type) New(args ...any) (any, error) {
	t.Initialize()
	for _, c := range t.Constructors() {
		if len(c.params) == len(args) {
			return c.Call(nil, args...), nil
		}
	}
	return nil, fmt.Errorf("type %s has no constructor taking %d arguments", t.name, len(args))
}

// MemberNames returns the sorted names of all methods and properties.
func (t *Type) MemberNames() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	seen := make(map[string]struct{})
	for n := range t.methods {
		seen[n] = struct{}{}
	}
	for n := range t.getters {
		seen[n] = struct{}{}
	}
	for n := range t.setters {
		seen[n] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Universe is the set of host types visible to the resolver, plus the host's
// version number.
type Universe struct {
	version int

	mu    sync.RWMutex
	types map[string]*Type
}

// NewUniverse creates an empty universe for a host at the given version.
func NewUniverse(version int) *Universe {
	return &Universe{
		version: version,
		types:   make(map[string]*Type),
	}
}

// Version returns the host version.
func (u *Universe) Version() int { return u.version }

// Define returns the type named name, creating it on first use.
func (u *Universe) Define(name string) *Type {
	u.mu.Lock()
	defer u.mu.Unlock()
	if t, ok := u.types[name]; ok {
		return t
	}
	t := newType(name)
	u.types[name] = t
	return t
}

// TypeByName looks up a type by its fully qualified name.
func (u *Universe) TypeByName(name string) (*Type, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	t, ok := u.types[name]
	return t, ok
}

// TypeNames returns every type name, sorted.
func (u *Universe) TypeNames() []string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	names := make([]string, 0, len(u.types))
	for n := range u.types {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
