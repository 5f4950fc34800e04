package runner

import (
	"log/slog"
	"reflect"
	"testing"

	"github.com/vk/tweakrunner/internal/host"
	"github.com/vk/tweakrunner/internal/patch"
	"github.com/vk/tweakrunner/internal/resolver"
	"github.com/vk/tweakrunner/internal/settings"
	"github.com/vk/tweakrunner/internal/testutil"
	"github.com/vk/tweakrunner/internal/tweak"
	"github.com/vk/tweakrunner/internal/ui"
)

// trace collects hook calls across the fixture tweaks of one test.
var trace []string

func record(s string) { trace = append(trace, s) }

func appendResult(suffix string) func(*host.Call) {
	return func(c *host.Call) { c.Result = c.Result.(string) + suffix }
}

// --- A: the end-to-end tweak ---

type aSettings struct {
	settings.Base
}

type tweakA struct {
	tweak.Base
}

func (*tweakA) Metadata() tweak.Metadata {
	return tweak.Metadata{Name: "A", Description: "appends +A", Settings: tweak.TypeOf[aSettings]()}
}

func (*tweakA) Patches() []patch.Declaration {
	return []patch.Declaration{patch.After(appendResult("+A"), patch.On("Foo.Bar"))}
}

func (*tweakA) OnEnable()         { record("A:enable") }
func (*tweakA) OnPatch()          { record("A:patch") }
func (*tweakA) OnDisable()        { record("A:disable") }
func (*tweakA) OnUnpatch()        { record("A:unpatch") }
func (*tweakA) OnUpdate(float64)  { record("A:update") }
func (*tweakA) OnHideGUI()        { record("A:hide") }
func (*tweakA) OnGUI(l ui.Layout) { l.Label("A body") }

// --- Parent with two children and an extra namespace ---

type parentSettings struct{ settings.Base }
type childOneSettings struct{ settings.Base }
type childTwoSettings struct{ settings.Base }

type parentExtras struct{}

func (parentExtras) Nested() []any { return []any{parentExtrasInner{}} }

type parentExtrasInner struct{}

func (parentExtrasInner) Patches() []patch.Declaration {
	return []patch.Declaration{patch.After(appendResult("+px"), patch.On("Foo.Bar"), patch.Priority(5))}
}

type parentTweak struct{ tweak.Base }

func (*parentTweak) Metadata() tweak.Metadata {
	return tweak.Metadata{
		Name:     "Parent",
		Settings: tweak.TypeOf[parentSettings](),
		Patches:  tweak.TypeOf[parentExtras](),
		Children: []reflect.Type{tweak.TypeOf[childOne](), tweak.TypeOf[childTwo]()},
	}
}

func (*parentTweak) Patches() []patch.Declaration {
	return []patch.Declaration{patch.After(appendResult("+p"), patch.On("Foo.Bar"))}
}

type childOne struct{ tweak.Base }

func (*childOne) Metadata() tweak.Metadata {
	return tweak.Metadata{Name: "ChildOne", Settings: tweak.TypeOf[childOneSettings]()}
}

func (*childOne) Patches() []patch.Declaration {
	return []patch.Declaration{patch.After(appendResult("+c1"), patch.On("Foo.Bar"))}
}

type childTwo struct{ tweak.Base }

func (*childTwo) Metadata() tweak.Metadata {
	return tweak.Metadata{Name: "ChildTwo", Settings: tweak.TypeOf[childTwoSettings]()}
}

func (*childTwo) Patches() []patch.Declaration {
	return []patch.Declaration{patch.After(appendResult("+c2"), patch.On("Foo.Bar"))}
}

// --- Always-on ---

type bannerTweak struct{ tweak.Base }

func (*bannerTweak) Metadata() tweak.Metadata {
	return tweak.Metadata{Name: "Banner", MustNotBeDisabled: true}
}

func (*bannerTweak) Patches() []patch.Declaration {
	return []patch.Declaration{patch.After(appendResult("+banner"), patch.On("Foo.Bar"))}
}

// --- Ordering: three tweaks sharing one settings type ---

type orderSettings struct{ settings.Base }

type zetaTweak struct{ tweak.Base }

func (*zetaTweak) Metadata() tweak.Metadata {
	return tweak.Metadata{Name: "Zeta", Priority: 1, Settings: tweak.TypeOf[orderSettings]()}
}
func (*zetaTweak) OnEnable() { record("Zeta") }

type alphaTweak struct{ tweak.Base }

func (*alphaTweak) Metadata() tweak.Metadata {
	return tweak.Metadata{Name: "Alpha", Priority: 2, Settings: tweak.TypeOf[orderSettings]()}
}
func (*alphaTweak) OnEnable() { record("Alpha") }

type betaTweak struct{ tweak.Base }

func (*betaTweak) Metadata() tweak.Metadata {
	return tweak.Metadata{Name: "Beta", Priority: 2, Settings: tweak.TypeOf[orderSettings]()}
}
func (*betaTweak) OnEnable() { record("Beta") }

// --- Failure cases ---

type brokenTweak struct{ tweak.Base }

func (*brokenTweak) Metadata() tweak.Metadata {
	return tweak.Metadata{Name: "Broken", MustNotBeDisabled: true}
}

func (*brokenTweak) Patches() []patch.Declaration {
	return []patch.Declaration{
		patch.After(appendResult("+broken"), patch.On("Foo.Bar")),
		patch.After(func(int) {}, patch.On("Foo.Bar"), patch.Priority(1)),
	}
}

type panickyTweak struct{ tweak.Base }

func (*panickyTweak) Metadata() tweak.Metadata {
	return tweak.Metadata{Name: "Panicky", MustNotBeDisabled: true}
}
func (*panickyTweak) OnEnable() { panic("boom") }

type requiredTweak struct{ tweak.Base }

func (*requiredTweak) Metadata() tweak.Metadata { return tweak.Metadata{Name: "Required"} }

func (*requiredTweak) Patches() []patch.Declaration {
	return []patch.Declaration{patch.After(appendResult("+r"), patch.On("Foo.Nope"), patch.Required())}
}

type undescribedTweak struct{ tweak.Base }

// --- Injection ---

type consumerTweak struct {
	tweak.Base
	Settings *aSettings        `tweak:"settings"`
	A        *tweakA           `tweak:"module"`
	Log      *slog.Logger      `tweak:"logger"`
	Missing  *undescribedTweak `tweak:"module"`
}

func (*consumerTweak) Metadata() tweak.Metadata { return tweak.Metadata{Name: "Consumer"} }

// --- Harness ---

type harness struct {
	logs    *testutil.SafeBuffer
	bar     *host.Member
	patcher *host.Patcher
	store   *settings.MemoryStore
	runner  *Runner
}

func newHarness(t *testing.T, version int, types ...reflect.Type) *harness {
	t.Helper()
	trace = nil

	ctx, logs := testutil.Context(t)

	u := host.NewUniverse(version)
	bar := u.Define("Foo").Method("Bar", nil, func(c *host.Call) { c.Result = "bar" })
	patcher := host.NewPatcher()
	store := settings.NewMemoryStore()

	r := New(ctx, Config{
		Finder:    resolver.New(u),
		Installer: patcher,
		Settings:  settings.NewRegistry(store),
		Version:   version,
	})
	if err := r.Register(types...); err != nil {
		t.Fatalf("register: %v", err)
	}
	return &harness{logs: logs, bar: bar, patcher: patcher, store: store, runner: r}
}

// seed stores a settings document before the runner starts.
func (h *harness) seed(key, doc string) {
	h.store.Put(key, []byte(doc))
}

func (h *harness) call() string {
	return h.bar.Call(nil).(string)
}

func (h *harness) status(t *testing.T, name string) Status {
	t.Helper()
	for _, s := range h.runner.Status() {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("no status for %q", name)
	return Status{}
}
