package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tkerrors "github.com/vk/tweakrunner/internal/errors"
	"github.com/vk/tweakrunner/internal/host"
)

type fixture struct {
	universe *host.Universe
	jump     *host.Member
	hitInt   *host.Member
	hitPair  *host.Member
	bar      *host.Member
	ctor     *host.Member
	ctorName *host.Member
	cctor    *host.Member
	player   *host.Type
}

func newFixture() fixture {
	u := host.NewUniverse(15)
	p := u.Define("Game.Player")
	f := fixture{universe: u, player: p}
	f.jump = p.Method("Jump", nil, nil)
	f.hitInt = p.Method("Hit", []string{"int"}, nil)
	f.hitPair = p.Method("Hit", []string{"int", "string"}, nil)
	p.Property("Speed", func(*host.Call) {}, func(*host.Call) {})
	p.Property("Name", func(*host.Call) {}, nil)
	f.ctor = p.Constructor(nil, nil)
	f.ctorName = p.Constructor([]string{"string"}, nil)
	f.cctor = p.StaticInitializer(nil)
	f.bar = u.Define("Foo").Method("Bar", nil, nil)
	return f
}

func TestFind_ReturnsExactHandle(t *testing.T) {
	f := newFixture()
	r := New(f.universe)

	testCases := []struct {
		name string
		spec string
		kind host.MemberKind
		want *host.Member
	}{
		{name: "plain method", spec: "Game.Player.Jump", kind: host.KindMethod, want: f.jump},
		{name: "single segment type", spec: "Foo.Bar", kind: host.KindMethod, want: f.bar},
		{name: "overload by params", spec: "Game.Player.Hit(int,string)", kind: host.KindMethod, want: f.hitPair},
		{name: "overload with spaces", spec: "Game.Player.Hit( int )", kind: host.KindMethod, want: f.hitInt},
		{name: "empty param list", spec: "Game.Player.Jump()", kind: host.KindMethod, want: f.jump},
		{name: "getter kind", spec: "Game.Player.Speed", kind: host.KindGetter, want: f.player.Getter("Speed")},
		{name: "setter kind", spec: "Game.Player.Speed", kind: host.KindSetter, want: f.player.Setter("Speed")},
		{name: "get marker selects getter", spec: "get.Game.Player.Speed", kind: host.KindMethod, want: f.player.Getter("Speed")},
		{name: "set marker selects setter", spec: "set.Game.Player.Speed", kind: host.KindMethod, want: f.player.Setter("Speed")},
		{name: "marker stripped under explicit kind", spec: "set.Game.Player.Speed", kind: host.KindGetter, want: f.player.Getter("Speed")},
		{name: "accessor method name", spec: "Game.Player.get_Speed", kind: host.KindMethod, want: f.player.Getter("Speed")},
		{name: "ctor sentinel", spec: "Game.Player.ctor", kind: host.KindMethod, want: f.ctor},
		{name: "dotted ctor sentinel", spec: "Game.Player..ctor(string)", kind: host.KindMethod, want: f.ctorName},
		{name: "constructor kind", spec: "Game.Player.ctor(string)", kind: host.KindConstructor, want: f.ctorName},
		{name: "cctor sentinel", spec: "Game.Player.cctor", kind: host.KindMethod, want: f.cctor},
		{name: "dotted cctor sentinel", spec: "Game.Player..cctor", kind: host.KindMethod, want: f.cctor},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.Find(tc.spec, tc.kind)

			require.NoError(t, err)
			assert.Same(t, tc.want, got)
		})
	}
}

func TestResolve_Missing(t *testing.T) {
	f := newFixture()
	r := New(f.universe)

	testCases := []struct {
		name    string
		spec    string
		kind    host.MemberKind
		message string
	}{
		{name: "unknown type", spec: "Game.Enemy.Jump", kind: host.KindMethod, message: "type Game.Enemy"},
		{name: "unknown method", spec: "Game.Player.Fly", kind: host.KindMethod, message: "method Fly"},
		{name: "no matching overload", spec: "Game.Player.Hit(float)", kind: host.KindMethod, message: "method Hit(float)"},
		{name: "missing setter", spec: "Game.Player.Name", kind: host.KindSetter, message: "setter of property Name"},
		{name: "missing ctor overload", spec: "Game.Player.ctor(int)", kind: host.KindMethod, message: "constructor of Game.Player(int)"},
		{name: "no static initializer", spec: "Foo.cctor", kind: host.KindMethod, message: "static initializer of Foo"},
		{name: "malformed", spec: "Game.Player.Hit(int", kind: host.KindMethod, message: "a valid specification"},
		{name: "member only", spec: "Jump", kind: host.KindMethod, message: "a valid specification"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			quiet, quietErr := r.Resolve(tc.spec, tc.kind, false)
			loud, loudErr := r.Resolve(tc.spec, tc.kind, true)

			// Assert
			assert.NoError(t, quietErr)
			assert.Nil(t, quiet)
			assert.Nil(t, loud)
			require.Error(t, loudErr)
			assert.ErrorIs(t, loudErr, tkerrors.ErrResolution)
			assert.Contains(t, loudErr.Error(), tc.message)
		})
	}
}

func TestFind_AmbiguousOverload(t *testing.T) {
	f := newFixture()
	r := New(f.universe)

	got, err := r.Find("Game.Player.Hit", host.KindMethod)

	assert.Nil(t, got)
	require.Error(t, err)
	assert.ErrorIs(t, err, tkerrors.ErrAmbiguous)
	assert.ErrorIs(t, err, tkerrors.ErrResolution)
	assert.Contains(t, err.Error(), "Game.Player.Hit(int)")
	assert.Contains(t, err.Error(), "Game.Player.Hit(int,string)")
}

func TestResolve_AmbiguousIsNeverSkipped(t *testing.T) {
	f := newFixture()
	r := New(f.universe)

	for _, throwIfMissing := range []bool{false, true} {
		got, err := r.Resolve("Game.Player.Hit", host.KindMethod, throwIfMissing)

		assert.Nil(t, got)
		require.Error(t, err, "throwIfMissing=%v", throwIfMissing)
		assert.ErrorIs(t, err, tkerrors.ErrAmbiguous)
	}
}

func TestParseSpec(t *testing.T) {
	testCases := []struct {
		input    string
		typeName string
		member   string
		params   []string
		hasParam bool
		kind     host.MemberKind
		wantErr  bool
	}{
		{input: "A.B.C", typeName: "A.B", member: "C", kind: host.KindMethod},
		{input: "A.B.C()", typeName: "A.B", member: "C", hasParam: true, kind: host.KindMethod},
		{input: "A.B.C(x.Y, int)", typeName: "A.B", member: "C", params: []string{"x.Y", "int"}, hasParam: true, kind: host.KindMethod},
		{input: "get.A.P", typeName: "A", member: "P", kind: host.KindGetter},
		{input: "A..ctor", typeName: "A", member: "ctor", kind: host.KindConstructor},
		{input: "A.cctor", typeName: "A", member: "cctor", kind: host.KindStaticInitializer},
		{input: "", wantErr: true},
		{input: "A..B", wantErr: true},
		{input: "A.B(", wantErr: true},
		{input: "A.B(int,)", wantErr: true},
		{input: "A.9x", wantErr: true},
		{input: "get.P", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseSpec(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.typeName, got.TypeName)
			assert.Equal(t, tc.member, got.Member)
			assert.Equal(t, tc.params, got.Params)
			assert.Equal(t, tc.hasParam, got.HasParams)
			assert.Equal(t, tc.kind, got.Kind())
		})
	}
}
