package runner

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tkerrors "github.com/vk/tweakrunner/internal/errors"
	"github.com/vk/tweakrunner/internal/host"
	"github.com/vk/tweakrunner/internal/settings"
	"github.com/vk/tweakrunner/internal/testutil"
	oneSpeed "github.com/vk/tweakrunner/internal/testutil/twins/one/speed"
	twoSpeed "github.com/vk/tweakrunner/internal/testutil/twins/two/speed"
	"github.com/vk/tweakrunner/internal/tweak"
	"github.com/vk/tweakrunner/internal/ui"
)

func TestRunner_EndToEnd(t *testing.T) {
	// Arrange
	h := newHarness(t, 1, tweak.TypeOf[tweakA]())

	// Act & Assert
	require.True(t, h.runner.OnToggle(true))
	assert.Equal(t, "bar", h.call(), "a disabled tweak installs nothing")

	require.NoError(t, h.runner.SetEnabled("A", true))
	assert.Equal(t, "bar+A", h.call())
	assert.Equal(t, []string{"A:enable", "A:patch"}, trace)

	require.True(t, h.runner.OnToggle(false))
	assert.Equal(t, "bar", h.call())
	assert.Equal(t, 0, h.bar.Hooked())
	assert.False(t, h.runner.Started())

	doc, ok := h.store.Document("runner.aSettings")
	require.True(t, ok, "stop flushes settings")
	var persisted aSettings
	require.NoError(t, settings.Decode(doc, "a.hcl", &persisted))
	assert.True(t, persisted.IsEnabled)
	assert.True(t, persisted.IsExpanded, "enabling through the control expands")
}

func TestRunner_StartUsesPersistedFlag(t *testing.T) {
	h := newHarness(t, 1, tweak.TypeOf[tweakA]())
	h.seed("runner.aSettings", "enabled = true\n")

	require.True(t, h.runner.OnToggle(true))

	assert.Equal(t, "bar+A", h.call())
	st := h.status(t, "A")
	assert.True(t, st.Active)
	assert.False(t, st.Expanded)
	assert.Equal(t, 1, st.Overrides)
}

func TestRunner_StartAndStopAreIdempotent(t *testing.T) {
	h := newHarness(t, 1, tweak.TypeOf[tweakA]())
	h.seed("runner.aSettings", "enabled = true\n")

	h.runner.Stop()
	require.NoError(t, h.runner.Start())
	require.NoError(t, h.runner.Start())
	assert.Equal(t, "bar+A", h.call())
	assert.Equal(t, []string{"A:enable", "A:patch"}, trace)

	h.runner.Stop()
	h.runner.Stop()
	assert.Equal(t, "bar", h.call())
	assert.Empty(t, h.runner.Status())
}

func TestRunner_ParentCascade(t *testing.T) {
	// Arrange
	h := newHarness(t, 1, tweak.TypeOf[parentTweak]())
	h.seed("runner.parentSettings", "enabled = true\n")
	h.seed("runner.childOneSettings", "enabled = true\n")
	require.True(t, h.runner.OnToggle(true))
	require.Equal(t, "bar+p+px+c1", h.call(), "nested namespace overrides follow priority order")

	// Act
	require.NoError(t, h.runner.SetEnabled("Parent", false))

	// Assert
	assert.Equal(t, "bar", h.call())
	one := h.status(t, "ChildOne")
	assert.True(t, one.Enabled, "a child keeps its own flag")
	assert.False(t, one.Active)
	assert.Equal(t, 1, one.Depth)

	require.NoError(t, h.runner.SetEnabled("ChildTwo", true))
	assert.False(t, h.status(t, "ChildTwo").Active, "a child never runs under an inactive parent")
	assert.Equal(t, "bar", h.call())
	require.NoError(t, h.runner.SetEnabled("ChildTwo", false))

	require.NoError(t, h.runner.SetEnabled("Parent", true))
	assert.Equal(t, "bar+p+px+c1", h.call(), "re-enabling restores each child's own flag")
	assert.False(t, h.status(t, "ChildTwo").Active)
}

func TestRunner_AlwaysOn(t *testing.T) {
	// Arrange
	h := newHarness(t, 1, tweak.TypeOf[bannerTweak]())
	require.True(t, h.runner.OnToggle(true))

	// Act
	err := h.runner.SetEnabled("Banner", false)

	// Assert
	require.Error(t, err)
	assert.Equal(t, "bar+banner", h.call(), "an always-on tweak keeps its overrides")
	st := h.status(t, "Banner")
	assert.True(t, st.AlwaysOn)
	assert.True(t, st.Active)

	h.runner.OnToggle(false)
	assert.Equal(t, "bar", h.call(), "stopping the runner reverts always-on tweaks too")
}

func TestRunner_PriorityThenNameOrder(t *testing.T) {
	h := newHarness(t, 1, tweak.TypeOf[betaTweak](), tweak.TypeOf[alphaTweak](), tweak.TypeOf[zetaTweak]())
	h.seed("runner.orderSettings", "enabled = true\n")

	require.True(t, h.runner.OnToggle(true))

	assert.Equal(t, []string{"Zeta", "Alpha", "Beta"}, trace)
	var names []string
	for _, st := range h.runner.Status() {
		names = append(names, st.Name)
	}
	assert.Equal(t, []string{"Zeta", "Alpha", "Beta"}, names)
}

func TestRunner_SharedSettingsInstance(t *testing.T) {
	h := newHarness(t, 1, tweak.TypeOf[alphaTweak](), tweak.TypeOf[betaTweak]())
	require.True(t, h.runner.OnToggle(true))

	assert.Same(t, h.status(t, "Alpha").Settings, h.status(t, "Beta").Settings)
}

func TestRunner_EnableFailureIsIsolated(t *testing.T) {
	// Arrange
	h := newHarness(t, 1, tweak.TypeOf[brokenTweak](), tweak.TypeOf[bannerTweak]())

	// Act
	started := h.runner.OnToggle(true)

	// Assert
	require.True(t, started, "an enable failure does not fail the toggle")
	assert.Equal(t, "bar+banner", h.call(), "the partial set of the failed tweak is reverted")
	broken := h.status(t, "Broken")
	assert.True(t, broken.Enabled, "the persisted flag stays on")
	assert.False(t, broken.Active)
	require.Error(t, broken.Err)
	assert.ErrorIs(t, broken.Err, tkerrors.ErrInstallation)
	assert.True(t, h.status(t, "Banner").Active)
	testutil.AssertLogged(t, h.logs, "Failed to enable tweak", "tweak=Broken")
}

func TestRunner_HookPanicIsRecovered(t *testing.T) {
	h := newHarness(t, 1, tweak.TypeOf[panickyTweak](), tweak.TypeOf[bannerTweak]())

	require.NotPanics(t, func() { h.runner.OnToggle(true) })

	st := h.status(t, "Panicky")
	assert.False(t, st.Active)
	require.Error(t, st.Err)
	assert.Contains(t, st.Err.Error(), "panicked")
	assert.Equal(t, "bar+banner", h.call())
	testutil.AssertLogged(t, h.logs, "Tweak hook panicked.", "hook=OnEnable")
}

func TestRunner_StartFailures(t *testing.T) {
	testCases := []struct {
		name    string
		typ     reflect.Type
		wantErr error
	}{
		{name: "required override does not resolve", typ: tweak.TypeOf[requiredTweak](), wantErr: tkerrors.ErrResolution},
		{name: "tweak without metadata", typ: tweak.TypeOf[undescribedTweak](), wantErr: tkerrors.ErrMissingMetadata},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			h := newHarness(t, 1, tweak.TypeOf[bannerTweak](), tc.typ)

			// Act
			err := h.runner.Start()

			// Assert
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.False(t, h.runner.Started())
			assert.Empty(t, h.runner.Status(), "a failed start leaves no partial tree")
			assert.Equal(t, "bar", h.call())
			assert.False(t, h.runner.OnToggle(true), "the host toggle is rejected")
		})
	}
}

func TestRunner_Injection(t *testing.T) {
	// Arrange
	h := newHarness(t, 1, tweak.TypeOf[consumerTweak](), tweak.TypeOf[tweakA]())

	// Act
	require.True(t, h.runner.OnToggle(true))

	// Assert
	tw, ok := h.runner.Tweak("Consumer")
	require.True(t, ok)
	c := tw.(*consumerTweak)
	a, ok := h.runner.Tweak("A")
	require.True(t, ok)

	assert.Same(t, h.status(t, "A").Settings, c.Settings)
	assert.Same(t, a, c.A)
	assert.NotNil(t, c.Log)
	assert.Nil(t, c.Missing, "an unregistered reference stays unset")
	testutil.AssertLogged(t, h.logs, "Dependency injection gap.", "Missing")
}

func TestRunner_RuntimeRegistration(t *testing.T) {
	// Arrange
	h := newHarness(t, 1, tweak.TypeOf[tweakA]())
	h.seed("runner.aSettings", "enabled = true\n")
	require.True(t, h.runner.OnToggle(true))

	// Act & Assert
	require.NoError(t, h.runner.Register(tweak.TypeOf[bannerTweak]()))
	assert.Equal(t, "bar+A+banner", h.call(), "a late tweak is started on the spot")

	require.NoError(t, h.runner.Register(tweak.TypeOf[bannerTweak]()), "duplicates are ignored")
	assert.Len(t, h.runner.Status(), 2)

	require.NoError(t, h.runner.Unregister(tweak.TypeOf[bannerTweak]()))
	assert.Equal(t, "bar+A", h.call())
	_, found := h.runner.Tweak("Banner")
	assert.False(t, found)
	assert.Error(t, h.runner.Unregister(tweak.TypeOf[bannerTweak]()))

	err := h.runner.Register(tweak.TypeOf[requiredTweak]())
	require.Error(t, err)
	assert.ErrorIs(t, err, tkerrors.ErrResolution)
	_, found = h.runner.Tweak("Required")
	assert.False(t, found, "a failed late registration is dropped")

	h.runner.OnToggle(false)
	require.True(t, h.runner.OnToggle(true))
	assert.Equal(t, "bar+A", h.call(), "unregistered types are not restarted")
}

func TestRunner_RegisterRejectsNil(t *testing.T) {
	h := newHarness(t, 1)

	assert.Error(t, h.runner.Register(nil))
}

func TestRunner_UnknownTweakName(t *testing.T) {
	h := newHarness(t, 1, tweak.TypeOf[tweakA]())
	require.True(t, h.runner.OnToggle(true))

	assert.Error(t, h.runner.SetEnabled("Nope", true))
	assert.Error(t, h.runner.SetExpanded("Nope", true))
	require.NoError(t, h.runner.SetEnabled("runner.tweakA", true), "the type key works as a name")
	assert.Equal(t, "bar+A", h.call())
}

func TestRunner_FrameCallbacksReachActiveTweaksOnly(t *testing.T) {
	h := newHarness(t, 1, tweak.TypeOf[tweakA]())
	require.True(t, h.runner.OnToggle(true))

	h.runner.Update(0.016)
	h.runner.HideGUI()
	assert.Empty(t, trace)

	require.NoError(t, h.runner.SetEnabled("A", true))
	trace = nil
	h.runner.Update(0.016)
	h.runner.HideGUI()
	assert.Equal(t, []string{"A:update", "A:hide"}, trace)
}

func TestRunner_CollapseFiresHideRegardlessOfEnabled(t *testing.T) {
	h := newHarness(t, 1, tweak.TypeOf[tweakA]())
	h.seed("runner.aSettings", "expanded = true\n")
	require.True(t, h.runner.OnToggle(true))

	require.NoError(t, h.runner.SetExpanded("A", false))
	require.NoError(t, h.runner.SetExpanded("A", false))

	assert.Equal(t, []string{"A:hide"}, trace, "only a real collapse notifies")
}

func TestRunner_GUI(t *testing.T) {
	// Arrange
	h := newHarness(t, 1, tweak.TypeOf[tweakA]())
	require.True(t, h.runner.OnToggle(true))
	frame := ui.NewText()
	key := "runner.tweakA"

	// Act & Assert: a disabled tweak draws only its toggle.
	h.runner.GUI(frame)
	require.Len(t, frame.Lines(), 1)
	assert.Contains(t, frame.String(), "A - appends +A")

	// Enabling through the control installs and expands in the same frame.
	frame.Reset()
	frame.Press(ui.EnableID + key)
	h.runner.GUI(frame)
	assert.False(t, frame.Pending())
	assert.Equal(t, "bar+A", h.call())
	assert.Contains(t, frame.String(), "A body")
	assert.True(t, h.status(t, "A").Expanded)

	// Collapsing hides the body and notifies the tweak.
	frame.Reset()
	trace = nil
	frame.Press(ui.ExpandID + key)
	h.runner.GUI(frame)
	assert.NotContains(t, frame.String(), "A body")
	assert.Equal(t, []string{"A:hide"}, trace)
	assert.Equal(t, "bar+A", h.call(), "collapsing does not disable")

	// Disabling through the control reverts.
	frame.Reset()
	trace = nil
	frame.Press(ui.EnableID + key)
	h.runner.GUI(frame)
	assert.Equal(t, "bar", h.call())
	assert.Equal(t, []string{"A:disable", "A:unpatch"}, trace)
}

func TestRunner_GUIDrawsAlwaysOnAsLabel(t *testing.T) {
	h := newHarness(t, 1, tweak.TypeOf[bannerTweak]())
	require.True(t, h.runner.OnToggle(true))
	frame := ui.NewText()

	frame.Press(ui.EnableID + "runner.bannerTweak")
	h.runner.GUI(frame)

	assert.True(t, frame.Pending(), "an always-on tweak has no enable control")
	assert.NotContains(t, frame.String(), "[ ] Banner")
	assert.Contains(t, frame.String(), "Banner")
	assert.True(t, h.status(t, "Banner").Active)
}

func TestRunner_GUIDrawsChildrenWhenExpanded(t *testing.T) {
	h := newHarness(t, 1, tweak.TypeOf[parentTweak]())
	h.seed("runner.parentSettings", "enabled = true\nexpanded = true\n")
	require.True(t, h.runner.OnToggle(true))
	frame := ui.NewText()

	h.runner.GUI(frame)

	out := frame.String()
	assert.Contains(t, out, "ChildOne")
	assert.Contains(t, out, "ChildTwo")
	assert.Contains(t, out, "  ", "children are indented")
}

func TestRunner_Attach(t *testing.T) {
	testCases := []struct {
		name   string
		preGUI bool
		first  string
	}{
		{name: "host draws first", preGUI: false, first: "host panel"},
		{name: "runner draws first", preGUI: true, first: "A - appends +A"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			h := newHarness(t, 1, tweak.TypeOf[tweakA]())
			h.seed("runner.aSettings", "enabled = true\n")
			h.runner.cfg.PreGUI = tc.preGUI
			entry := &host.Entry{
				OnToggle: func(on bool) bool {
					record("host:toggle")
					return true
				},
				OnGUI: func(l ui.Layout) { l.Label("host panel") },
			}
			h.runner.Attach(entry)
			frame := ui.NewText()

			// Act
			require.True(t, entry.OnToggle(true))
			entry.OnUpdate(0.5)
			entry.OnGUI(frame)

			// Assert
			assert.Equal(t, []string{"host:toggle", "A:enable", "A:patch", "A:update"}, trace)
			require.NotEmpty(t, frame.Lines())
			assert.Contains(t, frame.Lines()[0], tc.first)
			assert.Equal(t, "bar+A", h.call())

			entry.OnSaveGUI()
			_, saved := h.store.Document("runner.aSettings")
			assert.True(t, saved)
		})
	}
}

func TestRunner_AttachHostRejectsToggle(t *testing.T) {
	h := newHarness(t, 1, tweak.TypeOf[tweakA]())
	entry := &host.Entry{OnToggle: func(bool) bool { return false }}
	h.runner.Attach(entry)

	assert.False(t, entry.OnToggle(true))
	assert.False(t, h.runner.Started())
}

func TestRunner_Session(t *testing.T) {
	a := newHarness(t, 1)
	b := newHarness(t, 1)

	assert.NotEmpty(t, a.runner.Session())
	assert.NotEqual(t, a.runner.Session(), b.runner.Session())
}

func TestRunner_SameBaseNamePackagesKeepSeparateOwners(t *testing.T) {
	// Arrange
	h := newHarness(t, 1, tweak.TypeOf[oneSpeed.Tweak](), tweak.TypeOf[twoSpeed.Tweak]())
	require.True(t, h.runner.OnToggle(true))
	require.NoError(t, h.runner.SetEnabled(oneSpeed.Name, true))
	require.NoError(t, h.runner.SetEnabled(twoSpeed.Name, true))
	both := h.call()

	// Act
	require.NoError(t, h.runner.SetEnabled(twoSpeed.Name, false))

	// Assert
	assert.Contains(t, both, "+one")
	assert.Contains(t, both, "+two")
	assert.Equal(t, "bar+one", h.call(), "reverting one tweak leaves the other installed")
	assert.True(t, h.status(t, oneSpeed.Name).Active)
	assert.False(t, h.status(t, twoSpeed.Name).Active)
	assert.Equal(t, "speed.Tweak", h.status(t, oneSpeed.Name).Key)
	assert.Equal(t, "github.com/vk/tweakrunner/internal/testutil/twins/two/speed.Tweak", h.status(t, twoSpeed.Name).Key)

	require.True(t, h.runner.OnToggle(false))
	oneDoc, ok := h.store.Document(settings.Key(reflect.TypeOf(oneSpeed.Settings{})))
	require.True(t, ok)
	twoDoc, ok := h.store.Document(settings.QualifiedKey(reflect.TypeOf(twoSpeed.Settings{})))
	require.True(t, ok)
	var persistedOne oneSpeed.Settings
	var persistedTwo twoSpeed.Settings
	require.NoError(t, settings.Decode(oneDoc, "one.hcl", &persistedOne))
	require.NoError(t, settings.Decode(twoDoc, "two.hcl", &persistedTwo))
	assert.True(t, persistedOne.IsEnabled)
	assert.False(t, persistedTwo.IsEnabled)
}

func TestRunner_RuntimeRegistrationRejectsLiveChild(t *testing.T) {
	// Arrange
	h := newHarness(t, 1, tweak.TypeOf[parentTweak]())
	h.seed("runner.parentSettings", "enabled = true\n")
	h.seed("runner.childOneSettings", "enabled = true\n")
	require.True(t, h.runner.OnToggle(true))
	require.Equal(t, "bar+p+px+c1", h.call())

	// Act
	err := h.runner.Register(tweak.TypeOf[childOne]())

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already in the tree")
	assert.Equal(t, "bar+p+px+c1", h.call(), "the child's overrides are installed once")
	assert.Len(t, h.runner.Status(), 3)

	h.runner.Stop()
	require.NoError(t, h.runner.Start(), "the rejected type is not kept for the next start")
	assert.Len(t, h.runner.Status(), 3)
}
