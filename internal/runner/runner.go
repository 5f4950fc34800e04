// Package runner owns the tweak tree of one host session and drives its
// lifecycle: registration, start, the enable/disable cascade, per-frame
// callbacks and stop.
//
// Nodes live in an arena addressed by index. A node knows the index of its
// parent and of its children; the runner owns all of them. The invariant
// maintained by every operation is that a child is never active while its
// parent is inactive.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/vk/tweakrunner/internal/ctxlog"
	"github.com/vk/tweakrunner/internal/patch"
	"github.com/vk/tweakrunner/internal/settings"
	"github.com/vk/tweakrunner/internal/tweak"
)

// Config holds the collaborators of a Runner.
type Config struct {
	// Finder resolves override target specs.
	Finder patch.Finder
	// Installer installs and removes overrides.
	Installer patch.Installer
	// Settings holds the shared settings instances. Nil means an in-memory
	// registry that persists nothing.
	Settings *settings.Registry
	// Version is the host version used for override eligibility.
	Version int
	// PreGUI draws the tweak panel before a host-owned GUI callback.
	PreGUI bool
}

// Runner is the process-wide context object for one host session.
type Runner struct {
	cfg     Config
	ctx     context.Context
	logger  *slog.Logger
	session string

	mu      sync.Mutex
	types   []reflect.Type
	started bool
	nodes   []*node
	roots   []int
	byType  map[reflect.Type]int
}

// New creates a runner. The logger in ctx is used for everything the runner
// and its tweaks log.
func New(ctx context.Context, cfg Config) *Runner {
	if cfg.Settings == nil {
		cfg.Settings = settings.NewRegistry(settings.NewMemoryStore())
	}
	session := uuid.New().String()
	logger := ctxlog.FromContext(ctx).With("session", session)
	return &Runner{
		cfg:     cfg,
		ctx:     ctxlog.WithLogger(ctx, logger),
		logger:  logger,
		session: session,
		byType:  make(map[reflect.Type]int),
	}
}

// Session returns the id of this host session.
func (r *Runner) Session() string { return r.session }

// Started reports whether the framework is toggled on.
func (r *Runner) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

func pointerType(t reflect.Type) reflect.Type {
	if t.Kind() != reflect.Pointer {
		return reflect.PointerTo(t)
	}
	return t
}

// Register adds top-level tweak types. Before Start it only records them.
// After Start each new type is registered, synchronized and started on the
// spot; a failure removes the type again and is returned. A type that
// already lives in the started tree, e.g. as another tweak's child, is
// rejected.
func (r *Runner) Register(types ...reflect.Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range types {
		if t == nil {
			return fmt.Errorf("cannot register a nil tweak type")
		}
		t = pointerType(t)
		if r.hasType(t) {
			r.logger.Debug("Tweak type already registered.", "type", t.String())
			continue
		}
		if idx, live := r.byType[t]; live {
			return fmt.Errorf("tweak type %s is already in the tree as %q", t, r.nodes[idx].name())
		}
		r.types = append(r.types, t)
		if !r.started {
			continue
		}
		if err := r.attachRoot(t); err != nil {
			r.dropType(t)
			return err
		}
	}
	return nil
}

// Unregister stops a top-level tweak and its children, reverts their
// overrides and removes them from the tree. Always-on tweaks are torn down
// as well.
func (r *Runner) Unregister(t reflect.Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t = pointerType(t)
	if !r.hasType(t) {
		return fmt.Errorf("tweak type %s is not registered", t)
	}
	r.dropType(t)
	if !r.started {
		return nil
	}

	idx, ok := r.byType[t]
	if !ok {
		return nil
	}
	r.disable(idx, true)
	r.remove(idx)
	r.logger.Info("Tweak unregistered.", "tweak", r.nodes[idx].name())
	return nil
}

func (r *Runner) hasType(t reflect.Type) bool {
	for _, existing := range r.types {
		if existing == t {
			return true
		}
	}
	return false
}

func (r *Runner) dropType(t reflect.Type) {
	kept := r.types[:0]
	for _, existing := range r.types {
		if existing != t {
			kept = append(kept, existing)
		}
	}
	r.types = kept
}

// Start builds the tweak tree from the registered types, ordered by priority
// and then by name, synchronizes references once every tweak exists, and
// enables each tweak whose persisted flag is set. Calling Start twice is a
// no-op. A registration error tears the partial tree down and is returned.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return nil
	}
	r.logger.Debug("Runner starting.", "types", len(r.types))

	instances := make([]*tweak.Instance, 0, len(r.types))
	for _, t := range r.types {
		inst, err := tweak.New(t)
		if err != nil {
			return fmt.Errorf("failed to register tweak %s: %w", t, err)
		}
		instances = append(instances, inst)
	}
	sort.SliceStable(instances, func(i, j int) bool {
		a, b := instances[i].Metadata, instances[j].Metadata
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return a.Name < b.Name
	})

	for _, inst := range instances {
		if _, dup := r.byType[inst.Type]; dup {
			continue
		}
		idx, err := r.build(inst, -1, false)
		if err != nil {
			r.reset()
			return fmt.Errorf("failed to register tweak %s: %w", inst.Metadata.Name, err)
		}
		r.roots = append(r.roots, idx)
	}
	r.syncAll()

	r.started = true
	for _, idx := range r.roots {
		r.enable(idx)
	}
	r.logger.Info("Runner started.", "tweaks", len(r.nodes))
	return nil
}

// Stop disables every top-level tweak in reverse order, clears the tree and
// flushes settings. Unlike SetEnabled it also tears down always-on tweaks,
// otherwise the next Start would install their overrides a second time. Stopping a runner that is
// not started is a no-op.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return
	}
	for i := len(r.roots) - 1; i >= 0; i-- {
		r.disable(r.roots[i], true)
	}
	r.reset()
	r.started = false
	r.cfg.Settings.Save(r.ctx)
	r.logger.Info("Runner stopped.")
}

// OnToggle is the host toggle callback. It returns false when the framework
// could not start.
func (r *Runner) OnToggle(on bool) bool {
	if !on {
		r.Stop()
		return true
	}
	if err := r.Start(); err != nil {
		r.logger.Error("Failed to start tweaks.", "error", err)
		return false
	}
	return true
}

// attachRoot registers one top-level type on a started runner.
func (r *Runner) attachRoot(t reflect.Type) error {
	inst, err := tweak.New(t)
	if err != nil {
		return fmt.Errorf("failed to register tweak %s: %w", t, err)
	}
	first := len(r.nodes)
	idx, err := r.build(inst, -1, false)
	if err != nil {
		r.truncate(first)
		return fmt.Errorf("failed to register tweak %s: %w", inst.Metadata.Name, err)
	}
	r.roots = append(r.roots, idx)
	r.syncAll()
	r.enable(idx)
	r.logger.Info("Tweak registered at runtime.", "tweak", inst.Metadata.Name)
	return nil
}
