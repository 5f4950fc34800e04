package runner

import (
	"log/slog"
	"path"
	"reflect"

	"github.com/vk/tweakrunner/internal/inject"
	"github.com/vk/tweakrunner/internal/patch"
	"github.com/vk/tweakrunner/internal/settings"
	"github.com/vk/tweakrunner/internal/tweak"
)

// node is one registered tweak.
type node struct {
	inst      *tweak.Instance
	key       string
	id        string
	parent    int
	children  []int
	depth     int
	last      bool
	settings  settings.Settings
	namespace any
	registry  *patch.Registry
	logger    *slog.Logger

	active  bool
	failure error
	removed bool
}

func (n *node) name() string { return n.inst.Metadata.Name }

func (n *node) alwaysOn() bool { return n.inst.Metadata.MustNotBeDisabled }

// typeKey is the short name of a tweak type used in lookups and control
// ids, e.g. "speed.Tweak".
func typeKey(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return path.Base(t.PkgPath()) + "." + t.Name()
}

// typeID is the full import path and type name. Owner ids are built from
// it, so two packages sharing a base name never share overrides.
func typeID(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.PkgPath() + "." + t.Name()
}

// keyTaken reports whether a live node already uses key.
func (r *Runner) keyTaken(key string) bool {
	for _, n := range r.nodes {
		if !n.removed && n.key == key {
			return true
		}
	}
	return false
}

// build registers inst and, depth first, its child types. It attaches the
// shared settings, instantiates the extra override namespace and collects
// the override declarations.
func (r *Runner) build(inst *tweak.Instance, parent int, last bool) (int, error) {
	md := inst.Metadata
	id := typeID(inst.Type)
	key := typeKey(inst.Type)
	if r.keyTaken(key) {
		key = id
	}

	var (
		st  settings.Settings
		err error
	)
	if md.Settings != nil {
		st, err = r.cfg.Settings.Register(r.ctx, md.Settings)
		if err != nil {
			return -1, err
		}
	} else {
		st = &settings.Base{}
	}
	if md.MustNotBeDisabled {
		st.State().IsEnabled = true
	}

	var ns any
	if md.Patches != nil {
		nt := md.Patches
		if nt.Kind() == reflect.Pointer {
			nt = nt.Elem()
		}
		ns = reflect.New(nt).Interface()
	}

	decls, err := patch.Collect(r.ctx, r.cfg.Version, r.cfg.Finder, ns, inst.Tweak)
	if err != nil {
		return -1, err
	}

	owner := "tweak:" + id
	n := &node{
		inst:      inst,
		key:       key,
		id:        id,
		parent:    parent,
		last:      last,
		settings:  st,
		namespace: ns,
		registry:  patch.NewRegistry(owner, decls, r.cfg.Installer),
		logger:    r.logger.With("tweak", md.Name),
	}
	idx := len(r.nodes)
	r.nodes = append(r.nodes, n)
	r.byType[inst.Type] = idx
	if parent >= 0 {
		n.depth = r.nodes[parent].depth + 1
		r.nodes[parent].children = append(r.nodes[parent].children, idx)
	}
	n.logger.Debug("Tweak registered.", "owner", owner, "overrides", len(decls), "parent", parent)

	for i, ct := range md.Children {
		child, err := tweak.New(ct)
		if err != nil {
			return -1, err
		}
		if _, dup := r.byType[child.Type]; dup {
			n.logger.Warn("Child tweak type already registered, skipping.", "child", child.Metadata.Name)
			continue
		}
		if _, err := r.build(child, idx, i == len(md.Children)-1); err != nil {
			return -1, err
		}
	}
	return idx, nil
}

// syncAll injects settings, tweak references and loggers into every live
// tweak and its override namespace. It runs after a full registration pass.
func (r *Runner) syncAll() {
	for _, n := range r.nodes {
		if n.removed {
			continue
		}
		src := inject.Sources{
			Settings: func(t reflect.Type) (any, bool) { return r.cfg.Settings.Get(t) },
			Module:   r.lookupTweak,
			Logger:   n.logger,
		}
		gaps := inject.Sync(n.inst.Tweak, src)
		if n.namespace != nil {
			gaps = append(gaps, inject.Sync(n.namespace, src)...)
		}
		for _, g := range gaps {
			n.logger.Warn("Dependency injection gap.", "field", g.String())
		}
	}
}

func (r *Runner) lookupTweak(t reflect.Type) (any, bool) {
	idx, ok := r.byType[t]
	if !ok {
		return nil, false
	}
	return r.nodes[idx].inst.Tweak, true
}

// truncate drops every node from index first on. Only valid for a subtree
// whose root has not been linked into roots yet.
func (r *Runner) truncate(first int) {
	for _, n := range r.nodes[first:] {
		delete(r.byType, n.inst.Type)
	}
	r.nodes = r.nodes[:first]
}

// remove tombstones a root and its subtree.
func (r *Runner) remove(idx int) {
	r.walk(idx, func(i int) {
		n := r.nodes[i]
		n.removed = true
		delete(r.byType, n.inst.Type)
	})
	kept := r.roots[:0]
	for _, root := range r.roots {
		if root != idx {
			kept = append(kept, root)
		}
	}
	r.roots = kept
}

func (r *Runner) reset() {
	r.nodes = nil
	r.roots = nil
	r.byType = make(map[reflect.Type]int)
}

// walk visits idx and its descendants in pre-order.
func (r *Runner) walk(idx int, visit func(int)) {
	visit(idx)
	for _, c := range r.nodes[idx].children {
		r.walk(c, visit)
	}
}

// each visits every live node in tree order.
func (r *Runner) each(visit func(int)) {
	for _, root := range r.roots {
		r.walk(root, visit)
	}
}

// find looks a node up by display name, type key ("speed.Tweak") or full
// type id.
func (r *Runner) find(name string) (int, bool) {
	for i, n := range r.nodes {
		if n.removed {
			continue
		}
		if n.name() == name || n.key == name || n.id == name {
			return i, true
		}
	}
	return -1, false
}
