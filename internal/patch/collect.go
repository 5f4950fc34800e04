package patch

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/vk/tweakrunner/internal/ctxlog"
	tkerrors "github.com/vk/tweakrunner/internal/errors"
	"github.com/vk/tweakrunner/internal/host"
)

// Source is implemented by anything that declares overrides: a tweak or a
// namespace value grouping related overrides.
type Source interface {
	Patches() []Declaration
}

// Nested is implemented by values that group further namespaces under
// themselves. Collection walks them transitively.
type Nested interface {
	Nested() []any
}

// Finder resolves a target spec into a member handle.
type Finder interface {
	Find(spec string, kind host.MemberKind) (*host.Member, error)
}

// Collect gathers the declarations reachable from roots, in discovery order:
// each root's own declarations first, then its nested namespaces depth
// first. Declarations outside the host version are dropped before any
// resolution happens. Unresolvable targets are dropped unless the
// declaration is required, in which case Collect fails. An ambiguous target
// fails Collect even for optional declarations. The result is
// stable-sorted by ascending priority.
func Collect(ctx context.Context, version int, finder Finder, roots ...any) ([]Declaration, error) {
	logger := ctxlog.FromContext(ctx)

	var found []Declaration
	for _, root := range roots {
		walk(root, func(d Declaration) { found = append(found, d) })
	}

	out := make([]Declaration, 0, len(found))
	for _, d := range found {
		if !d.Eligible(version) {
			logger.Debug("Skipping override outside host version.",
				"override", d.String(), "version", version, "min", d.MinVersion, "max", d.MaxVersion)
			continue
		}
		if d.Target == nil {
			target, err := finder.Find(d.TargetSpec(), d.Kind)
			if err != nil {
				if d.Required || errors.Is(err, tkerrors.ErrAmbiguous) {
					return nil, fmt.Errorf("collecting %s: %w", d.String(), err)
				}
				logger.Warn("Dropping override with unresolved target.", "override", d.String(), "error", err)
				continue
			}
			d.Target = target
		}
		out = append(out, d)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out, nil
}

func walk(v any, visit func(Declaration)) {
	if v == nil {
		return
	}
	if s, ok := v.(Source); ok {
		for _, d := range s.Patches() {
			visit(d)
		}
	}
	if n, ok := v.(Nested); ok {
		for _, child := range n.Nested() {
			walk(child, visit)
		}
	}
}
