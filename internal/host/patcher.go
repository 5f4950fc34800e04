package host

import (
	"fmt"
	"sync"
)

// Patcher installs overrides on members and tracks them by owner id so an
// owner's overrides can be removed as one unit.
type Patcher struct {
	mu     sync.Mutex
	owners map[string]map[*Member]struct{}
}

// NewPatcher creates a patcher with no installed overrides.
func NewPatcher() *Patcher {
	return &Patcher{owners: make(map[string]map[*Member]struct{})}
}

// Install attaches replacement to target under owner. replacement must be a
// Func, a func(*Call), or (for prefixes only) a func(*Call) bool whose false
// return skips the original body.
func (p *Patcher) Install(owner string, target *Member, replacement any, prefix bool) error {
	if target == nil {
		return fmt.Errorf("target is nil")
	}
	fn, err := adapt(replacement, prefix)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	target.attach(owner, fn, prefix)
	set, ok := p.owners[owner]
	if !ok {
		set = make(map[*Member]struct{})
		p.owners[owner] = set
	}
	set[target] = struct{}{}
	return nil
}

// RevertAll removes every override installed under owner. Calling it for an
// unknown owner is a no-op.
func (p *Patcher) RevertAll(owner string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for m := range p.owners[owner] {
		m.detach(owner)
	}
	delete(p.owners, owner)
}

// Installed returns how many members carry overrides from owner.
func (p *Patcher) Installed(owner string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.owners[owner])
}

func adapt(replacement any, prefix bool) (Func, error) {
	switch fn := replacement.(type) {
	case nil:
		return nil, fmt.Errorf("replacement is nil")
	case Func:
		if fn == nil {
			return nil, fmt.Errorf("replacement is nil")
		}
		return fn, nil
	case func(*Call):
		if fn == nil {
			return nil, fmt.Errorf("replacement is nil")
		}
		return fn, nil
	case func(*Call) bool:
		if fn == nil {
			return nil, fmt.Errorf("replacement is nil")
		}
		if !prefix {
			return nil, fmt.Errorf("a postfix cannot skip the original")
		}
		return func(c *Call) {
			if !fn(c) {
				c.SkipOriginal()
			}
		}, nil
	default:
		return nil, fmt.Errorf("replacement of type %T is not compatible with an override", replacement)
	}
}
