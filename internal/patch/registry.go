package patch

import (
	"sync"

	tkerrors "github.com/vk/tweakrunner/internal/errors"
	"github.com/vk/tweakrunner/internal/host"
)

// Installer physically attaches overrides to members. host.Patcher is the
// in-process implementation.
type Installer interface {
	Install(owner string, target *host.Member, replacement any, prefix bool) error
	RevertAll(owner string)
}

// Registry owns one tweak's resolved declarations and installs or removes
// them as a unit under the tweak's owner id.
type Registry struct {
	owner     string
	decls     []Declaration
	installer Installer

	mu      sync.Mutex
	applied bool
}

// NewRegistry creates a registry for already collected declarations.
func NewRegistry(owner string, decls []Declaration, installer Installer) *Registry {
	return &Registry{
		owner:     owner,
		decls:     decls,
		installer: installer,
	}
}

// Owner returns the installer owner id.
func (r *Registry) Owner() string { return r.owner }

// Declarations returns the ordered declarations.
func (r *Registry) Declarations() []Declaration {
	return append([]Declaration(nil), r.decls...)
}

// Applied reports whether Apply ran since the last Revert.
func (r *Registry) Applied() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.applied
}

// Apply installs every declaration in order. The first failure aborts with an
// installation error; overrides installed before it stay in place until
// Revert.
func (r *Registry) Apply() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = true
	for _, d := range r.decls {
		if err := r.installer.Install(r.owner, d.Target, d.Replacement, d.Prefix); err != nil {
			return tkerrors.NewInstallationError(r.owner, d.String(), err)
		}
	}
	return nil
}

// Revert removes every override installed under the owner id. It is safe to
// call at any time, any number of times.
func (r *Registry) Revert() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.installer.RevertAll(r.owner)
	r.applied = false
}
