// Package settings holds the persisted per-type tweak settings and the
// registry that guarantees one instance per settings type.
//
// A settings type is a struct embedding Base. Its own fields are persisted
// when they carry an hcl tag:
//
//	type Settings struct {
//		settings.Base
//		Multiplier float64 `hcl:"multiplier,optional"`
//	}
package settings

import (
	"path"
	"reflect"
	"strings"
)

// Base carries the flags every tweak persists.
type Base struct {
	IsEnabled  bool
	IsExpanded bool
}

// State returns the embedded flags.
func (b *Base) State() *Base { return b }

// Settings is implemented by pointers to structs embedding Base.
type Settings interface {
	State() *Base
}

// Defaulter is implemented by settings types that need non-zero defaults.
// SetDefaults runs before persisted data is loaded.
type Defaulter interface {
	SetDefaults()
}

var settingsIface = reflect.TypeOf((*Settings)(nil)).Elem()

// Key returns the storage key of a settings type: the package base name and
// the type name, e.g. "speed.Settings". Both T and *T map to the same key.
func Key(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return path.Base(t.PkgPath()) + "." + t.Name()
}

// QualifiedKey is the storage key used when Key collides with another
// registered type: the full import path with "/" replaced by "_", e.g.
// "github.com_vk_tweakrunner_modules_speed.Settings".
func QualifiedKey(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return strings.ReplaceAll(t.PkgPath(), "/", "_") + "." + t.Name()
}

// New constructs a default value of the settings type t (either T or *T).
func New(t reflect.Type) (Settings, bool) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || !reflect.PointerTo(t).Implements(settingsIface) {
		return nil, false
	}
	s := reflect.New(t).Interface().(Settings)
	if d, ok := s.(Defaulter); ok {
		d.SetDefaults()
	}
	return s, true
}
