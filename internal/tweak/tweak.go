// Package tweak defines the contract every feature module implements.
//
// A tweak is a pointer to a struct that embeds Base, provides Metadata and
// overrides whichever hooks it needs:
//
//	type Tweak struct {
//		tweak.Base
//		Settings *Settings `tweak:"settings"`
//	}
//
//	func (t *Tweak) Metadata() tweak.Metadata {
//		return tweak.Metadata{Name: "Speed", Settings: tweak.TypeOf[Settings]()}
//	}
//
//	func (t *Tweak) Patches() []patch.Declaration { ... }
//
// Tweaks must be usable from their zero value; the runner constructs them
// with reflect.New.
package tweak

import (
	"reflect"

	tkerrors "github.com/vk/tweakrunner/internal/errors"
	"github.com/vk/tweakrunner/internal/ui"
)

// Tweak is the lifecycle hook set the runner drives.
type Tweak interface {
	// OnEnable runs before the tweak's overrides are installed.
	OnEnable()
	// OnDisable runs before the tweak's overrides are removed.
	OnDisable()
	// OnPatch runs after the overrides are installed.
	OnPatch()
	// OnUnpatch runs after the overrides are removed.
	OnUnpatch()
	// OnUpdate runs once per host frame while the tweak is active.
	OnUpdate(dt float64)
	// OnGUI draws the tweak's detail view.
	OnGUI(l ui.Layout)
	// OnHideGUI runs when the detail view or the host panel closes.
	OnHideGUI()
}

// Described is implemented by every tweak type.
type Described interface {
	Metadata() Metadata
}

// Base gives a tweak no-op hooks.
type Base struct{}

func (Base) OnEnable()        {}
func (Base) OnDisable()       {}
func (Base) OnPatch()         {}
func (Base) OnUnpatch()       {}
func (Base) OnUpdate(float64) {}
func (Base) OnGUI(ui.Layout)  {}
func (Base) OnHideGUI()       {}

// Metadata describes a tweak type.
type Metadata struct {
	// Name is the display name. Empty falls back to the type name.
	Name string
	// Description is shown next to the name.
	Description string
	// Priority orders top-level tweaks at start, lowest first.
	Priority int
	// MustNotBeDisabled keeps the tweak enabled for the whole session.
	MustNotBeDisabled bool
	// Patches is an optional namespace type whose zero value carries
	// further override declarations.
	Patches reflect.Type
	// Settings is the optional settings type shared by every tweak that
	// names it.
	Settings reflect.Type
	// Children are nested tweak types. They follow this tweak's toggle
	// state.
	Children []reflect.Type
}

// TypeOf returns the reflect.Type of T, for use in Metadata fields.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Instance is a constructed tweak and its metadata.
type Instance struct {
	Tweak    Tweak
	Type     reflect.Type
	Metadata Metadata
}

var tweakIface = reflect.TypeOf((*Tweak)(nil)).Elem()

// New constructs the zero value of t (either T or *T) and reads its
// metadata. It fails with a missing metadata error when the type does not
// implement Described, and with a plain error when it is not a Tweak.
func New(t reflect.Type) (*Instance, error) {
	if t == nil {
		return nil, tkerrors.NewMissingMetadataError("<nil>")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	ptr := reflect.PointerTo(t)
	if !ptr.Implements(tweakIface) {
		return nil, &tkerrors.DetailError{
			Type:    "registration failed",
			Message: "type does not implement tweak.Tweak",
			Subject: ptr.String(),
			Hint:    "embed tweak.Base",
		}
	}

	v := reflect.New(t).Interface()
	described, ok := v.(Described)
	if !ok {
		return nil, tkerrors.NewMissingMetadataError(ptr.String())
	}
	md := described.Metadata()
	if md.Name == "" {
		md.Name = t.Name()
	}
	return &Instance{Tweak: v.(Tweak), Type: ptr, Metadata: md}, nil
}
