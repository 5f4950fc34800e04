// Package inject fills tagged struct fields with shared settings instances,
// live tweak instances and loggers.
//
//	type Tweak struct {
//		tweak.Base
//		Settings *Settings       `tweak:"settings"`
//		Jumps    *jumplog.Tweak  `tweak:"module"`
//		Log      *slog.Logger    `tweak:"logger"`
//	}
//
// Injection is best effort: a field whose value cannot be found is left
// untouched and reported as a Gap.
package inject

import (
	"fmt"
	"log/slog"
	"reflect"
)

// TagKey is the struct tag read by Sync.
const TagKey = "tweak"

// Tag values.
const (
	TagSettings = "settings"
	TagModule   = "module"
	TagLogger   = "logger"
)

// Sources provides the values Sync injects. Lookups are keyed by the
// field's declared type.
type Sources struct {
	Settings func(t reflect.Type) (any, bool)
	Module   func(t reflect.Type) (any, bool)
	Logger   *slog.Logger
}

// Gap reports a tagged field that could not be filled.
type Gap struct {
	Owner  string
	Field  string
	Tag    string
	Type   reflect.Type
	Reason string
}

func (g Gap) String() string {
	return fmt.Sprintf("%s.%s (%s %s): %s", g.Owner, g.Field, g.Tag, g.Type, g.Reason)
}

// Sync injects into every tagged field of target, which must be a pointer to
// a struct. Other values are ignored.
func Sync(target any, src Sources) []Gap {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil
	}
	sv := rv.Elem()
	st := sv.Type()
	owner := st.String()

	var gaps []Gap
	for i := 0; i < st.NumField(); i++ {
		field := st.Field(i)
		tag, ok := field.Tag.Lookup(TagKey)
		if !ok {
			continue
		}
		gap := func(reason string) {
			gaps = append(gaps, Gap{Owner: owner, Field: field.Name, Tag: tag, Type: field.Type, Reason: reason})
		}
		if !field.IsExported() {
			gap("field is not exported")
			continue
		}

		var (
			value any
			found bool
		)
		switch tag {
		case TagSettings:
			if src.Settings != nil {
				value, found = src.Settings(field.Type)
			}
		case TagModule:
			if src.Module != nil {
				value, found = src.Module(field.Type)
			}
		case TagLogger:
			value, found = src.Logger, src.Logger != nil
		default:
			gap("unknown tag value")
			continue
		}

		if !found || value == nil {
			gap("no registered instance")
			continue
		}
		v := reflect.ValueOf(value)
		if !v.Type().AssignableTo(field.Type) {
			gap(fmt.Sprintf("instance of type %s is not assignable", v.Type()))
			continue
		}
		sv.Field(i).Set(v)
	}
	return gaps
}
