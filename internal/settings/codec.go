package settings

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// baseAttrs decodes the flags from Base and leaves the rest of the body
// for the settings type itself.
type baseAttrs struct {
	Enabled  *bool    `hcl:"enabled,optional"`
	Expanded *bool    `hcl:"expanded,optional"`
	Remain   hcl.Body `hcl:",remain"`
}

// Encode renders s as an HCL document.
func Encode(s Settings) []byte {
	head := hclwrite.NewEmptyFile()
	hb := head.Body()
	hb.SetAttributeValue("enabled", cty.BoolVal(s.State().IsEnabled))
	hb.SetAttributeValue("expanded", cty.BoolVal(s.State().IsExpanded))

	fields := hclwrite.NewEmptyFile()
	gohcl.EncodeIntoBody(s, fields.Body())

	var buf bytes.Buffer
	buf.Write(head.Bytes())
	if rest := fields.Bytes(); len(bytes.TrimSpace(rest)) > 0 {
		buf.WriteByte('\n')
		buf.Write(rest)
	}
	return hclwrite.Format(buf.Bytes())
}

// Decode parses an HCL document produced by Encode into s. Attributes the
// document omits keep their current values.
func Decode(src []byte, filename string, s Settings) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse %s: %w", filename, diags)
	}

	var base baseAttrs
	if diags := gohcl.DecodeBody(file.Body, nil, &base); diags.HasErrors() {
		return fmt.Errorf("failed to decode %s: %w", filename, diags)
	}
	if base.Remain != nil {
		if diags := gohcl.DecodeBody(base.Remain, nil, s); diags.HasErrors() {
			return fmt.Errorf("failed to decode %s: %w", filename, diags)
		}
	}

	if base.Enabled != nil {
		s.State().IsEnabled = *base.Enabled
	}
	if base.Expanded != nil {
		s.State().IsExpanded = *base.Expanded
	}
	return nil
}

// Snapshot converts s into a cty object holding the base flags and every
// hcl-tagged field.
func Snapshot(s Settings) (cty.Value, error) {
	attrs := map[string]cty.Value{
		"enabled":  cty.BoolVal(s.State().IsEnabled),
		"expanded": cty.BoolVal(s.State().IsExpanded),
	}

	rv := reflect.ValueOf(s)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag, ok := field.Tag.Lookup("hcl")
		if !ok || !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			continue
		}
		fv := rv.Field(i).Interface()
		ty, err := gocty.ImpliedType(fv)
		if err != nil {
			return cty.NilVal, fmt.Errorf("field %s: %w", field.Name, err)
		}
		v, err := gocty.ToCtyValue(fv, ty)
		if err != nil {
			return cty.NilVal, fmt.Errorf("field %s: %w", field.Name, err)
		}
		attrs[name] = v
	}
	return cty.ObjectVal(attrs), nil
}

// SnapshotJSON renders Snapshot(s) as JSON.
func SnapshotJSON(s Settings) ([]byte, error) {
	v, err := Snapshot(s)
	if err != nil {
		return nil, err
	}
	return ctyjson.Marshal(v, v.Type())
}
