// Package speed is a test fixture. It shares its package base name and
// type names with twins/one/speed.
package speed

import (
	"github.com/vk/tweakrunner/internal/host"
	"github.com/vk/tweakrunner/internal/patch"
	"github.com/vk/tweakrunner/internal/settings"
	"github.com/vk/tweakrunner/internal/tweak"
)

// Name is the display name of Tweak.
const Name = "Speed-two"

// Settings of Tweak.
type Settings struct {
	settings.Base
	Label string `hcl:"label,optional"`
}

// SetDefaults implements settings.Defaulter.
func (s *Settings) SetDefaults() { s.Label = "two" }

// Tweak appends "+two" to Foo.Bar.
type Tweak struct {
	tweak.Base
}

// Metadata implements tweak.Described.
func (*Tweak) Metadata() tweak.Metadata {
	return tweak.Metadata{Name: Name, Settings: tweak.TypeOf[Settings]()}
}

// Patches returns the overrides of the tweak.
func (*Tweak) Patches() []patch.Declaration {
	return []patch.Declaration{patch.After(func(c *host.Call) {
		c.Result = c.Result.(string) + "+two"
	}, patch.On("Foo.Bar"))}
}
