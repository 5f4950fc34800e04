package app

import (
	"github.com/vk/tweakrunner/modules/banner"
	"github.com/vk/tweakrunner/modules/jumplog"
	"github.com/vk/tweakrunner/modules/speed"
)

// coreModules is the definitive list of all modules that are compiled into
// the tweakrunner binary.
var coreModules = []Module{
	&banner.Module{},
	&jumplog.Module{},
	&speed.Module{},
}
