// Package host models the program that tweaks instrument.
//
// A host exposes a Universe of named types. Each type carries hookable
// members: methods (possibly overloaded), property accessors, constructors
// and a static initializer. Every member routes its invocations through an
// override chain of prefixes, the original body and postfixes, which is what
// the Patcher manipulates when tweaks are enabled or disabled.
//
// The package also defines Entry, the set of callbacks a host offers to the
// framework (toggle, update, GUI, hide GUI, save).
package host
