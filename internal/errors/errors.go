// Package errors defines the error taxonomy shared by the resolver, the
// override registry and the runner.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for known conditions. Use errors.Is against these.
var (
	// ErrResolution indicates a target spec did not map to a type or member.
	ErrResolution = errors.New("resolution error")

	// ErrAmbiguous indicates a name-only spec matched several overloads.
	// Errors carrying it also match ErrResolution.
	ErrAmbiguous = errors.New("ambiguous target")

	// ErrMissingMetadata indicates a tweak type has no descriptor.
	ErrMissingMetadata = errors.New("missing tweak metadata")

	// ErrInstallation indicates the installer rejected a target or replacement.
	ErrInstallation = errors.New("installation error")
)

// DetailError captures structured error information for a single failure.
type DetailError struct {
	// Type is the error category (required).
	Type string

	// Message is the specific description (required).
	Message string

	// Subject names what failed: a spec string, a tweak type, an owner id.
	Subject string

	// Context contains additional key-value context (optional).
	Context map[string]string

	// Hint provides actionable guidance (optional).
	Hint string

	// Cause is the underlying error (optional).
	Cause error

	// kind is the sentinel this error matches besides Cause.
	kind error
}

// Error implements the error interface.
func (e *DetailError) Error() string {
	var b strings.Builder

	b.WriteString(e.Type)
	if e.Subject != "" {
		b.WriteString(" (")
		b.WriteString(e.Subject)
		b.WriteString(")")
	}
	b.WriteString(": ")
	b.WriteString(e.Message)

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(" ")
			b.WriteString(k)
			b.WriteString("=")
			b.WriteString(e.Context[k])
		}
	}

	if e.Cause != nil && !isSentinel(e.Cause) {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	if e.Hint != "" {
		b.WriteString(" (hint: ")
		b.WriteString(e.Hint)
		b.WriteString(")")
	}

	return b.String()
}

// Unwrap returns the sentinel kind and the underlying cause.
func (e *DetailError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.kind != nil {
		errs = append(errs, e.kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

func isSentinel(err error) bool {
	switch err {
	case ErrResolution, ErrAmbiguous, ErrMissingMetadata, ErrInstallation:
		return true
	}
	return false
}

// NewResolutionError reports that spec could not be resolved. what names the
// part that is missing, e.g. "type Game.Player" or "method Jump".
func NewResolutionError(spec, what string, cause error) error {
	return &DetailError{
		Type:    "resolution failed",
		Message: "cannot find " + what,
		Subject: spec,
		Cause:   cause,
		kind:    ErrResolution,
	}
}

// NewAmbiguousError reports that a name-only spec matched several overloads.
func NewAmbiguousError(spec string, candidates []string) error {
	return &DetailError{
		Type:    "resolution failed",
		Message: fmt.Sprintf("%d overloads match", len(candidates)),
		Subject: spec,
		Context: map[string]string{"candidates": strings.Join(candidates, ";")},
		Hint:    "add a parameter list, e.g. Type.Method(int,string)",
		Cause:   ErrAmbiguous,
		kind:    ErrResolution,
	}
}

// NewMissingMetadataError reports a tweak type without a descriptor.
func NewMissingMetadataError(typeName string) error {
	return &DetailError{
		Type:    "registration failed",
		Message: "tweak type does not implement Metadata()",
		Subject: typeName,
		Hint:    "add a Metadata() tweak.Metadata method to the tweak",
		kind:    ErrMissingMetadata,
	}
}

// NewInstallationError reports that the installer rejected an override.
func NewInstallationError(owner, target string, cause error) error {
	return &DetailError{
		Type:    "installation failed",
		Message: "cannot install override on " + target,
		Subject: owner,
		Cause:   cause,
		kind:    ErrInstallation,
	}
}

// Wrap wraps an error with a sentinel error type.
func Wrap(sentinel error, message string) error {
	return fmt.Errorf("%s: %w", message, sentinel)
}
