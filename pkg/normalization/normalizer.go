// Package normalization implements Unicode normalization form handling for
// filesystem entry names. Filesystems that store names in decomposed form
// (NFD) confuse software that expects the composed form (NFC) used virtually
// everywhere else, so this package classifies names by normalization form and
// produces composed equivalents.
package normalization

import (
	"golang.org/x/text/unicode/norm"
)

// Form represents the detected normalization form of an entry name.
type Form uint8

const (
	// FormComposed indicates that a name is already in fully composed (NFC)
	// form. Names containing no characters with composed equivalents also
	// classify as composed, since composition would leave them unchanged.
	FormComposed Form = iota
	// FormDecomposed indicates that a name contains at least one decomposed
	// character sequence that composition would change.
	FormDecomposed
)

// String provides a human-readable representation of a normalization form.
func (f Form) String() string {
	switch f {
	case FormComposed:
		return "NFC"
	case FormDecomposed:
		return "NFD"
	default:
		return "unknown"
	}
}

// IsComposed returns true if composing the name would be a no-op, i.e. the
// name is already in NFC form (or contains no composable sequences at all).
func IsComposed(name string) bool {
	return norm.NFC.IsNormalString(name)
}

// Compose returns the fully composed (NFC) form of a name. Names mixing
// composed and decomposed sequences are normalized as a whole. The operation
// is idempotent: composing the output again yields the same string.
func Compose(name string) string {
	return norm.NFC.String(name)
}

// ComposedForm classifies a name and, if it isn't already composed, produces
// its composed equivalent. The boolean return indicates whether conversion is
// needed: it is false for names that are already composed, in which case the
// name is returned unchanged.
func ComposedForm(name string) (string, bool) {
	if norm.NFC.IsNormalString(name) {
		return name, false
	}
	return norm.NFC.String(name), true
}

// Decompose returns the fully decomposed (NFD) form of a name. It is the
// reverse rendering used when preparing names for software that expects
// decomposed storage.
func Decompose(name string) string {
	return norm.NFD.String(name)
}

// DecomposedForm classifies a name against the decomposed form and, if it
// isn't already decomposed, produces its decomposed equivalent. The boolean
// return indicates whether conversion is needed.
func DecomposedForm(name string) (string, bool) {
	if norm.NFD.IsNormalString(name) {
		return name, false
	}
	return norm.NFD.String(name), true
}

// Rendered returns the name rendered in the target form and whether a rename
// is needed to reach it.
func Rendered(name string, target Form) (string, bool) {
	if target == FormDecomposed {
		return DecomposedForm(name)
	}
	return ComposedForm(name)
}

// Classify determines the normalization form of a name.
func Classify(name string) Form {
	if norm.NFC.IsNormalString(name) {
		return FormComposed
	}
	return FormDecomposed
}
