package rules

import (
	"os"
	"strings"
)

// Status represents the validation status of a rule. Validation is advisory:
// it is consumed by the control surface for display and never blocks saving,
// since a rule may reference a path that's only temporarily unavailable.
type Status uint8

const (
	// StatusActive indicates that a rule's path exists, is a directory, and
	// is accessible, and that the rule contributes to the effective watch
	// set.
	StatusActive Status = iota
	// StatusNotFound indicates that a rule's path does not exist.
	StatusNotFound
	// StatusNotADirectory indicates that a rule's path exists but is not a
	// directory.
	StatusNotADirectory
	// StatusPermissionDenied indicates that the process lacks permission to
	// subscribe to a rule's path.
	StatusPermissionDenied
	// StatusRedundant indicates that a rule's effect is already produced by
	// another rule.
	StatusRedundant
)

// String provides a human-readable representation of a validation status.
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusNotFound:
		return "not found"
	case StatusNotADirectory:
		return "not a directory"
	case StatusPermissionDenied:
		return "no access"
	case StatusRedundant:
		return "redundant"
	default:
		return "unknown"
	}
}

// Validation is the result of validating a single rule.
type Validation struct {
	// Status is the rule's validation status.
	Status Status
	// CoveredBy is the index of the covering rule when Status is
	// StatusRedundant. It is -1 otherwise.
	CoveredBy int
}

// Validate checks that a rule's path exists, is a directory, and is
// accessible to the process. It does not perform redundancy analysis, which
// requires the full rule sequence (see ValidateAll).
func Validate(rule Rule) Validation {
	result := Validation{CoveredBy: -1}

	// Probe the path.
	info, err := os.Stat(rule.Path)
	if err != nil {
		if os.IsNotExist(err) {
			result.Status = StatusNotFound
		} else if os.IsPermission(err) {
			result.Status = StatusPermissionDenied
		} else {
			result.Status = StatusNotFound
		}
		return result
	} else if !info.IsDir() {
		result.Status = StatusNotADirectory
		return result
	}

	// Verify that the directory can actually be opened for reading, which is
	// what a subscription requires.
	directory, err := os.Open(rule.Path)
	if err != nil {
		if os.IsPermission(err) {
			result.Status = StatusPermissionDenied
		} else {
			result.Status = StatusNotFound
		}
		return result
	}
	directory.Close()

	// Success.
	result.Status = StatusActive
	return result
}

// covers indicates whether an ancestor path covers a descendant path,
// including the case where they're equal.
func covers(ancestor, descendant string) bool {
	if ancestor == descendant {
		return true
	}
	if !strings.HasPrefix(descendant, ancestor) {
		return false
	}
	return strings.HasPrefix(descendant[len(ancestor):], "/") || ancestor == "/"
}

// ValidateAll validates each rule in sequence and additionally performs
// redundancy analysis: a rule whose path duplicates a later rule's path is
// flagged redundant (the last-defined rule wins on exact-path ties), as is a
// rule whose effect is already produced by a covering recursive rule with the
// same action. A covering recursive rule with the opposite action is not
// redundancy, it's a carve-out.
func ValidateAll(ruleList []Rule) []Validation {
	results := make([]Validation, len(ruleList))

	// Perform per-rule filesystem validation.
	for index, rule := range ruleList {
		results[index] = Validate(rule)
	}

	// Flag exact-path duplicates: every rule shadowed by a later rule at the
	// same path is redundant.
	for index, rule := range ruleList {
		if results[index].Status != StatusActive {
			continue
		}
		for later := index + 1; later < len(ruleList); later++ {
			if ruleList[later].Path == rule.Path && results[later].Status == StatusActive {
				results[index].Status = StatusRedundant
				results[index].CoveredBy = later
				break
			}
		}
	}

	// Flag rules whose effect is subsumed by a covering recursive rule with
	// the same action. The most specific covering rule is the one that
	// determines the effective behavior, so compare against it.
	for index, rule := range ruleList {
		if results[index].Status != StatusActive {
			continue
		}
		best := -1
		for candidate, candidateRule := range ruleList {
			if candidate == index || results[candidate].Status != StatusActive {
				continue
			}
			if candidateRule.Mode != ModeRecursive || candidateRule.Path == rule.Path {
				continue
			}
			if !covers(candidateRule.Path, rule.Path) {
				continue
			}
			if best == -1 || len(candidateRule.Path) > len(ruleList[best].Path) {
				best = candidate
			}
		}
		if best >= 0 && ruleList[best].Action == rule.Action {
			results[index].Status = StatusRedundant
			results[index].CoveredBy = best
		}
	}

	// Done.
	return results
}
