package rules

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/armon/go-radix"

	"github.com/nfd2nfc/nfd2nfc/pkg/logging"
)

// Coverage describes how the effective watch set treats a single directory.
type Coverage struct {
	// Watched indicates whether the directory's direct entries are subject
	// to conversion, i.e. whether the directory warrants a subscription.
	Watched bool
	// Recursive indicates whether coverage extends to subdirectories, which
	// is what allows newly created directories to inherit a subscription.
	Recursive bool
}

// EffectiveWatchSet is the resolved form of a rule sequence: the concrete set
// of directories to subscribe to, plus a predicate used to classify arbitrary
// paths (in particular directories created after resolution). It is immutable
// once resolved (rule changes require a full re-resolution), so consumers
// can read it without synchronization.
type EffectiveWatchSet struct {
	// tree is a prefix tree of rule paths used for nearest-ancestor rule
	// resolution. For rules at the exact same path, the last-defined rule is
	// the one retained.
	tree *radix.Tree
	// subscriptions is the set of directories to subscribe.
	subscriptions map[string]struct{}
}

// Resolve compiles an ordered rule sequence into an effective watch set by
// enumerating the directories currently present under each watch root. Rules
// referencing non-existent paths contribute nothing (and will again once the
// path reappears and rules are re-resolved). Enumeration failures below a
// root are logged and skipped without affecting other branches.
func Resolve(ruleList []Rule, logger *logging.Logger) *EffectiveWatchSet {
	// Build the rule tree. Later rules overwrite earlier rules at the same
	// path, implementing last-defined-wins for exact-path ties.
	tree := radix.New()
	for _, rule := range ruleList {
		tree.Insert(filepath.Clean(rule.Path), rule)
	}

	// Create the watch set.
	watchSet := &EffectiveWatchSet{
		tree:          tree,
		subscriptions: make(map[string]struct{}),
	}

	// Walk the filesystem from every watch rule whose path is effectively
	// watched. Ignore rules are never roots: they only carve exclusions out
	// of an enclosing watch root.
	tree.Walk(func(path string, value interface{}) bool {
		rule := value.(Rule)
		if rule.Action != ActionWatch {
			return false
		}
		if info, err := os.Lstat(path); err != nil {
			logger.Debugf("skipping unavailable watch root %s: %v", path, err)
			return false
		} else if !info.IsDir() {
			logger.Warnf("watch root is not a directory: %s", path)
			return false
		}
		watchSet.walk(path, logger)
		return false
	})

	// Done.
	return watchSet
}

// recursiveAncestor finds the nearest rule at or above the specified path
// whose mode is recursive. Children-only rules have no effect beyond their
// own directory, so they are skipped during ascent.
func (s *EffectiveWatchSet) recursiveAncestor(path string) (Rule, bool) {
	for {
		if value, ok := s.tree.Get(path); ok {
			rule := value.(Rule)
			if rule.Mode == ModeRecursive {
				return rule, true
			}
		}
		parent := filepath.Dir(path)
		if parent == path {
			return Rule{}, false
		}
		path = parent
	}
}

// effectiveRule finds the rule governing a directory: an exact-path rule if
// one exists, otherwise the nearest recursive-mode ancestor rule.
func (s *EffectiveWatchSet) effectiveRule(directory string) (Rule, bool) {
	if value, ok := s.tree.Get(directory); ok {
		return value.(Rule), true
	}
	return s.recursiveAncestor(filepath.Dir(directory))
}

// Covers classifies a directory against the rule tree. It is used by the
// event pipeline both to accept or reject events and to subscribe newly
// created directories with their inherited rule, without a full re-resolve.
func (s *EffectiveWatchSet) Covers(directory string) Coverage {
	rule, ok := s.effectiveRule(filepath.Clean(directory))
	if !ok {
		return Coverage{}
	}
	return Coverage{
		Watched:   rule.Action == ActionWatch,
		Recursive: rule.Mode == ModeRecursive,
	}
}

// walk enumerates a subtree, registering subscriptions according to the
// effective rule at each directory. Symlinked directories are never followed.
func (s *EffectiveWatchSet) walk(directory string, logger *logging.Logger) {
	// Avoid re-enumerating regions already covered by an overlapping root.
	if _, ok := s.subscriptions[directory]; ok {
		return
	}

	// Determine treatment of this directory. An ignore rule in recursive
	// mode prunes the entire subtree (watch rules nested beneath it are
	// their own walk roots). A children-only rule, watch or ignore, has
	// no effect on descendants, so descent continues whenever the nearest
	// recursive-mode ancestor rule is a watch: its coverage is what deeper
	// directories inherit.
	rule, ok := s.effectiveRule(directory)
	if !ok {
		return
	}
	subscribe := rule.Action == ActionWatch
	var descend bool
	if rule.Mode == ModeRecursive {
		descend = rule.Action == ActionWatch
	} else if ancestor, ok := s.recursiveAncestor(filepath.Dir(directory)); ok {
		descend = ancestor.Action == ActionWatch
	}

	// Register the subscription.
	if subscribe {
		s.subscriptions[directory] = struct{}{}
	}
	if !descend {
		return
	}

	// Enumerate children.
	entries, err := os.ReadDir(directory)
	if err != nil {
		logger.Warnf("unable to enumerate %s: %v", directory, err)
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		s.walk(filepath.Join(directory, entry.Name()), logger)
	}
}

// Subscriptions returns the sorted list of directories to subscribe.
func (s *EffectiveWatchSet) Subscriptions() []string {
	result := make([]string, 0, len(s.subscriptions))
	for path := range s.subscriptions {
		result = append(result, path)
	}
	sort.Strings(result)
	return result
}

// Empty indicates whether the watch set contains no subscriptions.
func (s *EffectiveWatchSet) Empty() bool {
	return len(s.subscriptions) == 0
}
