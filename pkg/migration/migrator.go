package migration

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lazysuperheroes/mission-cli/pkg/common"
	"github.com/lazysuperheroes/mission-cli/pkg/common/iface"
	"gopkg.in/yaml.v3"
)

// PatchCondition decides whether a user node is replaced by the new default
type PatchCondition interface {
	ShouldApply(userNode, oldNode *yaml.Node) bool
}

type Always struct{}
type IfUnchanged struct{}

func (Always) ShouldApply(_, _ *yaml.Node) bool { return true }

// IfUnchanged applies only while the user still has the old default.
// Comments are ignored.
func (IfUnchanged) ShouldApply(userNode, oldNode *yaml.Node) bool {
	if oldNode == nil {
		return false
	}
	ub, _ := yaml.Marshal(withoutComments(userNode))
	ob, _ := yaml.Marshal(withoutComments(oldNode))
	return bytes.Equal(ub, ob)
}

func withoutComments(n *yaml.Node) *yaml.Node {
	c := common.CloneNode(n)
	var strip func(*yaml.Node)
	strip = func(n *yaml.Node) {
		n.HeadComment, n.LineComment, n.FootComment = "", "", ""
		for _, ch := range n.Content {
			strip(ch)
		}
	}
	strip(c)
	return c
}

// PatchRule patches one path of the user document. Missing nodes are always
// inserted from the new default.
type PatchRule struct {
	Path      []string
	Condition PatchCondition
	// Transform rewrites the replacement before it is written
	Transform func(newNode *yaml.Node) *yaml.Node
	// Remove deletes the user node instead of replacing it
	Remove bool
}

// Step migrates a document from one version to the next
type Step struct {
	From    string
	To      string
	Apply   func(user, oldDef, newDef *yaml.Node) (*yaml.Node, error)
	OldYAML []byte
	NewYAML []byte
}

// PatchEngine applies rules to User, comparing against the Old and New
// defaults. Order, comments and anchors of User are kept.
type PatchEngine struct {
	Old   *yaml.Node
	New   *yaml.Node
	User  *yaml.Node
	Rules []PatchRule
}

// ErrAlreadyUpToDate is returned when the document is at the target version
var ErrAlreadyUpToDate = errors.New("already up to date")

func (e *PatchEngine) Apply() error {
	for _, rule := range e.Rules {
		if len(rule.Path) == 0 {
			return errors.New("patch rule with empty path")
		}
		userNode := ResolveNode(e.User, rule.Path)
		newNode := ResolveNode(e.New, rule.Path)

		if userNode == nil {
			if rule.Remove || newNode == nil {
				continue
			}
			parent, _ := findParent(e.User, rule.Path)
			if parent == nil || parent.Kind != yaml.MappingNode {
				continue
			}
			repl := common.CloneNode(newNode)
			if rule.Transform != nil {
				repl = rule.Transform(repl)
			}
			common.SetMappingValue(parent, rule.Path[len(rule.Path)-1], repl)
			continue
		}

		if rule.Condition == nil || !rule.Condition.ShouldApply(userNode, ResolveNode(e.Old, rule.Path)) {
			continue
		}
		if rule.Remove {
			if parent, idx := findParent(e.User, rule.Path); parent != nil && idx >= 0 {
				deleteNode(parent, idx)
			}
			continue
		}
		if newNode == nil {
			continue
		}
		repl := common.CloneNode(newNode)
		if rule.Transform != nil {
			repl = rule.Transform(repl)
		}
		// keep the comments the user wrote on the node
		head, line, foot := userNode.HeadComment, userNode.LineComment, userNode.FootComment
		*userNode = *repl
		userNode.HeadComment, userNode.LineComment, userNode.FootComment = head, line, foot
	}
	return nil
}

// MigrateFile migrates the YAML file at path to latest and writes it back.
// It returns the version the file was at.
func MigrateFile(logger iface.Logger, path, latest string, chain []Step) (string, error) {
	userNode, err := common.LoadYAML(path)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", path, err)
	}
	verNode := ResolveNode(userNode, []string{"version"})
	if verNode == nil {
		return "", fmt.Errorf("%s has no version field", path)
	}
	from := verNode.Value
	if from == latest {
		return from, ErrAlreadyUpToDate
	}
	if versionLessThan(latest, from) {
		return from, fmt.Errorf("%s is at version %s, newer than this CLI supports (%s)", path, from, latest)
	}
	logger.Info("Migrating %s v%s -> v%s", path, from, latest)

	migrated, err := MigrateNode(userNode, from, latest, chain)
	if err != nil {
		return from, fmt.Errorf("migrate %s: %w", path, err)
	}
	if err := common.WriteYAML(path, migrated); err != nil {
		return from, fmt.Errorf("write %s: %w", path, err)
	}
	return from, nil
}

// MigrateNode runs the chain from one version to another on a parsed document
func MigrateNode(user *yaml.Node, from, to string, chain []Step) (*yaml.Node, error) {
	if from == to {
		return user, ErrAlreadyUpToDate
	}
	current := from
	for _, step := range chain {
		if step.From != current {
			continue
		}
		if versionLessThan(to, step.To) {
			break
		}

		oldDef := &yaml.Node{}
		if err := yaml.Unmarshal(step.OldYAML, oldDef); err != nil {
			return nil, fmt.Errorf("parse default for %s: %w", step.From, err)
		}
		newDef := &yaml.Node{}
		if err := yaml.Unmarshal(step.NewYAML, newDef); err != nil {
			return nil, fmt.Errorf("parse default for %s: %w", step.To, err)
		}

		var err error
		if user, err = step.Apply(user, oldDef, newDef); err != nil {
			return nil, fmt.Errorf("migration %s -> %s: %w", step.From, step.To, err)
		}
		current = step.To
	}
	if current != to {
		return nil, fmt.Errorf("incomplete migration: stopped at %s, target %s", current, to)
	}
	return user, nil
}

// SetVersion overwrites the top-level version scalar
func SetVersion(doc *yaml.Node, version string) {
	if v := ResolveNode(doc, []string{"version"}); v != nil {
		v.Value = version
	}
}

// ResolveNode follows map keys and sequence indexes, returning nil when the
// path does not exist
func ResolveNode(root *yaml.Node, path []string) *yaml.Node {
	if root == nil {
		return nil
	}
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	curr := root
	for _, p := range path {
		switch curr.Kind {
		case yaml.MappingNode:
			curr = common.GetChildByKey(curr, p)
		case yaml.SequenceNode:
			idx, err := strconv.Atoi(p)
			if err != nil || idx < 0 || idx >= len(curr.Content) {
				return nil
			}
			curr = curr.Content[idx]
		default:
			return nil
		}
		if curr == nil {
			return nil
		}
	}
	return curr
}

// findParent returns the node holding the last path segment and the index
// of its key (mappings) or element (sequences), -1 when absent
func findParent(root *yaml.Node, path []string) (*yaml.Node, int) {
	parent := ResolveNode(root, path[:len(path)-1])
	if parent == nil {
		return nil, -1
	}
	target := path[len(path)-1]
	switch parent.Kind {
	case yaml.MappingNode:
		for j := 0; j+1 < len(parent.Content); j += 2 {
			if parent.Content[j].Value == target {
				return parent, j
			}
		}
	case yaml.SequenceNode:
		if idx, err := strconv.Atoi(target); err == nil && idx >= 0 && idx < len(parent.Content) {
			return parent, idx
		}
	}
	return parent, -1
}

func deleteNode(parent *yaml.Node, idx int) {
	switch parent.Kind {
	case yaml.MappingNode:
		if idx%2 == 0 {
			parent.Content = append(parent.Content[:idx], parent.Content[idx+2:]...)
		}
	case yaml.SequenceNode:
		parent.Content = append(parent.Content[:idx], parent.Content[idx+1:]...)
	}
}

func versionLessThan(v1, v2 string) bool {
	s1 := strings.Split(strings.TrimPrefix(v1, "v"), ".")
	s2 := strings.Split(strings.TrimPrefix(v2, "v"), ".")
	for i := 0; i < len(s1) && i < len(s2); i++ {
		n1, _ := strconv.Atoi(s1[i])
		n2, _ := strconv.Atoi(s2[i])
		if n1 != n2 {
			return n1 < n2
		}
	}
	return len(s1) < len(s2)
}
