package scenario

import (
	"errors"
	"testing"

	"compliance_edu_backend/internal/model"
	"compliance_edu_backend/internal/util"
)

func node(id, parent string, root bool, order int) model.ScenarioNode {
	n := model.ScenarioNode{IsRoot: root, NodeText: "text " + id, SortOrder: order}
	n.ID = id
	if parent != "" {
		p := parent
		n.ParentNodeID = &p
	}
	return n
}

func leaf(id, parent string, order int, compliant bool, explanation string) model.ScenarioNode {
	n := node(id, parent, false, order)
	n.IsCompliant = &compliant
	n.Explanation = explanation
	return n
}

// root
// ├── a (leaf, compliant)
// └── b
//     ├── b2 (leaf, violation)  sort 0
//     └── b1 (leaf, compliant)  sort 1
func sampleNodes() []model.ScenarioNode {
	return []model.ScenarioNode{
		leaf("b1", "b", 1, true, "reported to DPO"),
		node("b", "root", false, 1),
		leaf("a", "root", 0, true, "consent obtained"),
		node("root", "", true, 0),
		leaf("b2", "b", 0, false, "shared data without consent"),
	}
}

func mustTree(t *testing.T, nodes []model.ScenarioNode) *Tree {
	t.Helper()
	tree, err := NewTree(nodes)
	if err != nil {
		t.Fatalf("NewTree: %v", err)
	}
	return tree
}

func TestNewTreeErrors(t *testing.T) {
	tests := []struct {
		name  string
		nodes []model.ScenarioNode
		want  error
	}{
		{name: "empty", nodes: nil, want: util.ErrNoDecisionTree},
		{name: "no root", nodes: []model.ScenarioNode{node("a", "", false, 0)}, want: util.ErrMalformedTree},
		{name: "two roots", nodes: []model.ScenarioNode{node("a", "", true, 0), node("b", "", true, 0)}, want: util.ErrMalformedTree},
		{name: "duplicate id", nodes: []model.ScenarioNode{node("a", "", true, 0), node("a", "", false, 0)}, want: util.ErrMalformedTree},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTree(tt.nodes)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestActiveNodeStartsAtRoot(t *testing.T) {
	tree := mustTree(t, sampleNodes())
	n, err := tree.ActiveNode("")
	if err != nil || n.ID != "root" {
		t.Fatalf("ActiveNode(\"\") = %v, %v", n, err)
	}
	if _, err := tree.ActiveNode("missing"); !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestChildrenSortedBySortOrder(t *testing.T) {
	tree := mustTree(t, sampleNodes())

	got := tree.Children("root")
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("root children = %v", ids(got))
	}
	got = tree.Children("b")
	if len(got) != 2 || got[0].ID != "b2" || got[1].ID != "b1" {
		t.Fatalf("b children = %v", ids(got))
	}
}

func TestChooseToLeafYieldsVerdict(t *testing.T) {
	tree := mustTree(t, []model.ScenarioNode{
		node("root", "", true, 0),
		leaf("A", "root", 0, true, "well done"),
	})
	p := NewPlayer(tree)

	if _, ok := p.Verdict(); ok {
		t.Fatal("root is not a leaf")
	}
	if err := p.Choose("A"); err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if !p.IsLeaf() || len(p.Children()) != 0 {
		t.Fatal("A should be a leaf")
	}
	v, ok := p.Verdict()
	if !ok || !v.Compliant || v.Explanation != "well done" {
		t.Fatalf("verdict = %+v, %v", v, ok)
	}
	if p.Step() != 2 {
		t.Fatalf("step = %d, want 2", p.Step())
	}
}

func TestChooseRejectsNonChild(t *testing.T) {
	p := NewPlayer(mustTree(t, sampleNodes()))

	if err := p.Choose("b1"); !errors.Is(err, util.ErrInvalidChoice) {
		t.Fatalf("grandchild: err = %v", err)
	}
	if err := p.Choose("a"); err != nil {
		t.Fatal(err)
	}
	if err := p.Choose("root"); !errors.Is(err, util.ErrInvalidChoice) {
		t.Fatalf("choose at leaf: err = %v", err)
	}
	if p.ActiveNode().ID != "a" {
		t.Fatalf("active = %s, want a", p.ActiveNode().ID)
	}
}

func TestRestartReturnsToRoot(t *testing.T) {
	p := NewPlayer(mustTree(t, sampleNodes()))
	for _, id := range []string{"b", "b2"} {
		if err := p.Choose(id); err != nil {
			t.Fatal(err)
		}
	}
	v, _ := p.Verdict()
	if v.Compliant {
		t.Fatal("b2 is a violation")
	}

	p.Restart()
	if p.ActiveNode().ID != "root" || p.Step() != 1 || len(p.State().History) != 0 {
		t.Fatalf("after restart: active=%s step=%d", p.ActiveNode().ID, p.Step())
	}
}

func TestAnyChildChainTerminatesWithinDepth(t *testing.T) {
	tree := mustTree(t, sampleNodes())
	depth, err := tree.Depth()
	if err != nil {
		t.Fatal(err)
	}
	if depth != 2 {
		t.Fatalf("depth = %d, want 2", depth)
	}

	// 每次都选最后一个孩子，再每次选第一个
	for _, pick := range []func([]*model.ScenarioNode) string{
		func(c []*model.ScenarioNode) string { return c[len(c)-1].ID },
		func(c []*model.ScenarioNode) string { return c[0].ID },
	} {
		p := NewPlayer(tree)
		steps := 0
		for !p.IsLeaf() {
			if err := p.Choose(pick(p.Children())); err != nil {
				t.Fatal(err)
			}
			steps++
			if steps > depth {
				t.Fatalf("exceeded depth %d", depth)
			}
		}
	}
}

func TestValidateDetectsCycleAndOrphans(t *testing.T) {
	// 根节点的 parent 指向自己的子孙，形成可达的环
	cyclic := []model.ScenarioNode{
		node("root", "x", true, 0),
		node("x", "root", false, 0),
	}
	tree := mustTree(t, cyclic)
	if _, err := tree.Validate(); !errors.Is(err, util.ErrMalformedTree) {
		t.Fatalf("err = %v, want ErrMalformedTree", err)
	}
	if _, err := tree.Depth(); !errors.Is(err, util.ErrMalformedTree) {
		t.Fatalf("depth err = %v, want ErrMalformedTree", err)
	}

	withOrphans := append(sampleNodes(), node("o1", "o2", false, 0), node("o2", "o1", false, 0))
	tree = mustTree(t, withOrphans)
	unreachable, err := tree.Validate()
	if err != nil {
		t.Fatal(err)
	}
	if unreachable != 2 {
		t.Fatalf("unreachable = %d, want 2", unreachable)
	}
}

func TestResume(t *testing.T) {
	tree := mustTree(t, sampleNodes())
	p, err := Resume(tree, State{CurrentNodeID: "b", History: []string{"root"}})
	if err != nil {
		t.Fatal(err)
	}
	if p.ActiveNode().ID != "b" || p.Step() != 2 {
		t.Fatalf("resumed at %s step %d", p.ActiveNode().ID, p.Step())
	}

	if _, err := Resume(tree, State{CurrentNodeID: "gone"}); !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func ids(nodes []*model.ScenarioNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}
