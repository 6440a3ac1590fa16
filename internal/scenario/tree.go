// Package scenario 实现分支情景模拟的决策树播放器。
//
// 节点以扁平列表的形式从数据库读取，Tree 负责一次性建立 id -> 节点、
// parent -> children 两个索引；Player 在树上逐步前进，直到叶子节点给出结论。
package scenario

import (
	"compliance_edu_backend/internal/model"
	"compliance_edu_backend/internal/util"
	"fmt"
	"sort"
)

type Tree struct {
	root     *model.ScenarioNode
	nodes    map[string]*model.ScenarioNode
	children map[string][]*model.ScenarioNode
}

// NewTree 从一个情景的全部节点构建索引。节点顺序无关紧要，
// 兄弟节点统一按 SortOrder、ID 排序。
func NewTree(nodes []model.ScenarioNode) (*Tree, error) {
	if len(nodes) == 0 {
		return nil, util.ErrNoDecisionTree
	}

	t := &Tree{
		nodes:    make(map[string]*model.ScenarioNode, len(nodes)),
		children: make(map[string][]*model.ScenarioNode),
	}

	for i := range nodes {
		n := &nodes[i]
		if _, dup := t.nodes[n.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate node id %s", util.ErrMalformedTree, n.ID)
		}
		t.nodes[n.ID] = n
		if n.IsRoot {
			if t.root != nil {
				return nil, fmt.Errorf("%w: more than one root node", util.ErrMalformedTree)
			}
			t.root = n
		}
	}
	if t.root == nil {
		return nil, fmt.Errorf("%w: no root node", util.ErrMalformedTree)
	}

	for _, n := range t.nodes {
		if n.ParentNodeID == nil {
			continue
		}
		t.children[*n.ParentNodeID] = append(t.children[*n.ParentNodeID], n)
	}
	for _, list := range t.children {
		sort.Slice(list, func(i, j int) bool {
			if list[i].SortOrder != list[j].SortOrder {
				return list[i].SortOrder < list[j].SortOrder
			}
			return list[i].ID < list[j].ID
		})
	}

	return t, nil
}

func (t *Tree) Root() *model.ScenarioNode {
	return t.root
}

func (t *Tree) Node(id string) (*model.ScenarioNode, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// ActiveNode 为空 id 返回根节点，否则返回对应节点
func (t *Tree) ActiveNode(currentID string) (*model.ScenarioNode, error) {
	if currentID == "" {
		return t.root, nil
	}
	n, ok := t.nodes[currentID]
	if !ok {
		return nil, fmt.Errorf("node %s: %w", currentID, util.ErrNotFound)
	}
	return n, nil
}

func (t *Tree) Children(id string) []*model.ScenarioNode {
	return t.children[id]
}

func (t *Tree) IsLeaf(id string) bool {
	return len(t.children[id]) == 0
}

func (t *Tree) isChild(parentID, childID string) bool {
	for _, c := range t.children[parentID] {
		if c.ID == childID {
			return true
		}
	}
	return false
}

// Validate 检查从根节点可达的部分是否存在环。
// 不可达的孤立节点不影响播放，只返回其数量。
func (t *Tree) Validate() (unreachable int, err error) {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[string]int, len(t.nodes))

	var walk func(id string) error
	walk = func(id string) error {
		state[id] = visiting
		for _, c := range t.children[id] {
			switch state[c.ID] {
			case visiting:
				return fmt.Errorf("%w: cycle through node %s", util.ErrMalformedTree, c.ID)
			case done:
				continue
			}
			if err := walk(c.ID); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}

	if err := walk(t.root.ID); err != nil {
		return 0, err
	}
	return len(t.nodes) - len(state), nil
}

// Depth 返回从根到最深叶子的边数，存在可达环时返回 ErrMalformedTree
func (t *Tree) Depth() (int, error) {
	if _, err := t.Validate(); err != nil {
		return 0, err
	}
	var depth func(id string) int
	depth = func(id string) int {
		deepest := 0
		for _, c := range t.children[id] {
			if d := depth(c.ID) + 1; d > deepest {
				deepest = d
			}
		}
		return deepest
	}
	return depth(t.root.ID), nil
}
