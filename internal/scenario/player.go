package scenario

import (
	"compliance_edu_backend/internal/model"
	"compliance_edu_backend/internal/util"
	"fmt"
)

// State 是可序列化的播放状态，CurrentNodeID 为空表示位于根节点
type State struct {
	CurrentNodeID string   `json:"currentNodeId"`
	History       []string `json:"history"`
}

type Verdict struct {
	Compliant   bool   `json:"compliant"`
	Explanation string `json:"explanation,omitempty"`
}

type Player struct {
	tree  *Tree
	state State
}

func NewPlayer(tree *Tree) *Player {
	return &Player{tree: tree}
}

// Resume 从保存的状态恢复，节点不存在时返回错误
func Resume(tree *Tree, st State) (*Player, error) {
	if _, err := tree.ActiveNode(st.CurrentNodeID); err != nil {
		return nil, err
	}
	for _, id := range st.History {
		if _, ok := tree.Node(id); !ok {
			return nil, fmt.Errorf("history node %s: %w", id, util.ErrNotFound)
		}
	}
	history := make([]string, len(st.History))
	copy(history, st.History)
	return &Player{tree: tree, state: State{CurrentNodeID: st.CurrentNodeID, History: history}}, nil
}

func (p *Player) ActiveNode() *model.ScenarioNode {
	n, err := p.tree.ActiveNode(p.state.CurrentNodeID)
	if err != nil {
		// Resume 已校验过，这里只可能是根节点
		return p.tree.Root()
	}
	return n
}

func (p *Player) Children() []*model.ScenarioNode {
	return p.tree.Children(p.ActiveNode().ID)
}

func (p *Player) IsLeaf() bool {
	return p.tree.IsLeaf(p.ActiveNode().ID)
}

// Choose 只接受当前节点的子节点
func (p *Player) Choose(childID string) error {
	current := p.ActiveNode()
	if !p.tree.isChild(current.ID, childID) {
		return fmt.Errorf("node %s -> %s: %w", current.ID, childID, util.ErrInvalidChoice)
	}
	p.state.History = append(p.state.History, current.ID)
	p.state.CurrentNodeID = childID
	return nil
}

func (p *Player) Restart() {
	p.state = State{}
}

// Verdict 只在叶子节点返回 ok=true；未设置 is_compliant 的叶子按违规处理
func (p *Player) Verdict() (Verdict, bool) {
	if !p.IsLeaf() {
		return Verdict{}, false
	}
	n := p.ActiveNode()
	return Verdict{
		Compliant:   n.IsCompliant != nil && *n.IsCompliant,
		Explanation: n.Explanation,
	}, true
}

// Step 从 1 开始计数
func (p *Player) Step() int {
	return len(p.state.History) + 1
}

func (p *Player) State() State {
	history := make([]string, len(p.state.History))
	copy(history, p.state.History)
	return State{CurrentNodeID: p.state.CurrentNodeID, History: history}
}
