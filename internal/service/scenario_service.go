package service

import (
	"compliance_edu_backend/internal/model"
	"compliance_edu_backend/internal/scenario"
	"compliance_edu_backend/internal/util"
	"compliance_edu_backend/pkg/logger"
	"compliance_edu_backend/pkg/monitoring"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ScenarioStore interface {
	CreateWithNodes(s *model.Scenario, nodes []model.ScenarioNode) error
	FindByID(id string) (*model.Scenario, error)
	List() ([]model.Scenario, error)
	ListNodes(scenarioID string) ([]model.ScenarioNode, error)
	Delete(id string) error
}

type ScenarioService struct {
	Repo     ScenarioStore
	Sessions SessionStore
	Audit    *AuditService
	TTL      time.Duration
}

func NewScenarioService(repo ScenarioStore, sessions SessionStore, audit *AuditService, ttl time.Duration) *ScenarioService {
	return &ScenarioService{
		Repo:     repo,
		Sessions: sessions,
		Audit:    audit,
		TTL:      ttl,
	}
}

// scenarioSession 会话开始时读取一次节点快照，之后的选择都在快照上进行
type scenarioSession struct {
	ID         string               `json:"id"`
	UserID     string               `json:"userId"`
	ScenarioID string               `json:"scenarioId"`
	Title      string               `json:"title"`
	Nodes      []model.ScenarioNode `json:"nodes"`
	State      scenario.State       `json:"state"`
	StartedAt  time.Time            `json:"startedAt"`
}

type ChoiceView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type ScenarioView struct {
	SessionID  string            `json:"sessionId"`
	ScenarioID string            `json:"scenarioId"`
	Title      string            `json:"title"`
	Step       int               `json:"step"`
	Node       ChoiceView        `json:"node"`
	Choices    []ChoiceView      `json:"choices"`
	IsLeaf     bool              `json:"isLeaf"`
	Verdict    *scenario.Verdict `json:"verdict,omitempty"`
}

func (s *ScenarioService) List() ([]model.Scenario, error) {
	return s.Repo.List()
}

func (s *ScenarioService) Get(id string) (*model.Scenario, error) {
	return s.Repo.FindByID(id)
}

// Start 读取并校验决策树，在根节点创建会话
func (s *ScenarioService) Start(ctx context.Context, claims *util.Claims, scenarioID string) (*ScenarioView, error) {
	sc, err := s.Repo.FindByID(scenarioID)
	if err != nil {
		return nil, err
	}
	nodes, err := s.Repo.ListNodes(scenarioID)
	if err != nil {
		return nil, err
	}
	tree, err := scenario.NewTree(nodes)
	if err != nil {
		return nil, err
	}
	unreachable, err := tree.Validate()
	if err != nil {
		return nil, err
	}
	if unreachable > 0 {
		logger.Log.Warn("scenario has unreachable nodes",
			zap.String("scenario_id", scenarioID),
			zap.Int("unreachable", unreachable),
		)
	}

	sess := &scenarioSession{
		ID:         uuid.New().String(),
		UserID:     claims.UserID,
		ScenarioID: sc.ID,
		Title:      sc.Title,
		Nodes:      nodes,
		StartedAt:  time.Now(),
	}
	player := scenario.NewPlayer(tree)
	if err := s.save(ctx, sess, player); err != nil {
		return nil, err
	}
	return s.view(sess, player), nil
}

func (s *ScenarioService) GetSession(ctx context.Context, claims *util.Claims, sessionID string) (*ScenarioView, error) {
	sess, player, err := s.load(ctx, claims, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(sess, player), nil
}

// Choose 走到子节点；到达叶子时记录结果
func (s *ScenarioService) Choose(ctx context.Context, claims *util.Claims, sessionID, nodeID, ip string) (*ScenarioView, error) {
	sess, player, err := s.load(ctx, claims, sessionID)
	if err != nil {
		return nil, err
	}
	if err := player.Choose(nodeID); err != nil {
		return nil, err
	}
	if err := s.save(ctx, sess, player); err != nil {
		return nil, err
	}

	if verdict, ok := player.Verdict(); ok {
		monitoring.ObserveScenarioOutcome(verdict.Compliant)
		s.Audit.Record(AuditEntry{
			UserID:     claims.UserID,
			Action:     model.AuditScenarioCompleted,
			EntityType: "scenario",
			EntityID:   sess.ScenarioID,
			IP:         ip,
			Details: map[string]interface{}{
				"leaf_id":   player.ActiveNode().ID,
				"compliant": verdict.Compliant,
				"steps":     player.Step(),
			},
		})
	}
	return s.view(sess, player), nil
}

func (s *ScenarioService) Restart(ctx context.Context, claims *util.Claims, sessionID string) (*ScenarioView, error) {
	sess, player, err := s.load(ctx, claims, sessionID)
	if err != nil {
		return nil, err
	}
	player.Restart()
	if err := s.save(ctx, sess, player); err != nil {
		return nil, err
	}
	return s.view(sess, player), nil
}

func (s *ScenarioService) load(ctx context.Context, claims *util.Claims, sessionID string) (*scenarioSession, *scenario.Player, error) {
	var sess scenarioSession
	if err := s.Sessions.Load(ctx, scenarioSessionKey(sessionID), &sess); err != nil {
		return nil, nil, err
	}
	// 别人的会话一律当作不存在
	if sess.UserID != claims.UserID {
		return nil, nil, util.ErrSessionNotFound
	}
	tree, err := scenario.NewTree(sess.Nodes)
	if err != nil {
		return nil, nil, err
	}
	player, err := scenario.Resume(tree, sess.State)
	if err != nil {
		return nil, nil, fmt.Errorf("resume scenario session %s: %w", sessionID, err)
	}
	return &sess, player, nil
}

func (s *ScenarioService) save(ctx context.Context, sess *scenarioSession, player *scenario.Player) error {
	sess.State = player.State()
	return s.Sessions.Save(ctx, scenarioSessionKey(sess.ID), sess, s.TTL)
}

func (s *ScenarioService) view(sess *scenarioSession, player *scenario.Player) *ScenarioView {
	active := player.ActiveNode()
	v := &ScenarioView{
		SessionID:  sess.ID,
		ScenarioID: sess.ScenarioID,
		Title:      sess.Title,
		Step:       player.Step(),
		Node:       ChoiceView{ID: active.ID, Text: active.NodeText},
		Choices:    []ChoiceView{},
		IsLeaf:     player.IsLeaf(),
	}
	for _, c := range player.Children() {
		v.Choices = append(v.Choices, ChoiceView{ID: c.ID, Text: c.NodeText})
	}
	if verdict, ok := player.Verdict(); ok {
		v.Verdict = &verdict
	}
	return v
}

type ScenarioNodeInput struct {
	Key         string `json:"key" binding:"required"`
	ParentKey   string `json:"parentKey"`
	NodeText    string `json:"nodeText" binding:"required"`
	IsCompliant *bool  `json:"isCompliant"`
	Explanation string `json:"explanation"`
	SortOrder   int    `json:"sortOrder"`
}

type ScenarioInput struct {
	Title       string              `json:"title" binding:"required,max=255"`
	Description string              `json:"description"`
	ModuleID    *string             `json:"moduleId"`
	Nodes       []ScenarioNodeInput `json:"nodes" binding:"required,min=1,dive"`
}

// BuildNodes 把客户端的 key/parentKey 解析成服务端 ID，并校验树结构
func BuildNodes(in []ScenarioNodeInput) ([]model.ScenarioNode, error) {
	ids := make(map[string]string, len(in))
	for _, n := range in {
		key := strings.TrimSpace(n.Key)
		if _, dup := ids[key]; dup {
			return nil, fmt.Errorf("%w: duplicate node key %q", util.ErrMalformedTree, key)
		}
		ids[key] = model.GenerateUUID()
	}

	nodes := make([]model.ScenarioNode, 0, len(in))
	for _, n := range in {
		node := model.ScenarioNode{
			NodeText:    strings.TrimSpace(n.NodeText),
			IsCompliant: n.IsCompliant,
			Explanation: n.Explanation,
			SortOrder:   n.SortOrder,
		}
		node.ID = ids[strings.TrimSpace(n.Key)]
		if parent := strings.TrimSpace(n.ParentKey); parent != "" {
			pid, ok := ids[parent]
			if !ok {
				return nil, fmt.Errorf("%w: unknown parent key %q", util.ErrMalformedTree, parent)
			}
			node.ParentNodeID = &pid
		} else {
			node.IsRoot = true
		}
		nodes = append(nodes, node)
	}

	tree, err := scenario.NewTree(nodes)
	if err != nil {
		return nil, err
	}
	unreachable, err := tree.Validate()
	if err != nil {
		return nil, err
	}
	if unreachable > 0 {
		return nil, fmt.Errorf("%w: %d nodes unreachable from root", util.ErrMalformedTree, unreachable)
	}
	return nodes, nil
}

func (s *ScenarioService) Create(actor *util.Claims, in ScenarioInput) (*model.Scenario, error) {
	nodes, err := BuildNodes(in.Nodes)
	if err != nil {
		return nil, err
	}
	sc := &model.Scenario{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		ModuleID:    in.ModuleID,
	}
	if err := s.Repo.CreateWithNodes(sc, nodes); err != nil {
		return nil, err
	}
	s.Audit.Record(AuditEntry{
		UserID:     actor.UserID,
		Action:     model.AuditScenarioSaved,
		EntityType: "scenario",
		EntityID:   sc.ID,
		Details:    map[string]interface{}{"nodes": len(nodes)},
	})
	return sc, nil
}

func (s *ScenarioService) Delete(actor *util.Claims, id string) error {
	if err := s.Repo.Delete(id); err != nil {
		return err
	}
	s.Audit.Record(AuditEntry{
		UserID:     actor.UserID,
		Action:     model.AuditScenarioDeleted,
		EntityType: "scenario",
		EntityID:   id,
	})
	return nil
}
