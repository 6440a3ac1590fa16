package service

import (
	"compliance_edu_backend/internal/model"
	"compliance_edu_backend/internal/util"
	"strings"
)

type UserService struct {
	UserRepo UserStore
	Audit    *AuditService
}

func NewUserService(userRepo UserStore, audit *AuditService) *UserService {
	return &UserService{UserRepo: userRepo, Audit: audit}
}

func (s *UserService) GetProfile(userID string) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

type ProfileUpdate struct {
	FullName   *string `json:"fullName"`
	Department *string `json:"department"`
	AvatarURL  *string `json:"avatarUrl"`
}

// UpdateProfile 只改传入的字段；department 传空串表示清除
func (s *UserService) UpdateProfile(userID string, req ProfileUpdate) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return nil, util.ErrInvalidProfile
		}
		user.FullName = name
	}
	if req.Department != nil {
		if *req.Department == "" {
			user.Department = nil
		} else {
			d := model.Department(*req.Department)
			if !d.Valid() {
				return nil, util.ErrInvalidProfile
			}
			user.Department = &d
		}
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(page, limit int) ([]model.User, int64, error) {
	return s.UserRepo.List(page, limit)
}

func (s *UserService) SetRole(actor *util.Claims, userID string, role model.UserRole, ip string) error {
	if !role.Valid() {
		return util.ErrInvalidRole
	}
	// 管理员不能把自己降级，避免系统里没有管理员
	if actor.UserID == userID && role != model.Admin {
		return util.ErrPermissionDenied
	}
	if err := s.UserRepo.UpdateRole(userID, role); err != nil {
		return err
	}
	s.Audit.Record(AuditEntry{
		UserID:     actor.UserID,
		Action:     model.AuditRoleChanged,
		EntityType: "user",
		EntityID:   userID,
		IP:         ip,
		Details:    map[string]interface{}{"role": string(role)},
	})
	return nil
}
