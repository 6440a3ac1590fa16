package service

import (
	"compliance_edu_backend/internal/config"
	"compliance_edu_backend/internal/model"
	"compliance_edu_backend/internal/util"
	"compliance_edu_backend/pkg/logger"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type UserStore interface {
	Create(user *model.User) error
	FindByID(id string) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	Update(user *model.User) error
	UpdateRole(userID string, role model.UserRole) error
	UpdateLastLogin(userID string, at time.Time) error
	List(page, limit int) ([]model.User, int64, error)
}

type AuthService struct {
	UserRepo UserStore
	Audit    *AuditService
	Cfg      *config.Config
}

func NewAuthService(userRepo UserStore, audit *AuditService, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Audit:    audit,
		Cfg:      cfg,
	}
}

// Register 新用户一律是 employee，角色只能由管理员调整
func (s *AuthService) Register(user *model.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	_, err := s.UserRepo.FindByEmail(user.Email)
	if err == nil {
		return util.ErrEmailRegistered
	} else if !errors.Is(err, util.ErrNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashedPassword)
	user.Role = model.Employee
	return s.UserRepo.Create(user)
}

type LoginResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (s *AuthService) Login(email, password, ip string) (*LoginResult, error) {
	user, err := s.UserRepo.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrInvalidCredential
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, util.ErrInvalidCredential
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.UserRepo.UpdateLastLogin(user.ID, now); err != nil {
		logger.Log.Warn("update last login failed", zap.String("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLogin = &now
	}

	s.Audit.Record(AuditEntry{
		UserID:     user.ID,
		Action:     model.AuditLogin,
		EntityType: "user",
		EntityID:   user.ID,
		IP:         ip,
	})

	return &LoginResult{Token: token, User: user}, nil
}
