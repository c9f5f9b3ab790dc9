package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/options_go_server/config"
	"github.com/qs3c/options_go_server/internal/model"
	"github.com/qs3c/options_go_server/internal/model/dto"
	"github.com/qs3c/options_go_server/internal/pkg/email"
	"github.com/qs3c/options_go_server/internal/pkg/jwt"
	"github.com/qs3c/options_go_server/internal/pkg/oauth"
	"github.com/qs3c/options_go_server/internal/repository"
)

var (
	ErrEmailExists        = errors.New("邮箱已被注册")
	ErrUsernameExists     = errors.New("用户名已被使用")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrUserNotFound       = errors.New("用户不存在")
)

type AuthService struct {
	userRepo     *repository.UserRepository
	entitlement  *EntitlementService
	emailService *email.Service
	cfg          *config.Config
	githubOAuth  *oauth.GithubOAuth
}

func NewAuthService(
	userRepo *repository.UserRepository,
	entitlement *EntitlementService,
	emailService *email.Service,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		entitlement:  entitlement,
		emailService: emailService,
		cfg:          cfg,
		githubOAuth: oauth.NewGithubOAuth(
			cfg.OAuth.Github.ClientID,
			cfg.OAuth.Github.ClientSecret,
			cfg.OAuth.Github.RedirectURI,
		),
	}
}

// Register 用户注册，注册即开始试用
func (s *AuthService) Register(req *dto.RegisterRequest, now time.Time) (*dto.RegisterResponse, error) {
	exists, err := s.userRepo.ExistsByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	exists, err = s.userRepo.ExistsByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	passwordStr := string(hashedPassword)
	trialEnd := now.Add(time.Duration(s.cfg.Subscription.TrialDays) * 24 * time.Hour)

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: &passwordStr,
		Plan:         model.PlanTrial,
		TrialStart:   now,
		TrialEnd:     &trialEnd,
		IsActive:     true,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	if s.emailService != nil {
		if err := s.emailService.SendWelcome(user.Email, user.Username, s.cfg.Subscription.TrialDays); err != nil {
			log.Printf("Failed to send welcome email to user %d: %v", user.ID, err)
		}
	}

	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.RegisterResponse{
		UserID:   user.ID,
		Token:    token,
		TrialEnd: trialEnd.Format(time.RFC3339),
	}, nil
}

// Login 用户登录，顺带把已到期的试用状态写回存储
func (s *AuthService) Login(req *dto.LoginRequest, now time.Time) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.entitlement.ExpireTrialIfNeeded(user, now); err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{"last_login": now}); err != nil {
		log.Printf("Failed to record last login for user %d: %v", user.ID, err)
	}

	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	info, err := s.BuildUserInfo(user, now)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: token,
		User:  info,
	}, nil
}

// GetUserByID 根据 ID 获取用户
func (s *AuthService) GetUserByID(id int64) (*model.User, error) {
	return s.userRepo.GetByID(id)
}

// BuildUserInfo 构造返回给前端的用户信息，plan 为派生后的有效套餐
func (s *AuthService) BuildUserInfo(user *model.User, now time.Time) (*dto.UserInfo, error) {
	effective, err := s.entitlement.EffectivePlan(user, now)
	if err != nil {
		return nil, err
	}

	info := &dto.UserInfo{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		Plan:          effective,
		AnalysesToday: user.AnalysesToday,
		DailyLimit:    s.entitlement.DailyLimit(effective),
		CreatedAt:     user.CreatedAt.Format(time.RFC3339),
	}

	if effective == model.PlanTrial && user.TrialEnd != nil {
		remaining := int(user.TrialEnd.Sub(now).Hours() / 24)
		if remaining < 0 {
			remaining = 0
		}
		info.TrialDaysRemaining = remaining
	}
	if user.SubscriptionEnd != nil {
		info.SubscriptionEnd = user.SubscriptionEnd.Format(time.RFC3339)
	}

	return info, nil
}

// GetGithubAuthURL 获取 GitHub 授权 URL
func (s *AuthService) GetGithubAuthURL(state string) string {
	return s.githubOAuth.GetAuthURL(state)
}

// GithubCallback 处理 GitHub OAuth 回调，首次登录自动注册并开始试用
func (s *AuthService) GithubCallback(ctx context.Context, code string, now time.Time) (*dto.LoginResponse, error) {
	token, err := s.githubOAuth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	githubUser, err := s.githubOAuth.GetUser(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to get github user: %w", err)
	}

	githubIDStr := fmt.Sprintf("%d", githubUser.ID)

	user, err := s.userRepo.GetByGithubID(githubIDStr)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if user == nil {
		trialEnd := now.Add(time.Duration(s.cfg.Subscription.TrialDays) * 24 * time.Hour)
		user = &model.User{
			Username:   githubUser.Login,
			GithubID:   &githubIDStr,
			Plan:       model.PlanTrial,
			TrialStart: now,
			TrialEnd:   &trialEnd,
			IsActive:   true,
		}

		if githubUser.Email != "" {
			user.Email = githubUser.Email
		} else {
			user.Email = fmt.Sprintf("%s@users.noreply.github.com", githubUser.Login)
		}

		// 确保用户名唯一
		exists, _ := s.userRepo.ExistsByUsername(user.Username)
		if exists {
			user.Username = fmt.Sprintf("%s_%d", githubUser.Login, githubUser.ID)
		}

		if err := s.userRepo.Create(user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	} else {
		if err := s.entitlement.ExpireTrialIfNeeded(user, now); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{"last_login": now}); err != nil {
		log.Printf("Failed to record last login for user %d: %v", user.ID, err)
	}

	jwtToken, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	info, err := s.BuildUserInfo(user, now)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: jwtToken,
		User:  info,
	}, nil
}
