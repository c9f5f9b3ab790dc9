package service

import (
	"time"

	"github.com/qs3c/options_go_server/internal/model/dto"
	"github.com/qs3c/options_go_server/internal/repository"
)

type UserService struct {
	userRepo    *repository.UserRepository
	authService *AuthService
	entitlement *EntitlementService
}

func NewUserService(userRepo *repository.UserRepository, authService *AuthService, entitlement *EntitlementService) *UserService {
	return &UserService{
		userRepo:    userRepo,
		authService: authService,
		entitlement: entitlement,
	}
}

// Profile 返回用户档案，顺带把已到期的试用状态写回
func (s *UserService) Profile(userID int64, now time.Time) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if err := s.entitlement.ExpireTrialIfNeeded(user, now); err != nil {
		return nil, err
	}
	return s.authService.BuildUserInfo(user, now)
}

// UpdateProfile 更新用户资料，目前只允许改用户名
func (s *UserService) UpdateProfile(userID int64, req *dto.UpdateProfileRequest, now time.Time) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if req.Username != "" && req.Username != user.Username {
		exists, err := s.userRepo.ExistsByUsername(req.Username)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrUsernameExists
		}
		user.Username = req.Username
		if err := s.userRepo.Update(user); err != nil {
			return nil, err
		}
	}

	return s.authService.BuildUserInfo(user, now)
}

// Usage 返回当日用量信息
func (s *UserService) Usage(userID int64, now time.Time) (*dto.UsageInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	effective, err := s.entitlement.EffectivePlan(user, now)
	if err != nil {
		return nil, err
	}

	limit := s.entitlement.DailyLimit(effective)
	used := user.AnalysesToday
	if !sameUTCDay(user.LastAnalysisDate, now) {
		used = 0
	}

	info := &dto.UsageInfo{
		Plan:          effective,
		DailyLimit:    limit,
		AnalysesToday: used,
	}
	if limit <= 0 {
		info.Remaining = -1
	} else {
		remaining := limit - used
		if remaining < 0 {
			remaining = 0
		}
		info.Remaining = remaining
	}
	return info, nil
}
