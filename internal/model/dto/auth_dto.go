package dto

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=80"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=32"`
}

// RegisterResponse 注册响应
type RegisterResponse struct {
	UserID   int64  `json:"user_id"`
	Token    string `json:"token"`
	TrialEnd string `json:"trial_end"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

// UserInfo 用户信息（返回给前端，plan 为派生后的有效套餐）
type UserInfo struct {
	ID                 int64  `json:"id"`
	Username           string `json:"username"`
	Email              string `json:"email,omitempty"`
	Plan               string `json:"plan"`
	TrialDaysRemaining int    `json:"trial_days_remaining"`
	AnalysesToday      int    `json:"analyses_today"`
	DailyLimit         int    `json:"daily_limit"` // 0 表示不限量
	SubscriptionEnd    string `json:"subscription_end,omitempty"`
	CreatedAt          string `json:"created_at,omitempty"`
}

// UpdateProfileRequest 更新用户资料请求
type UpdateProfileRequest struct {
	Username string `json:"username" binding:"omitempty,min=3,max=80"`
}

// UsageInfo 当日用量信息
type UsageInfo struct {
	Plan          string `json:"plan"`
	DailyLimit    int    `json:"daily_limit"`
	AnalysesToday int    `json:"analyses_today"`
	Remaining     int    `json:"remaining"` // -1 表示不限量
}
