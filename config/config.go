package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	OAuth        OAuthConfig        `mapstructure:"oauth"`
	Email        EmailConfig        `mapstructure:"email"`
	CORS         CORSConfig         `mapstructure:"cors"`
	Subscription SubscriptionConfig `mapstructure:"subscription"`
	Billing      BillingConfig      `mapstructure:"billing"`
	MarketData   MarketDataConfig   `mapstructure:"market_data"`
	AI           AIConfig           `mapstructure:"ai"`
	Scanner      ScannerConfig      `mapstructure:"scanner"`
	Pricing      PricingConfig      `mapstructure:"pricing"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type OAuthConfig struct {
	Github GithubOAuthConfig `mapstructure:"github"`
}

type GithubOAuthConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
}

type EmailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type SubscriptionConfig struct {
	TrialDays int                  `mapstructure:"trial_days"` // 试用期天数
	Plans     map[string]PlanLevel `mapstructure:"plans"`
}

type PlanLevel struct {
	DailyQuota int     `mapstructure:"daily_quota"` // 0 表示不限量
	Price      float64 `mapstructure:"price"`
}

type BillingConfig struct {
	BaseURL       string            `mapstructure:"base_url"`
	APIKey        string            `mapstructure:"api_key"`
	WebhookSecret string            `mapstructure:"webhook_secret"`
	PriceIDs      map[string]string `mapstructure:"price_ids"` // plan -> 支付方价格 ID
	SuccessURL    string            `mapstructure:"success_url"`
	CancelURL     string            `mapstructure:"cancel_url"`
	PeriodDays    int               `mapstructure:"period_days"` // 每次续费延长的天数
}

type MarketDataConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type AIConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

type ScannerConfig struct {
	MinPlan        string   `mapstructure:"min_plan"`        // 扫描功能要求的最低套餐
	ContextTickers []string `mapstructure:"context_tickers"` // 行情快照标的
	MaxThemeLength int      `mapstructure:"max_theme_length"`
}

type PricingConfig struct {
	DefaultRiskFreeRate float64 `mapstructure:"default_risk_free_rate"`
	DefaultDTE          int     `mapstructure:"default_dte"`
}

func Load(configPath string) (*Config, error) {
	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	// 检查 config.local.yaml 是否存在
	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 环境变量覆盖
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
