package dto

// CheckoutRequest 创建支付会话请求
type CheckoutRequest struct {
	Plan string `json:"plan" binding:"required,oneof=basic elite"`
}

// CheckoutResponse 创建支付会话响应：跳转到支付方托管页面的 URL
type CheckoutResponse struct {
	URL string `json:"url"`
}

// PortalResponse 订阅管理门户响应
type PortalResponse struct {
	URL string `json:"url"`
}

// BillingStatus 订阅状态
type BillingStatus struct {
	Plan            string `json:"plan"`
	HasBilling      bool   `json:"has_billing"`
	SubscriptionEnd string `json:"subscription_end,omitempty"`
}
