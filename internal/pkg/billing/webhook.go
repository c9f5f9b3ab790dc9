package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// webhook 事件类型
const (
	EventCheckoutCompleted     = "checkout.completed"
	EventInvoicePaid           = "invoice.paid"
	EventSubscriptionCancelled = "subscription.cancelled"
)

var (
	ErrInvalidSignature = errors.New("无效的 webhook 签名")
	ErrStaleTimestamp   = errors.New("webhook 时间戳过期")
)

// 签名时间戳允许的最大偏移，防重放
const signatureTolerance = 5 * time.Minute

// Event 支付方推送的异步事件
type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

// EventData 事件负载。不同事件类型只填充部分字段：
// checkout.completed 带 user_id/plan/customer/subscription，
// invoice.paid 与 subscription.cancelled 带 customer。
type EventData struct {
	UserID       int64  `json:"user_id,string,omitempty"`
	Plan         string `json:"plan,omitempty"`
	Customer     string `json:"customer,omitempty"`
	Subscription string `json:"subscription,omitempty"`
}

// VerifySignature 校验 webhook 签名。
// 签名头格式 "t=<unix>,v1=<hex>"，v1 = HMAC-SHA256(secret, "<unix>.<payload>")。
func VerifySignature(payload []byte, header, secret string, now time.Time) error {
	var ts int64
	var sig string

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, _ = strconv.ParseInt(kv[1], 10, 64)
		case "v1":
			sig = kv[1]
		}
	}

	if ts == 0 || sig == "" {
		return ErrInvalidSignature
	}

	sent := time.Unix(ts, 0)
	if now.Sub(sent) > signatureTolerance || sent.Sub(now) > signatureTolerance {
		return ErrStaleTimestamp
	}

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return ErrInvalidSignature
	}
	return nil
}

// SignPayload 按 VerifySignature 的格式生成签名头（测试与本地联调用）
func SignPayload(payload []byte, secret string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", at.Unix())
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

// ParseEvent 解析事件负载
func ParseEvent(payload []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("parsing webhook event: %w", err)
	}
	if event.Type == "" {
		return nil, errors.New("webhook event missing type")
	}
	return &event, nil
}
