package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/qs3c/options_go_server/config"
)

type Service struct {
	cfg *config.EmailConfig
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg}
}

// SendWelcome 发送欢迎邮件
func (s *Service) SendWelcome(to, username string, trialDays int) error {
	subject := "欢迎加入 - 期权分析平台"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">欢迎加入！</h2>
        <p>您好，%s！</p>
        <p>感谢您注册期权分析平台，您的 %d 天免费试用已经开始。</p>
        <p>现在您可以：</p>
        <ul>
            <li>计算期权理论价格和希腊字母</li>
            <li>模拟不同持有天数下的盈亏曲线</li>
            <li>记录和复盘您的交易</li>
        </ul>
        <p>开始探索吧！</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`, username, trialDays)

	return s.sendHTML(to, subject, body)
}

// SendTrialExpiring 发送试用即将到期提醒
func (s *Service) SendTrialExpiring(to, username string, daysLeft int) error {
	subject := "试用即将到期 - 期权分析平台"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">试用即将到期</h2>
        <p>您好，%s！</p>
        <p>您的免费试用还有 %d 天到期。到期后将无法继续使用分析功能。</p>
        <p>订阅付费套餐可以继续使用全部功能，Elite 套餐还包含 AI 选股扫描。</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`, username, daysLeft)

	return s.sendHTML(to, subject, body)
}

// SendSubscriptionConfirmed 发送订阅成功通知
func (s *Service) SendSubscriptionConfirmed(to, username, plan string) error {
	subject := "订阅成功 - 期权分析平台"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">订阅成功</h2>
        <p>您好，%s！</p>
        <p>您已成功订阅 %s 套餐，感谢您的支持。</p>
        <p>订阅会按周期自动续费，您可以随时在账单门户中管理或取消。</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`, username, strings.ToUpper(plan[:1])+plan[1:])

	return s.sendHTML(to, subject, body)
}

// sendHTML 发送 HTML 邮件
func (s *Service) sendHTML(to, subject, body string) error {
	headers := make(map[string]string)
	headers["From"] = s.cfg.From
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var msg strings.Builder
	for k, v := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg.String()))
}
