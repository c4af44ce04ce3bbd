package service

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"incometracker/config"

	"gopkg.in/gomail.v2"
)

// ErrEmailDisabled 邮件服务未启用
var ErrEmailDisabled = errors.New("email service is disabled, set email.enabled=true")

// IncomeSummaryEmail 收入汇总邮件内容
type IncomeSummaryEmail struct {
	Username  string
	TotalText string
	Lines     []string // 每个收入来源一行，如 "Job: $ 1500.00 (75.00% of Total Income)"
	Notes     []string
}

// EmailService 邮件服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// Enabled 是否已配置发送
func (s *EmailService) Enabled() bool {
	return s.cfg != nil && s.cfg.Enabled
}

// SendIncomeSummary 发送收入汇总邮件
func (s *EmailService) SendIncomeSummary(toEmail string, summary IncomeSummaryEmail) error {
	if !s.Enabled() {
		return ErrEmailDisabled
	}
	if toEmail == "" {
		return errors.New("recipient email is empty")
	}

	subject := "[Income Tracker] Income summary"
	body := s.generateSummaryEmailBody(summary)

	return s.sendEmail(toEmail, subject, body)
}

// generateSummaryEmailBody 生成汇总邮件内容，用户输入的文本全部转义
func (s *EmailService) generateSummaryEmailBody(summary IncomeSummaryEmail) string {
	var sources strings.Builder
	if len(summary.Lines) == 0 {
		sources.WriteString("<p class=\"empty\">No income recorded yet.</p>\n")
	}
	for _, line := range summary.Lines {
		sources.WriteString("            <li>" + html.EscapeString(line) + "</li>\n")
	}

	var notes strings.Builder
	for _, n := range summary.Notes {
		notes.WriteString("            <li>" + html.EscapeString(n) + "</li>\n")
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; }
        .header { background: linear-gradient(135deg, #10b981, #059669); color: white; padding: 30px; text-align: center; }
        .content { padding: 30px; color: #333; line-height: 1.8; }
        .total { font-size: 28px; font-weight: 600; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Income Tracker</h1>
        </div>
        <div class="content">
            <p>Hello <strong>%s</strong>,</p>
            <p>Forecasted Total Income for this Month</p>
            <p class="total">%s</p>
            <h3>Income Sources Breakdown</h3>
            <ul>
%s            </ul>
            <h3>Notes about Income</h3>
            <ul>
%s            </ul>
        </div>
        <div class="footer">
            <p>This email was sent automatically, please do not reply.</p>
        </div>
    </div>
</body>
</html>
`, html.EscapeString(summary.Username), html.EscapeString(summary.TotalText), sources.String(), notes.String())
}

// sendEmail 发送邮件
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	return nil
}
