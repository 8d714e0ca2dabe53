package pkg

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string // SMTP授权码
	From     string // 显示的发件人
}

// SendEmail 同步发一封HTML邮件，调用方自行决定是否放进goroutine
func SendEmail(cfg SMTPConfig, to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeaders(map[string][]string{
		"From":    {cfg.From},
		"To":      {to},
		"Subject": {subject},
	})
	msg.SetBody("text/html", htmlBody)

	return gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password).DialAndSend(msg)
}

// EmailCodeHTML 验证码邮件正文
func EmailCodeHTML(subject, code string, ttl time.Duration) string {
	return fmt.Sprintf(
		`<p>您好，</p><p>您正在进行 <b>%s</b>，验证码：<b style="font-size:18px;">%s</b></p><p>%d 分钟内有效，请勿转发给任何人。</p>`,
		subject, code, int(ttl.Minutes()))
}
