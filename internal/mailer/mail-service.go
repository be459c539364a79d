package mailer

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net"
	"net/smtp"
	"net/url"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

const embedScriptURL = "https://embed.glowdesk.io/chatbot.js"

type MailService struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	mailFrom     string
	mailFromName string
	appURL       string

	templates *template.Template
}

func NewMailService(
	smtpHost string,
	smtpPort string,
	smtpUser string,
	smtpPassword string,
	mailFrom string,
	mailFromName string,
	appURL string,
) *MailService {
	return &MailService{
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUser:     smtpUser,
		smtpPassword: smtpPassword,
		mailFrom:     mailFrom,
		mailFromName: mailFromName,
		appURL:       strings.TrimRight(appURL, "/"),
		templates:    template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

func (s *MailService) SendWelcome(to, name string) error {
	link := s.appURL + "/#/signin"
	html, err := s.render("welcome-email.html", map[string]string{
		"Name": name,
		"Link": link,
	})
	if err != nil {
		return err
	}
	text := fmt.Sprintf("Hi %s,\r\n\r\nWelcome to GlowDesk! Your dashboard is ready.\r\nSign in: %s\r\n", name, link)
	return s.send(to, "Welcome to GlowDesk! Your Dashboard Awaits", text, html)
}

func (s *MailService) SendVerifyEmail(to, name string, businessID uint, token string) error {
	link := fmt.Sprintf("%s/verifyEmail/%d?token=%s", s.appURL, businessID, url.QueryEscape(token))
	html, err := s.render("verify-email.html", map[string]string{
		"Name": name,
		"Link": link,
	})
	if err != nil {
		return err
	}
	text := fmt.Sprintf("Please verify your email address by opening this link:\r\n%s\r\n", link)
	return s.send(to, "Verify your email", text, html)
}

func (s *MailService) SendResetPassword(to, name, token string) error {
	link := fmt.Sprintf("%s/#/reset-password?token=%s", s.appURL, url.QueryEscape(token))
	html, err := s.render("reset-password-email.html", map[string]string{
		"Name": name,
		"Link": link,
	})
	if err != nil {
		return err
	}
	text := fmt.Sprintf("Hi %s,\r\n\r\nReset your GlowDesk password here:\r\n%s\r\n\r\nIf you did not request this, ignore this email.\r\n", name, link)
	return s.send(to, "Reset your GlowDesk password", text, html)
}

func (s *MailService) SendEmbedCode(to, name string, businessID uint) error {
	embedCode := fmt.Sprintf(`<script src="%s?biz=%d"></script>`, embedScriptURL, businessID)
	html, err := s.render("embed-code-email.html", map[string]string{
		"Name":      name,
		"EmbedCode": embedCode,
	})
	if err != nil {
		return err
	}
	text := fmt.Sprintf("Hi %s,\r\n\r\nYour GlowDesk chatbot is ready. Paste this snippet into your site:\r\n\r\n%s\r\n", name, embedCode)
	return s.send(to, "Your GlowDesk chatbot code is ready", text, html)
}

func (s *MailService) render(name string, data map[string]string) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *MailService) send(to, subject, textBody, htmlBody string) error {
	msg := s.buildMessage(to, subject, textBody, htmlBody)

	addr := s.smtpHost + ":" + s.smtpPort
	log.Printf("[MAIL] smtp sending to=%s via=%s", to, addr)

	if err := s.sendSMTPWithTimeout(addr, to, msg); err != nil {
		return err
	}

	log.Printf("[MAIL] sent to=%s", to)
	return nil
}

// buildMessage assembles a multipart/alternative message: the plain-text
// variant first, the HTML variant last, so clients prefer the HTML one.
func (s *MailService) buildMessage(to, subject, textBody, htmlBody string) []byte {
	const boundary = "=_glowdesk_alternative"
	fromHeader := fmt.Sprintf("%s <%s>", s.mailFromName, s.mailFrom)

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		fmt.Sprintf(`Content-Type: multipart/alternative; boundary="%s"`, boundary),
		"",
		"--" + boundary,
		`Content-Type: text/plain; charset="UTF-8"`,
		"",
		textBody,
		"--" + boundary,
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		htmlBody,
		"--" + boundary + "--",
		"",
	}, "\r\n")

	return []byte(msg)
}

func (s *MailService) sendSMTPWithTimeout(addr, to string, msg []byte) error {
	conn, err := net.DialTimeout("tcp", addr, 8*time.Second)
	if err != nil {
		return err
	}
	// deadline covers the whole SMTP conversation
	_ = conn.SetDeadline(time.Now().Add(15 * time.Second))

	c, err := smtp.NewClient(conn, s.smtpHost)
	if err != nil {
		return err
	}
	defer func() { _ = c.Quit() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.smtpHost}); err != nil {
			return err
		}
	}

	auth := smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)
	if err := c.Auth(auth); err != nil {
		return err
	}

	if err := c.Mail(s.mailFrom); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
