package sender

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"os"
	"path/filepath"
	"strings"
	texttemplate "text/template"

	"github.com/emrahsandernet/kasarcim/config"
	"github.com/emrahsandernet/kasarcim/internal/model"

	gopkgmail "gopkg.in/gomail.v2"
)

type dialer interface {
	DialAndSend(m ...*gopkgmail.Message) error
}

type EmailSender struct {
	from    string
	tmplDir string
	dialer  dialer
}

func NewEmailSender(cfg *config.Notifier) *EmailSender {
	d := gopkgmail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	d.SSL = cfg.SMTPSSL
	return &EmailSender{from: cfg.SMTPFrom, tmplDir: cfg.TMPLDir, dialer: d}
}

func (s *EmailSender) SendEmail(n model.EmailMessage) error {
	plainBody, htmlBody, err := s.Render(n.Template, n.Data)
	if err != nil {
		return err
	}

	m := gopkgmail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", n.To)
	m.SetHeader("Subject", n.Subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if strings.Contains(htmlBody, "cid:logo") {
		iconPath := filepath.Join(s.tmplDir, "logo.png")
		if _, errStat := os.Stat(iconPath); errStat == nil {
			m.Embed(iconPath, gopkgmail.SetHeader(map[string][]string{"Content-ID": {"<logo>"}}))
		}
	}

	return s.dialer.DialAndSend(m)
}

// Render executes <name>.txt and <name>.html from the template directory.
func (s *EmailSender) Render(name string, data map[string]any) (plain, html string, err error) {
	txtSrc, err := os.ReadFile(filepath.Join(s.tmplDir, name+".txt"))
	if err != nil {
		return "", "", fmt.Errorf("render plain: %w", err)
	}
	htmlSrc, err := os.ReadFile(filepath.Join(s.tmplDir, name+".html"))
	if err != nil {
		return "", "", fmt.Errorf("render html: %w", err)
	}

	var buf bytes.Buffer
	tt, err := texttemplate.New(name).Parse(string(txtSrc))
	if err != nil {
		return "", "", fmt.Errorf("render plain: %w", err)
	}
	if err := tt.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render plain: %w", err)
	}
	plain = buf.String()

	buf.Reset()
	ht, err := htmltemplate.New(name).Parse(string(htmlSrc))
	if err != nil {
		return "", "", fmt.Errorf("render html: %w", err)
	}
	if err := ht.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render html: %w", err)
	}
	return plain, buf.String(), nil
}
