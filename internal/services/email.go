package services

import (
	"crypto/tls"
	"fmt"
	"html"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/clearview-hq/clearview/backend/internal/models"
	"github.com/clearview-hq/clearview/backend/pkg/logger"
	"gorm.io/gorm"
)

// EmailService sends transactional mail over SMTP. There is no retry logic;
// callers decide whether a dispatch failure is fatal.
type EmailService struct {
	db *gorm.DB
}

type EmailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
}

func NewEmailService(db *gorm.DB) *EmailService {
	return &EmailService{db: db}
}

func (s *EmailService) GetConfig() *EmailConfig {
	config := &EmailConfig{}

	var configs []models.SystemConfig
	s.db.Where("`group` = ?", "email").Find(&configs)

	for _, c := range configs {
		switch c.Key {
		case "email_enabled":
			config.Enabled = c.Value == "true"
		case "email_host":
			config.Host = c.Value
		case "email_port":
			if port, err := strconv.Atoi(c.Value); err == nil {
				config.Port = port
			}
		case "email_username":
			config.Username = c.Value
		case "email_password":
			config.Password = c.Value
		case "email_from":
			config.From = c.Value
		case "email_use_tls":
			config.UseTLS = c.Value == "true"
		}
	}

	if config.Port == 0 {
		config.Port = 587
	}

	return config
}

// Send delivers an HTML email to the given recipients.
func (s *EmailService) Send(to []string, subject, body string) error {
	config := s.GetConfig()
	if !config.Enabled || config.Host == "" {
		return fmt.Errorf("outgoing email is not configured")
	}
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}
	return s.sendEmail(config, to, subject, body)
}

// --- Email body builders ---

// InviteEmailData feeds the project invite mail.
type InviteEmailData struct {
	ProjectName string
	InviterName string
	Role        string
	AppURL      string
}

func (s *EmailService) BuildInviteEmail(d *InviteEmailData) (subject, body string) {
	subject = fmt.Sprintf("[Clearview] %s invited you to %s", d.InviterName, d.ProjectName)

	var sb strings.Builder
	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString("<h2>You've been invited to a project</h2>")
	sb.WriteString(fmt.Sprintf("<p><b>%s</b> invited you to join <b>%s</b> on Clearview as %s.</p>",
		html.EscapeString(d.InviterName), html.EscapeString(d.ProjectName), html.EscapeString(roleLabel(d.Role))))
	sb.WriteString("<p>Sign in with this email address and the project will appear in your dashboard.</p>")
	if d.AppURL != "" {
		sb.WriteString(fmt.Sprintf("<p><a href=\"%s\" style=\"background:#2563eb;color:#fff;padding:10px 18px;border-radius:6px;text-decoration:none;\">Open Clearview</a></p>", d.AppURL))
	}
	sb.WriteString("<hr><p style=\"color: #888; font-size: 12px;\">Sent by Clearview</p>")
	sb.WriteString("</body></html>")

	return subject, sb.String()
}

// ChangeOrderEmailData feeds the client-facing change order mail.
type ChangeOrderEmailData struct {
	ProjectName string
	Number      string
	Subject     string
	Amount      float64
	DueDate     string
	RespondURL  string
}

func (s *EmailService) BuildChangeOrderEmail(d *ChangeOrderEmailData) (subject, body string) {
	subject = fmt.Sprintf("[Clearview] Change order %s for %s requires your approval", d.Number, d.ProjectName)

	var sb strings.Builder
	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString("<h2>Change order approval requested</h2>")
	sb.WriteString("<table style=\"border-collapse: collapse; margin-bottom: 20px;\">")

	rows := []struct{ label, value string }{
		{"Project", d.ProjectName},
		{"Change Order", d.Number},
		{"Subject", d.Subject},
		{"Amount", fmt.Sprintf("$%.2f", d.Amount)},
	}
	if d.DueDate != "" {
		rows = append(rows, struct{ label, value string }{"Respond By", d.DueDate})
	}

	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("<tr><td style=\"padding: 8px; border: 1px solid #ddd; font-weight: bold;\">%s</td><td style=\"padding: 8px; border: 1px solid #ddd;\">%s</td></tr>",
			html.EscapeString(r.label), html.EscapeString(r.value)))
	}
	sb.WriteString("</table>")

	sb.WriteString(fmt.Sprintf("<p><a href=\"%s\" style=\"background:#2563eb;color:#fff;padding:10px 18px;border-radius:6px;text-decoration:none;\">Review &amp; Respond</a></p>", d.RespondURL))
	sb.WriteString("<p style=\"color:#888;\">This link is unique to you and expires automatically. Do not forward it.</p>")
	sb.WriteString("<hr><p style=\"color: #888; font-size: 12px;\">Sent by Clearview</p>")
	sb.WriteString("</body></html>")

	return subject, sb.String()
}

// DecisionEmailData feeds the internal decision notification mail.
type DecisionEmailData struct {
	ProjectName string
	Number      string
	Subject     string
	Decision    string
	Notes       string
	SignedName  string
}

func (s *EmailService) BuildDecisionEmail(d *DecisionEmailData) (subject, body string) {
	subject = fmt.Sprintf("[Clearview] Change order %s: %s", d.Number, decisionLabel(d.Decision))

	var sb strings.Builder
	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString(fmt.Sprintf("<h2>Client responded to change order %s</h2>", html.EscapeString(d.Number)))
	sb.WriteString(fmt.Sprintf("<p><b>%s</b> — %s</p>", html.EscapeString(d.ProjectName), html.EscapeString(d.Subject)))
	sb.WriteString(fmt.Sprintf("<p>Decision: <b>%s</b>", html.EscapeString(decisionLabel(d.Decision))))
	if d.SignedName != "" {
		sb.WriteString(fmt.Sprintf(" (signed by %s)", html.EscapeString(d.SignedName)))
	}
	sb.WriteString("</p>")
	if d.Notes != "" {
		sb.WriteString(fmt.Sprintf("<div style=\"background: #f9f9f9; padding: 16px; border-radius: 4px; white-space: pre-wrap;\">%s</div>", html.EscapeString(d.Notes)))
	}
	sb.WriteString("<hr><p style=\"color: #888; font-size: 12px;\">Sent by Clearview</p>")
	sb.WriteString("</body></html>")

	return subject, sb.String()
}

func roleLabel(role string) string {
	switch role {
	case models.RoleOwner:
		return "an owner"
	case models.RoleEditor:
		return "an editor"
	default:
		return "a viewer"
	}
}

func decisionLabel(decision string) string {
	switch decision {
	case models.ChangeOrderStatusApproved:
		return "Approved"
	case models.ChangeOrderStatusApprovedWithCond:
		return "Approved with conditions"
	case models.ChangeOrderStatusDenied:
		return "Denied"
	case models.ChangeOrderStatusNeedsInfo:
		return "More information requested"
	default:
		return decision
	}
}

// --- SMTP delivery ---

func (s *EmailService) sendEmail(config *EmailConfig, to []string, subject, body string) error {
	from := config.From
	if from == "" {
		from = config.Username
	}

	headers := make(map[string]string)
	headers["From"] = from
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)

	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	var err error
	if config.UseTLS {
		err = s.sendEmailTLS(config, addr, auth, from, to, message.String())
	} else {
		err = smtp.SendMail(addr, auth, from, to, []byte(message.String()))
	}

	if err != nil {
		logger.Warnf("[Email] Failed to send email: %v", err)
		return err
	}

	logger.Infof("[Email] Sent %q to %v", subject, to)
	return nil
}

func (s *EmailService) sendEmailTLS(config *EmailConfig, addr string, auth smtp.Auth, from string, to []string, message string) error {
	tlsConfig := &tls.Config{
		ServerName: config.Host,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, config.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}

	_, err = w.Write([]byte(message))
	if err != nil {
		return err
	}

	return w.Close()
}
