package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

const defaultInviteMessage = "I am inviting you to MyOKR, an OKR management tool where you can create, manage and track your OKRs."

var inviteTemplate = template.Must(template.New("invite").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>You're invited to join {{.TeamName}}!</h2>
  <p>{{.Message}}</p>
  <p>Team: {{.TeamName}}</p>
  {{- if .DepartmentName}}
  <p>Department: {{.DepartmentName}}</p>
  {{- end}}
  <a href="{{.Link}}" style="background-color: #3B82F6; color: white; padding: 12px 24px; text-decoration: none; border-radius: 8px; display: inline-block; margin: 20px 0;">Accept Invitation</a>
  <p>This invitation will expire in {{.ExpiryDays}} {{if eq .ExpiryDays 1}}day{{else}}days{{end}}.</p>
  <p>If you can't click the button, copy and paste this link: {{.Link}}</p>
</div>`))

var otpTemplate = template.Must(template.New("otp").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>MyOKR {{.Purpose}} verification</h2>
  <p>Your verification code is:</p>
  <p style="font-size: 32px; font-weight: bold; letter-spacing: 8px;">{{.Code}}</p>
  <p>This code expires in {{.ExpiryMinutes}} minutes. If you did not request it, you can ignore this email.</p>
</div>`))

// InviteData fills the invitation email.
type InviteData struct {
	TeamName       string
	DepartmentName string
	Message        string
	Link           string
	ExpiryDays     int
}

// InviteLink builds the accept URL on the frontend.
func InviteLink(frontendURL, token string) string {
	return strings.TrimRight(frontendURL, "/") + "/accept-invite?token=" + url.QueryEscape(token)
}

// NewInviteMessage renders the invitation email for one recipient.
func NewInviteMessage(to string, data InviteData) (Message, error) {
	if strings.TrimSpace(data.Message) == "" {
		data.Message = defaultInviteMessage
	}

	var buf bytes.Buffer
	if err := inviteTemplate.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("failed to render invite email: %w", err)
	}

	return Message{
		Kind:    KindInvite,
		To:      to,
		Subject: fmt.Sprintf("Invitation to join %s on MyOKR", data.TeamName),
		HTML:    buf.String(),
	}, nil
}

// OTPData fills the verification code email.
type OTPData struct {
	Purpose       string
	Code          string
	ExpiryMinutes int
}

// NewOTPMessage renders the verification code email.
func NewOTPMessage(to string, data OTPData) (Message, error) {
	if data.Purpose != "" {
		data.Purpose = strings.ToUpper(data.Purpose[:1]) + data.Purpose[1:]
	}

	var buf bytes.Buffer
	if err := otpTemplate.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("failed to render otp email: %w", err)
	}

	return Message{
		Kind:    KindOTP,
		To:      to,
		Subject: fmt.Sprintf("MyOKR %s Verification", data.Purpose),
		HTML:    buf.String(),
	}, nil
}
