// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	texttemplate "text/template"
)

// InvitationEmailData holds data for group invitation templates.
type InvitationEmailData struct {
	SiteName    string
	GroupTitle  string
	InviterName string
	Role        string
	RespondURL  string
}

var (
	invitationText = texttemplate.Must(texttemplate.New("invitation_text").Parse(invitationTextTemplate))
	invitationHTML = template.Must(template.New("invitation_html").Parse(invitationHTMLTemplate))
)

// BuildInvitationEmail creates an invitation with both HTML and text bodies.
func BuildInvitationEmail(to string, data InvitationEmailData) Email {
	var text, html bytes.Buffer
	_ = invitationText.Execute(&text, data)
	_ = invitationHTML.Execute(&html, data)
	return Email{
		To:       to,
		Subject:  fmt.Sprintf("You're invited to join %s on %s", data.GroupTitle, data.SiteName),
		TextBody: text.String(),
		HTMLBody: html.String(),
	}
}

const invitationTextTemplate = `{{.InviterName}} invited you to join the group "{{.GroupTitle}}" on {{.SiteName}} as a {{.Role}}.

Accept or decline the invitation here:
{{.RespondURL}}

If you were not expecting this invitation, you can ignore this email.
`

const invitationHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Group invitation</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #0f766e;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">
                {{.InviterName}} invited you to join <strong>{{.GroupTitle}}</strong> as a {{.Role}}.
              </p>
              <div style="text-align: center; margin-bottom: 24px;">
                <a href="{{.RespondURL}}" style="display: inline-block; padding: 12px 32px; background-color: #0f766e; color: #ffffff; text-decoration: none; border-radius: 6px; font-weight: 600;">View invitation</a>
              </div>
              <p style="margin: 0; font-size: 13px; color: #9ca3af; text-align: center;">
                If you were not expecting this invitation, you can ignore this email.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>
`
