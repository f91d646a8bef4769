// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/mentorhq/mentorhub/internal/app/system/notify"
	"github.com/microcosm-cc/bluemonday"
)

// previewPolicy strips all markup from previews before they enter an email
// body. Free text (reasons, notes, feedback) is user-authored.
var previewPolicy = bluemonday.StrictPolicy()

const previewMax = 280

// noticeEmailData holds data for the notice email template.
type noticeEmailData struct {
	Subject string
	Preview string
	OpenURL string
}

// subjects maps notification types to human subject lines.
var subjects = map[string]string{
	notify.TypeSlotsPublished:     "New class times available for booking",
	notify.TypeSlotBooked:         "A class slot was booked",
	notify.TypeSlotRescheduled:    "A booked slot was moved",
	notify.TypeMeetingRequested:   "New meeting request",
	notify.TypeMeetingScheduled:   "Meeting scheduled",
	notify.TypeMeetingLink:        "Your meeting link is ready",
	notify.TypeMeetingCancelled:   "Meeting cancelled",
	notify.TypeRescheduleProposed: "Reschedule requested",
	notify.TypeRescheduleResolved: "Reschedule decision",
}

// BuildNoticeEmail renders a notice into an Email with text and HTML
// bodies. The recipient is left for the caller to set.
func BuildNoticeEmail(n notify.Notice, baseURL string) Email {
	subject := n.Subject
	if subject == "" {
		if s, ok := subjects[n.Type]; ok {
			subject = s
		} else {
			subject = "Notification"
		}
	}

	preview := trimPreview(previewPolicy.Sanitize(n.Preview))
	openURL := n.Link
	if openURL == "" {
		openURL = baseURL
	}

	data := noticeEmailData{
		Subject: subject,
		Preview: preview,
		OpenURL: openURL,
	}
	return Email{
		Subject:  fmt.Sprintf("[MentorHub] %s", subject),
		TextBody: buildNoticeText(data),
		HTMLBody: buildNoticeHTML(data),
	}
}

func trimPreview(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= previewMax {
		return s
	}
	return s[:previewMax] + "…"
}

func buildNoticeText(data noticeEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(data.Subject + "\n\n")
	if data.Preview != "" {
		buf.WriteString(data.Preview + "\n\n")
	}
	buf.WriteString("Open: " + data.OpenURL + "\n")
	return buf.String()
}

func buildNoticeHTML(data noticeEmailData) string {
	tmpl := template.Must(template.New("notice").Parse(noticeHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

const noticeHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Subject}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px;">
              <h2 style="margin: 0 0 16px; font-size: 20px; color: #1f2937;">{{.Subject}}</h2>
              {{if .Preview}}<p style="margin: 0 0 24px; padding: 12px; background: #f6f6f6; border-radius: 8px; font-size: 14px; color: #374151;">{{.Preview}}</p>{{end}}
              <table role="presentation" width="100%" cellspacing="0" cellpadding="0">
                <tr>
                  <td align="center">
                    <a href="{{.OpenURL}}" style="display: inline-block; padding: 12px 28px; background-color: #10b981; color: #ffffff; text-decoration: none; font-size: 15px; border-radius: 6px;">Open MentorHub</a>
                  </td>
                </tr>
              </table>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
