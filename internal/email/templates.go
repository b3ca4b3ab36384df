package email

import (
	"fmt"
	"html"
	"strings"

	"realflow/internal/config"
	"realflow/internal/models"
)

// Templates provides email template generation.
type Templates struct {
	cfg *config.Config
}

// NewTemplates creates a new templates instance.
func NewTemplates(cfg *config.Config) *Templates {
	return &Templates{cfg: cfg}
}

// baseHTML wraps content in a consistent HTML email template.
func (t *Templates) baseHTML(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #b91c1c; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
        .footer { background: #f3f4f6; padding: 15px; text-align: center; font-size: 12px; color: #6b7280; border-radius: 0 0 8px 8px; border: 1px solid #e5e7eb; border-top: none; }
        .button { display: inline-block; background: #b91c1c; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin: 10px 0; }
        .info-box { background: white; border: 1px solid #e5e7eb; border-radius: 6px; padding: 15px; margin: 15px 0; }
        .label { font-weight: 600; color: #374151; }
        .score { font-size: 28px; font-weight: 700; color: #b91c1c; }
    </style>
</head>
<body>
    <div class="header">
        <h1>%s</h1>
    </div>
    <div class="content">
        %s
    </div>
    <div class="footer">
        <p>This email was sent by %s</p>
        <p><a href="%s">%s</a></p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(t.cfg.SiteTitle), content, html.EscapeString(t.cfg.SiteTitle), t.cfg.BaseURL, t.cfg.BaseURL)
}

// HotLead generates the alert sent to the sales team for a hot lead. call is
// nil for leads flagged manually before any call record exists.
func (t *Templates) HotLead(lead models.HotLead, call *models.CallRecord) (subject, htmlBody, textBody string) {
	name := valueOr(lead.CallerName, "Unknown caller")
	subject = fmt.Sprintf("[%s] Hot lead: %s", t.cfg.SiteTitle, name)

	type row struct{ label, value string }
	rows := []row{
		{"Caller", name},
		{"Phone", valueOr(lead.CallerPhone, "not provided")},
		{"Reason", valueOr(lead.UrgencyReason, "flagged")},
		{"Deal value", valueOr(lead.DealValue, "unspecified")},
		{"Competition", yesNo(lead.HasCompetition)},
		{"Source", lead.Source},
		{"Call ID", lead.CallID},
	}
	score := ""
	if call != nil {
		rows = append(rows,
			row{"Email", valueOr(call.CallerEmail, "not provided")},
			row{"Role", call.Role},
			row{"Asset type", call.AssetType},
			row{"Location", valueOr(call.Location, "not provided")},
			row{"Urgency", call.Urgency},
			row{"Summary", valueOr(call.InquirySummary, "none")},
		)
		score = fmt.Sprintf("%d/100", call.LeadScore)
	}

	var rowsHTML, rowsText strings.Builder
	for _, r := range rows {
		rowsHTML.WriteString(fmt.Sprintf(`
            <p><span class="label">%s:</span> %s</p>`, r.label, html.EscapeString(r.value)))
		rowsText.WriteString(fmt.Sprintf("%s: %s\n", r.label, r.value))
	}

	scoreHTML, scoreText := "", ""
	if score != "" {
		scoreHTML = fmt.Sprintf(`<p class="score">%s</p>`, score)
		scoreText = fmt.Sprintf("Lead score: %s\n", score)
	}

	content := fmt.Sprintf(`
        <p>A caller was identified as a hot lead and should be contacted promptly.</p>
        %s
        <div class="info-box">%s
        </div>

        <p style="text-align: center;">
            <a href="%s/dashboard" class="button">Open Dashboard</a>
        </p>
    `,
		scoreHTML,
		rowsHTML.String(),
		t.cfg.BaseURL,
	)

	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf(`Hot Lead Alert

%s%s
Dashboard: %s/dashboard

--
%s
%s`,
		scoreText,
		rowsText.String(),
		t.cfg.BaseURL,
		t.cfg.SiteTitle,
		t.cfg.BaseURL,
	)

	return
}

func valueOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
