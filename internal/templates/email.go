// Package templates renders the two HTML email variants (admin notification
// and submitter confirmation) for both form types. Rendering is a pure
// function of its inputs: identical inputs yield byte-identical output,
// which keeps the templates golden-file testable.
//
// Email clients do not reliably support external stylesheets or flex/grid,
// so the layout is table-based with inline styles only.
package templates

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/moralknight/outreach-server/internal/models"
)

// Brand palette, matching the site.
const (
	colorPrimary   = "#061424" // dark blue
	colorSecondary = "#5C6B7F" // blue-grey label text
	colorText      = "#1e293b"
	colorBorder    = "#e2e8f0"
	colorSurface   = "#FFFFFF"
	colorPage      = "#F8FAFC"
	colorShield    = "#E1BF7A" // gold from the logo shield
)

type row struct {
	Label string
	Value template.HTML
}

type emailData struct {
	Title     string
	Intro     string
	ReportID  string
	DateLabel string
	Rows      []row
	ReplyTo   string // non-empty only on the admin variant

	Primary   string
	Secondary string
	Text      string
	Border    string
	Surface   string
	Page      string
	Shield    string
}

var emailTmpl = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html lang="nl">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<meta name="color-scheme" content="light only">
<title>{{.Title}}</title>
</head>
<body style="margin: 0; padding: 0; background-color: {{.Page}};">
<table border="0" cellpadding="0" cellspacing="0" width="100%" style="background-color: {{.Page}};">
<tr><td align="center" style="padding: 40px 10px;">
<table border="0" cellpadding="0" cellspacing="0" width="100%" style="max-width: 600px; background-color: {{.Surface}}; border: 1px solid {{.Border}};">
<tr>
<td bgcolor="{{.Primary}}" style="background-color: {{.Primary}}; padding: 24px 30px;">
<div style="font-family: 'Courier New', Courier, monospace; font-size: 22px; color: #FFFFFF; font-weight: 700; letter-spacing: 2px;">MORAL KNIGHT</div>
<div style="font-family: 'Courier New', Courier, monospace; font-size: 11px; color: {{.Shield}}; letter-spacing: 1px; margin-top: 6px; text-transform: uppercase;">De onafhankelijke waakhond voor publieke AI</div>
</td>
</tr>
<tr>
<td bgcolor="{{.Surface}}" style="padding: 20px 30px; border-bottom: 1px solid #F3F4F6;">
<table border="0" cellpadding="0" cellspacing="0" width="100%">
<tr>
<td align="left">
<span style="font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; font-size: 11px; color: {{.Secondary}}; background-color: #F3F4F6; padding: 6px 10px; border-radius: 4px; border: 1px solid {{.Shield}};">KENMERK: <span style="font-weight: 700; color: {{.Text}};">{{.ReportID}}</span></span>
</td>
<td align="right">
<span style="font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; font-size: 12px; color: {{.Text}};">{{.DateLabel}}</span>
</td>
</tr>
</table>
</td>
</tr>
<tr>
<td bgcolor="{{.Surface}}" style="padding: 40px 30px;">
<h2 style="margin: 0 0 20px 0; font-family: 'Courier New', Courier, monospace; font-size: 16px; color: {{.Primary}}; font-weight: 700; text-transform: uppercase;">{{.Title}}</h2>
<p style="margin: 0 0 30px 0; font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; font-size: 15px; line-height: 1.6; color: {{.Text}};">{{.Intro}}</p>
<table border="0" cellpadding="0" cellspacing="0" width="100%" style="font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif;">
{{- range .Rows}}
<tr>
<td width="35%" style="padding: 12px 0; border-bottom: 1px solid #E5E7EB; vertical-align: top;"><span style="font-family: 'Courier New', Courier, monospace; font-size: 11px; text-transform: uppercase; letter-spacing: 1px; color: {{$.Secondary}}; font-weight: 700;">{{.Label}}</span></td>
<td style="padding: 12px 0 12px 15px; border-bottom: 1px solid #E5E7EB; vertical-align: top; color: {{$.Text}}; font-size: 14px; line-height: 1.6;">{{.Value}}</td>
</tr>
{{- end}}
</table>
{{- if .ReplyTo}}
<div style="margin-top: 30px; padding-top: 20px; border-top: 1px dashed #E5E7EB;">
<a href="mailto:{{.ReplyTo}}?subject=Re: {{.ReportID}} - Reactie op uw bericht" style="display: inline-block; background-color: {{.Primary}}; color: #FFFFFF; font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; font-size: 13px; font-weight: 600; text-decoration: none; padding: 12px 24px; border-radius: 4px; text-transform: uppercase; letter-spacing: 0.5px; border: 1px solid {{.Shield}};">BEANTWOORDEN</a>
</div>
{{- end}}
</td>
</tr>
<tr>
<td bgcolor="{{.Page}}" style="padding: 30px; border-top: 2px solid {{.Primary}};">
<p style="margin: 0; font-family: 'Courier New', Courier, monospace; font-size: 12px; color: {{.Primary}}; letter-spacing: 1px; text-transform: uppercase;">/ Moral Knight since 2025 - Auditing public AI</p>
<p style="margin: 10px 0 0 0; font-family: 'Courier New', Courier, monospace; font-size: 11px; color: {{.Primary}}; letter-spacing: 1px; text-transform: uppercase;">Wij verwerken uw gegevens volgens de <a href="https://www.moralknight.nl/privacy" style="color: {{.Primary}}; text-decoration: underline;">privacyverklaring</a>.</p>
</td>
</tr>
</table>
</td></tr>
</table>
</body>
</html>
`))

// Render produces the full HTML body for one email. forSubmitter selects the
// confirmation copy, otherwise the staff notification copy. Empty optional
// fields produce no table row at all.
func Render(p *models.SubmissionPayload, forSubmitter bool, reportID, dateLabel string) (string, error) {
	isReport := p.FormType == models.FormReport

	data := emailData{
		Title:     title(forSubmitter, isReport),
		Intro:     intro(forSubmitter, isReport),
		ReportID:  reportID,
		DateLabel: dateLabel,
		Rows:      dataRows(p, isReport),

		Primary:   colorPrimary,
		Secondary: colorSecondary,
		Text:      colorText,
		Border:    colorBorder,
		Surface:   colorSurface,
		Page:      colorPage,
		Shield:    colorShield,
	}
	if !forSubmitter && p.Email != "" && !p.IsAnonymous {
		data.ReplyTo = p.Email
	}

	var buf bytes.Buffer
	if err := emailTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return buf.String(), nil
}

func title(forSubmitter, isReport bool) string {
	if forSubmitter {
		if isReport {
			return "BEVESTIGING MELDING"
		}
		return "BEDANKT VOOR UW BERICHT"
	}
	if isReport {
		return "NIEUWE MELDING"
	}
	return "NIEUW CONTACTVERZOEK"
}

func intro(forSubmitter, isReport bool) string {
	if forSubmitter {
		return "Wij hebben uw gegevens in goede orde ontvangen en nemen zo spoedig mogelijk contact met u op."
	}
	if isReport {
		return "Er is een nieuwe melding binnengekomen via de website."
	}
	return "Er is een nieuwe contactaanvraag binnengekomen via de website."
}

func dataRows(p *models.SubmissionPayload, isReport bool) []row {
	rows := make([]row, 0, 8)
	add := func(label, value string) {
		if value == "" {
			return
		}
		rows = append(rows, row{Label: label, Value: escape(value)})
	}

	add("Naam", p.Name)
	add("Email", p.Email)
	add("Organisatie", p.Organisation)
	if isReport {
		add("Systeem", p.AISystem)
		add("Omschrijving", p.Description)
	} else {
		add("Bericht", p.Message)
	}
	if p.Attachment != nil && p.Attachment.Filename != "" {
		add("Bijlage", "Ingesloten: "+p.Attachment.Filename)
	}
	if p.Newsletter {
		add("Nieuwsbrief", "Ja, ik wil op de hoogte blijven")
	} else {
		add("Nieuwsbrief", "Nee")
	}
	if p.PrivacyConsent {
		add("Privacy", "Akkoord met privacyverklaring")
	}
	return rows
}

// escape HTML-escapes a user value and turns newlines into <br> so long
// text keeps its paragraph structure inside the table cell.
func escape(s string) template.HTML {
	escaped := template.HTMLEscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	return template.HTML(escaped)
}
