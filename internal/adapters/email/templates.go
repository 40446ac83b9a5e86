package email

import (
	"bytes"
	"html/template"
)

// Message kinds.
const (
	KindWelcome = "welcome"
	KindInvite  = "invite"
	KindReset   = "reset"
)

const layoutTmpl = `{{define "layout"}}<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
<h1 style="color: #cf6f4e;">{{template "heading" .}}</h1>
{{template "body" .}}
<hr style="border: none; border-top: 1px solid #eee; margin: 24px 0;" />
<p style="color: #999; font-size: 12px;">{{.ClubName}}</p>
</div>{{end}}
{{define "button"}}<a href="{{.Link}}" style="display: inline-block; background-color: #cf6f4e; color: white; padding: 12px 24px; text-decoration: none; border-radius: 8px; margin: 16px 0;">{{.Label}}</a>{{end}}`

const welcomeTmpl = `{{define "heading"}}Welcome to {{.ClubName}}!{{end}}
{{define "body"}}<p>Hi {{.Name}},</p>
<p>Your account has been created. Here are your login details:</p>
<div style="background-color: #f5f5f5; padding: 16px; border-radius: 8px; margin: 16px 0;">
<p style="margin: 0;"><strong>Email:</strong> {{.Email}}</p>
<p style="margin: 8px 0 0 0;"><strong>Password:</strong> {{.Password}}</p>
</div>
<p>Click the button below to log in:</p>
{{template "button" (button .Link "Log In to Your Account")}}
<p style="color: #666; font-size: 14px;">For security, we recommend changing your password after your first login.</p>{{end}}`

const inviteTmpl = `{{define "heading"}}Welcome to {{.ClubName}}!{{end}}
{{define "body"}}<p>Hi {{.Name}},</p>
<p>You've been invited to join {{.ClubName}}. To get started, please set your password by clicking the button below:</p>
{{template "button" (button .Link "Set Your Password")}}
<p style="color: #666; font-size: 14px;">This link will expire in 7 days.</p>{{end}}`

const resetTmpl = `{{define "heading"}}Reset Your Password{{end}}
{{define "body"}}<p>Hi {{.Name}},</p>
<p>We received a request to reset your password for your {{.ClubName}} account.</p>
<p>Click the button below to set a new password:</p>
{{template "button" (button .Link "Reset Password")}}
<p style="color: #666; font-size: 14px;">This link will expire in 1 hour.</p>
<p style="color: #666; font-size: 14px;">If you didn't request this, you can safely ignore this email.</p>{{end}}`

type buttonData struct {
	Link  template.URL
	Label string
}

var funcs = template.FuncMap{
	"button": func(link template.URL, label string) buttonData {
		return buttonData{Link: link, Label: label}
	},
}

var templates = map[string]*template.Template{
	KindWelcome: template.Must(template.New(KindWelcome).Funcs(funcs).Parse(layoutTmpl + welcomeTmpl)),
	KindInvite:  template.Must(template.New(KindInvite).Funcs(funcs).Parse(layoutTmpl + inviteTmpl)),
	KindReset:   template.Must(template.New(KindReset).Funcs(funcs).Parse(layoutTmpl + resetTmpl)),
}

// templateData is the view model shared by every message body.
type templateData struct {
	ClubName string
	Name     string
	Email    string
	Password string
	Link     template.URL
}

func render(kind string, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := templates[kind].ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
