package mailer

import (
	"bytes"
	"errors"
	"html/template"
)

var referralCodeTpl = template.Must(template.New("referral_code").Parse(`
<h1>Your current referral code</h1>
<p><code>{{.Code}}</code></p>
{{if .AppName}}<p>Sent by {{.AppName}}.</p>{{end}}
`))

// Render produces subject, text and html bodies for a named template.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	switch name {
	case "referral_code":
		var buf bytes.Buffer
		if err := referralCodeTpl.Execute(&buf, data); err != nil {
			return "", "", "", err
		}
		code, _ := data["Code"].(string)
		return "Your referral code", code, buf.String(), nil
	default:
		return "", "", "", errors.New("unknown email template: " + name)
	}
}
