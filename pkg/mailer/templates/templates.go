package templates

import (
	"bytes"
	"fmt"
	"html/template"
)

// Welcome is the template name used for signup emails.
const Welcome = "welcome"

var welcomeHTML = template.Must(template.New(Welcome).Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: sans-serif; color: #222;">
    <h2>Welcome, {{.Name}}!</h2>
    <p>Your account <strong>{{.Username}}</strong> has been created.</p>
    <p>You can now log in and start using the API.</p>
    <p style="color: #888; font-size: 12px;">If you did not sign up, you can ignore this email.</p>
  </body>
</html>
`))

// Render produces subject, text, and HTML bodies for the named template.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	switch name {
	case Welcome:
		var buf bytes.Buffer
		if err := welcomeHTML.Execute(&buf, data); err != nil {
			return "", "", "", err
		}
		subject = "Welcome to your new account"
		text = fmt.Sprintf("Welcome, %v! Your account %v has been created.", data["Name"], data["Username"])
		return subject, text, buf.String(), nil
	default:
		return "", "", "", fmt.Errorf("unknown email template: %s", name)
	}
}
