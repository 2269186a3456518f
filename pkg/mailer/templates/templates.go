package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	htmpl "html/template"
	"reflect"
	"strings"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// Template names. Each has <name>.subject.tmpl, <name>.text.tmpl and
// <name>.html.tmpl in FS.
const (
	PasswordResetOTP  = "password_reset_otp"
	PasswordResetDone = "password_reset_done"
)

// EmailData is the payload carried by an email job. Field names are the
// ones the templates reference.
type EmailData struct {
	Name           string `json:"Name"`
	Email          string `json:"Email"`
	RecipientEmail string `json:"RecipientEmail"`
	Type           string `json:"Type"`

	CompanyName string `json:"CompanyName"`
	SupportURL  string `json:"SupportURL"`

	ExpiresAt     time.Time `json:"ExpiresAt"`
	ExpiresAtText string    `json:"ExpiresAtText"`
	ExpiresInMin  int       `json:"ExpiresInMin"`
	Time          string    `json:"Time"`
	Code          string    `json:"Code"`
}

// ToMap flattens d for EmailJob.Data, which crosses the queue as JSON.
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

var funcs = map[string]any{
	"upper": strings.ToUpper,
	// {{ .Name | default "there" }}
	"default": func(fallback, value any) any {
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			return fallback
		}
		if rv := reflect.ValueOf(value); !rv.IsValid() || rv.IsZero() {
			return fallback
		}
		return value
	},
}

var (
	textSet = texttpl.Must(texttpl.New("mail").Funcs(funcs).ParseFS(FS, "*.subject.tmpl", "*.text.tmpl"))
	htmlSet = htmpl.Must(htmpl.New("mail").Funcs(funcs).ParseFS(FS, "*.html.tmpl"))
)

// Known reports whether name has a full set of templates.
func Known(name string) bool {
	return textSet.Lookup(name+".subject.tmpl") != nil &&
		textSet.Lookup(name+".text.tmpl") != nil &&
		htmlSet.Lookup(name+".html.tmpl") != nil
}

// Render produces the subject, plain text body and HTML body for name.
func Render(name string, data any) (subject, text, html string, err error) {
	if !Known(name) {
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}
	var sb, tb, hb bytes.Buffer
	if err = textSet.ExecuteTemplate(&sb, name+".subject.tmpl", data); err != nil {
		return "", "", "", fmt.Errorf("render %s subject: %w", name, err)
	}
	if err = textSet.ExecuteTemplate(&tb, name+".text.tmpl", data); err != nil {
		return "", "", "", fmt.Errorf("render %s text: %w", name, err)
	}
	if err = htmlSet.ExecuteTemplate(&hb, name+".html.tmpl", data); err != nil {
		return "", "", "", fmt.Errorf("render %s html: %w", name, err)
	}
	return strings.TrimSpace(sb.String()), tb.String(), hb.String(), nil
}
