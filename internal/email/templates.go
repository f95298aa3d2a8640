package email

import (
	"bytes"
	"embed"
	"html/template"
	texttpl "text/template"
)

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

const (
	TemplateOTP          = "otp"
	TemplateResetSuccess = "reset_success"
)

type Templates struct {
	OTPHTML   *template.Template
	OTPTXT    *texttpl.Template
	ResetHTML *template.Template
	ResetTXT  *texttpl.Template
}

type OTPVars struct {
	AppName    string
	FullName   string
	Code       string
	TTLMinutes int
}

type ResetSuccessVars struct {
	AppName  string
	FullName string
}

// LoadTemplates parsea los templates embebidos.
func LoadTemplates() (*Templates, error) {
	oh, err := template.ParseFS(templateFS, "templates/"+TemplateOTP+".html")
	if err != nil {
		return nil, err
	}
	ot, err := texttpl.ParseFS(templateFS, "templates/"+TemplateOTP+".txt")
	if err != nil {
		return nil, err
	}
	rh, err := template.ParseFS(templateFS, "templates/"+TemplateResetSuccess+".html")
	if err != nil {
		return nil, err
	}
	rt, err := texttpl.ParseFS(templateFS, "templates/"+TemplateResetSuccess+".txt")
	if err != nil {
		return nil, err
	}
	return &Templates{OTPHTML: oh, OTPTXT: ot, ResetHTML: rh, ResetTXT: rt}, nil
}

func render(h *template.Template, t *texttpl.Template, vars any) (string, string, error) {
	var hb, tb bytes.Buffer
	if err := h.Execute(&hb, vars); err != nil {
		return "", "", err
	}
	if err := t.Execute(&tb, vars); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}
