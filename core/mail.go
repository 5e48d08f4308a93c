package core

import (
	"bytes"
	"fmt"
	htmltmpl "html/template"
	"io/fs"
	"net/mail"
	"path/filepath"
	"strings"
	texttmpl "text/template"

	appfs "github.com/trezcool/njia/fs"
)

var (
	textTemplates   map[string]*texttmpl.Template
	htmlTemplates   map[string]*htmltmpl.Template
	frontendBaseURL string
)

type (
	Attachment struct {
		Content     *bytes.Buffer
		ContentType string
		Filename    string
	}

	EmailMessage struct {
		To          []mail.Address
		Cc          []mail.Address
		Bcc         []mail.Address
		Subject     string
		BodyStr     string // simple text/plain, non-templated content
		Attachments []Attachment

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	ContextData struct {
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

// ParseEmailTemplates loads the embedded email templates. Must be called once at startup.
func ParseEmailTemplates(logger Logger, conf *Config) {
	frontendBaseURL = conf.FrontendBaseURL
	textTemplates = make(map[string]*texttmpl.Template)
	htmlTemplates = make(map[string]*htmltmpl.Template)

	err := fs.WalkDir(appfs.FS, "templates/email", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ext := filepath.Ext(path)
		name := strings.TrimSuffix(filepath.Base(path), ext)
		switch ext {
		case ".txt":
			tmpl, err := texttmpl.ParseFS(appfs.FS, path)
			if err != nil {
				return err
			}
			textTemplates[name] = tmpl
		case ".html":
			tmpl, err := htmltmpl.ParseFS(appfs.FS, path)
			if err != nil {
				return err
			}
			htmlTemplates[name] = tmpl
		}
		return nil
	})
	if err != nil {
		logger.Fatal(fmt.Sprintf("parsing email templates: %v", err), err)
	}
}

func (m *EmailMessage) getContextData() ContextData {
	return ContextData{
		FrontendBaseURL: frontendBaseURL,
		Data:            m.TemplateData,
	}
}

func (m *EmailMessage) renderText() error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	} else if m.TemplateName == "" {
		return nil
	}

	tmpl, ok := textTemplates[m.TemplateName]
	if !ok {
		return nil
	}
	var buff bytes.Buffer
	if err := tmpl.Execute(&buff, m.getContextData()); err != nil {
		return err
	}
	m.TextContent = buff.String()
	return nil
}

func (m *EmailMessage) renderHTML() error {
	if m.TemplateName == "" {
		return nil
	}
	tmpl, ok := htmlTemplates[m.TemplateName]
	if !ok {
		return nil
	}
	var buff bytes.Buffer
	if err := tmpl.Execute(&buff, m.getContextData()); err != nil {
		return err
	}
	m.HTMLContent = buff.String()
	return nil
}

// Render renders the message's templated contents.
func (m *EmailMessage) Render() error {
	if err := m.renderText(); err != nil {
		return err
	}
	return m.renderHTML()
}

func (m *EmailMessage) HasRecipients() bool {
	return (len(m.To) + len(m.Cc) + len(m.Bcc)) > 0
}

func (m *EmailMessage) HasContent() bool {
	return m.TextContent != "" || m.HTMLContent != ""
}

func (m *EmailMessage) HasAttachments() bool {
	return len(m.Attachments) > 0
}
