package core

import (
	"bytes"
	"encoding/base64"
	htmltmpl "html/template"
	"io"
	"io/fs"
	"net/http"
	"net/mail"
	"path"
	"strings"
	texttmpl "text/template"

	"github.com/pkg/errors"
)

const (
	textExt = ".txt"
	htmlExt = ".gohtml"
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
		AppName string
		Data    interface{}
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}

	// EmailTemplates holds the parsed email templates, keyed by name (without ext).
	EmailTemplates struct {
		appName string
		text    map[string]*texttmpl.Template
		html    map[string]*htmltmpl.Template
	}
)

// ParseEmailTemplates parses every "<name>.txt" and "<name>.gohtml" found at the root of fsys,
// each along with its "_base" layout. Strict templates fail on missing keys.
func ParseEmailTemplates(fsys fs.FS, appName string, strict bool) (*EmailTemplates, error) {
	tmpls := &EmailTemplates{
		appName: appName,
		text:    make(map[string]*texttmpl.Template),
		html:    make(map[string]*htmltmpl.Template),
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, errors.Wrap(err, "reading templates dir")
	}

	for _, entry := range entries {
		fname := entry.Name()
		ext := path.Ext(fname)
		if entry.IsDir() || strings.HasPrefix(fname, "_") || !(ext == textExt || ext == htmlExt) {
			continue
		}
		name := strings.TrimSuffix(fname, ext)

		if ext == textExt {
			tmpl, err := texttmpl.ParseFS(fsys, "_base"+textExt, fname)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing %s", fname)
			}
			if strict {
				tmpl = tmpl.Option("missingkey=error")
			}
			tmpls.text[name] = tmpl
		} else {
			tmpl, err := htmltmpl.ParseFS(fsys, "_base"+htmlExt, fname)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing %s", fname)
			}
			if strict {
				tmpl = tmpl.Option("missingkey=error")
			}
			tmpls.html[name] = tmpl
		}
	}
	return tmpls, nil
}

// Render fills in the message contents from its template, if any.
func (t *EmailTemplates) Render(m *EmailMessage) error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
	}
	if m.TemplateName == "" || t == nil {
		return nil
	}
	ctx := ContextData{AppName: t.appName, Data: m.TemplateData}

	if m.BodyStr == "" {
		if tmpl, ok := t.text[m.TemplateName]; ok {
			var buff bytes.Buffer
			if err := tmpl.ExecuteTemplate(&buff, "_base"+textExt, ctx); err != nil {
				return errors.Wrapf(err, "rendering %s%s", m.TemplateName, textExt)
			}
			m.TextContent = buff.String()
		}
	}

	if tmpl, ok := t.html[m.TemplateName]; ok {
		var buff bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buff, "_base"+htmlExt, ctx); err != nil {
			return errors.Wrapf(err, "rendering %s%s", m.TemplateName, htmlExt)
		}
		m.HTMLContent = buff.String()
	}
	return nil
}

func (m *EmailMessage) Attach(r io.Reader, filename string, ct ...string) error {
	content, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "reading attachment")
	}

	at := Attachment{Filename: filename, Content: new(bytes.Buffer)}
	encoder := base64.NewEncoder(base64.StdEncoding, at.Content)
	if _, err := encoder.Write(content); err != nil {
		return errors.Wrap(err, "encoding attachment")
	}
	_ = encoder.Close()

	if len(ct) > 0 {
		at.ContentType = ct[0]
	} else {
		at.ContentType = http.DetectContentType(content)
	}
	m.Attachments = append(m.Attachments, at)
	return nil
}

func (m *EmailMessage) HasRecipients() bool  { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool     { return (m.TextContent != "") || (m.HTMLContent != "") }
func (m *EmailMessage) HasAttachments() bool { return len(m.Attachments) > 0 }
