package emailsvc

import (
	"bytes"
	"log"
	"net/mail"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
)

type logMock struct{ errs []string }

func (l *logMock) Debug(string, ...interface{})     {}
func (l *logMock) Info(string, ...interface{})      {}
func (l *logMock) Warn(string, ...interface{})      {}
func (l *logMock) Error(m string, _ ...interface{}) { l.errs = append(l.errs, m) }
func (l *logMock) Fatal(string, ...interface{})     {}

func newTemplates(t *testing.T) *core.EmailTemplates {
	tmpls, err := core.ParseEmailTemplates(fstest.MapFS{
		"_base.txt":     {Data: []byte(`{{template "content" .}}`)},
		"_base.gohtml":  {Data: []byte(`<div>{{template "content" .}}</div>`)},
		"report.txt":    {Data: []byte(`{{define "content"}}{{.Data.Count}} students{{end}}`)},
		"report.gohtml": {Data: []byte(`{{define "content"}}<b>{{.Data.Count}}</b> students{{end}}`)},
	}, "Academia", true)
	require.NoError(t, err)
	return tmpls
}

func newConf() *core.Config {
	return &core.Config{AppName: "Academia"}
}

func TestConsoleService(t *testing.T) {
	var out bytes.Buffer
	logger := new(logMock)
	svc := NewConsoleService(newConf(), newTemplates(t), logger, log.New(&out, "", 0))
	svc.sync = true

	svc.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{{Name: "Principal", Address: "principal@school.test"}},
			Subject:      "Report",
			TemplateName: "report",
			TemplateData: map[string]int{"Count": 3},
		},
		&core.EmailMessage{Subject: "no recipients", BodyStr: "hi"},
		&core.EmailMessage{To: []mail.Address{{Address: "x@school.test"}}, TemplateName: "report"}, // missing data
	)

	sent := svc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "3 students", sent[0].TextContent)
	assert.Equal(t, "<div><b>3</b> students</div>", sent[0].HTMLContent)
	assert.Len(t, logger.errs, 1)

	printed := out.String()
	assert.Contains(t, printed, "Subject: [Academia] Report")
	assert.Contains(t, printed, `To: "Principal" <principal@school.test>`)
	assert.Contains(t, printed, "multipart/alternative")
}

func TestConsoleServiceMock_attachments(t *testing.T) {
	svc := NewConsoleServiceMock(newConf(), nil, new(logMock))
	msg := &core.EmailMessage{To: []mail.Address{{Address: "x@school.test"}}, BodyStr: "see attached"}
	require.NoError(t, msg.Attach(strings.NewReader("id,status\n1,inactive\n"), "sweep.csv", "text/csv"))

	svc.SendMessages(msg)
	sent := svc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "see attached", sent[0].TextContent)
}

func TestSendgridService_prepare(t *testing.T) {
	conf := newConf()
	conf.SendgridApiKey = "key"
	svc := NewSendgridService(conf, nil, new(logMock)).(*sendgridService)

	m := svc.prepare(core.EmailMessage{
		To:          []mail.Address{{Name: "A", Address: "a@school.test"}},
		Cc:          []mail.Address{{Address: "c@school.test"}},
		Subject:     "Report",
		TextContent: "text",
	})
	require.Len(t, m.Personalizations, 1)
	assert.Equal(t, "[Academia] Report", m.Personalizations[0].Subject)
	assert.Equal(t, "a@school.test", m.Personalizations[0].To[0].Address)
	assert.Equal(t, "c@school.test", m.Personalizations[0].CC[0].Address)
	require.Len(t, m.Content, 1, "no html part without html content")
	assert.Equal(t, "text/plain", m.Content[0].Type)
}
