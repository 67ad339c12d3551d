package appfs

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
)

func TestMigrations(t *testing.T) {
	files, err := fs.Glob(FS, MigrationsDir+"/*.sql")
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestEmailTemplates(t *testing.T) {
	tmpls, err := core.ParseEmailTemplates(EmailTemplates(), "Academia", true /* strict */)
	require.NoError(t, err)

	msg := &core.EmailMessage{
		TemplateName: "promotion_report",
		TemplateData: struct {
			RunID                               string
			Year                                string
			Promoted, Repeated, Skipped, Failed int
		}{RunID: "run-1", Year: "2024", Promoted: 3, Repeated: 1},
	}
	require.NoError(t, tmpls.Render(msg))
	assert.Contains(t, msg.TextContent, "Promoted: 3")
	assert.Contains(t, msg.TextContent, "Academia")
	assert.Contains(t, msg.HTMLContent, "<code>run-1</code>")
}
