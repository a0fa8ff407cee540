package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/gesthub/gesthub/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func TestPrintNotas(t *testing.T) {
	day0 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	collectedAt := day0.AddDate(0, 0, 2)
	notas := []*model.Nota{
		{
			ID:             "b",
			CompanyName:    "Acme",
			InvoiceNumber:  "NF-001",
			MessageSentAt:  day0.AddDate(0, 0, 5),
			FirstMessageAt: day0,
			MessageCount:   2,
			Status:         model.NotaStatusPending,
		},
		{
			ID:             "c",
			CompanyName:    "Beta",
			InvoiceNumber:  "NF-002",
			MessageSentAt:  day0,
			FirstMessageAt: day0,
			MessageCount:   1,
			Collected:      true,
			CollectedAt:    &collectedAt,
		},
	}

	var out bytes.Buffer
	require.NoError(t, printNotas(&out, notas, day0.AddDate(0, 0, 5)))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "15/03/2025")
	assert.Contains(t, lines[1], "10/03/2025")
	assert.Contains(t, lines[1], "2x")
	assert.Contains(t, lines[1], "Attention: 2 days to expire (5 days elapsed)")
	assert.Contains(t, lines[2], "Collected on 12/03/2025")
	assert.Equal(t, "2 notas", lines[3])
}

func TestRootCmd_Commands(t *testing.T) {
	root := RootCmd("test")

	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"migrate", "list", "refresh-status", "remind", "collect"})

	migrate, _, err := root.Find([]string{"migrate", "status"})
	require.NoError(t, err)
	assert.Equal(t, "status", migrate.Name())
}

func TestRemindCmd_RequiresID(t *testing.T) {
	root := RootCmd("test")
	root.SetArgs([]string{"remind"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	assert.Error(t, root.Execute())
}
