package cli

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/leadgen/dashboard"
	"github.com/harperreed/leadgen/db"
	"github.com/harperreed/leadgen/handlers"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPServerTools(t *testing.T) {
	h := newHarness(t)
	h.mustRun("project", "add", "Q3")
	ada := createdID(t, h.mustRun("-p", "Q3", "contact", "add", "--name", "Ada"))
	h.mustRun("-p", "Q3", "activity", "log", "--contact", ada, "--type", "call", "--status", "Interested")

	database, err := db.OpenDatabase(filepath.Join(h.dir, "leadgen.db"))
	require.NoError(t, err)
	defer func() { _ = database.Close() }()
	d := dashboard.New(db.NewBackend(database), dashboard.Options{Location: time.UTC})
	defer func() { _ = d.Close() }()

	ctx := context.Background()
	server := newMCPServer("test", handlers.NewOutreachHandlers(database, d, "Q3", time.UTC))
	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer func() { _ = ss.Close() }()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer func() { _ = cs.Close() }()

	tools, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"query_contacts", "contact_view", "kpi_check", "kpi_summary"}, names)

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "kpi_check",
		Arguments: map[string]any{"contact": ada, "channel": "call", "metric": "totalCalls"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	out, ok := res.StructuredContent.(map[string]any)
	require.True(t, ok, "structured content: %#v", res.StructuredContent)
	assert.Equal(t, true, out["counts"])
	assert.Equal(t, "call:callsAttempted", out["kpi"])

	res, err = cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "kpi_check",
		Arguments: map[string]any{"contact": ada, "channel": "call", "metric": "nonsense"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
