// ABOUTME: MCP server subcommand
// ABOUTME: Serves contact listings and KPI tools over stdio
package cli

import (
	"github.com/harperreed/leadgen/handlers"
	"github.com/harperreed/leadgen/metrics"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *App) mcpCommand() *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			database, err := a.db()
			if err != nil {
				return err
			}
			d, release, err := a.newDashboard(true)
			if err != nil {
				return err
			}
			defer release()

			if metricsAddr != "" {
				addr, _, err := metrics.Serve(cmd.Context(), metricsAddr)
				if err != nil {
					return err
				}
				a.logger.Info("serving metrics", zap.String("addr", "http://"+addr+"/metrics"))
			}

			a.logger.Info("starting MCP server", zap.String("default_project", a.cfg.DefaultProject))
			return newMCPServer(a.version, handlers.NewOutreachHandlers(database, d, a.cfg.DefaultProject, a.loc)).
				Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. localhost:9090)")
	return cmd
}

func newMCPServer(version string, h *handlers.OutreachHandlers) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "leadgen",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_contacts",
		Description: "List one page of a project's contacts with optional status, date, activity, KPI and search filters",
	}, h.QueryContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "contact_view",
		Description: "Show one contact's displayed status, last activity, next action and activity history",
	}, h.ContactView)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "kpi_check",
		Description: "Report whether a contact counts toward a channel KPI metric (legacy metric names accepted)",
	}, h.KPICheck)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "kpi_summary",
		Description: "Per-channel activity rollups and contact counts for every KPI metric of a project",
	}, h.KPISummary)

	return server
}
