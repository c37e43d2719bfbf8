// ABOUTME: KPI MCP tool handlers
// ABOUTME: Implements kpi_check for one contact and kpi_summary for a project
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/leadgen/kpi"
	"github.com/harperreed/leadgen/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type KPICheckInput struct {
	Project string `json:"project,omitempty" jsonschema:"Project id or name (defaults to the configured project)"`
	Contact string `json:"contact" jsonschema:"Contact id"`
	Channel string `json:"channel" jsonschema:"call, email or linkedin"`
	Metric  string `json:"metric" jsonschema:"Metric name; legacy names are accepted"`
}

type KPICheckOutput struct {
	Contact string `json:"contact"`
	KPI     string `json:"kpi"`
	Counts  bool   `json:"counts"`
}

func (h *OutreachHandlers) KPICheck(ctx context.Context, _ *mcp.CallToolRequest, input KPICheckInput) (*mcp.CallToolResult, KPICheckOutput, error) {
	if input.Contact == "" {
		return nil, KPICheckOutput{}, fmt.Errorf("contact is required")
	}
	req, err := h.dash.Evaluator().Resolve(kpi.Request{
		Channel: models.Channel(strings.ToLower(strings.TrimSpace(input.Channel))),
		Metric:  strings.TrimSpace(input.Metric),
	})
	if err != nil {
		return nil, KPICheckOutput{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.load(ctx, input.Project, false); err != nil {
		return nil, KPICheckOutput{}, err
	}
	counts, err := h.dash.CheckKPI(input.Contact, req)
	if err != nil {
		return nil, KPICheckOutput{}, err
	}
	return nil, KPICheckOutput{Contact: input.Contact, KPI: req.String(), Counts: counts}, nil
}

type KPISummaryInput struct {
	Project string `json:"project,omitempty" jsonschema:"Project id or name (defaults to the configured project)"`
	Refresh bool   `json:"refresh,omitempty" jsonschema:"Reload the project before summarizing"`
}

type ChannelSummaryOutput struct {
	Activities int            `json:"activities"`
	Contacts   int            `json:"contacts"`
	ByStatus   map[string]int `json:"by_status,omitempty"`
	Metrics    map[string]int `json:"metrics"`
}

type KPISummaryOutput struct {
	Project  string                          `json:"project"`
	Channels map[string]ChannelSummaryOutput `json:"channels"`
}

// KPISummary combines the backend rollup with contact counts per metric
// computed from the loaded activities.
func (h *OutreachHandlers) KPISummary(ctx context.Context, _ *mcp.CallToolRequest, input KPISummaryInput) (*mcp.CallToolResult, KPISummaryOutput, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	st, err := h.load(ctx, input.Project, input.Refresh)
	if err != nil {
		return nil, KPISummaryOutput{}, err
	}
	tally, err := h.dash.LocalTally()
	if err != nil {
		return nil, KPISummaryOutput{}, err
	}

	out := KPISummaryOutput{Project: st.Project.Name, Channels: make(map[string]ChannelSummaryOutput)}
	if out.Project == "" {
		out.Project = st.ProjectID
	}
	for _, ch := range models.Channels {
		backend := st.KPI.Channels[ch]
		out.Channels[string(ch)] = ChannelSummaryOutput{
			Activities: backend.Activities,
			Contacts:   backend.Contacts,
			ByStatus:   backend.ByStatus,
			Metrics:    tally[ch],
		}
	}
	return nil, out, nil
}
