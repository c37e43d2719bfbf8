// ABOUTME: Contact listing and contact detail MCP tool handlers
// ABOUTME: Implements query_contacts and contact_view over the loaded project
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/leadgen/filter"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type QueryContactsInput struct {
	Project string       `json:"project,omitempty" jsonschema:"Project id or name (defaults to the configured project)"`
	Page    int          `json:"page,omitempty" jsonschema:"1-based page number (default 1)"`
	Refresh bool         `json:"refresh,omitempty" jsonschema:"Reload the project before listing"`
	Filters filter.Query `json:"filters,omitempty" jsonschema:"Listing filters; every set filter must match"`
}

type QueryContactsOutput struct {
	Rows       []ContactRow `json:"rows"`
	Showing    string       `json:"showing"`
	Page       int          `json:"page"`
	TotalPages int          `json:"total_pages"`
	Total      int          `json:"total"`
	Mode       string       `json:"mode"`
	PageReset  bool         `json:"page_reset,omitempty"`
	Skipped    int          `json:"skipped,omitempty"`
}

func (h *OutreachHandlers) QueryContacts(ctx context.Context, _ *mcp.CallToolRequest, input QueryContactsInput) (*mcp.CallToolResult, QueryContactsOutput, error) {
	criteria, err := input.Filters.Criteria(h.loc)
	if err != nil {
		return nil, QueryContactsOutput{}, fmt.Errorf("invalid filters: %w", err)
	}
	page := input.Page
	if page < 1 {
		page = 1
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.load(ctx, input.Project, input.Refresh); err != nil {
		return nil, QueryContactsOutput{}, err
	}
	listing, err := h.dash.Page(ctx, criteria, page)
	if err != nil {
		return nil, QueryContactsOutput{}, err
	}

	out := QueryContactsOutput{
		Rows:       make([]ContactRow, len(listing.Rows)),
		Showing:    listing.Window.String(),
		Page:       listing.Window.Page,
		TotalPages: listing.Window.TotalPages,
		Total:      listing.Window.Total,
		Mode:       listing.Mode,
		PageReset:  listing.Reset,
		Skipped:    listing.Skipped,
	}
	for i, v := range listing.Rows {
		out.Rows[i] = h.toRow(v)
	}
	return nil, out, nil
}

type ContactViewInput struct {
	Project string `json:"project,omitempty" jsonschema:"Project id or name (defaults to the configured project)"`
	Contact string `json:"contact" jsonschema:"Contact id, or name for contacts without an id"`
}

type ContactViewOutput struct {
	Contact    ContactRow    `json:"contact"`
	Stage      string        `json:"stage"`
	Phone      string        `json:"phone,omitempty"`
	Activities []ActivityRow `json:"activities"`
}

func (h *OutreachHandlers) ContactView(ctx context.Context, _ *mcp.CallToolRequest, input ContactViewInput) (*mcp.CallToolResult, ContactViewOutput, error) {
	if input.Contact == "" {
		return nil, ContactViewOutput{}, fmt.Errorf("contact is required")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.load(ctx, input.Project, false); err != nil {
		return nil, ContactViewOutput{}, err
	}
	detail, err := h.dash.Contact(input.Contact)
	if err != nil {
		return nil, ContactViewOutput{}, err
	}

	out := ContactViewOutput{
		Contact:    h.toRow(detail.View),
		Stage:      detail.View.Contact.Stage,
		Phone:      detail.View.Contact.Phone,
		Activities: make([]ActivityRow, len(detail.Activities)),
	}
	for i, a := range detail.Activities {
		out.Activities[i] = h.toActivityRow(a)
	}
	return nil, out, nil
}
