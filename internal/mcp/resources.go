// ABOUTME: MCP resource implementations for growth tracking.
// ABOUTME: Provides growth://children, growth://recent and growth://reference/{indicator}.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/growth/internal/models"
	"github.com/harperreed/growth/internal/reference"
	"github.com/harperreed/growth/internal/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	childrenURI       = "growth://children"
	recentURI         = "growth://recent"
	referencePrefix   = "growth://reference/"
	recentLimit       = 10
	jsonMIMEType      = "application/json"
	referenceTemplate = referencePrefix + "{indicator}"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         childrenURI,
		Name:        "Children",
		Description: "Every child with the latest status, most recently measured first",
		MIMEType:    jsonMIMEType,
	}, s.handleChildrenResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         recentURI,
		Name:        "Recent Measurements",
		Description: "Last 10 measurements across all children",
		MIMEType:    jsonMIMEType,
	}, s.handleRecentResource)

	s.mcpServer.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: referenceTemplate,
		Name:        "Reference Table",
		Description: "SD thresholds by month for length_for_age, weight_for_age or bmi_for_age",
		MIMEType:    jsonMIMEType,
	}, s.handleReferenceResource)
}

// Resource handlers

func (s *Server) handleChildrenResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	page, err := s.tracker.ListChildren(ctx, tracker.ChildFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}

	summaries := page.Rows
	if summaries == nil {
		summaries = []*models.ChildSummary{}
	}

	return jsonResource(childrenURI, map[string]any{
		"generated_at": time.Now().Format(time.RFC3339),
		"count":        len(summaries),
		"children":     summaries,
	})
}

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	w, err := window(1, recentLimit)
	if err != nil {
		return nil, err
	}

	page, err := s.tracker.ListMeasurements(ctx, tracker.ListFilter{Window: w})
	if err != nil {
		return nil, fmt.Errorf("failed to list measurements: %w", err)
	}

	rows := page.Rows
	if rows == nil {
		rows = []*models.Measurement{}
	}

	return jsonResource(recentURI, map[string]any{
		"measurements": rows,
		"total":        page.Meta.TotalData,
	})
}

func (s *Server) handleReferenceResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := ""
	if req.Params != nil {
		uri = req.Params.URI
	}

	ind, err := reference.ParseIndicator(strings.TrimPrefix(uri, referencePrefix))
	if err != nil || !strings.HasPrefix(uri, referencePrefix) {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	ds := s.tracker.Reference()
	tables := make(map[models.Sex][]reference.Row, len(models.AllSexes))
	for _, sex := range models.AllSexes {
		tables[sex] = ds.Rows(ind, sex)
	}

	return jsonResource(uri, map[string]any{
		"indicator": ind,
		"min_month": reference.MinMonth,
		"max_month": reference.MaxMonth,
		"tables":    tables,
	})
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: jsonMIMEType,
			Text:     string(data),
		}},
	}, nil
}
