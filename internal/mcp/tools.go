// ABOUTME: MCP tool implementations for growth tracking.
// ABOUTME: Evaluates, records and edits measurements and manages children.
package mcp

import (
	"context"
	"fmt"

	"github.com/harperreed/growth/internal/children"
	"github.com/harperreed/growth/internal/models"
	"github.com/harperreed/growth/internal/nutrition"
	"github.com/harperreed/growth/internal/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultLimit = 20

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "evaluate_measurement",
		Description: "Compute BMI and height, weight and BMI-for-age status without saving",
	}, s.handleEvaluate)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_measurement",
		Description: "Record a child's height and weight and classify nutritional status",
	}, s.handleAddMeasurement)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "update_measurement",
		Description: "Change age, height or weight of a measurement and re-evaluate it",
	}, s.handleUpdateMeasurement)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_measurement",
		Description: "Delete a measurement by ID or ID prefix",
	}, s.handleDeleteMeasurement)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_measurement",
		Description: "Get one measurement by ID or ID prefix",
	}, s.handleGetMeasurement)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_measurements",
		Description: "List measurements newest first, optionally filtered by category or creator",
	}, s.handleListMeasurements)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_children",
		Description: "List children with their latest status, optionally filtered by name",
	}, s.handleListChildren)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_child",
		Description: "Get a child's latest status and measurement history",
	}, s.handleGetChild)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "update_child",
		Description: "Rename a child or correct its sex on every measurement",
	}, s.handleUpdateChild)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_child",
		Description: "Delete a child and all of its measurements",
	}, s.handleDeleteChild)
}

// Tool input/output types

type evaluateInput struct {
	Height float64 `json:"height" jsonschema:"Height or length in cm"`
	Weight float64 `json:"weight" jsonschema:"Weight in kg"`
	Gender string  `json:"gender" jsonschema:"Laki-laki (L) or Perempuan (P)"`
	Age    string  `json:"age" jsonschema:"Age text such as '1 tahun 11 bulan' or '5 bulan'"`
}

type addMeasurementInput struct {
	ChildName string  `json:"child_name" jsonschema:"The child's name"`
	Gender    string  `json:"gender" jsonschema:"Laki-laki (L) or Perempuan (P)"`
	Age       string  `json:"age" jsonschema:"Age text such as '1 tahun 11 bulan' or '5 bulan'"`
	Height    float64 `json:"height" jsonschema:"Height or length in cm"`
	Weight    float64 `json:"weight" jsonschema:"Weight in kg"`
}

type measurementOutput struct {
	ID             string  `json:"id"`
	ChildID        string  `json:"child_id"`
	BMI            float64 `json:"bmi"`
	HeightCategory string  `json:"height_category"`
	WeightCategory string  `json:"weight_category"`
	MassCategory   string  `json:"mass_category"`
	Message        string  `json:"message"`
}

type updateMeasurementInput struct {
	ID         string   `json:"id" jsonschema:"Measurement ID or prefix"`
	AgeInMonth *int     `json:"age_in_month,omitempty" jsonschema:"New age in months"`
	Height     *float64 `json:"height,omitempty" jsonschema:"New height in cm"`
	Weight     *float64 `json:"weight,omitempty" jsonschema:"New weight in kg"`
}

type idInput struct {
	ID string `json:"id" jsonschema:"Measurement ID or prefix"`
}

type listMeasurementsInput struct {
	Category  string `json:"category,omitempty" jsonschema:"Match any of the three categories (substring)"`
	CreatorID string `json:"creator_id,omitempty" jsonschema:"Only measurements recorded by this creator"`
	Page      int    `json:"page,omitempty" jsonschema:"Page number starting at 1 (default 1)"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Page size (default 20)"`
}

type listChildrenInput struct {
	Name      string `json:"name,omitempty" jsonschema:"Match the child's name (substring)"`
	CreatorID string `json:"creator_id,omitempty" jsonschema:"Only children recorded by this creator"`
	Page      int    `json:"page,omitempty" jsonschema:"Page number starting at 1 (default 1)"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Page size (default 20)"`
}

type childInput struct {
	ChildID string `json:"child_id" jsonschema:"Child ID such as 'local-Budi-L'"`
}

type updateChildInput struct {
	ChildID string `json:"child_id" jsonschema:"Child ID such as 'local-Budi-L'"`
	Name    string `json:"name,omitempty" jsonschema:"New name"`
	Gender  string `json:"gender,omitempty" jsonschema:"New sex: Laki-laki (L) or Perempuan (P)"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

// Tool handlers

func (s *Server) handleEvaluate(ctx context.Context, req *mcp.CallToolRequest, input evaluateInput) (*mcp.CallToolResult, nutrition.Result, error) {
	sex, err := models.ParseSex(input.Gender)
	if err != nil {
		return nil, nutrition.Result{}, err
	}
	if input.Height <= 0 || input.Weight <= 0 {
		return nil, nutrition.Result{}, fmt.Errorf("height and weight must be positive")
	}
	return nil, s.tracker.Evaluate(input.Height, input.Weight, sex, input.Age), nil
}

func (s *Server) handleAddMeasurement(ctx context.Context, req *mcp.CallToolRequest, input addMeasurementInput) (*mcp.CallToolResult, measurementOutput, error) {
	sex, err := models.ParseSex(input.Gender)
	if err != nil {
		return nil, measurementOutput{}, err
	}

	m, err := s.tracker.Record(ctx, tracker.NewMeasurementInput{
		ChildName: input.ChildName,
		Sex:       sex,
		AgeText:   input.Age,
		Height:    input.Height,
		Weight:    input.Weight,
	}, s.creatorID)
	if err != nil {
		return nil, measurementOutput{}, fmt.Errorf("failed to add measurement: %w", err)
	}

	out := toOutput(m)
	out.Message = fmt.Sprintf("Added measurement for %s: BMI %.2f, %s / %s / %s (ID: %s)",
		m.ChildName, m.BMI, m.HeightCategory, m.WeightCategory, m.BMICategory, m.ShortID())
	return nil, out, nil
}

func (s *Server) handleUpdateMeasurement(ctx context.Context, req *mcp.CallToolRequest, input updateMeasurementInput) (*mcp.CallToolResult, measurementOutput, error) {
	m, err := s.tracker.Update(ctx, input.ID, tracker.UpdateInput{
		AgeInMonths: input.AgeInMonth,
		Height:      input.Height,
		Weight:      input.Weight,
	})
	if err != nil {
		return nil, measurementOutput{}, fmt.Errorf("failed to update measurement: %w", err)
	}

	out := toOutput(m)
	out.Message = fmt.Sprintf("Updated measurement %s: %s, BMI %.2f", m.ShortID(), m.AgeText, m.BMI)
	return nil, out, nil
}

func (s *Server) handleDeleteMeasurement(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.tracker.Delete(ctx, input.ID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete measurement: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted measurement: %s", input.ID),
	}, nil
}

func (s *Server) handleGetMeasurement(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, any, error) {
	m, err := s.tracker.Get(ctx, input.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("measurement not found: %w", err)
	}
	return nil, m, nil
}

func (s *Server) handleListMeasurements(ctx context.Context, req *mcp.CallToolRequest, input listMeasurementsInput) (*mcp.CallToolResult, any, error) {
	w, err := window(input.Page, input.Limit)
	if err != nil {
		return nil, nil, err
	}

	page, err := s.tracker.ListMeasurements(ctx, tracker.ListFilter{
		Category:  input.Category,
		CreatorID: input.CreatorID,
		Window:    w,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list measurements: %w", err)
	}

	if len(page.Rows) == 0 {
		return nil, map[string]any{"message": "No measurements found.", "meta": page.Meta}, nil
	}
	return nil, page, nil
}

func (s *Server) handleListChildren(ctx context.Context, req *mcp.CallToolRequest, input listChildrenInput) (*mcp.CallToolResult, any, error) {
	w, err := window(input.Page, input.Limit)
	if err != nil {
		return nil, nil, err
	}

	page, err := s.tracker.ListChildren(ctx, tracker.ChildFilter{
		Name:      input.Name,
		CreatorID: input.CreatorID,
		Window:    w,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list children: %w", err)
	}

	if len(page.Rows) == 0 {
		return nil, map[string]any{"message": "No children found.", "meta": page.Meta}, nil
	}
	return nil, page, nil
}

func (s *Server) handleGetChild(ctx context.Context, req *mcp.CallToolRequest, input childInput) (*mcp.CallToolResult, any, error) {
	c, err := s.tracker.GetChild(ctx, input.ChildID)
	if err != nil {
		return nil, nil, fmt.Errorf("child not found: %w", err)
	}
	return nil, c, nil
}

func (s *Server) handleUpdateChild(ctx context.Context, req *mcp.CallToolRequest, input updateChildInput) (*mcp.CallToolResult, any, error) {
	var upd tracker.ChildUpdate
	if input.Name != "" {
		upd.Name = &input.Name
	}
	if input.Gender != "" {
		sex, err := models.ParseSex(input.Gender)
		if err != nil {
			return nil, nil, err
		}
		upd.Sex = &sex
	}

	c, err := s.tracker.UpdateChild(ctx, input.ChildID, upd)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update child: %w", err)
	}
	return nil, c, nil
}

func (s *Server) handleDeleteChild(ctx context.Context, req *mcp.CallToolRequest, input childInput) (*mcp.CallToolResult, simpleOutput, error) {
	n, err := s.tracker.DeleteChild(ctx, input.ChildID)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete child: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted child %s (%d measurements)", input.ChildID, n),
	}, nil
}

// window converts optional page and limit inputs, applying the defaults.
func window(page, limit int) (*children.Window, error) {
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = defaultLimit
	}
	return children.WindowFromPage(page, limit)
}

func toOutput(m *models.Measurement) measurementOutput {
	return measurementOutput{
		ID:             m.ShortID(),
		ChildID:        m.ChildID,
		BMI:            m.BMI,
		HeightCategory: m.HeightCategory,
		WeightCategory: m.WeightCategory,
		MassCategory:   m.BMICategory,
	}
}
