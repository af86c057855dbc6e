// ABOUTME: MCP server setup for the growth tracker.
// ABOUTME: Wraps the MCP server around a Tracker and the device's creator ID.
package mcp

import (
	"context"

	"github.com/harperreed/growth/internal/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

// Server wraps the MCP server with tracker access.
type Server struct {
	mcpServer *mcp.Server
	tracker   *tracker.Tracker
	creatorID string
	log       zerolog.Logger
}

// NewServer creates a new MCP server. New measurements are recorded under
// creatorID.
func NewServer(t *tracker.Tracker, creatorID string, log zerolog.Logger) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "growth",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		tracker:   t,
		creatorID: creatorID,
		log:       log.With().Str("component", "mcp").Logger(),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	s.log.Debug().Str("creator_id", s.creatorID).Msg("serving on stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
