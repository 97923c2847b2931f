// Package mcp exposes the strategy gateway as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/pario-ai/ipstrategy/pkg/models"
)

// Generator is the gateway surface the tools need.
type Generator interface {
	Generate(ctx context.Context, p models.BusinessProfile) (models.Result, error)
	Stats(ctx context.Context) (models.CacheStats, error)
}

// NewServer creates an MCP server with the ipstrategy tools registered.
func NewServer(gen Generator, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"ipstrategy",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	types := make([]string, len(models.BusinessTypes))
	for i, bt := range models.BusinessTypes {
		types[i] = string(bt)
	}

	s.AddTool(
		mcp.NewTool("ipstrategy_generate",
			mcp.WithDescription("Generate an intellectual property protection strategy for a business."),
			mcp.WithString("name", mcp.Description("Business name"), mcp.Required()),
			mcp.WithString("type", mcp.Description("Business type"), mcp.Required(), mcp.Enum(types...)),
			mcp.WithString("description", mcp.Description("Short business description (optional)")),
		),
		handleGenerate(gen),
	)

	s.AddTool(
		mcp.NewTool("ipstrategy_business_types",
			mcp.WithDescription("List the accepted business types."),
		),
		handleBusinessTypes,
	)

	s.AddTool(
		mcp.NewTool("ipstrategy_cache_stats",
			mcp.WithDescription("Show strategy cache statistics (entries, hits, misses, hit rate)."),
		),
		handleCacheStats(gen),
	)

	return s
}

func handleGenerate(gen Generator) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError("name is required"), nil
		}
		typ, err := req.RequireString("type")
		if err != nil {
			return mcp.NewToolResultError("type is required"), nil
		}

		bt, err := models.ParseBusinessType(typ)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		res, err := gen.Generate(ctx, models.BusinessProfile{
			Name:        name,
			Type:        bt,
			Description: req.GetString("description", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(models.AsFailure(err).Error()), nil
		}
		return mcp.NewToolResultText(res.Strategy.Text), nil
	}
}

func handleBusinessTypes(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(models.BusinessTypes)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode business types: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func handleCacheStats(gen Generator) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := gen.Stats(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("cache stats: %v", err)), nil
		}
		return mcp.NewToolResultText(formatCacheStats(stats)), nil
	}
}

func formatCacheStats(s models.CacheStats) string {
	var sb strings.Builder
	total := s.Hits + s.Misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(s.Hits) / float64(total) * 100
	}
	fmt.Fprintf(&sb, "Entries:  %d\n", s.Entries)
	fmt.Fprintf(&sb, "Hits:     %d\n", s.Hits)
	fmt.Fprintf(&sb, "Misses:   %d\n", s.Misses)
	fmt.Fprintf(&sb, "Hit rate: %.1f%%\n", hitRate)
	return sb.String()
}
