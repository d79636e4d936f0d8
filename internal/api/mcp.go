// Package api exposes the retrieval and feedback engine as MCP tools.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/LucasSantana-Dev/uiforge-mcp/internal/catalog"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/feedback"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/logging"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/model"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/promotion"
	"github.com/LucasSantana-Dev/uiforge-mcp/internal/ranking"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50

	statsURI = "feedback://stats"
)

// Deps holds dependencies for the MCP server.
type Deps struct {
	Catalog  *catalog.Registry
	Ranker   *ranking.Ranker
	Recorder *feedback.Recorder
	Promoter *promotion.Engine
	Stats    *ranking.StatsCache // optional; dropped after new feedback
}

// NewMCPServer creates an MCP server with all tools and resources registered.
func NewMCPServer(deps Deps, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"uiforge",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("uiforge: UI component snippet retrieval that learns from generation feedback."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("search_components",
			mcp.WithDescription("Fuzzy-search the component catalog. Results are ranked by match quality and past feedback, scores in [0,1]."),
			mcp.WithString("type", mcp.Description("Component type, e.g. hero or pricing-table")),
			mcp.WithString("variant", mcp.Description("Variant name")),
			mcp.WithString("category", mcp.Description("atom, molecule or organism")),
			mcp.WithString("mood", mcp.Description("Mood such as bold, calm, playful")),
			mcp.WithString("industry", mcp.Description("Target industry")),
			mcp.WithString("visual_style", mcp.Description("Visual style such as glassmorphism")),
			mcp.WithArray("tags", mcp.Description("Tags that should match")),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 10)")),
		),
		mcpSearchComponents(deps),
	)

	s.AddTool(
		mcp.NewTool("get_best_match",
			mcp.WithDescription("Return the single best snippet for a component type, falling back to any snippet of that type."),
			mcp.WithString("component_type", mcp.Description("Component type"), mcp.Required()),
			mcp.WithString("variant", mcp.Description("Preferred variant")),
			mcp.WithString("mood", mcp.Description("Preferred mood")),
			mcp.WithString("industry", mcp.Description("Preferred industry")),
			mcp.WithString("visual_style", mcp.Description("Preferred visual style")),
		),
		mcpBestMatch(deps),
	)

	s.AddTool(
		mcp.NewTool("record_generation",
			mcp.WithDescription("Record a generated component. Consecutive generations in a session produce implicit feedback."),
			mcp.WithString("tool", mcp.Description("Name of the generating tool"), mcp.Required()),
			mcp.WithString("component_type", mcp.Description("Component type that was generated"), mcp.Required()),
			mcp.WithString("code", mcp.Description("Generated markup"), mcp.Required()),
			mcp.WithString("session_id", mcp.Description("Session the generation belongs to"), mcp.Required()),
			mcp.WithString("framework", mcp.Description("Target framework, e.g. react")),
			mcp.WithString("prompt", mcp.Description("User prompt that led to this generation")),
			mcp.WithObject("params", mcp.Description("Tool parameters used for the generation")),
		),
		mcpRecordGeneration(deps),
	)

	s.AddTool(
		mcp.NewTool("submit_feedback",
			mcp.WithDescription("Rate a recorded generation."),
			mcp.WithString("generation_id", mcp.Description("Id returned by record_generation"), mcp.Required()),
			mcp.WithString("rating", mcp.Description("positive or negative"), mcp.Required(), mcp.Enum("positive", "negative")),
			mcp.WithString("comment", mcp.Description("Optional free-form comment")),
		),
		mcpSubmitFeedback(deps),
	)

	s.AddTool(
		mcp.NewTool("feedback_stats",
			mcp.WithDescription("Report feedback counts by source and rating."),
		),
		mcpFeedbackStats(deps),
	)

	s.AddTool(
		mcp.NewTool("run_promotion",
			mcp.WithDescription("Promote recurring, well-rated patterns into catalog snippets now."),
		),
		mcpRunPromotion(deps),
	)

	s.AddResource(
		mcp.NewResource(
			statsURI,
			"Feedback Stats",
			mcp.WithResourceDescription("Feedback counts by source and rating as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceStats(deps),
	)

	return s
}

func mcpSearchComponents(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", defaultSearchLimit)
		if limit <= 0 {
			limit = defaultSearchLimit
		}
		if limit > maxSearchLimit {
			limit = maxSearchLimit
		}

		q := catalog.Query{
			Type:        req.GetString("type", ""),
			Variant:     req.GetString("variant", ""),
			Category:    req.GetString("category", ""),
			Mood:        req.GetString("mood", ""),
			Industry:    req.GetString("industry", ""),
			VisualStyle: req.GetString("visual_style", ""),
			Tags:        req.GetStringSlice("tags", nil),
			Limit:       limit,
		}
		if q.Empty() {
			return mcpError("at least one search criterion is required"), nil
		}

		results := deps.Ranker.Search(ctx, q)
		if results == nil {
			results = []catalog.Result{}
		}
		return mcpJSON(results), nil
	}
}

type bestMatchResult struct {
	Found   bool                 `json:"found"`
	Snippet *model.SnippetRecord `json:"snippet,omitempty"`
}

func mcpBestMatch(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		componentType, err := req.RequireString("component_type")
		if err != nil || componentType == "" {
			return mcpError("component_type is required"), nil
		}

		rec, ok := deps.Catalog.BestMatch(componentType, catalog.Query{
			Variant:     req.GetString("variant", ""),
			Mood:        req.GetString("mood", ""),
			Industry:    req.GetString("industry", ""),
			VisualStyle: req.GetString("visual_style", ""),
		})
		if !ok {
			return mcpJSON(bestMatchResult{}), nil
		}
		return mcpJSON(bestMatchResult{Found: true, Snippet: &rec}), nil
	}
}

type generationResult struct {
	GenerationID   string   `json:"generation_id"`
	SkeletonHash   string   `json:"skeleton_hash,omitempty"`
	Skeleton       string   `json:"skeleton"`
	PatternFreq    int      `json:"pattern_frequency,omitempty"`
	Signals        []string `json:"signals,omitempty"`
	ImplicitScore  *float64 `json:"implicit_score,omitempty"`
	PrevGeneration string   `json:"previous_generation_id,omitempty"`
}

func mcpRecordGeneration(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var missing []string
		required := map[string]string{}
		for _, name := range []string{"tool", "component_type", "code", "session_id"} {
			v, err := req.RequireString(name)
			if err != nil || v == "" {
				missing = append(missing, name)
				continue
			}
			required[name] = v
		}
		if len(missing) > 0 {
			return mcpError(fmt.Sprintf("missing required arguments: %v", missing)), nil
		}

		ev := model.GenerationEvent{
			Tool:          required["tool"],
			ComponentType: required["component_type"],
			SessionID:     required["session_id"],
			Framework:     req.GetString("framework", ""),
		}
		if params, ok := req.GetArguments()["params"].(map[string]any); ok {
			ev.Params = params
		}

		res, err := deps.Recorder.RecordGeneration(ctx, ev, required["code"], req.GetString("prompt", ""))
		if err != nil {
			logging.From(ctx).Error("recording generation failed", "error", err)
			return mcpError(fmt.Sprintf("failed to record generation: %v", err)), nil
		}

		out := generationResult{
			GenerationID: res.Event.ID,
			SkeletonHash: res.Event.SkeletonHash,
			Skeleton:     res.Fingerprint.Skeleton,
		}
		if res.Pattern != nil {
			out.PatternFreq = res.Pattern.Frequency
		}
		if res.Classification != nil {
			for _, s := range res.Classification.Signals {
				out.Signals = append(out.Signals, string(s.Type))
			}
		}
		if res.Implicit != nil {
			score := res.Implicit.Score
			out.ImplicitScore = &score
			out.PrevGeneration = res.Implicit.GenerationID
			deps.invalidateStats()
		}
		return mcpJSON(out), nil
	}
}

func mcpSubmitFeedback(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		generationID, err := req.RequireString("generation_id")
		if err != nil || generationID == "" {
			return mcpError("generation_id is required"), nil
		}
		rating, err := req.RequireString("rating")
		if err != nil {
			return mcpError("rating is required"), nil
		}

		entry, err := deps.Recorder.RecordExplicitFeedback(ctx, generationID, model.Rating(rating), req.GetString("comment", ""))
		if err != nil {
			if errors.Is(err, model.ErrInvalidRating) {
				return mcpError(fmt.Sprintf("rating must be positive or negative, got %q", rating)), nil
			}
			logging.From(ctx).Error("recording feedback failed", "error", err, "generation_id", generationID)
			return mcpError(fmt.Sprintf("failed to record feedback: %v", err)), nil
		}
		deps.invalidateStats()
		return mcpJSON(entry), nil
	}
}

func mcpFeedbackStats(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		st, err := deps.Recorder.Stats(ctx)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to read stats: %v", err)), nil
		}
		return mcpJSON(st), nil
	}
}

func mcpRunPromotion(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		n := deps.Promoter.RunCycle(ctx)
		return mcpJSON(map[string]int{"promoted": n, "catalog_size": deps.Catalog.Len()}), nil
	}
}

func mcpResourceStats(deps Deps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		st, err := deps.Recorder.Stats(ctx)
		if err != nil {
			return nil, err
		}

		b, err := json.Marshal(st)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal stats: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func (d Deps) invalidateStats() {
	if d.Stats != nil {
		d.Stats.Invalidate()
	}
}

func mcpJSON(v any) *mcp.CallToolResult {
	b, err := json.Marshal(v)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err))
	}
	return mcpText(string(b))
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
