/*
Package mcp implements the MCP server that exposes the emotion catalogue.

The server uses stdio transport and exposes 4 tools over one session:
  - vad_search: Rank catalogue entries around a VAD point
  - vad_analyze: Run the affective dynamics engine over the session trajectory
  - vad_lookup: Find catalogue entries by term
  - vad_history: List logged searches
*/
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/khanglvm/delta-ego/internal/config"
	"github.com/khanglvm/delta-ego/internal/ego"
	"github.com/khanglvm/delta-ego/internal/search"
	"github.com/khanglvm/delta-ego/internal/session"
	"github.com/khanglvm/delta-ego/internal/storage"
	"github.com/khanglvm/delta-ego/internal/vad"
	"github.com/khanglvm/delta-ego/internal/version"
)

// Server represents the delta-ego MCP server.
type Server struct {
	// mu serializes access to the session; tool calls may run concurrently.
	mu       sync.Mutex
	session  *session.Session
	searcher *search.Searcher
	defaults config.SearchSettings
	history  storage.Storage

	mcp *server.MCPServer
}

// NewServer creates a server over sess. history may be nil, in which case
// vad_history reports that logging is disabled.
func NewServer(sess *session.Session, searcher *search.Searcher, defaults config.SearchSettings, history storage.Storage) *Server {
	s := &Server{
		session:  sess,
		searcher: searcher,
		defaults: defaults,
		history:  history,
	}

	s.mcp = server.NewMCPServer(
		"delta-ego",
		version.Version,
		server.WithToolCapabilities(true),
	)
	s.mcp.AddTool(searchTool(), s.handleSearch)
	s.mcp.AddTool(analyzeTool(), s.handleAnalyze)
	s.mcp.AddTool(lookupTool(), s.handleLookup)
	s.mcp.AddTool(historyTool(), s.handleHistory)

	return s
}

// Run starts the MCP server using stdio transport.
// This blocks until stdin is closed.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcp)
}

func searchTool() mcp.Tool {
	return mcp.NewTool("vad_search",
		mcp.WithDescription(`Find the emotion words closest to a point in valence/arousal/dominance space.

WHEN TO USE: To name an affective state, or to record it in the session trajectory
before calling vad_analyze. Every successful search appends the point to the trajectory.

MODES: base[~similarity][ -F]
  base: knn (nearest), knn_d (within radius), cos (direction), gauss_w (kernel weight)
  similarity: l2, d, cos, gauss, gauss_w
  flag: -E expanded (default), -B bare, -S simplified ("<bucket> <term>")

Example: vad_search(valence=0.8, arousal=0.5, dominance=0.3, k=3, mode="knn~gauss -S")`),
		mcp.WithNumber("valence",
			mcp.Required(),
			mcp.Description("Valence in [-1, 1]"),
		),
		mcp.WithNumber("arousal",
			mcp.Required(),
			mcp.Description("Arousal in [-1, 1]"),
		),
		mcp.WithNumber("dominance",
			mcp.Required(),
			mcp.Description("Dominance in [-1, 1]"),
		),
		mcp.WithNumber("k",
			mcp.Description("Number of results (clamped to the catalogue size)"),
		),
		mcp.WithNumber("radius",
			mcp.Description("Distance bound for knn_d and scale for the d similarity"),
		),
		mcp.WithNumber("sigma",
			mcp.Description("Gaussian bandwidth for gauss_w and gauss similarities"),
		),
		mcp.WithString("mode",
			mcp.Description("Query mode, e.g. \"knn\", \"cos~cos -B\", \"gauss_w~gauss_w -S\""),
		),
	)
}

func analyzeTool() mcp.Tool {
	return mcp.NewTool("vad_analyze",
		mcp.WithDescription(`Analyze the session trajectory: stress/reward, dynamics and cumulative area.

WHEN TO USE: After one or more vad_search calls. The newest searched point is the
current state and the one before it is the previous state.

Overrides are optional and apply to this call only.`),
		mcp.WithObject("weights",
			mcp.Description("Weight overrides: weightV_stress, weightA_stress, weightV_reward, weightA_reward, weight_k"),
		),
		mcp.WithObject("variables",
			mcp.Description("Variable overrides: theta_0, dampening_factor, lability_window"),
		),
		mcp.WithObject("axis",
			mcp.Description("Emotion base override, merged field by field: {\"baseline\": {\"valence\":0,\"arousal\":0,\"dominance\":0}, \"stabilityRadius\": 0.3}"),
		),
	)
}

func lookupTool() mcp.Tool {
	return mcp.NewTool("vad_lookup",
		mcp.WithDescription(`Find catalogue entries by word. Exact matches come first, then fuzzy and prefix matches.

Example: vad_lookup(term="joy") returns "joy", "joyful", "joyous" with their coordinates.`),
		mcp.WithString("term",
			mcp.Required(),
			mcp.Description("Word or prefix to look up"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results (default 10)"),
		),
	)
}

func historyTool() mcp.Tool {
	return mcp.NewTool("vad_history",
		mcp.WithDescription("List logged searches, newest first."),
		mcp.WithString("actor",
			mcp.Description("Actor to filter by; empty lists every actor"),
		),
		mcp.WithNumber("since_hours",
			mcp.Description("Only searches from the last N hours (default 24)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum records (default 50)"),
		),
	)
}

func (s *Server) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := req.Params.Arguments.(map[string]any)

	q := search.Query{
		K:      s.defaults.K,
		Radius: s.defaults.Radius,
		Sigma:  s.defaults.Sigma,
		Mode:   s.defaults.Mode,
	}
	for name, dst := range map[string]*float64{"valence": &q.V, "arousal": &q.A, "dominance": &q.D} {
		v, ok := args[name].(float64)
		if !ok {
			return mcp.NewToolResultError(name + " is required"), nil
		}
		*dst = v
	}
	if k, ok, err := intArg(args, "k"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	} else if ok {
		q.K = k
	}
	if r, ok := args["radius"].(float64); ok {
		q.Radius = r
	}
	if sg, ok := args["sigma"].(float64); ok {
		q.Sigma = sg
	}
	if m, ok := args["mode"].(string); ok {
		q.Mode = m
	}

	s.mu.Lock()
	resp, err := s.session.Search(q)
	s.mu.Unlock()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(resp)
}

func (s *Server) handleAnalyze(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := req.Params.Arguments.(map[string]any)

	var opts session.AnalyzeOptions
	var err error
	if opts.Weights, err = ego.ParseWeights(rawArg(args, "weights")); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if opts.Variables, err = ego.ParseVariables(rawArg(args, "variables")); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if opts.Axis, err = ego.ParseAxis(rawArg(args, "axis")); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.mu.Lock()
	res, err := s.session.Analyze(opts)
	s.mu.Unlock()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) handleLookup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := req.Params.Arguments.(map[string]any)
	term, _ := args["term"].(string)
	if term == "" {
		return mcp.NewToolResultError("term is required"), nil
	}

	limit := 10
	if l, ok, err := intArg(args, "limit"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	} else if ok && l > 0 {
		limit = l
	}

	hits, err := s.searcher.Lookup(term, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
	}
	if len(hits) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No catalogue entry matches '%s'.", term)), nil
	}
	return jsonResult(hits)
}

func (s *Server) handleHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.history == nil {
		return mcp.NewToolResultError("search history is disabled; enable storage in the configuration"), nil
	}

	args, _ := req.Params.Arguments.(map[string]any)
	actor, _ := args["actor"].(string)

	hours := 24.0
	if h, ok := args["since_hours"].(float64); ok && h > 0 {
		hours = h
	}
	limit := 50
	if l, ok, err := intArg(args, "limit"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	} else if ok && l > 0 {
		limit = l
	}

	since := time.Now().Add(-time.Duration(hours * float64(time.Hour)))
	records, err := s.history.GetSearchHistory(actor, since)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read history: %v", err)), nil
	}
	if len(records) > limit {
		records = records[:limit]
	}
	return jsonResult(records)
}

// intArg reads a whole-number argument. JSON numbers arrive as float64, so
// fractions and values outside the int32 range are rejected.
func intArg(args map[string]any, name string) (int, bool, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return 0, false, nil
	}
	f, isNum := v.(float64)
	switch {
	case !isNum:
		return 0, false, &vad.InvalidQueryError{Field: name, Reason: fmt.Sprintf("must be a number, got %T", v)}
	case math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f):
		return 0, false, &vad.InvalidQueryError{Field: name, Reason: fmt.Sprintf("must be a whole number, got %g", f)}
	case f > math.MaxInt32 || f < math.MinInt32:
		return 0, false, &vad.InvalidQueryError{Field: name, Reason: fmt.Sprintf("%g is out of range", f)}
	}
	return int(f), true, nil
}

// rawArg re-encodes an object argument so the strict JSON parsers can check it.
func rawArg(args map[string]any, name string) []byte {
	v, ok := args[name]
	if !ok || v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
