package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/domhash/domhash"
)

func handleGenerateDigest(defaults domhash.Options) server.ToolHandlerFunc {
	return func(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content, err := request.RequireString("content")
		if err != nil {
			return mcp.NewToolResultError("content is required"), nil
		}

		opts := defaults
		if strategy := request.GetString("strategy", ""); strategy != "" {
			opts.Strategy = domhash.Strategy(strategy)
		}
		if n := request.GetInt("ngram_size", 0); n > 0 {
			opts.NgramSize = n
		}

		engine, err := domhash.New(opts)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		res, err := engine.Generate(content)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("%s\n\n---\nStrategy: %s, units: %d, normalized length: %d",
			res.Digest, res.Digest.Strategy, res.Units, res.NormalizedLength)), nil
	}
}

func handleCompareDigests() server.ToolHandlerFunc {
	return func(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		a, err := request.RequireString("digest_a")
		if err != nil {
			return mcp.NewToolResultError("digest_a is required"), nil
		}
		b, err := request.RequireString("digest_b")
		if err != nil {
			return mcp.NewToolResultError("digest_b is required"), nil
		}

		score, err := domhash.CompareStrings(a, b)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Similarity: %s (%s, max %s)",
			strconv.FormatFloat(score.Value, 'f', -1, 64),
			score.Metric,
			strconv.FormatFloat(score.Max(), 'f', -1, 64))), nil
	}
}
