// Command domhash-mcp exposes digest generation and comparison as MCP tools
// over stdio. The engine runs in-process; no server is required.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/domhash/config"
	"github.com/use-agent/domhash/domhash"
)

func main() {
	// stdout carries the MCP protocol; logs go to stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	defaults := config.Load().Digest.Options()
	if _, err := domhash.New(defaults); err != nil {
		fmt.Fprintf(os.Stderr, "invalid digest configuration: %v\n", err)
		os.Exit(1)
	}

	s := newServer(defaults)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func newServer(defaults domhash.Options) *server.MCPServer {
	s := server.NewMCPServer(
		"domhash",
		domhash.Version,
		server.WithToolCapabilities(false),
	)

	generateTool := mcp.NewTool("generate_digest",
		mcp.WithDescription("Compute a similarity-preserving digest of an HTML or XML document. Similar documents get similar digests; compare two with compare_digests."),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The HTML or XML markup to digest"),
		),
		mcp.WithString("strategy",
			mcp.Description("Digest scheme: 'ngram' (default, word n-gram set compared by Jaccard) or 'chunk' (fixed-length string compared position by position)"),
			mcp.Enum(string(domhash.StrategyNGram), string(domhash.StrategyChunk)),
		),
		mcp.WithNumber("ngram_size",
			mcp.Description("Words per n-gram for the ngram strategy (default: 5)"),
		),
	)
	s.AddTool(generateTool, handleGenerateDigest(defaults))

	compareTool := mcp.NewTool("compare_digests",
		mcp.WithDescription("Compare two digests produced by generate_digest. Returns 0-1 for ngram digests and 0-100 for chunk digests."),
		mcp.WithString("digest_a",
			mcp.Required(),
			mcp.Description("The first digest token"),
		),
		mcp.WithString("digest_b",
			mcp.Required(),
			mcp.Description("The second digest token"),
		),
	)
	s.AddTool(compareTool, handleCompareDigests())

	return s
}
