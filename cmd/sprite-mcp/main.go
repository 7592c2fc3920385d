package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/ironsheep/sprite-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const usageHeader = `sprite-tools-mcp - MCP server that finds sprite bounding boxes on sprite sheets

Usage: sprite-tools-mcp [--version | --help]

The server speaks JSON-RPC 2.0 over stdin/stdout. Configure it as a stdio
server in your MCP client.
`

const usageFooter = `
sprite_find reports progress when the call carries _meta.progressToken and
stops early on notifications/cancelled. Only one search runs at a time.
Loaded sheets stay cached; pass reload=true after editing a sheet.

Environment variables:
  SPRITE_MCP_LOG_LEVEL=debug   Log requests and search lifecycle to stderr
`

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			printVersion(os.Stdout)
			return
		case "--help", "-h", "help":
			printUsage(os.Stdout)
			return
		default:
			fmt.Fprintf(os.Stderr, "unknown argument %q\n\n", os.Args[1])
			printUsage(os.Stderr)
			os.Exit(2)
		}
	}

	// stdout carries the protocol
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if os.Getenv("SPRITE_MCP_LOG_LEVEL") == "debug" {
		log.Printf("Sprite MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	if err := server.New().Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "sprite-tools-mcp %s\n  Build time: %s\n  Git commit: %s\n", Version, BuildTime, GitCommit)
}

// printUsage lists the tools from the server's own definitions so the help
// text cannot drift from tools/list.
func printUsage(w io.Writer) {
	fmt.Fprint(w, usageHeader)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tools:")

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, tool := range server.GetToolDefinitions() {
		fmt.Fprintf(tw, "  %s\t%s\n", tool.Name, summary(tool.Description))
	}
	tw.Flush()

	fmt.Fprint(w, usageFooter)
}

// summary returns the first sentence of a tool description.
func summary(desc string) string {
	if i := strings.Index(desc, ". "); i >= 0 {
		return desc[:i+1]
	}
	return desc
}
