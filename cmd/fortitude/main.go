// Fortitude is an AI-assisted research broker: given a natural-language
// query plus optional audience/domain context, it classifies the query,
// selects and invokes an LLM provider, evaluates the answer, caches it,
// learns from user feedback, and serves interactive clients over an
// HTTP API, an MCP-style tool protocol, and this CLI.
//
// Usage:
//
//	# Run a one-off research query against the local engine
//	fortitude research "how do I implement a retry loop in Go"
//
//	# List cached research results
//	fortitude list --limit 20
//
//	# Start the HTTP and MCP servers
//	fortitude serve --config /path/to/config.yaml
//
//	# Show the effective configuration
//	fortitude config show
//
// For complete documentation, see the project spec.
package main

func main() {
	Execute()
}
