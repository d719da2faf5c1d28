// Package integrations manages third-party MCP server setup: a catalog of
// known servers and the plumbing that wires them into the project's
// .mcp.json and .env files.
package integrations

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownServer is returned for a server name outside the catalog.
var ErrUnknownServer = errors.New("unknown MCP server")

// Server describes one third-party MCP server the catalog knows how to
// configure. Command servers run locally via npx or a binary; URL servers
// are remote.
type Server struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Command     string   `json:"command,omitempty"`
	Args        []string `json:"args,omitempty"`
	URL         string   `json:"url,omitempty"`
	EnvKeys     []string `json:"env_keys,omitempty"`
	DocsURL     string   `json:"docs_url,omitempty"`
}

// Catalog returns the known MCP servers sorted by name.
func Catalog() []Server {
	servers := []Server{
		{
			Name:        "github",
			Description: "Repository, issue, and pull request operations",
			Command:     "npx",
			Args:        []string{"-y", "@modelcontextprotocol/server-github"},
			EnvKeys:     []string{"GITHUB_PERSONAL_ACCESS_TOKEN"},
			DocsURL:     "https://github.com/modelcontextprotocol/servers",
		},
		{
			Name:        "aws",
			Description: "AWS resource inspection and management",
			Command:     "npx",
			Args:        []string{"-y", "@aws/mcp-server-aws"},
			EnvKeys:     []string{"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_REGION"},
			DocsURL:     "https://docs.aws.amazon.com/",
		},
		{
			Name:        "figma",
			Description: "Design file access for development handoff",
			Command:     "npx",
			Args:        []string{"-y", "figma-developer-mcp", "--stdio"},
			EnvKeys:     []string{"FIGMA_API_KEY"},
			DocsURL:     "https://www.figma.com/developers/api",
		},
		{
			Name:        "supabase",
			Description: "Database and auth management for Supabase projects",
			Command:     "npx",
			Args:        []string{"-y", "@supabase/mcp-server-supabase"},
			EnvKeys:     []string{"SUPABASE_ACCESS_TOKEN"},
			DocsURL:     "https://supabase.com/docs",
		},
		{
			Name:        "playwright",
			Description: "Browser automation for end-to-end testing",
			Command:     "npx",
			Args:        []string{"-y", "@playwright/mcp@latest"},
			DocsURL:     "https://playwright.dev/",
		},
		{
			Name:        "browserstack",
			Description: "Cross-browser testing on real devices",
			Command:     "npx",
			Args:        []string{"-y", "@browserstack/mcp-server"},
			EnvKeys:     []string{"BROWSERSTACK_USERNAME", "BROWSERSTACK_ACCESS_KEY"},
			DocsURL:     "https://www.browserstack.com/docs",
		},
		{
			Name:        "perplexity",
			Description: "Web research with cited answers",
			Command:     "npx",
			Args:        []string{"-y", "@perplexity-ai/mcp-server"},
			EnvKeys:     []string{"PERPLEXITY_API_KEY"},
			DocsURL:     "https://docs.perplexity.ai/",
		},
		{
			Name:        "firecrawl",
			Description: "Web scraping and site crawling",
			Command:     "npx",
			Args:        []string{"-y", "firecrawl-mcp"},
			EnvKeys:     []string{"FIRECRAWL_API_KEY"},
			DocsURL:     "https://docs.firecrawl.dev/",
		},
		{
			Name:        "context7",
			Description: "Up-to-date library documentation lookup",
			URL:         "https://mcp.context7.com/mcp",
			EnvKeys:     []string{"CONTEXT7_API_KEY"},
			DocsURL:     "https://context7.com/",
		},
	}

	sort.Slice(servers, func(i, j int) bool {
		return servers[i].Name < servers[j].Name
	})
	return servers
}

// Lookup returns the catalog entry for a server name.
func Lookup(name string) (*Server, error) {
	for _, s := range Catalog() {
		if s.Name == name {
			return &s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownServer, name)
}
