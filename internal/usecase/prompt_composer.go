package usecase

import (
	"os"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"weekend-guide/internal/domain"
)

// maxPromptSnippets caps how many retrieved snippets are listed in the user
// prompt.
const maxPromptSnippets = 5

// PromptPaths names the fragment files that make up the system prompt.
type PromptPaths struct {
	Base         string
	Fallback     string
	Styles       map[string]string
	DefaultStyle string
}

type fragment struct {
	modTime time.Time
	content string
}

// PromptComposer assembles the system and user prompts from hot-reloadable
// text fragments. Each fragment is cached per path and refreshed when the
// file's modification time changes, so operators can edit persona text live
// without a restart. Concurrent readers may race on the reload check; a
// redundant re-read of identical content is the worst case.
type PromptComposer struct {
	paths PromptPaths
	cache *lru.Cache[string, fragment]
}

// NewPromptComposer creates a composer over the given fragment paths.
func NewPromptComposer(paths PromptPaths) (*PromptComposer, error) {
	cache, err := lru.New[string, fragment](2 + len(paths.Styles))
	if err != nil {
		return nil, err
	}
	return &PromptComposer{paths: paths, cache: cache}, nil
}

// Compose builds the (system, user) prompt pair for a style and message.
// Unknown style names fall back to the default style. A missing or unreadable
// fragment is a ConfigurationError and must fail the request so operators
// notice broken persona files.
func (c *PromptComposer) Compose(style, userMessage string, snippets []string) (string, string, error) {
	stylePath, ok := c.paths.Styles[style]
	if !ok {
		stylePath = c.paths.Styles[c.paths.DefaultStyle]
	}

	base, err := c.readFragment(c.paths.Base)
	if err != nil {
		return "", "", err
	}
	persona, err := c.readFragment(stylePath)
	if err != nil {
		return "", "", err
	}
	fallback, err := c.readFragment(c.paths.Fallback)
	if err != nil {
		return "", "", err
	}

	systemPrompt := base + "\n\n" + persona + "\n\n" + fallback

	if len(snippets) > maxPromptSnippets {
		snippets = snippets[:maxPromptSnippets]
	}
	var sb strings.Builder
	sb.WriteString("User: ")
	sb.WriteString(userMessage)
	sb.WriteString("\n\nEvent snippets:\n")
	sb.WriteString(strings.Join(snippets, "\n"))

	return systemPrompt, sb.String(), nil
}

func (c *PromptComposer) readFragment(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", &domain.ConfigurationError{Path: path, Err: err}
	}
	if frag, ok := c.cache.Get(path); ok && frag.modTime.Equal(info.ModTime()) {
		return frag.content, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", &domain.ConfigurationError{Path: path, Err: err}
	}
	content := strings.TrimRight(string(data), "\n")
	c.cache.Add(path, fragment{modTime: info.ModTime(), content: content})
	return content, nil
}
