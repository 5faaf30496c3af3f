package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/courier/pkg/mediator"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() (func(string) (string, error), error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}

// CatalogMarkdown describes a dispatch catalog as markdown tables.
func CatalogMarkdown(cat mediator.Catalog) string {
	var sb strings.Builder
	sb.WriteString("# Requests\n\n")
	if len(cat.Requests) == 0 {
		sb.WriteString("_none registered_\n")
	} else {
		sb.WriteString("| Request | Response | Behaviors |\n|---|---|---|\n")
		for _, r := range cat.Requests {
			behaviors := strings.Join(r.Behaviors, " → ")
			if behaviors == "" {
				behaviors = "-"
			}
			fmt.Fprintf(&sb, "| `%s` | `%s` | %s |\n", r.Request, r.Response, cell(behaviors))
		}
	}

	sb.WriteString("\n# Notifications\n\n")
	if len(cat.Notifications) == 0 {
		sb.WriteString("_none subscribed_\n")
		return sb.String()
	}
	sb.WriteString("| Notification | Subscribers |\n|---|---|\n")
	for _, n := range cat.Notifications {
		fmt.Fprintf(&sb, "| `%s` | %d |\n", n.Notification, len(n.Subscribers))
	}
	return sb.String()
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
