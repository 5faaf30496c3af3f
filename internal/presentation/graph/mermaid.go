package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/courier/pkg/mediator"
)

// GenerateMermaid produces a Mermaid flowchart of a dispatch catalog.
// Shapes:
// - Request: [/Parallelogram/]
// - Behavior: [Rectangle], chained outermost first
// - Handler: [[Subroutine]]
// - Notification: ([Stadium]) fanning out to its subscribers
func GenerateMermaid(cat mediator.Catalog) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for i, req := range cat.Requests {
		id := fmt.Sprintf("r%d", i)
		fmt.Fprintf(&sb, "    %s[/\"%s\"/]\n", id, label(req.Request))

		prev := id
		for j, b := range req.Behaviors {
			bid := fmt.Sprintf("%sb%d", id, j)
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", bid, label(b))
			fmt.Fprintf(&sb, "    %s --> %s\n", prev, bid)
			prev = bid
		}

		hid := id + "h"
		fmt.Fprintf(&sb, "    %s[[\"%s\"]]\n", hid, label(req.Handler))
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", prev, label(req.Response), hid)
	}

	for i, n := range cat.Notifications {
		id := fmt.Sprintf("n%d", i)
		fmt.Fprintf(&sb, "    %s([\"%s\"])\n", id, label(n.Notification))
		for j, s := range n.Subscribers {
			sid := fmt.Sprintf("%ss%d", id, j)
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", sid, label(s))
			fmt.Fprintf(&sb, "    %s -.-> %s\n", id, sid)
		}
	}

	return sb.String()
}

// label escapes text for a quoted Mermaid label.
func label(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	s = strings.ReplaceAll(s, "[", "&#91;")
	s = strings.ReplaceAll(s, "]", "&#93;")
	return s
}
