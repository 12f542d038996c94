package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
)

// EmptySection is rendered in place of a section with no items.
const EmptySection = "- none"

// RenderBrief renders the sections as markdown with all six headers in order.
// Snippets are rendered in full.
func RenderBrief(s domain.Sections, now time.Time) string {
	titles := make(map[string]string)
	for _, sec := range s.Ordered() {
		for i := range sec.Items {
			titles[sec.Items[i].Key()] = sec.Items[i].Title
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Daily Flight Deck (%s)\n", now.UTC().Format(time.DateOnly))
	for _, sec := range s.Ordered() {
		fmt.Fprintf(&b, "\n## %s\n", sec.Name)
		if sec.Name == domain.SectionCalendarPrep {
			for _, c := range s.Collisions {
				fmt.Fprintf(&b, "- **Collision:** `%s` overlaps with `%s`\n", titles[c.First], titles[c.Second])
			}
		}
		if len(sec.Items) == 0 {
			if sec.Name != domain.SectionCalendarPrep || len(s.Collisions) == 0 {
				b.WriteString(EmptySection + "\n")
			}
			continue
		}
		for i := range sec.Items {
			writeItem(&b, &sec.Items[i])
		}
	}
	return b.String()
}

func writeItem(b *strings.Builder, item *domain.Item) {
	fmt.Fprintf(b, "- [%s] **%s** from `%s` (score: %d)", item.Source, item.Title, item.ChannelOrSender, item.Score)
	if len(item.ScoreReasons) > 0 {
		fmt.Fprintf(b, " | %s", strings.Join(item.ScoreReasons, "; "))
	}
	fmt.Fprintf(b, "\n  - Snippet: %s\n  - Action: %s", item.Snippet, item.RecommendedAction)
	if item.URL != "" {
		fmt.Fprintf(b, " ([Open](%s))", item.URL)
	}
	b.WriteString("\n")
}

// RenderStatus renders the short status summary that accompanies delivery.
func RenderStatus(event *domain.RefreshEvent, brief *domain.Brief) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s: %s (%s)\n", event.RunID, event.Status, event.FetchMode)
	for _, src := range domain.AllSources() {
		c := event.Counts[src]
		fmt.Fprintf(&b, "  %-8s raw=%d in_scope=%d actionable=%d dropped=%d out_of_scope=%d\n",
			src, c.Raw, c.InScope, c.Actionable, c.Dropped, c.OutOfScope)
	}
	first := "none"
	if brief != nil && brief.Sections.FirstTask != nil {
		first = brief.Sections.FirstTask.Title
	}
	fmt.Fprintf(&b, "  first task: %s\n", first)
	if d := event.Delivery; d != nil {
		fmt.Fprintf(&b, "  delivery: primary=%s fallback=%s recipient=%s\n",
			d.PrimaryStatus, d.FallbackStatus, d.Recipient)
	} else {
		b.WriteString("  delivery: not attempted\n")
	}
	if len(event.Errors) > 0 {
		kinds := make([]string, len(event.Errors))
		for i, k := range event.Errors {
			kinds[i] = string(k)
		}
		fmt.Fprintf(&b, "  errors: %s\n", strings.Join(kinds, ", "))
	}
	if event.ErrorDetail != "" {
		fmt.Fprintf(&b, "  detail: %s\n", event.ErrorDetail)
	}
	return b.String()
}
