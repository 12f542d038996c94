package domain

import "time"

// Section names, in the literal order they are rendered.
const (
	SectionTopActions   = "Top 5 Actions for Today"
	SectionTimeCritical = "Time-Critical in Next 2 Hours"
	SectionCalendarPrep = "Calendar Collisions / Prep Needed"
	SectionInboxWatch   = "Inbox Watchlist (Last 24h)"
	SectionDeferred     = "Deferred / Low Priority"
	SectionFirstTask    = "One Recommended First Task (start here)"
)

// SectionNames returns the six section headers in render order.
func SectionNames() []string {
	return []string{
		SectionTopActions,
		SectionTimeCritical,
		SectionCalendarPrep,
		SectionInboxWatch,
		SectionDeferred,
		SectionFirstTask,
	}
}

// Sections holds the six partitions of a brief. Each preserves rank order.
type Sections struct {
	TopActions   []Item
	TimeCritical []Item
	CalendarPrep []Item
	InboxWatch   []Item
	Deferred     []Item

	// FirstTask is the first item of TopActions, or nil when there is none.
	FirstTask *Item

	// Collisions names calendar pairs whose windows overlap.
	Collisions []Collision
}

// Collision is a pair of overlapping calendar items.
type Collision struct {
	First  string
	Second string
}

// Ordered returns the sections as (name, items) pairs in render order.
func (s *Sections) Ordered() []NamedSection {
	first := []Item{}
	if s.FirstTask != nil {
		first = []Item{*s.FirstTask}
	}
	return []NamedSection{
		{Name: SectionTopActions, Items: s.TopActions},
		{Name: SectionTimeCritical, Items: s.TimeCritical},
		{Name: SectionCalendarPrep, Items: s.CalendarPrep},
		{Name: SectionInboxWatch, Items: s.InboxWatch},
		{Name: SectionDeferred, Items: s.Deferred},
		{Name: SectionFirstTask, Items: first},
	}
}

// NamedSection pairs a header with its items.
type NamedSection struct {
	Name  string
	Items []Item
}

// ActionableKeys returns the identity keys of every item in any section.
func (s *Sections) ActionableKeys() map[string]Source {
	keys := make(map[string]Source)
	for _, sec := range s.Ordered() {
		for i := range sec.Items {
			keys[sec.Items[i].Key()] = sec.Items[i].Source
		}
	}
	return keys
}

// Brief is a rendered brief and the data behind it.
type Brief struct {
	// RunID links the brief to its refresh event.
	RunID string

	// GeneratedAt is the injected clock reading the brief was built for.
	GeneratedAt time.Time

	// Text is the rendered markdown.
	Text string

	// Sections is the assembled partition.
	Sections Sections

	// Items is the full ranked list.
	Items []Item
}
