package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driven"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driving"
	"github.com/custodia-labs/flightdeck/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.BriefingService = (*Pipeline)(nil)

// syntheticMarkers identify example-domain content that must never reach a
// live brief.
var syntheticMarkers = []string{".example/", ".example.com", "slack.example", "mail.example"}

// Pipeline runs fetch, normalise, dedupe, score, rank, assemble, render and
// deliver for one briefing, recording every stage on a Tracker.
type Pipeline struct {
	fetcher    driven.SnapshotFetcher
	registry   driven.NormaliserRegistry
	dispatcher *Dispatcher
	runLog     driven.RunLog
	settings   domain.Settings

	clock     Clock
	newID     func() string
	observers []driven.RunObserver

	mu      sync.Mutex
	running bool
}

// NewPipeline creates a briefing pipeline. runLog may be nil, in which case
// frozen events are not persisted.
func NewPipeline(
	fetcher driven.SnapshotFetcher,
	registry driven.NormaliserRegistry,
	dispatcher *Dispatcher,
	runLog driven.RunLog,
	settings domain.Settings,
) *Pipeline {
	return &Pipeline{
		fetcher:    fetcher,
		registry:   registry,
		dispatcher: dispatcher,
		runLog:     runLog,
		settings:   settings,
		clock:      time.Now,
		newID:      uuid.NewString,
	}
}

// SetClock replaces the clock used for now and event timestamps.
func (p *Pipeline) SetClock(clock Clock) {
	if clock != nil {
		p.clock = clock
	}
}

// AddObserver registers an observer notified with every frozen event.
func (p *Pipeline) AddObserver(o driven.RunObserver) {
	if o != nil {
		p.observers = append(p.observers, o)
	}
}

// runState carries one run's intermediate results between stages.
type runState struct {
	runID    string
	opts     driving.RunOptions
	now      time.Time
	tracker  *Tracker
	snapshot *domain.Snapshot
	counts   map[domain.Source]domain.SourceCounts
	items    []domain.Item
	brief    *domain.Brief
}

// Run executes one pipeline run.
func (p *Pipeline) Run(ctx context.Context, opts driving.RunOptions) (*driving.RunReport, error) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil, domain.ErrRunInProgress
	}
	p.running = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	rs := &runState{
		runID:   p.newID(),
		opts:    opts,
		now:     p.clock().UTC(),
		tracker: NewTracker(p.clock),
		counts:  make(map[domain.Source]domain.SourceCounts),
	}
	if err := rs.tracker.Start(rs.runID, opts.Trigger); err != nil {
		return nil, err
	}
	logger.Section("Briefing run " + rs.runID)

	runErr := p.execute(ctx, rs)
	if runErr != nil && !rs.tracker.State().IsTerminal() {
		if failErr := rs.tracker.Fail(domain.ErrorKindFatalPipeline, runErr); failErr != nil {
			return nil, errors.Join(runErr, failErr)
		}
		rs.brief = nil
		p.stage(rs, domain.StateFailed, "%v", runErr)
	}

	event, err := rs.tracker.Freeze()
	if err != nil {
		return nil, errors.Join(runErr, err)
	}
	report := &driving.RunReport{Event: event, Brief: rs.brief}

	if !opts.SkipDelivery {
		if err := p.commit(ctx, event, rs.brief); err != nil {
			return report, errors.Join(runErr, err)
		}
	}
	for _, o := range p.observers {
		o.ObserveRun(event)
	}
	return report, runErr
}

// execute runs the stages in order. A non-nil error with a non-terminal
// tracker is a fatal pipeline error.
func (p *Pipeline) execute(ctx context.Context, rs *runState) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", domain.ErrFatalPipeline, r)
		}
	}()

	if err := p.fetch(ctx, rs); err != nil {
		return err
	}
	if err := p.normalise(rs); err != nil {
		return err
	}

	if rs.snapshot.TotalRaw() == 0 && !p.allowEmpty(rs.opts) {
		detail := "all sources returned zero rows; set brief.allow_empty_snapshot to override"
		if err := rs.tracker.Block(detail); err != nil {
			return err
		}
		p.stage(rs, domain.StateEmptyGuardBlocked, "%s", detail)
		return domain.ErrEmptySnapshot
	}

	ranked := Rank(ScoreAll(rs.items, rs.now))
	if err := rs.tracker.Advance(domain.StateScored, nil); err != nil {
		return err
	}
	p.stage(rs, domain.StateScored, "%d items scored", len(ranked))

	sections := Assemble(ranked, rs.now, p.settings.Brief.LowPriorityThreshold)
	actionable := sections.ActionableKeys()
	for _, src := range domain.AllSources() {
		c := rs.counts[src]
		c.Actionable = 0
		rs.counts[src] = c
	}
	for _, src := range actionable {
		c := rs.counts[src]
		c.Actionable++
		rs.counts[src] = c
	}
	rs.brief = &domain.Brief{
		RunID:       rs.runID,
		GeneratedAt: rs.now,
		Text:        RenderBrief(sections, rs.now),
		Sections:    sections,
		Items:       ranked,
	}
	if err := rs.tracker.Advance(domain.StateRendered, rs.counts); err != nil {
		return err
	}
	p.stage(rs, domain.StateRendered, "%d actionable items", len(actionable))

	if rs.opts.SkipDelivery {
		rs.tracker.Note("delivery skipped (dry run)")
		return rs.tracker.Advance(domain.StateDelivered, nil)
	}

	result := p.dispatcher.Deliver(ctx, rs.brief.Text)
	rs.tracker.SetDelivery(result)
	if result.PrimaryStatus != domain.SinkOK {
		detail := "primary: " + result.PrimaryDetail
		if result.FallbackStatus == domain.SinkFailed {
			detail += "; fallback: " + result.FallbackDetail
		}
		rs.tracker.RecordError(domain.ErrorKindDeliveryFailure, detail)
	}
	if err := rs.tracker.Advance(domain.StateDelivered, nil); err != nil {
		return err
	}
	p.stage(rs, domain.StateDelivered, "primary=%s fallback=%s", result.PrimaryStatus, result.FallbackStatus)
	return nil
}

func (p *Pipeline) fetch(ctx context.Context, rs *runState) error {
	if err := rs.tracker.Advance(domain.StateFetching, nil); err != nil {
		return err
	}
	if p.fetcher == nil {
		return fmt.Errorf("%w: no snapshot fetcher configured", domain.ErrFatalPipeline)
	}
	rs.tracker.SetFetchMode(p.fetcher.Mode())

	snapshot, err := p.fetcher.FetchSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("%w: fetch snapshot: %w", domain.ErrFatalPipeline, err)
	}
	rs.snapshot = snapshot
	rs.tracker.SetFetchMode(snapshot.FetchMode)

	var failed []error
	for _, src := range domain.AllSources() {
		batch := snapshot.Batch(src)
		rs.counts[src] = domain.SourceCounts{Raw: len(batch.Rows)}
		if batch.Err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", src, batch.Err))
			rs.tracker.RecordError(domain.ErrorKindAdapterUnavailable, fmt.Sprintf("%s: %v", src, batch.Err))
		}
	}
	for _, src := range snapshot.Diagnostics.Unavailable() {
		if snapshot.Batch(src).Err != nil {
			continue
		}
		rs.tracker.RecordError(domain.ErrorKindAdapterUnavailable, fmt.Sprintf("%s: tool unavailable", src))
	}
	for _, msg := range snapshot.Diagnostics.Errors {
		rs.tracker.RecordError(domain.ErrorKindAdapterUnavailable, msg)
	}
	p.stage(rs, domain.StateFetching, "raw chat=%d calendar=%d email=%d",
		rs.counts[domain.SourceChat].Raw, rs.counts[domain.SourceCalendar].Raw, rs.counts[domain.SourceEmail].Raw)

	if len(failed) == len(domain.AllSources()) {
		return fmt.Errorf("%w: %w", domain.ErrAllAdaptersUnavailable, errors.Join(failed...))
	}
	if snapshot.FetchMode == domain.FetchModeLive {
		if err := checkSynthetic(snapshot); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) normalise(rs *runState) error {
	var all []domain.Item
	dropped := 0
	for _, src := range domain.AllSources() {
		rows := rs.snapshot.Batch(src).Rows
		n, err := p.registry.Get(src)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrFatalPipeline, err)
		}
		result := n.Normalise(rows, rs.now)

		c := rs.counts[src]
		c.Dropped = result.Dropped
		c.OutOfScope = result.OutOfScope
		rs.counts[src] = c
		dropped += result.Dropped
		all = append(all, result.Items...)

		if sp, ok := n.(driven.ChannelStatsProvider); ok && len(rows) > 0 {
			rs.tracker.SetChannelStats(sp.ChannelStats(rows))
		}
	}
	if dropped > 0 {
		rs.tracker.RecordError(domain.ErrorKindNormalizationDrop, "")
		logger.Debug("%d rows dropped for missing id or timestamp", dropped)
	}

	rs.items = Dedupe(all)
	for src, n := range CountBySource(rs.items) {
		c := rs.counts[src]
		c.InScope = n
		rs.counts[src] = c
	}
	if err := rs.tracker.Advance(domain.StateNormalized, rs.counts); err != nil {
		return err
	}
	p.stage(rs, domain.StateNormalized, "%d in scope after dedupe", len(rs.items))
	return nil
}

func (p *Pipeline) commit(ctx context.Context, event domain.RefreshEvent, brief *domain.Brief) error {
	if p.runLog == nil {
		return nil
	}
	if event.Status != domain.StatusOK {
		brief = nil
	}
	if err := p.runLog.Commit(ctx, event, brief); err != nil {
		return fmt.Errorf("commit run %s: %w", event.RunID, err)
	}
	if days := p.settings.Storage.RetentionDays; days > 0 {
		cutoff := event.CompletedAt.Add(-time.Duration(days) * 24 * time.Hour)
		removed, err := p.runLog.Prune(ctx, cutoff)
		if err != nil {
			logger.Warn("prune run log: %v", err)
		} else if removed > 0 {
			logger.Debug("pruned %d runs older than %s", removed, cutoff.Format(time.RFC3339))
		}
	}
	return nil
}

func (p *Pipeline) allowEmpty(opts driving.RunOptions) bool {
	return opts.AllowEmpty || p.settings.Brief.AllowEmptySnapshot
}

func (p *Pipeline) stage(rs *runState, state domain.RunState, format string, args ...any) {
	logger.Stage(rs.runID, string(state), format, args...)
}

// checkSynthetic rejects snapshots carrying example-domain links.
func checkSynthetic(snapshot *domain.Snapshot) error {
	for _, src := range domain.AllSources() {
		for _, row := range snapshot.Batch(src).Rows {
			for _, v := range row {
				s, ok := v.(string)
				if !ok {
					continue
				}
				lowered := strings.ToLower(s)
				for _, marker := range syntheticMarkers {
					if strings.Contains(lowered, marker) {
						return fmt.Errorf("%w: %s row contains %q", domain.ErrSyntheticSnapshot, src, s)
					}
				}
			}
		}
	}
	return nil
}
