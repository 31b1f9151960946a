package scheduler

import (
	"math"
	"slices"

	"github.com/kilianp07/quarterplan/core/capacity"
	"github.com/kilianp07/quarterplan/core/logger"
	"github.com/kilianp07/quarterplan/core/model"
)

// Scheduler plans issues for one scenario.
type Scheduler struct {
	Config model.ScenarioConfig
	// Logger receives debug traces of the planning decisions. Nil disables logging.
	Logger logger.Logger
}

// Schedule plans issues with a throwaway Scheduler.
func Schedule(issues []model.Issue, deps model.Dependencies, cfg model.ScenarioConfig) model.ScheduleResult {
	s := Scheduler{Config: cfg}
	return s.Plan(issues, deps)
}

// span is the planned interval of an issue in weeks from the start date.
type span struct {
	start float64
	end   float64
}

// run is the private working state of a single Plan call.
type run struct {
	cfg      model.ScenarioConfig
	log      logger.Logger
	byKey    map[string]model.Issue
	deps     model.Dependencies
	inSet    model.Dependencies
	lanes    map[string]*model.LaneCapacity
	resolved map[string]model.ScheduledIssue
	spans    map[string]span
}

// Plan assigns every issue a lane and, when possible, dates. The result
// holds exactly one record per input issue, in input order. Lane slot state
// is rebuilt on each call, so a Scheduler may be reused and separate
// Schedulers may run concurrently.
func (s *Scheduler) Plan(issues []model.Issue, deps model.Dependencies) model.ScheduleResult {
	r := newRun(s.Config, logger.OrNop(s.Logger), issues, deps)

	for _, is := range issues {
		if !is.Estimated() {
			r.unschedulable(is, model.ReasonMissingStoryPoints)
		}
	}
	for _, is := range issues {
		if _, done := r.resolved[is.Key]; !done && is.Terminal() {
			r.alreadyDone(is)
		}
	}
	for _, key := range TopoOrder(r.byKey, r.inSet) {
		if _, done := r.resolved[key]; done {
			continue
		}
		is := r.byKey[key]
		if r.hasMissingPrereq(key) {
			r.unschedulable(is, model.ReasonMissingDependency)
			continue
		}
		r.place(is)
	}
	r.resolveLeftovers(issues)
	return r.result(issues)
}

func newRun(cfg model.ScenarioConfig, log logger.Logger, issues []model.Issue, deps model.Dependencies) *run {
	byKey := make(map[string]model.Issue, len(issues))
	laneSet := make(map[string]struct{})
	for _, is := range issues {
		byKey[is.Key] = is
		laneSet[is.Lane(cfg.LaneMode)] = struct{}{}
	}
	lanes := make([]string, 0, len(laneSet))
	for l := range laneSet {
		lanes = append(lanes, l)
	}
	slices.Sort(lanes)

	inSet := deps.Restrict(func(k string) bool {
		_, ok := byKey[k]
		return ok
	})
	return &run{
		cfg:      cfg,
		log:      log,
		byKey:    byKey,
		deps:     deps,
		inSet:    inSet,
		lanes:    capacity.Build(lanes, capacity.FromScenario(cfg)),
		resolved: make(map[string]model.ScheduledIssue, len(issues)),
		spans:    make(map[string]span, len(issues)),
	}
}

func (r *run) hasMissingPrereq(key string) bool {
	for _, p := range r.deps[key] {
		if _, ok := r.byKey[p]; !ok {
			return true
		}
	}
	return false
}

func (r *run) unschedulable(is model.Issue, reason model.ScheduledReason) {
	r.resolved[is.Key] = model.ScheduledIssue{
		Key:             is.Key,
		Summary:         is.Summary,
		Lane:            is.Lane(r.cfg.LaneMode),
		BlockedBy:       r.deps.Of(is.Key),
		ScheduledReason: reason,
	}
	r.log.Debugw("issue not scheduled", map[string]any{"key": is.Key, "reason": string(reason)})
}

func (r *run) alreadyDone(is model.Issue) {
	start := r.cfg.StartDate
	end := r.cfg.StartDate
	zero := 0.0
	r.resolved[is.Key] = model.ScheduledIssue{
		Key:             is.Key,
		Summary:         is.Summary,
		Lane:            is.Lane(r.cfg.LaneMode),
		StartDate:       &start,
		EndDate:         &end,
		BlockedBy:       r.deps.Of(is.Key),
		ScheduledReason: model.ReasonAlreadyDone,
		DurationWeeks:   &zero,
	}
	r.spans[is.Key] = span{}
}

// place levels the issue onto the first free slot of its lane.
func (r *run) place(is model.Issue) {
	lane := is.Lane(r.cfg.LaneMode)
	lc := r.lanes[lane]

	depEnd := 0.0
	for _, p := range r.inSet[is.Key] {
		// Unscheduled prerequisites do not hold back their dependents.
		if sp, ok := r.spans[p]; ok {
			depEnd = math.Max(depEnd, sp.end)
		}
	}
	duration := DurationWeeks(is.Points(), r.cfg.SPToWeeks, lc.CapacityFactor)

	slot := lc.NextSlot()
	start := math.Max(depEnd, lc.AvailableAt[slot])
	start = math.Max(start, r.cfg.AnchorWeeks())
	end := start + duration
	lc.AvailableAt[slot] = end

	startDate := model.AddWeeks(r.cfg.StartDate, start)
	endDate := model.AddWeeks(r.cfg.StartDate, end)
	r.spans[is.Key] = span{start: start, end: end}
	r.resolved[is.Key] = model.ScheduledIssue{
		Key:             is.Key,
		Summary:         is.Summary,
		Lane:            lane,
		StartDate:       &startDate,
		EndDate:         &endDate,
		BlockedBy:       r.deps.Of(is.Key),
		ScheduledReason: model.ReasonScheduled,
		DurationWeeks:   &duration,
	}
	r.log.Debugw("issue scheduled", map[string]any{
		"key":        is.Key,
		"lane":       lane,
		"slot":       slot,
		"start_week": start,
		"end_week":   end,
	})
}

// resolveLeftovers classifies issues the topological pass never reached:
// they sit on a dependency cycle or behind one.
func (r *run) resolveLeftovers(issues []model.Issue) {
	var pending []string
	for _, is := range issues {
		if _, done := r.resolved[is.Key]; !done {
			pending = append(pending, is.Key)
		}
	}
	if len(pending) == 0 {
		return
	}
	for _, c := range Cycles(pending, r.inSet) {
		r.log.Warnf("dependency cycle: %v", c)
	}
	for _, key := range pending {
		if _, done := r.resolved[key]; done {
			continue
		}
		is := r.byKey[key]
		if r.hasMissingPrereq(key) {
			r.unschedulable(is, model.ReasonMissingDependency)
			continue
		}
		r.unschedulable(is, model.ReasonCircularDependency)
	}
}

func (r *run) result(issues []model.Issue) model.ScheduleResult {
	res := model.ScheduleResult{
		Issues:    make([]model.ScheduledIssue, 0, len(issues)),
		Scheduled: make(map[string]model.ScheduledIssue),
	}
	for _, is := range issues {
		rec := r.resolved[is.Key]
		res.Issues = append(res.Issues, rec)
		if rec.Dated() {
			res.Scheduled[rec.Key] = rec
		}
	}
	counts := res.Counts()
	r.log.Infof("planned %d issues: %d scheduled, %d done, %d unestimated, %d missing dependency, %d circular",
		len(issues),
		counts[model.ReasonScheduled],
		counts[model.ReasonAlreadyDone],
		counts[model.ReasonMissingStoryPoints],
		counts[model.ReasonMissingDependency],
		counts[model.ReasonCircularDependency],
	)
	return res
}

// DurationWeeks converts an estimate to weeks of work on a lane. The
// capacity factor is floored so the result is always finite.
func DurationWeeks(points, spToWeeks, capacityFactor float64) float64 {
	base := math.Max(0, points) * spToWeeks
	if base == 0 {
		return 0
	}
	return base / math.Max(capacity.MinCapacityFactor, capacityFactor)
}
