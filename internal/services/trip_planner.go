package services

import (
	"context"
	"errors"
	"fmt"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/platform/obs"
	"itinerary-service/internal/ports"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PlannerOptions struct {
	// MaxTripDays rejects longer trips; zero disables the check.
	MaxTripDays      int
	AnchorCapacity   int
	ShortlistCap     int
	MinStops         int
	LeftoverCount    int
	LeftoverRadiusKm float64
	EnrichBatchSize  int
	Mode             domain.TravelMode
	Reconstruct      ReconstructOptions
}

func DefaultPlannerOptions() PlannerOptions {
	return PlannerOptions{
		MaxTripDays:      30,
		AnchorCapacity:   1,
		ShortlistCap:     16,
		MinStops:         4,
		LeftoverCount:    5,
		LeftoverRadiusKm: 5,
		EnrichBatchSize:  3,
		Mode:             domain.TravelModeWalking,
		Reconstruct:      DefaultReconstructOptions(),
	}
}

type PlanTripRequest struct {
	StartDate   time.Time
	EndDate     time.Time
	Home        *domain.Coordinates
	Preferences domain.UserPreferences
	Mode        domain.TravelMode
}

// TripPlanner drives day-by-day itinerary generation for a whole trip.
// Details and Metrics are optional.
type TripPlanner struct {
	Places    ports.PlaceProvider
	Details   ports.PlaceDetailProvider
	Generator ports.DayGenerator
	Logger    *zap.Logger
	Metrics   *obs.Metrics
	Options   PlannerOptions
}

func NewTripPlanner(
	places ports.PlaceProvider,
	generator ports.DayGenerator,
	logger *zap.Logger,
	opts PlannerOptions,
) *TripPlanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TripPlanner{
		Places:    places,
		Generator: generator,
		Logger:    logger,
		Options:   opts,
	}
}

// planningSession is the state threaded through one PlanTrip call. The used
// accumulator is seeded with every anchor before any day is generated and is
// only mutated by the sequential day loop.
type planningSession struct {
	home     domain.Coordinates
	mode     domain.TravelMode
	pool     []domain.Place
	byID     map[string]domain.Place
	used     *UsedPlaces
	observer ports.ProgressObserver
}

func (s *planningSession) emit(stage, message string, progress float64, detail string) {
	if s.observer == nil {
		return
	}
	s.observer.OnProgress(domain.ProgressEvent{
		Stage:    stage,
		Message:  message,
		Progress: progress,
		Detail:   detail,
	})
}

// PlanTrip builds a TripPlan for every calendar day between StartDate and EndDate.
//
// Missing dates, missing home coordinates and an empty place pool abort the
// run. Any failure inside a single day finalizes that day empty and degraded
// while the remaining days are still planned. ctx is checked between days.
func (p *TripPlanner) PlanTrip(
	ctx context.Context,
	req PlanTripRequest,
	observer ports.ProgressObserver,
) (_ *domain.TripPlan, err error) {
	defer obs.Time(ctx, p.Logger, "planner.PlanTrip")(&err)
	started := time.Now()

	if req.StartDate.IsZero() || req.EndDate.IsZero() || req.EndDate.Before(req.StartDate) {
		return nil, fmt.Errorf("plan trip: %w", domain.ErrMissingTripDates)
	}
	if req.Home == nil || !req.Home.Valid() {
		return nil, fmt.Errorf("plan trip: %w", domain.ErrMissingHome)
	}
	days := domain.TripDays(req.StartDate, req.EndDate)
	if p.Options.MaxTripDays > 0 && len(days) > p.Options.MaxTripDays {
		return nil, fmt.Errorf("plan trip: %d days, limit %d: %w", len(days), p.Options.MaxTripDays, domain.ErrTripTooLong)
	}

	mode := req.Mode
	if mode == "" {
		mode = p.Options.Mode
	}

	session := &planningSession{
		home:     *req.Home,
		mode:     mode,
		used:     NewUsedPlaces(),
		observer: observer,
	}
	session.emit("validating", "Loading candidate places", 0, "")

	places, err := p.Places.ListPlaces(ctx, *req.Home)
	if err != nil {
		return nil, fmt.Errorf("plan trip: list places: %w: %w", domain.ErrEmptyPlacePool, err)
	}

	session.pool = preparePool(places, req.Preferences)
	if len(session.pool) == 0 {
		return nil, fmt.Errorf("plan trip: %w", domain.ErrEmptyPlacePool)
	}
	session.byID = make(map[string]domain.Place, len(session.pool))
	for _, pl := range session.pool {
		session.byID[pl.ID] = pl
	}

	anchors := AssignAnchors(days, session.pool, req.Preferences.MustSeeIDs, p.Options.AnchorCapacity, session.used)
	session.emit("anchors", "Assigned daily highlights", 0.1, fmt.Sprintf("%d days", len(days)))

	plan := &domain.TripPlan{
		ID:        uuid.NewString(),
		StartDate: days[0],
		EndDate:   days[len(days)-1],
		Home:      *req.Home,
		Days:      make([]domain.DayPlan, 0, len(days)),
	}

	for i, d := range days {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("plan trip: stopped before day %d: %w", i+1, err)
		}

		session.emit("day", fmt.Sprintf("Planning day %d of %d", i+1, len(days)),
			0.1+0.85*float64(i)/float64(len(days)), domain.DateKey(d))

		day := p.planDay(ctx, session, i, d, anchors[domain.DateKey(d)])
		plan.Days = append(plan.Days, day)

		if p.Metrics != nil {
			outcome := "ok"
			if day.Degraded {
				outcome = "degraded"
			}
			p.Metrics.PlannedDays.WithLabelValues(outcome).Inc()
		}
	}

	session.emit("finalizing", "Checking for repeated places", 0.95, "")
	p.reportCollisions(plan)

	if p.Metrics != nil {
		p.Metrics.PlanDuration.Observe(time.Since(started).Seconds())
	}
	session.emit("done", "Trip planned", 1, plan.ID)

	return plan, nil
}

// reportCollisions logs and counts place ids that appear on more than one day.
// It never fails the plan.
func (p *TripPlanner) reportCollisions(plan *domain.TripPlan) int {
	collisions := plan.Collisions()
	for id, dayIdx := range collisions {
		p.Logger.Error("place scheduled on multiple days",
			zap.String("trip_id", plan.ID),
			zap.String("place_id", id),
			zap.Ints("days", dayIdx),
		)
	}
	if p.Metrics != nil && len(collisions) > 0 {
		p.Metrics.PlanCollisions.Add(float64(len(collisions)))
	}
	return len(collisions)
}

// preparePool applies preference overrides and removes avoided places.
func preparePool(places []domain.Place, prefs domain.UserPreferences) []domain.Place {
	avoid := make(map[string]struct{}, len(prefs.AvoidIDs))
	for _, id := range prefs.AvoidIDs {
		avoid[id] = struct{}{}
	}

	seen := make(map[string]struct{}, len(places))
	out := make([]domain.Place, 0, len(places))
	for _, pl := range places {
		if pl.ID == "" {
			continue
		}
		if _, ok := avoid[pl.ID]; ok {
			continue
		}
		if _, ok := seen[pl.ID]; ok {
			continue
		}
		seen[pl.ID] = struct{}{}
		out = append(out, prefs.Apply(pl))
	}
	return out
}

var (
	errNoCandidates   = errors.New("no candidates left for the day")
	errEmptyGenerated = errors.New("generator returned no items")
)

func (p *TripPlanner) planDay(
	ctx context.Context,
	s *planningSession,
	idx int,
	date time.Time,
	anchorIDs []string,
) domain.DayPlan {
	day := domain.DayPlan{
		Date:      date,
		AnchorIDs: slices.Clone(anchorIDs),
		Stops:     []domain.ItineraryStop{},
		Stage:     domain.DayStageAnchorsAssigned,
	}

	fail := func(reason string, err error) domain.DayPlan {
		p.Logger.Warn("day degraded",
			zap.String("date", domain.DateKey(date)),
			zap.String("stage", string(day.Stage)),
			zap.String("reason", reason),
			zap.Error(err),
		)
		day.Stops = []domain.ItineraryStop{}
		day.Degraded = true
		day.DegradedReason = reason
		day.Stage = domain.DayStageFinalized
		return day
	}

	shortlist := s.shortlist(anchorIDs, p.Options.ShortlistCap)
	if len(shortlist) == 0 {
		return fail("no candidates", errNoCandidates)
	}
	if p.Details != nil {
		shortlist = EnrichPlaces(ctx, p.Details, shortlist, p.Options.EnrichBatchSize, p.Logger)
	}
	day.Stage = domain.DayStageCandidatesShortlisted

	items, err := p.Generator.GenerateDay(ctx, ports.DayRequest{
		Date:       date,
		DayIndex:   idx,
		Origin:     s.home,
		Mode:       s.mode,
		Candidates: shortlist,
		AnchorIDs:  anchorIDs,
		UsedIDs:    s.used.IDs(),
		MinStops:   p.Options.MinStops,
	})
	if err != nil {
		return fail("generation failed", err)
	}
	if len(items) == 0 {
		return fail("generation empty", errEmptyGenerated)
	}

	stops := s.acceptItems(items, shortlist, anchorIDs)
	stops = s.backfill(stops, shortlist, p.Options.MinStops)
	day.Stage = domain.DayStageDayGenerated

	for _, st := range stops {
		s.used.Add(st.PlaceID())
	}

	ropts := p.Options.Reconstruct
	if p.Metrics != nil {
		ropts.OnDrop = func(domain.ItineraryStop) { p.Metrics.DroppedStops.Inc() }
	}
	timed, err := ReconstructItinerary(date, s.home, stops, ropts)
	if err != nil {
		return fail("time reconstruction failed", err)
	}
	day.Stops = timed
	day.Stage = domain.DayStageOptimized

	day.Leftovers = s.leftovers(timed, p.Options.LeftoverCount, p.Options.LeftoverRadiusKm)
	day.Stage = domain.DayStageFinalized
	return day
}

// shortlist returns this day's anchors plus the best unused places, capped and
// sorted by score.
func (s *planningSession) shortlist(anchorIDs []string, limit int) []domain.Place {
	out := make([]domain.Place, 0, limit)
	for _, id := range anchorIDs {
		if pl, ok := s.byID[id]; ok {
			out = append(out, pl)
		}
	}

	for _, pl := range byScoreDesc(s.pool) {
		if limit > 0 && len(out) >= limit {
			break
		}
		if s.used.Has(pl.ID) {
			continue
		}
		out = append(out, pl)
	}

	return byScoreDesc(out)
}

// acceptItems converts generator output into stops, discarding unknown, repeated
// and already-used places. Anchors missing from the output are put first.
func (s *planningSession) acceptItems(
	items []ports.GeneratedItem,
	shortlist []domain.Place,
	anchorIDs []string,
) []domain.ItineraryStop {
	allowed := make(map[string]domain.Place, len(shortlist))
	for _, pl := range shortlist {
		allowed[pl.ID] = pl
	}
	isAnchor := make(map[string]bool, len(anchorIDs))
	for _, id := range anchorIDs {
		isAnchor[id] = true
	}

	seen := make(map[string]struct{})
	stops := make([]domain.ItineraryStop, 0, len(items))
	// After a discarded item the generator's travel leg starts from a place
	// that is no longer in the day, so the next kept stop is re-estimated.
	skipped := false
	keep := func(st domain.ItineraryStop) {
		if skipped {
			st.TravelTimeFromPrevious = nil
			st.TravelInstructions = ""
			skipped = false
		}
		stops = append(stops, st)
	}

	for _, it := range items {
		if it.PlaceID == "" {
			if !it.IsMeal {
				skipped = true
				continue
			}
			keep(domain.ItineraryStop{
				EstimatedDuration:      it.Duration,
				TravelTimeFromPrevious: it.Travel,
				TravelInstructions:     it.TravelInstructions,
				Reason:                 it.Reason,
				IsMeal:                 true,
			})
			continue
		}

		pl, ok := allowed[it.PlaceID]
		if !ok {
			skipped = true
			continue
		}
		if _, dup := seen[pl.ID]; dup {
			skipped = true
			continue
		}
		if s.used.Has(pl.ID) && !isAnchor[pl.ID] {
			skipped = true
			continue
		}
		seen[pl.ID] = struct{}{}

		keep(domain.ItineraryStop{
			Place:                  &pl,
			EstimatedDuration:      it.Duration,
			TravelTimeFromPrevious: it.Travel,
			TravelInstructions:     it.TravelInstructions,
			Reason:                 it.Reason,
		})
	}

	var missing []domain.ItineraryStop
	for _, id := range anchorIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		pl, ok := allowed[id]
		if !ok {
			continue
		}
		seen[id] = struct{}{}
		missing = append(missing, domain.ItineraryStop{
			Place:  &pl,
			Reason: "Today's highlight.",
		})
	}
	if len(missing) > 0 {
		// The old first stop no longer follows the origin.
		if len(stops) > 0 {
			stops[0].TravelTimeFromPrevious = nil
			stops[0].TravelInstructions = ""
		}
		stops = append(missing, stops...)
	}

	return stops
}

// backfill appends the best remaining shortlist places until the day holds
// minStops place stops or candidates run out. No external call is made.
func (s *planningSession) backfill(
	stops []domain.ItineraryStop,
	shortlist []domain.Place,
	minStops int,
) []domain.ItineraryStop {
	inDay := make(map[string]struct{}, len(stops))
	count := 0
	for _, st := range stops {
		if id := st.PlaceID(); id != "" {
			inDay[id] = struct{}{}
			count++
		}
	}

	for _, pl := range shortlist {
		if count >= minStops {
			break
		}
		if _, ok := inDay[pl.ID]; ok || s.used.Has(pl.ID) {
			continue
		}
		inDay[pl.ID] = struct{}{}
		stops = append(stops, domain.ItineraryStop{
			Place:  &pl,
			Reason: fmt.Sprintf("Added nearby %s to round out the day.", pl.Category),
		})
		count++
	}

	return stops
}

// leftovers picks high-scoring unused places near the day's stops for manual swaps.
func (s *planningSession) leftovers(stops []domain.ItineraryStop, limit int, radiusKm float64) []domain.Place {
	points := make([]domain.Coordinates, 0, len(stops))
	for _, st := range stops {
		if st.Place != nil {
			points = append(points, st.Place.Coordinates)
		}
	}
	center, ok := domain.Centroid(points)
	if !ok {
		center = s.home
	}

	out := []domain.Place{}
	for _, pl := range byScoreDesc(s.pool) {
		if len(out) >= limit {
			break
		}
		if s.used.Has(pl.ID) {
			continue
		}
		if radiusKm > 0 && center.DistanceKm(pl.Coordinates) > radiusKm {
			continue
		}
		out = append(out, pl)
	}
	return out
}
