package services

import (
	"context"
	"errors"
	"fmt"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/fatigue"
	"itinerary-service/internal/platform/obs"
	"itinerary-service/internal/ports"
	"sync"
	"time"

	"go.uber.org/zap"
)

var errEmptyUserID = errors.New("user id is empty")

type FatigueSample struct {
	Profile *domain.Profile
	Sensors domain.SensorWindow
	Context domain.ContextWindow
	Source  string
}

// FatigueReading is the state after a sample plus how it was derived.
type FatigueReading struct {
	State     domain.FatigueState
	Estimate  fatigue.Estimate
	Modifiers fatigue.Modifiers
}

// FatigueTracker persists per-user fatigue state around the pure engine.
// Read-modify-write cycles are serialized within the process.
type FatigueTracker struct {
	Store   ports.StateStore
	Engine  fatigue.Engine
	Logger  *zap.Logger
	Metrics *obs.Metrics
	Now     func() time.Time

	mu sync.Mutex
}

func NewFatigueTracker(store ports.StateStore, engine fatigue.Engine, logger *zap.Logger) *FatigueTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FatigueTracker{
		Store:  store,
		Engine: engine,
		Logger: logger,
		Now:    time.Now,
	}
}

func fatigueKey(userID string) string { return "fatigue:" + userID }

func (t *FatigueTracker) load(ctx context.Context, userID string) (domain.FatigueState, bool, error) {
	if userID == "" {
		return domain.FatigueState{}, false, errEmptyUserID
	}
	var st domain.FatigueState
	found, err := t.Store.Get(ctx, fatigueKey(userID), &st)
	if err != nil {
		return domain.FatigueState{}, false, fmt.Errorf("load fatigue state: %w", err)
	}
	return st, found, nil
}

// Get returns the stored state, or domain.ErrNotFound.
func (t *FatigueTracker) Get(ctx context.Context, userID string) (domain.FatigueState, error) {
	st, found, err := t.load(ctx, userID)
	if err != nil {
		return domain.FatigueState{}, err
	}
	if !found {
		return domain.FatigueState{}, fmt.Errorf("fatigue %s: %w", userID, domain.ErrNotFound)
	}
	return st, nil
}

// RecordSample estimates energy for one sensor window, applies contextual
// modifiers and folds the result into the user's state. A user without state
// starts from zero.
func (t *FatigueTracker) RecordSample(ctx context.Context, userID string, s FatigueSample) (_ FatigueReading, err error) {
	defer obs.Time(ctx, t.Logger, "fatigue.RecordSample")(&err)

	t.mu.Lock()
	defer t.mu.Unlock()

	prev, _, err := t.load(ctx, userID)
	if err != nil {
		return FatigueReading{}, err
	}

	if s.Context.At.IsZero() {
		s.Context.At = t.Now()
	}

	est := t.Engine.EstimateEnergy(s.Profile, s.Sensors, s.Context)
	adjusted, mods := fatigue.ApplyModifiers(est.Kcal, s.Sensors, s.Context)
	next := t.Engine.Update(prev, s.Profile, s.Sensors, s.Context, adjusted, s.Source)

	if err := t.Store.Put(ctx, fatigueKey(userID), next); err != nil {
		return FatigueReading{}, fmt.Errorf("save fatigue state: %w", err)
	}

	if t.Metrics != nil {
		t.Metrics.FatigueUpdates.WithLabelValues(string(est.Tier)).Inc()
	}
	t.Logger.Debug("fatigue updated",
		zap.String("user_id", userID),
		zap.String("tier", string(est.Tier)),
		zap.Float64("kcal", adjusted),
		zap.Float64("score", next.Score),
	)

	return FatigueReading{State: next, Estimate: est, Modifiers: mods}, nil
}

// RecordRest applies passive recovery to an existing state.
func (t *FatigueTracker) RecordRest(
	ctx context.Context,
	userID string,
	rest time.Duration,
	venue domain.RestVenue,
) (domain.FatigueState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, found, err := t.load(ctx, userID)
	if err != nil {
		return domain.FatigueState{}, err
	}
	if !found {
		return domain.FatigueState{}, fmt.Errorf("fatigue %s: %w", userID, domain.ErrNotFound)
	}

	now := t.Now()
	score := fatigue.RestRecovery(st.Score, rest, venue)
	rec := domain.TraceRecord{
		At:       now,
		RawDelta: score - st.Score,
		Score:    score,
		Source:   "rest:" + string(venue),
	}

	limit := t.Engine.Config().TraceLimit
	trace := append([]domain.TraceRecord{rec}, st.Trace...)
	if len(trace) > limit {
		trace = trace[:limit]
	}

	st.Score = score
	st.LastUpdate = now
	st.Trace = trace
	st.Source = rec.Source

	if err := t.Store.Put(ctx, fatigueKey(userID), st); err != nil {
		return domain.FatigueState{}, fmt.Errorf("save fatigue state: %w", err)
	}
	return st, nil
}

// Reset discards the user's state. It is the only way the score returns to zero.
func (t *FatigueTracker) Reset(ctx context.Context, userID string) error {
	if userID == "" {
		return errEmptyUserID
	}
	if err := t.Store.Delete(ctx, fatigueKey(userID)); err != nil {
		return fmt.Errorf("reset fatigue state: %w", err)
	}
	return nil
}
