package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"BoltWatch.dashboard/internal/derive"
	"BoltWatch.dashboard/internal/models"
	"BoltWatch.dashboard/internal/repository"
)

var (
	// ErrUnknownFloor is returned for floors outside the configured set.
	ErrUnknownFloor = errors.New("unknown floor")
	// ErrSupersededRound is returned when a newer floor selection replaced
	// the round before its results could be applied.
	ErrSupersededRound = errors.New("fetch round superseded by a newer floor selection")
)

// DefaultSelection is the pager number selected before the user picks one.
const DefaultSelection = 1

// Options tune a DashboardService.
type Options struct {
	Floors          []int
	DefaultFloor    int
	RequestTimeout  time.Duration
	RefreshInterval time.Duration
}

// DashboardService owns the two fetched lists for the selected floor.
// Every floor selection starts a new fetch round; results of older rounds
// are dropped.
type DashboardService struct {
	repo repository.Repository
	opts Options
	log  zerolog.Logger
	now  func() time.Time

	mu         sync.RWMutex
	floor      int
	generation uint64
	cancel     context.CancelFunc
	readings   []models.Reading
	diffs      []models.DiffRecord
	numbers    []int
	bolt       models.FetchStatus
	diff       models.FetchStatus
}

// NewDashboardService creates a new DashboardService. Nothing is fetched
// until SelectFloor or Run is called.
func NewDashboardService(repo repository.Repository, opts Options, log zerolog.Logger) *DashboardService {
	if len(opts.Floors) == 0 {
		opts.Floors = []int{1}
	}
	if opts.DefaultFloor == 0 {
		opts.DefaultFloor = opts.Floors[0]
	}
	idle := models.FetchStatus{State: models.FetchIdle, Floor: opts.DefaultFloor}
	return &DashboardService{
		repo:     repo,
		opts:     opts,
		log:      log,
		now:      time.Now,
		floor:    opts.DefaultFloor,
		readings: []models.Reading{},
		diffs:    []models.DiffRecord{},
		numbers:  []int{},
		bolt:     idle,
		diff:     idle,
	}
}

// Floors returns the selectable floors.
func (s *DashboardService) Floors() []int {
	return append([]int(nil), s.opts.Floors...)
}

// ValidFloor reports whether floor can be selected.
func (s *DashboardService) ValidFloor(floor int) bool {
	for _, f := range s.opts.Floors {
		if f == floor {
			return true
		}
	}
	return false
}

// Floor returns the currently selected floor.
func (s *DashboardService) Floor() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.floor
}

// SelectFloor makes floor current and fetches its readings and diff records
// concurrently, waiting for both. A failed fetch keeps the list that was
// loaded before. The first fetch error is returned.
func (s *DashboardService) SelectFloor(ctx context.Context, floor int) error {
	if !s.ValidFloor(floor) {
		return fmt.Errorf("%w: %d", ErrUnknownFloor, floor)
	}

	roundCtx, gen, round := s.beginRound(ctx, floor)
	log := s.log.With().Int("floor", floor).Str("round", round).Logger()
	log.Info().Msg("fetch round started")

	var g errgroup.Group
	g.Go(func() error {
		readings, err := s.repo.FetchReadings(roundCtx, floor)
		return s.applyReadings(gen, readings, err, log)
	})
	g.Go(func() error {
		diffs, err := s.repo.FetchDiffs(roundCtx, floor)
		return s.applyDiffs(gen, diffs, err, log)
	})
	err := g.Wait()
	s.endRound(gen)
	return err
}

// Refresh fetches the current floor again.
func (s *DashboardService) Refresh(ctx context.Context) error {
	return s.SelectFloor(ctx, s.Floor())
}

// Run loads the default floor, then refreshes the selected floor every
// RefreshInterval until ctx is done. A zero interval loads once.
func (s *DashboardService) Run(ctx context.Context) {
	if err := s.SelectFloor(ctx, s.Floor()); err != nil && !errors.Is(err, ErrSupersededRound) {
		s.log.Warn().Err(err).Msg("initial load incomplete")
	}
	if s.opts.RefreshInterval <= 0 {
		return
	}

	ticker := time.NewTicker(s.opts.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			if s.cancel != nil {
				s.cancel()
			}
			s.mu.Unlock()
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil && !errors.Is(err, ErrSupersededRound) {
				s.log.Warn().Err(err).Msg("refresh incomplete")
			}
		}
	}
}

// View derives everything the page shows from the current lists.
func (s *DashboardService) View(selected int) models.DashboardView {
	s.mu.RLock()
	floor := s.floor
	readings := s.readings
	diffs := s.diffs
	numbers := s.numbers
	bolt, diff := s.bolt, s.diff
	s.mu.RUnlock()

	// The lists are replaced, never mutated, so reading them unlocked is safe.
	return models.DashboardView{
		Floor:    floor,
		Floors:   s.Floors(),
		Selected: selected,
		Series:   derive.SampleSeries(readings),
		Tables:   derive.MarkSelected(derive.PartitionTables(diffs), selected),
		Pager:    derive.PagerWindow(selected, numbers),
		Bolt:     bolt,
		Diff:     diff,
	}
}

// beginRound switches to floor, cancels the running round and returns the
// context, generation and id of the new one.
func (s *DashboardService) beginRound(parent context.Context, floor int) (context.Context, uint64, string) {
	// The round outlives the request that started it; only a newer round
	// or the timeout ends it.
	base := context.WithoutCancel(parent)
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if s.opts.RequestTimeout > 0 {
		ctx, cancel = context.WithTimeout(base, s.opts.RequestTimeout)
	} else {
		ctx, cancel = context.WithCancel(base)
	}
	round := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	s.cancel = cancel
	s.floor = floor
	fetching := models.FetchStatus{State: models.FetchFetching, Floor: floor, Round: round, UpdatedAt: s.now()}
	s.bolt = carryError(s.bolt, fetching)
	s.diff = carryError(s.diff, fetching)
	return ctx, s.generation, round
}

// endRound releases the round's context if it is still the current one.
func (s *DashboardService) endRound(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.generation && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *DashboardService) applyReadings(gen uint64, readings []models.Reading, fetchErr error, log zerolog.Logger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		log.Debug().Msg("discarding superseded bolt result")
		return ErrSupersededRound
	}
	if fetchErr != nil {
		log.Error().Err(fetchErr).Int("kept", len(s.readings)).Msg("bolt fetch failed, keeping previous readings")
		s.bolt = s.failed(s.bolt, fetchErr)
		return fetchErr
	}
	if readings == nil {
		readings = []models.Reading{}
	}
	s.readings = readings
	s.bolt = s.loaded(s.bolt)
	log.Info().Int("count", len(readings)).Msg("bolt readings loaded")
	return nil
}

func (s *DashboardService) applyDiffs(gen uint64, diffs []models.DiffRecord, fetchErr error, log zerolog.Logger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		log.Debug().Msg("discarding superseded diff result")
		return ErrSupersededRound
	}
	if fetchErr != nil {
		log.Error().Err(fetchErr).Int("kept", len(s.diffs)).Msg("diff fetch failed, keeping previous records")
		s.diff = s.failed(s.diff, fetchErr)
		return fetchErr
	}
	if diffs == nil {
		diffs = []models.DiffRecord{}
	}
	s.diffs = diffs
	s.numbers = derive.SequenceNumbers(diffs)
	s.diff = s.loaded(s.diff)
	log.Info().Int("count", len(diffs)).Msg("diff records loaded")
	return nil
}

func (s *DashboardService) loaded(st models.FetchStatus) models.FetchStatus {
	st.State = models.FetchLoaded
	st.Error = ""
	st.UpdatedAt = s.now()
	return st
}

func (s *DashboardService) failed(st models.FetchStatus, err error) models.FetchStatus {
	st.State = models.FetchFailed
	st.Error = err.Error()
	st.UpdatedAt = s.now()
	return st
}

// carryError moves to next but keeps the last error message visible while
// the new round is in flight.
func carryError(prev, next models.FetchStatus) models.FetchStatus {
	if prev.State == models.FetchFailed {
		next.Error = prev.Error
	}
	return next
}
