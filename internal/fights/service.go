// Package fights runs fights on behalf of clients: it resolves requests,
// simulates them, archives the result and narrates it to the event log.
package fights

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"newomega/server/internal/combat"
	"newomega/server/internal/journal"
	"newomega/server/internal/replay"
	"newomega/server/internal/rng"
	"newomega/server/internal/stats"
	"newomega/server/internal/store"
	"newomega/server/internal/telemetry"
	"newomega/server/logging"
	"newomega/server/logging/lifecycle"
	"newomega/server/logging/simulation"
)

//go:generate go tool mockgen -destination=./mocks/store_mock.go -package=mocks . Store

// Store archives fight results.
type Store interface {
	Save(ctx context.Context, result combat.Result, checksum string) (store.Record, error)
	Get(ctx context.Context, id uuid.UUID) (store.Record, error)
	List(ctx context.Context, limit int) ([]store.Header, error)
}

const (
	metricFights             = "fights_total"
	metricVerified           = "fights_verified_total"
	metricVerificationFailed = "fights_verification_failed_total"
	metricBudgetOverruns     = "simulation_budget_overruns_total"
)

const defaultSeedRoot = "newomega"

// Config wires a Service.
type Config struct {
	Publisher logging.Publisher
	Logger    telemetry.Logger
	Metrics   telemetry.Metrics
	// MaxRounds applies to requests that do not set their own cap.
	MaxRounds int
	// Budget is the wall-clock time a single simulation may take before an
	// overrun is reported. Zero disables the check.
	Budget time.Duration
	// SeedRoot salts seeds derived for requests that arrive without one.
	SeedRoot string
	// ListLimit caps List when the caller passes no limit.
	ListLimit int
	// VerifyWorkers bounds parallel re-simulations in VerifyRecent.
	VerifyWorkers int
}

// Service runs and archives fights.
type Service struct {
	store     Store
	publisher logging.Publisher
	logger    telemetry.Logger
	metrics   telemetry.Metrics
	cfg       Config
	now       func() time.Time
}

// NewService constructs a Service backed by st.
func NewService(st Store, cfg Config) *Service {
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.LoggerFunc(func(string, ...any) {})
	}
	if cfg.SeedRoot == "" {
		cfg.SeedRoot = defaultSeedRoot
	}
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = 50
	}
	if cfg.VerifyWorkers <= 0 {
		cfg.VerifyWorkers = 4
	}
	return &Service{
		store:     st,
		publisher: publisher,
		logger:    logger,
		metrics:   cfg.Metrics,
		cfg:       cfg,
		now:       time.Now,
	}
}

// SeedFor returns the seed a request will be simulated with.
func (s *Service) SeedFor(req Request, in combat.Input) uint64 {
	if req.Seed != nil {
		return *req.Seed
	}
	label, err := json.Marshal(in)
	if err != nil {
		label = []byte(fmt.Sprint(in))
	}
	return rng.DeterministicSeedValue(s.cfg.SeedRoot, string(label))
}

// Simulate resolves and runs req without archiving it.
func (s *Service) Simulate(req Request) (combat.Result, error) {
	in, err := req.Input()
	if err != nil {
		return combat.Result{}, fmt.Errorf("fights: %w", err)
	}
	maxRounds := req.MaxRounds
	if maxRounds == 0 {
		maxRounds = s.cfg.MaxRounds
	}
	result, err := combat.Simulate(s.SeedFor(req, in), in, combat.WithMaxRounds(maxRounds))
	if err != nil {
		return combat.Result{}, fmt.Errorf("fights: %w", err)
	}
	return result, nil
}

// Run simulates req, archives the result and publishes its events.
func (s *Service) Run(ctx context.Context, req Request) (store.Record, error) {
	started := s.now()
	result, err := s.Simulate(req)
	if err != nil {
		return store.Record{}, err
	}
	elapsed := s.now().Sub(started)

	checksum, err := replay.Checksum(result)
	if err != nil {
		return store.Record{}, fmt.Errorf("fights: %w", err)
	}
	record, err := s.store.Save(ctx, result, checksum)
	if err != nil {
		return store.Record{}, fmt.Errorf("fights: archive: %w", err)
	}

	pub := logging.WithFight(s.publisher, record.ID.String())
	narrate(ctx, pub, result)
	lifecycle.FightArchived(ctx, pub, logging.FightRef(record.ID.String()), lifecycle.FightArchivedPayload{
		Checksum: checksum,
		Outcome:  string(result.Outcome),
		Rounds:   result.Rounds,
	}, nil)
	s.checkBudget(ctx, pub, result, elapsed)
	s.add(metricFights, 1)
	return record, nil
}

func (s *Service) checkBudget(ctx context.Context, pub logging.Publisher, result combat.Result, elapsed time.Duration) {
	budget := s.cfg.Budget
	if budget <= 0 || elapsed <= budget {
		return
	}
	simulation.BudgetOverrun(ctx, pub, result.Rounds, simulation.BudgetOverrunPayload{
		DurationMillis: elapsed.Milliseconds(),
		BudgetMillis:   budget.Milliseconds(),
		Ratio:          float64(elapsed) / float64(budget),
		Rounds:         result.Rounds,
	}, nil)
	s.add(metricBudgetOverruns, 1)
	s.logger.Printf("fight simulation took %s (budget %s)", elapsed, budget)
}

// Get loads an archived fight.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (store.Record, error) {
	return s.store.Get(ctx, id)
}

// List returns archived fights, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]store.Header, error) {
	if limit <= 0 || limit > s.cfg.ListLimit {
		limit = s.cfg.ListLimit
	}
	return s.store.List(ctx, limit)
}

// Frames rebuilds the keyframes of an archived fight starting at round from.
func (s *Service) Frames(ctx context.Context, id uuid.UUID, from int) ([]journal.Keyframe, error) {
	record, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	j := journal.New(0)
	journal.Replay(j, record.Result)
	return j.Since(from - 1), nil
}

// Summary condenses an archived fight.
func (s *Service) Summary(ctx context.Context, id uuid.UUID) (stats.Summary, error) {
	record, err := s.store.Get(ctx, id)
	if err != nil {
		return stats.Summary{}, err
	}
	return stats.Summarize(record.Result), nil
}

// Verification reports whether an archived fight still replays to the same
// result.
type Verification struct {
	ID         uuid.UUID `json:"id"`
	Checksum   string    `json:"checksum"`
	Recomputed string    `json:"recomputed"`
	OK         bool      `json:"ok"`
	Reason     string    `json:"reason,omitempty"`
}

// Verify re-simulates the fight stored under id.
func (s *Service) Verify(ctx context.Context, id uuid.UUID) (Verification, error) {
	record, err := s.store.Get(ctx, id)
	if err != nil {
		return Verification{}, err
	}
	recomputed, err := replay.Checksum(record.Result)
	if err != nil {
		return Verification{}, fmt.Errorf("fights: %w", err)
	}
	return s.judge(ctx, record, recomputed, replay.Verify(record.Result)), nil
}

// VerifyRecent re-simulates the newest archived fights, at most
// VerifyWorkers at a time.
func (s *Service) VerifyRecent(ctx context.Context, limit int) ([]Verification, error) {
	headers, err := s.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	records := make([]store.Record, 0, len(headers))
	results := make([]combat.Result, 0, len(headers))
	for _, header := range headers {
		record, err := s.store.Get(ctx, header.ID)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
		results = append(results, record.Result)
	}

	reports, err := replay.VerifyAll(ctx, results, s.cfg.VerifyWorkers)
	if err != nil {
		return nil, fmt.Errorf("fights: %w", err)
	}
	verifications := make([]Verification, len(reports))
	for i, report := range reports {
		verifications[i] = s.judge(ctx, records[i], report.Checksum, report.Err)
	}
	return verifications, nil
}

func (s *Service) judge(ctx context.Context, record store.Record, recomputed string, replayErr error) Verification {
	report := Verification{ID: record.ID, Checksum: record.Checksum, Recomputed: recomputed, OK: true}
	switch {
	case recomputed != record.Checksum:
		report.OK = false
		report.Reason = "stored checksum does not match stored result"
	case replayErr != nil:
		report.OK = false
		report.Reason = replayErr.Error()
	}

	if report.OK {
		s.add(metricVerified, 1)
		return report
	}
	s.add(metricVerificationFailed, 1)
	fightID := record.ID.String()
	lifecycle.VerificationFailed(ctx, logging.WithFight(s.publisher, fightID), logging.FightRef(fightID), lifecycle.VerificationFailedPayload{
		Expected: record.Checksum,
		Actual:   recomputed,
		Reason:   report.Reason,
	}, nil)
	return report
}

func (s *Service) add(key string, delta uint64) {
	if s.metrics == nil {
		return
	}
	s.metrics.Add(key, delta)
}
