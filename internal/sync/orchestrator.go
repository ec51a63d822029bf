package sync

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	stdsync "sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/google/uuid"

	"github.com/Benji12358/LOL-dashboard/internal/config"
	"github.com/Benji12358/LOL-dashboard/internal/curator"
	"github.com/Benji12358/LOL-dashboard/internal/db"
	"github.com/Benji12358/LOL-dashboard/internal/progress"
	"github.com/Benji12358/LOL-dashboard/internal/riot"
)

// State is the orchestrator's position in the sync lifecycle.
type State int

const (
	StateIdle State = iota
	StateResolvingSummoner
	StateDiscovering
	StateFiltering
	StateIngesting
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateResolvingSummoner:
		return "ResolvingSummoner"
	case StateDiscovering:
		return "Discovering"
	case StateFiltering:
		return "Filtering"
	case StateIngesting:
		return "Ingesting"
	case StateCompleted:
		return "Completed"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// API is the external game-statistics API surface the orchestrator uses.
type API interface {
	AccountByRiotID(ctx context.Context, gameName, tagLine string) (*riot.Account, error)
	MatchIDs(ctx context.Context, puuid string, start, count int) ([]string, error)
	Match(ctx context.Context, matchID string) (*riot.MatchPayload, error)
	LeagueEntries(ctx context.Context, puuid string) ([]riot.LeagueEntry, error)
}

// Store is the persisted-store surface the orchestrator uses.
type Store interface {
	FetchSummoner(ctx context.Context) (*db.Summoner, error)
	InsertSummoner(ctx context.Context, sm db.Summoner) error
	UpdateSummonerRank(ctx context.Context, puuid, rank string) error
	StoredGameIDs(ctx context.Context, puuid string) (map[string]struct{}, error)
	InsertMatch(ctx context.Context, participants []curator.ParticipantRecord, teams []curator.TeamRecord) error
}

// Normalizer turns one raw payload into flat records.
type Normalizer interface {
	CurateMatch(ctx context.Context, matchID string, payload *riot.MatchPayload, tracked curator.TrackedSummoner) ([]curator.ParticipantRecord, []curator.TeamRecord, error)
	ResolveRank(ctx context.Context, puuid string) (string, error)
}

// Orchestrator drives one full sync: resolve summoner, discover, filter,
// then ingest sequentially while reporting progress. One in-flight external
// call at a time; the client's throttle is the only pacing.
type Orchestrator struct {
	api      API
	store    Store
	norm     Normalizer
	reporter progress.Reporter
	user     config.UserConfig
	logger   *slog.Logger

	refreshRank bool
	runID       string

	mu    stdsync.Mutex
	state State
	err   error
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRankRefresh re-resolves a stored summoner's rank via the API at the
// start of the run instead of trusting the stored value.
func WithRankRefresh() Option {
	return func(o *Orchestrator) {
		o.refreshRank = true
	}
}

func New(api API, store Store, norm Normalizer, reporter progress.Reporter, user config.UserConfig, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		api:      api,
		store:    store,
		norm:     norm,
		reporter: reporter,
		user:     user,
		logger:   logger,
		runID:    uuid.NewString(),
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State reports the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Err returns the error that moved the run to StateFailed, if any.
func (o *Orchestrator) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
	o.logger.Info("sync state", "run_id", o.runID, "state", s.String())
}

func (o *Orchestrator) fail(err error) error {
	o.mu.Lock()
	o.state = StateFailed
	o.err = err
	o.mu.Unlock()
	o.logger.Error("sync failed", "run_id", o.runID, "error", err)
	return err
}

// Run executes the full sync lifecycle. It returns the error retained in
// StateFailed, or nil from StateCompleted.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.setState(StateResolvingSummoner)
	summoner, err := o.resolveSummoner(ctx)
	if err != nil {
		return o.fail(err)
	}

	o.setState(StateDiscovering)
	discovered, err := Discover(ctx, o.api, summoner.PUUID)
	if err != nil {
		return o.fail(fmt.Errorf("discover match ids: %w", err))
	}
	o.logger.Info("discovered match history", "run_id", o.runID, "total", len(discovered))

	o.setState(StateFiltering)
	stored, err := o.store.StoredGameIDs(ctx, summoner.PUUID)
	if err != nil {
		return o.fail(err)
	}
	todo := FilterNew(discovered, stored)

	if len(todo) == 0 {
		o.logger.Info("no new matches to process", "run_id", o.runID)
		o.setState(StateCompleted)
		o.report(100, 0, "Database up to date")
		return nil
	}
	o.logger.Info("new matches to process", "run_id", o.runID, "count", len(todo), "eta_minutes", etaMinutes(len(todo)))

	o.setState(StateIngesting)
	if err := o.ingest(ctx, summoner, todo); err != nil {
		return o.fail(err)
	}

	o.setState(StateCompleted)
	o.report(100, 0, fmt.Sprintf("Sync complete: %d matches processed (run %s)", len(todo), o.runID))
	return nil
}

// resolveSummoner loads the tracked account, creating it on first run.
func (o *Orchestrator) resolveSummoner(ctx context.Context) (*db.Summoner, error) {
	summoner, err := o.store.FetchSummoner(ctx)
	if err != nil {
		return nil, err
	}

	if summoner == nil {
		account, err := o.api.AccountByRiotID(ctx, o.user.GameName, o.user.TagLine)
		if err != nil {
			return nil, fmt.Errorf("resolve account: %w", err)
		}
		rank, err := o.norm.ResolveRank(ctx, account.PUUID)
		if err != nil {
			return nil, fmt.Errorf("resolve summoner rank: %w", err)
		}
		summoner = &db.Summoner{
			Name:  o.user.GameName,
			Tag:   o.user.TagLine,
			PUUID: account.PUUID,
			Rank:  rank,
		}
		if err := o.store.InsertSummoner(ctx, *summoner); err != nil {
			return nil, err
		}
		o.logger.Info("stored new summoner", "run_id", o.runID, "name", summoner.Name, "rank", summoner.Rank)
		return summoner, nil
	}

	if o.refreshRank {
		entries, err := o.api.LeagueEntries(ctx, summoner.PUUID)
		if err != nil {
			return nil, fmt.Errorf("refresh summoner rank: %w", err)
		}
		rank := curator.RankFromEntries(entries)
		if err := o.store.UpdateSummonerRank(ctx, summoner.PUUID, rank); err != nil {
			return nil, err
		}
		o.logger.Info("refreshed summoner rank", "run_id", o.runID, "rank", rank)
		summoner.Rank = rank
	}

	return summoner, nil
}

// ingest processes matches one at a time: fetch, curate, persist, report.
// A malformed payload skips that match; store and exhausted-retry API
// failures end the run.
func (o *Orchestrator) ingest(ctx context.Context, summoner *db.Summoner, todo []string) error {
	tracked := curator.TrackedSummoner{PUUID: summoner.PUUID, Rank: summoner.Rank}
	total := len(todo)

	o.report(0, etaMinutes(total), fmt.Sprintf("%d new matches to process", total))

	// In-run guard against an id surfacing twice across discovery pages.
	visited := bloom.NewWithEstimates(500000, 0.001)

	for i, matchID := range todo {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if visited.TestString(matchID) {
			o.logger.Warn("match already handled this run, skipping", "run_id", o.runID, "match_id", matchID)
			o.reportStep(i+1, total)
			continue
		}
		visited.AddString(matchID)

		payload, err := o.api.Match(ctx, matchID)
		if err != nil {
			return fmt.Errorf("fetch match %s: %w", matchID, err)
		}

		participants, teams, err := o.norm.CurateMatch(ctx, matchID, payload, tracked)
		if err != nil {
			o.logger.Warn("skipping malformed match", "run_id", o.runID, "match_id", matchID, "error", err)
			o.reportStep(i+1, total)
			continue
		}

		if err := o.store.InsertMatch(ctx, participants, teams); err != nil {
			return err
		}

		o.reportStep(i+1, total)
	}
	return nil
}

func (o *Orchestrator) reportStep(done, total int) {
	percent := math.Round(float64(done)/float64(total)*100*10) / 10
	o.report(percent, etaMinutes(total-done), "")
}

func (o *Orchestrator) report(percent, eta float64, message string) {
	snap := progress.Snapshot{Percent: percent, ETAMinutes: &eta, Message: message}
	if err := o.reporter.Report(snap); err != nil {
		o.logger.Warn("progress report failed", "run_id", o.runID, "error", err)
	}
}

// etaMinutes is the worst-case projection for the remaining matches: one
// match fetch plus up to nine rank lookups each, against a budget of 100
// calls per 2 minutes.
func etaMinutes(remaining int) float64 {
	return float64(10*remaining) / 100 * 2
}
