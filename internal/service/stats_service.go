package service

import (
	"context"
	"log"
	"time"

	"nottebuia/internal/model"
	"nottebuia/internal/repository"
)

// StatsRecorder attributes a finished round to the players' external
// accounts. Implementations are expected to be best-effort: a lost counter
// must never fail the round transition.
type StatsRecorder interface {
	RecordRound(players []model.Player, winningSide string)
}

// StatsService is the production StatsRecorder, writing counters through
// the Mongo-backed stats repository in the background.
type StatsService struct {
	repo    repository.StatsRepo
	timeout time.Duration
}

// NewStatsService creates a stats service.
func NewStatsService(repo repository.StatsRepo) *StatsService {
	return &StatsService{repo: repo, timeout: 10 * time.Second}
}

// RecordRound increments games/wins/losses and the per-role counter for
// every player with an external account reference. Guests have no account
// to attribute to and are skipped. The writes run detached from the
// request so that ending a round never waits on the stats backend.
func (s *StatsService) RecordRound(players []model.Player, winningSide string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		for i := range players {
			p := players[i]
			if p.AccountRef == "" {
				continue
			}
			if err := s.repo.IncrementRound(ctx, p.AccountRef, p.Role, p.Won(winningSide)); err != nil {
				log.Printf("stats: failed to record round for account %s: %v", p.AccountRef, err)
			}
		}
	}()
}
