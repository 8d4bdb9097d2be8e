package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Gabrielssrs/Robotech-sub000/brackets"
	"github.com/Gabrielssrs/Robotech-sub000/models"
	"github.com/Gabrielssrs/Robotech-sub000/repositories"
)

// ScoringService collects independent judge scores per match and, once
// quorum is reached, reconciles them into a final result and advances
// the winner through the bracket.
type ScoringService interface {
	// SubmitScore upserts the calling judge's score for the match.
	// The submission that completes the quorum triggers finalization.
	SubmitScore(ctx context.Context, caller models.Principal, matchID int, scoreA, scoreB int) (*models.ScoreSubmission, error)
	// Readiness reports, for every judge in the tournament's pool,
	// whether they have a live submission for the match. Pure read,
	// safe to poll.
	Readiness(ctx context.Context, matchID int) ([]models.JudgeReadiness, error)
	// ResolveTie clears a tied match for replay. Admin only.
	ResolveTie(ctx context.Context, caller models.Principal, matchID int) error
	// ForceComplete walks every runnable match of the tournament and
	// completes it with a synthetic slot-A win, cascading winners to
	// the champion. Debug capability, admin only.
	ForceComplete(ctx context.Context, caller models.Principal, tournamentID int) error
}

type scoringService struct {
	matchRepo       repositories.MatchRepository
	scoreRepo       repositories.ScoreRepository
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	txRunner        repositories.TxRunner
	hub             *brackets.Hub
	quorum          int // 0 means all assigned judges
	logger          *slog.Logger

	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func NewScoringService(
	matchRepo repositories.MatchRepository,
	scoreRepo repositories.ScoreRepository,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	txRunner repositories.TxRunner,
	hub *brackets.Hub,
	quorum int,
	logger *slog.Logger,
) ScoringService {
	return &scoringService{
		matchRepo:       matchRepo,
		scoreRepo:       scoreRepo,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		txRunner:        txRunner,
		hub:             hub,
		quorum:          quorum,
		logger:          logger,
		locks:           make(map[int]*sync.Mutex),
	}
}

// matchLock serializes mutations of one match within this process. The
// database CAS on the match status stays the authoritative guard; the
// lock only keeps concurrent submissions from doing duplicate work.
func (s *scoringService) matchLock(matchID int) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[matchID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[matchID] = lock
	}
	return lock
}

func (s *scoringService) quorumFor(t *models.Tournament) int {
	if s.quorum > 0 && s.quorum <= len(t.JudgeIDs) {
		return s.quorum
	}
	return len(t.JudgeIDs)
}

func (s *scoringService) SubmitScore(ctx context.Context, caller models.Principal, matchID int, scoreA, scoreB int) (*models.ScoreSubmission, error) {
	if scoreA < models.MinScore || scoreA > models.MaxScore ||
		scoreB < models.MinScore || scoreB > models.MaxScore {
		return nil, ErrScoreOutOfRange
	}

	match, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		return nil, err
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, match.TournamentID)
	if err != nil {
		return nil, err
	}
	if !caller.IsJudge() || !tournament.HasJudge(caller.UserID) {
		return nil, ErrJudgeNotAssigned
	}

	lock := s.matchLock(matchID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock; a racing submission may have finalized
	// the match already.
	match, err = s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		return nil, err
	}
	if !match.Open() {
		return nil, ErrMatchNotOpen
	}
	if match.Status == models.MatchStatusInProgress {
		if _, err := s.matchRepo.CompareAndSwapStatus(ctx, nil, matchID,
			models.MatchStatusInProgress, models.MatchStatusAwaitingScores, nil); err != nil {
			return nil, err
		}
	}

	submission := &models.ScoreSubmission{
		MatchID: matchID,
		JudgeID: caller.UserID,
		ScoreA:  scoreA,
		ScoreB:  scoreB,
	}
	if err := s.scoreRepo.Upsert(ctx, nil, submission); err != nil {
		return nil, fmt.Errorf("failed to store score submission: %w", err)
	}

	ready, err := s.scoreRepo.CountDistinctJudges(ctx, nil, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}
	if ready >= s.quorumFor(tournament) {
		if err := s.finalizeMatch(ctx, tournament, matchID); err != nil {
			return nil, err
		}
	}
	return submission, nil
}

func (s *scoringService) Readiness(ctx context.Context, matchID int) ([]models.JudgeReadiness, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		return nil, err
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, match.TournamentID)
	if err != nil {
		return nil, err
	}
	submissions, err := s.scoreRepo.ListByMatch(ctx, nil, matchID)
	if err != nil {
		return nil, err
	}

	submitted := make(map[int]bool, len(submissions))
	for _, sub := range submissions {
		submitted[sub.JudgeID] = true
	}

	readiness := make([]models.JudgeReadiness, 0, len(tournament.JudgeIDs))
	for _, judgeID := range tournament.JudgeIDs {
		readiness = append(readiness, models.JudgeReadiness{
			JudgeID: judgeID,
			Ready:   submitted[judgeID],
		})
	}
	return readiness, nil
}

// finalizeMatch reconciles submissions into a final result. The match
// status acts as the compare-and-swap gate: the transition out of
// awaiting_scores happens exactly once even when the last two judges
// race, and the winner's advancement commits in the same transaction.
// Caller must hold the match lock.
func (s *scoringService) finalizeMatch(ctx context.Context, tournament *models.Tournament, matchID int) error {
	var events []brackets.Event

	err := s.txRunner.RunTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.matchRepo.GetByID(ctx, exec, matchID)
		if err != nil {
			return err
		}
		if match.Status != models.MatchStatusAwaitingScores {
			return nil // already finalized by a concurrent submission
		}

		submissions, err := s.scoreRepo.ListByMatch(ctx, exec, matchID)
		if err != nil {
			return err
		}
		if len(submissions) == 0 {
			return fmt.Errorf("match %d reached finalize with no submissions", matchID)
		}

		var sumA, sumB float64
		for _, sub := range submissions {
			sumA += float64(sub.ScoreA)
			sumB += float64(sub.ScoreB)
		}
		n := float64(len(submissions))
		result := &models.MatchResult{
			MatchID: matchID,
			ScoreA:  roundScore(sumA / n),
			ScoreB:  roundScore(sumB / n),
		}

		if result.ScoreA == result.ScoreB {
			// The engine cannot break a tie; an administrator orders a
			// replay via ResolveTie.
			result.Tie = true
			swapped, err := s.matchRepo.CompareAndSwapStatus(ctx, exec, matchID,
				models.MatchStatusAwaitingScores, models.MatchStatusTie, result)
			if err != nil {
				return err
			}
			if swapped {
				events = append(events, brackets.Event{
					Type:         brackets.EventMatchTied,
					TournamentID: tournament.ID,
					Payload:      result,
				})
			}
			return nil
		}

		winnerID := match.SlotA
		loserID := match.SlotB
		if result.ScoreB > result.ScoreA {
			winnerID, loserID = loserID, winnerID
		}
		if winnerID == nil {
			return fmt.Errorf("match %d has a score but no participant in the winning slot", matchID)
		}
		result.WinnerID = winnerID

		swapped, err := s.matchRepo.CompareAndSwapStatus(ctx, exec, matchID,
			models.MatchStatusAwaitingScores, models.MatchStatusCompleted, result)
		if err != nil {
			return err
		}
		if !swapped {
			return nil
		}

		if err := s.settleMatch(ctx, exec, tournament, match.BracketPos, *winnerID, loserID, &events); err != nil {
			return err
		}
		events = append(events, brackets.Event{
			Type:         brackets.EventMatchFinalized,
			TournamentID: tournament.ID,
			Payload:      result,
		})
		return nil
	})
	if err != nil {
		return err
	}

	for _, event := range events {
		s.hub.BroadcastEvent(event)
	}
	return nil
}

// settleMatch applies the consequences of a decided match: a point for
// the winner, elimination for the loser, and advancement of the winner
// into the next round (or the champion's crown at the final).
func (s *scoringService) settleMatch(
	ctx context.Context,
	exec repositories.SQLExecutor,
	tournament *models.Tournament,
	pos int,
	winnerID int,
	loserID *int,
	events *[]brackets.Event,
) error {
	if err := s.participantRepo.AddPoints(ctx, exec, winnerID, 1); err != nil {
		return fmt.Errorf("failed to award win point: %w", err)
	}
	if loserID != nil {
		if err := s.participantRepo.UpdateStatus(ctx, exec, *loserID, models.ParticipantEliminated); err != nil {
			return fmt.Errorf("failed to eliminate loser: %w", err)
		}
	}
	return s.advanceWinner(ctx, exec, tournament, pos, winnerID, events)
}

// advanceWinner writes the winner into the next round's slot; the
// slot's side is fixed by the parity of the match's position within its
// round. The guarded slot write makes repeated advancement a no-op. A
// bye waiting on the opposing side completes the next match on the
// spot, recursively.
func (s *scoringService) advanceWinner(
	ctx context.Context,
	exec repositories.SQLExecutor,
	tournament *models.Tournament,
	pos int,
	winnerID int,
	events *[]brackets.Event,
) error {
	next, sideA, ok := brackets.NextSlot(pos)
	if !ok {
		// The final. Crown the champion and finish the tournament.
		if err := crownChampion(ctx, exec, s.tournamentRepo, s.participantRepo, tournament.ID, winnerID); err != nil {
			return err
		}
		*events = append(*events, brackets.Event{
			Type:         brackets.EventTournamentFinished,
			TournamentID: tournament.ID,
			Payload:      map[string]int{"champion_participant_id": winnerID},
		})
		return nil
	}

	nextMatch, err := s.matchRepo.GetByTournamentAndPos(ctx, exec, tournament.ID, next)
	if err != nil {
		return fmt.Errorf("failed to load next match at position %d: %w", next, err)
	}

	wrote, err := s.matchRepo.SetSlot(ctx, exec, nextMatch.ID, sideA, winnerID)
	if err != nil {
		return fmt.Errorf("failed to advance winner into match %d: %w", nextMatch.ID, err)
	}
	if !wrote {
		return nil // already propagated
	}

	opposingBye := (sideA && nextMatch.ByeB) || (!sideA && nextMatch.ByeA)
	if !opposingBye {
		return nil
	}

	// Nobody on the other side: an automatic win, no scoring involved.
	swapped, err := s.matchRepo.CompareAndSwapStatus(ctx, exec, nextMatch.ID,
		models.MatchStatusPending, models.MatchStatusCompleted, nil)
	if err != nil {
		return err
	}
	if !swapped {
		return nil
	}
	if err := s.matchRepo.SetWinner(ctx, exec, nextMatch.ID, &winnerID); err != nil {
		return err
	}
	return s.advanceWinner(ctx, exec, tournament, next, winnerID, events)
}

func (s *scoringService) ResolveTie(ctx context.Context, caller models.Principal, matchID int) error {
	if !caller.IsAdmin() {
		return ErrForbiddenOperation
	}

	lock := s.matchLock(matchID)
	lock.Lock()
	defer lock.Unlock()

	var tournamentID int
	err := s.txRunner.RunTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.matchRepo.GetByID(ctx, exec, matchID)
		if err != nil {
			return err
		}
		if match.Status != models.MatchStatusTie {
			return ErrMatchNotTied
		}
		tournamentID = match.TournamentID

		if err := s.scoreRepo.DeleteByMatch(ctx, exec, matchID); err != nil {
			return fmt.Errorf("failed to discard tied submissions: %w", err)
		}
		if err := s.matchRepo.ClearResult(ctx, exec, matchID); err != nil {
			return err
		}
		return s.matchRepo.UpdateStatus(ctx, exec, matchID, models.MatchStatusInProgress)
	})
	if err != nil {
		return err
	}

	s.hub.BroadcastEvent(brackets.Event{
		Type:         brackets.EventMatchStarted,
		TournamentID: tournamentID,
		Payload:      map[string]int{"match_id": matchID},
	})
	return nil
}

func (s *scoringService) ForceComplete(ctx context.Context, caller models.Principal, tournamentID int) error {
	if !caller.IsAdmin() {
		return ErrForbiddenOperation
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return err
	}
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return ErrBracketNotSeeded
	}

	// One ascending pass: completing a match only fills slots at later
	// positions, so every cascade is picked up on the way.
	for pos := 0; pos < brackets.MatchCount; pos++ {
		if err := s.forceCompleteAt(ctx, tournament, pos); err != nil {
			return err
		}
	}
	return nil
}

func (s *scoringService) forceCompleteAt(ctx context.Context, tournament *models.Tournament, pos int) error {
	match, err := s.matchRepo.GetByTournamentAndPos(ctx, nil, tournament.ID, pos)
	if err != nil {
		return err
	}
	if match.Status == models.MatchStatusCompleted {
		return nil
	}
	if match.Status == models.MatchStatusTie {
		s.logger.Warn("force-complete skipping tied match",
			slog.Int("match_id", match.ID), slog.Int("bracket_pos", pos))
		return nil
	}
	if match.SlotA == nil || match.SlotB == nil {
		return nil // not runnable; an earlier match is still undecided
	}

	lock := s.matchLock(match.ID)
	lock.Lock()
	defer lock.Unlock()

	var events []brackets.Event
	err = s.txRunner.RunTx(ctx, func(exec repositories.SQLExecutor) error {
		current, err := s.matchRepo.GetByID(ctx, exec, match.ID)
		if err != nil {
			return err
		}
		if current.Status == models.MatchStatusCompleted || current.Status == models.MatchStatusTie {
			return nil
		}
		if current.Status != models.MatchStatusAwaitingScores {
			if err := s.matchRepo.UpdateStatus(ctx, exec, match.ID, models.MatchStatusAwaitingScores); err != nil {
				return err
			}
		}

		// Synthetic slot-A win; this path exists for integration
		// testing only and never touches real submissions.
		result := &models.MatchResult{
			MatchID:  match.ID,
			ScoreA:   float64(models.MaxScore),
			ScoreB:   0,
			WinnerID: current.SlotA,
		}
		swapped, err := s.matchRepo.CompareAndSwapStatus(ctx, exec, match.ID,
			models.MatchStatusAwaitingScores, models.MatchStatusCompleted, result)
		if err != nil {
			return err
		}
		if !swapped {
			return nil
		}
		return s.settleMatch(ctx, exec, tournament, pos, *current.SlotA, current.SlotB, &events)
	})
	if err != nil {
		return err
	}

	for _, event := range events {
		s.hub.BroadcastEvent(event)
	}
	return nil
}
