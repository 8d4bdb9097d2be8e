package brackets

import (
	"errors"
	"fmt"

	"github.com/Gabrielssrs/Robotech-sub000/models"
)

var (
	ErrNoParticipants       = errors.New("cannot build a bracket with zero participants")
	ErrTooManyParticipants  = fmt.Errorf("bracket capacity is %d participants", Size)
	ErrDuplicateParticipant = errors.New("participant seeded twice")
)

// BuildParams carries everything the builder needs. Policy decides the
// slot order; when nil, RegistrationOrder is used.
type BuildParams struct {
	TournamentID int
	Participants []*models.Participant
	Policy       SeedingPolicy
}

// Build seeds participants into a fresh 16-slot bracket and returns its
// 15 matches in bracket-position order. Unused slots become bye markers;
// matches decided by a bye are completed on the spot and their winner is
// cascaded into the following round, so a 1-participant bracket comes
// back with the final already decided.
//
// Seeds are written back onto the participants (slot index 0..15).
func Build(params BuildParams) ([]*models.Match, error) {
	n := len(params.Participants)
	if n == 0 {
		return nil, ErrNoParticipants
	}
	if n > Size {
		return nil, ErrTooManyParticipants
	}

	policy := params.Policy
	if policy == nil {
		policy = RegistrationOrder()
	}
	ordered := policy.Order(params.Participants)

	seen := make(map[int]bool, n)
	for slot, p := range ordered {
		if seen[p.ID] {
			return nil, fmt.Errorf("%w: participant %d", ErrDuplicateParticipant, p.ID)
		}
		seen[p.ID] = true
		s := slot
		p.Seed = &s
	}

	matches := make([]*models.Match, MatchCount)
	for pos := 0; pos < MatchCount; pos++ {
		matches[pos] = &models.Match{
			TournamentID: params.TournamentID,
			BracketPos:   pos,
			Status:       models.MatchStatusPending,
		}
	}

	for slot := 0; slot < Size; slot++ {
		m := matches[slot/2]
		var pid *int
		if slot < n {
			id := ordered[slot].ID
			pid = &id
		}
		if slot%2 == 0 {
			m.SlotA = pid
			m.ByeA = pid == nil
		} else {
			m.SlotB = pid
			m.ByeB = pid == nil
		}
	}

	// Resolve bye matches front to back. A match feeds a strictly later
	// position, so one ascending pass settles every cascade.
	for pos := 0; pos < MatchCount; pos++ {
		m := matches[pos]
		switch {
		case m.ByeA && m.ByeB:
			// Nobody to advance; the slot downstream is a bye too.
		case m.ByeA && m.SlotB != nil:
			m.WinnerID = m.SlotB
		case m.ByeB && m.SlotA != nil:
			m.WinnerID = m.SlotA
		default:
			// Either a real pairing, or a bye waiting on an earlier
			// match; the advancer settles the latter once the feeding
			// match completes.
			continue
		}
		m.Status = models.MatchStatusCompleted

		next, sideA, ok := NextSlot(pos)
		if !ok {
			continue
		}
		nm := matches[next]
		if sideA {
			nm.SlotA = m.WinnerID
			nm.ByeA = m.WinnerID == nil
		} else {
			nm.SlotB = m.WinnerID
			nm.ByeB = m.WinnerID == nil
		}
	}

	return matches, nil
}
