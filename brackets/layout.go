package brackets

// Fixed single-elimination layout: 16 participant slots, 15 matches.
// Positions 0-7 are the round of 16, 8-11 the quarterfinals, 12-13 the
// semifinals and 14 the final. Consumers depend on this numbering; it
// must never change once brackets exist in the database.
const (
	Size       = 16
	MatchCount = Size - 1
	RoundCount = 4
	FinalPos   = 14
)

var roundStarts = [RoundCount]int{0, 8, 12, 14}

// Round returns the round (0..3) a bracket position belongs to.
func Round(pos int) int {
	for r := RoundCount - 1; r >= 0; r-- {
		if pos >= roundStarts[r] {
			return r
		}
	}
	return 0
}

// RoundStart returns the first bracket position of a round.
func RoundStart(round int) int {
	return roundStarts[round]
}

// MatchesInRound returns how many matches a round holds (8, 4, 2, 1).
func MatchesInRound(round int) int {
	return 8 >> uint(round)
}

// NextSlot maps a completed match position to the position of the match
// its winner feeds, and reports whether the winner lands in slot A.
// The final has no successor; ok is false there.
func NextSlot(pos int) (next int, sideA bool, ok bool) {
	if pos == FinalPos {
		return 0, false, false
	}
	r := Round(pos)
	idx := pos - roundStarts[r]
	return roundStarts[r+1] + idx/2, idx%2 == 0, true
}

// ValidPos reports whether pos is a legal bracket position.
func ValidPos(pos int) bool {
	return pos >= 0 && pos < MatchCount
}
