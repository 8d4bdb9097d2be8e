package brackets

import (
	"math/rand"
	"sort"

	"github.com/Gabrielssrs/Robotech-sub000/models"
)

// SeedingPolicy decides the slot order participants are placed in. The
// builder treats it as an external policy, not a hidden rule.
type SeedingPolicy interface {
	Name() string
	Order(participants []*models.Participant) []*models.Participant
}

type registrationOrder struct{}

// RegistrationOrder seeds participants in the order they registered.
// This is the default policy.
func RegistrationOrder() SeedingPolicy {
	return registrationOrder{}
}

func (registrationOrder) Name() string { return "RegistrationOrder" }

func (registrationOrder) Order(participants []*models.Participant) []*models.Participant {
	ordered := make([]*models.Participant, len(participants))
	copy(ordered, participants)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})
	return ordered
}

type shuffleOrder struct {
	rnd *rand.Rand
}

// ShuffleOrder seeds participants randomly. Used as a fallback when
// registration timestamps cannot be trusted.
func ShuffleOrder(seed int64) SeedingPolicy {
	return &shuffleOrder{rnd: rand.New(rand.NewSource(seed))}
}

func (*shuffleOrder) Name() string { return "Shuffle" }

func (s *shuffleOrder) Order(participants []*models.Participant) []*models.Participant {
	ordered := make([]*models.Participant, len(participants))
	copy(ordered, participants)
	s.rnd.Shuffle(len(ordered), func(i, j int) {
		ordered[i], ordered[j] = ordered[j], ordered[i]
	})
	return ordered
}
