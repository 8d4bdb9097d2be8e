package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Gabrielssrs/Robotech-sub000/models"
	"github.com/Gabrielssrs/Robotech-sub000/repositories"
)

// In-memory repository fakes. They mirror the postgres implementations'
// contracts (copies out, guarded writes, CAS semantics) so the services
// can be exercised without a database.

type passthroughTxRunner struct{}

func (passthroughTxRunner) RunTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type memMatchRepo struct {
	mu      sync.Mutex
	nextID  int
	matches map[int]*models.Match
}

func newMemMatchRepo() *memMatchRepo {
	return &memMatchRepo{nextID: 1, matches: make(map[int]*models.Match)}
}

func cloneMatch(m *models.Match) *models.Match {
	c := *m
	return &c
}

func (r *memMatchRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, matches []*models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range matches {
		m.ID = r.nextID
		r.nextID++
		r.matches[m.ID] = cloneMatch(m)
	}
	return nil
}

func (r *memMatchRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return cloneMatch(m), nil
}

func (r *memMatchRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Match, 0)
	for _, m := range r.matches {
		if m.TournamentID == tournamentID {
			out = append(out, cloneMatch(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BracketPos < out[j].BracketPos })
	return out, nil
}

func (r *memMatchRepo) GetByTournamentAndPos(ctx context.Context, exec repositories.SQLExecutor, tournamentID, pos int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.matches {
		if m.TournamentID == tournamentID && m.BracketPos == pos {
			return cloneMatch(m), nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *memMatchRepo) UpdateSchedule(ctx context.Context, exec repositories.SQLExecutor, id int, scheduledAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.ScheduledAt = scheduledAt
	return nil
}

func (r *memMatchRepo) SetSlot(ctx context.Context, exec repositories.SQLExecutor, id int, sideA bool, participantID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return false, repositories.ErrMatchNotFound
	}
	if sideA {
		if m.SlotA != nil {
			return false, nil
		}
		pid := participantID
		m.SlotA = &pid
	} else {
		if m.SlotB != nil {
			return false, nil
		}
		pid := participantID
		m.SlotB = &pid
	}
	return true, nil
}

func (r *memMatchRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.MatchStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Status = status
	return nil
}

func (r *memMatchRepo) CompareAndSwapStatus(ctx context.Context, exec repositories.SQLExecutor, id int, from, to models.MatchStatus, result *models.MatchResult) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return false, repositories.ErrMatchNotFound
	}
	if m.Status != from {
		return false, nil
	}
	m.Status = to
	if result != nil {
		scoreA, scoreB := result.ScoreA, result.ScoreB
		m.ScoreA = &scoreA
		m.ScoreB = &scoreB
		m.WinnerID = result.WinnerID
	}
	return true, nil
}

func (r *memMatchRepo) SetWinner(ctx context.Context, exec repositories.SQLExecutor, id int, winnerID *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.WinnerID = winnerID
	return nil
}

func (r *memMatchRepo) ClearResult(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.ScoreA = nil
	m.ScoreB = nil
	m.WinnerID = nil
	return nil
}

func (r *memMatchRepo) ListDueForStart(ctx context.Context, deadline time.Time) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Match, 0)
	for _, m := range r.matches {
		if m.Status == models.MatchStatusPending && m.SlotA != nil && m.SlotB != nil &&
			!m.ScheduledAt.After(deadline) {
			out = append(out, cloneMatch(m))
		}
	}
	return out, nil
}

type memScoreRepo struct {
	mu     sync.Mutex
	nextID int
	// keyed by match, then judge
	scores map[int]map[int]*models.ScoreSubmission
}

func newMemScoreRepo() *memScoreRepo {
	return &memScoreRepo{nextID: 1, scores: make(map[int]map[int]*models.ScoreSubmission)}
}

func (r *memScoreRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, s *models.ScoreSubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byJudge, ok := r.scores[s.MatchID]
	if !ok {
		byJudge = make(map[int]*models.ScoreSubmission)
		r.scores[s.MatchID] = byJudge
	}
	if existing, ok := byJudge[s.JudgeID]; ok {
		s.ID = existing.ID
	} else {
		s.ID = r.nextID
		r.nextID++
	}
	s.SubmittedAt = time.Now()
	clone := *s
	byJudge[s.JudgeID] = &clone
	return nil
}

func (r *memScoreRepo) ListByMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]*models.ScoreSubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.ScoreSubmission, 0)
	for _, s := range r.scores[matchID] {
		clone := *s
		out = append(out, &clone)
	}
	return out, nil
}

func (r *memScoreRepo) CountDistinctJudges(ctx context.Context, exec repositories.SQLExecutor, matchID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.scores[matchID]), nil
}

func (r *memScoreRepo) DeleteByMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.scores, matchID)
	return nil
}

type memTournamentRepo struct {
	mu          sync.Mutex
	nextID      int
	tournaments map[int]*models.Tournament
}

func newMemTournamentRepo() *memTournamentRepo {
	return &memTournamentRepo{nextID: 1, tournaments: make(map[int]*models.Tournament)}
}

func cloneTournament(t *models.Tournament) *models.Tournament {
	c := *t
	c.CategoryIDs = append([]int(nil), t.CategoryIDs...)
	c.JudgeIDs = append([]int(nil), t.JudgeIDs...)
	return &c
}

func (r *memTournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.tournaments {
		if existing.Name == t.Name && existing.Status != models.StatusCancelled {
			return repositories.ErrTournamentNameConflict
		}
	}
	t.ID = r.nextID
	r.nextID++
	t.CreatedAt = time.Now()
	r.tournaments[t.ID] = cloneTournament(t)
	return nil
}

func (r *memTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return cloneTournament(t), nil
}

func (r *memTournamentRepo) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Tournament, 0)
	for _, t := range r.tournaments {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, *cloneTournament(t))
	}
	return out, nil
}

func (r *memTournamentRepo) Update(ctx context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	r.tournaments[t.ID] = cloneTournament(t)
	return nil
}

func (r *memTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus, cancelReason *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	t.CancelReason = cancelReason
	return nil
}

func (r *memTournamentRepo) SetChampion(ctx context.Context, exec repositories.SQLExecutor, id int, participantID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	pid := participantID
	t.ChampionParticipantID = &pid
	return nil
}

func (r *memTournamentRepo) NameTaken(ctx context.Context, name string, excludeID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tournaments {
		if t.Name == name && t.ID != excludeID && t.Status != models.StatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (r *memTournamentRepo) ListUpcomingStartingBy(ctx context.Context, deadline time.Time) ([]*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Tournament, 0)
	for _, t := range r.tournaments {
		if t.Status != models.StatusUpcoming {
			continue
		}
		minute, err := parseTimeOfDay(t.StartTime)
		if err != nil {
			minute = 0
		}
		startsAt := truncateToDay(t.StartDate).Add(time.Duration(minute) * time.Minute)
		if !startsAt.After(deadline) {
			out = append(out, cloneTournament(t))
		}
	}
	return out, nil
}

type memParticipantRepo struct {
	mu           sync.Mutex
	nextID       int
	participants map[int]*models.Participant
}

func newMemParticipantRepo() *memParticipantRepo {
	return &memParticipantRepo{nextID: 1, participants: make(map[int]*models.Participant)}
}

func cloneParticipant(p *models.Participant) *models.Participant {
	c := *p
	return &c
}

func (r *memParticipantRepo) Create(ctx context.Context, p *models.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.participants {
		if existing.TournamentID == p.TournamentID && existing.RobotID == p.RobotID {
			return repositories.ErrParticipantConflict
		}
	}
	p.ID = r.nextID
	r.nextID++
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	r.participants[p.ID] = cloneParticipant(p)
	return nil
}

func (r *memParticipantRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return nil, repositories.ErrParticipantNotFound
	}
	return cloneParticipant(p), nil
}

func (r *memParticipantRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Participant, 0)
	for id := 1; id < r.nextID; id++ {
		p, ok := r.participants[id]
		if ok && p.TournamentID == tournamentID {
			out = append(out, cloneParticipant(p))
		}
	}
	return out, nil
}

func (r *memParticipantRepo) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, p := range r.participants {
		if p.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

func (r *memParticipantRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.participants[id]; !ok {
		return repositories.ErrParticipantNotFound
	}
	delete(r.participants, id)
	return nil
}

func (r *memParticipantRepo) UpdateSeed(ctx context.Context, exec repositories.SQLExecutor, id int, seed int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	s := seed
	p.Seed = &s
	return nil
}

func (r *memParticipantRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.ParticipantStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	p.Status = status
	return nil
}

func (r *memParticipantRepo) AddPoints(ctx context.Context, exec repositories.SQLExecutor, id int, points int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	p.Points += points
	return nil
}

func (r *memParticipantRepo) GetByTournamentAndRobot(ctx context.Context, tournamentID, robotID int) (*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if p.TournamentID == tournamentID && p.RobotID == robotID {
			return cloneParticipant(p), nil
		}
	}
	return nil, repositories.ErrParticipantNotFound
}

type memVenueRepo struct {
	mu     sync.Mutex
	nextID int
	venues map[int]*models.Venue
}

func newMemVenueRepo() *memVenueRepo {
	return &memVenueRepo{nextID: 1, venues: make(map[int]*models.Venue)}
}

func (r *memVenueRepo) Create(ctx context.Context, venue *models.Venue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	venue.ID = r.nextID
	r.nextID++
	clone := *venue
	r.venues[venue.ID] = &clone
	return nil
}

func (r *memVenueRepo) GetByID(ctx context.Context, id int) (*models.Venue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.venues[id]
	if !ok {
		return nil, repositories.ErrVenueNotFound
	}
	clone := *v
	return &clone, nil
}

func (r *memVenueRepo) List(ctx context.Context) ([]*models.Venue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Venue, 0, len(r.venues))
	for _, v := range r.venues {
		clone := *v
		out = append(out, &clone)
	}
	return out, nil
}

func (r *memVenueRepo) Update(ctx context.Context, venue *models.Venue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.venues[venue.ID]; !ok {
		return repositories.ErrVenueNotFound
	}
	clone := *venue
	r.venues[venue.ID] = &clone
	return nil
}

func (r *memVenueRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.venues[id]; !ok {
		return repositories.ErrVenueNotFound
	}
	delete(r.venues, id)
	return nil
}

type memCategoryRepo struct {
	mu         sync.Mutex
	nextID     int
	categories map[int]*models.Category
}

func newMemCategoryRepo() *memCategoryRepo {
	return &memCategoryRepo{nextID: 1, categories: make(map[int]*models.Category)}
}

func (r *memCategoryRepo) Create(ctx context.Context, category *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	category.ID = r.nextID
	r.nextID++
	clone := *category
	r.categories[category.ID] = &clone
	return nil
}

func (r *memCategoryRepo) GetByID(ctx context.Context, id int) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, repositories.ErrCategoryNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *memCategoryRepo) List(ctx context.Context) ([]*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Category, 0, len(r.categories))
	for _, c := range r.categories {
		clone := *c
		out = append(out, &clone)
	}
	return out, nil
}

func (r *memCategoryRepo) ListByIDs(ctx context.Context, ids []int) ([]*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Category, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.categories[id]; ok {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memCategoryRepo) Update(ctx context.Context, category *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[category.ID]; !ok {
		return repositories.ErrCategoryNotFound
	}
	clone := *category
	r.categories[category.ID] = &clone
	return nil
}

func (r *memCategoryRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return repositories.ErrCategoryNotFound
	}
	delete(r.categories, id)
	return nil
}

type memUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: make(map[int]*models.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	user.ID = r.nextID
	r.nextID++
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *memUserRepo) ListByIDs(ctx context.Context, ids []int) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			clone := *u
			out = append(out, &clone)
		}
	}
	return out, nil
}

type memRobotRepo struct {
	mu     sync.Mutex
	nextID int
	robots map[int]*models.Robot
}

func newMemRobotRepo() *memRobotRepo {
	return &memRobotRepo{nextID: 1, robots: make(map[int]*models.Robot)}
}

func (r *memRobotRepo) Create(ctx context.Context, robot *models.Robot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	robot.ID = r.nextID
	r.nextID++
	clone := *robot
	r.robots[robot.ID] = &clone
	return nil
}

func (r *memRobotRepo) GetByID(ctx context.Context, id int) (*models.Robot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	robot, ok := r.robots[id]
	if !ok {
		return nil, repositories.ErrRobotNotFound
	}
	clone := *robot
	return &clone, nil
}

func (r *memRobotRepo) ListByOwner(ctx context.Context, ownerID int) ([]*models.Robot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Robot, 0)
	for _, robot := range r.robots {
		if robot.OwnerID == ownerID {
			clone := *robot
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memRobotRepo) Update(ctx context.Context, robot *models.Robot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.robots[robot.ID]; !ok {
		return repositories.ErrRobotNotFound
	}
	clone := *robot
	r.robots[robot.ID] = &clone
	return nil
}

func (r *memRobotRepo) UpdatePhotoKey(ctx context.Context, id int, photoKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	robot, ok := r.robots[id]
	if !ok {
		return repositories.ErrRobotNotFound
	}
	robot.PhotoKey = photoKey
	return nil
}

func (r *memRobotRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.robots[id]; !ok {
		return repositories.ErrRobotNotFound
	}
	delete(r.robots, id)
	return nil
}
