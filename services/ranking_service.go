package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lifeTrackAPI/internal/dates"
	"lifeTrackAPI/internal/docstore"
	"lifeTrackAPI/internal/ranking"
	"lifeTrackAPI/internal/stats"
)

var (
	ErrWorkoutChallengeNotFound = errors.New("workout challenge not found")
	ErrAlreadyJoined            = errors.New("already joined this challenge")
	ErrNotParticipant           = errors.New("user is not a participant of this challenge")
)

// participantDoc is the stored shape: the public participant row plus the
// raw workout log its streak is derived from.
type participantDoc struct {
	ranking.Participant
	Workouts []ranking.Workout `json:"workouts"`
}

// RankingService manages multi-user workout challenges: participants,
// workout recording and the leaderboard.
type RankingService struct {
	store        docstore.Store
	statsService *StatsService
	guard        *entityGuard
	now          func() time.Time
}

func NewRankingService(store docstore.Store, statsService *StatsService) *RankingService {
	return &RankingService{
		store:        store,
		statsService: statsService,
		guard:        newEntityGuard(),
		now:          time.Now,
	}
}

type CreateWorkoutChallengeRequest struct {
	Name      string `json:"name"`
	Modality  string `json:"modality,omitempty"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (s *RankingService) CreateChallenge(ctx context.Context, userID string, req *CreateWorkoutChallengeRequest) (*ranking.Challenge, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("challenge name is required")
	}
	if _, err := dates.ParseDay(req.StartDate); err != nil {
		return nil, fmt.Errorf("invalid start date: %w", err)
	}
	if _, err := dates.ParseDay(req.EndDate); err != nil {
		return nil, fmt.Errorf("invalid end date: %w", err)
	}
	if req.EndDate < req.StartDate {
		return nil, fmt.Errorf("end date before start date")
	}

	c := &ranking.Challenge{
		ID:        uuid.New(),
		Name:      req.Name,
		Modality:  req.Modality,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		CreatedBy: userID,
		CreatedAt: s.now(),
	}
	if err := s.store.Put(ctx, docstore.CollectionWorkoutChallenges, c.ID.String(), c); err != nil {
		return nil, fmt.Errorf("failed to create workout challenge: %w", err)
	}
	return c, nil
}

func (s *RankingService) GetChallenge(ctx context.Context, id uuid.UUID) (*ranking.Challenge, error) {
	c := &ranking.Challenge{}
	err := s.store.Get(ctx, docstore.CollectionWorkoutChallenges, id.String(), c)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrWorkoutChallengeNotFound
		}
		return nil, fmt.Errorf("failed to get workout challenge: %w", err)
	}
	return c, nil
}

// Join adds the user as a participant with zeroed counters.
func (s *RankingService) Join(ctx context.Context, challengeID uuid.UUID, userID, displayName string) (*ranking.Participant, error) {
	if _, err := s.GetChallenge(ctx, challengeID); err != nil {
		return nil, err
	}

	key := participantKey(challengeID, userID)
	existing := &participantDoc{}
	err := s.store.Get(ctx, docstore.CollectionParticipants, key, existing)
	if err == nil {
		return nil, ErrAlreadyJoined
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return nil, fmt.Errorf("failed to check participant: %w", err)
	}

	doc := &participantDoc{
		Participant: ranking.Participant{
			ChallengeID: challengeID,
			UserID:      userID,
			DisplayName: displayName,
		},
		Workouts: []ranking.Workout{},
	}
	if err := s.store.Put(ctx, docstore.CollectionParticipants, key, doc); err != nil {
		return nil, fmt.Errorf("failed to join challenge: %w", err)
	}
	return &doc.Participant, nil
}

// RecordWorkout logs a workout day for the participant and recomputes their
// bounded streak. Serialized per participant; the workouts counter feeds the
// workout badges.
func (s *RankingService) RecordWorkout(ctx context.Context, challengeID uuid.UUID, userID, date, modality string) (*ranking.Participant, error) {
	if _, err := dates.ParseDay(date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	c, err := s.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	key := participantKey(challengeID, userID)
	if !s.guard.acquire(key) {
		return nil, ErrOperationInFlight
	}
	defer s.guard.release(key)

	doc := &participantDoc{}
	if err := s.store.Get(ctx, docstore.CollectionParticipants, key, doc); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrNotParticipant
		}
		return nil, fmt.Errorf("failed to load participant: %w", err)
	}

	now := s.now()
	doc.Workouts = append(doc.Workouts, ranking.Workout{Date: date, Modality: modality})
	doc.TotalWorkouts++
	if doc.LastWorkout == nil || *doc.LastWorkout < date {
		d := date
		doc.LastWorkout = &d
	}
	doc.CurrentStreak = ranking.ParticipantStreak(doc.Workouts, c.StartDate, c.EndDate, now, c.Modality)

	if err := s.store.Put(ctx, docstore.CollectionParticipants, key, doc); err != nil {
		return nil, fmt.Errorf("failed to save participant: %w", err)
	}

	if _, _, err := s.statsService.Apply(ctx, userID, func(st *stats.UserStats) {
		st.WorkoutsCompleted++
	}); err != nil {
		return nil, err
	}

	return &doc.Participant, nil
}

// Leaderboard returns every participant ranked by streak then volume, along
// with the requesting user's own row.
func (s *RankingService) Leaderboard(ctx context.Context, challengeID uuid.UUID, userID string) (*ranking.Leaderboard, error) {
	if _, err := s.GetChallenge(ctx, challengeID); err != nil {
		return nil, err
	}

	var docs []*participantDoc
	if err := s.store.Query(ctx, docstore.CollectionParticipants, "challenge_id", challengeID.String(), &docs); err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}

	participants := make([]*ranking.Participant, 0, len(docs))
	for _, d := range docs {
		participants = append(participants, &d.Participant)
	}
	ranked := ranking.Rank(participants)

	var position *ranking.Participant
	for _, p := range ranked {
		if p.UserID == userID {
			position = p
			break
		}
	}

	return &ranking.Leaderboard{
		Entries:      ranked,
		UserPosition: position,
		TotalUsers:   len(ranked),
	}, nil
}

func participantKey(challengeID uuid.UUID, userID string) string {
	return challengeID.String() + ":" + userID
}
