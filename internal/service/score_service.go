package service

import (
	"context"

	"study-buddy/internal/config"
	"study-buddy/internal/model"
	"study-buddy/internal/repository"
)

// ScoreService stores test scores and fills in letter grades.
type ScoreService struct {
	scores   *repository.ScoreRepository
	settings *config.Settings
}

// NewScoreService derives grades from settings' grade_scale; with nil
// settings grades are stored only when the caller provides them.
func NewScoreService(scores *repository.ScoreRepository, settings *config.Settings) *ScoreService {
	return &ScoreService{scores: scores, settings: settings}
}

// Add stores a score, grading it when input.Grade is empty.
func (s *ScoreService) Add(ctx context.Context, input model.TestScoreInput) (uint, error) {
	if input.Grade == "" && s.settings != nil {
		maxScore := input.MaxScore
		if maxScore == 0 {
			maxScore = model.DefaultMaxScore
		}
		// Out of range scores are left for the repository to reject.
		if maxScore > 0 && input.Score >= 0 && input.Score <= maxScore {
			input.Grade = s.settings.GradeScale().Grade(input.Score / maxScore * 100)
		}
	}
	return s.scores.Add(ctx, input)
}

func (s *ScoreService) List(ctx context.Context, order model.ScoreOrder) ([]model.TestScore, error) {
	return s.scores.List(ctx, order)
}

func (s *ScoreService) Delete(ctx context.Context, id uint) error {
	return s.scores.Delete(ctx, id)
}
