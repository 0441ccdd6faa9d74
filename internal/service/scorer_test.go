package service

import (
	"errors"
	"testing"

	"lingua_backend/internal/model"
	"lingua_backend/internal/util"
)

// snapshotWithQuestions 构造 n 道单选题的快照，每题选项ID为 qID*10+{1,2}，第一项正确
func snapshotWithQuestions(n, minPassing int) *model.QuizSnapshot {
	snap := &model.QuizSnapshot{QuizID: 1, MinPassingScore: minPassing}
	for i := 1; i <= n; i++ {
		id := uint(i)
		snap.Questions = append(snap.Questions, model.QuestionSnapshot{
			ID:         id,
			SelectMode: model.SelectModeSingle,
			Options: []model.OptionSnapshot{
				{ID: id*10 + 1, IsCorrect: true},
				{ID: id*10 + 2, IsCorrect: false},
			},
		})
	}
	return snap
}

// answers 前 correct 道题答对，其余答错
func answers(snap *model.QuizSnapshot, correct int) map[uint][]uint {
	sel := make(map[uint][]uint, len(snap.Questions))
	for i, q := range snap.Questions {
		if i < correct {
			sel[q.ID] = []uint{q.Options[0].ID}
		} else {
			sel[q.ID] = []uint{q.Options[1].ID}
		}
	}
	return sel
}

func TestScoreAttemptPassBoundary(t *testing.T) {
	snap := snapshotWithQuestions(4, 60)

	// 3/4 = 75 >= 60 及格
	result, err := ScoreAttempt(snap, answers(snap, 3))
	if err != nil {
		t.Fatalf("ScoreAttempt: %v", err)
	}
	if result.PercentCorrect != 75 || !result.Passed {
		t.Errorf("3 of 4 = %d passed=%v, want 75 passed=true", result.PercentCorrect, result.Passed)
	}
	if result.CorrectCount != 3 || result.TotalQuestions != 4 {
		t.Errorf("counts = %d/%d, want 3/4", result.CorrectCount, result.TotalQuestions)
	}

	// 2/4 = 50 < 60 不及格
	result, err = ScoreAttempt(snap, answers(snap, 2))
	if err != nil {
		t.Fatalf("ScoreAttempt: %v", err)
	}
	if result.PercentCorrect != 50 || result.Passed {
		t.Errorf("2 of 4 = %d passed=%v, want 50 passed=false", result.PercentCorrect, result.Passed)
	}
}

func TestScoreAttemptExactThresholdPasses(t *testing.T) {
	// 及格线是闭区间下界：得分恰好等于线视为及格
	snap := snapshotWithQuestions(5, 60)
	result, err := ScoreAttempt(snap, answers(snap, 3))
	if err != nil {
		t.Fatalf("ScoreAttempt: %v", err)
	}
	if result.PercentCorrect != 60 || !result.Passed {
		t.Errorf("3 of 5 = %d passed=%v, want 60 passed=true", result.PercentCorrect, result.Passed)
	}
}

func TestScoreAttemptUnansweredCountsWrong(t *testing.T) {
	snap := snapshotWithQuestions(4, 60)
	sel := answers(snap, 3)
	delete(sel, snap.Questions[3].ID)

	result, err := ScoreAttempt(snap, sel)
	if err != nil {
		t.Fatalf("ScoreAttempt: %v", err)
	}
	if result.PercentCorrect != 75 {
		t.Errorf("unanswered question changed the score: got %d, want 75", result.PercentCorrect)
	}
}

func TestScoreAttemptEmptyQuizRejected(t *testing.T) {
	snap := &model.QuizSnapshot{QuizID: 1, MinPassingScore: 60}
	if _, err := ScoreAttempt(snap, nil); !errors.Is(err, util.ErrInvalidQuizDefinition) {
		t.Errorf("empty quiz: got %v, want ErrInvalidQuizDefinition", err)
	}
}

func TestRoundHalfUpPercent(t *testing.T) {
	tests := []struct {
		correct, total, want int
	}{
		{0, 3, 0},
		{1, 3, 33},  // 33.33 -> 33
		{2, 3, 67},  // 66.67 -> 67
		{1, 8, 13},  // 12.5 -> 13, half rounds up
		{3, 8, 38},  // 37.5 -> 38
		{1, 6, 17},  // 16.67 -> 17
		{7, 7, 100},
	}
	for _, tt := range tests {
		if got := roundHalfUpPercent(tt.correct, tt.total); got != tt.want {
			t.Errorf("roundHalfUpPercent(%d, %d) = %d, want %d", tt.correct, tt.total, got, tt.want)
		}
	}
}

func TestRoundHalfUpPercentMatchesExactRounding(t *testing.T) {
	// 与有理数定义逐点核对：余数过半或恰为一半时进位。
	// 浮点不能当基准，23/40 处 57.5 会被二进制误差拖到 57。
	for total := 1; total <= 40; total++ {
		for correct := 0; correct <= total; correct++ {
			quotient := correct * 100 / total
			remainder := correct * 100 % total
			want := quotient
			if 2*remainder >= total {
				want++
			}
			if got := roundHalfUpPercent(correct, total); got != want {
				t.Fatalf("roundHalfUpPercent(%d, %d) = %d, want %d", correct, total, got, want)
			}
		}
	}
}
