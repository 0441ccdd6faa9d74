package service

import (
	"errors"
	"testing"
	"time"

	"lingua_backend/internal/model"
	"lingua_backend/internal/util"

	"gorm.io/gorm"
)

// seedPublishedQuiz 一门课、一个课时、一个已发布测验（两道单选题），
// 返回测验与各题的 (questionID, optionIDs)，每题第一个选项正确。
func seedPublishedQuiz(t *testing.T, env *testEnv) (*model.Quiz, []uint, [][]uint) {
	t.Helper()
	course, lesson := env.seedCourse(t)
	quiz := env.seedQuiz(t, course.ID, lesson.ID, 60, 1, true)

	q1, opts1 := env.seedQuestion(t, quiz.ID, model.SelectModeSingle, []bool{true, false})
	q2, opts2 := env.seedQuestion(t, quiz.ID, model.SelectModeSingle, []bool{true, false, false})
	return quiz, []uint{q1, q2}, [][]uint{opts1, opts2}
}

func TestStartAttemptFreezesSnapshot(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "ana")
	quiz, questions, _ := seedPublishedQuiz(t, env)

	attempt, err := env.attempts.StartAttempt(user.ID, quiz.ID)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	if attempt.Status != model.AttemptStarted {
		t.Errorf("status = %s, want started", attempt.Status)
	}
	if attempt.CourseID != quiz.CourseID {
		t.Errorf("courseID = %d, want %d", attempt.CourseID, quiz.CourseID)
	}

	snap, err := env.attempts.parseSnapshot(attempt)
	if err != nil {
		t.Fatalf("parseSnapshot: %v", err)
	}
	if len(snap.Questions) != len(questions) {
		t.Errorf("snapshot has %d questions, want %d", len(snap.Questions), len(questions))
	}
}

func TestStartAttemptRejectsSecondActive(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "ana")
	quiz, _, _ := seedPublishedQuiz(t, env)

	if _, err := env.attempts.StartAttempt(user.ID, quiz.ID); err != nil {
		t.Fatalf("first StartAttempt: %v", err)
	}
	if _, err := env.attempts.StartAttempt(user.ID, quiz.ID); !errors.Is(err, util.ErrAttemptAlreadyActive) {
		t.Errorf("second StartAttempt: got %v, want ErrAttemptAlreadyActive", err)
	}

	// 其他学习者不受影响
	other := env.seedUser(t, "bruno")
	if _, err := env.attempts.StartAttempt(other.ID, quiz.ID); err != nil {
		t.Errorf("other learner StartAttempt: %v", err)
	}
}

func TestStartAttemptUnpublishedQuiz(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "ana")
	course, lesson := env.seedCourse(t)
	quiz := env.seedQuiz(t, course.ID, lesson.ID, 60, 1, false)
	env.seedQuestion(t, quiz.ID, model.SelectModeSingle, []bool{true, false})

	if _, err := env.attempts.StartAttempt(user.ID, quiz.ID); !errors.Is(err, util.ErrQuizNotFound) {
		t.Errorf("unpublished quiz: got %v, want ErrQuizNotFound", err)
	}
}

func TestStartAttemptEmptyQuiz(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "ana")
	course, lesson := env.seedCourse(t)
	quiz := env.seedQuiz(t, course.ID, lesson.ID, 60, 1, true)

	if _, err := env.attempts.StartAttempt(user.ID, quiz.ID); !errors.Is(err, util.ErrInvalidQuizDefinition) {
		t.Errorf("quiz without questions: got %v, want ErrInvalidQuizDefinition", err)
	}
}

func TestRecordAnswerReplacesPrevious(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "ana")
	quiz, questions, options := seedPublishedQuiz(t, env)

	attempt, err := env.attempts.StartAttempt(user.ID, quiz.ID)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}

	if _, err := env.attempts.RecordAnswer(user.ID, attempt.ID, questions[0], []uint{options[0][1]}); err != nil {
		t.Fatalf("first RecordAnswer: %v", err)
	}
	// 同题重答为替换
	if _, err := env.attempts.RecordAnswer(user.ID, attempt.ID, questions[0], []uint{options[0][0]}); err != nil {
		t.Fatalf("second RecordAnswer: %v", err)
	}

	answers, err := env.attempts.GetAnswers(user.ID, attempt.ID)
	if err != nil {
		t.Fatalf("GetAnswers: %v", err)
	}
	if len(answers) != 1 {
		t.Fatalf("answers = %d rows, want 1 (replacement, not append)", len(answers))
	}

	updated, err := env.attempts.GetAttempt(user.ID, attempt.ID)
	if err != nil {
		t.Fatalf("GetAttempt: %v", err)
	}
	if updated.Status != model.AttemptInProgress {
		t.Errorf("status after first answer = %s, want in_progress", updated.Status)
	}
}

func TestRecordAnswerUnknownQuestion(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "ana")
	quiz, _, _ := seedPublishedQuiz(t, env)

	attempt, err := env.attempts.StartAttempt(user.ID, quiz.ID)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}

	if _, err := env.attempts.RecordAnswer(user.ID, attempt.ID, 9999, []uint{1}); !errors.Is(err, util.ErrUnknownQuestion) {
		t.Errorf("unknown question: got %v, want ErrUnknownQuestion", err)
	}
}

func TestSubmitRequiresAllQuestionsAnswered(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "ana")
	quiz, questions, options := seedPublishedQuiz(t, env)

	attempt, err := env.attempts.StartAttempt(user.ID, quiz.ID)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	if _, err := env.attempts.RecordAnswer(user.ID, attempt.ID, questions[0], []uint{options[0][0]}); err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}

	if _, _, err := env.attempts.Submit(user.ID, attempt.ID); !errors.Is(err, util.ErrIncompleteAttempt) {
		t.Fatalf("partial submit: got %v, want ErrIncompleteAttempt", err)
	}

	// 失败的提交不改变状态，补答后可以提交
	if _, err := env.attempts.RecordAnswer(user.ID, attempt.ID, questions[1], []uint{options[1][0]}); err != nil {
		t.Fatalf("RecordAnswer after failed submit: %v", err)
	}
	if _, _, err := env.attempts.Submit(user.ID, attempt.ID); err != nil {
		t.Fatalf("complete submit: %v", err)
	}
}

func TestSubmitScoresAndIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "ana")
	quiz, questions, options := seedPublishedQuiz(t, env)

	attempt, err := env.attempts.StartAttempt(user.ID, quiz.ID)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	// 第一题对、第二题错：1/2 = 50 < 60 不及格
	if _, err := env.attempts.RecordAnswer(user.ID, attempt.ID, questions[0], []uint{options[0][0]}); err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}
	if _, err := env.attempts.RecordAnswer(user.ID, attempt.ID, questions[1], []uint{options[1][1]}); err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}

	scored, result, err := env.attempts.Submit(user.ID, attempt.ID)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if scored.Status != model.AttemptScored {
		t.Errorf("status = %s, want scored", scored.Status)
	}
	if result.PercentCorrect != 50 || result.CorrectCount != 1 || result.TotalQuestions != 2 || result.Passed {
		t.Errorf("result = %+v, want 50%% (1/2) passed=false", result)
	}
	if scored.ActiveKey != nil {
		t.Error("ActiveKey should be cleared once the attempt is terminal")
	}
	if scored.SubmittedAt == nil || scored.ScoredAt == nil {
		t.Error("SubmittedAt and ScoredAt should be set")
	}

	// 每题的判定结果已冻结
	answers, err := env.attempts.GetAnswers(user.ID, attempt.ID)
	if err != nil {
		t.Fatalf("GetAnswers: %v", err)
	}
	verdicts := make(map[uint]bool, len(answers))
	for _, a := range answers {
		verdicts[a.QuestionID] = a.IsCorrect
	}
	if !verdicts[questions[0]] || verdicts[questions[1]] {
		t.Errorf("verdicts = %v, want question %d correct and %d wrong", verdicts, questions[0], questions[1])
	}

	// 重复提交幂等：返回已存结果，且与首次提交逐字段一致（含正确题数）
	again, result2, err := env.attempts.Submit(user.ID, attempt.ID)
	if err != nil {
		t.Fatalf("repeat Submit: %v", err)
	}
	if again.Score != 50 {
		t.Errorf("repeat submit changed the score: %d", again.Score)
	}
	if *result2 != *result {
		t.Errorf("repeat submit returned a different result: first=%+v second=%+v", result, result2)
	}

	// 终结后不再接受作答
	if _, err := env.attempts.RecordAnswer(user.ID, attempt.ID, questions[0], []uint{options[0][1]}); !errors.Is(err, util.ErrInvalidAttemptState) {
		t.Errorf("answer after scoring: got %v, want ErrInvalidAttemptState", err)
	}
}

func TestSubmitUsesFrozenSnapshot(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "ana")
	course, lesson := env.seedCourse(t)
	quiz := env.seedQuiz(t, course.ID, lesson.ID, 60, 1, true)
	qID, opts := env.seedQuestion(t, quiz.ID, model.SelectModeSingle, []bool{true, false})

	attempt, err := env.attempts.StartAttempt(user.ID, quiz.ID)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	if _, err := env.attempts.RecordAnswer(user.ID, attempt.ID, qID, []uint{opts[0]}); err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}

	// 开始之后教师翻转正确选项
	if err := env.db.Model(&model.QuestionOption{}).Where("id = ?", opts[0]).Update("is_correct", false).Error; err != nil {
		t.Fatalf("flip option: %v", err)
	}
	if err := env.db.Model(&model.QuestionOption{}).Where("id = ?", opts[1]).Update("is_correct", true).Error; err != nil {
		t.Fatalf("flip option: %v", err)
	}

	// 判分依据开始时刻的快照，与当前内容无关
	_, result, err := env.attempts.Submit(user.ID, attempt.ID)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.PercentCorrect != 100 || !result.Passed {
		t.Errorf("result = %d passed=%v, want 100 passed=true against the frozen snapshot", result.PercentCorrect, result.Passed)
	}
}

func TestAbandonAttempt(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "ana")
	quiz, questions, options := seedPublishedQuiz(t, env)

	attempt, err := env.attempts.StartAttempt(user.ID, quiz.ID)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}

	abandoned, err := env.attempts.Abandon(user.ID, attempt.ID)
	if err != nil {
		t.Fatalf("Abandon: %v", err)
	}
	if abandoned.Status != model.AttemptAbandoned {
		t.Errorf("status = %s, want abandoned", abandoned.Status)
	}
	if abandoned.ActiveKey != nil {
		t.Error("ActiveKey should be cleared on abandon")
	}

	// 放弃是幂等的
	if _, err := env.attempts.Abandon(user.ID, attempt.ID); err != nil {
		t.Errorf("repeat Abandon: %v", err)
	}

	// 放弃的挑战没有分数，也不接受作答
	if _, err := env.attempts.RecordAnswer(user.ID, attempt.ID, questions[0], []uint{options[0][0]}); !errors.Is(err, util.ErrInvalidAttemptState) {
		t.Errorf("answer after abandon: got %v, want ErrInvalidAttemptState", err)
	}

	// 放弃后可以重新开始
	if _, err := env.attempts.StartAttempt(user.ID, quiz.ID); err != nil {
		t.Errorf("restart after abandon: %v", err)
	}
}

func TestAttemptOwnershipHidesExistence(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "ana")
	stranger := env.seedUser(t, "bruno")
	quiz, questions, options := seedPublishedQuiz(t, env)

	attempt, err := env.attempts.StartAttempt(owner.ID, quiz.ID)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}

	if _, err := env.attempts.GetAttempt(stranger.ID, attempt.ID); !errors.Is(err, util.ErrAttemptNotFound) {
		t.Errorf("foreign GetAttempt: got %v, want ErrAttemptNotFound", err)
	}
	if _, err := env.attempts.RecordAnswer(stranger.ID, attempt.ID, questions[0], []uint{options[0][0]}); !errors.Is(err, util.ErrAttemptNotFound) {
		t.Errorf("foreign RecordAnswer: got %v, want ErrAttemptNotFound", err)
	}
	if _, _, err := env.attempts.Submit(stranger.ID, attempt.ID); !errors.Is(err, util.ErrAttemptNotFound) {
		t.Errorf("foreign Submit: got %v, want ErrAttemptNotFound", err)
	}
}

func TestListHistoryKeepsScoredAttempts(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "ana")
	quiz, questions, options := seedPublishedQuiz(t, env)

	for i := 0; i < 2; i++ {
		attempt, err := env.attempts.StartAttempt(user.ID, quiz.ID)
		if err != nil {
			t.Fatalf("StartAttempt %d: %v", i, err)
		}
		for j, qID := range questions {
			if _, err := env.attempts.RecordAnswer(user.ID, attempt.ID, qID, []uint{options[j][0]}); err != nil {
				t.Fatalf("RecordAnswer: %v", err)
			}
		}
		if _, _, err := env.attempts.Submit(user.ID, attempt.ID); err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
	}

	history, err := env.attempts.ListHistory(user.ID, quiz.ID)
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("history = %d attempts, want 2", len(history))
	}
	for _, a := range history {
		if a.Status != model.AttemptScored {
			t.Errorf("history attempt %d status = %s, want scored", a.ID, a.Status)
		}
	}
}

func TestStartAttemptUniqueIndexBreaksRace(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "ana")
	quiz, _, _ := seedPublishedQuiz(t, env)

	// 模拟并发竞争的胜者在 check 与 insert 之间抢先落库：
	// 该行仍持有 active_key，但状态已推进到 submitted，活跃查询看不到它
	key := activeKey(user.ID, quiz.ID)
	winner := &model.QuizAttempt{
		UserID:       user.ID,
		QuizID:       quiz.ID,
		CourseID:     quiz.CourseID,
		Status:       model.AttemptSubmitted,
		QuizSnapshot: "{}",
		StartedAt:    time.Now(),
		ActiveKey:    &key,
	}
	if err := env.attemptRepo.Create(winner); err != nil {
		t.Fatalf("seed winning attempt: %v", err)
	}

	// 仓库层：唯一索引把冲突译为 ErrDuplicatedKey
	loserKey := activeKey(user.ID, quiz.ID)
	loser := &model.QuizAttempt{
		UserID:       user.ID,
		QuizID:       quiz.ID,
		CourseID:     quiz.CourseID,
		Status:       model.AttemptStarted,
		QuizSnapshot: "{}",
		StartedAt:    time.Now(),
		ActiveKey:    &loserKey,
	}
	if err := env.attemptRepo.Create(loser); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("duplicate active_key insert: got %v, want gorm.ErrDuplicatedKey", err)
	}

	// 服务层：输掉竞争的一方得到 ErrAttemptAlreadyActive，而不是裸的存储错误
	if _, err := env.attempts.StartAttempt(user.ID, quiz.ID); !errors.Is(err, util.ErrAttemptAlreadyActive) {
		t.Errorf("StartAttempt losing the race: got %v, want ErrAttemptAlreadyActive", err)
	}
}

func TestAbandonDoesNotOverwriteScoredAttempt(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "ana")
	quiz, questions, options := seedPublishedQuiz(t, env)

	attempt, err := env.attempts.StartAttempt(user.ID, quiz.ID)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	for j, qID := range questions {
		if _, err := env.attempts.RecordAnswer(user.ID, attempt.ID, qID, []uint{options[j][0]}); err != nil {
			t.Fatalf("RecordAnswer: %v", err)
		}
	}
	if _, _, err := env.attempts.Submit(user.ID, attempt.ID); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// 条件转移在终结状态上不生效：放弃输给并发提交时不得覆盖判分结果
	affected, err := env.attemptRepo.AbandonOpen(attempt.ID)
	if err != nil {
		t.Fatalf("AbandonOpen: %v", err)
	}
	if affected != 0 {
		t.Errorf("AbandonOpen on a scored attempt affected %d rows, want 0", affected)
	}

	got, err := env.attempts.GetAttempt(user.ID, attempt.ID)
	if err != nil {
		t.Fatalf("GetAttempt: %v", err)
	}
	if got.Status != model.AttemptScored || got.Score != 100 {
		t.Errorf("attempt = %s score %d, want scored 100", got.Status, got.Score)
	}

	// 服务层对已终结挑战仍是幂等空操作
	same, err := env.attempts.Abandon(user.ID, attempt.ID)
	if err != nil {
		t.Fatalf("Abandon after scoring: %v", err)
	}
	if same.Status != model.AttemptScored {
		t.Errorf("Abandon rewrote status to %s", same.Status)
	}
}
