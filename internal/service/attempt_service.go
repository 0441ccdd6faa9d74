package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"lingua_backend/internal/model"
	"lingua_backend/internal/repository"
	"lingua_backend/internal/util"
	"lingua_backend/pkg/logger"
	"lingua_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AttemptService 持有单次测验挑战的状态机：
// started -> in_progress -> submitted -> scored，终态 abandoned。
type AttemptService struct {
	AttemptRepo *repository.AttemptRepository
	QuizRepo    *repository.QuizRepository
	Progress    *ProgressService
	DB          *gorm.DB
}

func NewAttemptService(attemptRepo *repository.AttemptRepository, quizRepo *repository.QuizRepository, progress *ProgressService, db *gorm.DB) *AttemptService {
	return &AttemptService{
		AttemptRepo: attemptRepo,
		QuizRepo:    quizRepo,
		Progress:    progress,
		DB:          db,
	}
}

func activeKey(userID, quizID uint) string {
	return fmt.Sprintf("%d:%d", userID, quizID)
}

// StartAttempt 开始一次挑战。测验定义（题目、选项、正确性标记）在此刻
// 冻结进快照，之后的内容编辑不影响本次判分。
// 同一 (learner, quiz) 已有未终结挑战时返回 ErrAttemptAlreadyActive；
// 并发开始靠 active_key 唯一索引兜底，输掉竞争的一方同样得到该错误。
func (s *AttemptService) StartAttempt(userID, quizID uint) (*model.QuizAttempt, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if !quiz.IsPublished {
		return nil, util.ErrQuizNotFound
	}

	snap, err := s.QuizRepo.LoadSnapshot(quizID)
	if err != nil {
		return nil, err
	}
	if len(snap.Questions) == 0 {
		return nil, util.ErrInvalidQuizDefinition
	}

	// check-then-insert，唯一约束兜底跨进程竞争
	if _, err := s.AttemptRepo.FindActive(userID, quizID); err == nil {
		return nil, util.ErrAttemptAlreadyActive
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	snapBytes, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}

	key := activeKey(userID, quizID)
	attempt := &model.QuizAttempt{
		UserID:       userID,
		QuizID:       quizID,
		CourseID:     snap.CourseID,
		Status:       model.AttemptStarted,
		QuizSnapshot: string(snapBytes),
		StartedAt:    time.Now(),
		ActiveKey:    &key,
	}
	if err := s.AttemptRepo.Create(attempt); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrAttemptAlreadyActive
		}
		return nil, err
	}
	return attempt, nil
}

// RecordAnswer 记录/覆盖单题作答。仅在 started/in_progress 允许；
// 同一题目重复作答为替换；提交前没有任何答案是最终的。
func (s *AttemptService) RecordAnswer(userID, attemptID, questionID uint, selectedOptionIDs []uint) (*model.QuizAttempt, error) {
	attempt, err := s.loadOwned(userID, attemptID)
	if err != nil {
		return nil, err
	}

	if !attempt.Status.IsOpen() {
		return nil, util.NewStateError(attempt.ID, "started/in_progress", string(attempt.Status))
	}

	snap, err := s.parseSnapshot(attempt)
	if err != nil {
		return nil, err
	}
	if _, ok := snap.QuestionByID(questionID); !ok {
		return nil, util.ErrUnknownQuestion
	}

	selBytes, err := json.Marshal(selectedOptionIDs)
	if err != nil {
		return nil, err
	}
	answer := &model.AttemptAnswer{
		AttemptID:       attempt.ID,
		QuestionID:      questionID,
		SelectedOptions: string(selBytes),
		AnsweredAt:      time.Now(),
	}
	if err := s.AttemptRepo.UpsertAnswer(answer); err != nil {
		return nil, err
	}

	if attempt.Status == model.AttemptStarted {
		attempt.Status = model.AttemptInProgress
		if err := s.AttemptRepo.Update(attempt); err != nil {
			return nil, err
		}
	}
	return attempt, nil
}

// Submit 唯一的提交点：校验完整性、对快照判分、原子落库并转入 scored。
// 对已判分挑战重复调用是幂等的，直接返回已存结果，不会重新判分。
func (s *AttemptService) Submit(userID, attemptID uint) (*model.QuizAttempt, *ScoreResult, error) {
	attempt, err := s.loadOwned(userID, attemptID)
	if err != nil {
		return nil, nil, err
	}

	snap, err := s.parseSnapshot(attempt)
	if err != nil {
		return nil, nil, err
	}

	if attempt.Status == model.AttemptScored {
		// 重放时从冻结的每题判定恢复正确数，保证与首次提交的结果完全一致
		answers, err := s.AttemptRepo.GetAnswers(attempt.ID)
		if err != nil {
			return nil, nil, err
		}
		correctCount := 0
		for _, a := range answers {
			if a.IsCorrect {
				correctCount++
			}
		}
		return attempt, &ScoreResult{
			PercentCorrect: attempt.Score,
			CorrectCount:   correctCount,
			TotalQuestions: len(snap.Questions),
			Passed:         attempt.Passed,
		}, nil
	}
	if !attempt.Status.IsOpen() {
		return nil, nil, util.NewStateError(attempt.ID, "started/in_progress", string(attempt.Status))
	}

	answers, err := s.AttemptRepo.GetAnswers(attempt.ID)
	if err != nil {
		return nil, nil, err
	}

	selectedByQuestion := make(map[uint][]uint, len(answers))
	for _, a := range answers {
		var sel []uint
		if err := json.Unmarshal([]byte(a.SelectedOptions), &sel); err != nil {
			return nil, nil, err
		}
		selectedByQuestion[a.QuestionID] = sel
	}

	// 每道题都必须有作答记录才可提交
	for i := range snap.Questions {
		if _, ok := selectedByQuestion[snap.Questions[i].ID]; !ok {
			return nil, nil, util.ErrIncompleteAttempt
		}
	}

	result, err := ScoreAttempt(snap, selectedByQuestion)
	if err != nil {
		return nil, nil, err
	}

	// 提交与判分在一个事务里落库：要么整体进入 scored，要么保持原状
	now := time.Now()
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for _, a := range answers {
			q, _ := snap.QuestionByID(a.QuestionID)
			verdict := EvaluateAnswer(q, selectedByQuestion[a.QuestionID])
			if err := tx.Model(&model.AttemptAnswer{}).
				Where("id = ?", a.ID).
				Update("is_correct", verdict).Error; err != nil {
				return err
			}
		}

		attempt.Status = model.AttemptScored
		attempt.Score = result.PercentCorrect
		attempt.Passed = result.Passed
		attempt.SubmittedAt = &now
		attempt.ScoredAt = &now
		attempt.ActiveKey = nil
		return tx.Save(attempt).Error
	})
	if err != nil {
		return nil, nil, err
	}

	monitoring.AttemptsScored.WithLabelValues(strconv.FormatBool(result.Passed)).Inc()

	// 判分已提交，进度汇总失败不回滚，重算本身是幂等的
	if s.Progress != nil {
		if _, err := s.Progress.Recompute(userID, attempt.CourseID); err != nil {
			logger.Log.Error("standing recompute after scoring failed",
				zap.Uint("userId", userID),
				zap.Uint("courseId", attempt.CourseID),
				zap.Error(err))
		}
	}

	return attempt, result, nil
}

// Abandon 放弃挑战。仅 started/in_progress 可放弃；已终结时为幂等空操作。
func (s *AttemptService) Abandon(userID, attemptID uint) (*model.QuizAttempt, error) {
	attempt, err := s.loadOwned(userID, attemptID)
	if err != nil {
		return nil, err
	}

	if attempt.Status.IsTerminal() {
		return attempt, nil
	}
	if attempt.Status == model.AttemptSubmitted {
		return nil, util.NewStateError(attempt.ID, "started/in_progress", string(attempt.Status))
	}

	affected, err := s.AttemptRepo.AbandonOpen(attempt.ID)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// 状态在读取后已被并发请求推进，按当前状态重新裁决
		current, err := s.AttemptRepo.FindByID(attempt.ID)
		if err != nil {
			return nil, err
		}
		if current.Status.IsTerminal() {
			return current, nil
		}
		return nil, util.NewStateError(current.ID, "started/in_progress", string(current.Status))
	}
	attempt.Status = model.AttemptAbandoned
	attempt.ActiveKey = nil
	return attempt, nil
}

func (s *AttemptService) GetAttempt(userID, attemptID uint) (*model.QuizAttempt, error) {
	return s.loadOwned(userID, attemptID)
}

func (s *AttemptService) GetAnswers(userID, attemptID uint) ([]model.AttemptAnswer, error) {
	if _, err := s.loadOwned(userID, attemptID); err != nil {
		return nil, err
	}
	return s.AttemptRepo.GetAnswers(attemptID)
}

// ListHistory 历史挑战永久保留，可随时查询
func (s *AttemptService) ListHistory(userID, quizID uint) ([]model.QuizAttempt, error) {
	return s.AttemptRepo.ListByUserAndQuiz(userID, quizID)
}

func (s *AttemptService) loadOwned(userID, attemptID uint) (*model.QuizAttempt, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	// 挑战归属发起的学习者，不对他人暴露存在性
	if attempt.UserID != userID {
		return nil, util.ErrAttemptNotFound
	}
	return attempt, nil
}

func (s *AttemptService) parseSnapshot(attempt *model.QuizAttempt) (*model.QuizSnapshot, error) {
	var snap model.QuizSnapshot
	if err := json.Unmarshal([]byte(attempt.QuizSnapshot), &snap); err != nil {
		return nil, fmt.Errorf("corrupt quiz snapshot on attempt %d: %w", attempt.ID, err)
	}
	return &snap, nil
}
