package service

import (
	"encoding/json"
	"errors"
	"strconv"
	"sync"

	"lingua_backend/internal/config"
	"lingua_backend/internal/model"
	"lingua_backend/internal/repository"
	"lingua_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProgressService 在每次判分后重算学习者的课程进度：
// 各必修测验的最佳及格分、完成度、加权平均分与等级。
// 重算是幂等的：同一批挑战算两遍结果一致。
type ProgressService struct {
	StandingRepo *repository.StandingRepository
	AttemptRepo  *repository.AttemptRepository
	CourseRepo   *repository.CourseRepository
	Certificates *CertificateService

	mu         sync.RWMutex
	thresholds config.AssessmentConfig
}

func NewProgressService(
	standingRepo *repository.StandingRepository,
	attemptRepo *repository.AttemptRepository,
	courseRepo *repository.CourseRepository,
	certificates *CertificateService,
	thresholds config.AssessmentConfig,
) *ProgressService {
	return &ProgressService{
		StandingRepo: standingRepo,
		AttemptRepo:  attemptRepo,
		CourseRepo:   courseRepo,
		Certificates: certificates,
		thresholds:   thresholds,
	}
}

// UpdateThresholds 配置热更新回调：等级阈值校准即时生效
func (s *ProgressService) UpdateThresholds(thresholds config.AssessmentConfig) {
	s.mu.Lock()
	s.thresholds = thresholds
	s.mu.Unlock()
	logger.Log.Info("proficiency thresholds recalibrated",
		zap.Int("advanced", thresholds.AdvancedThreshold),
		zap.Int("intermediate", thresholds.IntermediateThreshold))
}

// Recompute 从挑战历史整体重算课程进度并落库。
// 完成度到达 100 时触发证书签发（唯一的签发入口条件）。
func (s *ProgressService) Recompute(userID, courseID uint) (*model.CourseStanding, error) {
	required, err := s.CourseRepo.ListRequiredQuizzes(courseID)
	if err != nil {
		return nil, err
	}

	attempts, err := s.AttemptRepo.ListScoredByUserAndCourse(userID, courseID)
	if err != nil {
		return nil, err
	}

	// 每个必修测验的最佳及格分（没有及格挑战则为 0）
	bestPassing := make(map[uint]int, len(required))
	for _, a := range attempts {
		if !a.Passed {
			continue
		}
		if a.Score > bestPassing[a.QuizID] {
			bestPassing[a.QuizID] = a.Score
		}
	}

	passedCount := 0
	weightedSum := 0
	weightTotal := 0
	scores := make(map[string]int, len(required))
	for _, quiz := range required {
		best := bestPassing[quiz.ID]
		scores[strconv.FormatUint(uint64(quiz.ID), 10)] = best
		if best > 0 {
			passedCount++
		}
		weight := quiz.Weight
		if weight <= 0 {
			weight = 1
		}
		weightedSum += best * weight
		weightTotal += weight
	}

	completion := 0
	if len(required) > 0 {
		completion = roundHalfUpPercent(passedCount, len(required))
	}
	weightedAverage := 0
	if weightTotal > 0 {
		weightedAverage = (weightedSum*2 + weightTotal) / (weightTotal * 2)
	}

	scoresBytes, err := json.Marshal(scores)
	if err != nil {
		return nil, err
	}

	standing := &model.CourseStanding{
		UserID:            userID,
		CourseID:          courseID,
		QuizScores:        string(scoresBytes),
		CompletionPercent: completion,
		WeightedAverage:   weightedAverage,
		Level:             s.deriveLevel(weightedAverage),
		Completed:         len(required) > 0 && completion == 100,
	}
	if err := s.StandingRepo.Upsert(standing); err != nil {
		return nil, err
	}

	if standing.Completed && s.Certificates != nil {
		if _, err := s.Certificates.IssueIfEligible(userID, courseID); err != nil {
			logger.Log.Error("certificate issuance after completion failed",
				zap.Uint("userId", userID),
				zap.Uint("courseId", courseID),
				zap.Error(err))
		}
	}

	return standing, nil
}

// GetStanding 查询当前进度；无任何记录时按零值状态处理，不视为错误
func (s *ProgressService) GetStanding(userID, courseID uint) (*model.CourseStanding, error) {
	standing, err := s.StandingRepo.FindByUserAndCourse(userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.CourseStanding{
				UserID:     userID,
				CourseID:   courseID,
				QuizScores: "{}",
				Level:      model.LevelBeginner,
			}, nil
		}
		return nil, err
	}
	return standing, nil
}

// deriveLevel 等级为加权平均分的阶梯函数，阈值来自可热更新的配置
func (s *ProgressService) deriveLevel(weightedAverage int) model.ProficiencyLevel {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case weightedAverage >= s.thresholds.AdvancedThreshold:
		return model.LevelAdvanced
	case weightedAverage >= s.thresholds.IntermediateThreshold:
		return model.LevelIntermediate
	default:
		return model.LevelBeginner
	}
}
