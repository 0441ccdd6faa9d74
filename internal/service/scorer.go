package service

import (
	"lingua_backend/internal/model"
	"lingua_backend/internal/util"
)

// ScoreResult 单次挑战的判分结果
type ScoreResult struct {
	PercentCorrect int  `json:"percentCorrect"`
	CorrectCount   int  `json:"correctCount"`
	TotalQuestions int  `json:"totalQuestions"`
	Passed         bool `json:"passed"`
}

// ScoreAttempt 聚合每题判分得出百分比与及格判定。
// 未作答的题目计入分母按错误处理（提交完整性由生命周期管理保证）。
// 空测验属于出题配置错误，返回 ErrInvalidQuizDefinition 而非除零。
func ScoreAttempt(snap *model.QuizSnapshot, selectedByQuestion map[uint][]uint) (*ScoreResult, error) {
	total := len(snap.Questions)
	if total == 0 {
		return nil, util.ErrInvalidQuizDefinition
	}

	correct := 0
	for i := range snap.Questions {
		q := &snap.Questions[i]
		if EvaluateAnswer(q, selectedByQuestion[q.ID]) {
			correct++
		}
	}

	percent := roundHalfUpPercent(correct, total)
	return &ScoreResult{
		PercentCorrect: percent,
		CorrectCount:   correct,
		TotalQuestions: total,
		Passed:         percent >= snap.MinPassingScore,
	}, nil
}

// roundHalfUpPercent round((correct/total)*100)，0.5 向上取整。
// 整数运算避免浮点边界误差。
func roundHalfUpPercent(correct, total int) int {
	return (correct*100*2 + total) / (total * 2)
}
