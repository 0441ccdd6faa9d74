package service

import (
	"lingua_backend/internal/model"
)

// EvaluateAnswer 对单题判分：纯函数，只依赖传入快照时刻的正确性标记。
// 单选：所选恰好是唯一正确选项；多选：所选与正确选项集合严格相等，不给部分分。
// 空提交恒为错误，不是异常。
func EvaluateAnswer(q *model.QuestionSnapshot, selectedOptionIDs []uint) bool {
	if len(selectedOptionIDs) == 0 {
		return false
	}

	correct := make(map[uint]bool)
	valid := make(map[uint]bool)
	for _, o := range q.Options {
		valid[o.ID] = true
		if o.IsCorrect {
			correct[o.ID] = true
		}
	}

	// 含不属于本题的选项ID视为错误
	selected := make(map[uint]bool, len(selectedOptionIDs))
	for _, id := range selectedOptionIDs {
		if !valid[id] {
			return false
		}
		selected[id] = true
	}

	// 仅显式 multi 走集合匹配；未知或缺失模式按 single 处理（与建表默认一致）
	if q.SelectMode != model.SelectModeMulti {
		if len(selected) != 1 {
			return false
		}
		for id := range selected {
			return correct[id] && len(correct) == 1
		}
	}

	// multi: strict set equality
	if len(selected) != len(correct) {
		return false
	}
	for id := range selected {
		if !correct[id] {
			return false
		}
	}
	return true
}
