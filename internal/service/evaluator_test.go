package service

import (
	"testing"

	"lingua_backend/internal/model"
)

func singleChoiceQuestion() *model.QuestionSnapshot {
	return &model.QuestionSnapshot{
		ID:         1,
		SelectMode: model.SelectModeSingle,
		Options: []model.OptionSnapshot{
			{ID: 10, IsCorrect: false},
			{ID: 11, IsCorrect: true},
			{ID: 12, IsCorrect: false},
		},
	}
}

func multiChoiceQuestion() *model.QuestionSnapshot {
	return &model.QuestionSnapshot{
		ID:         2,
		SelectMode: model.SelectModeMulti,
		Options: []model.OptionSnapshot{
			{ID: 20, IsCorrect: true},
			{ID: 21, IsCorrect: false},
			{ID: 22, IsCorrect: true},
			{ID: 23, IsCorrect: false},
		},
	}
}

func TestEvaluateAnswerSingleChoice(t *testing.T) {
	q := singleChoiceQuestion()

	tests := []struct {
		name     string
		selected []uint
		want     bool
	}{
		{"correct option", []uint{11}, true},
		{"wrong option", []uint{10}, false},
		{"empty selection", nil, false},
		{"two options on single choice", []uint{10, 11}, false},
		{"option from another question", []uint{99}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateAnswer(q, tt.selected); got != tt.want {
				t.Errorf("EvaluateAnswer(%v) = %v, want %v", tt.selected, got, tt.want)
			}
		})
	}
}

func TestEvaluateAnswerMultiChoice(t *testing.T) {
	q := multiChoiceQuestion()

	tests := []struct {
		name     string
		selected []uint
		want     bool
	}{
		{"exact correct set", []uint{20, 22}, true},
		{"order does not matter", []uint{22, 20}, true},
		{"missing one correct", []uint{20}, false},
		{"extra wrong option", []uint{20, 22, 21}, false},
		{"all options", []uint{20, 21, 22, 23}, false},
		{"empty selection", []uint{}, false},
		{"unknown option id", []uint{20, 22, 99}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateAnswer(q, tt.selected); got != tt.want {
				t.Errorf("EvaluateAnswer(%v) = %v, want %v", tt.selected, got, tt.want)
			}
		})
	}
}

func TestEvaluateAnswerUnknownModeGradesAsSingle(t *testing.T) {
	// 快照中 selectMode 缺失或损坏时按单选处理（与建表默认一致），
	// 不得落入集合匹配给分
	q := multiChoiceQuestion()
	for _, mode := range []string{"", "checkbox"} {
		q.SelectMode = mode
		if EvaluateAnswer(q, []uint{20, 22}) {
			t.Errorf("mode %q graded the correct multi set as a hit", mode)
		}
	}

	single := singleChoiceQuestion()
	single.SelectMode = ""
	if !EvaluateAnswer(single, []uint{11}) {
		t.Error("missing mode should still accept the single correct option")
	}
	if EvaluateAnswer(single, []uint{10, 11}) {
		t.Error("missing mode must reject a two-option selection")
	}
}

func TestEvaluateAnswerDuplicateSelection(t *testing.T) {
	// 重复的选项ID按集合去重处理
	q := multiChoiceQuestion()
	if !EvaluateAnswer(q, []uint{20, 22, 20}) {
		t.Error("duplicate ids in a selection should collapse to the set")
	}

	single := singleChoiceQuestion()
	if !EvaluateAnswer(single, []uint{11, 11}) {
		t.Error("duplicate of the single correct option should still count as one selection")
	}
}
