package service

import (
	"errors"
	"testing"

	"lingua_backend/internal/model"
	"lingua_backend/internal/util"
)

func newQuizEnv(t *testing.T) (*testEnv, *QuizService, *model.Lesson) {
	t.Helper()
	env := newTestEnv(t)
	_, lesson := env.seedCourse(t)
	return env, NewQuizService(env.quizRepo, env.courseRepo), lesson
}

func TestCreateQuizDefaults(t *testing.T) {
	_, svc, lesson := newQuizEnv(t)

	quiz, err := svc.CreateQuiz(QuizRequest{LessonID: lesson.ID, Title: "Basics"})
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}
	if quiz.MinPassingScore != 60 {
		t.Errorf("default passing score = %d, want 60", quiz.MinPassingScore)
	}
	if quiz.Weight != 1 {
		t.Errorf("default weight = %d, want 1", quiz.Weight)
	}
	if quiz.CourseID != lesson.CourseID {
		t.Errorf("courseID = %d, want denormalized %d", quiz.CourseID, lesson.CourseID)
	}
}

func TestAddQuestionValidatesCorrectness(t *testing.T) {
	_, svc, lesson := newQuizEnv(t)
	quiz, err := svc.CreateQuiz(QuizRequest{LessonID: lesson.ID, Title: "Basics"})
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}

	// 单选题没有正确选项
	_, err = svc.AddQuestion(quiz.ID, QuestionRequest{
		Prompt:     "hola?",
		SelectMode: model.SelectModeSingle,
		Options:    []OptionRequest{{Text: "a"}, {Text: "b"}},
	})
	if err == nil {
		t.Error("single-select without a correct option should be rejected")
	}

	// 单选题两个正确选项
	_, err = svc.AddQuestion(quiz.ID, QuestionRequest{
		Prompt:     "hola?",
		SelectMode: model.SelectModeSingle,
		Options:    []OptionRequest{{Text: "a", IsCorrect: true}, {Text: "b", IsCorrect: true}},
	})
	if err == nil {
		t.Error("single-select with two correct options should be rejected")
	}

	// 多选题至少一个正确选项
	_, err = svc.AddQuestion(quiz.ID, QuestionRequest{
		Prompt:     "pick all",
		SelectMode: model.SelectModeMulti,
		Options:    []OptionRequest{{Text: "a"}, {Text: "b"}},
	})
	if err == nil {
		t.Error("multi-select without correct options should be rejected")
	}

	// 合法定义
	q, err := svc.AddQuestion(quiz.ID, QuestionRequest{
		Prompt:     "pick all",
		SelectMode: model.SelectModeMulti,
		Options: []OptionRequest{
			{Text: "a", IsCorrect: true},
			{Text: "b"},
			{Text: "c", IsCorrect: true},
		},
	})
	if err != nil {
		t.Fatalf("valid AddQuestion: %v", err)
	}
	if q.SelectMode != model.SelectModeMulti {
		t.Errorf("selectMode = %s, want multi", q.SelectMode)
	}
}

func TestGetQuizForLearnerHidesAnswers(t *testing.T) {
	env, svc, lesson := newQuizEnv(t)
	quiz, err := svc.CreateQuiz(QuizRequest{LessonID: lesson.ID, Title: "Basics", IsPublished: true})
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}
	env.seedQuestion(t, quiz.ID, model.SelectModeSingle, []bool{true, false})

	view, err := svc.GetQuizForLearner(quiz.ID)
	if err != nil {
		t.Fatalf("GetQuizForLearner: %v", err)
	}
	if len(view.Questions) != 1 || len(view.Questions[0].Options) != 2 {
		t.Fatalf("view = %+v, want 1 question with 2 options", view)
	}

	// 教师视角才携带正确性标记
	snap, err := svc.GetQuizForTeacher(quiz.ID)
	if err != nil {
		t.Fatalf("GetQuizForTeacher: %v", err)
	}
	correct := 0
	for _, o := range snap.Questions[0].Options {
		if o.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		t.Errorf("teacher snapshot has %d correct options, want 1", correct)
	}
}

func TestGetQuizForLearnerUnpublished(t *testing.T) {
	_, svc, lesson := newQuizEnv(t)
	quiz, err := svc.CreateQuiz(QuizRequest{LessonID: lesson.ID, Title: "Draft"})
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}

	if _, err := svc.GetQuizForLearner(quiz.ID); !errors.Is(err, util.ErrQuizNotFound) {
		t.Errorf("unpublished quiz: got %v, want ErrQuizNotFound", err)
	}
	if _, err := svc.GetQuizForLearner(9999); !errors.Is(err, util.ErrQuizNotFound) {
		t.Errorf("missing quiz: got %v, want ErrQuizNotFound", err)
	}
}

func TestDeleteQuestionChecksOwnership(t *testing.T) {
	env, svc, lesson := newQuizEnv(t)
	quizA, _ := svc.CreateQuiz(QuizRequest{LessonID: lesson.ID, Title: "A"})
	quizB, _ := svc.CreateQuiz(QuizRequest{LessonID: lesson.ID, Title: "B"})
	qID, _ := env.seedQuestion(t, quizA.ID, model.SelectModeSingle, []bool{true, false})

	if err := svc.DeleteQuestion(quizB.ID, qID); !errors.Is(err, util.ErrUnknownQuestion) {
		t.Errorf("cross-quiz delete: got %v, want ErrUnknownQuestion", err)
	}
	if err := svc.DeleteQuestion(quizA.ID, qID); err != nil {
		t.Errorf("owned delete: %v", err)
	}
}
