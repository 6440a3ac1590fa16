package quiz

import "compliance_edu_backend/internal/model"

type ReviewItem struct {
	QuestionID    string `json:"questionId"`
	QuestionText  string `json:"questionText"`
	Selected      int    `json:"selected"` // -1 表示未作答
	SelectedText  string `json:"selectedText"`
	CorrectOption int    `json:"correctOption"`
	CorrectText   string `json:"correctText"`
	Correct       bool   `json:"correct"`
	Explanation   string `json:"explanation,omitempty"`
}

func (e *Engine) Review() []ReviewItem {
	return buildReview(e.questions, e.state.Answers)
}

// BuildReview 用已保存的作答记录重建答题回顾
func BuildReview(questions []model.Question, answers []model.AttemptAnswer) []ReviewItem {
	selected := make(map[string]int, len(answers))
	for _, a := range answers {
		selected[a.QuestionID] = a.Selected
	}
	return buildReview(questions, selected)
}

func buildReview(questions []model.Question, selected map[string]int) []ReviewItem {
	items := make([]ReviewItem, 0, len(questions))
	for _, q := range questions {
		item := ReviewItem{
			QuestionID:    q.ID,
			QuestionText:  q.QuestionText,
			Selected:      -1,
			CorrectOption: q.CorrectOption,
			CorrectText:   optionText(q, q.CorrectOption),
			Explanation:   q.Explanation,
		}
		if v, ok := selected[q.ID]; ok {
			item.Selected = v
			item.SelectedText = optionText(q, v)
			item.Correct = v == q.CorrectOption
		}
		items = append(items, item)
	}
	return items
}

func optionText(q model.Question, i int) string {
	if i < 0 || i >= len(q.Options) {
		return ""
	}
	return q.Options[i]
}
