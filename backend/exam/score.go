// Package exam computes exam outcomes from submitted answers.
package exam

import (
	"math"

	"aicademy/backend/models"
)

// ComputeScore grades a submission against the lesson's questions in
// sequence order. Answers are positional; a missing or empty answer is
// wrong. Correct means exact string equality with the designated answer.
// Returns the rounded percentage score and the number of correct answers.
func ComputeScore(answers []string, questions []models.Question) (score int, correct int) {
	total := len(questions)
	if total == 0 {
		return 0, 0
	}

	for i, q := range questions {
		if i < len(answers) && answers[i] != "" && answers[i] == q.CorrectAnswer {
			correct++
		}
	}

	score = int(math.Round(100 * float64(correct) / float64(total)))
	return score, correct
}

// ClampScore ограничивает процент диапазоном [0, 100].
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
