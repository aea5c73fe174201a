package service

import "github.com/kenshokan/dojang-api/internal/models"

// scoreObjective grades a single auto-scorable answer against its question.
// A missing or mismatched answer scores zero; essays always score zero here.
func scoreObjective(question models.Question, answer models.AttemptAnswer, answered bool) float64 {
	if !answered {
		return 0
	}

	switch question.Type {
	case models.QuestionTypeMCQ:
		if question.CorrectIndex != nil && answer.SelectedIndex != nil && *answer.SelectedIndex == *question.CorrectIndex {
			return question.MaxScore
		}
	case models.QuestionTypeTrueFalse:
		if question.CorrectAnswer != nil && answer.BoolAnswer != nil && *answer.BoolAnswer == *question.CorrectAnswer {
			return question.MaxScore
		}
	}

	return 0
}

// autoScoreSession computes the objective score for every auto-scorable
// question in the exam. The result maps answer IDs to their earned score; the
// total sums every objective question, with unanswered questions contributing
// zero.
func autoScoreSession(exam models.Exam, session models.AttemptSession) (map[uint]float64, float64) {
	perAnswer := make(map[uint]float64)
	var total float64

	for _, question := range exam.Questions {
		if !question.AutoScorable() {
			continue
		}

		answer, answered := session.AnswerFor(question.ID)
		earned := scoreObjective(question, answer, answered)
		total += earned
		if answered {
			perAnswer[answer.ID] = earned
		}
	}

	return perAnswer, total
}

// scaleTheory normalizes a raw theory score into the 100-point component space
// used by the final total.
func scaleTheory(theoryScore, maxTheoryScore float64) float64 {
	if maxTheoryScore <= 0 {
		return 0
	}
	return theoryScore / maxTheoryScore * 100
}

// composeTotal merges the finalized theory score with the practical dimensions
// into the 500-point verdict space. The theory score is normalized to 100 and
// summed with the four non-method practical dimensions; practicalMethod is
// reported separately through methodTotal and does not enter the total.
func composeTotal(theoryScore, maxTheoryScore float64, eval models.PracticalEvaluation) float64 {
	return scaleTheory(theoryScore, maxTheoryScore) + eval.NonMethodTotal()
}

// scaledPassThreshold projects the exam pass mark proportionally into the
// 500-point space.
func scaledPassThreshold(passMark, maxTheoryScore float64) float64 {
	if maxTheoryScore <= 0 {
		return models.TotalScoreMax
	}
	return passMark / maxTheoryScore * models.TotalScoreMax
}

// methodCap is the upper bound for the practicalMethod dimension once a theory
// score is finalized: the two jointly bound a combined method competency of
// 100 points.
func methodCap(theoryScore float64) float64 {
	limit := 100 - theoryScore
	if limit < 0 {
		return 0
	}
	return limit
}
