package quiz

import "isl-backend/internal/models"

const (
	MaxQuestions   = 10
	MaxDistractors = 3
)

type Question struct {
	Target  models.FlashcardItem   `json:"target"`
	Options []models.FlashcardItem `json:"options"`
}

// Eligible returns the module items that can be quizzed.
func Eligible(module models.Module) []models.FlashcardItem {
	var out []models.FlashcardItem
	for _, item := range module.Items {
		if item.Playable() {
			out = append(out, item)
		}
	}
	return out
}

// Generate builds up to MaxQuestions questions for module. Distractors come
// from pool, same-category items first. A module without eligible items
// yields no questions and a small pool yields fewer options; neither is an
// error.
func Generate(module models.Module, pool []models.FlashcardItem, s *Sampler) []Question {
	eligible := Eligible(module)
	targets := Sample(s, eligible, min(MaxQuestions, len(eligible)))
	pool = dedupe(pool)

	questions := make([]Question, 0, len(targets))
	for _, target := range targets {
		options := append(distractors(target, pool, s), target)
		Shuffle(s, options)
		questions = append(questions, Question{Target: target, Options: options})
	}
	return questions
}

func distractors(target models.FlashcardItem, pool []models.FlashcardItem, s *Sampler) []models.FlashcardItem {
	var same, other []models.FlashcardItem
	for _, item := range pool {
		switch {
		case item.ID == target.ID:
		case item.Category == target.Category:
			same = append(same, item)
		default:
			other = append(other, item)
		}
	}

	picked := Sample(s, same, MaxDistractors)
	if missing := MaxDistractors - len(picked); missing > 0 {
		picked = append(picked, Sample(s, other, missing)...)
	}
	return picked
}

func dedupe(pool []models.FlashcardItem) []models.FlashcardItem {
	seen := make(map[string]struct{}, len(pool))
	out := make([]models.FlashcardItem, 0, len(pool))
	for _, item := range pool {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out
}

// IsCorrect reports whether optionID answers q.
func (q Question) IsCorrect(optionID string) bool {
	return optionID == q.Target.ID
}

func (q Question) hasOption(optionID string) bool {
	for _, o := range q.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}
