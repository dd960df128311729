// Package eligibility scores leads from the public visa simulator.
package eligibility

import "assistancevoyage/models"

type Verdict string

const (
	VerdictExcellent Verdict = "excellent"
	VerdictPromising Verdict = "promising"
	VerdictToAnalyse Verdict = "to_analyse"
)

type Result struct {
	Score   int     `json:"score"`
	Verdict Verdict `json:"verdict"`
	Message string  `json:"message"`
	Color   string  `json:"color"`
}

// Evaluate scores the financial situation and the age/study level fit.
func Evaluate(f models.SimulationForm) Result {
	score := 0

	switch f.FinancialSituation {
	case "fort":
		score += 5
	case "moyen":
		score += 3
	}

	// young graduates fit student and work programs best
	if f.Age < 30 && (f.StudyLevel == "bac_plus_3" || f.StudyLevel == "bac_plus_5") {
		score += 3
	} else if f.Age < 22 && f.StudyLevel == "bac" {
		score += 3
	}

	switch {
	case score >= 6:
		return Result{score, VerdictExcellent, "Excellent profil ! Vos chances sont élevées.", "green"}
	case score >= 3:
		return Result{score, VerdictPromising, "Profil intéressant, mais quelques points sont à renforcer.", "yellow"}
	}
	return Result{score, VerdictToAnalyse, "Profil complexe. Un accompagnement personnalisé est nécessaire.", "red"}
}

// GuideKeyword is the text searched in guide destinations for the
// simulator destination value.
func GuideKeyword(destination string) string {
	if kw, ok := models.DestinationKeywords[destination]; ok {
		return kw
	}
	return destination
}
