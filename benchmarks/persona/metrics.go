// ABOUTME: Persona metrics for rule adherence and history recall
// ABOUTME: Deterministic phrase matching against each scenario's ground truth

package persona

import (
	"fmt"
	"strings"
)

// MetricsCalculator scores replies against ground truth
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateAdherence scores (0.0-1.0) whether the reply follows the persona rules:
// every expected group matched and no forbidden phrase present
func (m *MetricsCalculator) CalculateAdherence(
	response string,
	expectedAnyOf [][]string,
	forbiddenInResponse []string,
) (float64, string) {
	responseUpper := strings.ToUpper(response)

	missingGroups := []string{}
	for _, group := range expectedAnyOf {
		if !containsAny(responseUpper, group) {
			missingGroups = append(missingGroups, strings.Join(group, "|"))
		}
	}

	forbiddenFound := []string{}
	for _, forbidden := range forbiddenInResponse {
		if strings.Contains(responseUpper, strings.ToUpper(forbidden)) {
			forbiddenFound = append(forbiddenFound, forbidden)
		}
	}

	switch {
	case len(missingGroups) == 0 && len(forbiddenFound) == 0:
		return 1.0, "Reply follows the persona rules"
	case len(missingGroups) > 0 && len(forbiddenFound) > 0:
		return 0.0, fmt.Sprintf(
			"Persona failure - missing expected phrases: %v, forbidden phrases found: %v",
			missingGroups, forbiddenFound,
		)
	case len(missingGroups) > 0:
		return 0.5, fmt.Sprintf("Partial adherence - missing expected phrases: %v", missingGroups)
	default:
		return 0.5, fmt.Sprintf("Partial adherence - forbidden phrases found: %v", forbiddenFound)
	}
}

// CalculateRecall scores (0.0-1.0) how many earlier details the reply carries forward
func (m *MetricsCalculator) CalculateRecall(response string, expectedItems []string) (float64, string) {
	if len(expectedItems) == 0 {
		return 1.0, "No recall required"
	}

	responseUpper := strings.ToUpper(response)
	foundCount := 0
	missingItems := []string{}
	for _, item := range expectedItems {
		if strings.Contains(responseUpper, strings.ToUpper(item)) {
			foundCount++
		} else {
			missingItems = append(missingItems, item)
		}
	}

	recall := float64(foundCount) / float64(len(expectedItems))
	if recall == 1.0 {
		return 1.0, "Perfect recall - all earlier details carried forward"
	}
	return recall, fmt.Sprintf("Partial recall (%.2f) - missing items: %v", recall, missingItems)
}

// EvaluateTest scores the final reply of a scenario
func (m *MetricsCalculator) EvaluateTest(scenario TestScenario, finalResponse string) TestResult {
	adherence, adherenceDetail := m.CalculateAdherence(
		finalResponse,
		scenario.GroundTruth.ExpectedAnyOf,
		scenario.GroundTruth.ForbiddenInResponse,
	)
	recall, recallDetail := m.CalculateRecall(finalResponse, scenario.GroundTruth.ExpectedRecallItems)

	status := "FAIL"
	if adherence >= 0.9 && recall >= 0.9 {
		status = "PASS"
	}

	return TestResult{
		TestID:         scenario.ID,
		TestName:       scenario.Name,
		AdherenceScore: adherence,
		RecallScore:    recall,
		OverallScore:   (adherence + recall) / 2.0,
		Status:         status,
		Details: map[string]interface{}{
			"adherence_detail": adherenceDetail,
			"recall_detail":    recallDetail,
			"final_response":   preview(finalResponse, 200),
		},
	}
}

func containsAny(upper string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(upper, strings.ToUpper(p)) {
			return true
		}
	}
	return false
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
