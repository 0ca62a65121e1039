package service

import (
	"math"

	"arccs-backend/models"
)

// BuildReport reduces a result list to a compliance report. The compliance
// rate counts definitive verdicts only: compliant / (compliant +
// non_compliant), as a percentage rounded to one decimal, 0 when nothing was
// definitive. Violations and needs-review lists preserve the input order.
func BuildReport(results []models.ComplianceResult) *models.ComplianceReport {
	report := &models.ComplianceReport{
		Violations:      []models.ComplianceResult{},
		NeedsReview:     []models.ComplianceResult{},
		DetailedResults: results,
	}
	if report.DetailedResults == nil {
		report.DetailedResults = []models.ComplianceResult{}
	}

	for _, result := range results {
		switch result.ComplianceStatus {
		case models.StatusCompliant:
			report.Summary.Compliant++
		case models.StatusNonCompliant:
			report.Summary.NonCompliant++
			report.Violations = append(report.Violations, result)
		case models.StatusInsufficientInfo:
			report.Summary.InsufficientInfo++
			report.NeedsReview = append(report.NeedsReview, result)
		case models.StatusHumanRequired:
			report.Summary.HumanRequired++
			report.NeedsReview = append(report.NeedsReview, result)
		}
	}
	report.Summary.Total = len(results)

	definitive := report.Summary.Compliant + report.Summary.NonCompliant
	if definitive > 0 {
		rate := float64(report.Summary.Compliant) / float64(definitive) * 100
		report.Summary.ComplianceRate = math.Round(rate*10) / 10
	}

	switch {
	case report.Summary.NonCompliant > 0:
		report.OverallStatus = models.OverallNonCompliant
	case report.Summary.HumanRequired > 0 || report.Summary.InsufficientInfo > 0:
		report.OverallStatus = models.OverallReviewRequired
	default:
		report.OverallStatus = models.OverallCompliant
	}
	return report
}
