package service

import (
	"testing"

	"arccs-backend/models"
)

func result(id string, status models.ComplianceStatus) models.ComplianceResult {
	return models.ComplianceResult{RegulationID: id, ComplianceStatus: status}
}

func TestBuildReportMixedVerdicts(t *testing.T) {
	// Two compliant, one violation: rate counts definitive verdicts only.
	report := BuildReport([]models.ComplianceResult{
		result("R-1", models.StatusCompliant),
		result("R-2", models.StatusCompliant),
		result("R-3", models.StatusNonCompliant),
	})

	if report.OverallStatus != models.OverallNonCompliant {
		t.Errorf("overall = %s, want NON_COMPLIANT", report.OverallStatus)
	}
	if report.Summary.ComplianceRate != 66.7 {
		t.Errorf("rate = %.1f, want 66.7", report.Summary.ComplianceRate)
	}
	if len(report.Violations) != 1 || report.Violations[0].RegulationID != "R-3" {
		t.Errorf("violations = %+v", report.Violations)
	}
	if report.Summary.Total != 3 {
		t.Errorf("total = %d, want 3", report.Summary.Total)
	}
}

func TestBuildReportIndefiniteVerdictsExcludedFromRate(t *testing.T) {
	report := BuildReport([]models.ComplianceResult{
		result("R-1", models.StatusCompliant),
		result("R-2", models.StatusInsufficientInfo),
		result("R-3", models.StatusHumanRequired),
	})

	if report.Summary.ComplianceRate != 100 {
		t.Errorf("rate = %.1f, want 100 (indefinite verdicts excluded)", report.Summary.ComplianceRate)
	}
	if report.OverallStatus != models.OverallReviewRequired {
		t.Errorf("overall = %s, want REVIEW_REQUIRED", report.OverallStatus)
	}
	if len(report.NeedsReview) != 2 {
		t.Fatalf("needs_review has %d entries, want 2", len(report.NeedsReview))
	}
	if report.NeedsReview[0].RegulationID != "R-2" || report.NeedsReview[1].RegulationID != "R-3" {
		t.Errorf("needs_review = %+v, want R-2 then R-3", report.NeedsReview)
	}
}

func TestBuildReportNeedsReviewCollectsBothIndefiniteStatuses(t *testing.T) {
	report := BuildReport([]models.ComplianceResult{
		result("R-1", models.StatusInsufficientInfo),
		result("R-2", models.StatusHumanRequired),
	})
	if len(report.NeedsReview) != 2 {
		t.Fatalf("needs_review has %d entries, want 2", len(report.NeedsReview))
	}
	if report.NeedsReview[0].RegulationID != "R-1" || report.NeedsReview[1].RegulationID != "R-2" {
		t.Errorf("needs_review order = %+v, want input order", report.NeedsReview)
	}
}

func TestBuildReportNoDefinitiveResults(t *testing.T) {
	report := BuildReport([]models.ComplianceResult{
		result("R-1", models.StatusInsufficientInfo),
		result("R-2", models.StatusHumanRequired),
	})
	if report.Summary.ComplianceRate != 0 {
		t.Errorf("rate = %.1f, want 0 when nothing is definitive", report.Summary.ComplianceRate)
	}
	if report.OverallStatus != models.OverallReviewRequired {
		t.Errorf("overall = %s, want REVIEW_REQUIRED", report.OverallStatus)
	}
}

func TestBuildReportAllCompliant(t *testing.T) {
	report := BuildReport([]models.ComplianceResult{
		result("R-1", models.StatusCompliant),
		result("R-2", models.StatusCompliant),
	})
	if report.OverallStatus != models.OverallCompliant {
		t.Errorf("overall = %s, want COMPLIANT", report.OverallStatus)
	}
	if report.Summary.ComplianceRate != 100 {
		t.Errorf("rate = %.1f, want 100", report.Summary.ComplianceRate)
	}
	if len(report.Violations) != 0 || len(report.NeedsReview) != 0 {
		t.Error("clean run must have empty violation and review lists")
	}
}

func TestBuildReportEmpty(t *testing.T) {
	report := BuildReport(nil)
	if report.OverallStatus != models.OverallCompliant {
		t.Errorf("overall = %s, want COMPLIANT for an empty run", report.OverallStatus)
	}
	if report.Summary.Total != 0 || report.Summary.ComplianceRate != 0 {
		t.Errorf("summary = %+v", report.Summary)
	}
	if report.DetailedResults == nil || report.Violations == nil || report.NeedsReview == nil {
		t.Error("report lists must be non-nil")
	}
}

func TestBuildReportViolationsPreserveOrder(t *testing.T) {
	report := BuildReport([]models.ComplianceResult{
		result("R-3", models.StatusNonCompliant),
		result("R-1", models.StatusCompliant),
		result("R-2", models.StatusNonCompliant),
	})
	if len(report.Violations) != 2 {
		t.Fatalf("violations = %d, want 2", len(report.Violations))
	}
	if report.Violations[0].RegulationID != "R-3" || report.Violations[1].RegulationID != "R-2" {
		t.Error("violations must preserve input order")
	}
}
