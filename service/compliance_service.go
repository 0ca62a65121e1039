package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"arccs-backend/models"
	"arccs-backend/oracle"
)

const (
	defaultMaxRegulations = 10
	// humanReviewThreshold is the confidence floor below which an otherwise
	// clean verdict is routed to a human reviewer instead of auto-passing.
	humanReviewThreshold = 0.7
)

// ComplianceService checks a proposal document against individual regulation
// records. Each check is one oracle call; the final status is derived here,
// not taken from the oracle's own verdict string.
type ComplianceService struct {
	oracle         oracle.Client
	model          string
	failMode       models.FailMode
	maxRegulations int
}

// ComplianceServiceOption is a functional option for ComplianceService
type ComplianceServiceOption func(*ComplianceService)

// ComplianceWithOracle sets the oracle client
func ComplianceWithOracle(client oracle.Client) ComplianceServiceOption {
	return func(s *ComplianceService) {
		s.oracle = client
	}
}

// ComplianceWithModel sets the oracle model name
func ComplianceWithModel(model string) ComplianceServiceOption {
	return func(s *ComplianceService) {
		s.model = model
	}
}

// ComplianceWithFailMode sets how oracle failures resolve: fail_open treats
// an unanswered check as compliant, fail_closed escalates it to human review
func ComplianceWithFailMode(mode models.FailMode) ComplianceServiceOption {
	return func(s *ComplianceService) {
		s.failMode = mode
	}
}

// ComplianceWithMaxRegulations caps how many records one run checks
func ComplianceWithMaxRegulations(max int) ComplianceServiceOption {
	return func(s *ComplianceService) {
		if max > 0 {
			s.maxRegulations = max
		}
	}
}

// NewComplianceService creates a new compliance classification service
func NewComplianceService(opts ...ComplianceServiceOption) *ComplianceService {
	s := &ComplianceService{
		model:          models.DefaultSettings().Model,
		failMode:       models.FailOpen,
		maxRegulations: defaultMaxRegulations,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// oracleVerdict is what the oracle returns for one check. Its status field is
// deliberately ignored in favor of deriveStatus.
type oracleVerdict struct {
	ContradictionFound     bool    `json:"contradiction_found"`
	HasRelevantInformation bool    `json:"has_relevant_information"`
	MissingInformation     string  `json:"missing_information"`
	ContradictionDetails   string  `json:"contradiction_details"`
	Evidence               string  `json:"evidence"`
	ConfidenceScore        float64 `json:"confidence_score"`
	Explanation            string  `json:"explanation"`
}

// deriveStatus applies the verdict precedence: a found contradiction always
// wins, then missing information, then low confidence; only a confident,
// contradiction-free, informed verdict is COMPLIANT.
func deriveStatus(contradictionFound, hasRelevantInformation bool, confidence float64) models.ComplianceStatus {
	switch {
	case contradictionFound:
		return models.StatusNonCompliant
	case !hasRelevantInformation:
		return models.StatusInsufficientInfo
	case confidence < humanReviewThreshold:
		return models.StatusHumanRequired
	default:
		return models.StatusCompliant
	}
}

const complianceSystemInstruction = "You are a rigorous compliance auditor. " +
	"You look for DIRECT CONTRADICTIONS between a proposal and a regulation. " +
	"Absence of information is not a contradiction. " +
	"Always respond with valid JSON only, no markdown formatting or code blocks."

func buildCompliancePrompt(regulation models.RegulationRecord, proposalText string) string {
	encoded, _ := json.MarshalIndent(regulation, "", "  ")
	return fmt.Sprintf(`Check whether the following PROPOSAL contradicts the following REGULATION.

REGULATION:
%s

PROPOSAL:
%s

---

Analyze carefully:

1. CONTRADICTION: Does the proposal state or plan anything that DIRECTLY
   violates an obligation, prohibition, or threshold of this regulation?
   A contradiction requires an explicit conflict, for example the regulation
   demands a minimum and the proposal specifies a lower value. Merely not
   mentioning a requirement is NOT a contradiction.

2. RELEVANT INFORMATION: Does the proposal contain enough information on the
   subject matter of this regulation to judge it at all? If the proposal never
   touches the regulation's domain, there is no relevant information.

3. CONFIDENCE: How confident are you in this assessment, from 0.0 to 1.0?

Respond with JSON:
{
    "contradiction_found": true/false,
    "has_relevant_information": true/false,
    "missing_information": "what would be needed to judge, or null",
    "contradiction_details": "exact nature of the conflict, or null",
    "evidence": "verbatim quotes from the proposal supporting the verdict, or null",
    "confidence_score": 0.0-1.0,
    "explanation": "short reasoning for the verdict"
}

Return ONLY valid JSON.`, string(encoded), proposalText)
}

// Classify checks one regulation against the proposal text. Oracle failures
// resolve per the configured fail mode and are recorded on the result.
func (s *ComplianceService) Classify(ctx context.Context, regulation models.RegulationRecord, proposalText string) models.ComplianceResult {
	result := models.ComplianceResult{
		RegulationID:   regulation.ID(),
		RegulationName: regulation.Name(),
	}

	if s.oracle == nil {
		return s.failedResult(result, "oracle client not set")
	}

	raw, err := s.oracle.CompleteJSON(ctx, s.model, complianceSystemInstruction, buildCompliancePrompt(regulation, proposalText))
	if err != nil {
		return s.failedResult(result, err.Error())
	}

	var verdict oracleVerdict
	if err := json.Unmarshal(raw, &verdict); err != nil {
		return s.failedResult(result, fmt.Sprintf("unparseable oracle response: %v", err))
	}

	result.ContradictionFound = verdict.ContradictionFound
	result.HasRelevantInformation = verdict.HasRelevantInformation
	result.MissingInformation = verdict.MissingInformation
	result.ContradictionDetails = verdict.ContradictionDetails
	result.Evidence = verdict.Evidence
	result.ConfidenceScore = verdict.ConfidenceScore
	result.Explanation = verdict.Explanation
	result.ComplianceStatus = deriveStatus(verdict.ContradictionFound, verdict.HasRelevantInformation, verdict.ConfidenceScore)
	return result
}

func (s *ComplianceService) failedResult(result models.ComplianceResult, reason string) models.ComplianceResult {
	result.Error = reason
	result.ConfidenceScore = 0
	if s.failMode == models.FailClosed {
		result.ComplianceStatus = models.StatusHumanRequired
		result.Explanation = "Check failed; escalated to human review"
		return result
	}
	result.ComplianceStatus = models.StatusCompliant
	result.Explanation = "Check failed; treated as compliant (no contradiction demonstrated)"
	return result
}

// ClassifyAll checks up to the configured maximum of regulations, in order.
// Results line up one-to-one with the checked prefix of the input.
func (s *ComplianceService) ClassifyAll(ctx context.Context, regulations []models.RegulationRecord, proposalText string) []models.ComplianceResult {
	checked := regulations
	if len(checked) > s.maxRegulations {
		log.Printf("Capping compliance run at %d of %d regulations", s.maxRegulations, len(checked))
		checked = checked[:s.maxRegulations]
	}

	results := make([]models.ComplianceResult, 0, len(checked))
	for i, regulation := range checked {
		log.Printf("Checking [%d/%d] %s", i+1, len(checked), regulation.ID())
		result := s.Classify(ctx, regulation, proposalText)
		log.Printf("   %s (confidence %.2f)", result.ComplianceStatus, result.ConfidenceScore)
		results = append(results, result)
	}
	return results
}
