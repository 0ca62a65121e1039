package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"arccs-backend/models"
	"arccs-backend/oracle"
)

// SectionAnalysis is the outcome of extracting one document section.
// A failed oracle call degrades to ContainsRegulation=false with the error
// message recorded; extraction failures are never fatal to a batch.
type SectionAnalysis struct {
	SectionTitle       string                    `json:"section_title"`
	OriginalContent    string                    `json:"original_content,omitempty"`
	ContainsRegulation bool                      `json:"contains_regulation"`
	ConfidenceScore    float64                   `json:"confidence_score"`
	SectionSummary     string                    `json:"section_summary,omitempty"`
	IsIntroductory     bool                      `json:"is_introductory"`
	Regulations        []models.RegulationRecord `json:"regulations"`
	Error              string                    `json:"error,omitempty"`
}

// ExtractionService turns document sections into structured regulation
// records through one oracle call per section.
type ExtractionService struct {
	oracle oracle.Client
	model  string
}

// ExtractionServiceOption is a functional option for ExtractionService
type ExtractionServiceOption func(*ExtractionService)

// ExtractionWithOracle sets the oracle client
func ExtractionWithOracle(client oracle.Client) ExtractionServiceOption {
	return func(s *ExtractionService) {
		s.oracle = client
	}
}

// ExtractionWithModel sets the oracle model name
func ExtractionWithModel(model string) ExtractionServiceOption {
	return func(s *ExtractionService) {
		s.model = model
	}
}

// NewExtractionService creates a new extraction service
func NewExtractionService(opts ...ExtractionServiceOption) *ExtractionService {
	s := &ExtractionService{model: models.DefaultSettings().Model}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const extractionSystemInstruction = "You are a senior legal and compliance expert. " +
	"Extract regulatory details ONLY from sections with specific requirements. " +
	"Skip introductory, summary, or overview sections that merely mention regulations " +
	"without detailing them. Always respond with valid JSON only, no markdown formatting or code blocks."

// Extract analyzes one section. The oracle must first classify the section
// as introductory (overview chapters that merely reference rules explained
// elsewhere) or substantive; introductory sections contribute no records no
// matter what the oracle proposes alongside the flag.
func (s *ExtractionService) Extract(ctx context.Context, section models.Section) *SectionAnalysis {
	analysis := &SectionAnalysis{
		SectionTitle:    section.Title,
		OriginalContent: truncateContent(section.Content, 500),
		Regulations:     []models.RegulationRecord{},
	}

	if s.oracle == nil {
		analysis.Error = "oracle client not set"
		return analysis
	}

	raw, err := s.oracle.CompleteJSON(ctx, s.model, extractionSystemInstruction, buildExtractionPrompt(section))
	if err != nil {
		analysis.Error = err.Error()
		return analysis
	}

	var parsed SectionAnalysis
	if err := json.Unmarshal(raw, &parsed); err != nil {
		analysis.Error = fmt.Sprintf("unparseable oracle response: %v", err)
		return analysis
	}

	analysis.ContainsRegulation = parsed.ContainsRegulation
	analysis.ConfidenceScore = parsed.ConfidenceScore
	analysis.SectionSummary = parsed.SectionSummary
	analysis.IsIntroductory = parsed.IsIntroductory
	if parsed.IsIntroductory {
		return analysis
	}
	if parsed.Regulations != nil {
		analysis.Regulations = parsed.Regulations
	}
	return analysis
}

// ExtractAll processes sections independently and in order. One section's
// failure never blocks the others.
func (s *ExtractionService) ExtractAll(ctx context.Context, sections []models.Section) []*SectionAnalysis {
	results := make([]*SectionAnalysis, 0, len(sections))
	for i, section := range sections {
		log.Printf("Extracting [%d/%d] %s", i+1, len(sections), truncateContent(section.Title, 50))
		analysis := s.Extract(ctx, section)
		if analysis.ContainsRegulation {
			log.Printf("   found %d regulation(s)", len(analysis.Regulations))
		}
		results = append(results, analysis)
	}
	return results
}

// CollectRegulations flattens the records of every section that contained
// regulations, stamping each record with its originating section title.
func CollectRegulations(results []*SectionAnalysis) []models.RegulationRecord {
	var all []models.RegulationRecord
	for _, result := range results {
		if !result.ContainsRegulation {
			continue
		}
		for _, record := range result.Regulations {
			record[models.KeySourceSection] = result.SectionTitle
			all = append(all, record)
		}
	}
	return all
}

func truncateContent(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// buildExtractionPrompt renders the structured-extraction instruction set.
// The response template mirrors the full RegulationRecord schema; the oracle
// fills what the section supports and nulls the rest.
func buildExtractionPrompt(section models.Section) string {
	return fmt.Sprintf(`You are a senior legal and compliance expert specializing in regulatory analysis. Analyze the following document section and extract ALL regulatory information in extreme detail.

SECTION TITLE: %s

SECTION CONTENT:
%s

---

CRITICAL FILTERING RULES - READ CAREFULLY:

Before extracting any regulations, determine if this section is:

1. **INTRODUCTORY/GENERAL SECTION** - DO NOT EXTRACT regulations if the section:
   - Is a table of contents, preamble, or general introduction
   - Only MENTIONS regulations that will be "explained later" or "detailed below"
   - Provides a high-level overview without specific requirements
   - Lists regulation names/numbers without explaining their actual requirements
   - Says things like "the following articles shall apply", "as detailed in subsequent chapters"
   - Is a summary or recital that doesn't contain actionable compliance requirements

2. **DETAILED/SPECIFIC SECTION** - EXTRACT regulations only if the section:
   - Contains SPECIFIC requirements, obligations, or prohibitions
   - Explains WHAT must be done, HOW, and by WHOM
   - Provides actual compliance criteria, not just references
   - Contains concrete definitions, procedures, or thresholds

If this is an introductory/general section, return:
{
    "contains_regulation": false,
    "confidence_score": 0.0,
    "section_summary": "Introductory/overview section - regulations mentioned but not detailed here",
    "is_introductory": true,
    "regulations": []
}

---

If this section DOES contain detailed regulation information, provide a comprehensive JSON response with the following structure:

{
    "contains_regulation": true/false,
    "confidence_score": 0.0-1.0,
    "section_summary": "Detailed summary of what this section covers",
    "is_introductory": false,

    "regulations": [
        {
            "regulation_id": "Official ID (e.g., GDPR Article 5, ISO 27001:2022)",
            "regulation_name": "Full official name of the regulation",
            "regulation_type": "law | directive | regulation | standard | guideline | framework | policy | article | clause",

            "jurisdiction": {
                "geographic_scope": "EU | US | UK | International | Global | Country-specific",
                "applicable_regions": ["List of specific regions/countries"],
                "cross_border_applicability": true/false
            },

            "domain": {
                "primary_domain": "Data Protection | Financial | Environmental | Health & Safety | Cybersecurity | AI Ethics | Consumer Protection | Employment | Tax | Trade",
                "sub_domains": ["List of specific sub-areas"],
                "industry_sectors": ["List of industries this applies to"]
            },

            "description": {
                "brief_summary": "One paragraph summary",
                "detailed_explanation": "Comprehensive explanation of the regulation",
                "purpose": "Why this regulation exists",
                "legislative_intent": "What the lawmakers intended to achieve"
            },

            "scope": {
                "what_it_covers": ["List of activities/processes covered"],
                "who_it_applies_to": {
                    "target_entities": ["Organizations", "Individuals", "Specific roles"],
                    "entity_types": ["Private companies", "Public bodies", "Non-profits"],
                    "size_thresholds": "Any size requirements (e.g., companies with >250 employees)",
                    "geographic_presence": "Location requirements"
                },
                "what_it_does_not_cover": ["Explicitly excluded items"]
            },

            "requirements": {
                "mandatory_obligations": ["List of MUST DO requirements"],
                "prohibited_actions": ["List of MUST NOT DO restrictions"],
                "conditional_requirements": ["Requirements that apply under certain conditions"],
                "documentation_requirements": ["Required records/documents"],
                "reporting_requirements": ["Required reports/notifications"],
                "timeline_requirements": ["Deadlines, response times, retention periods"]
            },

            "restrictions": {
                "general_restrictions": ["Overall limitations imposed"],
                "data_restrictions": ["Limits on data handling if applicable"],
                "operational_restrictions": ["Limits on business operations"],
                "technical_restrictions": ["Technical limitations required"],
                "geographic_restrictions": ["Location-based limitations"]
            },

            "rights_granted": {
                "individual_rights": ["Rights given to individuals"],
                "organizational_rights": ["Rights given to organizations"],
                "how_to_exercise_rights": ["Process to claim these rights"]
            },

            "exceptions": {
                "general_exceptions": ["When the regulation does NOT apply"],
                "conditional_exemptions": ["Partial exemptions under conditions"],
                "legitimate_interest_exceptions": ["Exceptions based on legitimate interests"],
                "public_interest_exceptions": ["Government/public sector exceptions"],
                "size_based_exceptions": ["Exemptions for small businesses etc."]
            },

            "compliance_requirements": {
                "technical_measures": ["Required technical implementations"],
                "organizational_measures": ["Required policies/procedures"],
                "security_measures": ["Security requirements"],
                "training_requirements": ["Staff training needed"],
                "audit_requirements": ["Audit/assessment requirements"],
                "certification_requirements": ["Required certifications"]
            },

            "enforcement": {
                "regulatory_authority": "Who enforces this",
                "penalties": {
                    "financial_penalties": "Fines description and amounts",
                    "criminal_penalties": "Criminal consequences if any",
                    "administrative_penalties": "Administrative sanctions",
                    "reputational_consequences": "Public disclosure etc."
                },
                "enforcement_mechanisms": ["How violations are detected/handled"]
            },

            "dates": {
                "effective_date": "When it came into force",
                "compliance_deadline": "When compliance was/is required",
                "review_date": "When it will be reviewed",
                "amendment_history": ["Previous changes"]
            },

            "related_regulations": {
                "parent_legislation": "Higher-level law this derives from",
                "related_articles": ["Other articles in same regulation"],
                "complementary_regulations": ["Other regulations that work together"],
                "superseded_regulations": ["What this replaced"]
            },

            "practical_implications": {
                "implementation_steps": ["Steps to achieve compliance"],
                "common_violations": ["Typical mistakes/violations"],
                "best_practices": ["Recommended approaches"],
                "compliance_checklist": ["Key items to verify"]
            },

            "keywords": ["Relevant search terms"],
            "key_definitions": {
                "term": "definition"
            }
        }
    ]
}

IMPORTANT:
- DO NOT extract regulations from introductory/overview sections
- Extract ONLY from sections with SPECIFIC, ACTIONABLE requirements
- If information is not available, use null instead of guessing
- Be extremely thorough - this will be used for compliance checking
- Include exact quotes where relevant
- Identify ALL restrictions, exceptions, and requirements mentioned

Return ONLY valid JSON.`, section.Title, section.Content)
}
