package analyzer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/finding"
	"github.com/abodks10-ai/Pred-Guard/internal/intel"
)

// AIAnalysis forwards a bounded view of the fetched page to the opaque AI
// analysis service and converts its validated issues into vulnerability
// findings. A feed failure fails this module only.
type AIAnalysis struct {
	engine intel.AIAnalyzer
}

func NewAIAnalysis(engine intel.AIAnalyzer) *AIAnalysis {
	return &AIAnalysis{engine: engine}
}

func (a *AIAnalysis) Name() string { return "ai" }

func (a *AIAnalysis) Analyze(ctx context.Context, in Input) (*Findings, error) {
	out := &Findings{}
	if a.engine == nil || in.Probe == nil {
		return out, nil
	}

	content := intel.SiteContent{
		URL:         in.Probe.URL,
		BodySnippet: in.Probe.Snippet(),
		HeaderLines: headerLines(in),
	}
	if in.Extraction != nil {
		content.Title = in.Extraction.Title
		content.Technologies = in.Extraction.Technologies
	}

	report, err := a.engine.Analyze(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("ai analysis: %w", err)
	}
	out.AIReport = report

	websiteID := int64(0)
	if in.History != nil && in.History.Website != nil {
		websiteID = in.History.Website.ID()
	}
	for _, issue := range report.Issues {
		out.Vulnerabilities = append(out.Vulnerabilities, &finding.CodeVulnerability{
			WebsiteID:         websiteID,
			VulnerabilityType: "ai_" + string(issue.Kind),
			Location:          issue.Location,
			Severity:          issue.Severity,
			Description:       issue.Description,
			Recommendation:    "review the reported issue and remediate the affected surface",
			DetectedAt:        in.Now,
		})
	}
	return out, nil
}

func headerLines(in Input) []string {
	lines := make([]string, 0, len(in.Probe.Headers))
	for name, values := range in.Probe.Headers {
		lines = append(lines, name+": "+strings.Join(values, ", "))
	}
	sort.Strings(lines)
	return lines
}
