package intel

import (
	"bytes"
	"context"
	"io"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/finding"
)

func jsonBody(b []byte) io.Reader { return bytes.NewReader(b) }

// Static is a fixture implementation of every collaborator contract, used by
// tests and by standalone one-shot checks where no feeds are configured.
type Static struct {
	Verdicts   map[string]LinkVerdict
	Trends     []AttackTrend
	Clones     map[string][]CloneCandidate
	Average    int
	Percentile int
	Report     *AIReport
	// Fail forces errors from every method, for failure-isolation tests.
	Fail error
	// MitigationErr forces Execute failures independently of Fail.
	MitigationErr error

	Executed []Mitigation
}

func (s *Static) Lookup(_ context.Context, url string) (LinkVerdict, error) {
	if s.Fail != nil {
		return LinkVerdict{}, s.Fail
	}
	if v, ok := s.Verdicts[url]; ok {
		return v, nil
	}
	return LinkVerdict{ThreatType: finding.ThreatUnknown}, nil
}

func (s *Static) CurrentTrends(_ context.Context) ([]AttackTrend, error) {
	if s.Fail != nil {
		return nil, s.Fail
	}
	return s.Trends, nil
}

func (s *Static) Candidates(_ context.Context, domain string) ([]CloneCandidate, error) {
	if s.Fail != nil {
		return nil, s.Fail
	}
	return s.Clones[domain], nil
}

func (s *Static) IndustryStats(_ context.Context, _ int) (int, int, error) {
	if s.Fail != nil {
		return 0, 0, s.Fail
	}
	return s.Average, s.Percentile, nil
}

func (s *Static) Analyze(_ context.Context, _ SiteContent) (*AIReport, error) {
	if s.Fail != nil {
		return nil, s.Fail
	}
	if s.Report == nil {
		return &AIReport{Summary: "no findings", OverallRisk: "low"}, nil
	}
	if err := s.Report.Validate(); err != nil {
		return nil, err
	}
	return s.Report, nil
}

func (s *Static) Execute(_ context.Context, m Mitigation) error {
	if s.MitigationErr != nil {
		return s.MitigationErr
	}
	if s.Fail != nil {
		return s.Fail
	}
	s.Executed = append(s.Executed, m)
	return nil
}
