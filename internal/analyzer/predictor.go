package analyzer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/alert"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/finding"
	"github.com/abodks10-ai/Pred-Guard/internal/intel"
	"github.com/abodks10-ai/Pred-Guard/internal/shared/constants"
)

// Prevalence at which a global trend becomes worth predicting against.
const trendPrevalenceFloor = 40

// AttackPredictor correlates external trend data with a website's own alert
// and behavior history to produce time-bounded predictions, aggregated
// attacker profiles and visitor classifications.
type AttackPredictor struct {
	trends intel.TrendFeed
}

func NewAttackPredictor(trends intel.TrendFeed) *AttackPredictor {
	return &AttackPredictor{trends: trends}
}

func (p *AttackPredictor) Name() string { return "predictor" }

func (p *AttackPredictor) Analyze(ctx context.Context, in Input) (*Findings, error) {
	out := &Findings{}
	websiteID := int64(0)
	if in.History != nil && in.History.Website != nil {
		websiteID = in.History.Website.ID()
	}

	p.predictFromTrends(ctx, in, websiteID, out)
	p.predictTargeted(in, websiteID, out)
	p.predictChain(in, websiteID, out)
	return out, nil
}

// predictFromTrends matches global attack trends against the site's detected
// technology stack. Trend feed failure degrades to no trend predictions.
func (p *AttackPredictor) predictFromTrends(ctx context.Context, in Input, websiteID int64, out *Findings) {
	if p.trends == nil || in.Extraction == nil {
		return
	}
	trends, err := p.trends.CurrentTrends(ctx)
	if err != nil {
		return
	}

	tech := make(map[string]bool, len(in.Extraction.Technologies))
	for _, t := range in.Extraction.Technologies {
		tech[strings.ToLower(t)] = true
	}

	for _, tr := range trends {
		if tr.Prevalence < trendPrevalenceFloor {
			continue
		}
		var matched []string
		for _, target := range tr.TargetedTech {
			if tech[strings.ToLower(target)] {
				matched = append(matched, target)
			}
		}
		if len(matched) == 0 {
			continue
		}
		out.Predictions = append(out.Predictions, &finding.AttackPrediction{
			WebsiteID:           websiteID,
			PredictionType:      finding.PredictionGlobalTrend,
			ThreatLevel:         levelForProbability(tr.Prevalence),
			PredictedAttackType: tr.AttackType,
			Probability:         tr.Prevalence,
			Timeframe:           tr.Timeframe,
			Reasoning: fmt.Sprintf("%s activity at %d%% prevalence targets %s",
				tr.AttackType, tr.Prevalence, strings.Join(matched, ", ")),
			PreventiveMeasures: measuresFor(tr.AttackType),
			Active:             true,
			CreatedAt:          in.Now,
			ExpiresAt:          in.Now.Add(constants.PredictionTTL),
		})
	}
}

// predictTargeted looks for direct hostile signals against this site:
// intrusion alerts and anomalous behavior fingerprints. These also feed the
// attacker-pattern aggregate and visitor classification.
func (p *AttackPredictor) predictTargeted(in Input, websiteID int64, out *Findings) {
	if in.History == nil {
		return
	}

	var techniques []string
	intrusions := 0
	for _, a := range in.History.RecentAlerts {
		switch a.Type() {
		case alert.TypeIntrusionAttempt:
			intrusions++
			techniques = append(techniques, "intrusion_probe")
		case alert.TypeMaliciousLink:
			techniques = append(techniques, "link_injection")
		case alert.TypeBehaviorAnomaly:
			techniques = append(techniques, "behavior_manipulation")
		}
	}

	anomalous := false
	for _, fp := range in.History.Fingerprints {
		if fp != nil && fp.Anomalous {
			anomalous = true
			techniques = append(techniques, "traffic_anomaly")
		}
	}

	if len(techniques) == 0 {
		return
	}

	probability := 30 + 15*intrusions + 10*(len(techniques)-intrusions)
	if anomalous {
		probability += 10
	}
	if probability > 95 {
		probability = 95
	}

	sort.Strings(techniques)
	techniques = dedupStrings(techniques)
	hash := patternHash(websiteID, techniques)

	out.Predictions = append(out.Predictions, &finding.AttackPrediction{
		WebsiteID:           websiteID,
		PredictionType:      finding.PredictionTargeted,
		ThreatLevel:         levelForProbability(probability),
		PredictedAttackType: "targeted_attack",
		Probability:         probability,
		Timeframe:           "7d",
		Reasoning: fmt.Sprintf("%d hostile signal(s) observed against this site: %s",
			len(techniques), strings.Join(techniques, ", ")),
		PreventiveMeasures: []string{
			"review access logs for the flagged time window",
			"tighten rate limits on authentication endpoints",
			"rotate credentials exposed to the affected surfaces",
		},
		Active:    true,
		CreatedAt: in.Now,
		ExpiresAt: in.Now.Add(constants.PredictionTTL),
	})

	out.AttackerPatterns = append(out.AttackerPatterns, &finding.AttackerPattern{
		WebsiteID:     websiteID,
		PatternHash:   hash,
		Profile:       "recurring adversary reconstructed from alert history",
		Techniques:    techniques,
		TargetedAreas: targetedAreas(in),
		FirstSeen:     in.Now,
		LastSeen:      in.Now,
		AttackCount:   1,
		ThreatLevel:   levelForProbability(probability),
	})

	out.Visitors = append(out.Visitors, &finding.VisitorAnalysis{
		WebsiteID:         websiteID,
		SessionID:         hash[:12],
		VisitorType:       finding.VisitorAttacker,
		Intent:            "malicious",
		BehaviorScore:     probability,
		RequestCount:      len(techniques),
		SuspiciousActions: techniques,
		FirstSeen:         in.Now,
		LastSeen:          in.Now,
	})
}

// predictChain detects a reconnaissance-to-exploitation sequence in the alert
// history: an exposed weakness followed by an active hostile signal.
func (p *AttackPredictor) predictChain(in Input, websiteID int64, out *Findings) {
	if in.History == nil {
		return
	}

	weakness := false
	hostile := false
	var chain []string
	// RecentAlerts is newest first; walk oldest first to read the sequence.
	for i := len(in.History.RecentAlerts) - 1; i >= 0; i-- {
		a := in.History.RecentAlerts[i]
		switch a.Type() {
		case alert.TypeVulnerability, alert.TypeCodeWeakness, alert.TypeSSLIssue:
			weakness = true
			chain = append(chain, string(a.Type()))
		case alert.TypeIntrusionAttempt, alert.TypeMaliciousLink, alert.TypePhishing:
			if weakness {
				hostile = true
				chain = append(chain, string(a.Type()))
			}
		}
	}
	if !hostile {
		return
	}

	out.Predictions = append(out.Predictions, &finding.AttackPrediction{
		WebsiteID:           websiteID,
		PredictionType:      finding.PredictionChainAnalysis,
		ThreatLevel:         finding.SeverityHigh,
		PredictedAttackType: "exploitation_of_known_weakness",
		Probability:         75,
		Timeframe:           "72h",
		Reasoning: fmt.Sprintf("hostile activity followed an exposed weakness: %s",
			strings.Join(chain, " -> ")),
		PreventiveMeasures: []string{
			"remediate the open weaknesses before they are chained",
			"enable stricter monitoring for the affected website",
		},
		Active:    true,
		CreatedAt: in.Now,
		ExpiresAt: in.Now.Add(constants.PredictionTTL),
	})
}

func targetedAreas(in Input) []string {
	if in.Extraction == nil {
		return nil
	}
	areas := []string{}
	if in.Extraction.FormCount > 0 {
		areas = append(areas, "forms")
	}
	if len(in.Extraction.Scripts) > 0 {
		areas = append(areas, "scripts")
	}
	if len(in.Extraction.ExternalHosts) > 0 {
		areas = append(areas, "third_party_embeds")
	}
	return areas
}

func patternHash(websiteID int64, techniques []string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%s", websiteID, strings.Join(techniques, ","))
	return hex.EncodeToString(h.Sum(nil))
}

func levelForProbability(p int) string {
	switch {
	case p >= 80:
		return finding.SeverityCritical
	case p >= 60:
		return finding.SeverityHigh
	case p >= 40:
		return finding.SeverityMedium
	default:
		return finding.SeverityLow
	}
}

func dedupStrings(in []string) []string {
	out := in[:0]
	var prev string
	for i, s := range in {
		if i == 0 || s != prev {
			out = append(out, s)
		}
		prev = s
	}
	return out
}

var attackMeasures = map[string][]string{
	"sql_injection": {
		"use parameterized queries on all data paths",
		"deploy a web application firewall rule set for SQLi",
	},
	"credential_stuffing": {
		"enforce multi-factor authentication",
		"rate limit and captcha login attempts",
	},
	"xss": {
		"apply a strict Content-Security-Policy",
		"encode all user-supplied output",
	},
	"ddos": {
		"front the site with a CDN or scrubbing service",
		"prepare an upstream rate-limiting plan",
	},
}

func measuresFor(attackType string) []string {
	if m, ok := attackMeasures[strings.ToLower(attackType)]; ok {
		return m
	}
	return []string{"review hardening guidance for " + attackType}
}
