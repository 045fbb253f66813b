package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/finding"
	sharederrors "github.com/abodks10-ai/Pred-Guard/internal/shared/errors"
)

// FindingRepository stores every finding kind behind one lock. Slices are
// copied on the way out so callers cannot mutate stored rows.
type FindingRepository struct {
	mu     sync.Mutex
	nextID int64

	vulns        map[int64]*finding.CodeVulnerability
	links        map[int64]*finding.MaliciousLink
	fingerprints map[int64]*finding.BehaviorFingerprint
	predictions  map[int64]*finding.AttackPrediction
	patterns     map[int64]*finding.AttackerPattern
	fileChanges  map[int64]*finding.FileChange
	clones       map[int64]*finding.PhishingClone
	visitors     map[int64]*finding.VisitorAnalysis
	services     map[int64]*finding.ExternalService
	benchmarks   map[int64]*finding.SecurityBenchmark
}

func NewFindingRepository() *FindingRepository {
	return &FindingRepository{
		vulns:        make(map[int64]*finding.CodeVulnerability),
		links:        make(map[int64]*finding.MaliciousLink),
		fingerprints: make(map[int64]*finding.BehaviorFingerprint),
		predictions:  make(map[int64]*finding.AttackPrediction),
		patterns:     make(map[int64]*finding.AttackerPattern),
		fileChanges:  make(map[int64]*finding.FileChange),
		clones:       make(map[int64]*finding.PhishingClone),
		visitors:     make(map[int64]*finding.VisitorAnalysis),
		services:     make(map[int64]*finding.ExternalService),
		benchmarks:   make(map[int64]*finding.SecurityBenchmark),
	}
}

func (r *FindingRepository) id() int64 {
	r.nextID++
	return r.nextID
}

func (r *FindingRepository) SaveVulnerability(_ context.Context, v *finding.CodeVulnerability) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v.ID == 0 {
		v.ID = r.id()
	}
	cp := *v
	r.vulns[v.ID] = &cp
	return nil
}

func (r *FindingRepository) FindVulnerabilities(_ context.Context, websiteID int64, includeFixed bool) ([]*finding.CodeVulnerability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*finding.CodeVulnerability
	for _, v := range r.vulns {
		if v.WebsiteID != websiteID {
			continue
		}
		if v.Fixed && !includeFixed {
			continue
		}
		cp := *v
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *FindingRepository) MarkVulnerabilityFixed(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vulns[id]
	if !ok {
		return sharederrors.ErrRepositoryOperation
	}
	v.Fixed = true
	v.FixedAt = at
	return nil
}

func (r *FindingRepository) SaveMaliciousLink(_ context.Context, l *finding.MaliciousLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l.ID == 0 {
		l.ID = r.id()
	}
	cp := *l
	r.links[l.ID] = &cp
	return nil
}

func (r *FindingRepository) FindMaliciousLinks(_ context.Context, websiteID int64, activeOnly bool) ([]*finding.MaliciousLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*finding.MaliciousLink
	for _, l := range r.links {
		if l.WebsiteID != websiteID {
			continue
		}
		if activeOnly && !l.Active {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *FindingRepository) SaveFingerprint(_ context.Context, f *finding.BehaviorFingerprint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// One row per (website, type): an existing row is replaced in place.
	for _, existing := range r.fingerprints {
		if existing.WebsiteID == f.WebsiteID && existing.FingerprintType == f.FingerprintType {
			f.ID = existing.ID
			cp := *f
			cp.Baseline = append([]float64(nil), f.Baseline...)
			cp.CurrentPattern = append([]float64(nil), f.CurrentPattern...)
			r.fingerprints[f.ID] = &cp
			return nil
		}
	}
	if f.ID == 0 {
		f.ID = r.id()
	}
	cp := *f
	cp.Baseline = append([]float64(nil), f.Baseline...)
	cp.CurrentPattern = append([]float64(nil), f.CurrentPattern...)
	r.fingerprints[f.ID] = &cp
	return nil
}

func (r *FindingRepository) FindFingerprint(_ context.Context, websiteID int64, fpType finding.FingerprintType) (*finding.BehaviorFingerprint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.fingerprints {
		if f.WebsiteID == websiteID && f.FingerprintType == fpType {
			cp := *f
			cp.Baseline = append([]float64(nil), f.Baseline...)
			cp.CurrentPattern = append([]float64(nil), f.CurrentPattern...)
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *FindingRepository) FindFingerprints(_ context.Context, websiteID int64) ([]*finding.BehaviorFingerprint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*finding.BehaviorFingerprint
	for _, f := range r.fingerprints {
		if f.WebsiteID != websiteID {
			continue
		}
		cp := *f
		cp.Baseline = append([]float64(nil), f.Baseline...)
		cp.CurrentPattern = append([]float64(nil), f.CurrentPattern...)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *FindingRepository) SavePrediction(_ context.Context, p *finding.AttackPrediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == 0 {
		p.ID = r.id()
	}
	cp := *p
	cp.PreventiveMeasures = append([]string(nil), p.PreventiveMeasures...)
	r.predictions[p.ID] = &cp
	return nil
}

func (r *FindingRepository) FindActivePredictions(_ context.Context, websiteID int64, now time.Time) ([]*finding.AttackPrediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*finding.AttackPrediction
	for _, p := range r.predictions {
		if p.WebsiteID != websiteID || !p.Active || p.Expired(now) {
			continue
		}
		cp := *p
		cp.PreventiveMeasures = append([]string(nil), p.PreventiveMeasures...)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *FindingRepository) UpsertAttackerPattern(_ context.Context, p *finding.AttackerPattern) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.patterns {
		if existing.WebsiteID == p.WebsiteID && existing.PatternHash == p.PatternHash {
			existing.AttackCount++
			existing.LastSeen = p.LastSeen
			existing.ThreatLevel = p.ThreatLevel
			p.ID = existing.ID
			p.AttackCount = existing.AttackCount
			p.FirstSeen = existing.FirstSeen
			return nil
		}
	}
	if p.ID == 0 {
		p.ID = r.id()
	}
	cp := *p
	cp.Techniques = append([]string(nil), p.Techniques...)
	cp.TargetedAreas = append([]string(nil), p.TargetedAreas...)
	r.patterns[p.ID] = &cp
	return nil
}

func (r *FindingRepository) FindAttackerPatterns(_ context.Context, websiteID int64) ([]*finding.AttackerPattern, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*finding.AttackerPattern
	for _, p := range r.patterns {
		if p.WebsiteID != websiteID {
			continue
		}
		cp := *p
		cp.Techniques = append([]string(nil), p.Techniques...)
		cp.TargetedAreas = append([]string(nil), p.TargetedAreas...)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *FindingRepository) SaveFileChange(_ context.Context, fc *finding.FileChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if fc.ID == 0 {
		fc.ID = r.id()
	}
	cp := *fc
	r.fileChanges[fc.ID] = &cp
	return nil
}

func (r *FindingRepository) FindFileChanges(_ context.Context, websiteID int64, limit int) ([]*finding.FileChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*finding.FileChange
	for _, fc := range r.fileChanges {
		if fc.WebsiteID != websiteID {
			continue
		}
		cp := *fc
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *FindingRepository) SavePhishingClone(_ context.Context, pc *finding.PhishingClone) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pc.ID == 0 {
		pc.ID = r.id()
	}
	cp := *pc
	r.clones[pc.ID] = &cp
	return nil
}

func (r *FindingRepository) FindPhishingClones(_ context.Context, websiteID int64) ([]*finding.PhishingClone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*finding.PhishingClone
	for _, pc := range r.clones {
		if pc.WebsiteID != websiteID {
			continue
		}
		cp := *pc
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *FindingRepository) SaveVisitorAnalysis(_ context.Context, va *finding.VisitorAnalysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if va.ID == 0 {
		va.ID = r.id()
	}
	cp := *va
	cp.SuspiciousActions = append([]string(nil), va.SuspiciousActions...)
	r.visitors[va.ID] = &cp
	return nil
}

func (r *FindingRepository) FindVisitorAnalyses(_ context.Context, websiteID int64, limit int) ([]*finding.VisitorAnalysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*finding.VisitorAnalysis
	for _, va := range r.visitors {
		if va.WebsiteID != websiteID {
			continue
		}
		cp := *va
		cp.SuspiciousActions = append([]string(nil), va.SuspiciousActions...)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *FindingRepository) SaveExternalService(_ context.Context, es *finding.ExternalService) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if es.ID == 0 {
		es.ID = r.id()
	}
	cp := *es
	cp.SecurityIssues = append([]string(nil), es.SecurityIssues...)
	r.services[es.ID] = &cp
	return nil
}

func (r *FindingRepository) FindExternalServices(_ context.Context, websiteID int64) ([]*finding.ExternalService, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*finding.ExternalService
	for _, es := range r.services {
		if es.WebsiteID != websiteID {
			continue
		}
		cp := *es
		cp.SecurityIssues = append([]string(nil), es.SecurityIssues...)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *FindingRepository) SaveBenchmark(_ context.Context, b *finding.SecurityBenchmark) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.ID == 0 {
		b.ID = r.id()
	}
	cp := *b
	cp.Strengths = append([]string(nil), b.Strengths...)
	cp.Weaknesses = append([]string(nil), b.Weaknesses...)
	cp.Recommendations = append([]string(nil), b.Recommendations...)
	r.benchmarks[b.ID] = &cp
	return nil
}

func (r *FindingRepository) LatestBenchmark(_ context.Context, websiteID int64) (*finding.SecurityBenchmark, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *finding.SecurityBenchmark
	for _, b := range r.benchmarks {
		if b.WebsiteID != websiteID {
			continue
		}
		if latest == nil || b.ID > latest.ID {
			latest = b
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	cp.Strengths = append([]string(nil), latest.Strengths...)
	cp.Weaknesses = append([]string(nil), latest.Weaknesses...)
	cp.Recommendations = append([]string(nil), latest.Recommendations...)
	return &cp, nil
}

func (r *FindingRepository) deleteByWebsite(websiteID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, v := range r.vulns {
		if v.WebsiteID == websiteID {
			delete(r.vulns, id)
		}
	}
	for id, l := range r.links {
		if l.WebsiteID == websiteID {
			delete(r.links, id)
		}
	}
	for id, f := range r.fingerprints {
		if f.WebsiteID == websiteID {
			delete(r.fingerprints, id)
		}
	}
	for id, p := range r.predictions {
		if p.WebsiteID == websiteID {
			delete(r.predictions, id)
		}
	}
	for id, p := range r.patterns {
		if p.WebsiteID == websiteID {
			delete(r.patterns, id)
		}
	}
	for id, fc := range r.fileChanges {
		if fc.WebsiteID == websiteID {
			delete(r.fileChanges, id)
		}
	}
	for id, pc := range r.clones {
		if pc.WebsiteID == websiteID {
			delete(r.clones, id)
		}
	}
	for id, va := range r.visitors {
		if va.WebsiteID == websiteID {
			delete(r.visitors, id)
		}
	}
	for id, es := range r.services {
		if es.WebsiteID == websiteID {
			delete(r.services, id)
		}
	}
	for id, b := range r.benchmarks {
		if b.WebsiteID == websiteID {
			delete(r.benchmarks, id)
		}
	}
}
