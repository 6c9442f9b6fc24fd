package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/dmehra2102/prod-golang-projects/docintake/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/docintake/internal/domain/batch"
	"github.com/dmehra2102/prod-golang-projects/docintake/internal/domain/document"
	"github.com/dmehra2102/prod-golang-projects/docintake/internal/domain/patient"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// In-memory fakes mirroring the contracts of the postgres repositories,
// including the version compare-and-set in ApplyDecision.

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func newTestAudit(t *testing.T) *AuditService {
	t.Helper()
	svc := NewAuditService(&fakeAuditRepo{}, zap.NewNop())
	t.Cleanup(svc.Shutdown)
	return svc
}

type fakePatientRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*patient.Patient
}

func newFakePatientRepo(patients ...*patient.Patient) *fakePatientRepo {
	r := &fakePatientRepo{byID: make(map[uuid.UUID]*patient.Patient)}
	for _, p := range patients {
		r.byID[p.ID] = p
	}
	return r
}

func (r *fakePatientRepo) Create(_ context.Context, p *patient.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.MedicalRecordNumber == p.MedicalRecordNumber {
			return patient.ErrDuplicatePatient
		}
	}
	r.byID[p.ID] = p
	return nil
}

func (r *fakePatientRepo) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, patient.ErrPatientNotFound
	}
	return p, nil
}

func (r *fakePatientRepo) GetByMRN(_ context.Context, mrn string) (*patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if p.MedicalRecordNumber == mrn {
			return p, nil
		}
	}
	return nil, patient.ErrPatientNotFound
}

func (r *fakePatientRepo) ExistsByMRN(_ context.Context, mrn string) (bool, error) {
	_, err := r.GetByMRN(context.Background(), mrn)
	if errors.Is(err, patient.ErrPatientNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *fakePatientRepo) ListActive(_ context.Context) ([]*patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*patient.Patient, 0, len(r.byID))
	for _, p := range r.byID {
		if p.DeletedAt == nil {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeDocRepo struct {
	mu       sync.Mutex
	docs     map[uuid.UUID]*document.Document
	statuses map[uuid.UUID]document.VectorStatus
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{
		docs:     make(map[uuid.UUID]*document.Document),
		statuses: make(map[uuid.UUID]document.VectorStatus),
	}
}

func (r *fakeDocRepo) GetByID(_ context.Context, id uuid.UUID) (*document.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok {
		return nil, document.ErrDocumentNotFound
	}
	return d, nil
}

func (r *fakeDocRepo) SetVectorStatus(_ context.Context, id uuid.UUID, status document.VectorStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[id] = status
	if d, ok := r.docs[id]; ok {
		d.VectorStatus = status
	}
	return nil
}

func (r *fakeDocRepo) ListByVectorStatus(_ context.Context, status document.VectorStatus, limit int) ([]*document.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*document.Document
	for _, d := range r.docs {
		if d.VectorStatus == status {
			out = append(out, d)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeDocRepo) vectorStatus(id uuid.UUID) (document.VectorStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.statuses[id]
	return s, ok
}

type fakeBatchRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*batch.Session
	files    map[uuid.UUID]*batch.File
	patients *fakePatientRepo
	docs     *fakeDocRepo

	// applyErr makes every ApplyDecision fail, simulating a persistence
	// outage.
	applyErr error
	// afterGet runs after GetFile returns its snapshot, letting a test
	// interleave a competing write between read and apply.
	afterGet func(id uuid.UUID)
}

func newFakeBatchRepo(patients *fakePatientRepo, docs *fakeDocRepo) *fakeBatchRepo {
	return &fakeBatchRepo{
		sessions: make(map[uuid.UUID]*batch.Session),
		files:    make(map[uuid.UUID]*batch.File),
		patients: patients,
		docs:     docs,
	}
}

func (r *fakeBatchRepo) CreateSession(_ context.Context, s *batch.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return nil
}

func (r *fakeBatchRepo) GetSession(_ context.Context, id uuid.UUID) (*batch.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, batch.ErrSessionNotFound
	}
	return s, nil
}

func (r *fakeBatchRepo) CreateFiles(_ context.Context, files []*batch.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range files {
		cp := *f
		r.files[f.ID] = &cp
	}
	return nil
}

func (r *fakeBatchRepo) GetFile(_ context.Context, id uuid.UUID) (*batch.File, error) {
	r.mu.Lock()
	f, ok := r.files[id]
	if !ok {
		r.mu.Unlock()
		return nil, batch.ErrFileNotFound
	}
	cp := *f
	r.mu.Unlock()

	if r.afterGet != nil {
		r.afterGet(id)
	}
	return &cp, nil
}

func (r *fakeBatchRepo) ListPending(_ context.Context, q *batch.ListQuery) ([]*batch.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prioOrder := map[batch.ReviewPriority]int{
		batch.PriorityHigh:   0,
		batch.PriorityMedium: 1,
		batch.PriorityLow:    2,
	}

	var out []*batch.File
	for _, f := range r.files {
		if !f.NeedsReview() {
			continue
		}
		if q.SessionID != nil && f.SessionID != *q.SessionID {
			continue
		}
		if q.Priority != nil && (f.ReviewPriority == nil || *f.ReviewPriority != *q.Priority) {
			continue
		}
		if q.Category != nil && (f.ReviewCategory == nil || *f.ReviewCategory != *q.Category) {
			continue
		}
		cp := *f
		out = append(out, &cp)
	}

	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := 3, 3
		if out[i].ReviewPriority != nil {
			pi = prioOrder[*out[i].ReviewPriority]
		}
		if out[j].ReviewPriority != nil {
			pj = prioOrder[*out[j].ReviewPriority]
		}
		if pi != pj {
			return pi < pj
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *fakeBatchRepo) ListBulkEligible(_ context.Context, sessionID uuid.UUID, threshold float64) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	type scored struct {
		id   uuid.UUID
		conf float64
	}
	var eligible []scored
	for _, f := range r.files {
		if f.SessionID != sessionID {
			continue
		}
		if f.MatchingStatus != batch.MatchingReviewRequired || f.ProcessingStatus != batch.ProcessingPending {
			continue
		}
		conf, ok := f.Confidence()
		if !ok || conf < threshold {
			continue
		}
		eligible = append(eligible, scored{f.ID, conf})
	}
	sort.SliceStable(eligible, func(i, j int) bool { return eligible[i].conf > eligible[j].conf })

	ids := make([]uuid.UUID, 0, len(eligible))
	for _, e := range eligible {
		ids = append(ids, e.id)
	}
	return ids, nil
}

func (r *fakeBatchRepo) ApplyDecision(_ context.Context, effect *batch.DecisionEffect) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.applyErr != nil {
		return r.applyErr
	}

	f, ok := r.files[effect.FileID]
	if !ok {
		return batch.ErrFileNotFound
	}
	if f.Version != effect.Update.ExpectedVersion {
		return batch.ErrDecisionConflict
	}

	if effect.CreatePatient != nil {
		if err := r.patients.Create(context.Background(), effect.CreatePatient); err != nil {
			return err
		}
	}
	if effect.CreateDocument != nil {
		cp := *effect.CreateDocument
		r.docs.docs[cp.ID] = &cp
	}
	if effect.DeleteDocument != nil {
		delete(r.docs.docs, *effect.DeleteDocument)
	}

	u := effect.Update
	f.ProcessingStatus = u.ProcessingStatus
	f.MatchingStatus = u.MatchingStatus
	if u.PatientID != nil {
		f.PatientID = u.PatientID
	}
	if u.DocumentID != nil {
		f.DocumentID = u.DocumentID
	}
	if u.ClearDocumentRef {
		f.DocumentID = nil
	}
	if u.ClearError {
		f.ErrorMessage = nil
	}
	if u.ErrorMessage != nil {
		f.ErrorMessage = u.ErrorMessage
	}
	if u.ClearClassification {
		f.ReviewPriority = nil
		f.ReviewCategory = nil
	}
	if u.ReviewedBy != nil {
		f.ReviewedBy = u.ReviewedBy
	}
	if u.AdminNotes != nil {
		f.AdminNotes = u.AdminNotes
	}
	if u.ReviewedAt != nil {
		f.ReviewedAt = u.ReviewedAt
	}
	f.Version++
	return nil
}

func (r *fakeBatchRepo) Stats(_ context.Context, sessionID *uuid.UUID) (*batch.StatsRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row := &batch.StatsRow{
		ByCategory: make(map[batch.ReviewCategory]int64),
		ByPriority: make(map[batch.ReviewPriority]int64),
	}
	for _, f := range r.files {
		if sessionID != nil && f.SessionID != *sessionID {
			continue
		}
		row.TotalFiles++
		if f.MatchingStatus == batch.MatchingReviewRequired {
			row.ReviewRequired++
		}
		if f.ReviewedAt != nil {
			row.CompletedReviews++
		}
		if f.ReviewCategory != nil {
			row.ByCategory[*f.ReviewCategory]++
		}
		if f.ReviewPriority != nil {
			row.ByPriority[*f.ReviewPriority]++
		}
	}
	return row, nil
}

func (r *fakeBatchRepo) storedFile(t *testing.T, id uuid.UUID) *batch.File {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		t.Fatalf("file %s not found in repo", id)
	}
	cp := *f
	return &cp
}

type fakeIndexer struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (i *fakeIndexer) Index(_ context.Context, _ uuid.UUID, _ string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.calls++
	return i.err
}

// fakeAdapter returns a canned candidate list for every file.
type fakeAdapter struct {
	matches []batch.SuggestedMatch
	err     error
}

func (a *fakeAdapter) Match(_ context.Context, _, _ string) ([]batch.SuggestedMatch, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.matches, nil
}
