package service

import (
	"context"
	"errors"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/exproctor-backend/internal/model"
	"github.com/stemsi/exproctor-backend/internal/repository"
)

var nopLog = zerolog.New(io.Discard)

var errBoom = errors.New("boom")

// ─── Users & sessions ───────────────────────────────────────────

type fakeUsers struct {
	mu     sync.Mutex
	byID   map[int64]*model.User
	nextID int64
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[int64]*model.User{}} }

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

type fakeSessions struct {
	mu   sync.Mutex
	jtis map[int64]string
}

func newFakeSessions() *fakeSessions { return &fakeSessions{jtis: map[int64]string{}} }

func (f *fakeSessions) Set(_ context.Context, userID int64, jti string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jtis[userID] = jti
	return nil
}

func (f *fakeSessions) Get(_ context.Context, userID int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	jti, ok := f.jtis[userID]
	if !ok {
		return "", repository.ErrNotFound
	}
	return jti, nil
}

func (f *fakeSessions) Delete(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.jtis, userID)
	return nil
}

// ─── Exams & questions ──────────────────────────────────────────

type fakeExams struct {
	mu      sync.Mutex
	exams   []*model.Exam
	getErr  error
	byIDHit int
}

func (f *fakeExams) add(e model.Exam) *model.Exam {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	cp := e
	f.exams = append(f.exams, &cp)
	return &cp
}

func (f *fakeExams) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, e := range f.exams {
		if e.ID == id {
			f.byIDHit++
			cp := *e
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeExams) GetByToken(_ context.Context, token string) (*model.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, e := range f.exams {
		if e.ExamToken == token {
			cp := *e
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeExams) ListAll(context.Context) ([]model.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Exam{}
	for _, e := range f.exams {
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeExams) ListByTeacher(_ context.Context, teacherID int64) ([]model.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Exam{}
	for _, e := range f.exams {
		if e.CreatedBy == teacherID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeExams) ListIDsByTeacher(_ context.Context, teacherID int64) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []uuid.UUID
	for _, e := range f.exams {
		if e.CreatedBy == teacherID {
			out = append(out, e.ID)
		}
	}
	return out, nil
}

func (f *fakeExams) Create(_ context.Context, e *model.Exam) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.exams {
		if existing.ExamToken == e.ExamToken {
			return repository.ErrDuplicate
		}
	}
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	cp := *e
	f.exams = append(f.exams, &cp)
	return nil
}

func (f *fakeExams) Update(_ context.Context, e *model.Exam) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.exams {
		if existing.ID == e.ID {
			cp := *e
			f.exams[i] = &cp
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeExams) DeleteByToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.exams {
		if e.ExamToken == token {
			f.exams = slices.Delete(f.exams, i, i+1)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeQuestions struct {
	mu        sync.Mutex
	questions []*model.Question
}

func (f *fakeQuestions) add(q model.Question) model.Question {
	f.mu.Lock()
	defer f.mu.Unlock()
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	cp := q
	f.questions = append(f.questions, &cp)
	return q
}

func (f *fakeQuestions) ListByExamToken(_ context.Context, token string) ([]model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Question{}
	for _, q := range f.questions {
		if q.ExamToken == token {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (f *fakeQuestions) GetByID(_ context.Context, id uuid.UUID) (*model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range f.questions {
		if q.ID == id {
			cp := *q
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeQuestions) Create(_ context.Context, q *model.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	q.ID = uuid.New()
	cp := *q
	f.questions = append(f.questions, &cp)
	return nil
}

func (f *fakeQuestions) Update(_ context.Context, q *model.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.questions {
		if existing.ID == q.ID {
			cp := *q
			f.questions[i] = &cp
			return nil
		}
	}
	return repository.ErrNotFound
}

// ─── Submissions ────────────────────────────────────────────────

type fakeSubmissions struct {
	mu        sync.Mutex
	subs      []model.Submission
	exams     *fakeExams
	users     map[int64]model.UserRef
	createErr error
	batchArgs [][]uuid.UUID
}

func newFakeSubmissions(exams *fakeExams) *fakeSubmissions {
	return &fakeSubmissions{exams: exams, users: map[int64]model.UserRef{}}
}

func (f *fakeSubmissions) exam(id uuid.UUID) model.Exam {
	e, err := f.exams.GetByID(context.Background(), id)
	if err != nil {
		return model.Exam{ID: id}
	}
	return *e
}

func (f *fakeSubmissions) newestFirst() []model.Submission {
	out := slices.Clone(f.subs)
	slices.SortStableFunc(out, func(a, b model.Submission) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out
}

func (f *fakeSubmissions) Create(_ context.Context, s *model.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	s.ID = uuid.New()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	f.subs = append(f.subs, *s)
	return nil
}

func (f *fakeSubmissions) ListByExam(_ context.Context, examID uuid.UUID) ([]model.ExamResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ExamResult
	for _, s := range f.newestFirst() {
		if s.ExamID != examID {
			continue
		}
		e := f.exam(s.ExamID)
		out = append(out, model.ExamResult{
			SubmissionWithStudent: model.SubmissionWithStudent{Submission: s, Student: f.users[s.StudentID]},
			ExamDetails:           model.ExamDetails{ExamName: e.ExamName, TotalQuestions: e.TotalQuestions, Duration: e.DurationMinutes},
		})
	}
	return out, nil
}

func (f *fakeSubmissions) LatestForStudent(_ context.Context, examID uuid.UUID, studentID int64) (*model.SubmissionWithStudent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.newestFirst() {
		if s.ExamID == examID && s.StudentID == studentID {
			return &model.SubmissionWithStudent{Submission: s, Student: f.users[studentID]}, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSubmissions) ListByStudent(_ context.Context, studentID int64) ([]model.StudentSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.StudentSubmission{}
	for _, s := range f.newestFirst() {
		if s.StudentID != studentID {
			continue
		}
		e := f.exam(s.ExamID)
		out = append(out, model.StudentSubmission{Submission: s, ExamToken: e.ExamToken, ExamName: e.ExamName, TotalQuestions: e.TotalQuestions})
	}
	return out, nil
}

func (f *fakeSubmissions) ListByExamIDs(_ context.Context, ids []uuid.UUID) ([]model.TeacherSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchArgs = append(f.batchArgs, ids)
	out := []model.TeacherSubmission{}
	for _, s := range f.newestFirst() {
		if !slices.Contains(ids, s.ExamID) {
			continue
		}
		e := f.exam(s.ExamID)
		u := f.users[s.StudentID]
		out = append(out, model.TeacherSubmission{
			SubmissionID: s.ID, StudentName: u.Name, StudentEmail: u.Email,
			ExamName: e.ExamName, Score: s.Score, TotalQuestions: e.TotalQuestions,
			SubmittedAt: s.CreatedAt, ExamID: s.ExamID,
		})
	}
	return out, nil
}

func (f *fakeSubmissions) LatestByStudent(_ context.Context, studentID int64) (*model.LastSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.newestFirst() {
		if s.StudentID == studentID {
			return &model.LastSubmission{ExamID: s.ExamID, ExamToken: f.exam(s.ExamID).ExamToken}, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ─── Proctoring ─────────────────────────────────────────────────

type liveKey struct {
	exam    uuid.UUID
	student int64
}

type fakeLiveLogs struct {
	mu   sync.Mutex
	logs map[liveKey]model.CheatingLog
	err  error
}

func newFakeLiveLogs() *fakeLiveLogs { return &fakeLiveLogs{logs: map[liveKey]model.CheatingLog{}} }

func (f *fakeLiveLogs) Update(_ context.Context, examID uuid.UUID, studentID int64, fn func(model.CheatingLog) (model.CheatingLog, error)) (model.CheatingLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.CheatingLog{}, f.err
	}
	k := liveKey{examID, studentID}
	cur, ok := f.logs[k]
	if !ok {
		cur = model.CheatingLog{ExamID: examID, StudentID: studentID}
	}
	next, err := fn(cur)
	if err != nil {
		return next, err
	}
	f.logs[k] = next
	return next, nil
}

func (f *fakeLiveLogs) Get(_ context.Context, examID uuid.UUID, studentID int64) (*model.CheatingLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	l, ok := f.logs[liveKey{examID, studentID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &l, nil
}

func (f *fakeLiveLogs) Take(_ context.Context, examID uuid.UUID, studentID int64) (*model.CheatingLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	k := liveKey{examID, studentID}
	l, ok := f.logs[k]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(f.logs, k)
	return &l, nil
}

func (f *fakeLiveLogs) Active(context.Context) ([]repository.LiveLogRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var refs []repository.LiveLogRef
	for k := range f.logs {
		refs = append(refs, repository.LiveLogRef{ExamID: k.exam, StudentID: k.student})
	}
	return refs, nil
}

type fakeQueue struct {
	mu     sync.Mutex
	pushed []model.CheatingLog
	err    error
}

func (f *fakeQueue) Push(_ context.Context, logs ...model.CheatingLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.pushed = append(f.pushed, logs...)
	return nil
}

type fakeStoredLogs struct {
	logs []model.CheatingLog
}

func (f *fakeStoredLogs) ListByExam(_ context.Context, examID uuid.UUID) ([]model.CheatingLog, error) {
	var out []model.CheatingLog
	for _, l := range f.logs {
		if l.ExamID == examID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeStoredLogs) Get(_ context.Context, examID uuid.UUID, studentID int64) (*model.CheatingLog, error) {
	for _, l := range f.logs {
		if l.ExamID == examID && l.StudentID == studentID {
			return &l, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeFlusher struct {
	calls []uuid.UUID
	err   error
}

func (f *fakeFlusher) Flush(_ context.Context, _ Identity, examID uuid.UUID) (bool, error) {
	f.calls = append(f.calls, examID)
	return f.err == nil, f.err
}

// ─── Coding ─────────────────────────────────────────────────────

type fakeCoding struct {
	mu   sync.Mutex
	subs map[liveKey]model.CodingSubmission
}

func newFakeCoding() *fakeCoding { return &fakeCoding{subs: map[liveKey]model.CodingSubmission{}} }

func (f *fakeCoding) Upsert(_ context.Context, s *model.CodingSubmission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.SubmittedAt = time.Now()
	f.subs[liveKey{s.ExamID, s.StudentID}] = *s
	return nil
}

func (f *fakeCoding) Get(_ context.Context, examID uuid.UUID, studentID int64) (*model.CodingSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.subs[liveKey{examID, studentID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

// ─── Fixtures ───────────────────────────────────────────────────

var (
	teacher      = Identity{UserID: 1, Role: model.RoleTeacher, Name: "Tess", Email: "tess@example.com"}
	otherTeacher = Identity{UserID: 2, Role: model.RoleTeacher, Name: "Otto", Email: "otto@example.com"}
	student      = Identity{UserID: 10, Role: model.RoleStudent, Name: "Sam", Email: "sam@example.com"}
	otherStudent = Identity{UserID: 11, Role: model.RoleStudent, Name: "Ria", Email: "ria@example.com"}
)

type fixture struct {
	exams       *fakeExams
	questions   *fakeQuestions
	submissions *fakeSubmissions
	live        *fakeLiveLogs
	queue       *fakeQueue
	stored      *fakeStoredLogs
	coding      *fakeCoding

	examSvc     *ExamService
	questionSvc *QuestionService
	proctorSvc  *ProctorService
	resultSvc   *ResultService
	codingSvc   *CodingService
}

func newFixture() *fixture {
	f := &fixture{
		exams:     &fakeExams{},
		questions: &fakeQuestions{},
		live:      newFakeLiveLogs(),
		queue:     &fakeQueue{},
		stored:    &fakeStoredLogs{},
		coding:    newFakeCoding(),
	}
	f.submissions = newFakeSubmissions(f.exams)
	f.submissions.users[student.UserID] = model.UserRef{ID: student.UserID, Name: student.Name, Email: student.Email}
	f.submissions.users[otherStudent.UserID] = model.UserRef{ID: otherStudent.UserID, Name: otherStudent.Name, Email: otherStudent.Email}

	f.examSvc = NewExamService(f.exams, f.questions, nopLog)
	f.questionSvc = NewQuestionService(f.questions, f.examSvc, nopLog)
	f.proctorSvc = NewProctorService(f.examSvc, f.exams, f.live, f.queue, f.stored, nopLog)
	f.resultSvc = NewResultService(f.examSvc, f.exams, f.submissions, 5, nopLog)
	f.codingSvc = NewCodingService(f.examSvc, f.coding, nopLog)
	return f
}

// seedExam stores an exam owned by teacher with two ten-mark questions whose
// correct options are opt1A and opt2A.
func (f *fixture) seedExam(token string) (*model.Exam, model.Question, model.Question) {
	exam := f.exams.add(model.Exam{
		ExamToken:       token,
		ExamName:        "Exam " + token,
		TotalQuestions:  2,
		DurationMinutes: 30,
		LiveDate:        time.Now().Add(-time.Hour),
		DeadDate:        time.Now().Add(time.Hour),
		CreatedBy:       teacher.UserID,
	})
	q1 := f.questions.add(model.Question{ExamToken: token, Marks: 10, Options: []model.Option{
		{ID: "opt1A", IsCorrect: true}, {ID: "opt1B"},
	}})
	q2 := f.questions.add(model.Question{ExamToken: token, Marks: 10, Options: []model.Option{
		{ID: "opt2A", IsCorrect: true}, {ID: "opt2B"},
	}})
	return exam, q1, q2
}
