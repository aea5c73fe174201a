package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/kenshokan/dojang-api/internal/models"
	"github.com/kenshokan/dojang-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func ptrUint(v uint) *uint {
	return &v
}

func ptrInt(v int) *int {
	return &v
}

func ptrBool(v bool) *bool {
	return &v
}

func ptrFloat(v float64) *float64 {
	return &v
}

// recordingPublisher captures emitted events for assertions.
type recordingPublisher struct {
	events []ExamEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event ExamEvent) {
	p.events = append(p.events, event)
}

// fakeExamRepo keeps exams in memory.
type fakeExamRepo struct {
	exams  map[uint]models.Exam
	nextID uint
}

func newFakeExamRepo(exams ...models.Exam) *fakeExamRepo {
	repo := &fakeExamRepo{exams: make(map[uint]models.Exam)}
	for _, exam := range exams {
		if exam.ID == 0 {
			exam.ID = repo.nextID + 1
		}
		if exam.ID > repo.nextID {
			repo.nextID = exam.ID
		}
		repo.exams[exam.ID] = exam
	}
	return repo
}

func (f *fakeExamRepo) List(ctx context.Context, filter repository.ExamFilter) ([]models.Exam, int64, error) {
	ids := make([]uint, 0, len(f.exams))
	for id := range f.exams {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var result []models.Exam
	for _, id := range ids {
		exam := f.exams[id]
		if filter.Status != nil && exam.Status != *filter.Status {
			continue
		}
		if filter.BeltLevel != "" && exam.BeltLevel != filter.BeltLevel {
			continue
		}
		result = append(result, exam)
	}
	return result, int64(len(result)), nil
}

func (f *fakeExamRepo) GetByID(ctx context.Context, id uint) (models.Exam, error) {
	exam, ok := f.exams[id]
	if !ok {
		return models.Exam{}, gorm.ErrRecordNotFound
	}
	return exam, nil
}

func (f *fakeExamRepo) Create(ctx context.Context, exam *models.Exam) error {
	f.nextID++
	exam.ID = f.nextID
	for i := range exam.Questions {
		exam.Questions[i].ID = uint(i + 1)
		exam.Questions[i].ExamID = exam.ID
	}
	f.exams[exam.ID] = *exam
	return nil
}

func (f *fakeExamRepo) UpdateStatus(ctx context.Context, id uint, from, to models.ExamStatus) error {
	exam, ok := f.exams[id]
	if !ok || exam.Status != from {
		return gorm.ErrRecordNotFound
	}
	exam.Status = to
	f.exams[id] = exam
	return nil
}

// fakeAttemptRepo keeps sessions and answers in memory. Sessions hand back
// deep copies with the owning exam attached, mirroring the preloads done by
// the real repository.
type fakeAttemptRepo struct {
	exams        *fakeExamRepo
	sessions     []*models.AttemptSession
	nextSession  uint
	nextAnswerID uint
}

func newFakeAttemptRepo(exams *fakeExamRepo) *fakeAttemptRepo {
	return &fakeAttemptRepo{exams: exams}
}

func (f *fakeAttemptRepo) snapshot(session *models.AttemptSession) models.AttemptSession {
	copied := *session
	copied.Answers = make([]models.AttemptAnswer, len(session.Answers))
	copy(copied.Answers, session.Answers)
	if exam, ok := f.exams.exams[session.ExamID]; ok {
		copied.Exam = exam
	}
	return copied
}

func (f *fakeAttemptRepo) find(id uint) *models.AttemptSession {
	for _, session := range f.sessions {
		if session.ID == id {
			return session
		}
	}
	return nil
}

func (f *fakeAttemptRepo) CreateIfNoneOpen(ctx context.Context, session *models.AttemptSession) error {
	for _, existing := range f.sessions {
		if existing.ExamID == session.ExamID && existing.StudentID == session.StudentID && existing.SubmittedAt == nil {
			return repository.ErrOpenSessionExists
		}
	}
	f.nextSession++
	session.ID = f.nextSession
	stored := *session
	f.sessions = append(f.sessions, &stored)
	return nil
}

func (f *fakeAttemptRepo) GetByID(ctx context.Context, id uint) (models.AttemptSession, error) {
	session := f.find(id)
	if session == nil {
		return models.AttemptSession{}, gorm.ErrRecordNotFound
	}
	return f.snapshot(session), nil
}

func (f *fakeAttemptRepo) GetLatestByPair(ctx context.Context, examID, studentID uint) (models.AttemptSession, error) {
	for i := len(f.sessions) - 1; i >= 0; i-- {
		if f.sessions[i].ExamID == examID && f.sessions[i].StudentID == studentID {
			return f.snapshot(f.sessions[i]), nil
		}
	}
	return models.AttemptSession{}, gorm.ErrRecordNotFound
}

func (f *fakeAttemptRepo) GetFinalizedByPair(ctx context.Context, examID, studentID uint) (models.AttemptSession, error) {
	for i := len(f.sessions) - 1; i >= 0; i-- {
		session := f.sessions[i]
		if session.ExamID == examID && session.StudentID == studentID && session.TheoryScore != nil {
			return f.snapshot(session), nil
		}
	}
	return models.AttemptSession{}, gorm.ErrRecordNotFound
}

func (f *fakeAttemptRepo) ListByStudent(ctx context.Context, studentID uint) ([]models.AttemptSession, error) {
	var result []models.AttemptSession
	for _, session := range f.sessions {
		if session.StudentID == studentID {
			result = append(result, f.snapshot(session))
		}
	}
	return result, nil
}

func (f *fakeAttemptRepo) Update(ctx context.Context, session *models.AttemptSession) error {
	stored := f.find(session.ID)
	if stored == nil {
		return gorm.ErrRecordNotFound
	}
	answers := stored.Answers
	*stored = *session
	stored.Answers = answers
	stored.Exam = models.Exam{}
	return nil
}

func (f *fakeAttemptRepo) UpsertAnswer(ctx context.Context, answer *models.AttemptAnswer) error {
	session := f.find(answer.SessionID)
	if session == nil {
		return gorm.ErrRecordNotFound
	}
	for i := range session.Answers {
		if session.Answers[i].QuestionID == answer.QuestionID {
			answer.ID = session.Answers[i].ID
			answer.Score = session.Answers[i].Score
			session.Answers[i] = *answer
			return nil
		}
	}
	f.nextAnswerID++
	answer.ID = f.nextAnswerID
	session.Answers = append(session.Answers, *answer)
	return nil
}

func (f *fakeAttemptRepo) UpdateAnswerScore(ctx context.Context, answerID uint, score float64) error {
	for _, session := range f.sessions {
		for i := range session.Answers {
			if session.Answers[i].ID == answerID {
				stored := score
				session.Answers[i].Score = &stored
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

// fakePracticalRepo keeps evaluations keyed by pair.
type fakePracticalRepo struct {
	evaluations map[[2]uint]models.PracticalEvaluation
	nextID      uint
}

func newFakePracticalRepo() *fakePracticalRepo {
	return &fakePracticalRepo{evaluations: make(map[[2]uint]models.PracticalEvaluation)}
}

func (f *fakePracticalRepo) Upsert(ctx context.Context, evaluation *models.PracticalEvaluation) error {
	key := [2]uint{evaluation.ExamID, evaluation.StudentID}
	if existing, ok := f.evaluations[key]; ok {
		evaluation.ID = existing.ID
	} else {
		f.nextID++
		evaluation.ID = f.nextID
	}
	f.evaluations[key] = *evaluation
	return nil
}

func (f *fakePracticalRepo) GetByPair(ctx context.Context, examID, studentID uint) (models.PracticalEvaluation, error) {
	evaluation, ok := f.evaluations[[2]uint{examID, studentID}]
	if !ok {
		return models.PracticalEvaluation{}, gorm.ErrRecordNotFound
	}
	return evaluation, nil
}

// fakeResultRepo keeps final results keyed by pair.
type fakeResultRepo struct {
	results map[[2]uint]models.FinalExamResult
	nextID  uint
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{results: make(map[[2]uint]models.FinalExamResult)}
}

func (f *fakeResultRepo) CreateOnce(ctx context.Context, result *models.FinalExamResult) error {
	key := [2]uint{result.ExamID, result.StudentID}
	if _, ok := f.results[key]; ok {
		return repository.ErrResultExists
	}
	f.nextID++
	result.ID = f.nextID
	f.results[key] = *result
	return nil
}

func (f *fakeResultRepo) GetByPair(ctx context.Context, examID, studentID uint) (models.FinalExamResult, error) {
	result, ok := f.results[[2]uint{examID, studentID}]
	if !ok {
		return models.FinalExamResult{}, gorm.ErrRecordNotFound
	}
	return result, nil
}

func (f *fakeResultRepo) ListByStudent(ctx context.Context, studentID uint) ([]models.FinalExamResult, error) {
	var result []models.FinalExamResult
	for key, entry := range f.results {
		if key[1] == studentID {
			result = append(result, entry)
		}
	}
	return result, nil
}

// fakeCertificateRepo keeps certificates keyed by pair.
type fakeCertificateRepo struct {
	certificates map[[2]uint]models.Certificate
	nextID       uint
}

func newFakeCertificateRepo() *fakeCertificateRepo {
	return &fakeCertificateRepo{certificates: make(map[[2]uint]models.Certificate)}
}

func (f *fakeCertificateRepo) CreateOnce(ctx context.Context, certificate *models.Certificate) error {
	key := [2]uint{certificate.ExamID, certificate.StudentID}
	if _, ok := f.certificates[key]; ok {
		return repository.ErrCertificateExists
	}
	f.nextID++
	certificate.ID = f.nextID
	f.certificates[key] = *certificate
	return nil
}

func (f *fakeCertificateRepo) GetByPair(ctx context.Context, examID, studentID uint) (models.Certificate, error) {
	certificate, ok := f.certificates[[2]uint{examID, studentID}]
	if !ok {
		return models.Certificate{}, gorm.ErrRecordNotFound
	}
	return certificate, nil
}

func (f *fakeCertificateRepo) GetBySerial(ctx context.Context, serial string) (models.Certificate, error) {
	for _, certificate := range f.certificates {
		if certificate.Serial == serial {
			return certificate, nil
		}
	}
	return models.Certificate{}, gorm.ErrRecordNotFound
}

// memoryActivityRepo records audit entries in order.
type memoryActivityRepo struct {
	entries []models.ActivityLog
}

func (m *memoryActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	entry.ID = uint(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) List(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	return append([]models.ActivityLog(nil), m.entries...), int64(len(m.entries)), nil
}
