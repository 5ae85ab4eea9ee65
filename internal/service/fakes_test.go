package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	"github.com/pebecgov/pebec-app-sub000/internal/events"
	"github.com/pebecgov/pebec-app-sub000/internal/mailer"
	"github.com/pebecgov/pebec-app-sub000/internal/repository"
)

var fixedNow = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

func fixedClock() Clock {
	return func() time.Time { return fixedNow }
}

// ---- tickets ----

type fakeTickets struct {
	items map[string]*domain.Ticket
}

func newFakeTickets() *fakeTickets { return &fakeTickets{items: map[string]*domain.Ticket{}} }

func (f *fakeTickets) Create(_ context.Context, t *domain.Ticket) error {
	for _, existing := range f.items {
		if existing.TicketNumber == t.TicketNumber {
			return repository.ErrDuplicate
		}
	}
	t.ID = uuid.NewString()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = fixedNow
	}
	t.UpdatedAt = t.CreatedAt
	cp := *t
	f.items[t.ID] = &cp
	return nil
}

func (f *fakeTickets) Update(_ context.Context, t *domain.Ticket) error {
	if _, ok := f.items[t.ID]; !ok {
		return pgx.ErrNoRows
	}
	t.UpdatedAt = fixedNow
	cp := *t
	f.items[t.ID] = &cp
	return nil
}

func (f *fakeTickets) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	t, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTickets) GetByNumber(_ context.Context, number string) (*domain.Ticket, error) {
	for _, t := range f.items {
		if t.TicketNumber == number {
			cp := *t
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTickets) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, t := range f.items {
		if filter.CreatorID != nil && t.CreatorID != *filter.CreatorID {
			continue
		}
		if filter.DepartmentID != nil && (t.DepartmentID == nil || *t.DepartmentID != *filter.DepartmentID) {
			continue
		}
		if filter.CreatedFrom != nil && t.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && t.CreatedAt.After(*filter.CreatedTo) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, t.Status) {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeTickets) DeleteCascade(_ context.Context, id string) (bool, error) {
	if _, ok := f.items[id]; !ok {
		return false, nil
	}
	delete(f.items, id)
	return true, nil
}

func containsStatus(list []domain.TicketStatus, s domain.TicketStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type fakeComments struct{ items []domain.TicketComment }

func (f *fakeComments) Create(_ context.Context, c *domain.TicketComment) error {
	c.ID = uuid.NewString()
	c.CreatedAt = fixedNow
	f.items = append(f.items, *c)
	return nil
}

func (f *fakeComments) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketComment, error) {
	var out []domain.TicketComment
	for _, c := range f.items {
		if c.TicketID == ticketID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeHistory struct{ items []domain.TicketHistory }

func (f *fakeHistory) Create(_ context.Context, h *domain.TicketHistory) error {
	h.ID = uuid.NewString()
	h.CreatedAt = fixedNow
	f.items = append(f.items, *h)
	return nil
}

func (f *fakeHistory) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketHistory, error) {
	var out []domain.TicketHistory
	for _, h := range f.items {
		if h.TicketID == ticketID {
			out = append(out, h)
		}
	}
	return out, nil
}

// ---- departments and users ----

type fakeDepartments struct{ items []*domain.Department }

func (f *fakeDepartments) add(name string, active bool) *domain.Department {
	d := &domain.Department{ID: uuid.NewString(), Name: name, IsActive: active, CreatedAt: fixedNow}
	f.items = append(f.items, d)
	return d
}

func (f *fakeDepartments) Create(_ context.Context, d *domain.Department) error {
	for _, existing := range f.items {
		if strings.EqualFold(existing.Name, d.Name) {
			return repository.ErrDuplicate
		}
	}
	d.ID = uuid.NewString()
	cp := *d
	f.items = append(f.items, &cp)
	return nil
}

func (f *fakeDepartments) Update(_ context.Context, d *domain.Department) error {
	for i, existing := range f.items {
		if existing.ID != d.ID && strings.EqualFold(existing.Name, d.Name) {
			return repository.ErrDuplicate
		}
		if existing.ID == d.ID {
			cp := *d
			f.items[i] = &cp
		}
	}
	return nil
}

func (f *fakeDepartments) GetByID(_ context.Context, id string) (*domain.Department, error) {
	for _, d := range f.items {
		if d.ID == id {
			cp := *d
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeDepartments) GetByName(_ context.Context, name string) (*domain.Department, error) {
	for _, d := range f.items {
		if strings.EqualFold(d.Name, name) {
			cp := *d
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeDepartments) List(_ context.Context, includeInactive bool) ([]domain.Department, error) {
	var out []domain.Department
	for _, d := range f.items {
		if d.IsActive || includeInactive {
			out = append(out, *d)
		}
	}
	return out, nil
}

type fakeUsers struct{ items []*domain.User }

func (f *fakeUsers) add(name string, role domain.Role, departmentID *string) *domain.User {
	u := &domain.User{
		ID:           uuid.NewString(),
		ExternalID:   "ext-" + name,
		Name:         name,
		Email:        strings.ToLower(name) + "@example.gov.ng",
		Role:         role,
		DepartmentID: departmentID,
	}
	f.items = append(f.items, u)
	return u
}

func (f *fakeUsers) Upsert(_ context.Context, u *domain.User) error {
	for _, existing := range f.items {
		if existing.ExternalID == u.ExternalID {
			existing.Name, existing.Email, existing.Phone, existing.State = u.Name, u.Email, u.Phone, u.State
			if u.Role != "" {
				existing.Role = u.Role
				existing.DepartmentID = u.DepartmentID
			}
			*u = *existing
			return nil
		}
	}
	u.ID = uuid.NewString()
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	cp := *u
	f.items = append(f.items, &cp)
	return nil
}

func (f *fakeUsers) find(match func(*domain.User) bool) (*domain.User, error) {
	for _, u := range f.items {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	return f.find(func(u *domain.User) bool { return u.ID == id })
}

func (f *fakeUsers) GetByExternalID(_ context.Context, externalID string) (*domain.User, error) {
	return f.find(func(u *domain.User) bool { return u.ExternalID == externalID })
}

func (f *fakeUsers) GetGuestByEmail(_ context.Context, email string) (*domain.User, error) {
	return f.find(func(u *domain.User) bool { return u.IsGuest && strings.EqualFold(u.Email, email) })
}

func (f *fakeUsers) DeleteByExternalID(_ context.Context, externalID string) (bool, error) {
	for i, u := range f.items {
		if u.ExternalID == externalID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) AssignRole(_ context.Context, id string, role domain.Role, departmentID *string) (*domain.User, error) {
	for _, u := range f.items {
		if u.ID == id {
			u.Role = role
			u.DepartmentID = departmentID
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUsers) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	var out []domain.User
	for _, u := range f.items {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUsers) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	var out []domain.User
	for _, u := range f.items {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) ListByDepartment(_ context.Context, departmentID string) ([]domain.User, error) {
	var out []domain.User
	for _, u := range f.items {
		if u.DepartmentID != nil && *u.DepartmentID == departmentID {
			out = append(out, *u)
		}
	}
	return out, nil
}

// ---- numbering, files, notifications, access codes ----

type fakeSequence struct{ counters map[string]int }

func newFakeSequence() *fakeSequence { return &fakeSequence{counters: map[string]int{}} }

func (f *fakeSequence) Next(_ context.Context, scope string, day time.Time) (int, error) {
	key := scope + day.Format("2006-01-02")
	f.counters[key]++
	return f.counters[key], nil
}

type fakeFiles struct{ items map[string]*domain.UploadedFile }

func newFakeFiles() *fakeFiles { return &fakeFiles{items: map[string]*domain.UploadedFile{}} }

func (f *fakeFiles) Create(_ context.Context, file *domain.UploadedFile) error {
	file.ID = uuid.NewString()
	cp := *file
	f.items[file.StorageKey] = &cp
	return nil
}

func (f *fakeFiles) GetByKey(_ context.Context, key string) (*domain.UploadedFile, error) {
	file, ok := f.items[key]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *file
	return &cp, nil
}

func (f *fakeFiles) DeleteByKey(_ context.Context, key string) (bool, error) {
	_, ok := f.items[key]
	delete(f.items, key)
	return ok, nil
}

type fakeNotifications struct{ items []*domain.Notification }

func (f *fakeNotifications) CreateIfAbsent(_ context.Context, n *domain.Notification) (bool, error) {
	for _, existing := range f.items {
		if existing.EventID == n.EventID && existing.UserID == n.UserID {
			return false, nil
		}
	}
	n.ID = uuid.NewString()
	n.CreatedAt = fixedNow
	cp := *n
	f.items = append(f.items, &cp)
	return true, nil
}

func (f *fakeNotifications) ListByUser(_ context.Context, userID string, unreadOnly bool, _, _ int) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range f.items {
		if n.UserID == userID && (!unreadOnly || !n.Read) {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeNotifications) CountUnread(ctx context.Context, userID string) (int, error) {
	list, _ := f.ListByUser(ctx, userID, true, 0, 0)
	return len(list), nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, id, userID string) (bool, error) {
	for _, n := range f.items {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNotifications) MarkAllRead(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, n := range f.items {
		if n.UserID == userID && !n.Read {
			n.Read = true
			count++
		}
	}
	return count, nil
}

func (f *fakeNotifications) forUser(userID string) []domain.Notification {
	list, _ := f.ListByUser(context.Background(), userID, false, 0, 0)
	return list
}

type fakeAccessCodes struct{ items []domain.AccessCode }

func (f *fakeAccessCodes) Replace(_ context.Context, role domain.Role, hash string) (*domain.AccessCode, error) {
	for i := range f.items {
		if f.items[i].Role == role {
			f.items[i].Active = false
		}
	}
	code := domain.AccessCode{ID: uuid.NewString(), Role: role, CodeHash: hash, Active: true, CreatedAt: fixedNow}
	f.items = append(f.items, code)
	return &code, nil
}

func (f *fakeAccessCodes) ListActiveByRole(_ context.Context, role domain.Role) ([]domain.AccessCode, error) {
	var out []domain.AccessCode
	for _, c := range f.items {
		if c.Role == role && c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

// ---- events, newsletters ----

type fakeEvents struct {
	events map[string]*domain.Event
	regs   []*domain.EventRegistration
}

func newFakeEvents() *fakeEvents { return &fakeEvents{events: map[string]*domain.Event{}} }

func (f *fakeEvents) Create(_ context.Context, e *domain.Event) error {
	e.ID = uuid.NewString()
	cp := *e
	f.events[e.ID] = &cp
	return nil
}

func (f *fakeEvents) GetByID(_ context.Context, id string) (*domain.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEvents) List(_ context.Context, after *time.Time) ([]domain.Event, error) {
	var out []domain.Event
	for _, e := range f.events {
		if after == nil || !e.EndsAt.Before(*after) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEvents) Register(ctx context.Context, reg *domain.EventRegistration) error {
	e, ok := f.events[reg.EventID]
	if !ok {
		return pgx.ErrNoRows
	}
	count, _ := f.CountRegistrations(ctx, reg.EventID)
	if e.Capacity > 0 && count >= e.Capacity {
		return repository.ErrCapacityReached
	}
	for _, r := range f.regs {
		if r.EventID == reg.EventID && strings.EqualFold(r.Email, reg.Email) {
			return repository.ErrDuplicate
		}
	}
	reg.ID = uuid.NewString()
	cp := *reg
	f.regs = append(f.regs, &cp)
	return nil
}

func (f *fakeEvents) CountRegistrations(_ context.Context, eventID string) (int, error) {
	n := 0
	for _, r := range f.regs {
		if r.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (f *fakeEvents) ListRegistrations(_ context.Context, eventID string) ([]domain.EventRegistration, error) {
	var out []domain.EventRegistration
	for _, r := range f.regs {
		if r.EventID == eventID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeEvents) GetRegistrationByNumber(_ context.Context, number string) (*domain.EventRegistration, error) {
	for _, r := range f.regs {
		if r.RegistrationNumber == number {
			cp := *r
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeEvents) CheckIn(_ context.Context, id string, at time.Time) (bool, error) {
	for _, r := range f.regs {
		if r.ID == id {
			if r.CheckedInAt != nil {
				return false, nil
			}
			r.CheckedInAt = &at
			return true, nil
		}
	}
	return false, nil
}

type fakeNewsletters struct {
	items map[string]*domain.Newsletter
	subs  []*domain.Subscriber
}

func newFakeNewsletters() *fakeNewsletters {
	return &fakeNewsletters{items: map[string]*domain.Newsletter{}}
}

func (f *fakeNewsletters) Create(_ context.Context, n *domain.Newsletter) error {
	n.ID = uuid.NewString()
	cp := *n
	f.items[n.ID] = &cp
	return nil
}

func (f *fakeNewsletters) GetByID(_ context.Context, id string) (*domain.Newsletter, error) {
	n, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *n
	return &cp, nil
}

func (f *fakeNewsletters) List(context.Context) ([]domain.Newsletter, error) {
	var out []domain.Newsletter
	for _, n := range f.items {
		out = append(out, *n)
	}
	return out, nil
}

func (f *fakeNewsletters) MarkSent(_ context.Context, id string, at time.Time, count int) (bool, error) {
	n, ok := f.items[id]
	if !ok || n.Status != domain.NewsletterDraft {
		return false, nil
	}
	n.Status = domain.NewsletterSent
	n.SentAt = &at
	n.SentCount = count
	return true, nil
}

func (f *fakeNewsletters) Subscribe(_ context.Context, sub *domain.Subscriber) error {
	for _, s := range f.subs {
		if strings.EqualFold(s.Email, sub.Email) {
			s.Active = true
			s.UnsubscribedAt = nil
			*sub = *s
			return nil
		}
	}
	sub.ID = uuid.NewString()
	sub.Active = true
	cp := *sub
	f.subs = append(f.subs, &cp)
	return nil
}

func (f *fakeNewsletters) Unsubscribe(_ context.Context, email string, at time.Time) (bool, error) {
	for _, s := range f.subs {
		if strings.EqualFold(s.Email, email) && s.Active {
			s.Active = false
			s.UnsubscribedAt = &at
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNewsletters) ListActiveSubscribers(context.Context) ([]domain.Subscriber, error) {
	var out []domain.Subscriber
	for _, s := range f.subs {
		if s.Active {
			out = append(out, *s)
		}
	}
	return out, nil
}

// ---- reports, saber, meetings, projects, letters ----

type fakeReports struct {
	templates   map[string]*domain.ReportTemplate
	submissions map[string]*domain.SubmittedReport
}

func newFakeReports() *fakeReports {
	return &fakeReports{templates: map[string]*domain.ReportTemplate{}, submissions: map[string]*domain.SubmittedReport{}}
}

func (f *fakeReports) CreateTemplate(_ context.Context, tpl *domain.ReportTemplate) error {
	tpl.ID = uuid.NewString()
	cp := *tpl
	f.templates[tpl.ID] = &cp
	return nil
}

func (f *fakeReports) GetTemplate(_ context.Context, id string) (*domain.ReportTemplate, error) {
	tpl, ok := f.templates[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *tpl
	return &cp, nil
}

func (f *fakeReports) ListTemplates(context.Context) ([]domain.ReportTemplate, error) {
	var out []domain.ReportTemplate
	for _, t := range f.templates {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeReports) CreateSubmission(_ context.Context, rep *domain.SubmittedReport) error {
	rep.ID = uuid.NewString()
	cp := *rep
	f.submissions[rep.ID] = &cp
	return nil
}

func (f *fakeReports) GetSubmission(_ context.Context, id string) (*domain.SubmittedReport, error) {
	rep, ok := f.submissions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *rep
	return &cp, nil
}

func (f *fakeReports) ListSubmissions(_ context.Context, filter repository.ReportFilter) ([]domain.SubmittedReport, error) {
	var out []domain.SubmittedReport
	for _, r := range f.submissions {
		if filter.SubmittedBy != nil && r.SubmittedBy != *filter.SubmittedBy {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeReports) Review(_ context.Context, rep *domain.SubmittedReport) error {
	if _, ok := f.submissions[rep.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *rep
	f.submissions[rep.ID] = &cp
	return nil
}

type fakeSaber struct {
	materials []domain.SaberMaterial
	dli       map[string]*domain.DLIProgress
	berap     map[int]*domain.BerapDocument
}

func newFakeSaber() *fakeSaber {
	return &fakeSaber{dli: map[string]*domain.DLIProgress{}, berap: map[int]*domain.BerapDocument{}}
}

func (f *fakeSaber) CreateMaterial(_ context.Context, m *domain.SaberMaterial) error {
	m.ID = uuid.NewString()
	f.materials = append(f.materials, *m)
	return nil
}

func (f *fakeSaber) ListMaterials(context.Context) ([]domain.SaberMaterial, error) {
	return append([]domain.SaberMaterial(nil), f.materials...), nil
}

func (f *fakeSaber) CreateDLI(_ context.Context, d *domain.DLIProgress) error {
	for _, existing := range f.dli {
		if existing.State == d.State && existing.DLICode == d.DLICode {
			return repository.ErrDuplicate
		}
	}
	d.ID = uuid.NewString()
	cp := *d
	cp.Steps = append([]domain.ProgressStep(nil), d.Steps...)
	f.dli[d.ID] = &cp
	return nil
}

func (f *fakeSaber) GetDLI(_ context.Context, id string) (*domain.DLIProgress, error) {
	d, ok := f.dli[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *d
	cp.Steps = append([]domain.ProgressStep(nil), d.Steps...)
	return &cp, nil
}

func (f *fakeSaber) UpdateDLISteps(_ context.Context, d *domain.DLIProgress) error {
	if _, ok := f.dli[d.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *d
	f.dli[d.ID] = &cp
	return nil
}

func (f *fakeSaber) ListDLI(_ context.Context, state *string) ([]domain.DLIProgress, error) {
	var out []domain.DLIProgress
	for _, d := range f.dli {
		if state == nil || d.State == *state {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeSaber) UpsertBerap(_ context.Context, b *domain.BerapDocument) error {
	if existing, ok := f.berap[b.Year]; ok {
		b.ID = existing.ID
	} else {
		b.ID = uuid.NewString()
	}
	cp := *b
	f.berap[b.Year] = &cp
	return nil
}

func (f *fakeSaber) GetBerapByYear(_ context.Context, year int) (*domain.BerapDocument, error) {
	b, ok := f.berap[year]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *b
	return &cp, nil
}

func (f *fakeSaber) ListBerap(context.Context) ([]domain.BerapDocument, error) {
	var out []domain.BerapDocument
	for _, b := range f.berap {
		out = append(out, *b)
	}
	return out, nil
}

type fakeMeetings struct{ items map[string]*domain.Meeting }

func newFakeMeetings() *fakeMeetings { return &fakeMeetings{items: map[string]*domain.Meeting{}} }

func (f *fakeMeetings) Create(_ context.Context, m *domain.Meeting) error {
	m.ID = uuid.NewString()
	cp := *m
	f.items[m.ID] = &cp
	return nil
}

func (f *fakeMeetings) GetByID(_ context.Context, id string) (*domain.Meeting, error) {
	m, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMeetings) Update(_ context.Context, m *domain.Meeting) error {
	if _, ok := f.items[m.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *m
	f.items[m.ID] = &cp
	return nil
}

func (f *fakeMeetings) ListForUser(_ context.Context, userID string) ([]domain.Meeting, error) {
	var out []domain.Meeting
	for _, m := range f.items {
		if m.OrganizerID == userID || m.IsAttendee(userID) {
			out = append(out, *m)
		}
	}
	return out, nil
}

type fakeProjects struct {
	projects map[string]*domain.Project
	tasks    map[string]*domain.Task
}

func newFakeProjects() *fakeProjects {
	return &fakeProjects{projects: map[string]*domain.Project{}, tasks: map[string]*domain.Task{}}
}

func (f *fakeProjects) CreateProject(_ context.Context, p *domain.Project) error {
	p.ID = uuid.NewString()
	cp := *p
	f.projects[p.ID] = &cp
	return nil
}

func (f *fakeProjects) GetProject(_ context.Context, id string) (*domain.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProjects) ListProjects(_ context.Context, ownerID *string) ([]domain.Project, error) {
	var out []domain.Project
	for _, p := range f.projects {
		if ownerID == nil || p.OwnerID == *ownerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProjects) CreateTask(_ context.Context, t *domain.Task) error {
	t.ID = uuid.NewString()
	cp := *t
	cp.Steps = append([]domain.ProgressStep(nil), t.Steps...)
	f.tasks[t.ID] = &cp
	return nil
}

func (f *fakeProjects) GetTask(_ context.Context, id string) (*domain.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	cp.Steps = append([]domain.ProgressStep(nil), t.Steps...)
	return &cp, nil
}

func (f *fakeProjects) UpdateTask(_ context.Context, t *domain.Task) error {
	if _, ok := f.tasks[t.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *t
	f.tasks[t.ID] = &cp
	return nil
}

func (f *fakeProjects) ListTasks(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	var out []domain.Task
	for _, t := range f.tasks {
		if filter.ProjectID != nil && t.ProjectID != *filter.ProjectID {
			continue
		}
		if filter.AssigneeID != nil && t.AssigneeID != *filter.AssigneeID {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

type fakeLetters struct{ items map[string]*domain.Letter }

func newFakeLetters() *fakeLetters { return &fakeLetters{items: map[string]*domain.Letter{}} }

func (f *fakeLetters) Create(_ context.Context, l *domain.Letter) error {
	l.ID = uuid.NewString()
	cp := *l
	f.items[l.ID] = &cp
	return nil
}

func (f *fakeLetters) GetByID(_ context.Context, id string) (*domain.Letter, error) {
	l, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *l
	return &cp, nil
}

func (f *fakeLetters) List(_ context.Context, filter repository.LetterFilter) ([]domain.Letter, error) {
	var out []domain.Letter
	for _, l := range f.items {
		if filter.SenderID != nil && l.SenderID != *filter.SenderID {
			continue
		}
		if filter.DepartmentID != nil && (l.DepartmentID == nil || *l.DepartmentID != *filter.DepartmentID) {
			continue
		}
		out = append(out, *l)
	}
	return out, nil
}

func (f *fakeLetters) UpdateStatus(_ context.Context, l *domain.Letter) error {
	if _, ok := f.items[l.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *l
	f.items[l.ID] = &cp
	return nil
}

// ---- collaborators ----

// recordingPublisher keeps published events in order.
type recordingPublisher struct{ events []events.Event }

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) ofType(t events.EventType) []events.Event {
	var out []events.Event
	for _, e := range p.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// notices decodes every notify payload.
func (p *recordingPublisher) notices() []events.NotifyPayload {
	var out []events.NotifyPayload
	for _, e := range p.ofType(events.EventNotify) {
		var payload events.NotifyPayload
		if err := e.Decode(&payload); err != nil {
			panic(fmt.Sprintf("decode notify: %v", err))
		}
		out = append(out, payload)
	}
	return out
}

type fakeScheduler struct {
	scheduled map[string]int
	cancelled map[string]int
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{scheduled: map[string]int{}, cancelled: map[string]int{}}
}

func (f *fakeScheduler) Schedule(_ context.Context, id string) error {
	f.scheduled[id]++
	return nil
}

func (f *fakeScheduler) Cancel(_ context.Context, id string) error {
	f.cancelled[id]++
	return nil
}

type fakeQueue struct{ due map[string]time.Time }

func newFakeQueue() *fakeQueue { return &fakeQueue{due: map[string]time.Time{}} }

func (q *fakeQueue) Schedule(_ context.Context, id string, at time.Time) error {
	q.due[id] = at
	return nil
}

func (q *fakeQueue) Cancel(_ context.Context, id string) error {
	delete(q.due, id)
	return nil
}

func (q *fakeQueue) ClaimDue(_ context.Context, now time.Time, limit int) ([]string, error) {
	var ids []string
	for id, at := range q.due {
		if !at.After(now) && len(ids) < limit {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		delete(q.due, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (q *fakeQueue) Next(_ context.Context, id string) (time.Time, bool, error) {
	at, ok := q.due[id]
	return at, ok, nil
}

type fakeMailer struct{ sent []mailer.Message }

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) recipients() []string {
	out := make([]string, 0, len(m.sent))
	for _, msg := range m.sent {
		out = append(out, msg.To)
	}
	sort.Strings(out)
	return out
}
