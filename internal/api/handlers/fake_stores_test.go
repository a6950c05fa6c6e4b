package handlers

import (
	"context"
	"sort"
	"sync"

	"construction-site-api-server/internal/auth"
	"construction-site-api-server/internal/database"
	"construction-site-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory stores mirroring the filters of the database package.

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, database.ErrInvalidID
	}
	return oid, nil
}

type memProjects struct {
	mu       sync.Mutex
	projects []models.Project
}

func (m *memProjects) Create(_ context.Context, p *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = primitive.NewObjectID()
	m.projects = append(m.projects, *p)
	return nil
}

func (m *memProjects) List(context.Context) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Project{}, m.projects...), nil
}

func (m *memProjects) find(id string) (int, error) {
	oid, err := parseID(id)
	if err != nil {
		return -1, err
	}
	for i, p := range m.projects {
		if p.ID == oid {
			return i, nil
		}
	}
	return -1, database.ErrNotFound
}

func (m *memProjects) Get(_ context.Context, id string) (models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, err := m.find(id)
	if err != nil {
		return models.Project{}, err
	}
	return m.projects[i], nil
}

func (m *memProjects) Update(_ context.Context, id string, p models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, err := m.find(id)
	if err != nil {
		return err
	}
	cur := &m.projects[i]
	cur.Name, cur.Description, cur.StartDate = p.Name, p.Description, p.StartDate
	if p.Status != "" {
		cur.Status = p.Status
	}
	return nil
}

func (m *memProjects) SetStatus(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, err := m.find(id)
	if err != nil {
		return err
	}
	m.projects[i].Status = status
	return nil
}

func (m *memProjects) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, err := m.find(id)
	if err != nil {
		return err
	}
	m.projects = append(m.projects[:i], m.projects[i+1:]...)
	return nil
}

type memEmployees struct {
	mu        sync.Mutex
	employees []models.Employee
}

func (m *memEmployees) Create(_ context.Context, e *models.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = primitive.NewObjectID()
	m.employees = append(m.employees, *e)
	return nil
}

func (m *memEmployees) List(_ context.Context, projectID string) ([]models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Employee{}
	for _, e := range m.employees {
		if projectID == "" || contains(e.AssignedProjects, projectID) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memEmployees) find(id string) (int, error) {
	oid, err := parseID(id)
	if err != nil {
		return -1, err
	}
	for i, e := range m.employees {
		if e.ID == oid {
			return i, nil
		}
	}
	return -1, database.ErrNotFound
}

func (m *memEmployees) Get(_ context.Context, id string) (models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, err := m.find(id)
	if err != nil {
		return models.Employee{}, err
	}
	return m.employees[i], nil
}

func (m *memEmployees) Update(_ context.Context, id string, e models.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, err := m.find(id)
	if err != nil {
		return err
	}
	e.ID, e.CreatedAt = m.employees[i].ID, m.employees[i].CreatedAt
	m.employees[i] = e
	return nil
}

func (m *memEmployees) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, err := m.find(id)
	if err != nil {
		return err
	}
	m.employees = append(m.employees[:i], m.employees[i+1:]...)
	return nil
}

type memAttendance struct {
	mu      sync.Mutex
	records []models.Attendance
	err     error
}

func (m *memAttendance) Upsert(_ context.Context, a models.Attendance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for i, r := range m.records {
		if r.EmployeeID == a.EmployeeID && r.Date == a.Date {
			a.ID = r.ID
			m.records[i] = a
			return nil
		}
	}
	a.ID = primitive.NewObjectID()
	m.records = append(m.records, a)
	return nil
}

func (m *memAttendance) ForEmployees(_ context.Context, employeeIDs []string) ([]models.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Attendance{}
	for _, r := range m.records {
		if contains(employeeIDs, r.EmployeeID) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (m *memAttendance) DeleteForEmployee(_ context.Context, employeeID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []models.Attendance
	var n int64
	for _, r := range m.records {
		if r.EmployeeID == employeeID {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return n, nil
}

type memUsers struct {
	mu    sync.Mutex
	users []models.User
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cur := range m.users {
		if cur.Username == u.Username {
			return database.ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	m.users = append(m.users, *u)
	return nil
}

func (m *memUsers) List(_ context.Context, projectID string) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.User{}
	for _, u := range m.users {
		if projectID == "" || u.ProjectAssigned == projectID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUsers) find(id string) (int, error) {
	oid, err := parseID(id)
	if err != nil {
		return -1, err
	}
	for i, u := range m.users {
		if u.ID == oid {
			return i, nil
		}
	}
	return -1, database.ErrNotFound
}

func (m *memUsers) Get(_ context.Context, id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, err := m.find(id)
	if err != nil {
		return models.User{}, err
	}
	return m.users[i], nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, database.ErrNotFound
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, err := m.find(id)
	if err != nil {
		return err
	}
	m.users = append(m.users[:i], m.users[i+1:]...)
	return nil
}

func (m *memUsers) UpdateProfile(_ context.Context, id string, p database.ProfileUpdate) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, err := m.find(id)
	if err != nil {
		return models.User{}, err
	}
	if p.Username != "" {
		for j, u := range m.users {
			if j != i && u.Username == p.Username {
				return models.User{}, database.ErrDuplicate
			}
		}
		m.users[i].Username = p.Username
	}
	if p.PasswordHash != "" {
		m.users[i].Password = p.PasswordHash
	}
	if p.Image != "" {
		m.users[i].Image = p.Image
	}
	return m.users[i], nil
}

type memOTPs struct {
	mu       sync.Mutex
	otps     []models.OTP
	imageErr error
}

func (m *memOTPs) RetireOpen(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.otps {
		if m.otps[i].UserID == userID {
			m.otps[i].Consumed = true
		}
	}
	return nil
}

func (m *memOTPs) Insert(_ context.Context, o *models.OTP) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = primitive.NewObjectID()
	m.otps = append(m.otps, *o)
	return nil
}

func (m *memOTPs) index(otpID, userID string) int {
	for i, o := range m.otps {
		if o.OTPID == otpID && o.UserID == userID {
			return i
		}
	}
	return -1
}

func (m *memOTPs) Find(_ context.Context, otpID, userID string) (models.OTP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(otpID, userID)
	if i < 0 {
		return models.OTP{}, database.ErrNotFound
	}
	return m.otps[i], nil
}

func (m *memOTPs) CountAttempt(_ context.Context, otpID, userID string) (models.OTP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(otpID, userID)
	if i < 0 || m.otps[i].Consumed || m.otps[i].Attempts >= auth.MaxOTPAttempts {
		return models.OTP{}, database.ErrNotFound
	}
	before := m.otps[i]
	m.otps[i].Attempts++
	return before, nil
}

func (m *memOTPs) Consume(_ context.Context, otpID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.otps {
		if m.otps[i].OTPID == otpID && !m.otps[i].Consumed {
			m.otps[i].Consumed = true
			return true, nil
		}
	}
	return false, nil
}

func (m *memOTPs) Reissue(_ context.Context, prev, next models.OTP) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(prev.OTPID, prev.UserID)
	if i < 0 {
		return database.ErrNotFound
	}
	cur := &m.otps[i]
	if cur.Consumed || cur.Resends != prev.Resends || cur.Attempts >= auth.MaxOTPAttempts {
		return database.ErrNotFound
	}
	cur.CodeHash, cur.ExpiresAt, cur.Resends = next.CodeHash, next.ExpiresAt, next.Resends
	return nil
}

func (m *memOTPs) SetLoginImage(_ context.Context, otpID, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.imageErr != nil {
		return m.imageErr
	}
	for i := range m.otps {
		if m.otps[i].OTPID == otpID {
			m.otps[i].LoginImage = url
		}
	}
	return nil
}

// latest returns the most recently issued code.
func (m *memOTPs) latest() models.OTP {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.otps[len(m.otps)-1]
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
