package handlers

import (
	"context"
	"net/http"
	"time"

	"cleo_backend/internal/models"
	"cleo_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID    int
	signUpErr   error
	signInToken string
	signInErr   error
	claims      service.TokenClaims
	parseErr    error
	signOutErr  error

	lastSignUpUsername string
	lastSignUpPassword string
	lastSignInUsername string
	lastParseToken     string
	signedOut          []string
}

func (m *mockAuth) SignUp(_ context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) SignIn(_ context.Context, username, _ string) (string, error) {
	m.lastSignInUsername = username
	return m.signInToken, m.signInErr
}
func (m *mockAuth) ParseToken(token string) (service.TokenClaims, error) {
	m.lastParseToken = token
	return m.claims, m.parseErr
}
func (m *mockAuth) SignOut(_ context.Context, sid string) error {
	m.signedOut = append(m.signedOut, sid)
	return m.signOutErr
}

type mockSessions struct {
	session  models.Session
	getErr   error
	setErr   error
	lastSet  models.DateRange
	getCalls int
}

func (m *mockSessions) Create(_ context.Context, userID int) (models.Session, error) {
	return models.Session{ID: "new", UserID: userID}, nil
}
func (m *mockSessions) Get(_ context.Context, id string) (models.Session, error) {
	m.getCalls++
	if m.getErr != nil {
		return models.Session{}, m.getErr
	}
	s := m.session
	s.ID = id
	return s, nil
}
func (m *mockSessions) SetDateRange(_ context.Context, _ string, r models.DateRange) (models.DateRange, error) {
	m.lastSet = r
	return r, m.setErr
}
func (m *mockSessions) Delete(context.Context, string) error { return nil }

type mockSimulation struct {
	window     models.SimulationWindow
	windowErr  error
	toggleErr  error
	lastToggle service.ToggleParams
	toggles    int
}

func (m *mockSimulation) Window(context.Context, string) (models.SimulationWindow, error) {
	return m.window, m.windowErr
}
func (m *mockSimulation) Toggle(_ context.Context, _ string, p service.ToggleParams) (models.SimulationWindow, error) {
	m.toggles++
	m.lastToggle = p
	if m.toggleErr != nil {
		return models.SimulationWindow{}, m.toggleErr
	}
	if !p.IsSimulation {
		return models.SimulationWindow{}, nil
	}
	return models.SimulationWindow{IsActive: true, StartDate: p.StartDate, EndDate: p.EndDate}, nil
}

type mockTimetables struct {
	result     models.CurrentAndUpcoming
	err        error
	lastCreate service.TimetableParams
	lastEmp    int64
	lastAt     *time.Time
	clockNow   time.Time
}

func (m *mockTimetables) Create(_ context.Context, p service.TimetableParams) (models.Timetable, error) {
	m.lastCreate = p
	return models.Timetable{ID: 1, EmployeeID: p.EmployeeID, RestDayNumber: p.RestDayNumber, EffectiveStart: models.NewUTCTime(p.EffectiveStart)}, m.err
}
func (m *mockTimetables) CurrentAndUpcoming(ctx context.Context, employeeID int64, at *time.Time) (models.CurrentAndUpcoming, error) {
	m.lastEmp = employeeID
	m.lastAt = at
	m.clockNow = service.NewSessionClock().Now(ctx)
	return m.result, m.err
}

type mockAppointments struct {
	list            []models.Appointment
	err             error
	lastCreate      service.AppointmentParams
	lastDay, lastTZ string
}

func (m *mockAppointments) Create(_ context.Context, p service.AppointmentParams) (models.Appointment, error) {
	m.lastCreate = p
	return models.Appointment{ID: 9, MemberID: p.MemberID, EmployeeID: p.EmployeeID}, m.err
}
func (m *mockAppointments) ForDay(_ context.Context, day, tz string) ([]models.Appointment, error) {
	m.lastDay, m.lastTZ = day, tz
	return m.list, m.err
}

type mockVouchers struct {
	page     models.MemberVoucherPage
	err      error
	lastList service.VoucherListParams
}

func (m *mockVouchers) Create(_ context.Context, p service.VoucherParams) (models.MemberVoucher, error) {
	return models.MemberVoucher{ID: 3, MemberName: p.MemberName, VoucherName: p.VoucherName, Balance: p.Balance}, m.err
}
func (m *mockVouchers) List(_ context.Context, p service.VoucherListParams) (models.MemberVoucherPage, error) {
	m.lastList = p
	return m.page, m.err
}

// ---- Shared Test Helpers ----

const testToken = "good-token"

// newAuthedService returns a Service whose auth accepts testToken for user 7
// in session "sid-1". Callers fill in the remaining sub-services.
func newAuthedService() *service.Service {
	return &service.Service{
		Authorization: &mockAuth{claims: service.TokenClaims{UserID: 7, SessionID: "sid-1"}},
		Sessions:      &mockSessions{session: models.Session{UserID: 7}},
		Simulation:    &mockSimulation{},
	}
}

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
