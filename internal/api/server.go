package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/orgwise/payroll_service/internal/controllers"
	"github.com/orgwise/payroll_service/internal/entity"
)

type Server struct {
	deps        *controllers.Dependens
	Controllers *controllers.Controllers
}

func NewServer(deps *controllers.Dependens) *Server {
	return &Server{
		deps:        deps,
		Controllers: controllers.NewControllers(deps),
	}
}

// Routes mounts the API surface on a fresh chi router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/api/auth/login", s.AuthLogin)
	r.Post("/api/auth/logout", s.AuthLogout)

	r.Get("/api/employees", s.GetEmployees)
	r.Post("/api/employees", s.CreateEmployee)
	r.Get("/api/employees/{id}", s.GetEmployeeByID)
	r.Put("/api/employees/{id}", s.UpdateEmployee)
	r.Delete("/api/employees/{id}", s.DeleteEmployee)
	r.Get("/api/employees/{id}/salary", s.GetEmployeeSalary)

	r.Get("/api/payroll/total", s.GetTotalPayroll)

	return r
}

// AuthLogin authenticates an employee and returns a JWT token pair.
func (s *Server) AuthLogin(w http.ResponseWriter, r *http.Request) {
	var req entity.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.deps.Logger.Error("Error decoding request body", slog.String("error", err.Error()))
		s.httpResponse(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"}, "error")
		return
	}

	accessToken, refreshToken, err := s.Controllers.AuthController.AuthLogin(&req)
	if err != nil {
		s.deps.Logger.Error("Error logging in", slog.String("error", err.Error()))
		s.httpResponse(w, http.StatusUnauthorized, map[string]string{"error": err.Error()}, "error")
		return
	}

	s.httpResponse(w, http.StatusOK, entity.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, "success")
}

// AuthLogout revokes the caller's access token.
func (s *Server) AuthLogout(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

	ctx := context.Background()
	if err := s.deps.Redis.Del(ctx, "access_token:"+tokenStr).Err(); err != nil {
		s.deps.Logger.Error("Error deleting access token from Redis", slog.String("error", err.Error()))
		s.httpResponse(w, http.StatusInternalServerError, "Failed to logout", "error")
		return
	}

	s.httpResponse(w, http.StatusOK, map[string]string{"message": "Logged out successfully"}, "success")
}

// GetEmployees lists employees, optionally filtered by role.
func (s *Server) GetEmployees(w http.ResponseWriter, r *http.Request) {
	if err := s.checkAuthUser(r); err != nil {
		s.httpResponse(w, http.StatusUnauthorized, "Unauthorized", "error")
		return
	}

	var params entity.GetEmployeesParams
	if roleStr := r.URL.Query().Get("role"); roleStr != "" {
		role := entity.Role(roleStr)
		params.Role = &role
	}

	employees, err := s.Controllers.EmployeeController.GetEmployees(r.Context(), &params)
	if err != nil {
		s.deps.Logger.Error("Error getting employees", slog.String("error", err.Error()))
		s.httpResponse(w, http.StatusInternalServerError, "Failed to get employees", "error")
		return
	}

	s.httpResponse(w, http.StatusOK, employees, "success")
}

func (s *Server) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	if err := s.checkAuthUser(r); err != nil {
		s.httpResponse(w, http.StatusUnauthorized, "Unauthorized", "error")
		return
	}

	var emp entity.Employee
	if err := json.NewDecoder(r.Body).Decode(&emp); err != nil {
		s.deps.Logger.Error("Error decoding request body", slog.String("error", err.Error()))
		s.httpResponse(w, http.StatusBadRequest, "Invalid request body", "error")
		return
	}

	created, err := s.Controllers.EmployeeController.CreateEmployee(r.Context(), emp)
	if err != nil {
		s.deps.Logger.Error("Error creating employee", slog.String("error", err.Error()))
		s.httpResponse(w, http.StatusBadRequest, err.Error(), "error")
		return
	}

	s.httpResponse(w, http.StatusCreated, created, "success")
}

func (s *Server) GetEmployeeByID(w http.ResponseWriter, r *http.Request) {
	if err := s.checkAuthUser(r); err != nil {
		s.httpResponse(w, http.StatusUnauthorized, "Unauthorized", "error")
		return
	}

	id, err := s.employeeID(r)
	if err != nil {
		s.httpResponse(w, http.StatusBadRequest, "Invalid employee id", "error")
		return
	}

	employee, err := s.Controllers.EmployeeController.GetEmployeeByID(r.Context(), id)
	if err != nil {
		s.httpResponse(w, s.errorStatus(err), err.Error(), "error")
		return
	}

	s.httpResponse(w, http.StatusOK, employee, "success")
}

// UpdateEmployee reassigns role, base fields and the subordinate set.
func (s *Server) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	if err := s.checkAuthUser(r); err != nil {
		s.httpResponse(w, http.StatusUnauthorized, "Unauthorized", "error")
		return
	}

	id, err := s.employeeID(r)
	if err != nil {
		s.httpResponse(w, http.StatusBadRequest, "Invalid employee id", "error")
		return
	}

	var req entity.UpdateEmployeeRequest
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.deps.Logger.Error("Error decoding request body", slog.String("error", err.Error()))
		s.httpResponse(w, http.StatusBadRequest, "Invalid request body", "error")
		return
	}

	updated, err := s.Controllers.EmployeeController.UpdateEmployee(r.Context(), id, &req)
	if err != nil {
		s.httpResponse(w, s.errorStatus(err), err.Error(), "error")
		return
	}

	s.httpResponse(w, http.StatusOK, updated, "success")
}

func (s *Server) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := s.checkAuthUser(r); err != nil {
		s.httpResponse(w, http.StatusUnauthorized, "Unauthorized", "error")
		return
	}

	id, err := s.employeeID(r)
	if err != nil {
		s.httpResponse(w, http.StatusBadRequest, "Invalid employee id", "error")
		return
	}

	if err = s.Controllers.EmployeeController.DeleteEmployee(r.Context(), id); err != nil {
		s.httpResponse(w, s.errorStatus(err), err.Error(), "error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetEmployeeSalary computes one employee's total compensation as of the
// date query parameter (today when absent).
func (s *Server) GetEmployeeSalary(w http.ResponseWriter, r *http.Request) {
	if err := s.checkAuthUser(r); err != nil {
		s.httpResponse(w, http.StatusUnauthorized, "Unauthorized", "error")
		return
	}

	id, err := s.employeeID(r)
	if err != nil {
		s.httpResponse(w, http.StatusBadRequest, "Invalid employee id", "error")
		return
	}

	asOf, err := s.asOfDate(r)
	if err != nil {
		s.httpResponse(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD", "error")
		return
	}

	salary, err := s.Controllers.SalaryController.ComputeSalary(r.Context(), id, asOf)
	if err != nil {
		s.httpResponse(w, s.errorStatus(err), err.Error(), "error")
		return
	}

	s.httpResponse(w, http.StatusOK, map[string]any{
		"id":     id,
		"as_of":  asOf.Format("2006-01-02"),
		"salary": salary,
	}, "success")
}

// GetTotalPayroll sums computed salaries over every employee.
func (s *Server) GetTotalPayroll(w http.ResponseWriter, r *http.Request) {
	if err := s.checkAuthUser(r); err != nil {
		s.httpResponse(w, http.StatusUnauthorized, "Unauthorized", "error")
		return
	}

	asOf, err := s.asOfDate(r)
	if err != nil {
		s.httpResponse(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD", "error")
		return
	}

	total, err := s.Controllers.SalaryController.TotalPayroll(r.Context(), asOf)
	if err != nil {
		s.httpResponse(w, s.errorStatus(err), err.Error(), "error")
		return
	}

	s.httpResponse(w, http.StatusOK, map[string]any{
		"as_of": asOf.Format("2006-01-02"),
		"total": total,
	}, "success")
}

func (s *Server) employeeID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
}

func (s *Server) asOfDate(r *http.Request) (time.Time, error) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		return time.Now(), nil
	}

	return time.Parse("2006-01-02", dateStr)
}

func (s *Server) errorStatus(err error) int {
	switch {
	case errors.Is(err, entity.ErrEmployeeNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrRoleCannotSupervise),
		errors.Is(err, entity.ErrSelfSubordinate),
		errors.Is(err, entity.ErrSupervisorCycle),
		errors.Is(err, entity.ErrHasSubordinates),
		errors.Is(err, entity.ErrUnknownRole):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) checkAuthUser(r *http.Request) error {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		s.deps.Logger.Warn("Authorization header missing")
		return errors.New("authorization header missing")
	}

	if _, err := s.Controllers.AuthController.CheckUserToken(authHeader); err != nil {
		s.deps.Logger.Warn("Unauthorized request", slog.String("error", err.Error()))
		return err
	}

	return nil
}

func (s *Server) httpResponse(w http.ResponseWriter, status int, data any, respType string) {
	resp := map[string]any{
		"status": status,
		"type":   respType,
		"data":   data,
	}

	respData, marshalErr := json.Marshal(resp)
	if marshalErr != nil {
		s.deps.Logger.Error("Error marshaling response", slog.String("error", marshalErr.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(respData); err != nil {
		s.deps.Logger.Error("Error writing response", slog.String("error", err.Error()))
	}
}
