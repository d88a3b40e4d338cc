package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gruzdev-dev/codex-users/core/domain"
	"github.com/gruzdev-dev/codex-users/core/services"
)

type Handler struct {
	userService *services.UserService
}

func NewHandler(userService *services.UserService) *Handler {
	return &Handler{
		userService: userService,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/users", h.ListUsers).Methods("GET")
	router.HandleFunc("/users", h.CreateUser).Methods("POST")
	// registered before the {id} routes so "stats" is not taken for an id
	router.HandleFunc("/users/stats", h.UserStats).Methods("GET")
	router.HandleFunc("/users/{id}", h.GetUser).Methods("GET")
	router.HandleFunc("/users/{id}", h.UpdateUser).Methods("PUT")
	router.HandleFunc("/users/{id}", h.DeleteUser).Methods("DELETE")
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
}

type UpdateUserRequest struct {
	Username      *string `json:"username"`
	Email         *string `json:"email"`
	Name          *string `json:"name"`
	Avatar        *string `json:"avatar"`
	EmailVerified *bool   `json:"email_verified"`
}

type UserStats struct {
	TotalActiveUsers int64 `json:"total_active_users"`
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrUserIDRequired)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListActive(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve users: "+err.Error())
		return
	}

	count := len(users)
	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data:    users,
		Count:   &count,
		Message: "users retrieved successfully",
	})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to retrieve user: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data:    user,
	})
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "username, email and name are required")
		return
	}

	// Existence checks happen here, not inside Create; two racing creates
	// can both pass and the losing insert surfaces as a store error.
	exists, err := h.userService.ExistsByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user: "+err.Error())
		return
	}
	if exists {
		writeError(w, http.StatusConflict, "user with this email already exists")
		return
	}

	exists, err = h.userService.ExistsByUsername(r.Context(), req.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user: "+err.Error())
		return
	}
	if exists {
		writeError(w, http.StatusConflict, "user with this username already exists")
		return
	}

	user, err := h.userService.Create(r.Context(), services.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Name:     req.Name,
		Avatar:   req.Avatar,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user: "+err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		Success: true,
		Data:    user,
		Message: "user created successfully",
	})
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userService.Update(r.Context(), id, services.UpdateUserInput{
		Username:      req.Username,
		Email:         req.Email,
		Name:          req.Name,
		Avatar:        req.Avatar,
		EmailVerified: req.EmailVerified,
	})
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update user: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data:    user,
		Message: "user updated successfully",
	})
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.userService.Delete(r.Context(), id); err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete user: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: "user deleted successfully",
	})
}

func (h *Handler) UserStats(w http.ResponseWriter, r *http.Request) {
	count, err := h.userService.CountActive(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve user statistics: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data:    UserStats{TotalActiveUsers: count},
		Message: "user statistics retrieved successfully",
	})
}
