// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"usermgmt/internal/delivery/api/response"
	"usermgmt/internal/domain/entity"
	domainerrors "usermgmt/internal/domain/errors"
	"usermgmt/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// UserHandlerParams holds dependencies for UserHandler, injected by Fx.
type UserHandlerParams struct {
	fx.In

	UserUC usecase.UserUsecase
	Logger *slog.Logger
}

// UserHandler serves the /users resource.
type UserHandler struct {
	userUC usecase.UserUsecase
	logger *slog.Logger
}

// NewUserHandler is the constructor for UserHandler
func NewUserHandler(params UserHandlerParams) *UserHandler {
	return &UserHandler{
		userUC: params.UserUC,
		logger: params.Logger,
	}
}

// AddUserRequest represents the request body for creating a user
type AddUserRequest struct {
	FirstName string `json:"firstName" validate:"max=255"`
	LastName  string `json:"lastName" validate:"max=255"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required"`
	Role      string `json:"role" validate:"omitempty,max=16"`
}

// UpdateUserRequest represents the request body for updating a user.
// Email selects the user; NewEmail and Password are optional.
type UpdateUserRequest struct {
	Email     string  `json:"email" validate:"required,email,max=255"`
	NewEmail  *string `json:"newEmail" validate:"omitempty,email,max=255"`
	FirstName string  `json:"firstName" validate:"max=255"`
	LastName  string  `json:"lastName" validate:"max=255"`
	Password  *string `json:"password"`
	Role      string  `json:"role" validate:"omitempty,max=16"`
}

// UserResponse is the public view of a user. The password hash is never serialized.
type UserResponse struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role.String(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// FindAll handles GET /users/all
func (h *UserHandler) FindAll(c echo.Context) error {
	users, err := h.userUC.FindAll(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}

	return response.Success(c, http.StatusOK, out)
}

// Add handles POST /users/add
func (h *UserHandler) Add(c echo.Context) error {
	var req AddUserRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid user input")
	}

	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.userUC.Add(c.Request().Context(), &usecase.AddUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toUserResponse(user))
}

// FindByEmail handles GET /users/:email
func (h *UserHandler) FindByEmail(c echo.Context) error {
	email, err := emailParam(c)
	if err != nil {
		return err
	}

	user, err := h.userUC.FindByEmail(c.Request().Context(), email)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toUserResponse(user))
}

// FindByID handles GET /users/id/:id
func (h *UserHandler) FindByID(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return domainerrors.ErrValidationFailed.WithDetails("id must be a positive integer")
	}

	user, err := h.userUC.FindByID(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toUserResponse(user))
}

// DeleteByEmail handles DELETE /users/:email. Deleting an unknown email still answers 204.
func (h *UserHandler) DeleteByEmail(c echo.Context) error {
	email, err := emailParam(c)
	if err != nil {
		return err
	}

	if err := h.userUC.DeleteByEmail(c.Request().Context(), email); err != nil {
		return errors.WithStack(err)
	}

	return response.NoContent(c)
}

// Update handles PUT /users/update
func (h *UserHandler) Update(c echo.Context) error {
	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid user input")
	}

	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.userUC.Update(c.Request().Context(), &usecase.UpdateUserInput{
		Email:     req.Email,
		NewEmail:  req.NewEmail,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toUserResponse(user))
}

// emailParam decodes the :email segment; clients may percent-encode '@'.
func emailParam(c echo.Context) (string, error) {
	email, err := url.PathUnescape(c.Param("email"))
	if err != nil || email == "" {
		return "", domainerrors.ErrValidationFailed.WithDetails("email path parameter is malformed")
	}

	return email, nil
}
