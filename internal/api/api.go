package api

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/wuwenbin0122/applytrackr/internal/applications"
	"github.com/wuwenbin0122/applytrackr/internal/apperror"
	"github.com/wuwenbin0122/applytrackr/internal/auth"
	"github.com/wuwenbin0122/applytrackr/internal/models"
)

var errInvalidPayload = apperror.Validation("invalid payload")

type Handler struct {
	authService  *auth.Service
	tokens       TokenValidator
	applications *applications.Service
	logger       *zap.Logger
}

func NewHandler(authService *auth.Service, tokens TokenValidator, apps *applications.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{authService: authService, tokens: tokens, applications: apps, logger: logger}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	apiGroup := router.Group("/api")

	apiGroup.GET("/health", h.handleHealth)

	authGroup := apiGroup.Group("/auth")
	authGroup.POST("/register", h.handleRegister)
	authGroup.POST("/login", h.handleLogin)
	authGroup.GET("/me", RequireAuth(h.tokens), h.handleMe)

	appGroup := apiGroup.Group("/applications", RequireAuth(h.tokens))
	appGroup.POST("", h.handleCreateApplication)
	appGroup.GET("", h.handleListApplications)
	appGroup.GET("/:id", h.handleGetApplication)
	appGroup.PUT("/:id", h.handleUpdateApplication)
	appGroup.PATCH("/:id", h.handleUpdateApplication)
	appGroup.DELETE("/:id", h.handleDeleteApplication)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createApplicationRequest struct {
	Company     string     `json:"company"`
	Position    string     `json:"position"`
	JobLink     string     `json:"jobLink"`
	Status      string     `json:"status" binding:"omitempty,application_status"`
	AppliedDate *dateInput `json:"appliedDate"`
	Deadline    *dateInput `json:"deadline"`
	Notes       string     `json:"notes"`
}

// updateApplicationRequest lists the only fields an update may touch; anything
// else in the body is ignored.
type updateApplicationRequest struct {
	Company     *string    `json:"company"`
	Position    *string    `json:"position"`
	JobLink     *string    `json:"jobLink"`
	Status      *string    `json:"status" binding:"omitempty,application_status"`
	AppliedDate *dateInput `json:"appliedDate"`
	Deadline    patchDate  `json:"deadline"`
	Notes       *string    `json:"notes"`
}

// dateInput accepts RFC 3339 timestamps and plain dates (what HTML date inputs send).
type dateInput struct {
	time.Time
}

func (d *dateInput) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if err := d.Time.UnmarshalJSON(data); err == nil {
		return nil
	}
	parsed, err := time.Parse(`"`+time.DateOnly+`"`, string(data))
	if err != nil {
		return err
	}
	d.Time = parsed
	return nil
}

// patchDate tells an absent field apart from an explicit null.
type patchDate struct {
	value   dateInput
	present bool
	null    bool
}

func (d *patchDate) UnmarshalJSON(data []byte) error {
	d.present = true
	if bytes.Equal(data, []byte("null")) {
		d.null = true
		return nil
	}
	return d.value.UnmarshalJSON(data)
}

func (d *dateInput) ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time.UTC()
	return &t
}

func (h *Handler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "ApplyTrackr backend is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, errInvalidPayload)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newAuthResponse(result))
}

func (h *Handler) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, errInvalidPayload)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newAuthResponse(result))
}

func (h *Handler) handleMe(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	user, err := h.authService.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) handleCreateApplication(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req createApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, bindingError(err))
		return
	}

	app, err := h.applications.Create(c.Request.Context(), userID, applications.CreateInput{
		Company:     req.Company,
		Position:    req.Position,
		JobLink:     req.JobLink,
		Status:      req.Status,
		AppliedDate: req.AppliedDate.ptr(),
		Deadline:    req.Deadline.ptr(),
		Notes:       req.Notes,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, app)
}

func (h *Handler) handleListApplications(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	apps, err := h.applications.List(c.Request.Context(), userID, applications.ListQuery{
		Status: c.Query("status"),
		SortBy: c.Query("sortBy"),
		Order:  c.Query("order"),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, apps)
}

func (h *Handler) handleGetApplication(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	app, err := h.applications.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

func (h *Handler) handleUpdateApplication(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req updateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, bindingError(err))
		return
	}

	patch := models.ApplicationPatch{
		Company:     req.Company,
		Position:    req.Position,
		JobLink:     req.JobLink,
		AppliedDate: req.AppliedDate.ptr(),
		Notes:       req.Notes,
	}
	switch {
	case req.Deadline.null:
		patch.ClearDeadline = true
	case req.Deadline.present:
		patch.Deadline = req.Deadline.value.ptr()
	}
	if req.Status != nil {
		status := models.ApplicationStatus(*req.Status)
		patch.Status = &status
	}

	app, err := h.applications.Update(c.Request.Context(), userID, c.Param("id"), patch)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

func (h *Handler) handleDeleteApplication(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	if err := h.applications.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Application deleted"})
}

// userID reads the identity bound by RequireAuth. Routes registered without the
// guard get a 401 instead of running unscoped.
func (h *Handler) userID(c *gin.Context) (string, bool) {
	userID, ok := auth.UserIDFromContext(c.Request.Context())
	if !ok {
		h.writeError(c, errMalformedAuthHeader)
		return "", false
	}
	return userID, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	if apperror.KindOf(err) == apperror.KindInternal {
		h.logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	abortWithError(c, err)
}

// bindingError maps the status tag failure to its domain error; any other
// decode problem is a bad payload.
func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == applications.StatusTag {
				return applications.ErrInvalidStatus
			}
		}
	}
	return errInvalidPayload
}

func newAuthResponse(result *auth.AuthResult) gin.H {
	return gin.H{
		"token":     result.Token,
		"expiresAt": result.ExpiresAt.Format(time.RFC3339),
		"user":      result.User,
	}
}
