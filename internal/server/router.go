package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/placeboard/placeboard/internal/comments"
	"github.com/placeboard/placeboard/internal/locations"
	"github.com/placeboard/placeboard/internal/users"
	"go.uber.org/zap"
)

const userIDContextKey = "placeboard_user_id"

var (
	errMissingTokenManager     = errors.New("token manager dependency required")
	errMissingUserService      = errors.New("user service dependency required")
	errMissingLocationService  = errors.New("location service dependency required")
	errMissingCommentService   = errors.New("comment service dependency required")
	errInvalidAuthorization    = errors.New("authorization header missing or invalid")
)

// TokenManager issues and validates the bearer tokens handed out at login.
type TokenManager interface {
	IssueToken(ctx context.Context, userID string) (string, error)
	ValidateToken(token string) (string, error)
}

// Dependencies wires the HTTP layer to its collaborating services.
type Dependencies struct {
	TokenManager    TokenManager
	UserService     *users.Service
	LocationService *locations.Service
	CommentService  *comments.Service
	Logger          *zap.Logger
}

// NewHTTPHandler builds the API router: public auth endpoints plus the
// bearer-protected locations/comments surface.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.TokenManager == nil {
		return nil, errMissingTokenManager
	}
	if deps.UserService == nil {
		return nil, errMissingUserService
	}
	if deps.LocationService == nil {
		return nil, errMissingLocationService
	}
	if deps.CommentService == nil {
		return nil, errMissingCommentService
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		tokens:    deps.TokenManager,
		users:     deps.UserService,
		locations: deps.LocationService,
		comments:  deps.CommentService,
		logger:    logger,
	}

	router.POST("/auth/login", handler.handleLogin)
	router.POST("/auth/register", handler.handleRegister)

	protected := router.Group("/")
	protected.Use(handler.authorizeRequest)
	protected.GET("/locations/:locationId", handler.handleGetLocation)
	protected.POST("/locations", handler.handleCreateLocation)
	protected.GET("/locations/:locationId/comments", handler.handleListComments)
	protected.POST("/locations/:locationId/comments", handler.handleCreateComment)
	protected.PATCH("/locations/:locationId/comments/:commentId", handler.handleUpdateComment)
	protected.DELETE("/locations/:locationId/comments/:commentId", handler.handleDeleteComment)

	return router, nil
}

type httpHandler struct {
	tokens    TokenManager
	users     *users.Service
	locations *locations.Service
	comments  *comments.Service
	logger    *zap.Logger
}

type loginRequestPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequestPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type authResponsePayload struct {
	User  userPayload `json:"user"`
	Token string      `json:"token"`
}

type locationPayload struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

type authorPayload struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type commentPayload struct {
	ID        string        `json:"_id"`
	Comment   string        `json:"comment"`
	CreatedBy authorPayload `json:"createdBy"`
	CreatedAt time.Time     `json:"createdAt"`
}

func (h *httpHandler) handleLogin(c *gin.Context) {
	var request loginRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	profile, err := h.users.Authenticate(c.Request.Context(), request.Email, request.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid email or password"})
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "login failed"})
		return
	}

	h.respondWithToken(c, profile)
}

func (h *httpHandler) handleRegister(c *gin.Context) {
	var request registerRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	profile, err := h.users.Register(c.Request.Context(), request.Name, request.Email, request.Password)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"message": "email already registered"})
		case errors.Is(err, users.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		default:
			h.logger.Error("registration failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "registration failed"})
		}
		return
	}

	h.respondWithToken(c, profile)
}

func (h *httpHandler) respondWithToken(c *gin.Context, profile users.Profile) {
	token, err := h.tokens.IssueToken(c.Request.Context(), profile.ID)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "token issue failed"})
		return
	}
	c.JSON(http.StatusOK, authResponsePayload{
		User:  userPayload{ID: profile.ID, Name: profile.Name, Email: profile.Email},
		Token: token,
	})
}

func (h *httpHandler) handleGetLocation(c *gin.Context) {
	record, err := h.locations.Get(c.Request.Context(), c.Param("locationId"))
	if err != nil {
		if errors.Is(err, locations.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "location not found"})
			return
		}
		h.logger.Error("location lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "location lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"location": toLocationPayload(record)})
}

func (h *httpHandler) handleCreateLocation(c *gin.Context) {
	var request locationPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	record, err := h.locations.Create(c.Request.Context(), request.ID, request.Name, request.Address)
	if err != nil {
		switch {
		case errors.Is(err, locations.ErrAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"message": "location already exists"})
		case errors.Is(err, locations.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		default:
			h.logger.Error("location create failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "location create failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"location": toLocationPayload(record)})
}

func (h *httpHandler) handleListComments(c *gin.Context) {
	records, err := h.comments.List(c.Request.Context(), c.Param("locationId"))
	if err != nil {
		h.logger.Error("comment list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "comment list failed"})
		return
	}

	payload := make([]commentPayload, 0, len(records))
	for _, record := range records {
		payload = append(payload, toCommentPayload(record))
	}
	c.JSON(http.StatusOK, gin.H{"comments": payload})
}

type commentRequestPayload struct {
	Comment string `json:"comment"`
}

func (h *httpHandler) handleCreateComment(c *gin.Context) {
	author, ok := h.requireAuthor(c)
	if !ok {
		return
	}

	var request commentRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	record, err := h.comments.Create(c.Request.Context(), c.Param("locationId"), request.Comment, author)
	if err != nil {
		if errors.Is(err, comments.ErrEmptyBody) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "comment text is required"})
			return
		}
		h.logger.Error("comment create failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "comment create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": toCommentPayload(record)})
}

func (h *httpHandler) handleUpdateComment(c *gin.Context) {
	userID := c.GetString(userIDContextKey)

	var request commentRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	record, err := h.comments.Update(c.Request.Context(), c.Param("locationId"), c.Param("commentId"), request.Comment, userID)
	if err != nil {
		h.respondCommentMutationError(c, err, "comment update failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": toCommentPayload(record)})
}

func (h *httpHandler) handleDeleteComment(c *gin.Context) {
	userID := c.GetString(userIDContextKey)

	err := h.comments.Delete(c.Request.Context(), c.Param("locationId"), c.Param("commentId"), userID)
	if err != nil {
		h.respondCommentMutationError(c, err, "comment delete failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *httpHandler) respondCommentMutationError(c *gin.Context, err error, logMessage string) {
	switch {
	case errors.Is(err, comments.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "comment not found"})
	case errors.Is(err, comments.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"message": "not the comment author"})
	case errors.Is(err, comments.ErrEmptyBody):
		c.JSON(http.StatusBadRequest, gin.H{"message": "comment text is required"})
	default:
		h.logger.Error(logMessage, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": logMessage})
	}
}

func (h *httpHandler) requireAuthor(c *gin.Context) (comments.Author, bool) {
	userID := c.GetString(userIDContextKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return comments.Author{}, false
	}
	profile, err := h.users.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.logger.Warn("author lookup failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return comments.Author{}, false
	}
	return comments.Author{ID: profile.ID, Name: profile.Name}, true
}

func (h *httpHandler) authorizeRequest(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": errInvalidAuthorization.Error()})
		return
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": errInvalidAuthorization.Error()})
		return
	}
	subject, err := h.tokens.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			h.logger.Info("token validation failed", zap.Error(err))
		} else {
			h.logger.Warn("token validation failed", zap.Error(err))
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}
	c.Set(userIDContextKey, subject)
	c.Next()
}

func toLocationPayload(record locations.Location) locationPayload {
	return locationPayload{ID: record.ID, Name: record.Name, Address: record.Address}
}

func toCommentPayload(record comments.Comment) commentPayload {
	return commentPayload{
		ID:      record.ID,
		Comment: record.Body,
		CreatedBy: authorPayload{
			ID:   record.AuthorID,
			Name: record.AuthorName,
		},
		CreatedAt: record.CreatedAt,
	}
}
