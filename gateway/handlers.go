package gateway

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"snappy/auth"
	"snappy/domain"
	"snappy/errors"
	"snappy/projection"
	"snappy/services"
)

// ApiResponse is the envelope every JSON endpoint answers with.
type ApiResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data,omitempty"`
	Message    string `json:"message,omitempty"`
}

type Handlers struct {
	authService    services.IAuthService
	userService    services.IUserService
	messageService services.IMessageService
	historyService services.IHistoryService
	searchService  services.ISearchService
	timeline       *projection.Timeline
	log            *slog.Logger
}

func NewHandlers(
	authService services.IAuthService,
	userService services.IUserService,
	messageService services.IMessageService,
	historyService services.IHistoryService,
	searchService services.ISearchService,
	timeline *projection.Timeline,
	log *slog.Logger,
) *Handlers {
	return &Handlers{
		authService:    authService,
		userService:    userService,
		messageService: messageService,
		historyService: historyService,
		searchService:  searchService,
		timeline:       timeline,
		log:            log,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type avatarRequest struct {
	Image string `json:"image"`
}

type postMessageRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

type historyRequest struct {
	With string `json:"with"`
}

func (h *Handlers) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.authService.Register(req.Username, req.FullName, req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	setAccessCookie(c, string(token))
	respond(c, http.StatusCreated, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"fullName": user.FullName,
		"email":    user.Email,
		"token":    token,
	})
}

func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	setAccessCookie(c, string(token))
	respond(c, http.StatusOK, gin.H{
		"id":          user.ID,
		"username":    user.Username,
		"fullName":    user.FullName,
		"email":       user.Email,
		"isAvatarSet": user.IsAvatarSet,
		"token":       token,
	})
}

func (h *Handlers) ListContacts(c *gin.Context) {
	contacts, err := h.userService.ListContacts(c.GetString(auth.UsernameKey))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, contacts)
}

func (h *Handlers) SetAvatar(c *gin.Context) {
	var req avatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userService.SetAvatar(c.GetString(auth.UsernameKey), req.Image)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"username":    user.Username,
		"isAvatarSet": user.IsAvatarSet,
	})
}

// PostMessage is the durable append path. Unlike the websocket relay it is
// synchronous: the caller learns whether the message hit the store.
func (h *Handlers) PostMessage(c *gin.Context) {
	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	message, err := h.messageService.Append(domain.PostMessageCommand{
		From:      c.GetString(auth.UsernameKey),
		To:        req.To,
		Content:   req.Message,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{
		"id":        message.ID,
		"message":   message.Content,
		"lang":      message.Lang,
		"createdAt": message.CreatedAt,
	})
}

func (h *Handlers) GetHistory(c *gin.Context) {
	var req historyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	entries, err := h.historyService.GetHistory(domain.GetHistoryCommand{
		Viewer: c.GetString(auth.UsernameKey),
		Peer:   req.With,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, entries)
}

// RecentMessages serves the in-memory conversation tail fed by the event
// fanout. It answers without touching the store, so freshly restarted
// processes legitimately return an empty tail; durable history is the
// catch-up path.
func (h *Handlers) RecentMessages(c *gin.Context) {
	peer := c.Query("with")
	if domain.Blank(peer) {
		respondError(c, http.StatusBadRequest, "with parameter is required")
		return
	}

	caller := c.GetString(auth.UsernameKey)
	tail := h.timeline.Tail(caller, peer)

	entries := make([]services.HistoryEntry, 0, len(tail))
	for _, message := range tail {
		entries = append(entries, services.HistoryEntry{
			FromSelf:  message.SenderID == caller,
			Message:   message.Content,
			Timestamp: message.UpdatedAt,
		})
	}
	respond(c, http.StatusOK, entries)
}

func (h *Handlers) Search(c *gin.Context) {
	hits, err := h.searchService.Search(c.Request.Context(),
		c.GetString(auth.UsernameKey), c.Query("q"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, hits)
}

func (h *Handlers) Health(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{"status": "up"})
}

// fail maps domain errors to HTTP statuses. Storage details never leak to
// the client; validation details do.
func (h *Handlers) fail(c *gin.Context, err error) {
	switch {
	case stderrors.Is(err, errors.ErrValidation):
		respondError(c, http.StatusBadRequest, err.Error())
	case stderrors.Is(err, errors.ErrUserAlreadyExists):
		respondError(c, http.StatusConflict, "username or email already taken")
	case stderrors.Is(err, errors.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "invalid credentials")
	case stderrors.Is(err, errors.ErrUserNotFound):
		respondError(c, http.StatusNotFound, "user not found")
	default:
		h.log.Error("Request failed", "path", c.FullPath(), "err", err)
		respondError(c, http.StatusInternalServerError, "internal error")
	}
}

func setAccessCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("accessToken", token, int((24 * time.Hour).Seconds()), "/", "", false, true)
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, ApiResponse{StatusCode: status, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ApiResponse{StatusCode: status, Message: message})
}
