package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hrdesk/leave-assistant/internal/chat"
	"github.com/hrdesk/leave-assistant/internal/models"
)

// Store is the administrator-facing slice of the ledger
type Store interface {
	Balance(userID int) (*models.Balance, error)
	RequestsFor(userID int) ([]models.LeaveRequest, error)
	PendingFor(adminID int) ([]models.LeaveRequest, error)
	UpdateStatus(userID int, date time.Time, status models.Status) error
	ApproveAll(adminID int) (approved, total int, err error)
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	bot    chat.Bot
	store  Store
	logger *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(bot chat.Bot, store Store, logger *zap.Logger) *Handlers {
	return &Handlers{bot: bot, store: store, logger: logger}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	UserID  int    `json:"user_id" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// ChatResponse carries the assistant's reply
type ChatResponse struct {
	UserID int    `json:"user_id"`
	Reply  string `json:"reply"`
}

// ExchangeResponse is one (user, assistant) pair in the history
type ExchangeResponse struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// BalanceResponse represents a user's remaining leave days
type BalanceResponse struct {
	UserID  int    `json:"user_id"`
	EL      int    `json:"el"`
	SL      int    `json:"sl"`
	CL      int    `json:"cl"`
	Total   int    `json:"total"`
	AdminID int    `json:"admin_id"`
	Joined  string `json:"joined,omitempty"`
}

// RequestResponse represents one leave request row
type RequestResponse struct {
	AdminID   int    `json:"admin_id"`
	UserID    int    `json:"user_id"`
	LeaveDate string `json:"leave_date"`
	Status    string `json:"status"`
	LeaveType string `json:"leave_type"`
	Reason    string `json:"reason,omitempty"`
	AppliedAt string `json:"applied_at"`
}

// DecisionRequest is the body of POST /api/admins/:id/decisions
type DecisionRequest struct {
	UserID int    `json:"user_id" binding:"required"`
	Date   string `json:"date" binding:"required"` // 2006-01-02
	Status string `json:"status" binding:"required"`
}

// ApproveAllResponse reports how many pending requests were approved
type ApproveAllResponse struct {
	Approved int `json:"approved"`
	Total    int `json:"total"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// Chat handles POST /api/chat
func (h *Handlers) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "user_id and message are required"})
		return
	}

	reply := h.bot.ProcessMessage(req.UserID, req.Message)
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    ChatResponse{UserID: req.UserID, Reply: reply},
	})
}

// GetHistory handles GET /api/users/:id/history
func (h *Handlers) GetHistory(c *gin.Context) {
	userID, ok := h.pathID(c)
	if !ok {
		return
	}

	exchanges, err := h.bot.History(userID)
	if err != nil {
		h.logger.Error("Failed to load history", zap.Int("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to load history"})
		return
	}

	out := make([]ExchangeResponse, 0, len(exchanges))
	for _, e := range exchanges {
		out = append(out, ExchangeResponse{User: e.User, Assistant: e.Assistant})
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: out})
}

// ClearHistory handles DELETE /api/users/:id/history
func (h *Handlers) ClearHistory(c *gin.Context) {
	userID, ok := h.pathID(c)
	if !ok {
		return
	}

	if !h.bot.ClearHistory(userID) {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to clear history"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// GetBalance handles GET /api/users/:id/balance
func (h *Handlers) GetBalance(c *gin.Context) {
	userID, ok := h.pathID(c)
	if !ok {
		return
	}

	balance, err := h.store.Balance(userID)
	if err != nil {
		h.logger.Error("Failed to load balance", zap.Int("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to load balance"})
		return
	}
	if balance == nil {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "user not found"})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: BalanceResponse{
			UserID:  balance.UserID,
			EL:      balance.EL,
			SL:      balance.SL,
			CL:      balance.CL,
			Total:   balance.TL,
			AdminID: balance.AdminID,
			Joined:  balance.JoinDate,
		},
	})
}

// ListRequests handles GET /api/users/:id/requests
func (h *Handlers) ListRequests(c *gin.Context) {
	userID, ok := h.pathID(c)
	if !ok {
		return
	}

	requests, err := h.store.RequestsFor(userID)
	if err != nil {
		h.logger.Error("Failed to list requests", zap.Int("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to list requests"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: toRequestResponses(requests)})
}

// ListPending handles GET /api/admins/:id/pending
func (h *Handlers) ListPending(c *gin.Context) {
	adminID, ok := h.pathID(c)
	if !ok {
		return
	}

	pending, err := h.store.PendingFor(adminID)
	if err != nil {
		h.logger.Error("Failed to list pending requests", zap.Int("admin_id", adminID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to list pending requests"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: toRequestResponses(pending)})
}

// Decide handles POST /api/admins/:id/decisions
func (h *Handlers) Decide(c *gin.Context) {
	adminID, ok := h.pathID(c)
	if !ok {
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "user_id, date and status are required"})
		return
	}

	status := models.Status(req.Status)
	if !status.IsTerminal() {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "status must be Approved or Rejected"})
		return
	}

	date, err := time.ParseInLocation(models.DayLayout, req.Date, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "date must be in YYYY-MM-DD format"})
		return
	}

	if err := h.store.UpdateStatus(req.UserID, date, status); err != nil {
		h.logger.Error("Decision failed",
			zap.Int("admin_id", adminID),
			zap.Int("user_id", req.UserID),
			zap.String("date", req.Date),
			zap.Error(err))
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// ApproveAll handles POST /api/admins/:id/approve-all
func (h *Handlers) ApproveAll(c *gin.Context) {
	adminID, ok := h.pathID(c)
	if !ok {
		return
	}

	approved, total, err := h.store.ApproveAll(adminID)
	if err != nil {
		h.logger.Error("Approve-all failed", zap.Int("admin_id", adminID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "approve-all failed"})
		return
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    ApproveAllResponse{Approved: approved, Total: total},
	})
}

// pathID parses the :id path parameter, writing a 400 on failure
func (h *Handlers) pathID(c *gin.Context) (int, bool) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid id"})
		return 0, false
	}
	return id, true
}

func toRequestResponses(requests []models.LeaveRequest) []RequestResponse {
	out := make([]RequestResponse, 0, len(requests))
	for _, r := range requests {
		out = append(out, RequestResponse{
			AdminID:   r.AdminID,
			UserID:    r.UserID,
			LeaveDate: r.LeaveDate.Format(models.DayLayout),
			Status:    r.Status.String(),
			LeaveType: r.LeaveType.String(),
			Reason:    r.Reason,
			AppliedAt: r.AppliedAt.Format(models.TimestampLayout),
		})
	}
	return out
}
