package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/call-triage-service/internal/api/dto"
	"github.com/spec-kit/call-triage-service/internal/domain"
	"github.com/spec-kit/call-triage-service/internal/repository"
	"github.com/spec-kit/call-triage-service/internal/service"
	apperrors "github.com/spec-kit/call-triage-service/pkg/util/errorutil"
)

// AuditHandler serves operator login and event-log reads.
type AuditHandler struct {
	service *service.AuditService
}

// NewAuditHandler constructs handler.
func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{service: auditService}
}

// Login POST /auth/operators/login.
func (h *AuditHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	token, expiresAt, operator, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Role:      string(operator.Role),
	}})
}

// ListEvents GET /audit/events.
func (h *AuditHandler) ListEvents(c *fiber.Ctx) error {
	filter := parseEventLogQuery(c)
	entries, err := h.service.ListEvents(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.EventLogEntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, eventLogResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetCallEvents GET /audit/events/:callId.
func (h *AuditHandler) GetCallEvents(c *fiber.Ctx) error {
	callID := c.Params("callId")
	if callID == "" {
		return apperrors.NewValidationError("callId required", nil)
	}
	entries, err := h.service.EventsForCall(c.UserContext(), callID)
	if err != nil {
		return err
	}
	items := make([]dto.EventLogEntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, eventLogResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTriageAlerts GET /audit/alerts/:triageId.
func (h *AuditHandler) GetTriageAlerts(c *fiber.Ctx) error {
	triageID := c.Params("triageId")
	if triageID == "" {
		return apperrors.NewValidationError("triageId required", nil)
	}
	attempts, err := h.service.AlertsForTriage(c.UserContext(), triageID)
	if err != nil {
		return err
	}
	items := make([]dto.AlertAttemptResponse, 0, len(attempts))
	for i := range attempts {
		items = append(items, alertAttemptResponse(&attempts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseEventLogQuery(c *fiber.Ctx) repository.EventLogFilter {
	filter := repository.EventLogFilter{}
	if tenantID := c.Query("tenant_id"); tenantID != "" {
		filter.TenantID = &tenantID
	}
	if callID := c.Query("call_id"); callID != "" {
		filter.CallID = &callID
	}
	if eventType := c.Query("event_type"); eventType != "" {
		et := domain.EventType(eventType)
		filter.EventType = &et
	}
	if outcome := c.Query("outcome"); outcome != "" {
		o := domain.EventOutcome(outcome)
		filter.Outcome = &o
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func eventLogResponse(entry *domain.EventLogEntry) dto.EventLogEntryResponse {
	return dto.EventLogEntryResponse{
		ID:                         entry.ID,
		TenantID:                   entry.TenantID,
		CallID:                     entry.CallID,
		EventType:                  string(entry.EventType),
		Outcome:                    string(entry.Outcome),
		RejectionCode:              entry.RejectionCode,
		Duplicate:                  entry.Duplicate,
		TriageID:                   entry.TriageID,
		Score:                      entry.Score,
		RequiresImmediateAttention: entry.RequiresImmediateAttention,
		Details:                    entry.Details,
		CreatedAt:                  entry.CreatedAt,
	}
}

func alertAttemptResponse(attempt *domain.AlertAttempt) dto.AlertAttemptResponse {
	return dto.AlertAttemptResponse{
		ID:                attempt.ID,
		TriageID:          attempt.TriageID,
		TenantID:          attempt.TenantID,
		Target:            string(attempt.Target),
		Recipient:         attempt.Recipient,
		Channel:           attempt.Channel,
		Status:            string(attempt.Status),
		ProviderMessageID: attempt.ProviderMessageID,
		ErrorDetail:       attempt.ErrorDetail,
		CreatedAt:         attempt.CreatedAt,
	}
}
