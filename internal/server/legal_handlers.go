package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/legal"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *httpHandler) handleCaseConflicts(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString(userIDContextKey)
	candidate, err := h.legal.Cases.Get(ctx, userID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	cases, err := h.legal.Cases.List(ctx, userID, nil)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.engine.DetectConflicts(candidate, cases))
}

func (h *httpHandler) handleMarkAlertRead(c *gin.Context) {
	userID := c.GetString(userIDContextKey)
	alert, err := h.legal.MarkAlertRead(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.publish(userID, "alerts", RealtimeActionUpdated, alert.ID)
	c.JSON(http.StatusOK, alert)
}

// handleGenerateReminders stores the reminder alerts missing for the owner's upcoming hearings.
func (h *httpHandler) handleGenerateReminders(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString(userIDContextKey)
	cases, err := h.legal.Cases.List(ctx, userID, nil)
	if err != nil {
		h.respondError(c, err)
		return
	}
	alerts, err := h.legal.Alerts.List(ctx, userID, map[string]string{"type": string(legal.AlertTypeHearing)})
	if err != nil {
		h.respondError(c, err)
		return
	}

	reminders := h.engine.GenerateReminders(cases, alerts, h.legal.Now())
	created := make([]legal.Alert, 0, len(reminders))
	createdIDs := make([]string, 0, len(reminders))
	for index := range reminders {
		alert, err := h.legal.Alerts.Insert(ctx, userID, &reminders[index])
		if err != nil {
			h.respondError(c, err)
			return
		}
		created = append(created, alert)
		createdIDs = append(createdIDs, alert.ID)
	}
	h.publish(userID, "alerts", RealtimeActionCreated, createdIDs...)
	c.JSON(http.StatusCreated, created)
}

func (h *httpHandler) handleSendInvoice(c *gin.Context) {
	var request legal.SendInvoiceRequest
	if err := decodeJSON(c, &request); err != nil && !errors.Is(err, io.EOF) {
		h.respondInvalidRequest(c)
		return
	}
	userID := c.GetString(userIDContextKey)
	invoiceID := c.Param("id")
	result, err := h.legal.SendInvoice(c.Request.Context(), userID, invoiceID, request)
	if err != nil {
		if errors.Is(err, legal.ErrEmailSendFailed) {
			h.logger.Warn("invoice email failed", zap.String("invoice_id", invoiceID), zap.Error(err))
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
