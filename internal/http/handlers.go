/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
    "context"
    "net/http"

    "github.com/LiangquanLi930/weeklybot/internal/chain"
    "github.com/LiangquanLi930/weeklybot/internal/config"
    "github.com/LiangquanLi930/weeklybot/internal/domain"
    "github.com/LiangquanLi930/weeklybot/internal/repo"
    "github.com/gin-gonic/gin"
    "github.com/rs/zerolog"
)

type service interface {
    GenerateReport(ctx context.Context) (domain.Report, error)
    Ask(ctx context.Context, question string) (chain.QAOutput, error)
    GetLastRun(ctx context.Context) (*repo.LastRun, error)
}

type Handlers struct {
    cfg     config.Config
    log     zerolog.Logger
    svc     service
    initErr error
}

// NewHandlers takes the service plus the startup error, if any. When the
// service failed to initialize the report endpoints answer 503 instead of
// crashing the process at boot.
func NewHandlers(cfg config.Config, log zerolog.Logger, svc service, initErr error) *Handlers {
    return &Handlers{cfg: cfg, log: log, svc: svc, initErr: initErr}
}

func (h *Handlers) Healthz(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) GenerateReport(c *gin.Context) {
    if h.initErr != nil {
        c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "service not initialized: " + h.initErr.Error()})
        return
    }
    report, err := h.svc.GenerateReport(c.Request.Context())
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{
        "status":    "success",
        "report":    report,
        "ai_report": report.AIReport,
    })
}

func (h *Handlers) Ask(c *gin.Context) {
    if h.initErr != nil {
        c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "service not initialized: " + h.initErr.Error()})
        return
    }
    var req struct {
        Question string `json:"question"`
    }
    if err := c.ShouldBindJSON(&req); err != nil || req.Question == "" {
        c.JSON(http.StatusBadRequest, gin.H{"detail": "question is required"})
        return
    }
    out, err := h.svc.Ask(c.Request.Context(), req.Question)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
        return
    }
    c.JSON(http.StatusOK, out)
}

func (h *Handlers) LastRun(c *gin.Context) {
    if h.initErr != nil {
        c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "service not initialized: " + h.initErr.Error()})
        return
    }
    lr, err := h.svc.GetLastRun(c.Request.Context())
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, lr)
}

func (h *Handlers) RunNow(c *gin.Context) {
    if h.initErr != nil {
        c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "service not initialized: " + h.initErr.Error()})
        return
    }
    // Detached from the request context so the run survives the response
    go func(){ _, _ = h.svc.GenerateReport(context.Background()) }()
    c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
