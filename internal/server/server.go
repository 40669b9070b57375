// Package server exposes the feasibility engine over an HTTP JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ggtech/housing-feasibility/internal/config"
	"github.com/ggtech/housing-feasibility/internal/extract"
	"github.com/ggtech/housing-feasibility/internal/feasibility"
	"github.com/ggtech/housing-feasibility/internal/quota"
	"github.com/ggtech/housing-feasibility/internal/report"
	"github.com/ggtech/housing-feasibility/pkg/constants"
	"github.com/ggtech/housing-feasibility/pkg/currency"
	"go.uber.org/zap"
)

// RateSource supplies the current USD/TRY quote. A nil quote means no rate is
// available and TRY figures are omitted.
type RateSource interface {
	Current(ctx context.Context) *currency.Quote
}

// PDFRenderer turns report markdown into PDF bytes.
type PDFRenderer interface {
	Render(ctx context.Context, markdown string) ([]byte, error)
}

// Options wires the handler's collaborators. Rates, Extractor, and PDF may be
// nil; the corresponding endpoints then degrade or report unavailability.
type Options struct {
	Logger         *zap.Logger
	MaxRequestSize int64
	Version        string
	Engine         *feasibility.Engine
	Rates          RateSource
	Limiter        *quota.Limiter
	Extractor      *extract.Extractor
	PDF            PDFRenderer
}

type handler struct {
	logger         *zap.Logger
	maxRequestSize int64
	version        string
	engine         *feasibility.Engine
	rates          RateSource
	limiter        *quota.Limiter
	extractor      *extract.Extractor
	pdf            PDFRenderer
}

// NewHandler constructs the HTTP handler that serves the feasibility API.
func NewHandler(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	maxRequestSize := opts.MaxRequestSize
	if maxRequestSize <= 0 {
		maxRequestSize = constants.DefaultMaxRequestSizeBytes
	}

	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = "dev"
	}

	engine := opts.Engine
	if engine == nil {
		engine = feasibility.NewEngine(logger)
	}

	h := &handler{
		logger:         logger,
		maxRequestSize: maxRequestSize,
		version:        version,
		engine:         engine,
		rates:          opts.Rates,
		limiter:        opts.Limiter,
		extractor:      opts.Extractor,
		pdf:            opts.PDF,
	}

	mux := http.NewServeMux()

	// Computation endpoints; these consume daily quota.
	mux.HandleFunc("/api/feasibility", h.handleFeasibility)
	mux.HandleFunc("/api/sensitivity", h.handleSensitivity)

	// Conversational input extraction
	mux.HandleFunc("/api/assistant/message", h.handleAssistantMessage)

	// PDF report download
	mux.HandleFunc("/api/report/pdf", h.handleReportPDF)

	// Current exchange rate for UI display
	mux.HandleFunc("/api/rate", h.handleRate)

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

type feasibilityRequest struct {
	Inputs config.Inputs `json:"inputs"`
}

type feasibilityResponse struct {
	Outputs  *feasibility.Outputs `json:"outputs"`
	Warnings []string             `json:"warnings"`
	Rate     *rateInfo            `json:"rate"`
	Duration string               `json:"duration"`
}

type sensitivityResponse struct {
	Result   *feasibility.Result `json:"result"`
	Rate     *rateInfo           `json:"rate"`
	Duration string              `json:"duration"`
}

type assistantRequest struct {
	Message string        `json:"message"`
	Inputs  config.Inputs `json:"inputs"`
}

type assistantResponse struct {
	Patch         config.Inputs        `json:"patch"`
	Merged        config.Inputs        `json:"merged"`
	Complete      bool                 `json:"complete"`
	Outputs       *feasibility.Outputs `json:"outputs"`
	Warnings      []string             `json:"warnings"`
	Explanations  []string             `json:"explanations"`
	NextQuestions []string             `json:"next_questions"`
	Confirmations []string             `json:"confirmations"`
}

type reportRequest struct {
	Title  string        `json:"title"`
	Inputs config.Inputs `json:"inputs"`
}

type rateInfo struct {
	Rate   float64 `json:"rate"`
	Date   string  `json:"date"`
	Source string  `json:"source"`
}

func (h *handler) handleFeasibility(w http.ResponseWriter, r *http.Request) {
	op := "server.handleFeasibility"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if !h.consumeQuota(w, r, op) {
		return
	}

	start := time.Now()

	var payload feasibilityRequest
	if !h.decodeJSON(w, r, &payload, op) {
		return
	}

	quote := h.currentQuote(r.Context())
	out, warnings, err := h.engine.Compute(payload.Inputs, quoteRate(quote))
	if err != nil {
		h.respondComputeError(w, err, op)
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("feasibility computed",
		zap.String("op", op),
		zap.Int("warnings", len(warnings)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, feasibilityResponse{
		Outputs:  out,
		Warnings: warnings,
		Rate:     rateInfoFromQuote(quote),
		Duration: elapsed.String(),
	})
}

func (h *handler) handleSensitivity(w http.ResponseWriter, r *http.Request) {
	op := "server.handleSensitivity"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if !h.consumeQuota(w, r, op) {
		return
	}

	start := time.Now()

	var payload feasibilityRequest
	if !h.decodeJSON(w, r, &payload, op) {
		return
	}

	quote := h.currentQuote(r.Context())
	result, err := h.engine.Sensitivity(payload.Inputs, quoteRate(quote))
	if err != nil {
		h.respondComputeError(w, err, op)
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("sensitivity computed",
		zap.String("op", op),
		zap.Int("rows", len(result.Grid)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, sensitivityResponse{
		Result:   result,
		Rate:     rateInfoFromQuote(quote),
		Duration: elapsed.String(),
	})
}

func (h *handler) handleAssistantMessage(w http.ResponseWriter, r *http.Request) {
	op := "server.handleAssistantMessage"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if h.extractor == nil {
		h.respondError(w, http.StatusServiceUnavailable, "assistant is not configured", op)
		return
	}

	var payload assistantRequest
	if !h.decodeJSON(w, r, &payload, op) {
		return
	}
	if strings.TrimSpace(payload.Message) == "" {
		h.respondError(w, http.StatusBadRequest, "message is empty", op)
		return
	}

	extraction, err := h.extractor.Extract(r.Context(), payload.Message, payload.Inputs)
	if err != nil {
		h.respondError(w, http.StatusBadGateway, fmt.Sprintf("extraction failed: %v", err), op)
		return
	}

	merged := config.MergePatch(payload.Inputs, extraction.Patch)
	resp := assistantResponse{
		Patch:         extraction.Patch,
		Merged:        merged,
		Complete:      merged.Complete(),
		Explanations:  extraction.Explanations,
		NextQuestions: extraction.NextQuestions,
		Confirmations: extraction.Confirmations,
	}
	if resp.Complete {
		outputs, warnings, err := h.engine.Compute(merged, quoteRate(h.currentQuote(r.Context())))
		if err != nil {
			h.logger.Warn("compute after merge failed",
				zap.String("op", op),
				zap.Error(err),
			)
		} else {
			resp.Outputs = outputs
			resp.Warnings = warnings
		}
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	op := "server.handleReportPDF"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if h.pdf == nil {
		h.respondError(w, http.StatusServiceUnavailable, "PDF rendering is not configured", op)
		return
	}

	var payload reportRequest
	if !h.decodeJSON(w, r, &payload, op) {
		return
	}

	quote := h.currentQuote(r.Context())
	result, err := h.engine.Sensitivity(payload.Inputs, quoteRate(quote))
	if err != nil {
		h.respondComputeError(w, err, op)
		return
	}

	markdown := report.BuildMarkdown(report.Report{
		Title:       payload.Title,
		Inputs:      payload.Inputs,
		Outputs:     result.Base,
		Warnings:    result.BaseWarnings,
		Sensitivity: result,
		Quote:       quote,
		GeneratedAt: time.Now(),
	})

	pdfBytes, err := h.pdf.Render(r.Context(), markdown)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render PDF: %v", err), op)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="feasibility-report.pdf"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdfBytes); err != nil {
		h.logger.Error("failed to write PDF response", zap.String("op", op), zap.Error(err))
	}
}

func (h *handler) handleRate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]*rateInfo{
		"rate": rateInfoFromQuote(h.currentQuote(r.Context())),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// consumeQuota charges one computation against the caller's daily allowance.
// It writes a 429 and returns false when the allowance is exhausted.
func (h *handler) consumeQuota(w http.ResponseWriter, r *http.Request, op string) bool {
	if h.limiter == nil {
		return true
	}

	key := quota.CallerKey(r.Header.Get("X-Forwarded-For"), r.Header.Get("User-Agent"), r.RemoteAddr)
	allowed, remaining := h.limiter.Allow(key)
	if remaining >= 0 {
		w.Header().Set("X-Quota-Remaining", fmt.Sprintf("%d", remaining))
	}
	if !allowed {
		h.respondError(w, http.StatusTooManyRequests,
			fmt.Sprintf("daily computation quota of %d exhausted", h.limiter.Limit()), op)
		return false
	}
	return true
}

func (h *handler) currentQuote(ctx context.Context) *currency.Quote {
	if h.rates == nil {
		return nil
	}
	return h.rates.Current(ctx)
}

func quoteRate(q *currency.Quote) *float64 {
	if q == nil {
		return nil
	}
	return &q.Rate
}

func rateInfoFromQuote(q *currency.Quote) *rateInfo {
	if q == nil {
		return nil
	}
	return &rateInfo{Rate: q.Rate, Date: q.Date, Source: q.Source}
}

func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	if h.maxRequestSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestSize)
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxRequestSize), op)
			return false
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

// respondComputeError maps a missing required field to 422 so clients can
// prompt for more input; anything else is a bad request.
func (h *handler) respondComputeError(w http.ResponseWriter, err error, op string) {
	var missing *config.MissingFieldError
	if errors.As(err, &missing) {
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": err.Error(),
			"field": missing.Field,
			"hint":  "needs more input",
		})
		if h.logger != nil {
			h.logger.Info("computation rejected: incomplete inputs",
				zap.String("op", op),
				zap.String("field", missing.Field),
			)
		}
		return
	}
	h.respondError(w, http.StatusBadRequest, err.Error(), op)
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	if h.logger != nil {
		h.logger.Error("request failed",
			zap.String("op", op),
			zap.Int("status", status),
			zap.String("error", msg),
		)
	}

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && h.logger != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
