package http

import (
	"encoding/base64"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/haolinpeng/claimflow/internal/domain/entity"
	"github.com/haolinpeng/claimflow/internal/recognize"
	"github.com/haolinpeng/claimflow/internal/reconcile"
	"github.com/haolinpeng/claimflow/internal/repository"
	"github.com/haolinpeng/claimflow/internal/service"
	"github.com/haolinpeng/claimflow/internal/voucher"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	analysis *service.AnalysisService
	loans    *repository.LoanRepository
	voucher  *voucher.FormWriter
	pages    *recognize.PageLoader
	logger   *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	analysis *service.AnalysisService,
	loans *repository.LoanRepository,
	formWriter *voucher.FormWriter,
	pages *recognize.PageLoader,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		analysis: analysis,
		loans:    loans,
		voucher:  formWriter,
		pages:    pages,
		logger:   logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AnalyzeGeneralRequest carries base64-encoded document images for a
// general expense claim.
type AnalyzeGeneralRequest struct {
	InvoiceImages  []string `json:"invoice_images"`
	ApprovalImages []string `json:"approval_images"`
	Mode           string   `json:"mode"` // merged or itemized
	PrepaidAmount  float64  `json:"prepaid_amount"`
}

// AnalyzeTravelRequest carries base64-encoded document images for a
// travel claim.
type AnalyzeTravelRequest struct {
	TicketImages   []string `json:"ticket_images"`
	HotelImages    []string `json:"hotel_images"`
	TaxiImages     []string `json:"taxi_images"`
	ApprovalImages []string `json:"approval_images"`
	UserName       string   `json:"user_name"`
	PrepaidAmount  float64  `json:"prepaid_amount"`
}

// CreateLoanRequest creates a loan record in the state store.
type CreateLoanRequest struct {
	Amount         float64 `json:"amount" binding:"required"`
	Reason         string  `json:"reason"`
	ApprovalNumber string  `json:"approval_number"`
	BorrowDate     string  `json:"borrow_date"`
	BorrowerName   string  `json:"borrower_name"`
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

// AnalyzeGeneral handles POST /api/v1/claims/analyze/general
func (h *Handlers) AnalyzeGeneral(c *gin.Context) {
	var req AnalyzeGeneralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "invalid request body"})
		return
	}

	invoiceImages, err := h.decodeDocuments(req.InvoiceImages)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "invalid invoice image encoding"})
		return
	}
	approvalImages, err := h.decodeDocuments(req.ApprovalImages)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "invalid approval image encoding"})
		return
	}

	result, err := h.analysis.AnalyzeGeneral(c.Request.Context(), service.GeneralInput{
		InvoiceImages:  invoiceImages,
		ApprovalImages: approvalImages,
		Mode:           reconcile.LineItemMode(req.Mode),
		PrepaidAmount:  req.PrepaidAmount,
	})
	if err != nil {
		h.logger.Error("General analysis failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, Response{Error: "document recognition failed, please retry or enter the claim manually"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// AnalyzeTravel handles POST /api/v1/claims/analyze/travel
func (h *Handlers) AnalyzeTravel(c *gin.Context) {
	var req AnalyzeTravelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "invalid request body"})
		return
	}

	input := service.TravelInput{
		UserName:      req.UserName,
		PrepaidAmount: req.PrepaidAmount,
	}
	var err error
	if input.TicketImages, err = h.decodeDocuments(req.TicketImages); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "invalid ticket image encoding"})
		return
	}
	if input.HotelImages, err = h.decodeDocuments(req.HotelImages); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "invalid hotel image encoding"})
		return
	}
	if input.TaxiImages, err = h.decodeDocuments(req.TaxiImages); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "invalid taxi image encoding"})
		return
	}
	if input.ApprovalImages, err = h.decodeDocuments(req.ApprovalImages); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "invalid approval image encoding"})
		return
	}

	result, err := h.analysis.AnalyzeTravel(c.Request.Context(), input)
	if err != nil {
		h.logger.Error("Travel analysis failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, Response{Error: "document recognition failed, please retry or enter the claim manually"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// GetClaim handles GET /api/v1/claims/:id
func (h *Handlers) GetClaim(c *gin.Context) {
	claim, err := h.analysis.GetClaim(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Error: "failed to load claim"})
		return
	}
	if claim == nil {
		c.JSON(http.StatusNotFound, Response{Error: "claim not found"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: claim})
}

// ToggleInvoice handles POST /api/v1/claims/:id/invoices/:lineID/toggle
func (h *Handlers) ToggleInvoice(c *gin.Context) {
	mode := reconcile.LineItemMode(c.Query("mode"))
	claim, err := h.analysis.ToggleInvoice(c.Request.Context(), c.Param("id"), c.Param("lineID"), mode)
	if err != nil {
		c.JSON(http.StatusNotFound, Response{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: claim})
}

// ExportVoucher handles GET /api/v1/claims/:id/voucher
func (h *Handlers) ExportVoucher(c *gin.Context) {
	claim, err := h.analysis.GetClaim(c.Request.Context(), c.Param("id"))
	if err != nil || claim == nil {
		c.JSON(http.StatusNotFound, Response{Error: "claim not found"})
		return
	}

	path, err := h.voucher.Write(claim)
	if err != nil {
		h.logger.Error("Voucher export failed", zap.String("claim_id", claim.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Error: "failed to generate voucher"})
		return
	}
	c.FileAttachment(path, claim.ID+".xlsx")
}

// CreateLoan handles POST /api/v1/loans
func (h *Handlers) CreateLoan(c *gin.Context) {
	var req CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "invalid request body"})
		return
	}

	loan := &entity.LoanRecord{
		ID:             uuid.NewString(),
		Amount:         req.Amount,
		Reason:         req.Reason,
		ApprovalNumber: req.ApprovalNumber,
		Status:         entity.LoanStatusSubmitted,
		BorrowDate:     req.BorrowDate,
		BorrowerName:   req.BorrowerName,
	}
	if err := h.loans.Create(c.Request.Context(), loan); err != nil {
		c.JSON(http.StatusInternalServerError, Response{Error: "failed to create loan"})
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: loan})
}

// ListEligibleLoans handles GET /api/v1/loans
func (h *Handlers) ListEligibleLoans(c *gin.Context) {
	loans, err := h.loans.ListEligible(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Error: "failed to list loans"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: loans})
}

// decodeDocuments decodes base64 document bodies and expands PDF bodies
// into their page images.
func (h *Handlers) decodeDocuments(encoded []string) ([][]byte, error) {
	if len(encoded) == 0 {
		return nil, nil
	}
	images := make([][]byte, 0, len(encoded))
	for _, s := range encoded {
		data, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, err
		}
		pages, err := h.pages.Expand(data)
		if err != nil {
			return nil, err
		}
		images = append(images, pages...)
	}
	return images, nil
}
