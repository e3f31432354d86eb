// Package service orchestrates analysis passes: recognition at the AI
// boundary, reconciliation in the engine, loan matching, and persistence.
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/haolinpeng/claimflow/internal/domain/entity"
	"github.com/haolinpeng/claimflow/internal/recognize"
	"github.com/haolinpeng/claimflow/internal/reconcile"
)

// DocumentRecognizer is the external AI extraction boundary.
type DocumentRecognizer interface {
	Recognize(ctx context.Context, images [][]byte, docType recognize.DocumentType) (entity.FieldBag, error)
}

// LoanStore reads loan records for matching.
type LoanStore interface {
	ListEligible(ctx context.Context) ([]entity.LoanRecord, error)
}

// ClaimStore persists assembled claims.
type ClaimStore interface {
	Save(ctx context.Context, claim *entity.ReimbursementClaim) error
	GetByID(ctx context.Context, id string) (*entity.ReimbursementClaim, error)
}

// LedgerStore reads pending ledger entries for auto-matching.
type LedgerStore interface {
	ListPending(ctx context.Context) ([]entity.LedgerEntry, error)
}

// AnalysisService runs one reconciliation pass per request. The pass is
// pure computation over recognition results; only the recognition calls and
// the final save touch the outside world.
type AnalysisService struct {
	recognizer DocumentRecognizer
	loans      LoanStore
	claims     ClaimStore
	ledger     LedgerStore
	logger     *zap.Logger
	now        func() time.Time
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(
	recognizer DocumentRecognizer,
	loans LoanStore,
	claims ClaimStore,
	ledger LedgerStore,
	logger *zap.Logger,
) *AnalysisService {
	return &AnalysisService{
		recognizer: recognizer,
		loans:      loans,
		claims:     claims,
		ledger:     ledger,
		logger:     logger,
		now:        time.Now,
	}
}

// GeneralInput carries the documents of a general expense claim.
type GeneralInput struct {
	InvoiceImages  [][]byte
	ApprovalImages [][]byte
	Mode           reconcile.LineItemMode
	PrepaidAmount  float64
}

// TravelInput carries the documents of a travel claim.
type TravelInput struct {
	TicketImages   [][]byte
	HotelImages    [][]byte
	TaxiImages     [][]byte
	ApprovalImages [][]byte
	UserName       string
	PrepaidAmount  float64
}

// Analysis is the result of one pass: the assembled claim plus the ranked
// loan suggestions and matching ledger entries for the user to act on.
type Analysis struct {
	Claim         *entity.ReimbursementClaim `json:"claim"`
	LedgerMatches []entity.LedgerEntry       `json:"ledger_matches,omitempty"`
}

// AnalyzeGeneral runs a general-claim analysis pass. A recognition failure
// aborts the pass before the engine runs; garbled or empty recognition
// results flow through and degrade to empty outputs.
func (s *AnalysisService) AnalyzeGeneral(ctx context.Context, input GeneralInput) (*Analysis, error) {
	invoiceBag, err := s.recognizer.Recognize(ctx, input.InvoiceImages, recognize.DocumentInvoice)
	if err != nil {
		return nil, fmt.Errorf("invoice recognition failed: %w", err)
	}
	approval, err := s.recognizeApproval(ctx, input.ApprovalImages)
	if err != nil {
		return nil, err
	}

	now := s.now()
	mode := input.Mode
	if mode == "" {
		mode = reconcile.LineItemMerged
	}

	lines := reconcile.ParseInvoices(invoiceBag, now)
	claim := reconcile.AssembleGeneralClaim(lines, mode, approval, input.PrepaidAmount, now)

	content := make([]string, 0, len(lines))
	for _, line := range lines {
		content = append(content, line.ProjectName)
	}
	claim.MatchedLoans, err = s.matchLoans(ctx, approval, claim.TotalAmount, content)
	if err != nil {
		return nil, err
	}

	ledgerMatches, err := s.matchLedger(ctx, claim.Title, lines, approval)
	if err != nil {
		return nil, err
	}

	if err := s.claims.Save(ctx, claim); err != nil {
		return nil, err
	}

	s.logger.Info("General claim analyzed",
		zap.String("claim_id", claim.ID),
		zap.Int("invoice_count", len(lines)),
		zap.Float64("total_amount", claim.TotalAmount),
		zap.Int("loan_matches", len(claim.MatchedLoans)))

	return &Analysis{Claim: claim, LedgerMatches: ledgerMatches}, nil
}

// AnalyzeTravel runs a travel-claim analysis pass: pair tickets into legs,
// merge hotel costs, normalize taxi receipts, and allocate their total.
func (s *AnalysisService) AnalyzeTravel(ctx context.Context, input TravelInput) (*Analysis, error) {
	ticketBag, err := s.recognizer.Recognize(ctx, input.TicketImages, recognize.DocumentTicket)
	if err != nil {
		return nil, fmt.Errorf("ticket recognition failed: %w", err)
	}
	hotelBag, err := s.recognizer.Recognize(ctx, input.HotelImages, recognize.DocumentHotel)
	if err != nil {
		return nil, fmt.Errorf("hotel recognition failed: %w", err)
	}
	taxiBag, err := s.recognizer.Recognize(ctx, input.TaxiImages, recognize.DocumentTaxi)
	if err != nil {
		return nil, fmt.Errorf("taxi recognition failed: %w", err)
	}
	approval, err := s.recognizeApproval(ctx, input.ApprovalImages)
	if err != nil {
		return nil, err
	}

	now := s.now()
	legs := reconcile.PairTickets(documentList(ticketBag, "tickets"), documentList(hotelBag, "hotels"), now)

	taxiCtx := reconcile.TaxiContext{UserName: input.UserName, Now: now}
	if approval != nil {
		taxiCtx.EventSummary = approval.EventSummary
	}
	taxis := reconcile.ParseTaxiDetails(taxiBag, taxiCtx)

	claim := reconcile.AssembleTravelClaim(legs, taxis, approval, input.PrepaidAmount, now)

	claim.MatchedLoans, err = s.matchLoans(ctx, approval, claim.TotalAmount, nil)
	if err != nil {
		return nil, err
	}

	if err := s.claims.Save(ctx, claim); err != nil {
		return nil, err
	}

	s.logger.Info("Travel claim analyzed",
		zap.String("claim_id", claim.ID),
		zap.Int("leg_count", len(legs)),
		zap.Int("taxi_count", len(taxis)),
		zap.Float64("total_amount", claim.TotalAmount))

	return &Analysis{Claim: claim}, nil
}

// ToggleInvoice flips one invoice line's selection and re-derives the
// claim's items and totals.
func (s *AnalysisService) ToggleInvoice(ctx context.Context, claimID, lineID string, mode reconcile.LineItemMode) (*entity.ReimbursementClaim, error) {
	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, fmt.Errorf("claim not found: %s", claimID)
	}

	found := false
	for i := range claim.Invoices {
		if claim.Invoices[i].ID == lineID {
			claim.Invoices[i].Selected = !claim.Invoices[i].Selected
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("invoice line not found: %s", lineID)
	}

	if mode == "" {
		mode = reconcile.LineItemMerged
	}
	reconcile.RefreshGeneralClaim(claim, mode)

	if err := s.claims.Save(ctx, claim); err != nil {
		return nil, err
	}
	return claim, nil
}

// GetClaim returns a persisted claim, or nil when absent.
func (s *AnalysisService) GetClaim(ctx context.Context, id string) (*entity.ReimbursementClaim, error) {
	return s.claims.GetByID(ctx, id)
}

func (s *AnalysisService) recognizeApproval(ctx context.Context, images [][]byte) (*entity.ApprovalInfo, error) {
	if len(images) == 0 {
		return nil, nil
	}
	bag, err := s.recognizer.Recognize(ctx, images, recognize.DocumentApproval)
	if err != nil {
		return nil, fmt.Errorf("approval recognition failed: %w", err)
	}
	if len(bag) == 0 {
		return nil, nil
	}
	return &entity.ApprovalInfo{
		ApprovalNumber: reconcile.TextField(bag, "approvalNumber", "approvalNo", "number"),
		EventSummary:   reconcile.TextField(bag, "eventSummary", "summary", "event"),
		EventDetail:    reconcile.TextField(bag, "eventDetail", "detail", "description"),
		ApplicantName:  reconcile.TextField(bag, "applicantName", "applicant", "name"),
		Department:     reconcile.TextField(bag, "department", "dept"),
	}, nil
}

func (s *AnalysisService) matchLoans(ctx context.Context, approval *entity.ApprovalInfo, amount float64, content []string) ([]entity.MatchedLoan, error) {
	eligible, err := s.loans.ListEligible(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load loans for matching: %w", err)
	}
	return reconcile.MatchLoans(eligible, approval, amount, content), nil
}

func (s *AnalysisService) matchLedger(ctx context.Context, title string, lines []entity.InvoiceLine, approval *entity.ApprovalInfo) ([]entity.LedgerEntry, error) {
	pending, err := s.ledger.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger entries: %w", err)
	}
	return reconcile.MatchLedgerEntries(pending, reconcile.SearchTerms(title, lines, approval)), nil
}

// documentList pulls the list of document bags out of a recognition result,
// accepting the expected key or the generic items key.
func documentList(bag entity.FieldBag, key string) []entity.FieldBag {
	if bags := bag.Bags(key); len(bags) > 0 {
		return bags
	}
	return bag.Bags("items")
}
