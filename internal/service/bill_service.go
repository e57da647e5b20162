// Package service implements the BillService RPC surface over Connect.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/text/language"

	"github.com/mmynk/fairshare/internal/auth"
	"github.com/mmynk/fairshare/internal/billstore"
	"github.com/mmynk/fairshare/internal/calculator"
	"github.com/mmynk/fairshare/internal/extract"
	"github.com/mmynk/fairshare/internal/metrics"
	"github.com/mmynk/fairshare/internal/middleware"
	"github.com/mmynk/fairshare/internal/models"
	"github.com/mmynk/fairshare/internal/normalize"
	"github.com/mmynk/fairshare/internal/settlement"
	"github.com/mmynk/fairshare/internal/storage"
)

// DefaultSessionTTL is how long an idle session lives.
const DefaultSessionTTL = 2 * time.Hour

// BillService implements the BillService RPCs. Each session holds one bill.
type BillService struct {
	store     storage.Store
	tokens    *auth.SessionTokens
	extractor extract.Extractor
	metrics   *metrics.Metrics
	ttl       time.Duration

	// mu serializes read-modify-write cycles on session bills.
	mu sync.Mutex
}

// NewBillService creates a BillService. A non-positive ttl selects
// DefaultSessionTTL.
func NewBillService(store storage.Store, tokens *auth.SessionTokens, extractor extract.Extractor, m *metrics.Metrics, ttl time.Duration) *BillService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &BillService{
		store:     store,
		tokens:    tokens,
		extractor: extractor,
		metrics:   m,
		ttl:       ttl,
	}
}

// newBillResponse computes totals for b.
func newBillResponse(b models.Bill) *BillResponse {
	totals := calculator.ComputeTotals(b)
	return &BillResponse{
		Bill:       b,
		Totals:     settlement.Summary(b, totals),
		Unassigned: hasUnassignedItem(b),
	}
}

// hasUnassignedItem reports whether some item has no positive allocation.
func hasUnassignedItem(b models.Bill) bool {
	for _, item := range b.LineItems {
		split, ok := b.SplitFor(item.ID)
		if !ok || split.TotalWeight() <= 0 {
			return true
		}
	}
	return false
}

// sessionID returns the caller's session from the context.
func sessionID(ctx context.Context) (string, error) {
	id := middleware.GetSessionID(ctx)
	if id == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return id, nil
}

// mutate applies op to the caller's bill and stores the result.
func (s *BillService) mutate(ctx context.Context, op string, fn billstore.Op) (*connect.Response[BillResponse], error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, storeError(op, err)
	}
	sess, err = s.store.SaveBill(ctx, id, fn(sess.Bill))
	if err != nil {
		return nil, storeError(op, err)
	}

	slog.Debug("Bill updated", "op", op, "session_id", id)
	return connect.NewResponse(newBillResponse(sess.Bill)), nil
}

// refreshSessionGauge updates the active session gauge. Failures only cost
// accuracy of the gauge.
func (s *BillService) refreshSessionGauge(ctx context.Context) {
	n, err := s.store.CountSessions(ctx)
	if err != nil {
		slog.Warn("Failed to count sessions", "error", err)
		return
	}
	s.metrics.SetActiveSessions(n)
}

// StartSession creates a session and returns its token.
func (s *BillService) StartSession(ctx context.Context, req *connect.Request[StartSessionRequest]) (*connect.Response[StartSessionResponse], error) {
	var bill models.Bill
	switch {
	case len(bytes.TrimSpace(req.Msg.Bill)) > 0:
		bill = normalize.NormalizeJSON(req.Msg.Bill)
	case req.Msg.Example:
		bill = billstore.ExampleBill()
	default:
		bill = normalize.Normalize(nil)
	}

	sess, err := s.store.CreateSession(ctx, bill, s.ttl)
	if err != nil {
		return nil, storeError("StartSession", err)
	}

	token, err := s.tokens.Generate(sess.ID)
	if err != nil {
		slog.Error("Failed to generate token", "session_id", sess.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.refreshSessionGauge(ctx)
	slog.Info("Session started",
		"session_id", sess.ID,
		"participants", len(bill.Participants),
		"line_items", len(bill.LineItems),
	)

	return connect.NewResponse(&StartSessionResponse{
		SessionID:    sess.ID,
		Token:        token,
		ExpiresAt:    sess.ExpiresAt,
		BillResponse: *newBillResponse(sess.Bill),
	}), nil
}

// ProcessReceipt extracts a bill from a receipt and replaces the session's
// bill with it. On failure the current bill is kept.
func (s *BillService) ProcessReceipt(ctx context.Context, req *connect.Request[ProcessReceiptRequest]) (*connect.Response[BillResponse], error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}

	// Make sure the session is live before paying for an extraction.
	if _, err := s.store.GetSession(ctx, id); err != nil {
		return nil, storeError("ProcessReceipt", err)
	}

	raw, err := s.extractor.Extract(ctx, extract.Request{
		Image:        req.Msg.Image,
		MediaType:    req.Msg.MediaType,
		Instructions: req.Msg.Instructions,
	})
	if err != nil {
		connectErr, outcome := extractError(err)
		s.metrics.Extraction(outcome)
		return nil, connectErr
	}
	s.metrics.Extraction(metrics.OutcomeSuccess)

	bill := normalize.Normalize(raw)
	slog.Info("Receipt processed",
		"session_id", id,
		"participants", len(bill.Participants),
		"line_items", len(bill.LineItems),
		"charges", len(bill.AdditionalCharges),
	)
	return s.mutate(ctx, "ProcessReceipt", func(models.Bill) models.Bill { return bill })
}

// GetBill returns the session's bill and totals.
func (s *BillService) GetBill(ctx context.Context, req *connect.Request[GetBillRequest]) (*connect.Response[BillResponse], error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, storeError("GetBill", err)
	}
	return connect.NewResponse(newBillResponse(sess.Bill)), nil
}

func (s *BillService) AddParticipant(ctx context.Context, req *connect.Request[AddParticipantRequest]) (*connect.Response[BillResponse], error) {
	return s.mutate(ctx, "AddParticipant", func(b models.Bill) models.Bill {
		return billstore.AddParticipant(b, req.Msg.Name)
	})
}

func (s *BillService) RenameParticipant(ctx context.Context, req *connect.Request[RenameParticipantRequest]) (*connect.Response[BillResponse], error) {
	return s.mutate(ctx, "RenameParticipant", func(b models.Bill) models.Bill {
		return billstore.RenameParticipant(b, req.Msg.ID, req.Msg.Name)
	})
}

func (s *BillService) DeleteParticipant(ctx context.Context, req *connect.Request[DeleteParticipantRequest]) (*connect.Response[BillResponse], error) {
	return s.mutate(ctx, "DeleteParticipant", func(b models.Bill) models.Bill {
		return billstore.DeleteParticipant(b, req.Msg.ID)
	})
}

func (s *BillService) AddLineItem(ctx context.Context, req *connect.Request[AddLineItemRequest]) (*connect.Response[BillResponse], error) {
	return s.mutate(ctx, "AddLineItem", func(b models.Bill) models.Bill {
		return billstore.AddLineItem(b, req.Msg.LineItemInput)
	})
}

func (s *BillService) EditLineItem(ctx context.Context, req *connect.Request[EditLineItemRequest]) (*connect.Response[BillResponse], error) {
	return s.mutate(ctx, "EditLineItem", func(b models.Bill) models.Bill {
		return billstore.EditLineItem(b, req.Msg.ID, req.Msg.LineItemInput)
	})
}

func (s *BillService) DeleteLineItem(ctx context.Context, req *connect.Request[DeleteLineItemRequest]) (*connect.Response[BillResponse], error) {
	return s.mutate(ctx, "DeleteLineItem", func(b models.Bill) models.Bill {
		return billstore.DeleteLineItem(b, req.Msg.ID)
	})
}

func (s *BillService) SetAllocationWeight(ctx context.Context, req *connect.Request[SetAllocationWeightRequest]) (*connect.Response[BillResponse], error) {
	return s.mutate(ctx, "SetAllocationWeight", func(b models.Bill) models.Bill {
		return billstore.SetAllocationWeight(b, req.Msg.ItemID, req.Msg.ParticipantID, req.Msg.Weight)
	})
}

func (s *BillService) SplitItemEqually(ctx context.Context, req *connect.Request[SplitItemEquallyRequest]) (*connect.Response[BillResponse], error) {
	return s.mutate(ctx, "SplitItemEqually", func(b models.Bill) models.Bill {
		return billstore.SplitEqually(b, req.Msg.ItemID, req.Msg.ParticipantIDs)
	})
}

func (s *BillService) AddCharge(ctx context.Context, req *connect.Request[AddChargeRequest]) (*connect.Response[BillResponse], error) {
	return s.mutate(ctx, "AddCharge", func(b models.Bill) models.Bill {
		return billstore.AddCharge(b, req.Msg.ChargeInput)
	})
}

// EditCharge decodes the JSON value before handing it to the bill store, so
// numbers keep their textual form until the field is known.
func (s *BillService) EditCharge(ctx context.Context, req *connect.Request[EditChargeRequest]) (*connect.Response[BillResponse], error) {
	var value any
	if len(req.Msg.Value) > 0 {
		dec := json.NewDecoder(bytes.NewReader(req.Msg.Value))
		dec.UseNumber()
		if err := dec.Decode(&value); err != nil {
			// An undecodable value is rejected by EditCharge like any other bad input.
			value = nil
		}
	}
	return s.mutate(ctx, "EditCharge", func(b models.Bill) models.Bill {
		return billstore.EditCharge(b, req.Msg.ID, req.Msg.Field, value)
	})
}

func (s *BillService) DeleteCharge(ctx context.Context, req *connect.Request[DeleteChargeRequest]) (*connect.Response[BillResponse], error) {
	return s.mutate(ctx, "DeleteCharge", func(b models.Bill) models.Bill {
		return billstore.DeleteCharge(b, req.Msg.ID)
	})
}

// GetSettlement returns the formatted breakdown, payment links and summary
// text for the session's bill.
func (s *BillService) GetSettlement(ctx context.Context, req *connect.Request[GetSettlementRequest]) (*connect.Response[GetSettlementResponse], error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, storeError("GetSettlement", err)
	}

	f := settlement.DefaultFormatter
	if req.Msg.Language != "" {
		tag, err := language.Parse(req.Msg.Language)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		f = settlement.Formatter{Language: tag}
	}

	totals := calculator.ComputeTotals(sess.Bill)
	report := settlement.Summary(sess.Bill, totals)
	amounts := make(map[string]string, len(report.People))
	for _, p := range report.People {
		amounts[p.ID] = f.Money(p.Total, report.Currency)
	}
	resp := &GetSettlementResponse{
		Report:  report,
		Amounts: amounts,
		Text:    f.Text(report),
	}

	payments := req.Msg.Payments
	if req.Msg.PaidBy != "" {
		if _, ok := sess.Bill.Participant(req.Msg.PaidBy); !ok {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unknown payer %q", req.Msg.PaidBy))
		}
		payments = calculator.PaidBy(totals, req.Msg.PaidBy)
	}
	if len(payments) > 0 {
		_, transfers := calculator.Settle(totals, payments)
		resp.Transfers = settlement.Transfers(sess.Bill, transfers)
		resp.Text += "\n" + f.TransfersText(resp.Transfers, report.Currency)
	}

	return connect.NewResponse(resp), nil
}

// EndSession deletes the session and its bill.
func (s *BillService) EndSession(ctx context.Context, req *connect.Request[EndSessionRequest]) (*connect.Response[EndSessionResponse], error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	err = s.store.DeleteSession(ctx, id)
	s.mu.Unlock()
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, storeError("EndSession", err)
	}

	s.refreshSessionGauge(ctx)
	slog.Info("Session ended", "session_id", id)
	return connect.NewResponse(&EndSessionResponse{}), nil
}
