package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"unicode/utf8"

	"connectrpc.com/connect"

	"github.com/mmynk/billzy/internal/auth"
	"github.com/mmynk/billzy/internal/calculator"
	"github.com/mmynk/billzy/internal/metrics"
	"github.com/mmynk/billzy/internal/middleware"
	"github.com/mmynk/billzy/internal/models"
	"github.com/mmynk/billzy/internal/receipt"
	"github.com/mmynk/billzy/internal/storage"
)

// ErrTooManyPeople is returned by AddPerson when the roster is full.
var ErrTooManyPeople = errors.New("too many people in this session")

const (
	// DefaultMaxPeople is the roster limit when Options.MaxPeople is unset.
	DefaultMaxPeople = 20

	// maxReceipts bounds one AddReceipts call.
	maxReceipts = 20

	// maxReceiptBytes bounds the OCR text of a single receipt.
	maxReceiptBytes = 64 << 10

	// maxNameLen bounds person and item names.
	maxNameLen = 120
)

// Options tunes a BillService. Zero values select defaults.
type Options struct {
	MaxPeople        int
	ParseConcurrency int

	// Metrics is optional.
	Metrics *metrics.Metrics
}

// BillService implements the billzy.v1.BillService API on top of a session
// store.
type BillService struct {
	store   storage.Store
	tokens  auth.Authenticator
	metrics *metrics.Metrics

	maxPeople        int
	parseConcurrency int
}

// NewBillService creates a new BillService with the given storage backend and
// token issuer.
func NewBillService(store storage.Store, tokens auth.Authenticator, opts Options) *BillService {
	if opts.MaxPeople <= 0 {
		opts.MaxPeople = DefaultMaxPeople
	}
	if opts.ParseConcurrency <= 0 {
		opts.ParseConcurrency = 1
	}
	return &BillService{
		store:            store,
		tokens:           tokens,
		metrics:          opts.Metrics,
		maxPeople:        opts.MaxPeople,
		parseConcurrency: opts.ParseConcurrency,
	}
}

// CreateSession starts a new workspace and returns a token for it.
func (s *BillService) CreateSession(ctx context.Context, req *connect.Request[CreateSessionRequest]) (*connect.Response[CreateSessionResponse], error) {
	session, err := s.store.CreateSession(ctx)
	if err != nil {
		return nil, s.storeError("CreateSession", err)
	}

	token, err := s.tokens.Issue(session.ID)
	if err != nil {
		slog.Error("Failed to issue session token", "session_id", session.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("Session created", "session_id", session.ID)
	return connect.NewResponse(&CreateSessionResponse{
		Token:   token,
		Session: toSession(session),
	}), nil
}

// GetSession returns the caller's workspace.
func (s *BillService) GetSession(ctx context.Context, req *connect.Request[GetSessionRequest]) (*connect.Response[GetSessionResponse], error) {
	session, err := s.loadSession(ctx)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&GetSessionResponse{Session: toSession(session)}), nil
}

// DeleteSession discards the caller's workspace. The token stops working.
func (s *BillService) DeleteSession(ctx context.Context, req *connect.Request[DeleteSessionRequest]) (*connect.Response[DeleteSessionResponse], error) {
	sessionID, err := sessionFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return nil, s.storeError("DeleteSession", err)
	}

	slog.Info("Session deleted", "session_id", sessionID)
	return connect.NewResponse(&DeleteSessionResponse{}), nil
}

// AddReceipts parses receipt texts and adds them, with their items and
// warnings, to the session. Receipts are labelled with the suggested merchant
// name, or "Receipt N" when none is found.
func (s *BillService) AddReceipts(ctx context.Context, req *connect.Request[AddReceiptsRequest]) (*connect.Response[AddReceiptsResponse], error) {
	sessionID, err := sessionFromContext(ctx)
	if err != nil {
		return nil, err
	}

	// Validate input
	if len(req.Msg.Receipts) == 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("at least one receipt is required"))
	}
	if len(req.Msg.Receipts) > maxReceipts {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("at most %d receipts per call", maxReceipts))
	}
	texts := make([]string, len(req.Msg.Receipts))
	for i, r := range req.Msg.Receipts {
		if len(r.Text) > maxReceiptBytes {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("receipt %d exceeds %d bytes", i+1, maxReceiptBytes))
		}
		texts[i] = r.Text
	}

	parsed, err := receipt.ParseAll(ctx, texts, s.parseConcurrency)
	if err != nil {
		return nil, s.storeError("AddReceipts", err)
	}

	uploads := make([]models.ReceiptUpload, len(parsed))
	for i, p := range parsed {
		rec := &models.Receipt{
			Name:     req.Msg.Receipts[i].Name,
			Total:    p.Result.Totals.Total,
			Tax:      p.Result.Totals.Tax,
			Warnings: p.Result.Warnings,
		}
		if rec.Name == "" && p.HasName {
			rec.Name = p.Merchant
		}

		items := make([]models.Item, len(p.Result.Items))
		for j, it := range p.Result.Items {
			items[j] = models.Item{
				Name:      it.Name,
				Price:     it.Price,
				Quantity:  it.Quantity,
				Uncertain: it.Uncertain,
			}
		}
		uploads[i] = models.ReceiptUpload{Receipt: rec, Items: items}
	}

	// All receipts of the call are stored together or not at all
	if err := s.store.AddReceipts(ctx, sessionID, uploads); err != nil {
		return nil, s.storeError("AddReceipts", err)
	}

	added := make([]Receipt, 0, len(uploads))
	for i, u := range uploads {
		if s.metrics != nil {
			s.metrics.ObserveParse(parsed[i].Result)
		}
		slog.Debug("Receipt parsed",
			"session_id", sessionID,
			"receipt", u.Receipt.Name,
			"items", len(u.Items),
			"uncertain", parsed[i].Result.HasUncertain(),
			"warnings", len(u.Receipt.Warnings),
		)
		added = append(added, toReceipt(*u.Receipt))
	}

	session, err := s.loadSession(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("Receipts added", "session_id", sessionID, "count", len(added))
	return connect.NewResponse(&AddReceiptsResponse{
		Receipts: added,
		Session:  toSession(session),
	}), nil
}

// RemoveReceipt deletes a receipt and the items parsed from it.
func (s *BillService) RemoveReceipt(ctx context.Context, req *connect.Request[RemoveReceiptRequest]) (*connect.Response[RemoveReceiptResponse], error) {
	sessionID, err := sessionFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.ReceiptID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("receipt_id required"))
	}

	if err := s.store.RemoveReceipt(ctx, sessionID, req.Msg.ReceiptID); err != nil {
		return nil, s.storeError("RemoveReceipt", err)
	}
	return connect.NewResponse(&RemoveReceiptResponse{}), nil
}

// AddPerson appends a person to the roster, up to the configured limit.
func (s *BillService) AddPerson(ctx context.Context, req *connect.Request[AddPersonRequest]) (*connect.Response[AddPersonResponse], error) {
	sessionID, err := sessionFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateName(req.Msg.Name); err != nil {
		return nil, err
	}

	person, err := s.store.AddPerson(ctx, sessionID, req.Msg.Name, s.maxPeople)
	if errors.Is(err, storage.ErrLimitReached) {
		return nil, connect.NewError(connect.CodeResourceExhausted, fmt.Errorf("%w (max %d)", ErrTooManyPeople, s.maxPeople))
	}
	if err != nil {
		return nil, s.storeError("AddPerson", err)
	}

	n, err := s.store.CountPeople(ctx, sessionID)
	if err != nil {
		return nil, s.storeError("AddPerson", err)
	}

	return connect.NewResponse(&AddPersonResponse{
		Person: toPerson(*person, n-1),
	}), nil
}

// RenamePerson changes a person's name. A blank name falls back to the
// "Person N" placeholder when displayed.
func (s *BillService) RenamePerson(ctx context.Context, req *connect.Request[RenamePersonRequest]) (*connect.Response[RenamePersonResponse], error) {
	sessionID, err := sessionFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.PersonID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("person_id required"))
	}
	if err := validateName(req.Msg.Name); err != nil {
		return nil, err
	}

	if err := s.store.RenamePerson(ctx, sessionID, req.Msg.PersonID, req.Msg.Name); err != nil {
		return nil, s.storeError("RenamePerson", err)
	}
	return connect.NewResponse(&RenamePersonResponse{}), nil
}

// RemovePerson deletes a person and unassigns them from every item.
func (s *BillService) RemovePerson(ctx context.Context, req *connect.Request[RemovePersonRequest]) (*connect.Response[RemovePersonResponse], error) {
	sessionID, err := sessionFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.PersonID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("person_id required"))
	}

	if err := s.store.RemovePerson(ctx, sessionID, req.Msg.PersonID); err != nil {
		return nil, s.storeError("RemovePerson", err)
	}
	return connect.NewResponse(&RemovePersonResponse{}), nil
}

// AddItem appends a manual "New item" row priced at zero.
func (s *BillService) AddItem(ctx context.Context, req *connect.Request[AddItemRequest]) (*connect.Response[AddItemResponse], error) {
	sessionID, err := sessionFromContext(ctx)
	if err != nil {
		return nil, err
	}

	item, err := s.store.AddItem(ctx, sessionID)
	if err != nil {
		return nil, s.storeError("AddItem", err)
	}
	return connect.NewResponse(&AddItemResponse{Item: toItem(*item)}), nil
}

// UpdateItem edits an item's name or price. A new price clears the uncertain
// flag.
func (s *BillService) UpdateItem(ctx context.Context, req *connect.Request[UpdateItemRequest]) (*connect.Response[UpdateItemResponse], error) {
	sessionID, err := sessionFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.ItemID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("item_id required"))
	}
	if req.Msg.Name != nil {
		if err := validateName(*req.Msg.Name); err != nil {
			return nil, err
		}
	}
	if p := req.Msg.Price; p != nil && (*p < 0 || *p > receipt.MaxPrice || math.IsNaN(*p)) {
		return nil, connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("price must be between 0 and %.2f", receipt.MaxPrice))
	}

	item, err := s.store.UpdateItem(ctx, sessionID, req.Msg.ItemID, models.ItemUpdate{
		Name:  req.Msg.Name,
		Price: req.Msg.Price,
	})
	if err != nil {
		return nil, s.storeError("UpdateItem", err)
	}
	return connect.NewResponse(&UpdateItemResponse{Item: toItem(*item)}), nil
}

// RemoveItem deletes an item.
func (s *BillService) RemoveItem(ctx context.Context, req *connect.Request[RemoveItemRequest]) (*connect.Response[RemoveItemResponse], error) {
	sessionID, err := sessionFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.ItemID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("item_id required"))
	}

	if err := s.store.RemoveItem(ctx, sessionID, req.Msg.ItemID); err != nil {
		return nil, s.storeError("RemoveItem", err)
	}
	return connect.NewResponse(&RemoveItemResponse{}), nil
}

// SetAssignment adds or removes a person from an item's assignees.
func (s *BillService) SetAssignment(ctx context.Context, req *connect.Request[SetAssignmentRequest]) (*connect.Response[SetAssignmentResponse], error) {
	sessionID, err := sessionFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.ItemID == "" || req.Msg.PersonID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("item_id and person_id required"))
	}

	err = s.store.SetAssignment(ctx, sessionID, req.Msg.ItemID, req.Msg.PersonID, req.Msg.Assigned)
	if err != nil {
		return nil, s.storeError("SetAssignment", err)
	}
	return connect.NewResponse(&SetAssignmentResponse{}), nil
}

// GetSplit computes what each person owes from the current assignments.
func (s *BillService) GetSplit(ctx context.Context, req *connect.Request[GetSplitRequest]) (*connect.Response[GetSplitResponse], error) {
	session, err := s.loadSession(ctx)
	if err != nil {
		return nil, err
	}

	merchants := make(map[string]string, len(session.Receipts))
	for _, r := range session.Receipts {
		merchants[r.ID] = r.Name
	}

	// Convert session items to calculator items
	items := make([]calculator.Item, len(session.Items))
	for i, item := range session.Items {
		items[i] = calculator.Item{
			Name:        item.Name,
			Price:       item.Price,
			Quantity:    item.Quantity,
			ReceiptID:   item.ReceiptID,
			Merchant:    merchants[item.ReceiptID],
			AssigneeIDs: item.AssigneeIDs,
		}
	}
	people := make([]calculator.Person, len(session.People))
	for i, p := range session.People {
		people[i] = calculator.Person{ID: p.ID, Name: p.Name}
	}

	alloc := calculator.CalculateSplit(items, people)

	csvText, err := calculator.SummaryCSV(alloc)
	if err != nil {
		slog.Error("Failed to render split csv", "session_id", session.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Debug("Split calculated",
		"session_id", session.ID,
		"people", len(people),
		"items", len(items),
		"total", alloc.Total,
		"assigned", alloc.Assigned,
	)

	return connect.NewResponse(&GetSplitResponse{
		Split: toSplit(alloc, alloc.Total-alloc.Assigned, csvText),
	}), nil
}

func (s *BillService) loadSession(ctx context.Context) (*models.Session, error) {
	sessionID, err := sessionFromContext(ctx)
	if err != nil {
		return nil, err
	}
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, s.storeError("GetSession", err)
	}
	return session, nil
}

// storeError maps storage and context errors onto Connect codes. Unexpected errors are
// logged here since their detail is not returned to the client.
func (s *BillService) storeError(op string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrLimitReached):
		return connect.NewError(connect.CodeResourceExhausted, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		slog.Error(op+" failed", "error", err)
		return connect.NewError(connect.CodeInternal, fmt.Errorf("%s failed", op))
	}
}

// sessionFromContext returns the session ID placed by middleware.RequireSession.
func sessionFromContext(ctx context.Context) (string, error) {
	sessionID := middleware.GetSessionID(ctx)
	if sessionID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return sessionID, nil
}

func validateName(name string) error {
	if utf8.RuneCountInString(name) > maxNameLen {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("name exceeds %d characters", maxNameLen))
	}
	return nil
}
