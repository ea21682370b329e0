package service

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// BillServiceName is the fully-qualified name of the service.
const BillServiceName = "billzy.v1.BillService"

// Procedure paths, in the form Connect routes them.
const (
	CreateSessionProcedure = "/" + BillServiceName + "/CreateSession"
	GetSessionProcedure    = "/" + BillServiceName + "/GetSession"
	DeleteSessionProcedure = "/" + BillServiceName + "/DeleteSession"
	AddReceiptsProcedure   = "/" + BillServiceName + "/AddReceipts"
	RemoveReceiptProcedure = "/" + BillServiceName + "/RemoveReceipt"
	AddPersonProcedure     = "/" + BillServiceName + "/AddPerson"
	RenamePersonProcedure  = "/" + BillServiceName + "/RenamePerson"
	RemovePersonProcedure  = "/" + BillServiceName + "/RemovePerson"
	AddItemProcedure       = "/" + BillServiceName + "/AddItem"
	UpdateItemProcedure    = "/" + BillServiceName + "/UpdateItem"
	RemoveItemProcedure    = "/" + BillServiceName + "/RemoveItem"
	SetAssignmentProcedure = "/" + BillServiceName + "/SetAssignment"
	GetSplitProcedure      = "/" + BillServiceName + "/GetSplit"
)

// PublicProcedures need no session token.
var PublicProcedures = []string{CreateSessionProcedure}

// maxRequestBytes caps a request body; AddReceipts is the largest message.
const maxRequestBytes = maxReceipts*maxReceiptBytes + 64<<10

// NewBillServiceHandler builds an HTTP handler that serves every procedure of
// svc. It returns the path prefix to mount the handler on.
func NewBillServiceHandler(svc *BillService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{
		connect.WithCodec(jsonCodec{}),
		connect.WithReadMaxBytes(maxRequestBytes),
	}, opts...)

	mux := http.NewServeMux()
	mux.Handle(CreateSessionProcedure, connect.NewUnaryHandler(CreateSessionProcedure, svc.CreateSession, opts...))
	mux.Handle(GetSessionProcedure, connect.NewUnaryHandler(GetSessionProcedure, svc.GetSession, opts...))
	mux.Handle(DeleteSessionProcedure, connect.NewUnaryHandler(DeleteSessionProcedure, svc.DeleteSession, opts...))
	mux.Handle(AddReceiptsProcedure, connect.NewUnaryHandler(AddReceiptsProcedure, svc.AddReceipts, opts...))
	mux.Handle(RemoveReceiptProcedure, connect.NewUnaryHandler(RemoveReceiptProcedure, svc.RemoveReceipt, opts...))
	mux.Handle(AddPersonProcedure, connect.NewUnaryHandler(AddPersonProcedure, svc.AddPerson, opts...))
	mux.Handle(RenamePersonProcedure, connect.NewUnaryHandler(RenamePersonProcedure, svc.RenamePerson, opts...))
	mux.Handle(RemovePersonProcedure, connect.NewUnaryHandler(RemovePersonProcedure, svc.RemovePerson, opts...))
	mux.Handle(AddItemProcedure, connect.NewUnaryHandler(AddItemProcedure, svc.AddItem, opts...))
	mux.Handle(UpdateItemProcedure, connect.NewUnaryHandler(UpdateItemProcedure, svc.UpdateItem, opts...))
	mux.Handle(RemoveItemProcedure, connect.NewUnaryHandler(RemoveItemProcedure, svc.RemoveItem, opts...))
	mux.Handle(SetAssignmentProcedure, connect.NewUnaryHandler(SetAssignmentProcedure, svc.SetAssignment, opts...))
	mux.Handle(GetSplitProcedure, connect.NewUnaryHandler(GetSplitProcedure, svc.GetSplit, opts...))

	return "/" + BillServiceName + "/", mux
}

// BillServiceClient is a typed client for billzy.v1.BillService.
type BillServiceClient struct {
	createSession *connect.Client[CreateSessionRequest, CreateSessionResponse]
	getSession    *connect.Client[GetSessionRequest, GetSessionResponse]
	deleteSession *connect.Client[DeleteSessionRequest, DeleteSessionResponse]
	addReceipts   *connect.Client[AddReceiptsRequest, AddReceiptsResponse]
	removeReceipt *connect.Client[RemoveReceiptRequest, RemoveReceiptResponse]
	addPerson     *connect.Client[AddPersonRequest, AddPersonResponse]
	renamePerson  *connect.Client[RenamePersonRequest, RenamePersonResponse]
	removePerson  *connect.Client[RemovePersonRequest, RemovePersonResponse]
	addItem       *connect.Client[AddItemRequest, AddItemResponse]
	updateItem    *connect.Client[UpdateItemRequest, UpdateItemResponse]
	removeItem    *connect.Client[RemoveItemRequest, RemoveItemResponse]
	setAssignment *connect.Client[SetAssignmentRequest, SetAssignmentResponse]
	getSplit      *connect.Client[GetSplitRequest, GetSplitResponse]
}

// NewBillServiceClient constructs a client for the service at baseURL, e.g.
// http://localhost:8080.
func NewBillServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *BillServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &BillServiceClient{
		createSession: connect.NewClient[CreateSessionRequest, CreateSessionResponse](httpClient, baseURL+CreateSessionProcedure, opts...),
		getSession:    connect.NewClient[GetSessionRequest, GetSessionResponse](httpClient, baseURL+GetSessionProcedure, opts...),
		deleteSession: connect.NewClient[DeleteSessionRequest, DeleteSessionResponse](httpClient, baseURL+DeleteSessionProcedure, opts...),
		addReceipts:   connect.NewClient[AddReceiptsRequest, AddReceiptsResponse](httpClient, baseURL+AddReceiptsProcedure, opts...),
		removeReceipt: connect.NewClient[RemoveReceiptRequest, RemoveReceiptResponse](httpClient, baseURL+RemoveReceiptProcedure, opts...),
		addPerson:     connect.NewClient[AddPersonRequest, AddPersonResponse](httpClient, baseURL+AddPersonProcedure, opts...),
		renamePerson:  connect.NewClient[RenamePersonRequest, RenamePersonResponse](httpClient, baseURL+RenamePersonProcedure, opts...),
		removePerson:  connect.NewClient[RemovePersonRequest, RemovePersonResponse](httpClient, baseURL+RemovePersonProcedure, opts...),
		addItem:       connect.NewClient[AddItemRequest, AddItemResponse](httpClient, baseURL+AddItemProcedure, opts...),
		updateItem:    connect.NewClient[UpdateItemRequest, UpdateItemResponse](httpClient, baseURL+UpdateItemProcedure, opts...),
		removeItem:    connect.NewClient[RemoveItemRequest, RemoveItemResponse](httpClient, baseURL+RemoveItemProcedure, opts...),
		setAssignment: connect.NewClient[SetAssignmentRequest, SetAssignmentResponse](httpClient, baseURL+SetAssignmentProcedure, opts...),
		getSplit:      connect.NewClient[GetSplitRequest, GetSplitResponse](httpClient, baseURL+GetSplitProcedure, opts...),
	}
}

func (c *BillServiceClient) CreateSession(ctx context.Context, req *connect.Request[CreateSessionRequest]) (*connect.Response[CreateSessionResponse], error) {
	return c.createSession.CallUnary(ctx, req)
}

func (c *BillServiceClient) GetSession(ctx context.Context, req *connect.Request[GetSessionRequest]) (*connect.Response[GetSessionResponse], error) {
	return c.getSession.CallUnary(ctx, req)
}

func (c *BillServiceClient) DeleteSession(ctx context.Context, req *connect.Request[DeleteSessionRequest]) (*connect.Response[DeleteSessionResponse], error) {
	return c.deleteSession.CallUnary(ctx, req)
}

func (c *BillServiceClient) AddReceipts(ctx context.Context, req *connect.Request[AddReceiptsRequest]) (*connect.Response[AddReceiptsResponse], error) {
	return c.addReceipts.CallUnary(ctx, req)
}

func (c *BillServiceClient) RemoveReceipt(ctx context.Context, req *connect.Request[RemoveReceiptRequest]) (*connect.Response[RemoveReceiptResponse], error) {
	return c.removeReceipt.CallUnary(ctx, req)
}

func (c *BillServiceClient) AddPerson(ctx context.Context, req *connect.Request[AddPersonRequest]) (*connect.Response[AddPersonResponse], error) {
	return c.addPerson.CallUnary(ctx, req)
}

func (c *BillServiceClient) RenamePerson(ctx context.Context, req *connect.Request[RenamePersonRequest]) (*connect.Response[RenamePersonResponse], error) {
	return c.renamePerson.CallUnary(ctx, req)
}

func (c *BillServiceClient) RemovePerson(ctx context.Context, req *connect.Request[RemovePersonRequest]) (*connect.Response[RemovePersonResponse], error) {
	return c.removePerson.CallUnary(ctx, req)
}

func (c *BillServiceClient) AddItem(ctx context.Context, req *connect.Request[AddItemRequest]) (*connect.Response[AddItemResponse], error) {
	return c.addItem.CallUnary(ctx, req)
}

func (c *BillServiceClient) UpdateItem(ctx context.Context, req *connect.Request[UpdateItemRequest]) (*connect.Response[UpdateItemResponse], error) {
	return c.updateItem.CallUnary(ctx, req)
}

func (c *BillServiceClient) RemoveItem(ctx context.Context, req *connect.Request[RemoveItemRequest]) (*connect.Response[RemoveItemResponse], error) {
	return c.removeItem.CallUnary(ctx, req)
}

func (c *BillServiceClient) SetAssignment(ctx context.Context, req *connect.Request[SetAssignmentRequest]) (*connect.Response[SetAssignmentResponse], error) {
	return c.setAssignment.CallUnary(ctx, req)
}

func (c *BillServiceClient) GetSplit(ctx context.Context, req *connect.Request[GetSplitRequest]) (*connect.Response[GetSplitResponse], error) {
	return c.getSplit.CallUnary(ctx, req)
}

// WithSessionToken returns a client option that sends token as a bearer
// credential on every call.
func WithSessionToken(token string) connect.ClientOption {
	return connect.WithInterceptors(connect.UnaryInterceptorFunc(
		func(next connect.UnaryFunc) connect.UnaryFunc {
			return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
				req.Header().Set("Authorization", "Bearer "+token)
				return next(ctx, req)
			}
		},
	))
}
