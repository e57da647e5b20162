package service

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// BillServiceName is the fully-qualified name of the BillService.
const BillServiceName = "fairshare.v1.BillService"

// Procedure paths, in the form "/<service>/<method>".
const (
	StartSessionProcedure        = "/" + BillServiceName + "/StartSession"
	ProcessReceiptProcedure      = "/" + BillServiceName + "/ProcessReceipt"
	GetBillProcedure             = "/" + BillServiceName + "/GetBill"
	AddParticipantProcedure      = "/" + BillServiceName + "/AddParticipant"
	RenameParticipantProcedure   = "/" + BillServiceName + "/RenameParticipant"
	DeleteParticipantProcedure   = "/" + BillServiceName + "/DeleteParticipant"
	AddLineItemProcedure         = "/" + BillServiceName + "/AddLineItem"
	EditLineItemProcedure        = "/" + BillServiceName + "/EditLineItem"
	DeleteLineItemProcedure      = "/" + BillServiceName + "/DeleteLineItem"
	SetAllocationWeightProcedure = "/" + BillServiceName + "/SetAllocationWeight"
	SplitItemEquallyProcedure    = "/" + BillServiceName + "/SplitItemEqually"
	AddChargeProcedure           = "/" + BillServiceName + "/AddCharge"
	EditChargeProcedure          = "/" + BillServiceName + "/EditCharge"
	DeleteChargeProcedure        = "/" + BillServiceName + "/DeleteCharge"
	GetSettlementProcedure       = "/" + BillServiceName + "/GetSettlement"
	EndSessionProcedure          = "/" + BillServiceName + "/EndSession"
)

// PublicProcedures do not require a session token.
var PublicProcedures = []string{StartSessionProcedure}

// NewBillServiceHandler builds an HTTP handler serving every BillService
// procedure. It returns the path to mount the handler on.
func NewBillServiceHandler(svc *BillService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(StartSessionProcedure, connect.NewUnaryHandler(StartSessionProcedure, svc.StartSession, opts...))
	mux.Handle(ProcessReceiptProcedure, connect.NewUnaryHandler(ProcessReceiptProcedure, svc.ProcessReceipt, opts...))
	mux.Handle(GetBillProcedure, connect.NewUnaryHandler(GetBillProcedure, svc.GetBill, opts...))
	mux.Handle(AddParticipantProcedure, connect.NewUnaryHandler(AddParticipantProcedure, svc.AddParticipant, opts...))
	mux.Handle(RenameParticipantProcedure, connect.NewUnaryHandler(RenameParticipantProcedure, svc.RenameParticipant, opts...))
	mux.Handle(DeleteParticipantProcedure, connect.NewUnaryHandler(DeleteParticipantProcedure, svc.DeleteParticipant, opts...))
	mux.Handle(AddLineItemProcedure, connect.NewUnaryHandler(AddLineItemProcedure, svc.AddLineItem, opts...))
	mux.Handle(EditLineItemProcedure, connect.NewUnaryHandler(EditLineItemProcedure, svc.EditLineItem, opts...))
	mux.Handle(DeleteLineItemProcedure, connect.NewUnaryHandler(DeleteLineItemProcedure, svc.DeleteLineItem, opts...))
	mux.Handle(SetAllocationWeightProcedure, connect.NewUnaryHandler(SetAllocationWeightProcedure, svc.SetAllocationWeight, opts...))
	mux.Handle(SplitItemEquallyProcedure, connect.NewUnaryHandler(SplitItemEquallyProcedure, svc.SplitItemEqually, opts...))
	mux.Handle(AddChargeProcedure, connect.NewUnaryHandler(AddChargeProcedure, svc.AddCharge, opts...))
	mux.Handle(EditChargeProcedure, connect.NewUnaryHandler(EditChargeProcedure, svc.EditCharge, opts...))
	mux.Handle(DeleteChargeProcedure, connect.NewUnaryHandler(DeleteChargeProcedure, svc.DeleteCharge, opts...))
	mux.Handle(GetSettlementProcedure, connect.NewUnaryHandler(GetSettlementProcedure, svc.GetSettlement, opts...))
	mux.Handle(EndSessionProcedure, connect.NewUnaryHandler(EndSessionProcedure, svc.EndSession, opts...))

	return "/" + BillServiceName + "/", mux
}

// BillServiceClient is a client for the BillService.
type BillServiceClient struct {
	startSession        *connect.Client[StartSessionRequest, StartSessionResponse]
	processReceipt      *connect.Client[ProcessReceiptRequest, BillResponse]
	getBill             *connect.Client[GetBillRequest, BillResponse]
	addParticipant      *connect.Client[AddParticipantRequest, BillResponse]
	renameParticipant   *connect.Client[RenameParticipantRequest, BillResponse]
	deleteParticipant   *connect.Client[DeleteParticipantRequest, BillResponse]
	addLineItem         *connect.Client[AddLineItemRequest, BillResponse]
	editLineItem        *connect.Client[EditLineItemRequest, BillResponse]
	deleteLineItem      *connect.Client[DeleteLineItemRequest, BillResponse]
	setAllocationWeight *connect.Client[SetAllocationWeightRequest, BillResponse]
	splitItemEqually    *connect.Client[SplitItemEquallyRequest, BillResponse]
	addCharge           *connect.Client[AddChargeRequest, BillResponse]
	editCharge          *connect.Client[EditChargeRequest, BillResponse]
	deleteCharge        *connect.Client[DeleteChargeRequest, BillResponse]
	getSettlement       *connect.Client[GetSettlementRequest, GetSettlementResponse]
	endSession          *connect.Client[EndSessionRequest, EndSessionResponse]
}

// NewBillServiceClient constructs a client for the BillService at baseURL,
// e.g. "http://localhost:8080".
func NewBillServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *BillServiceClient {
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return &BillServiceClient{
		startSession:        connect.NewClient[StartSessionRequest, StartSessionResponse](httpClient, baseURL+StartSessionProcedure, opts...),
		processReceipt:      connect.NewClient[ProcessReceiptRequest, BillResponse](httpClient, baseURL+ProcessReceiptProcedure, opts...),
		getBill:             connect.NewClient[GetBillRequest, BillResponse](httpClient, baseURL+GetBillProcedure, opts...),
		addParticipant:      connect.NewClient[AddParticipantRequest, BillResponse](httpClient, baseURL+AddParticipantProcedure, opts...),
		renameParticipant:   connect.NewClient[RenameParticipantRequest, BillResponse](httpClient, baseURL+RenameParticipantProcedure, opts...),
		deleteParticipant:   connect.NewClient[DeleteParticipantRequest, BillResponse](httpClient, baseURL+DeleteParticipantProcedure, opts...),
		addLineItem:         connect.NewClient[AddLineItemRequest, BillResponse](httpClient, baseURL+AddLineItemProcedure, opts...),
		editLineItem:        connect.NewClient[EditLineItemRequest, BillResponse](httpClient, baseURL+EditLineItemProcedure, opts...),
		deleteLineItem:      connect.NewClient[DeleteLineItemRequest, BillResponse](httpClient, baseURL+DeleteLineItemProcedure, opts...),
		setAllocationWeight: connect.NewClient[SetAllocationWeightRequest, BillResponse](httpClient, baseURL+SetAllocationWeightProcedure, opts...),
		splitItemEqually:    connect.NewClient[SplitItemEquallyRequest, BillResponse](httpClient, baseURL+SplitItemEquallyProcedure, opts...),
		addCharge:           connect.NewClient[AddChargeRequest, BillResponse](httpClient, baseURL+AddChargeProcedure, opts...),
		editCharge:          connect.NewClient[EditChargeRequest, BillResponse](httpClient, baseURL+EditChargeProcedure, opts...),
		deleteCharge:        connect.NewClient[DeleteChargeRequest, BillResponse](httpClient, baseURL+DeleteChargeProcedure, opts...),
		getSettlement:       connect.NewClient[GetSettlementRequest, GetSettlementResponse](httpClient, baseURL+GetSettlementProcedure, opts...),
		endSession:          connect.NewClient[EndSessionRequest, EndSessionResponse](httpClient, baseURL+EndSessionProcedure, opts...),
	}
}

func (c *BillServiceClient) StartSession(ctx context.Context, req *connect.Request[StartSessionRequest]) (*connect.Response[StartSessionResponse], error) {
	return c.startSession.CallUnary(ctx, req)
}

func (c *BillServiceClient) ProcessReceipt(ctx context.Context, req *connect.Request[ProcessReceiptRequest]) (*connect.Response[BillResponse], error) {
	return c.processReceipt.CallUnary(ctx, req)
}

func (c *BillServiceClient) GetBill(ctx context.Context, req *connect.Request[GetBillRequest]) (*connect.Response[BillResponse], error) {
	return c.getBill.CallUnary(ctx, req)
}

func (c *BillServiceClient) AddParticipant(ctx context.Context, req *connect.Request[AddParticipantRequest]) (*connect.Response[BillResponse], error) {
	return c.addParticipant.CallUnary(ctx, req)
}

func (c *BillServiceClient) RenameParticipant(ctx context.Context, req *connect.Request[RenameParticipantRequest]) (*connect.Response[BillResponse], error) {
	return c.renameParticipant.CallUnary(ctx, req)
}

func (c *BillServiceClient) DeleteParticipant(ctx context.Context, req *connect.Request[DeleteParticipantRequest]) (*connect.Response[BillResponse], error) {
	return c.deleteParticipant.CallUnary(ctx, req)
}

func (c *BillServiceClient) AddLineItem(ctx context.Context, req *connect.Request[AddLineItemRequest]) (*connect.Response[BillResponse], error) {
	return c.addLineItem.CallUnary(ctx, req)
}

func (c *BillServiceClient) EditLineItem(ctx context.Context, req *connect.Request[EditLineItemRequest]) (*connect.Response[BillResponse], error) {
	return c.editLineItem.CallUnary(ctx, req)
}

func (c *BillServiceClient) DeleteLineItem(ctx context.Context, req *connect.Request[DeleteLineItemRequest]) (*connect.Response[BillResponse], error) {
	return c.deleteLineItem.CallUnary(ctx, req)
}

func (c *BillServiceClient) SetAllocationWeight(ctx context.Context, req *connect.Request[SetAllocationWeightRequest]) (*connect.Response[BillResponse], error) {
	return c.setAllocationWeight.CallUnary(ctx, req)
}

func (c *BillServiceClient) SplitItemEqually(ctx context.Context, req *connect.Request[SplitItemEquallyRequest]) (*connect.Response[BillResponse], error) {
	return c.splitItemEqually.CallUnary(ctx, req)
}

func (c *BillServiceClient) AddCharge(ctx context.Context, req *connect.Request[AddChargeRequest]) (*connect.Response[BillResponse], error) {
	return c.addCharge.CallUnary(ctx, req)
}

func (c *BillServiceClient) EditCharge(ctx context.Context, req *connect.Request[EditChargeRequest]) (*connect.Response[BillResponse], error) {
	return c.editCharge.CallUnary(ctx, req)
}

func (c *BillServiceClient) DeleteCharge(ctx context.Context, req *connect.Request[DeleteChargeRequest]) (*connect.Response[BillResponse], error) {
	return c.deleteCharge.CallUnary(ctx, req)
}

func (c *BillServiceClient) GetSettlement(ctx context.Context, req *connect.Request[GetSettlementRequest]) (*connect.Response[GetSettlementResponse], error) {
	return c.getSettlement.CallUnary(ctx, req)
}

func (c *BillServiceClient) EndSession(ctx context.Context, req *connect.Request[EndSessionRequest]) (*connect.Response[EndSessionResponse], error) {
	return c.endSession.CallUnary(ctx, req)
}
