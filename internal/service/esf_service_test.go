package service_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"esfhub/internal/domain"
	"esfhub/internal/port"
	"esfhub/internal/service"
	"esfhub/mocks"
)

type esfFixture struct {
	docRepo  *mocks.MockESFDocumentRepo
	gateway  *mocks.MockGateway
	storage  *mocks.MockObjectStorage
	notifier *mocks.MockNotifier
	svc      service.ESFService
}

func newESFFixture() *esfFixture {
	f := &esfFixture{
		docRepo:  new(mocks.MockESFDocumentRepo),
		gateway:  new(mocks.MockGateway),
		storage:  new(mocks.MockObjectStorage),
		notifier: new(mocks.MockNotifier),
	}
	f.svc = service.NewESFService(f.docRepo, f.gateway, f.storage, f.notifier)
	return f
}

func testPayload() domain.ESFPayload {
	yes, no := true, false
	return domain.ESFPayload{
		SchemaVersion: domain.PayloadSchemaInvoiceV1,
		Invoice: &domain.InvoiceData{
			IsBranchDataSent:    &no,
			IsPriceWithoutTaxes: &yes,
			OperationTypeCode:   "10",
			DeliveryTypeCode:    "1",
			IsResident:          &yes,
			ContractorTin:       "02002200220022",
			CurrencyCode:        "KGS",
			DeliveryCode:        "1",
			PaymentCode:         "1",
			TaxRateVATCode:      "12",
		},
	}
}

func draftDocument(owner uuid.UUID) *domain.ESFDocument {
	return &domain.ESFDocument{
		ID:             uuid.New(),
		DocumentUUID:   uuid.New(),
		OwnerID:        owner,
		LegalPersonTIN: "01001100110011",
		Payload:        testPayload(),
		Status:         domain.ESFStatusDraft,
	}
}

func TestESFService_Create_UsesCallerTIN(t *testing.T) {
	f := newESFFixture()
	caller := &domain.Identity{ID: uuid.New(), Username: "alice", TIN: strPtr("01001100110011")}

	f.docRepo.On("Create", mock.Anything, mock.MatchedBy(func(doc *domain.ESFDocument) bool {
		return doc.OwnerID == caller.ID &&
			doc.LegalPersonTIN == "01001100110011" &&
			doc.Status == domain.ESFStatusDraft &&
			doc.DocumentUUID != uuid.Nil
	})).Return(nil)

	doc, err := f.svc.Create(context.Background(), caller, service.CreateESFInput{Payload: testPayload()})

	require.NoError(t, err)
	assert.Equal(t, domain.ESFStatusDraft, doc.Status)
	f.docRepo.AssertExpectations(t)
}

func TestESFService_Create_KeepsGivenDocumentUUID(t *testing.T) {
	f := newESFFixture()
	caller := &domain.Identity{ID: uuid.New()}
	docUUID := uuid.New()

	f.docRepo.On("Create", mock.Anything, mock.MatchedBy(func(doc *domain.ESFDocument) bool {
		return doc.DocumentUUID == docUUID
	})).Return(nil)

	_, err := f.svc.Create(context.Background(), caller, service.CreateESFInput{
		DocumentUUID:   &docUUID,
		LegalPersonTIN: "01001100110011",
		Payload:        testPayload(),
	})

	require.NoError(t, err)
}

func TestESFService_Create_MissingTIN(t *testing.T) {
	f := newESFFixture()
	caller := &domain.Identity{ID: uuid.New()}

	_, err := f.svc.Create(context.Background(), caller, service.CreateESFInput{Payload: testPayload()})

	assert.ErrorIs(t, err, domain.ErrMissingTIN)
	f.docRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestESFService_Create_RejectsUnknownSchema(t *testing.T) {
	f := newESFFixture()
	payload := testPayload()
	payload.SchemaVersion = "invoice.v9"

	_, err := f.svc.Create(context.Background(), &domain.Identity{ID: uuid.New()}, service.CreateESFInput{
		LegalPersonTIN: "01001100110011",
		Payload:        payload,
	})

	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestESFService_Send_Success(t *testing.T) {
	f := newESFFixture()
	caller := &domain.Identity{ID: uuid.New()}
	doc := draftDocument(caller.ID)

	f.docRepo.On("SettleDraft", mock.Anything, caller.ID, doc.ID).Return(doc, nil)
	f.gateway.On("Submit", mock.Anything, mock.MatchedBy(func(req domain.SubmitRequest) bool {
		return req.DocumentUUID == doc.DocumentUUID.String() && req.LegalPersonTIN == "01001100110011"
	})).Return(&port.GatewayResponse{StatusCode: http.StatusOK, Body: []byte(`{"status":"accepted","gns_id":"gns-42"}`)}, nil)
	f.storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return strings.HasSuffix(in.Key, doc.DocumentUUID.String()+".json") && in.ContentType == "application/json"
	})).Return(&port.UploadOutput{Location: "s3://bucket/key"}, nil)

	result, err := f.svc.Send(context.Background(), caller, doc.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.ESFStatusSent, result.Document.Status)
	require.NotNil(t, doc.GNSID)
	assert.Equal(t, "gns-42", *doc.GNSID)
	assert.NotNil(t, doc.SentAt)
	assert.JSONEq(t, `{"status":"accepted","gns_id":"gns-42"}`, string(result.Gateway))
	f.docRepo.AssertExpectations(t)
	f.gateway.AssertExpectations(t)
	f.storage.AssertExpectations(t)
	f.notifier.AssertNotCalled(t, "NotifyDocumentFailed", mock.Anything, mock.Anything, mock.Anything)
}

func TestESFService_Send_ArchiveFailureDoesNotFailSend(t *testing.T) {
	f := newESFFixture()
	caller := &domain.Identity{ID: uuid.New()}
	doc := draftDocument(caller.ID)

	f.docRepo.On("SettleDraft", mock.Anything, caller.ID, doc.ID).Return(doc, nil)
	f.gateway.On("Submit", mock.Anything, mock.Anything).
		Return(&port.GatewayResponse{StatusCode: http.StatusOK, Body: []byte(`{"status":"accepted","gns_id":"g"}`)}, nil)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("bucket gone"))

	result, err := f.svc.Send(context.Background(), caller, doc.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.ESFStatusSent, result.Document.Status)
}

func TestESFService_Send_GatewayRejectionMarksFailed(t *testing.T) {
	f := newESFFixture()
	caller := &domain.Identity{ID: uuid.New()}
	doc := draftDocument(caller.ID)

	f.docRepo.On("SettleDraft", mock.Anything, caller.ID, doc.ID).Return(doc, nil)
	f.gateway.On("Submit", mock.Anything, mock.Anything).
		Return(nil, domain.NewGatewayStatusError("submit", http.StatusUnprocessableEntity, `{"error":"bad tin"}`))
	f.notifier.On("NotifyDocumentFailed", mock.Anything, doc, mock.AnythingOfType("string")).Return(nil)

	result, err := f.svc.Send(context.Background(), caller, doc.ID)

	assert.Nil(t, result)
	var gwErr *domain.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, http.StatusUnprocessableEntity, gwErr.StatusCode)
	assert.Equal(t, domain.ESFStatusFailed, doc.Status)
	require.NotNil(t, doc.ErrorMessage)
	assert.Contains(t, *doc.ErrorMessage, "bad tin")
	assert.Nil(t, doc.SentAt)
	f.docRepo.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
	f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestESFService_Send_CancelledRequestStillRecordsFailure(t *testing.T) {
	f := newESFFixture()
	caller := &domain.Identity{ID: uuid.New()}
	doc := draftDocument(caller.ID)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.docRepo.On("SettleDraft", mock.Anything, caller.ID, doc.ID).Return(doc, nil)
	f.gateway.On("Submit", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, domain.NewGatewayTransportError("submit", context.Canceled))
	f.notifier.On("NotifyDocumentFailed", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	}), doc, mock.AnythingOfType("string")).Return(nil)

	_, err := f.svc.Send(ctx, caller, doc.ID)

	var gwErr *domain.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, domain.ESFStatusFailed, doc.Status)
	f.notifier.AssertExpectations(t)
}

func TestESFService_Send_OnlyDraftsAreSent(t *testing.T) {
	for _, status := range []domain.ESFStatus{domain.ESFStatusSent, domain.ESFStatusFailed} {
		t.Run(string(status), func(t *testing.T) {
			f := newESFFixture()
			caller := &domain.Identity{ID: uuid.New()}
			doc := draftDocument(caller.ID)
			doc.Status = status

			f.docRepo.On("SettleDraft", mock.Anything, caller.ID, doc.ID).Return(doc, nil)

			_, err := f.svc.Send(context.Background(), caller, doc.ID)

			assert.ErrorIs(t, err, domain.ErrDocumentNotDraft)
			assert.Equal(t, status, doc.Status)
			f.gateway.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
		})
	}
}

func TestESFService_Send_ConcurrentSendsSubmitOnce(t *testing.T) {
	repo := newMemESFRepo()
	gw := new(mocks.MockGateway)
	svc := service.NewESFService(repo, gw, nil, nil)
	caller := &domain.Identity{ID: uuid.New()}
	doc := draftDocument(caller.ID)
	repo.put(doc)

	gw.On("Submit", mock.Anything, mock.Anything).
		Return(&port.GatewayResponse{StatusCode: http.StatusOK, Body: []byte(`{"status":"accepted","gns_id":"g-1"}`)}, nil)

	const senders = 8
	errs := make([]error, senders)
	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Send(context.Background(), caller, doc.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrDocumentNotDraft)
	}
	assert.Equal(t, 1, succeeded)
	gw.AssertNumberOfCalls(t, "Submit", 1)
	assert.Equal(t, domain.ESFStatusSent, repo.get(doc.ID).Status)
}

func TestESFService_Send_PersistFailure(t *testing.T) {
	f := newESFFixture()
	caller := &domain.Identity{ID: uuid.New()}
	doc := draftDocument(caller.ID)

	f.docRepo.On("SettleDraft", mock.Anything, caller.ID, doc.ID).Return(doc, errors.New("connection reset"))
	f.gateway.On("Submit", mock.Anything, mock.Anything).
		Return(&port.GatewayResponse{StatusCode: http.StatusOK, Body: []byte(`{}`)}, nil)

	_, err := f.svc.Send(context.Background(), caller, doc.ID)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestESFService_Send_NotFound(t *testing.T) {
	f := newESFFixture()
	caller := &domain.Identity{ID: uuid.New()}
	id := uuid.New()
	f.docRepo.On("SettleDraft", mock.Anything, caller.ID, id).Return(nil, domain.ErrDocumentNotFound)

	_, err := f.svc.Send(context.Background(), caller, id)

	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	f.gateway.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestESFService_NilCollaborators(t *testing.T) {
	docRepo := new(mocks.MockESFDocumentRepo)
	gw := new(mocks.MockGateway)
	svc := service.NewESFService(docRepo, gw, nil, nil)
	caller := &domain.Identity{ID: uuid.New()}
	doc := draftDocument(caller.ID)

	docRepo.On("SettleDraft", mock.Anything, caller.ID, doc.ID).Return(doc, nil)
	gw.On("Submit", mock.Anything, mock.Anything).
		Return(nil, domain.NewGatewayTransportError("submit", errors.New("dial tcp: connection refused")))

	_, err := svc.Send(context.Background(), caller, doc.ID)

	var gwErr *domain.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.True(t, gwErr.Transport())
	assert.Equal(t, domain.ESFStatusFailed, doc.Status)
}
