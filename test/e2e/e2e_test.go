// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agreement-workers/internal/common/logger"
	"agreement-workers/internal/common/marketplace"
	"agreement-workers/internal/models"
	"agreement-workers/internal/signing"

	prepareagreementdocument "agreement-workers/internal/workers/agreement/prepare-agreement-document"
	recordagreementaudit "agreement-workers/internal/workers/agreement/record-agreement-audit"
	resolvesigningstate "agreement-workers/internal/workers/agreement/resolve-signing-state"
	signagreement "agreement-workers/internal/workers/agreement/sign-agreement"
	submitagencyfees "agreement-workers/internal/workers/agreement/submit-agency-fees"
	indexbookedcontract "agreement-workers/internal/workers/contract/index-booked-contract"
	sendsigningnotification "agreement-workers/internal/workers/notification/send-signing-notification"
)

const (
	agreementID = "agr-e2e-1"
	clientUser  = "user-institute"
	agencyUser  = "user-agency"
)

// marketplaceBackend simulates the core API's agreement service: it owns all
// state transitions, just like the production backend the workers call.
type marketplaceBackend struct {
	mu         sync.Mutex
	agreement  models.Agreement
	actionLogs []models.AuditRecord
}

func newMarketplaceBackend() *marketplaceBackend {
	return &marketplaceBackend{
		agreement: models.Agreement{
			ID:              agreementID,
			AgreementNumber: "AGR-2026-0100",
			ContractID:      "con-e2e-1",
			Status:          models.StatusDraft,
			ClientUserID:    clientUser,
			AgencyUserID:    agencyUser,
			AgreementData: &models.AgreementData{
				Fees: &models.FeeBlock{RequiresInput: true},
			},
		},
	}
}

func (b *marketplaceBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/agreements/"+agreementID, func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		json.NewEncoder(w).Encode(b.agreement)
	})

	mux.HandleFunc("/agreements/"+agreementID+"/document/platform", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.agreement.Status != models.StatusDraft {
			writeError(w, http.StatusConflict, "document can only be changed in draft")
			return
		}
		b.agreement.IsCustomAgreement = false
		b.agreement.Status = models.StatusPendingApplicantFees
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("/agreements/"+agreementID+"/fees", func(w http.ResponseWriter, r *http.Request) {
		var sub models.FeeSubmission
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			writeError(w, http.StatusBadRequest, "malformed fee payload")
			return
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		if b.agreement.AgencySigned {
			writeError(w, http.StatusConflict, "fees cannot change after signing")
			return
		}
		amount := sub.Amount
		b.agreement.AgreementData.Fees = &models.FeeBlock{
			RequiresInput:  false,
			AgencyFees:     &amount,
			FeeType:        sub.FeeType,
			FeeDescription: sub.Description,
		}
		b.agreement.Status = models.StatusPendingApplicantSignature
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("/agreements/"+agreementID+"/sign", func(w http.ResponseWriter, r *http.Request) {
		var sub models.SignatureSubmission
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			writeError(w, http.StatusBadRequest, "malformed signature payload")
			return
		}

		b.mu.Lock()
		defer b.mu.Unlock()

		fees := b.agreement.Fees()
		if !b.agreement.AgencySigned {
			if fees == nil || fees.AgencyFees == nil || *fees.AgencyFees == 0 {
				writeError(w, http.StatusConflict, "agency fees must be submitted before signing")
				return
			}
			b.agreement.AgencySigned = true
			b.agreement.Status = models.StatusPendingClientSignature
			json.NewEncoder(w).Encode(models.SignResult{BothSigned: false})
			return
		}
		if !b.agreement.ClientSigned {
			b.agreement.ClientSigned = true
			b.agreement.Status = models.StatusFullySigned
			json.NewEncoder(w).Encode(models.SignResult{BothSigned: true})
			return
		}
		writeError(w, http.StatusConflict, "agreement is already fully signed")
	})

	mux.HandleFunc("/action-logs", func(w http.ResponseWriter, r *http.Request) {
		var record models.AuditRecord
		if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
			writeError(w, http.StatusBadRequest, "malformed action log")
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		b.actionLogs = append(b.actionLogs, record)
		w.WriteHeader(http.StatusCreated)
	})

	return mux
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// esTransport fakes an Elasticsearch node for the index worker.
type esTransport struct {
	mu      sync.Mutex
	indexed [][]byte
}

func (t *esTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if req.Body != nil {
		body, _ := io.ReadAll(req.Body)
		t.indexed = append(t.indexed, body)
	}
	return &http.Response{
		StatusCode: http.StatusCreated,
		Header: http.Header{
			"X-Elastic-Product": []string{"Elasticsearch"},
			"Content-Type":      []string{"application/json"},
		},
		Body: io.NopCloser(strings.NewReader(`{"result":"created"}`)),
	}, nil
}

type sesRecorder struct {
	mu     sync.Mutex
	inputs []*ses.SendEmailInput
}

func (m *sesRecorder) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs = append(m.inputs, params)
	return &ses.SendEmailOutput{}, nil
}

type snsRecorder struct{}

func (m *snsRecorder) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return &sns.PublishOutput{}, nil
}

type env struct {
	backend     *marketplaceBackend
	marketplace *marketplace.Client
	cache       *redis.Client

	resolve  *resolvesigningstate.Service
	fees     *submitagencyfees.Service
	sign     *signagreement.Service
	document *prepareagreementdocument.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()

	backend := newMarketplaceBackend()
	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)

	mp := marketplace.NewClient(server.URL, 5*time.Second, 10*time.Second, 10*1024*1024, nil)

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	log := logger.NewTestLogger(t)

	return &env{
		backend:     backend,
		marketplace: mp,
		cache:       cache,
		resolve: resolvesigningstate.NewService(resolvesigningstate.ServiceDependencies{
			Logger:      log,
			Marketplace: mp,
			Cache:       cache,
		}, resolvesigningstate.DefaultConfig()),
		fees: submitagencyfees.NewService(submitagencyfees.ServiceDependencies{
			Logger:      log,
			Marketplace: mp,
			Cache:       cache,
		}, submitagencyfees.DefaultConfig()),
		sign: signagreement.NewService(signagreement.ServiceDependencies{
			Logger:      log,
			Marketplace: mp,
			Cache:       cache,
		}, signagreement.DefaultConfig()),
		document: prepareagreementdocument.NewService(prepareagreementdocument.ServiceDependencies{
			Logger:      log,
			Marketplace: mp,
		}, prepareagreementdocument.DefaultConfig()),
	}
}

func TestFullSigningLifecycle(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	// Publisher selects the platform document while the agreement is in draft.
	docOut, err := e.document.Execute(ctx, &prepareagreementdocument.Input{
		AgreementID: agreementID,
		UserID:      clientUser,
		Mode:        prepareagreementdocument.ModePlatform,
	})
	require.NoError(t, err)
	assert.True(t, docOut.DocumentReady)
	assert.False(t, docOut.IsCustomAgreement)

	// Applicant's projection: fees gate the signature.
	agencyState, err := e.resolve.Execute(ctx, &resolvesigningstate.Input{
		AgreementID: agreementID,
		UserID:      agencyUser,
	})
	require.NoError(t, err)
	assert.Equal(t, "agency", agencyState.Role)
	assert.True(t, agencyState.NeedsFees)
	assert.False(t, agencyState.CanSign)
	assert.Equal(t, string(signing.StateFeesOutstanding), agencyState.BlockState)
	assert.Equal(t, signing.StepPrepare, agencyState.CurrentStep)

	// Publisher's projection at the same moment: waiting on the applicant.
	clientState, err := e.resolve.Execute(ctx, &resolvesigningstate.Input{
		AgreementID: agreementID,
		UserID:      clientUser,
	})
	require.NoError(t, err)
	assert.Equal(t, "client", clientState.Role)
	assert.False(t, clientState.CanSign)
	assert.Equal(t, string(signing.StateNotYourTurn), clientState.BlockState)

	// Applicant cannot sign while fees are outstanding.
	_, err = e.sign.Execute(ctx, &signagreement.Input{
		AgreementID:    agreementID,
		UserID:         agencyUser,
		SignatureImage: "data:image/png;base64,iVBORw0KGgo=",
		SignedName:     "Jane Smith",
		TermsAccepted:  true,
	})
	require.Error(t, err)

	// Applicant submits fees.
	feesOut, err := e.fees.Execute(ctx, &submitagencyfees.Input{
		AgreementID: agreementID,
		UserID:      agencyUser,
		Amount:      2500,
		FeeType:     models.FeeTypeFixed,
	})
	require.NoError(t, err)
	assert.True(t, feesOut.FeesSubmitted)
	assert.False(t, feesOut.NeedsFees)
	require.NotNil(t, feesOut.PersistedFee)
	assert.Equal(t, 2500.0, *feesOut.PersistedFee)
	assert.Equal(t, signing.StepSign, feesOut.CurrentStep)

	// The fee mutation invalidated the snapshot cache: a fresh resolve sees
	// the new state without ForceRefresh.
	agencyState, err = e.resolve.Execute(ctx, &resolvesigningstate.Input{
		AgreementID: agreementID,
		UserID:      agencyUser,
	})
	require.NoError(t, err)
	assert.False(t, agencyState.NeedsFees)
	assert.True(t, agencyState.CanSign)
	assert.Equal(t, string(signing.StateReady), agencyState.BlockState)

	// Applicant signs first.
	signOut, err := e.sign.Execute(ctx, &signagreement.Input{
		AgreementID:    agreementID,
		UserID:         agencyUser,
		SignatureImage: "data:image/png;base64,iVBORw0KGgo=",
		SignedName:     "Jane Smith",
		TermsAccepted:  true,
	})
	require.NoError(t, err)
	assert.True(t, signOut.Signed)
	assert.False(t, signOut.BothSigned)
	assert.Equal(t, signing.StepAwait, signOut.CurrentStep)
	assert.Equal(t, signagreement.MessageSigned, signOut.Message)

	// A second applicant signature is rejected as already signed.
	_, err = e.sign.Execute(ctx, &signagreement.Input{
		AgreementID:    agreementID,
		UserID:         agencyUser,
		SignatureImage: "data:image/png;base64,iVBORw0KGgo=",
		SignedName:     "Jane Smith",
		TermsAccepted:  true,
	})
	require.Error(t, err)

	// Now it is the publisher's turn.
	clientState, err = e.resolve.Execute(ctx, &resolvesigningstate.Input{
		AgreementID: agreementID,
		UserID:      clientUser,
	})
	require.NoError(t, err)
	assert.True(t, clientState.CanSign)
	assert.Equal(t, signing.StepSign, clientState.CurrentStep)

	// Publisher completes the agreement.
	signOut, err = e.sign.Execute(ctx, &signagreement.Input{
		AgreementID:    agreementID,
		UserID:         clientUser,
		SignatureImage: "data:image/png;base64,iVBORw0KGgo=",
		SignedName:     "Dr. Alan Grant",
		TermsAccepted:  true,
	})
	require.NoError(t, err)
	assert.True(t, signOut.BothSigned)
	assert.True(t, signOut.Booked)
	assert.Equal(t, signagreement.MessageBooked, signOut.Message)
	assert.Equal(t, signing.StepDone, signOut.CurrentStep)

	// Both projections agree the agreement is terminal.
	for _, user := range []string{agencyUser, clientUser} {
		state, err := e.resolve.Execute(ctx, &resolvesigningstate.Input{
			AgreementID: agreementID,
			UserID:      user,
		})
		require.NoError(t, err)
		assert.Equal(t, string(signing.StateComplete), state.BlockState)
		assert.Equal(t, signing.StepDone, state.CurrentStep)
		assert.True(t, state.AgencySigned)
		assert.True(t, state.ClientSigned)
	}
}

func TestBookedFollowups(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	log := logger.NewTestLogger(t)

	// Drive the agreement to booked through the backend.
	_, err := e.document.Execute(ctx, &prepareagreementdocument.Input{
		AgreementID: agreementID, UserID: clientUser, Mode: prepareagreementdocument.ModePlatform,
	})
	require.NoError(t, err)
	_, err = e.fees.Execute(ctx, &submitagencyfees.Input{
		AgreementID: agreementID, UserID: agencyUser, Amount: 1200, FeeType: models.FeeTypePercentage,
	})
	require.NoError(t, err)
	for _, user := range []string{agencyUser, clientUser} {
		_, err = e.sign.Execute(ctx, &signagreement.Input{
			AgreementID:    agreementID,
			UserID:         user,
			SignatureImage: "data:image/png;base64,iVBORw0KGgo=",
			SignedName:     "Signer " + user,
			TermsAccepted:  true,
		})
		require.NoError(t, err)
	}

	// Audit worker writes the booking record and mirrors it upstream.
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	dbMock.ExpectExec("INSERT INTO agreement_audit_log").
		WillReturnResult(sqlmock.NewResult(0, 1))

	auditSvc := recordagreementaudit.NewService(recordagreementaudit.ServiceDependencies{
		Logger:    log,
		DB:        db,
		ActionLog: e.marketplace,
	}, recordagreementaudit.DefaultConfig())

	auditOut, err := auditSvc.Execute(ctx, &recordagreementaudit.Input{
		AgreementID: agreementID,
		UserID:      clientUser,
		Role:        "client",
		Action:      models.AuditActionBooked,
	})
	require.NoError(t, err)
	assert.True(t, auditOut.Recorded)
	assert.True(t, auditOut.Mirrored)
	require.Len(t, e.backend.actionLogs, 1)
	assert.Equal(t, models.AuditActionBooked, e.backend.actionLogs[0].Action)

	// Index worker pushes the booked contract into search.
	transport := &esTransport{}
	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://elasticsearch.test:9200"},
		Transport: transport,
	})
	require.NoError(t, err)

	indexSvc := indexbookedcontract.NewService(indexbookedcontract.ServiceDependencies{
		Logger:        log,
		Marketplace:   e.marketplace,
		Elasticsearch: esClient,
	}, indexbookedcontract.DefaultConfig())

	indexOut, err := indexSvc.Execute(ctx, &indexbookedcontract.Input{AgreementID: agreementID})
	require.NoError(t, err)
	assert.True(t, indexOut.Indexed)
	assert.Equal(t, agreementID, indexOut.DocID)

	require.Len(t, transport.indexed, 1)
	var doc models.BookedContract
	require.NoError(t, json.Unmarshal(transport.indexed[0], &doc))
	assert.Equal(t, "con-e2e-1", doc.ContractID)
	require.NotNil(t, doc.AgencyFees)
	assert.Equal(t, 1200.0, *doc.AgencyFees)

	// Notification worker tells both sides the contract is booked.
	sesMock := &sesRecorder{}
	notifySvc := sendsigningnotification.NewService(sendsigningnotification.ServiceDependencies{
		Logger: log,
		SES:    sesMock,
		SNS:    &snsRecorder{},
	}, sendsigningnotification.DefaultConfig())

	notifyOut, err := notifySvc.Execute(ctx, &sendsigningnotification.Input{
		AgreementID:     agreementID,
		AgreementNumber: "AGR-2026-0100",
		RecipientEmail:  "agency@example.com",
		Event:           sendsigningnotification.EventAgreementBooked,
	})
	require.NoError(t, err)
	assert.Equal(t, sendsigningnotification.StatusSent, notifyOut.Status)
	require.Len(t, sesMock.inputs, 1)
	assert.Contains(t, *sesMock.inputs[0].Message.Subject.Data, "AGR-2026-0100")

	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestCustomDocumentUploadRoundTrip(t *testing.T) {
	ctx := context.Background()

	backend := newMarketplaceBackend()
	var uploadedFilename string
	mux := http.NewServeMux()
	base := backend.handler()
	mux.HandleFunc("/agreements/"+agreementID+"/document/custom", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(10*1024*1024))
		_, header, err := r.FormFile("document")
		require.NoError(t, err)
		uploadedFilename = header.Filename

		backend.mu.Lock()
		backend.agreement.IsCustomAgreement = true
		backend.agreement.Status = models.StatusPendingApplicantFees
		backend.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})
	mux.Handle("/", base)

	server := httptest.NewServer(mux)
	defer server.Close()

	mp := marketplace.NewClient(server.URL, 5*time.Second, 10*time.Second, 10*1024*1024, nil)
	svc := prepareagreementdocument.NewService(prepareagreementdocument.ServiceDependencies{
		Logger:      logger.NewTestLogger(t),
		Marketplace: mp,
	}, prepareagreementdocument.DefaultConfig())

	content := base64.StdEncoding.EncodeToString([]byte("%PDF-1.7 fake agreement body"))
	out, err := svc.Execute(ctx, &prepareagreementdocument.Input{
		AgreementID: agreementID,
		UserID:      clientUser,
		Mode:        prepareagreementdocument.ModeCustom,
		Filename:    "staffing-agreement.pdf",
		FileContent: content,
	})
	require.NoError(t, err)
	assert.True(t, out.DocumentReady)
	assert.True(t, out.IsCustomAgreement)
	assert.Equal(t, "staffing-agreement.pdf", uploadedFilename)
}
