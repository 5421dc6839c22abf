package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voteauth/internal/aca"
	"voteauth/internal/audit"
	"voteauth/internal/vote/classify"
	"voteauth/internal/vote/models"
	"voteauth/internal/vote/store"
	"voteauth/internal/vote/store/entry"
	id "voteauth/pkg/domain"
	dErrors "voteauth/pkg/domain-errors"
)

const testAPIKey = "test-api-key"

// fakeResolver maps card tokens to identities without the network.
type fakeResolver struct {
	infos map[id.CardToken]models.StudentInfo
	err   error
	calls int
}

func (f *fakeResolver) Resolve(_ context.Context, token id.CardToken) (models.StudentInfo, error) {
	f.calls++
	if f.err != nil {
		return models.StudentInfo{}, f.err
	}
	info, ok := f.infos[token]
	if !ok {
		return models.StudentInfo{}, aca.ErrCardUnknown
	}
	return info, nil
}

type fixture struct {
	svc      *Service
	resolver *fakeResolver
	records  *store.InMemoryRecordStore
	codes    *store.InMemoryCodeStore
	window   *Window
	events   <-chan audit.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	resolver := &fakeResolver{infos: map[id.CardToken]models.StudentInfo{
		"deadbeef": {ID: "A12345678", TypeCode: "UG1", Department: "3101", College: "C3"},
		"cafe0001": {ID: "B23456789", TypeCode: "GR2", Department: "4010", College: "C7"},
	}}

	records := store.NewInMemoryRecordStore()
	codes := store.NewInMemoryCodeStore()
	require.NoError(t, codes.Add(context.Background(), []models.AuthCode{
		{Code: "CODE-3U-1", Kind: "3U"},
		{Code: "CODE-T0-1", Kind: "T0"},
	}))

	classifier, err := classify.New(
		entry.NewInMemory(nil, nil),
		entry.NewInMemory(nil, nil),
		classify.DefaultCatalog(),
		classify.DefaultCategories(),
		classify.DefaultCategoryDefaults(),
		classify.WithRules(classify.DefaultRules()),
	)
	require.NoError(t, err)

	window := NewWindow(time.Time{}, time.Time{})
	publisher, events := audit.NewPublisher(16, nil)

	svc, err := New(
		testAPIKey,
		window,
		resolver,
		records,
		store.NewMemoryIssuer(records, codes),
		classifier,
		classify.DefaultCatalog(),
		WithAuditPublisher(publisher),
	)
	require.NoError(t, err)

	return &fixture{svc: svc, resolver: resolver, records: records, codes: codes, window: window, events: events}
}

func validRequest() AuthRequest {
	return AuthRequest{
		APIKey:     testAPIKey,
		Version:    "1",
		StationID:  "station-1",
		CardToken:  "deadbeef",
		Credential: "A123456780",
	}
}

func TestAuthenticateSuccess(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Authenticate(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, id.StudentID("A12345678"), result.StudentID)
	assert.Equal(t, id.KindCode("3U"), result.Kind)
	assert.Equal(t, classify.DefaultCatalog().Name("3U"), result.KindName)
	assert.Equal(t, "CODE-3U-1", result.Code)

	record, err := f.records.Get(context.Background(), "A12345678")
	require.NoError(t, err)
	assert.True(t, record.IsUsed())

	event := <-f.events
	assert.Equal(t, audit.ActionIssued, event.Action)
	assert.Equal(t, id.StudentID("A12345678"), event.StudentID)
}

func TestAuthenticateDuplicate(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Authenticate(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = f.svc.Authenticate(context.Background(), validRequest())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeDuplicateEntry))
}

func TestAuthenticateExhaustedLeavesRecordAvailable(t *testing.T) {
	f := newFixture(t)

	// GR2 + department 4010 classifies to T0; drain its pool first.
	first, err := f.svc.Authenticate(context.Background(), AuthRequest{
		APIKey: testAPIKey, Version: "1", StationID: "station-2",
		CardToken: "cafe0001", Credential: "B234567890",
	})
	require.NoError(t, err)
	require.Equal(t, id.KindCode("T0"), first.Kind)

	f.resolver.infos["cafe0002"] = models.StudentInfo{ID: "B34567890", TypeCode: "GR2", Department: "4010", College: "C7"}
	req := AuthRequest{
		APIKey: testAPIKey, Version: "1", StationID: "station-2",
		CardToken: "cafe0002", Credential: "B345678900",
	}
	_, err = f.svc.Authenticate(context.Background(), req)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeOutOfAuthCode))

	// Exhaustion must not consume the voter's attempt.
	_, err = f.records.Get(context.Background(), "B34567890")
	assert.Error(t, err)

	require.NoError(t, f.codes.Add(context.Background(), []models.AuthCode{{Code: "CODE-T0-2", Kind: "T0"}}))
	result, err := f.svc.Authenticate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "CODE-T0-2", result.Code)
}

func TestAuthenticateRevisionMismatch(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Authenticate(context.Background(), validRequest())
	require.NoError(t, err)

	req := validRequest()
	req.Credential = "A123456781"
	_, err = f.svc.Authenticate(context.Background(), req)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeCardSuspicious))
}

func TestAuthenticateGateChecks(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*AuthRequest)
		code   dErrors.Code
	}{
		{"missing station", func(r *AuthRequest) { r.StationID = "" }, dErrors.CodeParamsInvalid},
		{"missing credential", func(r *AuthRequest) { r.Credential = "" }, dErrors.CodeParamsInvalid},
		{"bad api key", func(r *AuthRequest) { r.APIKey = "nope" }, dErrors.CodeUnauthorized},
		{"bad version", func(r *AuthRequest) { r.Version = "2" }, dErrors.CodeVersionNotSupported},
		{"malformed credential", func(r *AuthRequest) { r.Credential = "a123456780" }, dErrors.CodeCardInvalid},
		{"malformed card token", func(r *AuthRequest) { r.CardToken = "DEADBEEF" }, dErrors.CodeCardInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			req := validRequest()
			tc.mutate(&req)
			_, err := f.svc.Authenticate(context.Background(), req)
			assert.True(t, dErrors.HasCode(err, tc.code), "got %v", err)
		})
	}
}

func TestAuthenticateRejectsBeforeResolverOnGateFailure(t *testing.T) {
	f := newFixture(t)

	req := validRequest()
	req.APIKey = "nope"
	_, err := f.svc.Authenticate(context.Background(), req)
	require.Error(t, err)
	assert.Zero(t, f.resolver.calls, "gate rejections must not reach the resolver")
}

func TestAuthenticateResolverFailures(t *testing.T) {
	t.Run("unknown card", func(t *testing.T) {
		f := newFixture(t)
		req := validRequest()
		req.CardToken = "00000000"
		_, err := f.svc.Authenticate(context.Background(), req)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeCardInvalid))
	})

	t.Run("blacklisted card", func(t *testing.T) {
		f := newFixture(t)
		f.resolver.err = aca.ErrBlacklisted
		_, err := f.svc.Authenticate(context.Background(), validRequest())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeCardSuspicious))
	})

	t.Run("transport failure", func(t *testing.T) {
		f := newFixture(t)
		f.resolver.err = errors.New("connection refused")
		_, err := f.svc.Authenticate(context.Background(), validRequest())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeExternalError))
	})
}

func TestAuthenticateIdentityMismatch(t *testing.T) {
	f := newFixture(t)

	// Resolver vouches for a different student than the card claims.
	f.resolver.infos["deadbeef"] = models.StudentInfo{ID: "Z99999999", TypeCode: "UG1", Department: "3101"}
	_, err := f.svc.Authenticate(context.Background(), validRequest())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeCardSuspicious))

	// The rejection must not bind a record to the presented identity.
	_, err = f.records.Get(context.Background(), "A12345678")
	assert.Error(t, err)
}

func TestAuthenticateUnqualified(t *testing.T) {
	f := newFixture(t)

	f.resolver.infos["deadbeef"] = models.StudentInfo{ID: "A12345678", TypeCode: "XX9", Department: "9999"}
	_, err := f.svc.Authenticate(context.Background(), validRequest())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnqualified))
}

func TestServiceClosedWindow(t *testing.T) {
	f := newFixture(t)
	f.window.Close()

	_, err := f.svc.Authenticate(context.Background(), validRequest())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeServiceClosed))
	assert.Zero(t, f.resolver.calls)
}

func TestCompleteClosesWindow(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Complete(context.Background(), "station-1"))
	_, err := f.svc.Authenticate(context.Background(), validRequest())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeServiceClosed))

	event := <-f.events
	assert.Equal(t, audit.ActionCompleted, event.Action)
}

func TestWindowEdges(t *testing.T) {
	opens := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	closes := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	w := NewWindow(opens, closes)

	assert.False(t, w.Open(opens.Add(-time.Minute)))
	assert.True(t, w.Open(opens))
	assert.True(t, w.Open(closes.Add(-time.Second)))
	assert.False(t, w.Open(closes))

	unbounded := NewWindow(time.Time{}, time.Time{})
	assert.True(t, unbounded.Open(time.Unix(0, 0)))
}

func TestConfirmAndReportEmitAudit(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Confirm(context.Background(), "station-1", "A12345678"))
	event := <-f.events
	assert.Equal(t, audit.ActionConfirmed, event.Action)

	require.NoError(t, f.svc.Report(context.Background(), "station-1", "printer jam"))
	event = <-f.events
	assert.Equal(t, audit.ActionReported, event.Action)
	assert.Equal(t, "printer jam", event.Reason)

	err := f.svc.Report(context.Background(), "station-1", "")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeParamsInvalid))
}
