// Package service orchestrates one authentication request end to end:
// gate checks, credential parsing, identity resolution, replay check,
// classification and the atomic code claim.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"voteauth/internal/aca"
	"voteauth/internal/audit"
	"voteauth/internal/platform/metrics"
	"voteauth/internal/vote/classify"
	"voteauth/internal/vote/models"
	"voteauth/internal/vote/store"
	id "voteauth/pkg/domain"
	dErrors "voteauth/pkg/domain-errors"
	"voteauth/pkg/platform/sentinel"
)

// AuthRequest carries the raw fields of one authentication attempt.
// Parsing and validation happen inside Authenticate so that every
// rejection reason originates from a single place.
type AuthRequest struct {
	APIKey     string
	Version    string
	StationID  string
	CardToken  string
	Credential string
}

// AuthResult is a successful issuance.
type AuthResult struct {
	StudentID id.StudentID
	Kind      id.KindCode
	KindName  string
	Code      string
}

// Service composes the issuance pipeline. All collaborators are
// required except the ones injected through options.
type Service struct {
	apiKey     string
	window     *Window
	resolver   aca.Resolver
	records    store.RecordStore
	issuer     store.Issuer
	classifier *classify.Classifier
	catalog    models.Catalog

	publisher *audit.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures optional collaborators.
type Option func(*Service)

// WithLogger sets the logger used by the service.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics wires Prometheus counters for issuance outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithAuditPublisher wires the audit trail. Without it decisions are
// still logged but not persisted as events.
func WithAuditPublisher(p *audit.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithClock overrides the time source, used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs the issuance service.
func New(
	apiKey string,
	window *Window,
	resolver aca.Resolver,
	records store.RecordStore,
	issuer store.Issuer,
	classifier *classify.Classifier,
	catalog models.Catalog,
	opts ...Option,
) (*Service, error) {
	if apiKey == "" {
		return nil, errors.New("vote service: api key is required")
	}
	if window == nil {
		return nil, errors.New("vote service: event window is required")
	}
	if resolver == nil {
		return nil, errors.New("vote service: resolver is required")
	}
	if records == nil {
		return nil, errors.New("vote service: record store is required")
	}
	if issuer == nil {
		return nil, errors.New("vote service: issuer is required")
	}
	if classifier == nil {
		return nil, errors.New("vote service: classifier is required")
	}
	if len(catalog) == 0 {
		return nil, errors.New("vote service: catalog is required")
	}
	s := &Service{
		apiKey:     apiKey,
		window:     window,
		resolver:   resolver,
		records:    records,
		issuer:     issuer,
		classifier: classifier,
		catalog:    catalog,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Authenticate runs the full pipeline for one request. On failure the
// returned error always carries one of the wire reason codes; no state
// is mutated on any rejection path.
func (s *Service) Authenticate(ctx context.Context, req AuthRequest) (AuthResult, error) {
	result, err := s.authenticate(ctx, req)
	if err != nil {
		reason := string(dErrors.CodeOf(err))
		s.observe(reason)
		s.emit(ctx, audit.Event{
			StationID: req.StationID,
			StudentID: result.StudentID,
			Action:    audit.ActionRejected,
			Reason:    reason,
		})
		return AuthResult{}, err
	}

	s.observe("success")
	if s.metrics != nil {
		s.metrics.ObserveCodeIssued(result.Kind.String())
	}
	s.emit(ctx, audit.Event{
		StationID: req.StationID,
		StudentID: result.StudentID,
		Action:    audit.ActionIssued,
		Reason:    result.Kind.String(),
	})
	s.logger.InfoContext(ctx, "auth code issued",
		slog.String("station", req.StationID),
		slog.String("kind", result.Kind.String()),
	)
	return result, nil
}

func (s *Service) authenticate(ctx context.Context, req AuthRequest) (AuthResult, error) {
	if !s.window.Open(s.now()) {
		return AuthResult{}, dErrors.New(dErrors.CodeServiceClosed, "event is not accepting authentications")
	}

	if req.APIKey == "" || req.Version == "" || req.StationID == "" || req.CardToken == "" || req.Credential == "" {
		return AuthResult{}, dErrors.New(dErrors.CodeParamsInvalid, "missing request fields")
	}
	if req.APIKey != s.apiKey {
		return AuthResult{}, dErrors.New(dErrors.CodeUnauthorized, "api key mismatch")
	}
	if _, err := id.ParseProtocolVersion(req.Version); err != nil {
		return AuthResult{}, err
	}

	studentID, revision, err := id.ParseCredential(req.Credential)
	if err != nil {
		s.logger.InfoContext(ctx, "malformed credential",
			slog.String("station", req.StationID),
			slog.String("uid", req.Credential),
		)
		return AuthResult{}, err
	}
	token, err := id.ParseCardToken(req.CardToken)
	if err != nil {
		return AuthResult{}, err
	}

	s.logger.InfoContext(ctx, "authenticate request",
		slog.String("station", req.StationID),
		slog.String("student_id", studentID.String()),
		slog.Int("revision", int(revision)),
	)

	info, err := s.resolve(ctx, token)
	if err != nil {
		return AuthResult{StudentID: studentID}, err
	}
	if info.ID != studentID {
		// The trusted resolver contradicts the presented credential.
		s.logger.InfoContext(ctx, "resolver returned different identity",
			slog.String("presented", studentID.String()),
			slog.String("resolved", info.ID.String()),
		)
		return AuthResult{StudentID: studentID}, dErrors.New(dErrors.CodeCardSuspicious, "resolved identity disagrees with credential")
	}

	// A voter with no record yet is simply a first-time attempt.
	if err := s.records.Check(ctx, studentID, revision); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return AuthResult{StudentID: studentID}, translateRecordErr(err)
	}

	kind, err := s.classifier.Classify(ctx, info)
	if err != nil {
		return AuthResult{StudentID: studentID}, err
	}

	code, err := s.issuer.Issue(ctx, studentID, revision, kind, s.now())
	if err != nil {
		if errors.Is(err, sentinel.ErrExhausted) {
			s.logger.InfoContext(ctx, "auth codes exhausted", slog.String("kind", kind.String()))
			return AuthResult{StudentID: studentID}, dErrors.Wrap(err, dErrors.CodeOutOfAuthCode, "no code left for kind")
		}
		return AuthResult{StudentID: studentID}, translateRecordErr(err)
	}

	return AuthResult{
		StudentID: studentID,
		Kind:      kind,
		KindName:  s.catalog.Name(kind),
		Code:      code.Code,
	}, nil
}

func (s *Service) resolve(ctx context.Context, token id.CardToken) (models.StudentInfo, error) {
	start := s.now()
	info, err := s.resolver.Resolve(ctx, token)
	elapsed := s.now().Sub(start)
	switch {
	case err == nil:
		s.observeResolver("ok", elapsed)
		return info, nil
	case errors.Is(err, aca.ErrCardUnknown):
		s.observeResolver("unknown", elapsed)
		return models.StudentInfo{}, dErrors.Wrap(err, dErrors.CodeCardInvalid, "card unknown")
	case errors.Is(err, aca.ErrBlacklisted):
		s.observeResolver("blacklisted", elapsed)
		return models.StudentInfo{}, dErrors.Wrap(err, dErrors.CodeCardSuspicious, "card blacklisted")
	default:
		s.observeResolver("error", elapsed)
		s.logger.ErrorContext(ctx, "resolver failure", slog.String("error", err.Error()))
		return models.StudentInfo{}, dErrors.Wrap(err, dErrors.CodeExternalError, "identity resolver failed")
	}
}

func translateRecordErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrRevisionMismatch):
		// The resolver vouched for the card, so a stale revision means
		// a superseded physical card is being presented.
		return dErrors.Wrap(err, dErrors.CodeCardSuspicious, "credential revision mismatch")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.Wrap(err, dErrors.CodeDuplicateEntry, "voter already authenticated")
	default:
		return fmt.Errorf("record check: %w", err)
	}
}

// Confirm records a station acknowledging delivery of an issued code.
func (s *Service) Confirm(ctx context.Context, stationID string, studentID id.StudentID) error {
	if stationID == "" {
		return dErrors.New(dErrors.CodeParamsInvalid, "station is required")
	}
	s.emit(ctx, audit.Event{
		StationID: stationID,
		StudentID: studentID,
		Action:    audit.ActionConfirmed,
	})
	return nil
}

// Report records a station side incident into the audit trail.
func (s *Service) Report(ctx context.Context, stationID, message string) error {
	if stationID == "" || message == "" {
		return dErrors.New(dErrors.CodeParamsInvalid, "station and message are required")
	}
	s.emit(ctx, audit.Event{
		StationID: stationID,
		Action:    audit.ActionReported,
		Reason:    message,
	})
	return nil
}

// Complete closes the event. Subsequent authentications are rejected
// with a service closed reason.
func (s *Service) Complete(ctx context.Context, stationID string) error {
	if stationID == "" {
		return dErrors.New(dErrors.CodeParamsInvalid, "station is required")
	}
	s.window.Close()
	s.logger.InfoContext(ctx, "event completed", slog.String("station", stationID))
	s.emit(ctx, audit.Event{
		StationID: stationID,
		Action:    audit.ActionCompleted,
	})
	return nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", slog.String("error", err.Error()))
	}
}

func (s *Service) observe(result string) {
	if s.metrics != nil {
		s.metrics.ObserveAuthentication(result)
	}
}

func (s *Service) observeResolver(outcome string, elapsed time.Duration) {
	if s.metrics != nil {
		s.metrics.ObserveResolverCall(outcome, elapsed)
	}
}
