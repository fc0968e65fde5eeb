package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"socialflow/internal/adapter"
	"socialflow/internal/domain/account"
	"socialflow/internal/domain/job"
	"socialflow/internal/ingest"
	"socialflow/internal/repository"
	flow_errors "socialflow/pkg/errors"
	"socialflow/pkg/logger"

	"github.com/google/uuid"
)

// WebhookService is the ingress side of the pipeline: it authenticates a
// delivery against the account's webhook secret, normalizes the raw
// payload through the platform adapter, and feeds the events in.
type WebhookService struct {
	accounts repository.AccountRepository
	jobs     repository.JobRepository
	adapters *adapter.Registry
	pipeline *ingest.Pipeline
	log      *logger.Logger

	// archivePayloads gates the raw payload archive job; off when no
	// object store is configured.
	archivePayloads bool
}

func NewWebhookService(
	accounts repository.AccountRepository,
	jobs repository.JobRepository,
	adapters *adapter.Registry,
	pipeline *ingest.Pipeline,
	log *logger.Logger,
	archivePayloads bool,
) *WebhookService {
	return &WebhookService{
		accounts:        accounts,
		jobs:            jobs,
		adapters:        adapters,
		pipeline:        pipeline,
		log:             log,
		archivePayloads: archivePayloads,
	}
}

// GetAccount loads the target account for a delivery. Lookup is by bare
// id: webhook ingress has no authenticated workspace, the signature
// check is the authentication.
func (s *WebhookService) GetAccount(ctx context.Context, accountID uuid.UUID) (account.SocialAccount, error) {
	return s.accounts.GetByID(ctx, accountID)
}

// VerifySignature checks the delivery signature against the account's
// webhook secret. The expected format is "sha256=<hex hmac>" over the
// raw body; comparison is constant-time.
func (s *WebhookService) VerifySignature(acct account.SocialAccount, body []byte, signature string) error {
	if acct.WebhookSecret == "" {
		return flow_errors.ErrInvalidSignature
	}
	signature = strings.TrimPrefix(signature, "sha256=")
	provided, err := hex.DecodeString(signature)
	if err != nil {
		return flow_errors.ErrInvalidSignature
	}
	mac := hmac.New(sha256.New, []byte(acct.WebhookSecret))
	mac.Write(body)
	if !hmac.Equal(provided, mac.Sum(nil)) {
		return flow_errors.ErrInvalidSignature
	}
	return nil
}

// IngestResult summarizes one processed delivery.
type IngestResult struct {
	Received int `json:"received"`
	Created  int `json:"created"`
	Skipped  int `json:"skipped"`
}

// Ingest normalizes and persists a verified delivery. A payload the
// adapter cannot parse is logged and acknowledged with a zero result so
// the platform does not redeliver it forever; per-event failures skip
// the event and keep going.
func (s *WebhookService) Ingest(ctx context.Context, acct account.SocialAccount, body []byte) (IngestResult, error) {
	s.enqueuePayloadArchive(ctx, acct, body)

	a, err := s.adapters.Get(acct.Platform)
	if err != nil {
		return IngestResult{}, err
	}
	evs, err := a.Normalize(body)
	if err != nil {
		if errors.Is(err, flow_errors.ErrUnsupportedPayload) {
			s.log.Warnf("unsupported %s payload for account %s: %v", acct.Platform, acct.ID, err)
			return IngestResult{}, nil
		}
		return IngestResult{}, err
	}

	res := IngestResult{Received: len(evs)}
	for _, ev := range evs {
		_, created, err := s.pipeline.Ingest(ctx, acct, ev)
		if err != nil {
			s.log.Errorf("ingest of %s item %s failed: %v", acct.Platform, ev.PlatformItemID, err)
			res.Skipped++
			continue
		}
		if created {
			res.Created++
		} else {
			res.Skipped++
		}
	}
	return res, nil
}

type payloadArchiveJob struct {
	AccountID uuid.UUID `json:"account_id"`
	Platform  string    `json:"platform"`
	Body      []byte    `json:"body"`
}

func (s *WebhookService) enqueuePayloadArchive(ctx context.Context, acct account.SocialAccount, body []byte) {
	if !s.archivePayloads {
		return
	}
	payload, err := json.Marshal(payloadArchiveJob{
		AccountID: acct.ID,
		Platform:  string(acct.Platform),
		Body:      body,
	})
	if err != nil {
		s.log.Errorf("marshal payload archive job failed: %v", err)
		return
	}
	if err := s.jobs.Enqueue(ctx, &job.Job{
		JobType:     job.TypePayloadArchive,
		WorkspaceID: acct.WorkspaceID,
		AggregateID: acct.ID.String(),
		Payload:     payload,
	}); err != nil {
		s.log.Errorf("enqueue payload archive for account %s failed: %v", acct.ID, err)
	}
}
