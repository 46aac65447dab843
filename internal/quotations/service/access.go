package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"cotizador_backend/internal/events"
	"cotizador_backend/internal/jobs"
	"cotizador_backend/internal/quotations/repository"
	"cotizador_backend/internal/quotations/transport"
	"cotizador_backend/platform/apperr"
	"cotizador_backend/platform/password"

	"github.com/google/uuid"
)

const defaultCodeDuration = "15d"

// codeDurations maps the accepted duration tokens to their length. The
// indefinite token is handled separately: it yields no expiry at all.
var codeDurations = map[string]time.Duration{
	"7d":  7 * 24 * time.Hour,
	"15d": 15 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
}

// codeWords seeds the memorable part of generated access codes.
var codeWords = []string{
	"amber", "birch", "cedar", "delta", "ember",
	"fjord", "grove", "haven", "indigo", "juniper",
	"koral", "lumen", "mango", "nectar", "onyx",
	"pearl", "quartz", "raven", "sierra", "topaz",
}

var codePunctuation = []byte{'!', '#', '$', '%', '&', '*', '+', '-', '?', '@'}

// MakePublic opens the quotation without a code. Calling it on an already
// public quotation is a no-op that still succeeds.
func (s *Service) MakePublic(ctx context.Context, actorID uuid.UUID, id uuid.UUID) (*transport.QuotationResponse, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetAccess(ctx, id, string(transport.AccessModePublic), nil, nil, s.now()); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.QuotationAccessChanged{
		BaseEvent:   events.NewBaseEvent(),
		QuotationID: q.ID,
		Folio:       q.Folio,
		AccessMode:  string(transport.AccessModePublic),
		ActorID:     actorID,
	})

	q.AccessMode = string(transport.AccessModePublic)
	q.AccessCodeHash = nil
	q.CodeExpiresAt = nil
	return toQuotationResponse(q), nil
}

// ProtectWithCode generates a fresh access code and switches the quotation to
// code mode. The plaintext is returned exactly once; only its bcrypt hash is
// stored. Rotating an existing code invalidates the old one immediately, so
// the caller has to confirm the rotation explicitly.
func (s *Service) ProtectWithCode(ctx context.Context, actorID uuid.UUID, id uuid.UUID, req transport.ProtectWithCodeRequest) (*transport.AccessCodeIssued, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if q.AccessMode == string(transport.AccessModeCode) && !req.ConfirmRotation {
		return nil, apperr.Validation("rotating the access code invalidates the current one; set confirmRotation to proceed")
	}

	now := s.now()
	expiresAt := resolveCodeExpiry(req.Duration, now)

	plain, err := generateAccessCode(now.Year())
	if err != nil {
		return nil, fmt.Errorf("generate access code: %w", err)
	}

	hash, err := password.Hash(plain, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash access code: %w", err)
	}

	if err := s.repo.SetAccess(ctx, id, string(transport.AccessModeCode), &hash, expiresAt, now); err != nil {
		return nil, err
	}

	if s.scheduler != nil && expiresAt != nil {
		// The payload pins this generation's expiry: if the code is rotated
		// before the job fires, the handler sees a mismatch and does nothing.
		err := s.scheduler.ScheduleAccessCodeExpiry(ctx, jobs.AccessCodeExpiredPayload{
			QuotationID: id.String(),
			ExpiresAt:   *expiresAt,
		}, *expiresAt)
		if err != nil {
			return nil, fmt.Errorf("schedule code expiry: %w", err)
		}
	}

	s.bus.Publish(ctx, events.QuotationAccessChanged{
		BaseEvent:   events.NewBaseEvent(),
		QuotationID: q.ID,
		Folio:       q.Folio,
		AccessMode:  string(transport.AccessModeCode),
		ExpiresAt:   expiresAt,
		ActorID:     actorID,
	})

	return &transport.AccessCodeIssued{
		PlainCode: plain,
		ExpiresAt: expiresAt,
	}, nil
}

// GetPublicByFolio serves the viewer-facing projection. Public quotations
// open without a code; code-protected ones require a live, matching code.
// Failed verifications count toward the per-folio lockout.
func (s *Service) GetPublicByFolio(ctx context.Context, folio, code, clientIP string) (*transport.PublicQuotationResponse, error) {
	if s.lockout != nil {
		if err := s.lockout.Check(ctx, folio, clientIP); err != nil {
			return nil, err
		}
	}

	q, err := s.repo.GetByFolio(ctx, folio)
	if err != nil {
		return nil, err
	}

	if err := verifyAccess(q, code, s.now()); err != nil {
		if s.log != nil {
			s.log.AccessCheck(folio, false, err.Error())
		}
		if s.lockout != nil && apperr.GetKind(err) == apperr.KindUnauthorized && code != "" {
			s.lockout.RegisterFailure(ctx, folio, clientIP)
		}
		return nil, err
	}

	if s.log != nil {
		s.log.AccessCheck(folio, true, "")
	}
	if s.lockout != nil {
		s.lockout.Reset(ctx, folio, clientIP)
	}

	paid, err := s.repo.SumPayments(ctx, q.ID)
	if err != nil {
		return nil, err
	}

	return &transport.PublicQuotationResponse{
		Folio:      q.Folio,
		Title:      q.Title,
		Status:     transport.QuotationStatus(q.Status),
		TotalCents: q.TotalCents,
		Summary:    buildPaymentSummary(q.TotalCents, paid),
		CreatedAt:  q.CreatedAt,
	}, nil
}

// verifyAccess decides whether the presented code opens the quotation at the
// given instant. Expiry is checked before the hash, so a code presented at or
// after its expiry instant is rejected even when it matches.
func verifyAccess(q *repository.Quotation, code string, now time.Time) error {
	if q.AccessMode != string(transport.AccessModeCode) {
		return nil
	}

	if q.CodeExpiresAt != nil && !now.Before(*q.CodeExpiresAt) {
		return apperr.Unauthorized("access code has expired")
	}
	if code == "" {
		return apperr.Unauthorized("access code required")
	}
	if q.AccessCodeHash == nil || !password.Verify(*q.AccessCodeHash, code) {
		return apperr.Unauthorized("invalid access code")
	}
	return nil
}

// resolveCodeExpiry turns a duration token into an absolute expiry.
// Indefinite codes have no expiry; an empty or unrecognized token takes the
// 15-day default.
func resolveCodeExpiry(duration string, now time.Time) *time.Time {
	if duration == "indefinite" {
		return nil
	}

	d, ok := codeDurations[duration]
	if !ok {
		d = codeDurations[defaultCodeDuration]
	}
	expiresAt := now.Add(d)
	return &expiresAt
}

// generateAccessCode builds a memorable code of the form word + year +
// punctuation + 4 hex chars, e.g. "cedar2026#a3f1". All random choices come
// from crypto/rand.
func generateAccessCode(year int) (string, error) {
	wordIdx, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeWords))))
	if err != nil {
		return "", err
	}
	punctIdx, err := rand.Int(rand.Reader, big.NewInt(int64(len(codePunctuation))))
	if err != nil {
		return "", err
	}

	suffix := make([]byte, 2)
	if _, err := rand.Read(suffix); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%d%c%s",
		codeWords[wordIdx.Int64()],
		year,
		codePunctuation[punctIdx.Int64()],
		hex.EncodeToString(suffix),
	), nil
}
