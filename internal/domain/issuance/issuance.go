package issuance

import (
	"context"
	"errors"
	"time"
)

var ErrIssuanceNotFound = errors.New("issuance record not found")

// IssuanceRecord marks a card as issued. Its unique card ID is the only
// serialization point for issuance across processes.
type IssuanceRecord struct {
	ID          uint
	CardID      uint
	IssuedAt    time.Time
	ArtifactRef *string
}

// Result is what IssueIfNeeded reports to its caller.
type Result struct {
	AlreadyIssued bool
	ArtifactRef   string
}

func Issued(artifactRef string) Result {
	return Result{ArtifactRef: artifactRef}
}

func AlreadyIssued() Result {
	return Result{AlreadyIssued: true}
}

type IssuanceRepository interface {
	// Claim inserts the issuance record for a card. It returns false when a
	// record already exists; only the caller that gets true may issue. A claim
	// with no artifact older than lease is taken over, since its owner died
	// before finishing or releasing it. A zero lease never takes over.
	Claim(ctx context.Context, cardID uint, issuedAt time.Time, lease time.Duration) (bool, error)
	SetArtifactRef(ctx context.Context, cardID uint, ref string) error
	// Release removes a claim whose artifact could not be produced so a later
	// pass can retry.
	Release(ctx context.Context, cardID uint) error
	GetByCardID(ctx context.Context, cardID uint) (*IssuanceRecord, error)
}
