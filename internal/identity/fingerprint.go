// Package identity computes deterministic entity fingerprints used for
// deduplication. The digest is content-addressed, not adversarial: sha256
// over a canonical byte string.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/openprocure/procurement-pipeline/internal/clean"
	"github.com/openprocure/procurement-pipeline/internal/model"
)

// Fingerprint is the identity of one real-world entity as seen from one
// record. Stable is false when the digest was derived from a random
// fallback and must not be treated as a reusable identity.
type Fingerprint struct {
	Digest string
	Stable bool
}

// UnmatchableError reports a record whose identity cannot be computed even
// after fallbacks. Such records are excluded from grouping and reported
// for administrative review.
type UnmatchableError struct {
	Kind   model.Kind
	Reason string
}

func (e *UnmatchableError) Error() string {
	return fmt.Sprintf("identity: unmatchable %s: %s", e.Kind, e.Reason)
}

// IsUnmatchable reports whether err wraps an UnmatchableError.
func IsUnmatchable(err error) bool {
	var ue *UnmatchableError
	return errors.As(err, &ue)
}

// Body fingerprints a clean body. A legal identifier plus country is the
// strong identity; without one the normalized name plus country is used,
// which is a weaker uniqueness guarantee.
func Body(b *model.CleanBody) (Fingerprint, error) {
	if b == nil {
		return Fingerprint{}, &UnmatchableError{Kind: model.KindBody, Reason: "nil body"}
	}

	if id := clean.NormalizeLegalID(b.LegalID); id != "" {
		return digest("body:legal:" + id + "|" + b.Country), nil
	}

	name := b.NormalizedName
	if name == "" {
		name = clean.NormalizeName(b.Name)
	}
	if name != "" {
		return digest("body:name:" + name + "|" + b.Country), nil
	}

	return Fingerprint{}, &UnmatchableError{
		Kind:   model.KindBody,
		Reason: "body has neither legal id nor name",
	}
}

// Tender fingerprints a clean tender by (source system, source-assigned
// id). When the source omitted its id, a random value is digested instead:
// the fingerprint is marked unstable and two cleanings of the same notice
// will not collide. This mirrors the upstream behavior for sources that
// never assign ids; it is a known limitation, not a stable identity.
func Tender(source string, t *model.CleanTender) (Fingerprint, error) {
	if t == nil {
		return Fingerprint{}, &UnmatchableError{Kind: model.KindTender, Reason: "nil tender"}
	}
	if source == "" {
		return Fingerprint{}, &UnmatchableError{Kind: model.KindTender, Reason: "missing source system"}
	}

	if id := strings.TrimSpace(t.SourceID); id != "" {
		return digest("tender:" + source + ":" + id), nil
	}

	fp := digest("tender:random:" + uuid.NewString())
	fp.Stable = false
	return fp, nil
}

// Record fingerprints a clean record envelope according to its kind.
func Record(rec *model.CleanRecord) (Fingerprint, error) {
	switch rec.Kind {
	case model.KindTender:
		return Tender(rec.Source, rec.Tender)
	case model.KindBody:
		return Body(rec.Body)
	default:
		return Fingerprint{}, &UnmatchableError{Kind: rec.Kind, Reason: "unknown record kind"}
	}
}

func digest(canonical string) Fingerprint {
	sum := sha256.Sum256([]byte(canonical))
	return Fingerprint{Digest: hex.EncodeToString(sum[:]), Stable: true}
}
