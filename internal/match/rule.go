package match

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/openprocure/procurement-pipeline/internal/identity"
	"github.com/openprocure/procurement-pipeline/internal/model"
	"github.com/openprocure/procurement-pipeline/internal/store"
)

// Rule is one matching strategy. Rules run in registration order before
// the fingerprint lookup; the first rule to return a non-empty group id
// wins. A rule that finds nothing returns ("", nil).
type Rule interface {
	Name() string
	Match(ctx context.Context, st store.Store, rec *model.CleanRecord) (string, error)
}

// PublicationRule links tenders across source systems. A notice often
// carries references to its publications in other systems (a national
// journal entry referencing its TED counterpart). If a referenced
// publication resolves to an already known group, the record joins that
// group instead of opening a new one.
type PublicationRule struct{}

// Name implements Rule.
func (PublicationRule) Name() string { return "cross_source_publication" }

// Match implements Rule. Two lookups per publication reference: the direct
// fingerprint of the referenced (source, id) pair, then the publication
// index of previously matched records.
func (PublicationRule) Match(ctx context.Context, st store.Store, rec *model.CleanRecord) (string, error) {
	if rec.Kind != model.KindTender || rec.Tender == nil {
		return "", nil
	}

	for _, pub := range rec.Tender.Publications {
		if pub.Source == "" || pub.SourceID == "" {
			continue
		}
		// A same-source reference is the record's own fingerprint.
		if pub.Source == rec.Source && pub.SourceID == rec.Tender.SourceID {
			continue
		}

		ref := &model.CleanTender{SourceID: pub.SourceID}
		fp, err := identity.Tender(pub.Source, ref)
		if err == nil && fp.Stable {
			groupID, err := st.GroupByFingerprint(ctx, model.KindTender, fp.Digest)
			if err != nil {
				return "", eris.Wrap(err, "match: publication rule fingerprint lookup")
			}
			if groupID != "" {
				return groupID, nil
			}
		}

		groupID, err := st.GroupByPublication(ctx, model.KindTender, pub.Source, pub.SourceID)
		if err != nil {
			return "", eris.Wrap(err, "match: publication rule index lookup")
		}
		if groupID != "" {
			return groupID, nil
		}
	}
	return "", nil
}
