package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openprocure/procurement-pipeline/internal/model"
)

func TestBodyFingerprintPrefersLegalID(t *testing.T) {
	withLegal := &model.CleanBody{
		Name:           "Mairie de Lyon",
		NormalizedName: "MAIRIE DE LYON",
		LegalID:        "213 806 901",
		Country:        "FR",
	}

	fp, err := Body(withLegal)
	require.NoError(t, err)
	assert.True(t, fp.Stable)

	// Formatting variants of the same register entry collide.
	variant := &model.CleanBody{LegalID: "213-806-901", Country: "FR"}
	fp2, err := Body(variant)
	require.NoError(t, err)
	assert.Equal(t, fp.Digest, fp2.Digest)

	// A different name under the same legal id does not matter.
	renamed := &model.CleanBody{
		Name:    "Ville de Lyon",
		LegalID: "21380690 1",
		Country: "FR",
	}
	fp3, err := Body(renamed)
	require.NoError(t, err)
	assert.Equal(t, fp.Digest, fp3.Digest)
}

func TestBodyFingerprintNameFallback(t *testing.T) {
	a := &model.CleanBody{NormalizedName: "MAIRIE DE LYON", Country: "FR"}
	b := &model.CleanBody{Name: "Mairie de Lyon", Country: "FR"}

	fpA, err := Body(a)
	require.NoError(t, err)
	fpB, err := Body(b)
	require.NoError(t, err)
	assert.Equal(t, fpA.Digest, fpB.Digest)

	// Same name in a different country is a different entity.
	abroad := &model.CleanBody{NormalizedName: "MAIRIE DE LYON", Country: "BE"}
	fpC, err := Body(abroad)
	require.NoError(t, err)
	assert.NotEqual(t, fpA.Digest, fpC.Digest)
}

func TestBodyFingerprintUnmatchable(t *testing.T) {
	_, err := Body(&model.CleanBody{Country: "FR"})
	require.Error(t, err)
	assert.True(t, IsUnmatchable(err))

	_, err = Body(nil)
	require.Error(t, err)
	assert.True(t, IsUnmatchable(err))
}

func TestTenderFingerprint(t *testing.T) {
	fp, err := Tender("fr", &model.CleanTender{SourceID: "2026-001"})
	require.NoError(t, err)
	assert.True(t, fp.Stable)

	same, err := Tender("fr", &model.CleanTender{SourceID: "2026-001"})
	require.NoError(t, err)
	assert.Equal(t, fp.Digest, same.Digest)

	// Same source id on another system is another tender.
	other, err := Tender("pt", &model.CleanTender{SourceID: "2026-001"})
	require.NoError(t, err)
	assert.NotEqual(t, fp.Digest, other.Digest)
}

func TestTenderFingerprintRandomFallback(t *testing.T) {
	a, err := Tender("fr", &model.CleanTender{})
	require.NoError(t, err)
	b, err := Tender("fr", &model.CleanTender{})
	require.NoError(t, err)

	assert.False(t, a.Stable)
	assert.False(t, b.Stable)
	// Two cleanings of an id-less notice never collide.
	assert.NotEqual(t, a.Digest, b.Digest)
}

func TestTenderFingerprintMissingSource(t *testing.T) {
	_, err := Tender("", &model.CleanTender{SourceID: "x"})
	require.Error(t, err)
	assert.True(t, IsUnmatchable(err))
}

func TestRecordDispatch(t *testing.T) {
	tender := &model.CleanRecord{
		Kind:   model.KindTender,
		Source: "fr",
		Tender: &model.CleanTender{SourceID: "1"},
	}
	fp, err := Record(tender)
	require.NoError(t, err)
	assert.True(t, fp.Stable)

	body := &model.CleanRecord{
		Kind: model.KindBody,
		Body: &model.CleanBody{LegalID: "1", Country: "FR"},
	}
	fp, err = Record(body)
	require.NoError(t, err)
	assert.True(t, fp.Stable)

	_, err = Record(&model.CleanRecord{Kind: "unknown"})
	assert.True(t, IsUnmatchable(err))
}
