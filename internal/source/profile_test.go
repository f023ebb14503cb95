package source

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openprocure/procurement-pipeline/internal/clean"
	"github.com/openprocure/procurement-pipeline/internal/codes"
	"github.com/openprocure/procurement-pipeline/internal/model"
)

func TestFrenchTenderEndToEnd(t *testing.T) {
	cleaner := French().TenderCleaner()
	ctx := context.Background()

	parsed := &model.ParsedTender{
		ID:          "notice-1",
		Source:      "fr",
		PublishedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),

		SourceID:             "2026-001",
		Title:                "  Travaux de voirie  ",
		ProcedureType:        "Appel d'offres ouvert",
		SupplyType:           "travaux",
		IsFrameworkAgreement: "non",
		AreVariantsAccepted:  "oui",
		PublicationDate:      "05/01/2026",
		EstimatedPrice: &model.ParsedPrice{
			NetAmount: "137 640",
			Currency:  "eur",
		},
		Buyer: &model.ParsedBody{
			Name:      "Mairie de Lyon",
			BuyerType: "commune",
			Country:   "FR",
		},
		Lots: []model.ParsedLot{
			{
				LotNumber: "1",
				Title:     "Lot unique",
				Bids: []model.ParsedBid{
					{
						IsWinning: "oui",
						Price:     &model.ParsedPrice{NetAmount: "99 000,50", Currency: "EUR"},
						Bidder:    &model.ParsedBody{Name: "Colas SA"},
					},
				},
			},
		},
		Publications: []model.ParsedPublication{
			{Source: "ted", SourceID: "TED-1", SourceFormType: "Avis de marché"},
		},
		AwardCriteria: []model.ParsedAwardCriterion{
			{Name: "Prix", Weight: "60 %", IsPriceRelated: "true"},
			{Name: "Valeur technique", Weight: "40"},
		},
	}

	rec, err := cleaner.Clean(ctx, parsed)
	require.NoError(t, err)
	require.NotNil(t, rec.Tender)
	tender := rec.Tender

	assert.Equal(t, "fr/3", rec.CleanerVersion)
	assert.Equal(t, "Travaux de voirie", tender.Title)
	assert.Equal(t, codes.ProcedureOpen, tender.ProcedureType)
	assert.Equal(t, codes.SupplyWorks, tender.SupplyType)

	require.NotNil(t, tender.IsFrameworkAgreement)
	assert.False(t, *tender.IsFrameworkAgreement)
	require.NotNil(t, tender.AreVariantsAccepted)
	assert.True(t, *tender.AreVariantsAccepted)

	// Day-first date.
	require.NotNil(t, tender.PublicationDate)
	assert.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), *tender.PublicationDate)

	// Space-grouped amount and lowercase currency.
	require.NotNil(t, tender.EstimatedPrice)
	require.NotNil(t, tender.EstimatedPrice.NetAmount)
	assert.Equal(t, 137640.0, *tender.EstimatedPrice.NetAmount)
	assert.Equal(t, "EUR", tender.EstimatedPrice.Currency)

	require.NotNil(t, tender.Buyer)
	assert.Equal(t, codes.BuyerRegionalAuthority, tender.Buyer.BuyerType)
	assert.Equal(t, "MAIRIE DE LYON", tender.Buyer.NormalizedName)
	assert.Equal(t, "FR", tender.Buyer.Country)

	require.Len(t, tender.Lots, 1)
	lot := tender.Lots[0]
	require.NotNil(t, lot.LotNumber)
	assert.Equal(t, 1, *lot.LotNumber)
	require.Len(t, lot.Bids, 1)
	require.NotNil(t, lot.Bids[0].IsWinning)
	assert.True(t, *lot.Bids[0].IsWinning)
	require.NotNil(t, lot.Bids[0].Price)
	require.NotNil(t, lot.Bids[0].Price.NetAmount)
	assert.Equal(t, 99000.50, *lot.Bids[0].Price.NetAmount)

	require.Len(t, tender.Publications, 1)
	assert.Equal(t, codes.FormContractNotice, tender.Publications[0].FormType)

	require.Len(t, tender.AwardCriteria, 2)
	require.NotNil(t, tender.AwardCriteria[0].Weight)
	assert.Equal(t, 60, *tender.AwardCriteria[0].Weight)
	require.NotNil(t, tender.AwardCriteria[1].Weight)
	assert.Equal(t, 40, *tender.AwardCriteria[1].Weight)
}

func TestFrenchOtherOverride(t *testing.T) {
	cleaner := French().TenderCleaner()

	rec, err := cleaner.Clean(context.Background(), &model.ParsedTender{
		ID:              "notice-2",
		Source:          "fr",
		Title:           "Marché divers",
		ProcedureType:   "Autre",
		SupplyType:      "autre",
		PublicationDate: "2026-01-05",
		Buyer:           &model.ParsedBody{Name: "Ville de Pau"},
	})
	require.NoError(t, err)
	assert.Equal(t, codes.ProcedureOther, rec.Tender.ProcedureType)
	assert.Equal(t, codes.SupplyOther, rec.Tender.SupplyType)
}

func TestFrenchRequiresPublicationDate(t *testing.T) {
	cleaner := French().TenderCleaner()

	_, err := cleaner.Clean(context.Background(), &model.ParsedTender{
		ID:              "notice-3",
		Source:          "fr",
		PublicationDate: "sur demande",
		Buyer:           &model.ParsedBody{Name: "Ville de Pau"},
	})
	require.Error(t, err)
	assert.True(t, clean.IsValidation(err))
}

func TestFrenchRequiresBuyerName(t *testing.T) {
	cleaner := French().TenderCleaner()

	_, err := cleaner.Clean(context.Background(), &model.ParsedTender{
		ID:              "notice-4",
		Source:          "fr",
		PublicationDate: "05/01/2026",
		Buyer:           &model.ParsedBody{Email: "contact@ville.example"},
	})
	require.Error(t, err)
	assert.True(t, clean.IsValidation(err))
}

func TestPortugueseTender(t *testing.T) {
	cleaner := Portuguese().TenderCleaner()

	rec, err := cleaner.Clean(context.Background(), &model.ParsedTender{
		ID:                   "contrato-1",
		Source:               "pt",
		Title:                "Empreitada municipal",
		ProcedureType:        "Concurso público",
		SupplyType:           "obras",
		IsFrameworkAgreement: "sim",
		AreVariantsAccepted:  "não",
		PublicationDate:      "31-12-2025",
		EstimatedPrice: &model.ParsedPrice{
			NetAmount: "1.234.567,89",
			Currency:  "EUR",
		},
	})
	require.NoError(t, err)
	tender := rec.Tender

	assert.Equal(t, "pt/2", rec.CleanerVersion)
	assert.Equal(t, codes.ProcedureOpen, tender.ProcedureType)
	assert.Equal(t, codes.SupplyWorks, tender.SupplyType)
	require.NotNil(t, tender.IsFrameworkAgreement)
	assert.True(t, *tender.IsFrameworkAgreement)
	require.NotNil(t, tender.AreVariantsAccepted)
	assert.False(t, *tender.AreVariantsAccepted)
	require.NotNil(t, tender.PublicationDate)
	assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), *tender.PublicationDate)
	require.NotNil(t, tender.EstimatedPrice)
	require.NotNil(t, tender.EstimatedPrice.NetAmount)
	assert.Equal(t, 1234567.89, *tender.EstimatedPrice.NetAmount)
}

func TestBodyCleanerRequiresIdentity(t *testing.T) {
	cleaner := Generic().BodyCleaner()

	_, err := cleaner.Clean(context.Background(), &model.ParsedBody{
		ID:     "body-1",
		Source: "generic",
		City:   "Lisboa",
	})
	require.Error(t, err)
	assert.True(t, clean.IsValidation(err))

	rec, err := cleaner.Clean(context.Background(), &model.ParsedBody{
		ID:      "body-2",
		Source:  "generic",
		LegalID: "PT-500100200",
	})
	require.NoError(t, err)
	require.NotNil(t, rec.Body)
	assert.NotEmpty(t, rec.Body.LegalID)
}

func TestRegistry(t *testing.T) {
	reg := Default()

	assert.Equal(t, []string{"fr", "generic", "pt"}, reg.Names())

	fr, err := reg.Get("fr")
	require.NoError(t, err)
	assert.Equal(t, 5, fr.Priority)

	_, err = reg.Get("nope")
	require.Error(t, err)

	priorities := reg.Priorities()
	assert.Equal(t, 5, priorities["fr"])
	assert.Equal(t, 5, priorities["pt"])
	assert.Equal(t, 1, priorities["generic"])
}

func TestProfileVersionTags(t *testing.T) {
	for _, p := range []*Profile{French(), Portuguese(), Generic()} {
		want := p.Name + "/" + p.Version
		assert.Equal(t, want, p.TenderCleaner().Engine.Version())
		assert.Equal(t, want, p.BodyCleaner().Engine.Version())
	}
}
