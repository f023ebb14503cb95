package master

import (
	"sort"
	"strconv"

	"github.com/openprocure/procurement-pipeline/internal/model"
)

// Field merge is first-non-absent over the priority-ordered member list.
// Collections are unioned by sub-identity instead, so a low-priority
// source can still contribute a lot or publication the preferred source
// lacks.

func mergeTenders(members []model.MatchedRecord) *model.CleanTender {
	out := &model.CleanTender{}
	for _, m := range members {
		t := m.Tender
		if t == nil {
			continue
		}
		if out.SourceID == "" {
			out.SourceID = t.SourceID
		}
		if out.Title == "" {
			out.Title = t.Title
		}
		if out.Description == "" {
			out.Description = t.Description
		}
		if out.ProcedureType == "" {
			out.ProcedureType = t.ProcedureType
		}
		if out.SupplyType == "" {
			out.SupplyType = t.SupplyType
		}
		if out.SelectionMethod == "" {
			out.SelectionMethod = t.SelectionMethod
		}
		if out.IsFrameworkAgreement == nil {
			out.IsFrameworkAgreement = t.IsFrameworkAgreement
		}
		if out.AreVariantsAccepted == nil {
			out.AreVariantsAccepted = t.AreVariantsAccepted
		}
		if out.PublicationDate == nil {
			out.PublicationDate = t.PublicationDate
		}
		if out.AwardDecisionDate == nil {
			out.AwardDecisionDate = t.AwardDecisionDate
		}
		if out.BidDeadline == nil {
			out.BidDeadline = t.BidDeadline
		}
		if out.EstimatedPrice == nil {
			out.EstimatedPrice = t.EstimatedPrice
		}
		if out.FinalPrice == nil {
			out.FinalPrice = t.FinalPrice
		}
		if out.Buyer == nil {
			out.Buyer = mergeBodyInto(nil, t.Buyer)
		} else {
			out.Buyer = mergeBodyInto(out.Buyer, t.Buyer)
		}

		out.Lots = unionLots(out.Lots, t.Lots)
		out.Publications = unionPublications(out.Publications, t.Publications)
		out.AwardCriteria = unionCriteria(out.AwardCriteria, t.AwardCriteria)
	}
	return out
}

func mergeBodies(members []model.MatchedRecord) *model.CleanBody {
	var out *model.CleanBody
	for _, m := range members {
		out = mergeBodyInto(out, m.Body)
	}
	if out == nil {
		out = &model.CleanBody{}
	}
	return out
}

// mergeBodyInto fills absent fields of dst from src. A nil dst starts
// from a copy of src.
func mergeBodyInto(dst, src *model.CleanBody) *model.CleanBody {
	if src == nil {
		return dst
	}
	if dst == nil {
		cp := *src
		return &cp
	}
	if dst.Name == "" {
		dst.Name = src.Name
	}
	if dst.NormalizedName == "" {
		dst.NormalizedName = src.NormalizedName
	}
	if dst.LegalID == "" {
		dst.LegalID = src.LegalID
	}
	if dst.BuyerType == "" {
		dst.BuyerType = src.BuyerType
	}
	if dst.MainActivity == "" {
		dst.MainActivity = src.MainActivity
	}
	if dst.Email == "" {
		dst.Email = src.Email
	}
	if dst.Phone == "" {
		dst.Phone = src.Phone
	}
	if dst.Street == "" {
		dst.Street = src.Street
	}
	if dst.City == "" {
		dst.City = src.City
	}
	if dst.Postcode == "" {
		dst.Postcode = src.Postcode
	}
	if dst.Country == "" {
		dst.Country = src.Country
	}
	return dst
}

// unionLots merges incoming lots into existing by lot number, falling
// back to title when the number is absent. Bids of matching lots are
// concatenated; the caller's ordering keeps the result deterministic.
func unionLots(existing, incoming []model.CleanLot) []model.CleanLot {
	for _, lot := range incoming {
		idx := -1
		for i, have := range existing {
			if lotKey(have) == lotKey(lot) {
				idx = i
				break
			}
		}
		if idx < 0 {
			existing = append(existing, lot)
			continue
		}
		have := &existing[idx]
		if have.Title == "" {
			have.Title = lot.Title
		}
		if have.EstimatedPrice == nil {
			have.EstimatedPrice = lot.EstimatedPrice
		}
		if have.AwardDate == nil {
			have.AwardDate = lot.AwardDate
		}
		have.Bids = unionBids(have.Bids, lot.Bids)
	}
	return existing
}

func lotKey(lot model.CleanLot) string {
	if lot.LotNumber != nil {
		return "n:" + strconv.Itoa(*lot.LotNumber)
	}
	return "t:" + lot.Title
}

func unionBids(existing, incoming []model.CleanBid) []model.CleanBid {
	for _, bid := range incoming {
		found := false
		for _, have := range existing {
			if bidKey(have) == bidKey(bid) {
				found = true
				break
			}
		}
		if !found {
			existing = append(existing, bid)
		}
	}
	return existing
}

func bidKey(bid model.CleanBid) string {
	if bid.Bidder == nil {
		return ""
	}
	if bid.Bidder.LegalID != "" {
		return "l:" + bid.Bidder.LegalID
	}
	return "n:" + bid.Bidder.NormalizedName
}

func unionPublications(existing, incoming []model.CleanPublication) []model.CleanPublication {
	for _, pub := range incoming {
		found := false
		for _, have := range existing {
			if have.Source == pub.Source && have.SourceID == pub.SourceID {
				found = true
				break
			}
		}
		if !found {
			existing = append(existing, pub)
		}
	}
	return existing
}

func unionCriteria(existing, incoming []model.CleanAwardCriterion) []model.CleanAwardCriterion {
	for _, c := range incoming {
		found := false
		for _, have := range existing {
			if have.Name == c.Name {
				found = true
				break
			}
		}
		if !found {
			existing = append(existing, c)
		}
	}
	return existing
}

// sortLots orders merged lots by number then title so rebuilds of the
// same member set are byte-identical.
func sortLots(lots []model.CleanLot) {
	sort.SliceStable(lots, func(i, j int) bool {
		return lotKey(lots[i]) < lotKey(lots[j])
	})
}

func sortPublications(pubs []model.CleanPublication) {
	sort.SliceStable(pubs, func(i, j int) bool {
		if pubs[i].Source != pubs[j].Source {
			return pubs[i].Source < pubs[j].Source
		}
		return pubs[i].SourceID < pubs[j].SourceID
	})
}

func sortCriteria(crit []model.CleanAwardCriterion) {
	sort.SliceStable(crit, func(i, j int) bool {
		return crit[i].Name < crit[j].Name
	})
}

// memberLess orders group members for merging: source priority first
// (higher wins), then newer publication, then record id as the final
// deterministic tie break.
func memberLess(priorities map[string]int, a, b model.MatchedRecord) bool {
	pa, pb := priorities[a.Source], priorities[b.Source]
	if pa != pb {
		return pa > pb
	}
	at, bt := a.PublishedAt, b.PublishedAt
	if !at.Equal(bt) {
		return at.After(bt)
	}
	return a.ID < b.ID
}
