package clean

import (
	"strings"

	"github.com/openprocure/procurement-pipeline/internal/codes"
	"github.com/openprocure/procurement-pipeline/internal/model"
)

// LotPlugin normalizes lots and their nested bids.
type LotPlugin struct {
	Numbers    []NumberFormat
	Dates      []string
	BuyerTypes *codes.MappingTable
	Activities *codes.MappingTable
}

// Clean implements Plugin.
func (p *LotPlugin) Clean(parsed *model.ParsedTender, out *model.CleanTender) error {
	for _, rawLot := range parsed.Lots {
		lot := model.CleanLot{
			Title:          strings.TrimSpace(rawLot.Title),
			EstimatedPrice: CleanPriceValue(rawLot.EstimatedPrice, p.Numbers),
		}
		if n, ok := ParseInt(rawLot.LotNumber, p.Numbers); ok {
			lot.LotNumber = &n
		}
		if t, ok := ParseDate(rawLot.AwardDate, p.Dates); ok {
			lot.AwardDate = &t
		}

		for _, rawBid := range rawLot.Bids {
			bid := model.CleanBid{
				Price:  CleanPriceValue(rawBid.Price, p.Numbers),
				Bidder: CleanBodyValue(rawBid.Bidder, p.BuyerTypes, p.Activities),
			}
			if v, ok := ParseBool(rawBid.IsWinning); ok {
				bid.IsWinning = &v
			}
			if bid != (model.CleanBid{}) {
				lot.Bids = append(lot.Bids, bid)
			}
		}

		out.Lots = append(out.Lots, lot)
	}
	return nil
}
