package clean

import (
	"regexp"
	"strings"
)

// legalSuffixes lists legal-form suffixes stripped during body name
// normalization, covering the company forms seen across source countries.
var legalSuffixes = []string{
	" LLC", " INC", " INC.", " INCORPORATED",
	" CORP", " CORP.", " CORPORATION",
	" LTD", " LTD.", " LIMITED",
	" PLC", " P.L.C.",
	" GMBH", " G.M.B.H.",
	" AG", " A.G.",
	" SA", " S.A.", " S.A",
	" SAS", " S.A.S.",
	" SARL", " S.A.R.L.",
	" SRL", " S.R.L.",
	" SRO", " S.R.O.", " SPOL. S R.O.",
	" AS", " A.S.", " A/S",
	" OY", " AB", " BV", " B.V.", " NV", " N.V.",
	" SP. Z O.O.", " SP Z OO",
	" ZRT", " KFT", " DOO", " D.O.O.",
}

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

// NormalizeName standardizes a body name for identity and matching:
// uppercase, legal-form suffix stripped, punctuation removed, whitespace
// collapsed.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	name = strings.ToUpper(name)

	for _, suffix := range legalSuffixes {
		if strings.HasSuffix(name, suffix) {
			name = strings.TrimSuffix(name, suffix)
			break
		}
	}

	name = strings.NewReplacer(
		",", "",
		".", "",
		"'", "",
		"\"", "",
		"&", "AND",
		"-", " ",
	).Replace(name)

	name = multiSpaceRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// NormalizeLegalID canonicalizes an organization identifier: uppercase with
// spaces, dashes and slashes removed, so that "123-456/78" and "12345678"
// style variants of one register entry compare equal.
func NormalizeLegalID(id string) string {
	id = strings.ToUpper(strings.TrimSpace(id))
	return strings.NewReplacer(" ", "", "-", "", "/", "", ".", "").Replace(id)
}
