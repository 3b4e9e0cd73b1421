// Package records shapes raw address-phone records for display.
package records

import (
	"strings"

	"github.com/sells-group/validator-cli/internal/model"
)

// groupKey builds a content key for an address: category plus the five
// geographic fields, lowercased and pipe-joined. Identity is content, not
// the address ID, so the same street listed under two row IDs collapses
// into one display group.
func groupKey(a model.ProviderAddress) string {
	return strings.ToLower(strings.Join([]string{
		string(a.AddressCategory),
		a.Address1,
		a.Address2,
		a.City,
		a.State,
		a.Zip,
	}, "|"))
}

// GroupByAddress collapses a flat record list into per-address display
// groups. Groups appear in first-seen order, records keep their order within
// a group, and a record whose phone ID duplicates one already in its group
// is suppressed. Empty input yields an empty result.
func GroupByAddress(recs []model.AddressPhoneRecord) [][]model.AddressPhoneRecord {
	groups := make([][]model.AddressPhoneRecord, 0, len(recs))
	index := make(map[string]int, len(recs))

	for _, rec := range recs {
		key := groupKey(rec.Address)
		i, ok := index[key]
		if !ok {
			index[key] = len(groups)
			groups = append(groups, []model.AddressPhoneRecord{rec})
			continue
		}

		dup := false
		for _, existing := range groups[i] {
			if existing.Phone.ID == rec.Phone.ID {
				dup = true
				break
			}
		}
		if !dup {
			groups[i] = append(groups[i], rec)
		}
	}

	return groups
}
