package provider

import "strings"

// selectByRDNS returns the first record whose rdns matches priority, trying
// the priority list in order. Matching ignores case.
func selectByRDNS(records []*Record, priority []string) (*Record, bool) {
	for _, want := range priority {
		if want == "" {
			continue
		}
		for _, rec := range records {
			if strings.EqualFold(rec.Info().RDNS, want) {
				return rec, true
			}
		}
	}
	return nil, false
}
