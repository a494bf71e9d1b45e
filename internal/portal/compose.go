// Package portal holds the pure record-shaping utilities of the waste
// exchange: role-tagged record composition, tabular flattening, CSV
// serialization, and material-graph construction. Everything here is a
// synchronous transform over caller-owned data.
package portal

import (
	"github.com/matcheco/matcheco/backend/portal-service/internal/models"
)

// Compose builds role-tagged records from a wizard submission. For each
// selected role that has matching detail data it emits one record whose
// common section carries that role as "Factory Type" and exactly the one
// matching detail section. When both roles qualify the generator record
// comes first. A role selected without detail data emits nothing; such
// roles are reported in skipped so callers can distinguish an intentionally
// single-role submission from a lost detail section.
func Compose(common models.CommonInfo, generator *models.GeneratorDetails, receiver *models.ReceiverDetails, roles []models.Role) (records []models.PortalRecord, skipped []models.Role) {
	has := func(want models.Role) bool {
		for _, r := range roles {
			if r == want {
				return true
			}
		}
		return false
	}

	if has(models.RoleGenerator) {
		if generator != nil {
			c := common
			c.FactoryType = string(models.RoleGenerator)
			g := *generator
			records = append(records, models.PortalRecord{Common: c, Generator: &g})
		} else {
			skipped = append(skipped, models.RoleGenerator)
		}
	}
	if has(models.RoleReceiver) {
		if receiver != nil {
			c := common
			c.FactoryType = string(models.RoleReceiver)
			r := *receiver
			records = append(records, models.PortalRecord{Common: c, Receiver: &r})
		} else {
			skipped = append(skipped, models.RoleReceiver)
		}
	}
	return records, skipped
}
