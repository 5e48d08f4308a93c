package user

import "github.com/trezcool/njia/core"

// Badge identifiers. Badges are bare strings on the User; there is no
// badge entity store.
const (
	BadgeThreeModulesComplete = "three-modules-complete"
	BadgeCapstoneComplete     = "capstone-complete"
)

// badgeRule awards Badge once Satisfied returns true for a user's progress.
type badgeRule struct {
	Badge     string
	Satisfied func(usr User) bool
}

// badgeRules builds the fixed award table. It is data, not a plugin system:
// new badges are added by extending this slice.
//
// NB: the capstone rule couples to a content module id that nothing
// guarantees the generator ever emits; the id is deliberately config data
// rather than a hard-coded literal.
func badgeRules(conf *core.Config) []badgeRule {
	capstoneID := conf.AI.CapstoneModuleID
	return []badgeRule{
		{
			Badge:     BadgeThreeModulesComplete,
			Satisfied: func(usr User) bool { return len(usr.CompletedModules) >= 3 },
		},
		{
			Badge:     BadgeCapstoneComplete,
			Satisfied: func(usr User) bool { return usr.HasCompleted(capstoneID) },
		},
	}
}

// newBadges returns the rule badges satisfied by usr and not already held.
// Duplication across near-simultaneous calls is prevented by the
// "not already held" guard being re-checked on every call.
func newBadges(usr User, rules []badgeRule) []string {
	awarded := make([]string, 0, len(rules))
	for _, rule := range rules {
		if usr.HasBadge(rule.Badge) {
			continue
		}
		if rule.Satisfied(usr) {
			awarded = append(awarded, rule.Badge)
		}
	}
	return awarded
}
