package engine

import (
	"strings"

	"ade/internal/models"
	"ade/internal/structures"
)

// ShouldShow evaluates the visitor context against the configured allow-lists.
// All four dimensions must match; a single rule violation blocks the ad.
// Disabled targeting always allows. Pure function, no side effects.
func ShouldShow(ctx models.VisitorContext, rules structures.TargetingConfig) bool {
	if !rules.Enabled {
		return true
	}
	return listContains(rules.Devices, ctx.Device) &&
		listContains(rules.Browsers, ctx.Browser) &&
		listContains(rules.TimesOfDay, ctx.TimeOfDay) &&
		listContains(rules.Days, ctx.Day)
}

func listContains(list []string, value string) bool {
	for _, v := range list {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}
