package estimate

// =============================================================================
// BEST-METHOD SELECTION
// Fixed domain priority: convergent triangulation beats everything, then
// ground-truth demand data, then supply reconstruction, then pure top-down
// extrapolation.
// =============================================================================

// SelectBest chooses the single component to present as "the" answer.
// Triangulation qualifies only when at least two underlying methods fed it
// (read from the typed ContributingMethodCount, never from breakdown text).
// When nothing has a value, macro's empty shell carries the missing-data
// explanation forward.
func SelectBest(macro, demand, supply, triangulation Component) Component {
	if triangulation.Complete() && triangulation.ContributingMethodCount >= 2 {
		return triangulation
	}
	if demand.Complete() {
		return demand
	}
	if supply.Complete() {
		return supply
	}
	if macro.Complete() {
		return macro
	}
	return macro
}
