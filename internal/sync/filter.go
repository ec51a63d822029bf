package sync

// FilterNew returns the discovered identifiers that are not yet persisted,
// preserving their original relative order. A fully-synced account yields an
// empty result, which lets the orchestrator short-circuit.
func FilterNew(discovered []string, stored map[string]struct{}) []string {
	out := make([]string, 0, len(discovered))
	for _, id := range discovered {
		if _, ok := stored[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
