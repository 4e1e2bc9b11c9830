package digitizer

// NeighborAverageImputation replaces every all-zero lead with the
// elementwise mean of its immediate positional neighbors in the canonical
// lead order, clamping at the boundaries. Returns the indices that were
// rewritten, in order.
//
// This is a print-layout heuristic, not a signal-aware reconstruction:
// adjacency in the canonical order carries no biophysical meaning, it is
// simply the cheapest stand-in for a lead the extractor lost. Imputation
// runs in place and sequentially, so a later imputation can observe the
// result of an earlier one.
func NeighborAverageImputation(leads [][]float32) []int {
	var imputed []int
	for i := range leads {
		if !allZero(leads[i]) {
			continue
		}
		left, right := i-1, i+1
		if left < 0 {
			left = 0
		}
		if right > len(leads)-1 {
			right = len(leads) - 1
		}
		for t := range leads[i] {
			leads[i][t] = (leads[left][t] + leads[right][t]) / 2
		}
		imputed = append(imputed, i)
	}
	return imputed
}

func allZero(s []float32) bool {
	for _, v := range s {
		if v != 0 {
			return false
		}
	}
	return true
}
