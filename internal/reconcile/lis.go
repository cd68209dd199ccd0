package reconcile

// stablePositions returns, for each position, whether it belongs to the
// longest increasing subsequence of the non-negative values in order.
// Positions holding -1 are never stable. Members of the subsequence are
// already in relative order and never need to move.
func stablePositions(order []int) []bool {
	stable := make([]bool, len(order))

	// tails[k] holds the index of the smallest tail value of any increasing
	// subsequence of length k+1; prev links rebuild the chosen chain.
	var tails []int
	prev := make([]int, len(order))
	for i, v := range order {
		prev[i] = -1
		if v < 0 {
			continue
		}
		lo, hi := 0, len(tails)
		for lo < hi {
			mid := (lo + hi) / 2
			if order[tails[mid]] < v {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo > 0 {
			prev[i] = tails[lo-1]
		}
		if lo == len(tails) {
			tails = append(tails, i)
		} else {
			tails[lo] = i
		}
	}

	if len(tails) == 0 {
		return stable
	}
	for i := tails[len(tails)-1]; i >= 0; i = prev[i] {
		stable[i] = true
	}
	return stable
}
