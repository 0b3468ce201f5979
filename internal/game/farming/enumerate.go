package farming

import "iter"

// combinations yields every k-subset of items in lexicographic position order.
// The yielded slice is reused between iterations.
func combinations(items []string, k int) iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		n := len(items)
		if k <= 0 || k > n {
			return
		}
		idx := make([]int, k)
		for i := range idx {
			idx[i] = i
		}
		out := make([]string, k)
		for {
			for i, j := range idx {
				out[i] = items[j]
			}
			if !yield(out) {
				return
			}
			// Rightmost index that can still advance.
			i := k - 1
			for i >= 0 && idx[i] == n-k+i {
				i--
			}
			if i < 0 {
				return
			}
			idx[i]++
			for j := i + 1; j < k; j++ {
				idx[j] = idx[j-1] + 1
			}
		}
	}
}

// partitions yields every split of total into len(mins) parts with
// part[i] >= mins[i], in ascending lexicographic order. The yielded slice is
// reused between iterations.
func partitions(total int, mins []int) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		k := len(mins)
		if k == 0 {
			return
		}
		// suffix[i] = Σ mins[i:]
		suffix := make([]int, k+1)
		for i := k - 1; i >= 0; i-- {
			suffix[i] = suffix[i+1] + mins[i]
		}
		if total < suffix[0] {
			return
		}

		parts := make([]int, k)
		copy(parts, mins)
		prefix := suffix[0] - mins[k-1] // Σ parts[:k-1]
		for {
			parts[k-1] = total - prefix
			if !yield(parts) {
				return
			}
			// Advance the rightmost free part whose increment keeps the tail feasible.
			i := k - 2
			for ; i >= 0; i-- {
				head := prefix - sumRange(parts, i+1, k-1) + 1
				if head+suffix[i+1] <= total {
					break
				}
			}
			if i < 0 {
				return
			}
			parts[i]++
			for j := i + 1; j < k-1; j++ {
				parts[j] = mins[j]
			}
			prefix = sumRange(parts, 0, k-1)
		}
	}
}

func sumRange(v []int, from, to int) int {
	s := 0
	for _, x := range v[from:to] {
		s += x
	}
	return s
}
