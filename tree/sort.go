package tree

import "sort"

// The time complexity of Fit is bounded by sorting the feature values at each
// node. Sorting the three parallel slices directly, instead of sorting an
// index permutation through the sort.Interface, saves most of the indirection.

// sweep holds the non-missing observations of one feature at a node: the
// feature values, the row ids and the row weights, kept aligned while sorting.
type sweep struct {
	x   []float64
	inx []int
	w   []float64
}

func (s sweep) Len() int           { return len(s.x) }
func (s sweep) Less(i, j int) bool { return s.x[i] < s.x[j] }
func (s sweep) Swap(i, j int) {
	s.x[i], s.x[j] = s.x[j], s.x[i]
	s.inx[i], s.inx[j] = s.inx[j], s.inx[i]
	s.w[i], s.w[j] = s.w[j], s.w[i]
}

func (s sweep) slice(a, b int) sweep {
	return sweep{x: s.x[a:b], inx: s.inx[a:b], w: s.w[a:b]}
}

// sort orders s ascending by x. Past 2*ceil(lg(n+1)) levels of partitioning
// the remaining range is handed to sort.Sort.
func (s sweep) sort() {
	depth := 0
	for i := len(s.x); i > 0; i >>= 1 {
		depth++
	}
	s.quickSort(0, len(s.x), 2*depth)
}

func (s sweep) quickSort(a, b, depth int) {
	for b-a > 12 {
		if depth == 0 {
			sort.Sort(s.slice(a, b))
			return
		}
		depth--
		p := s.partition(a, b)
		// recurse on the smaller side to bound the stack at lg(b-a)
		if p-a < b-p {
			s.quickSort(a, p, depth)
			a = p + 1
		} else {
			s.quickSort(p+1, b, depth)
			b = p
		}
	}
	s.insertionSort(a, b)
}

// partition moves a median of three pivot to its final position p, with
// x[a:p] < pivot <= x[p+1:b].
func (s sweep) partition(a, b int) int {
	m := a + (b-a)/2
	s.medianOfThree(a, m, b-1)
	s.Swap(m, b-1)
	pivot := s.x[b-1]

	i := a
	for j := a; j < b-1; j++ {
		if s.x[j] < pivot {
			s.Swap(i, j)
			i++
		}
	}
	s.Swap(i, b-1)
	return i
}

// medianOfThree orders x[a] <= x[m] <= x[c].
func (s sweep) medianOfThree(a, m, c int) {
	if s.x[m] < s.x[a] {
		s.Swap(a, m)
	}
	if s.x[c] < s.x[m] {
		s.Swap(m, c)
	}
	if s.x[m] < s.x[a] {
		s.Swap(a, m)
	}
}

func (s sweep) insertionSort(a, b int) {
	for i := a + 1; i < b; i++ {
		for j := i; j > a && s.x[j] < s.x[j-1]; j-- {
			s.Swap(j, j-1)
		}
	}
}
