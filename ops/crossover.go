package ops

import "math/rand"

// CrossoverPmx performs partially-mapped crossover between s1 and s2 in
// place, over the index range produced by two random crossover points.
func CrossoverPmx[T comparable](r *rand.Rand, s1, s2 []T) {
	n := min(len(s1), len(s2))
	if n < 2 {
		return
	}
	a, b := r.Intn(n), r.Intn(n)
	if a > b {
		a, b = b, a
	}
	crossoverPmxSingle(s1, s2, a, b)
	crossoverPmxSingle(s2, s1, a, b)
}

func crossoverPmxSingle[T comparable](dst, src []T, a, b int) {
	n := len(dst)
	pos := make(map[T]int, n)
	for i, v := range dst {
		pos[v] = i
	}
	orig := append([]T(nil), dst...)
	copy(dst[a:b+1], src[a:b+1])
	for i := a; i <= b; i++ {
		v := orig[i]
		if contains(dst[a:b+1], v) {
			continue
		}
		// Follow the mapping cycle to find an open slot outside [a,b].
		j := i
		for {
			mapped := src[j]
			idx, ok := pos[mapped]
			if !ok || idx < a || idx > b {
				dst[idx] = v
				break
			}
			j = idx
		}
	}
}

func contains[T comparable](s []T, v T) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// CrossoverOrder performs order crossover (OX) between s1 and s2 in place.
func CrossoverOrder[T comparable](r *rand.Rand, s1, s2 []T) {
	n := min(len(s1), len(s2))
	if n < 2 {
		return
	}
	a, b := r.Intn(n), r.Intn(n)
	if a > b {
		a, b = b, a
	}
	crossoverOrderSingle(s1, s2, a, b)
	crossoverOrderSingle(s2, s1, a, b)
}

func crossoverOrderSingle[T comparable](dst, src []T, a, b int) {
	n := len(dst)
	kept := make(map[T]bool, b-a+1)
	window := append([]T(nil), dst[a:b+1]...)
	for _, v := range window {
		kept[v] = true
	}
	out := make([]T, 0, n)
	idx := (b + 1) % n
	for len(out) < n-(b-a+1) {
		v := src[idx]
		if !kept[v] {
			out = append(out, v)
		}
		idx = (idx + 1) % n
	}
	// Splice out back around the kept window.
	oi := 0
	for i := 0; i < n; i++ {
		if i >= a && i <= b {
			continue
		}
		dst[i] = out[oi]
		oi++
	}
}

// CrossoverCycle performs cycle crossover between s1 and s2 in place.
func CrossoverCycle[T comparable](s1, s2 []T) {
	n := min(len(s1), len(s2))
	if n == 0 {
		return
	}
	pos := make(map[T]int, n)
	for i, v := range s2 {
		pos[v] = i
	}
	seen := make([]bool, n)
	cycle := 0
	for start := 0; start < n; start++ {
		if seen[start] {
			continue
		}
		if cycle%2 == 1 {
			i := start
			for !seen[i] {
				seen[i] = true
				s1[i], s2[i] = s2[i], s1[i]
				i = pos[s2[i]]
			}
		} else {
			i := start
			for !seen[i] {
				seen[i] = true
				i = pos[s1[i]]
			}
		}
		cycle++
	}
}

// CrossoverKpx performs k-point crossover between s1 and s2 in place, with
// k distinct crossover points chosen uniformly at random from [1, n) and
// sorted.
func CrossoverKpx[T any](r *rand.Rand, s1, s2 []T, k int) {
	n := min(len(s1), len(s2))
	if n < 2 || k < 1 {
		return
	}
	if k > n-1 {
		k = n - 1
	}
	pts := r.Perm(n - 1)[:k]
	for i := range pts {
		pts[i]++
	}
	sortInts(pts)
	swap := false
	prev := 0
	for _, p := range pts {
		if swap {
			for i := prev; i < p; i++ {
				s1[i], s2[i] = s2[i], s1[i]
			}
		}
		swap = !swap
		prev = p
	}
	if swap {
		for i := prev; i < n; i++ {
			s1[i], s2[i] = s2[i], s1[i]
		}
	}
}

func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// CrossoverUx performs uniform crossover: each index is swapped independently
// with probability 0.5.
func CrossoverUx[T any](r *rand.Rand, s1, s2 []T) {
	CrossoverUxRng(r, s1, s2, 0.5)
}

// CrossoverUxRng performs uniform crossover with a configurable swap
// probability p per index.
func CrossoverUxRng[T any](r *rand.Rand, s1, s2 []T, p float64) {
	n := min(len(s1), len(s2))
	for i := 0; i < n; i++ {
		if r.Float64() < p {
			s1[i], s2[i] = s2[i], s1[i]
		}
	}
}

// CrossoverArithAlpha performs whole arithmetic recombination with a given
// alpha: c1 = alpha*s1 + (1-alpha)*s2, c2 = (1-alpha)*s1 + alpha*s2.
func CrossoverArithAlpha(s1, s2 []float64, alpha float64) {
	n := min(len(s1), len(s2))
	for i := 0; i < n; i++ {
		a, b := s1[i], s2[i]
		s1[i] = alpha*a + (1-alpha)*b
		s2[i] = (1-alpha)*a + alpha*b
	}
}

// CrossoverArith performs whole arithmetic recombination with alpha=0.5.
func CrossoverArith(s1, s2 []float64) {
	CrossoverArithAlpha(s1, s2, 0.5)
}

// CrossoverBlx performs blend crossover (BLX-alpha): for each element pair
// (x,y) with x<y, draws a replacement uniformly from
// [x - |y-x|*alpha, y + |y-x|*alpha]. alpha=0.5 is a common default.
func CrossoverBlx(r *rand.Rand, s1, s2 []float64, alpha float64) {
	n := min(len(s1), len(s2))
	for i := 0; i < n; i++ {
		x, y := s1[i], s2[i]
		if x > y {
			x, y = y, x
		}
		spread := (y - x) * alpha
		lo, hi := x-spread, y+spread
		s1[i] = MutateUniform(r, lo, hi)
		s2[i] = MutateUniform(r, lo, hi)
	}
}
