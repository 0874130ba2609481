package tests

import "sort"

// midranks converts values to ranks, averaging ranks within tie groups
func midranks(data []float64) []float64 {
	n := len(data)
	if n == 0 {
		return []float64{}
	}

	type pair struct {
		value float64
		index int
	}

	pairs := make([]pair, n)
	for i, val := range data {
		pairs[i] = pair{value: val, index: i}
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].value < pairs[j].value
	})

	ranks := make([]float64, n)
	i := 0
	for i < n {
		j := i + 1
		for j < n && pairs[j].value == pairs[i].value {
			j++
		}
		groupSize := j - i
		avgRank := float64(i+1) + float64(groupSize-1)/2.0
		for k := i; k < j; k++ {
			ranks[pairs[k].index] = avgRank
		}
		i = j
	}

	return ranks
}

// tieGroups returns the size of each tie group in the combined data
func tieGroups(data []float64) []int {
	if len(data) == 0 {
		return nil
	}
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)

	var groups []int
	count := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			count++
			continue
		}
		groups = append(groups, count)
		count = 1
	}
	groups = append(groups, count)
	return groups
}

// hasTies reports whether any value occurs more than once
func hasTies(data []float64) bool {
	for _, g := range tieGroups(data) {
		if g > 1 {
			return true
		}
	}
	return false
}
