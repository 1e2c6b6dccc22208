package pit

import "sort"

// SumByGroup sums each value slice over equal group keys. Returned
// keys are the sorted unique groups; sums[j][g] is the sum of vals[j]
// over rows whose group equals keys[g]. All value slices must have the
// same length as groups.
func SumByGroup(groups []int, vals ...[]float64) (keys []int, sums [][]float64) {
	for _, v := range vals {
		if len(v) != len(groups) {
			panic("pit: SumByGroup value length does not match group length")
		}
	}
	pos := make(map[int]int, len(groups))
	for _, g := range groups {
		if _, ok := pos[g]; !ok {
			pos[g] = 0
			keys = append(keys, g)
		}
	}
	sort.Ints(keys)
	for g, k := range keys {
		pos[k] = g
	}
	sums = make([][]float64, len(vals))
	for j := range vals {
		sums[j] = make([]float64, len(keys))
		for i, g := range groups {
			sums[j][pos[g]] += vals[j][i]
		}
	}
	return
}

// SelectFrom scatters data by rowIndex and gathers it back at
// wantIndex: result[i] = data[j] where rowIndex[j] == wantIndex[i].
// Used to reorder per-branch results onto user-visible node ordering.
func SelectFrom(rowIndex, wantIndex []int, data []float64) []float64 {
	maxIdx := -1
	for _, idx := range rowIndex {
		if idx > maxIdx {
			maxIdx = idx
		}
	}
	scatter := make([]float64, maxIdx+1)
	for j, idx := range rowIndex {
		scatter[idx] = data[j]
	}
	out := make([]float64, len(wantIndex))
	for i, idx := range wantIndex {
		if idx < 0 || idx > maxIdx {
			panic("pit: SelectFrom index outside scattered range")
		}
		out[i] = scatter[idx]
	}
	return out
}
