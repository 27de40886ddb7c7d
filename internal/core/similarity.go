package core

// sequenceRatio returns the longest-matching-block similarity of a and b:
// 2*M/T where M is the number of elements covered by the recursively found
// longest common blocks and T is the combined length. Two empty sequences
// are identical.
func sequenceRatio[T comparable](a, b []T) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matchedElements(a, b)) / float64(total)
}

type matchRange struct {
	alo, ahi, blo, bhi int
}

func matchedElements[T comparable](a, b []T) int {
	index := map[T][]int{}
	for j, item := range b {
		index[item] = append(index[item], j)
	}
	matched := 0
	queue := []matchRange{{0, len(a), 0, len(b)}}
	for len(queue) > 0 {
		r := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		i, j, size := longestMatch(a, index, r)
		if size == 0 {
			continue
		}
		matched += size
		if r.alo < i && r.blo < j {
			queue = append(queue, matchRange{r.alo, i, r.blo, j})
		}
		if i+size < r.ahi && j+size < r.bhi {
			queue = append(queue, matchRange{i + size, r.ahi, j + size, r.bhi})
		}
	}
	return matched
}

// longestMatch finds the longest block a[i:i+size] == b[j:j+size] inside r.
// Ties resolve to the block starting earliest in a, then earliest in b.
func longestMatch[T comparable](a []T, index map[T][]int, r matchRange) (int, int, int) {
	bestI, bestJ, bestSize := r.alo, r.blo, 0
	lengths := map[int]int{}
	for i := r.alo; i < r.ahi; i++ {
		next := map[int]int{}
		for _, j := range index[a[i]] {
			if j < r.blo {
				continue
			}
			if j >= r.bhi {
				break
			}
			k := lengths[j-1] + 1
			next[j] = k
			if k > bestSize {
				bestI, bestJ, bestSize = i-k+1, j-k+1, k
			}
		}
		lengths = next
	}
	return bestI, bestJ, bestSize
}

func charSimilarity(a, b string) float64 {
	return sequenceRatio([]rune(a), []rune(b))
}
