package slice

// FixedSizeSlice is a set of indices in [0, length) which counts its members
type FixedSizeSlice struct {
	slice        []bool
	numSetValues int
}

func MakeFixedSizeSlice(length int) FixedSizeSlice {
	return FixedSizeSlice{slice: make([]bool, length), numSetValues: 0}
}
func (s *FixedSizeSlice) Len() int { return s.numSetValues }
func (s *FixedSizeSlice) Add(indices ...int) {
	for _, index := range indices {
		if !s.slice[index] {
			s.slice[index] = true
			s.numSetValues++
		}
	}
}

func (s *FixedSizeSlice) Remove(indices ...int) {
	for _, index := range indices {
		if s.slice[index] {
			s.slice[index] = false
			s.numSetValues--
		}
	}
}

func (s *FixedSizeSlice) Contains(index int) bool { return s.slice[index] }
func (s *FixedSizeSlice) Ratio() float64 {
	if len(s.slice) == 0 {
		return 0
	}
	return float64(s.numSetValues) / float64(len(s.slice))
}

func ReverseInPlace[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func Contains[T comparable](s []T, value T) bool {
	for _, a := range s {
		if a == value {
			return true
		}
	}
	return false
}

// Compare counts the positions at which the slices differ. Missing elements of the shorter slice count as differences.
func Compare[T comparable](s1 []T, s2 []T) int {
	if len(s1) > len(s2) {
		s1, s2 = s2, s1
	}
	differences := len(s2) - len(s1)
	for i := 0; i < len(s1); i++ {
		if s1[i] != s2[i] {
			differences++
		}
	}
	return differences
}
