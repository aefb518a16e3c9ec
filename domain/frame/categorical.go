package frame

// NullCode marks a null cell in a categorical column
const NullCode = -1

// CategoricalSeries is a string column stored as integer codes into an
// ordered level list. The level list is the category set downstream
// consumers see, independent of which levels actually occur in the rows.
type CategoricalSeries struct {
	name   string
	Codes  []int
	levels []string
}

// NewCategorical builds a categorical column from raw string values, with
// levels registered in first-appearance order
func NewCategorical(name string, values []string) *CategoricalSeries {
	codes := make([]int, len(values))
	var levels []string
	index := make(map[string]int)
	for i, v := range values {
		code, ok := index[v]
		if !ok {
			code = len(levels)
			levels = append(levels, v)
			index[v] = code
		}
		codes[i] = code
	}
	return &CategoricalSeries{name: name, Codes: codes, levels: levels}
}

// NewCategoricalWithLevels builds a categorical column over a fixed level
// list. Values not present in levels become null cells.
func NewCategoricalWithLevels(name string, values []string, levels []string) *CategoricalSeries {
	index := make(map[string]int, len(levels))
	for i, l := range levels {
		index[l] = i
	}
	codes := make([]int, len(values))
	for i, v := range values {
		code, ok := index[v]
		if !ok {
			code = NullCode
		}
		codes[i] = code
	}
	lv := make([]string, len(levels))
	copy(lv, levels)
	return &CategoricalSeries{name: name, Codes: codes, levels: lv}
}

// NewCategoricalFromCodes builds a categorical column directly from codes.
// Codes must be NullCode or a valid index into levels.
func NewCategoricalFromCodes(name string, codes []int, levels []string) *CategoricalSeries {
	lv := make([]string, len(levels))
	copy(lv, levels)
	return &CategoricalSeries{name: name, Codes: codes, levels: lv}
}

func (s *CategoricalSeries) Name() string { return s.name }
func (s *CategoricalSeries) Len() int     { return len(s.Codes) }
func (s *CategoricalSeries) Kind() Kind   { return KindCategorical }

func (s *CategoricalSeries) At(i int) (interface{}, bool) {
	if s.Codes[i] == NullCode {
		return nil, false
	}
	return s.levels[s.Codes[i]], true
}

// Value returns the string value of a cell and whether it is non-null
func (s *CategoricalSeries) Value(i int) (string, bool) {
	if s.Codes[i] == NullCode {
		return "", false
	}
	return s.levels[s.Codes[i]], true
}

// Levels returns a copy of the ordered level list
func (s *CategoricalSeries) Levels() []string {
	out := make([]string, len(s.levels))
	copy(out, s.levels)
	return out
}

// HasLevel reports whether name is a registered level
func (s *CategoricalSeries) HasLevel(name string) bool {
	return s.codeOf(name) != NullCode
}

func (s *CategoricalSeries) codeOf(name string) int {
	for i, l := range s.levels {
		if l == name {
			return i
		}
	}
	return NullCode
}

// RenameLevel rewrites a level name in place; a no-op when old is absent
func (s *CategoricalSeries) RenameLevel(old, new string) {
	for i, l := range s.levels {
		if l == old {
			s.levels[i] = new
			return
		}
	}
}

// RemoveUnusedLevels drops levels no row references and re-codes the column.
// Level order of the survivors is preserved.
func (s *CategoricalSeries) RemoveUnusedLevels() {
	used := make([]bool, len(s.levels))
	for _, code := range s.Codes {
		if code != NullCode {
			used[code] = true
		}
	}
	remap := make([]int, len(s.levels))
	var levels []string
	for i, u := range used {
		if u {
			remap[i] = len(levels)
			levels = append(levels, s.levels[i])
		} else {
			remap[i] = NullCode
		}
	}
	for i, code := range s.Codes {
		if code != NullCode {
			s.Codes[i] = remap[code]
		}
	}
	s.levels = levels
}

func (s *CategoricalSeries) Take(idx []int) Series {
	codes := make([]int, len(idx))
	for out, i := range idx {
		codes[out] = s.Codes[i]
	}
	levels := make([]string, len(s.levels))
	copy(levels, s.levels)
	return &CategoricalSeries{name: s.name, Codes: codes, levels: levels}
}

func (s *CategoricalSeries) Clone() Series {
	codes := make([]int, len(s.Codes))
	copy(codes, s.Codes)
	levels := make([]string, len(s.levels))
	copy(levels, s.levels)
	return &CategoricalSeries{name: s.name, Codes: codes, levels: levels}
}

func (s *CategoricalSeries) Renamed(name string) Series {
	c := s.Clone().(*CategoricalSeries)
	c.name = name
	return c
}
