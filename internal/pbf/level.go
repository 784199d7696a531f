package pbf

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/osm"
)

var levelRange = regexp.MustCompile(`^(-?\d+)-(-?\d+)$`)

// parseLevels parses level values like "0", "0;1" or "-1-2" into sorted, distinct levels
func parseLevels(value string) []string {
	seen := make(map[string]bool)
	levels := make([]string, 0)
	add := func(level string) {
		if level != "" && !seen[level] {
			seen[level] = true
			levels = append(levels, level)
		}
	}
	for _, part := range strings.Split(value, ";") {
		part = strings.TrimSpace(part)
		if m := levelRange.FindStringSubmatch(part); m != nil {
			from, _ := strconv.Atoi(m[1])
			to, _ := strconv.Atoi(m[2])
			if from > to {
				from, to = to, from
			}
			for l := from; l <= to; l++ {
				add(strconv.Itoa(l))
			}
			continue
		}
		add(part)
	}
	sort.SliceStable(levels, func(i, j int) bool {
		a, errA := strconv.ParseFloat(levels[i], 64)
		b, errB := strconv.ParseFloat(levels[j], 64)
		if errA != nil || errB != nil {
			return levels[i] < levels[j]
		}
		return a < b
	})
	return levels
}

// levelsOf returns the levels of an element, including repeat_on
func levelsOf(tags osm.Tags) []string {
	value := tags.Find("level")
	if repeat := tags.Find("repeat_on"); repeat != "" {
		if value != "" {
			value += ";"
		}
		value += repeat
	}
	return parseLevels(value)
}
