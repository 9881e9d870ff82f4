package bidcore

import "strconv"

// SelectIncrement picks the increment a candidate bid amount maps onto, given
// the sale's allowed increments in ascending order (minor currency units, as
// the backend serializes them). An exact match wins; a numeric candidate above
// the range clamps to the highest increment; anything else, including a
// non-numeric candidate, falls to the lowest.
func SelectIncrement(candidate string, increments []string) string {
	if len(increments) == 0 {
		return ""
	}

	for _, increment := range increments {
		if candidate == increment {
			return increment
		}
	}

	candidateValue, err := strconv.ParseInt(candidate, 10, 64)
	if err != nil {
		return increments[0]
	}

	highest := increments[len(increments)-1]
	highestValue, err := strconv.ParseInt(highest, 10, 64)
	if err != nil {
		return increments[0]
	}
	if candidateValue > highestValue {
		return highest
	}

	return increments[0]
}
