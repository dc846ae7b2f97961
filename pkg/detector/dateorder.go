package detector

import (
	"strconv"
	"strings"
)

// DateOrder describes how the first two fields of a slash date are ordered.
type DateOrder string

const (
	DateOrderUnknown    DateOrder = "unknown"
	DateOrderMonthFirst DateOrder = "month/day"
	DateOrderDayFirst   DateOrder = "day/month"
	DateOrderAmbiguous  DateOrder = "ambiguous"
	DateOrderMixed      DateOrder = "mixed"
)

// InferDateOrder looks for a field above 12 to decide which position holds
// the month. Unparseable dates are skipped.
func InferDateOrder(dates []string) DateOrder {
	var firstOver, secondOver, seen bool
	for _, d := range dates {
		parts := strings.Split(d, "/")
		if len(parts) != 3 {
			continue
		}
		a, errA := strconv.Atoi(parts[0])
		b, errB := strconv.Atoi(parts[1])
		if errA != nil || errB != nil {
			continue
		}
		seen = true
		if a > 12 {
			firstOver = true
		}
		if b > 12 {
			secondOver = true
		}
	}

	switch {
	case !seen:
		return DateOrderUnknown
	case firstOver && secondOver:
		return DateOrderMixed
	case firstOver:
		return DateOrderDayFirst
	case secondOver:
		return DateOrderMonthFirst
	default:
		return DateOrderAmbiguous
	}
}
