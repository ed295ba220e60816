package feed

import (
	"fmt"
	"time"
)

const dayLayout = "Jan 2, 2006"

// DateLabel renders an event's date. A missing end, an end before start, or
// an end on the same calendar day as start yields a single date; otherwise a
// compact range.
func DateLabel(start time.Time, end *time.Time) string {
	if end == nil || end.Before(start) {
		return start.Format(dayLayout)
	}
	e := end.In(start.Location())
	sy, sm, sd := start.Date()
	ey, em, ed := e.Date()

	switch {
	case sy == ey && sm == em && sd == ed:
		return start.Format(dayLayout)
	case sy == ey && sm == em:
		return fmt.Sprintf("%s %d-%d, %d", sm.String()[:3], sd, ed, sy)
	case sy == ey:
		return fmt.Sprintf("%s - %s, %d", start.Format("Jan 2"), e.Format("Jan 2"), sy)
	default:
		return fmt.Sprintf("%s - %s", start.Format(dayLayout), e.Format(dayLayout))
	}
}
