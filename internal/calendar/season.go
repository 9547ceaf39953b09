package calendar

import "time"

// Season names used as seasonal theme keys.
const (
	SeasonSpring = "spring"
	SeasonSummer = "summer"
	SeasonAutumn = "autumn"
	SeasonWinter = "winter"
)

// Season returns the astronomical season for a date. Boundaries: spring
// Mar 20 - Jun 20, summer Jun 21 - Sep 21, autumn Sep 22 - Dec 20, winter
// the rest.
func Season(t time.Time) string {
	month, day := int(t.Month()), t.Day()

	switch {
	case (month == 3 && day >= 20) || month == 4 || month == 5 || (month == 6 && day < 21):
		return SeasonSpring
	case (month == 6 && day >= 21) || month == 7 || month == 8 || (month == 9 && day < 22):
		return SeasonSummer
	case (month == 9 && day >= 22) || month == 10 || month == 11 || (month == 12 && day < 21):
		return SeasonAutumn
	default:
		return SeasonWinter
	}
}
