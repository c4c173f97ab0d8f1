package controllers

import "time"

// YearsOfService returns whole calendar years between the join date and the
// evaluation date, comparing year components only. The result is negative
// when asOf precedes the join date; callers get the unclamped value.
func YearsOfService(joinDate, asOf time.Time) int {
	return asOf.Year() - joinDate.Year()
}
