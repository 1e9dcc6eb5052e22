package models

// Timetable is an employee's working pattern valid from EffectiveStart until
// EffectiveEnd (open-ended when nil).
type Timetable struct {
	ID             int64    `json:"timetable_id" db:"id"`
	EmployeeID     int64    `json:"employee_id" db:"employee_id"`
	RestDayNumber  int      `json:"rest_day_number" db:"rest_day_number"`
	EffectiveStart UTCTime  `json:"effective_startdate_utc" db:"effective_startdate"`
	EffectiveEnd   *UTCTime `json:"effective_enddate_utc" db:"effective_enddate"`
	CreatedAt      UTCTime  `json:"created_at_utc" db:"created_at"`
}

// CurrentAndUpcoming holds at most one current timetable and the future
// ones in start order.
type CurrentAndUpcoming struct {
	Current  []Timetable `json:"current_timetables"`
	Upcoming []Timetable `json:"upcoming_timetables"`
}
