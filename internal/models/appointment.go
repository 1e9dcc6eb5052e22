package models

type Appointment struct {
	ID         int64   `json:"appointment_id" db:"id"`
	MemberID   int64   `json:"member_id" db:"member_id"`
	EmployeeID int64   `json:"employee_id" db:"employee_id"`
	StartTime  UTCTime `json:"starttime_utc" db:"starttime"`
	EndTime    UTCTime `json:"endtime_utc" db:"endtime"`
	Remarks    string  `json:"remarks" db:"remarks"`
	CreatedAt  UTCTime `json:"created_at_utc" db:"created_at"`
}
