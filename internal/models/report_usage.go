package models

import "time"

type ReportUsage struct {
	UserID int    `json:"user_id"`
	Period string `json:"period"`
	Used   int    `json:"used"`
	Limit  int    `json:"limit"`
	IsPro  bool   `json:"is_pro"`
}

// UsagePeriod is the calendar month key used to bucket report quotas.
func UsagePeriod(t time.Time) string {
	return t.Format("2006-01")
}

// Remaining reports left this period; -1 means unlimited.
func (u ReportUsage) Remaining() int {
	if u.IsPro {
		return -1
	}
	if u.Used >= u.Limit {
		return 0
	}
	return u.Limit - u.Used
}
