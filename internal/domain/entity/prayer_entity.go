package entity

// SalatTime pairs the call to prayer with the congregation start.
type SalatTime struct {
	AzanTime  string `json:"azanTime" binding:"required"`
	SalatTime string `json:"salatTime" binding:"required"`
}

// OptionalSalatTime is used for Jumma, which only applies on Fridays.
type OptionalSalatTime struct {
	AzanTime  string `json:"azanTime,omitempty"`
	SalatTime string `json:"salatTime,omitempty"`
}

type PrayerTimes struct {
	Fajr    SalatTime          `json:"Fajr" binding:"required"`
	Dhuhr   SalatTime          `json:"Dhuhr" binding:"required"`
	Asr     SalatTime          `json:"Asr" binding:"required"`
	Maghrib SalatTime          `json:"Maghrib" binding:"required"`
	Isha    SalatTime          `json:"Isha" binding:"required"`
	Jumma   *OptionalSalatTime `json:"Jumma,omitempty"`
}

// Prayer is one day of the timetable. Month, year and date are kept as the
// strings the site submits; together they identify the day.
type Prayer struct {
	ID           string      `json:"id"`
	Month        string      `json:"month"`
	Year         string      `json:"year"`
	Date         string      `json:"date"`
	UpdatedTimes PrayerTimes `json:"updatedTimes"`
}
