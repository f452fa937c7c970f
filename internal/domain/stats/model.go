package stats

// PriestStats is the priest dashboard summary.
type PriestStats struct {
	Bookings BookingStats  `json:"bookings"`
	Earnings EarningsStats `json:"earnings"`
	Rating   RatingStats   `json:"rating"`
}

type BookingStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Confirmed  int `json:"confirmed"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
	ThisMonth  int `json:"thisMonth"`
	Upcoming   int `json:"upcoming"`
}

// EarningsStats sums TotalAmount over bookings whose payment completed.
type EarningsStats struct {
	Total     float64 `json:"total"`
	ThisMonth float64 `json:"thisMonth"`
}

type RatingStats struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}
