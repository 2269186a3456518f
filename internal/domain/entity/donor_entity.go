package entity

import "time"

const (
	DonorStatusPending = "pending"
	DonorStatusSuccess = "success"
)

// Donor records one completed donation.
type Donor struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Number        string    `json:"number"`
	Email         string    `json:"email"`
	Category      string    `json:"category"`
	PaymentMethod string    `json:"paymentMethod"`
	PaymentRefID  string    `json:"paymentRefId"`
	PaymentDate   time.Time `json:"paymentDate"`
	Status        string    `json:"status"`
}
