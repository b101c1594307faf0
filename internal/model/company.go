package model

// Company is the letterhead printed on invoices.
type Company struct {
	Name       string
	Street     string
	CityLine   string
	PaymentURL string
}
