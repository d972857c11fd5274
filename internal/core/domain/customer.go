package domain

// DefaultCustomerStatus is applied when a customer is created without a status.
const DefaultCustomerStatus = "prospect"

// Customer is an existing or prospective client account.
type Customer struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
	Status  string `json:"status"`
}

// CustomerFields carries the writable customer attributes for create and update.
type CustomerFields struct {
	Name    string
	Email   string
	Company string
	Phone   string
	Status  string
}
