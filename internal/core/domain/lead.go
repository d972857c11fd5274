package domain

// DefaultLeadStatus is assigned to every newly created lead.
const DefaultLeadStatus = "new"

// Lead is a sales opportunity with an estimated deal value.
type Lead struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Company string  `json:"company"`
	Value   float64 `json:"value"`
	Source  string  `json:"source"`
	Status  string  `json:"status"`
}

// LeadFields carries the attributes accepted when creating a lead.
type LeadFields struct {
	Name    string
	Email   string
	Company string
	Value   float64
	Source  string
}
