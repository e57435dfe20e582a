package types

import "strings"

// Address is the shipping address snapshot stored on orders as jsonb.
type Address struct {
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	PostalCode string  `json:"postal_code"`
	Country    string  `json:"country"`
}

// Validate reports the first missing required field, if any.
func (a Address) Validate() (string, bool) {
	switch {
	case strings.TrimSpace(a.Line1) == "":
		return "line1", false
	case strings.TrimSpace(a.City) == "":
		return "city", false
	case strings.TrimSpace(a.PostalCode) == "":
		return "postal_code", false
	case strings.TrimSpace(a.Country) == "":
		return "country", false
	}
	return "", true
}
