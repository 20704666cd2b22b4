package domain

import "strings"

// BusinessRecord is a business returned by the search provider together with
// the bookkeeping used for ranking.
type BusinessRecord struct {
	Name        string     `json:"name"`
	ReviewCount int        `json:"review_count"`
	Rating      float64    `json:"rating"`
	Location    Location   `json:"location"`
	Phone       string     `json:"phone"`
	Categories  []Category `json:"categories"`
	NumVisited  int        `json:"num_visited"`
	DateCreated Date       `json:"dateCreated"`
	DateUpdated Date       `json:"dateUpdated"`
}

// Location mirrors the address block of the search provider.
type Location struct {
	Address1       string   `json:"address1"`
	Address2       string   `json:"address2,omitempty"`
	Address3       string   `json:"address3,omitempty"`
	City           string   `json:"city"`
	ZipCode        string   `json:"zip_code,omitempty"`
	Country        string   `json:"country,omitempty"`
	State          string   `json:"state,omitempty"`
	DisplayAddress []string `json:"display_address,omitempty"`
}

// Street joins the street address with the city.
func (l Location) Street() string {
	return strings.TrimSpace(l.Address1 + " " + l.City)
}

type Category struct {
	Alias string `json:"alias"`
	Title string `json:"title"`
}
