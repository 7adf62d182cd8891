package models

// Counts is a per-entity-type counter pair
type Counts struct {
	Categories    int `json:"categories"`
	Subcategories int `json:"subcategories"`
}

// ReconciliationReport summarises what one import did to the stored taxonomy
type ReconciliationReport struct {
	Totals      Counts `json:"totals"`
	Created     Counts `json:"created"`
	Updated     Counts `json:"updated"`
	Skipped     Counts `json:"skipped"`
	Deactivated Counts `json:"deactivated"`
}

// ImportResponse is returned by the taxonomy import endpoint
type ImportResponse struct {
	Success  bool                 `json:"success"`
	Preview  bool                 `json:"preview"`
	Mode     string               `json:"mode"`
	Layout   string               `json:"layout,omitempty"`
	Warnings []string             `json:"warnings"`
	Errors   []string             `json:"errors"`
	Report   ReconciliationReport `json:"report"`
}
