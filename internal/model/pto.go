package model

import (
	"time"
)

// PtoType is the kind of paid time off
type PtoType string

const (
	PtoVacation PtoType = "vacation"
	PtoSick     PtoType = "sick"
	PtoPersonal PtoType = "personal"
)

// PtoTypes lists the known types in display order
var PtoTypes = []PtoType{PtoVacation, PtoSick, PtoPersonal}

// Valid returns true for a known PTO type
func (t PtoType) Valid() bool {
	switch t {
	case PtoVacation, PtoSick, PtoPersonal:
		return true
	}
	return false
}

// Label returns the display name
func (t PtoType) Label() string {
	switch t {
	case PtoVacation:
		return "Vacation"
	case PtoSick:
		return "Sick"
	case PtoPersonal:
		return "Personal"
	default:
		return string(t)
	}
}

// AnnualLimit returns the yearly allowance in days shown next to the usage count
func (t PtoType) AnnualLimit() int {
	switch t {
	case PtoVacation:
		return 15
	case PtoSick, PtoPersonal:
		return 5
	default:
		return 0
	}
}

// PtoEntry is one day of paid time off
type PtoEntry struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Type      PtoType   `json:"type"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

// Year returns the YYYY prefix of the date
func (p *PtoEntry) Year() string {
	if len(p.Date) < 4 {
		return ""
	}
	return p.Date[:4]
}
