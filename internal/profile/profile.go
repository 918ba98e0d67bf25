// Package profile describes the candidate profile extracted from a résumé.
package profile

import (
	"strings"
	"time"
)

type Profile struct {
	Names                []string      `json:"names"`
	Emails               []string      `json:"emails"`
	Phones               []string      `json:"phones"`
	Locations            []string      `json:"locations"`
	Skills               []string      `json:"skills"`
	Education            []Education   `json:"education"`
	Experience           []Experience  `json:"experience"`
	Languages            []Language    `json:"languages"`
	Certificates         []Certificate `json:"certificates"`
	Projects             []Project     `json:"projects"`
	TotalExperienceYears string        `json:"total_experience_years"`
	Summary              string        `json:"summary"`
}

type Education struct {
	School         string `json:"school"`
	Department     string `json:"department"`
	Degree         string `json:"degree"`
	GraduationYear string `json:"graduation_year"`
}

type Experience struct {
	Company          string   `json:"company"`
	Position         string   `json:"position"`
	StartDate        string   `json:"start_date"`
	EndDate          string   `json:"end_date"`
	Responsibilities []string `json:"responsibilities"`
}

type Language struct {
	Language string `json:"language"`
	Level    string `json:"level"`
}

type Certificate struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
}

type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
}

// Record is a stored profile. It is keyed by owner and source filename.
type Record struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Filename  string    `json:"filename"`
	Profile   *Profile  `json:"profile"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName returns the first extracted name or the filename.
func (r *Record) DisplayName() string {
	if r.Profile != nil {
		for _, name := range r.Profile.Names {
			if name = strings.TrimSpace(name); name != "" {
				return name
			}
		}
	}
	return r.Filename
}
