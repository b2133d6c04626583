package domain

import "github.com/uptrace/bun"

// Reference entities owned by other parts of the portal. The scheduler reads them by id
// and never writes them.

type Candidate struct {
	bun.BaseModel `bun:"table:candidates"`

	ID          string `bun:"id,pk"`
	Name        string `bun:"name"`
	Email       string `bun:"email"`
	Affiliation string `bun:"affiliation"`
}

type Interviewer struct {
	bun.BaseModel `bun:"table:interviewers"`

	ID         string `bun:"id,pk"`
	Name       string `bun:"name"`
	Email      string `bun:"email"`
	Department string `bun:"department"`
}

type Application struct {
	bun.BaseModel `bun:"table:applications"`

	ID          string `bun:"id,pk"`
	CandidateID string `bun:"candidate_id"`
	PositionID  string `bun:"position_id"`
	Status      string `bun:"status"`
}

type Position struct {
	bun.BaseModel `bun:"table:positions"`

	ID    string `bun:"id,pk"`
	Title string `bun:"title"`
}

func (c Candidate) Key() string   { return c.ID }
func (i Interviewer) Key() string { return i.ID }
func (a Application) Key() string { return a.ID }
func (p Position) Key() string    { return p.ID }
