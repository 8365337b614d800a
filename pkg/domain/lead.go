package domain

import "time"

type LeadRating string

var (
	LeadRatingHot  LeadRating = "Hot"
	LeadRatingWarm LeadRating = "Warm"
	LeadRatingCold LeadRating = "Cold"
)

type Lead struct {
	ID          string
	Name        string
	Website     string
	Email       string
	Phone       string
	Industry    string
	CompanySize string
	Address     string
	LinkedIn    string
	Background  string

	Rating         LeadRating
	NumericScore   int
	ScoreReasoning string

	PersonalizedOpener string
	SubjectLine        string

	Enriched  bool
	EmailSent bool

	FundingRound  string
	NewHires      string
	ProductLaunch string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ICP is the user's ideal customer persona, used to score leads.
type ICP struct {
	UserID           string
	Name             string
	TargetIndustries []string
	CompanySizeRange string
	JobTitles        []string
	PainPoints       []string
	UseCases         []string
}
