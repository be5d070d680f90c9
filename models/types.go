package models

// Section status constants
const (
	StatusActive = "Active"
)

// UnknownGender is used for records written before gender was tracked.
const UnknownGender = "Unknown"

// Domain types

type Voter struct {
	VoterID string `json:"voterId"`
	Name    string `json:"name"`
	Age     int    `json:"age"`
	Gender  string `json:"gender"`
}

type Candidate struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Party     string `json:"party"`
	Age       int    `json:"age"`
	Gender    string `json:"gender"`
	SectionID int64  `json:"sectionId"` // 0 = not scoped to a section
}

type Section struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Status      string `json:"status"`
	VoteCount   int    `json:"voteCount"` // derived, never persisted
}

// Vote is keyed by VoterID; a voter holds at most one.
type Vote struct {
	VoterID     string `json:"voterId"`
	CandidateID int64  `json:"candidateId"`
	SectionID   int64  `json:"sectionId"`
	Timestamp   string `json:"timestamp"`
}

// VoterStatus is a voter together with whether a vote exists for it.
type VoterStatus struct {
	Voter
	Voted bool `json:"voted"`
}

type CandidateTally struct {
	Name  string `json:"name"`
	Party string `json:"party"`
	Votes int    `json:"votes"`
}

type Results struct {
	Candidates      []CandidateTally `json:"candidates"`
	TotalVotes      int              `json:"totalVotes"`
	TotalCandidates int              `json:"totalCandidates"`
}

// Response types

type VotersResponse struct {
	Voters []VoterStatus `json:"voters"`
}

type CandidatesResponse struct {
	Candidates []Candidate `json:"candidates"`
}

type VotesResponse struct {
	Votes []Vote `json:"votes"`
}

type SectionsResponse struct {
	Sections []Section `json:"sections"`
}

type VoterResponse struct {
	Success bool        `json:"success"`
	Voter   VoterStatus `json:"voter"`
}

// VoterIdentity is the reduced voter view returned on login.
type VoterIdentity struct {
	VoterID string `json:"voterId"`
	Name    string `json:"name"`
}

type VoterLoginResponse struct {
	Success bool          `json:"success"`
	Voter   VoterIdentity `json:"voter"`
}

type AddCandidateResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	CandidateID int64  `json:"candidateId"`
}

type CreateSectionResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	SectionID int64  `json:"sectionId"`
}

// StatusResponse is the {success,message} body shared by mutations and errors.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
