package domain

import "fmt"

type TaskKind string

var (
	TaskKindProspecting TaskKind = "prospecting"
	TaskKindEnrichment  TaskKind = "enrichment"
	TaskKindQualify     TaskKind = "qualify"
	TaskKindPersonalize TaskKind = "personalize"
)

func ParseTaskKind(s string) (TaskKind, error) {
	switch TaskKind(s) {
	case TaskKindProspecting, TaskKindEnrichment, TaskKindQualify, TaskKindPersonalize:
		return TaskKind(s), nil
	}
	return "", fmt.Errorf("unknown task kind %q", s)
}

// TaskDescriptor is the structured form of a user's intent, produced by the
// intent parser. It is immutable once parsed; one descriptor drives one dispatch.
// A descriptor with no kinds is a conversational reply carried in Response.
type TaskDescriptor struct {
	Kinds        []TaskKind
	Industry     string
	Location     string
	MinEmployees int
	NumCompanies int
	SendEmails   bool
	LeadIDs      []string
	Confirmation string
	Response     string
}

func (d TaskDescriptor) IsConversational() bool {
	return len(d.Kinds) == 0
}
