// ABOUTME: Closed enumerations for account, contact, opportunity and initiative fields
// ABOUTME: Unrecognized values are rejected on decode as data corruption
package models

import (
	"encoding/json"
	"fmt"

	"github.com/harperreed/keyaccounts/crmerr"
)

type AccountStatus string

const (
	AccountActive   AccountStatus = "Active"
	AccountProspect AccountStatus = "Prospect"
	AccountAtRisk   AccountStatus = "At Risk"
)

type AccountPriority string

const (
	PriorityHigh   AccountPriority = "High"
	PriorityMedium AccountPriority = "Medium"
	PriorityLow    AccountPriority = "Low"
)

type ContactRole string

const (
	RoleDecisionMaker    ContactRole = "Decision Maker"
	RoleInfluencer       ContactRole = "Influencer"
	RoleUser             ContactRole = "User"
	RoleTechnicalContact ContactRole = "Technical Contact"
)

type OpportunityStage string

const (
	StageQualification       OpportunityStage = "Qualification"
	StageDiscovery           OpportunityStage = "Discovery"
	StageSolutionDevelopment OpportunityStage = "Solution Development"
	StageProposal            OpportunityStage = "Proposal"
	StageNegotiation         OpportunityStage = "Negotiation"
	StageClosedWon           OpportunityStage = "Closed Won"
	StageClosedLost          OpportunityStage = "Closed Lost"
)

type OpportunityStatus string

const (
	OpportunityActive OpportunityStatus = "Active"
	OpportunityOnHold OpportunityStatus = "On Hold"
	OpportunityClosed OpportunityStatus = "Closed"
)

type BusinessOutcome string

const (
	OutcomeIncreaseRevenue BusinessOutcome = "Increase Revenue"
	OutcomeCutCosts        BusinessOutcome = "Cut Costs"
	OutcomeManageRisk      BusinessOutcome = "Manage Risk"
)

type InitiativeStatus string

const (
	InitiativeNotStarted InitiativeStatus = "Not Started"
	InitiativeInProgress InitiativeStatus = "In Progress"
	InitiativeCompleted  InitiativeStatus = "Completed"
	InitiativeOnHold     InitiativeStatus = "On Hold"
)

var (
	accountStatuses     = []AccountStatus{AccountActive, AccountProspect, AccountAtRisk}
	accountPriorities   = []AccountPriority{PriorityHigh, PriorityMedium, PriorityLow}
	contactRoles        = []ContactRole{RoleDecisionMaker, RoleInfluencer, RoleUser, RoleTechnicalContact}
	opportunityStages   = []OpportunityStage{StageQualification, StageDiscovery, StageSolutionDevelopment, StageProposal, StageNegotiation, StageClosedWon, StageClosedLost}
	opportunityStatuses = []OpportunityStatus{OpportunityActive, OpportunityOnHold, OpportunityClosed}
	businessOutcomes    = []BusinessOutcome{OutcomeIncreaseRevenue, OutcomeCutCosts, OutcomeManageRisk}
	initiativeStatuses  = []InitiativeStatus{InitiativeNotStarted, InitiativeInProgress, InitiativeCompleted, InitiativeOnHold}
)

// Stages returns the pipeline stages in board order.
func Stages() []OpportunityStage {
	return append([]OpportunityStage(nil), opportunityStages...)
}

func AccountStatuses() []AccountStatus       { return append([]AccountStatus(nil), accountStatuses...) }
func AccountPriorities() []AccountPriority   { return append([]AccountPriority(nil), accountPriorities...) }
func ContactRoles() []ContactRole            { return append([]ContactRole(nil), contactRoles...) }
func BusinessOutcomes() []BusinessOutcome    { return append([]BusinessOutcome(nil), businessOutcomes...) }
func InitiativeStatuses() []InitiativeStatus { return append([]InitiativeStatus(nil), initiativeStatuses...) }

func oneOf[T ~string](v T, allowed []T) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func parseEnum[T ~string](field, raw string, allowed []T) (T, error) {
	v := T(raw)
	if !oneOf(v, allowed) {
		return "", crmerr.Validation(field, "unrecognized %s %q", field, raw)
	}
	return v, nil
}

// decodeEnum accepts the empty string as "unset" so callers can apply defaults.
func decodeEnum[T ~string](data []byte, field string, allowed []T, dst *T) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if raw == "" {
		*dst = ""
		return nil
	}
	v, err := parseEnum(field, raw, allowed)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func (s AccountStatus) Valid() bool     { return oneOf(s, accountStatuses) }
func (p AccountPriority) Valid() bool   { return oneOf(p, accountPriorities) }
func (r ContactRole) Valid() bool       { return oneOf(r, contactRoles) }
func (s OpportunityStage) Valid() bool  { return oneOf(s, opportunityStages) }
func (s OpportunityStatus) Valid() bool { return oneOf(s, opportunityStatuses) }
func (o BusinessOutcome) Valid() bool   { return oneOf(o, businessOutcomes) }
func (s InitiativeStatus) Valid() bool  { return oneOf(s, initiativeStatuses) }

func ParseAccountStatus(raw string) (AccountStatus, error) {
	return parseEnum("account status", raw, accountStatuses)
}

func ParseAccountPriority(raw string) (AccountPriority, error) {
	return parseEnum("account priority", raw, accountPriorities)
}

func ParseContactRole(raw string) (ContactRole, error) {
	return parseEnum("contact role", raw, contactRoles)
}

func ParseOpportunityStage(raw string) (OpportunityStage, error) {
	return parseEnum("opportunity stage", raw, opportunityStages)
}

func ParseOpportunityStatus(raw string) (OpportunityStatus, error) {
	return parseEnum("opportunity status", raw, opportunityStatuses)
}

func ParseBusinessOutcome(raw string) (BusinessOutcome, error) {
	return parseEnum("business outcome", raw, businessOutcomes)
}

func ParseInitiativeStatus(raw string) (InitiativeStatus, error) {
	return parseEnum("initiative status", raw, initiativeStatuses)
}

func (s *AccountStatus) UnmarshalJSON(b []byte) error {
	return decodeEnum(b, "account status", accountStatuses, s)
}

func (p *AccountPriority) UnmarshalJSON(b []byte) error {
	return decodeEnum(b, "account priority", accountPriorities, p)
}

func (r *ContactRole) UnmarshalJSON(b []byte) error {
	return decodeEnum(b, "contact role", contactRoles, r)
}

func (s *OpportunityStage) UnmarshalJSON(b []byte) error {
	return decodeEnum(b, "opportunity stage", opportunityStages, s)
}

func (s *OpportunityStatus) UnmarshalJSON(b []byte) error {
	return decodeEnum(b, "opportunity status", opportunityStatuses, s)
}

func (o *BusinessOutcome) UnmarshalJSON(b []byte) error {
	return decodeEnum(b, "business outcome", businessOutcomes, o)
}

func (s *InitiativeStatus) UnmarshalJSON(b []byte) error {
	return decodeEnum(b, "initiative status", initiativeStatuses, s)
}
