package types

// ProjectStatus enumerates the project lifecycle states.
type ProjectStatus string

const (
	ProjectStatusPlanned            ProjectStatus = "planned"
	ProjectStatusProgrammed         ProjectStatus = "programmed"
	ProjectStatusPreliminaryOrdered ProjectStatus = "preliminaryOrdered"
	ProjectStatusFinalOrdered       ProjectStatus = "finalOrdered"
	ProjectStatusPostponed          ProjectStatus = "postponed"
	ProjectStatusReplanned          ProjectStatus = "replanned"
	ProjectStatusCanceled           ProjectStatus = "canceled"
)

// InterventionStatus enumerates the intervention lifecycle states. The empty
// string stands for "not yet created".
type InterventionStatus string

const (
	InterventionStatusNone       InterventionStatus = ""
	InterventionStatusWished     InterventionStatus = "wished"
	InterventionStatusWaiting    InterventionStatus = "waiting"
	InterventionStatusRefused    InterventionStatus = "refused"
	InterventionStatusAccepted   InterventionStatus = "accepted"
	InterventionStatusIntegrated InterventionStatus = "integrated"
	InterventionStatusCanceled   InterventionStatus = "canceled"
)

// DecisionType identifies the audited action a decision records.
type DecisionType string

const (
	DecisionTypeAccepted              DecisionType = "accepted"
	DecisionTypeRefused               DecisionType = "refused"
	DecisionTypeReturned              DecisionType = "returned"
	DecisionTypeRevisionRequest       DecisionType = "revisionRequest"
	DecisionTypeCanceled              DecisionType = "canceled"
	DecisionTypePostponed             DecisionType = "postponed"
	DecisionTypeReplanned             DecisionType = "replanned"
	DecisionTypeRemoveFromProgramBook DecisionType = "removeFromProgramBook"
)

// ProgramBookStatus enumerates program book workflow states.
type ProgramBookStatus string

const (
	ProgramBookStatusNew                  ProgramBookStatus = "new"
	ProgramBookStatusProgramming          ProgramBookStatus = "programming"
	ProgramBookStatusSubmittedPreliminary ProgramBookStatus = "submittedPreliminary"
	ProgramBookStatusSubmittedFinal       ProgramBookStatus = "submittedFinal"
)

// AnnualProgramStatus is derived from the statuses of the owned program books.
type AnnualProgramStatus string

const (
	AnnualProgramStatusNew            AnnualProgramStatus = "new"
	AnnualProgramStatusProgramming    AnnualProgramStatus = "programming"
	AnnualProgramStatusSubmittedFinal AnnualProgramStatus = "submittedFinal"
)

// Project type ids that drive intervention integration and distribution kind.
const (
	ProjectTypeIntegrated    = "integrated"
	ProjectTypeIntegratedGP  = "integratedgp"
	ProjectTypeNonIntegrated = "nonIntegrated"
	ProjectTypeOther         = "other"
)

// DistributionKind is resolved once per project and passed explicitly; there
// is no runtime type test anywhere downstream.
type DistributionKind string

const (
	DistributionKindGeolocated    DistributionKind = "geolocated"
	DistributionKindNonGeolocated DistributionKind = "nonGeolocated"
)
