package model

import (
	"time"

	"github.com/google/uuid"
)

type VerificationStatus string

const (
	VerificationNotStarted VerificationStatus = "not-started"
	VerificationInProgress VerificationStatus = "in-progress"
	VerificationOnHold     VerificationStatus = "on-hold"
	VerificationCompleted  VerificationStatus = "completed"
	VerificationFailed     VerificationStatus = "failed"
)

func (s VerificationStatus) Terminal() bool {
	return s == VerificationCompleted || s == VerificationFailed
}

// VerificationStep is one entry of the fixed background check list.
type VerificationStep string

const (
	StepDocumentCollection VerificationStep = "document-collection"
	StepIdentity           VerificationStep = "identity"
	StepEmployment         VerificationStep = "employment"
	StepEducation          VerificationStep = "education"
	StepReferences         VerificationStep = "references"
	StepCriminalBackground VerificationStep = "criminal-background"
	StepFinalReview        VerificationStep = "final-review"
)

// VerificationSteps is the ordered checklist; StepIndex points into it.
var VerificationSteps = []VerificationStep{
	StepDocumentCollection,
	StepIdentity,
	StepEmployment,
	StepEducation,
	StepReferences,
	StepCriminalBackground,
	StepFinalReview,
}

type DocumentType string

const (
	DocResume               DocumentType = "resume"
	DocIDProof              DocumentType = "id-proof"
	DocAddressProof         DocumentType = "address-proof"
	DocEducationCertificate DocumentType = "education-certificate"
	DocExperienceLetter     DocumentType = "experience-letter"
	DocOfferLetter          DocumentType = "offer-letter"
	DocSalarySlip           DocumentType = "salary-slip"
	DocOther                DocumentType = "other"
)

// RequiredDocuments must all be verified before a session can complete.
var RequiredDocuments = []DocumentType{DocResume, DocIDProof}

func (t DocumentType) IsValid() bool {
	switch t {
	case DocResume, DocIDProof, DocAddressProof, DocEducationCertificate,
		DocExperienceLetter, DocOfferLetter, DocSalarySlip, DocOther:
		return true
	default:
		return false
	}
}

func (t DocumentType) Required() bool {
	for _, req := range RequiredDocuments {
		if req == t {
			return true
		}
	}
	return false
}

type DocumentStatus string

const (
	DocumentUploaded    DocumentStatus = "uploaded"
	DocumentUnderReview DocumentStatus = "under-review"
	DocumentVerified    DocumentStatus = "verified"
	DocumentRejected    DocumentStatus = "rejected"
)

func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentUploaded, DocumentUnderReview, DocumentVerified, DocumentRejected:
		return true
	default:
		return false
	}
}

// DocumentRecord holds metadata only; the file lives behind StorageURL.
type DocumentRecord struct {
	ID         uuid.UUID      `json:"id"`
	Type       DocumentType   `json:"type"`
	Status     DocumentStatus `json:"status"`
	StorageURL string         `json:"storage_url"`
	Pages      int            `json:"pages,omitempty"`
	UploadedAt time.Time      `json:"uploaded_at"`
	ReviewedAt *time.Time     `json:"reviewed_at,omitempty"`
}

type VerificationSession struct {
	ID                  uuid.UUID          `json:"id"`
	CandidateID         uuid.UUID          `json:"candidate_id"`
	Visit               int                `json:"visit"`
	Status              VerificationStatus `json:"status"`
	VerificationPartner string             `json:"verification_partner"`
	SLADate             *time.Time         `json:"sla_date,omitempty"`
	StepIndex           int                `json:"step_index"`
	Documents           []DocumentRecord   `json:"documents"`
	Notes               []string           `json:"notes,omitempty"`
	FailureReason       string             `json:"failure_reason,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
	CompletedAt         *time.Time         `json:"completed_at,omitempty"`
}

// Step is the checklist entry StepIndex points at.
func (v *VerificationSession) Step() VerificationStep {
	if v.StepIndex < 0 || v.StepIndex >= len(VerificationSteps) {
		return ""
	}
	return VerificationSteps[v.StepIndex]
}

// AtLastStep reports whether the session is on the final checklist entry.
func (v *VerificationSession) AtLastStep() bool {
	return v.StepIndex == len(VerificationSteps)-1
}

// Document returns the latest record of the given type.
func (v *VerificationSession) Document(t DocumentType) (DocumentRecord, bool) {
	for i := len(v.Documents) - 1; i >= 0; i-- {
		if v.Documents[i].Type == t {
			return v.Documents[i], true
		}
	}
	return DocumentRecord{}, false
}

func (v VerificationSession) Clone() VerificationSession {
	out := v
	out.SLADate = clonePtr(v.SLADate)
	out.CompletedAt = clonePtr(v.CompletedAt)
	out.Documents = make([]DocumentRecord, len(v.Documents))
	for i, doc := range v.Documents {
		out.Documents[i] = doc
		out.Documents[i].ReviewedAt = clonePtr(doc.ReviewedAt)
	}
	out.Notes = append([]string(nil), v.Notes...)
	return out
}
