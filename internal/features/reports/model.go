package reports

import (
	"encoding/json"
	"time"
)

// Identity says who filed a report. It is either Anonymous or Disclosed; the
// persisted document only carries student fields for Disclosed.
type Identity interface {
	isIdentity()
}

// Anonymous is the identity of a report filed without a name.
type Anonymous struct{}

// Disclosed is the identity of a report whose author chose to give their name.
type Disclosed struct {
	Name    string
	Contact string
}

func (Anonymous) isIdentity() {}
func (Disclosed) isIdentity() {}

// AIAnalysis is the triage bundle attached to a report.
type AIAnalysis struct {
	Urgency         Urgency `firestore:"urgency" bson:"urgency" json:"urgency" example:"Trung bình"`
	Summary         string  `firestore:"summary" bson:"summary" json:"summary"`
	SuggestedAction string  `firestore:"suggestedAction" bson:"suggestedAction" json:"suggestedAction"`
	EducationalNote string  `firestore:"educationalNote" bson:"educationalNote" json:"educationalNote"`
}

// Report is one submitted incident.
type Report struct {
	ID           string
	Title        string
	Description  string
	Category     Category
	Location     string
	ClassGroup   string
	Timestamp    int64
	ServerTime   time.Time
	Status       Status
	Identity     Identity
	AIAnalysis   *AIAnalysis
	TrackingCode string
	AdminReply   string
	CreatedBy    string
	SchoolName   string
	EvidenceURL  string
}

// Anonymous reports whether the report hides its author.
func (r *Report) Anonymous() bool {
	_, disclosed := r.Identity.(Disclosed)
	return !disclosed
}

// Clone returns a copy that shares no mutable state with r.
func (r *Report) Clone() *Report {
	cp := *r
	if r.AIAnalysis != nil {
		a := *r.AIAnalysis
		cp.AIAnalysis = &a
	}
	return &cp
}

// Record is the stored and wire shape of a report. Identity fields are only
// populated for disclosed reports and are omitted otherwise.
// @Description Incident report as stored and returned by the API
type Record struct {
	ID             string      `firestore:"-" bson:"-" json:"id" example:"Jx81kQ2"`
	Title          string      `firestore:"title" bson:"title" json:"title" example:"Broken window in 7B"`
	Description    string      `firestore:"description" bson:"description" json:"description"`
	Category       Category    `firestore:"category" bson:"category" json:"category" example:"Cơ sở vật chất"`
	Location       string      `firestore:"location" bson:"location" json:"location"`
	ClassGroup     string      `firestore:"classGroup" bson:"classGroup" json:"classGroup" example:"7B"`
	Timestamp      int64       `firestore:"timestamp" bson:"timestamp" json:"timestamp"`
	ServerTime     time.Time   `firestore:"serverTime,serverTimestamp" bson:"serverTime" json:"serverTime"`
	Status         Status      `firestore:"status" bson:"status" json:"status" example:"Chờ xử lý"`
	Anonymous      bool        `firestore:"anonymous" bson:"anonymous" json:"anonymous"`
	StudentName    string      `firestore:"studentName,omitempty" bson:"studentName,omitempty" json:"studentName,omitempty"`
	StudentContact string      `firestore:"studentContact,omitempty" bson:"studentContact,omitempty" json:"studentContact,omitempty"`
	AIAnalysis     *AIAnalysis `firestore:"aiAnalysis,omitempty" bson:"aiAnalysis,omitempty" json:"aiAnalysis,omitempty"`
	TrackingCode   string      `firestore:"trackingCode,omitempty" bson:"trackingCode,omitempty" json:"trackingCode,omitempty" example:"K7Q2ZD"`
	AdminReply     string      `firestore:"adminReply,omitempty" bson:"adminReply,omitempty" json:"adminReply,omitempty"`
	CreatedBy      string      `firestore:"createdBy,omitempty" bson:"createdBy,omitempty" json:"-"`
	SchoolName     string      `firestore:"schoolName,omitempty" bson:"schoolName,omitempty" json:"schoolName,omitempty"`
	EvidenceURL    string      `firestore:"evidenceUrl,omitempty" bson:"evidenceUrl,omitempty" json:"evidenceUrl,omitempty"`
}

// Record converts the report to its stored shape.
func (r *Report) Record() Record {
	rec := Record{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		Category:     r.Category,
		Location:     r.Location,
		ClassGroup:   r.ClassGroup,
		Timestamp:    r.Timestamp,
		ServerTime:   r.ServerTime,
		Status:       r.Status,
		Anonymous:    true,
		TrackingCode: r.TrackingCode,
		AdminReply:   r.AdminReply,
		CreatedBy:    r.CreatedBy,
		SchoolName:   r.SchoolName,
		EvidenceURL:  r.EvidenceURL,
	}
	if d, ok := r.Identity.(Disclosed); ok {
		rec.Anonymous = false
		rec.StudentName = d.Name
		rec.StudentContact = d.Contact
	}
	if r.AIAnalysis != nil {
		a := *r.AIAnalysis
		rec.AIAnalysis = &a
	}
	return rec
}

// Report converts a stored record back to the domain type. A record flagged
// anonymous never yields student details, even if a stray field is present.
func (rec Record) Report() *Report {
	r := &Report{
		ID:           rec.ID,
		Title:        rec.Title,
		Description:  rec.Description,
		Category:     rec.Category,
		Location:     rec.Location,
		ClassGroup:   rec.ClassGroup,
		Timestamp:    rec.Timestamp,
		ServerTime:   rec.ServerTime,
		Status:       rec.Status,
		Identity:     Anonymous{},
		TrackingCode: rec.TrackingCode,
		AdminReply:   rec.AdminReply,
		CreatedBy:    rec.CreatedBy,
		SchoolName:   rec.SchoolName,
		EvidenceURL:  rec.EvidenceURL,
	}
	if !rec.Anonymous {
		r.Identity = Disclosed{Name: rec.StudentName, Contact: rec.StudentContact}
	}
	if rec.AIAnalysis != nil {
		a := *rec.AIAnalysis
		r.AIAnalysis = &a
	}
	return r
}

func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Record())
}

func (r *Report) UnmarshalJSON(data []byte) error {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	*r = *rec.Report()
	return nil
}

// TrackingView is what an anonymous tracker sees for their code. It never
// includes the student's name or contact.
// @Description Report status as seen through a tracking code
type TrackingView struct {
	TrackingCode  string   `json:"trackingCode" example:"K7Q2ZD"`
	Title         string   `json:"title"`
	Category      Category `json:"category"`
	Status        Status   `json:"status"`
	Timestamp     int64    `json:"timestamp"`
	AdminReply    string   `json:"adminReply,omitempty"`
	AwaitingReply bool     `json:"awaitingReply"`
}

func (r *Report) TrackingView() TrackingView {
	return TrackingView{
		TrackingCode:  r.TrackingCode,
		Title:         r.Title,
		Category:      r.Category,
		Status:        r.Status,
		Timestamp:     r.Timestamp,
		AdminReply:    r.AdminReply,
		AwaitingReply: r.AdminReply == "",
	}
}

// SubmitRequest is the student submission payload.
// @Description Data required to submit an incident report
type SubmitRequest struct {
	Title          string `json:"title" binding:"required" example:"Bị bắt nạt ở căng tin"`
	Description    string `json:"description" binding:"required"`
	Category       string `json:"category" binding:"required" example:"health"`
	Location       string `json:"location" example:"Căng tin"`
	ClassGroup     string `json:"classGroup" example:"7b"`
	Anonymous      bool   `json:"anonymous" example:"true"`
	StudentName    string `json:"studentName,omitempty"`
	StudentContact string `json:"studentContact,omitempty"`
	EvidenceURL    string `json:"evidenceUrl,omitempty"`
}

// SubmitResponse is returned to the submitter.
type SubmitResponse struct {
	ID           string `json:"id"`
	TrackingCode string `json:"trackingCode" example:"K7Q2ZD"`
	Status       Status `json:"status"`
}

// UpdateStatusRequest is the payload of a status change.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required" example:"processing"`
}

// ReplyRequest is the payload of an admin reply.
type ReplyRequest struct {
	Reply string `json:"reply"`
}
