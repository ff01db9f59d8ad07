package models

import "time"

// Actors stamped on rows created without an interactive user.
const (
	ActorSystem    = "SYSTEM"
	ActorMigration = "MIGRATION"
)

// User is a canonical user account.
type User struct {
	ID         int64      `json:"id" bson:"_id"`
	Login      string     `json:"login" bson:"login"`
	Name       string     `json:"name" bson:"name"`
	Email      string     `json:"email" bson:"email"`
	Area       string     `json:"area" bson:"area"`
	Title      string     `json:"title,omitempty" bson:"title,omitempty"`
	Phone      string     `json:"phone,omitempty" bson:"phone,omitempty"`
	IsAdmin    bool       `json:"isAdmin" bson:"isAdmin"`
	CanApprove bool       `json:"canApprove" bson:"canApprove"`
	Active     bool       `json:"active" bson:"active"`
	CreatedAt  time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
	CreatedBy  string     `json:"createdBy" bson:"createdBy"`
	UpdatedBy  string     `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
}

// Classification is the kind of table a change request targets.
type Classification string

const (
	ClassificationPCT Classification = "PCT"
)

// RequestStatus is the workflow state of a change request.
type RequestStatus string

const (
	StatusPending     RequestStatus = "Pending"
	StatusApproved    RequestStatus = "Approved"
	StatusRejected    RequestStatus = "Rejected"
	StatusImplemented RequestStatus = "Implemented"
)

// DefaultPriority is the medium priority used for migrated requests.
const DefaultPriority = 3

// Request is a canonical change request.
type Request struct {
	ID             int64          `json:"id" bson:"_id"`
	Number         string         `json:"number" bson:"number"`
	Title          string         `json:"title" bson:"title"`
	Description    string         `json:"description" bson:"description"`
	Justification  string         `json:"justification" bson:"justification"`
	Classification Classification `json:"classification" bson:"classification"`
	Status         RequestStatus  `json:"status" bson:"status"`
	Priority       int            `json:"priority" bson:"priority"`
	Requester      string         `json:"requester" bson:"requester"`
	RequesterArea  string         `json:"requesterArea" bson:"requesterArea"`
	EnvironmentID  int64          `json:"environmentId" bson:"environmentId"`
	UserID         *int64         `json:"userId,omitempty" bson:"userId,omitempty"`
	Active         bool           `json:"active" bson:"active"`
	CreatedAt      time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt      *time.Time     `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
	CreatedBy      string         `json:"createdBy" bson:"createdBy"`
	UpdatedBy      string         `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
}

// EnvironmentType orders environments from development to production.
type EnvironmentType int

const (
	EnvDevelopment EnvironmentType = iota + 1
	EnvTest
	EnvStaging
	EnvProduction
)

// Environment is a deployment target a request is linked to.
type Environment struct {
	ID          int64           `json:"id" bson:"_id"`
	Name        string          `json:"name" bson:"name"`
	Description string          `json:"description" bson:"description"`
	Type        EnvironmentType `json:"type" bson:"type"`
	Server      string          `json:"server" bson:"server"`
	Port        *int            `json:"port,omitempty" bson:"port,omitempty"`
	CICSRegion  string          `json:"cicsRegion" bson:"cicsRegion"`
	Active      bool            `json:"active" bson:"active"`
	CreatedAt   time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt   *time.Time      `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
	CreatedBy   string          `json:"createdBy" bson:"createdBy"`
	UpdatedBy   string          `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
}
