package models

import "time"

// EntryStatus is the approval state of a cane delivery entry
type EntryStatus string

const (
	StatusPending  EntryStatus = "pending"
	StatusApproved EntryStatus = "approved"
	StatusRejected EntryStatus = "rejected"
)

// IsValid reports whether s is one of the known statuses
func (s EntryStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from s
func (s EntryStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransitionTo holds the approval state machine: pending -> approved | rejected
func (s EntryStatus) CanTransitionTo(next EntryStatus) bool {
	return s == StatusPending && next.IsTerminal()
}

// RegistrationDetails is the snapshot captured at the loading point
type RegistrationDetails struct {
	VehicleNumber      string   `json:"vehicleNumber"`
	RegistrationNumber string   `json:"registrationNumber"`
	PermitNumber       string   `json:"permitNumber"`
	VehicleType        string   `json:"vehicleType"`
	DriverName         string   `json:"driverName"`
	VehicleLocation    string   `json:"vehicleLocation"`
	Location           string   `json:"location"`
	Latitude           *float64 `json:"latitude,omitempty"`
	Longitude          *float64 `json:"longitude,omitempty"`
	VehiclePicture     string   `json:"vehiclePicture,omitempty"`
	PermitPicture      string   `json:"permitPicture,omitempty"`
	DriverPicture      string   `json:"driverPicture,omitempty"`
}

// ArrivalDetails is the snapshot captured at the mill gate
type ArrivalDetails struct {
	VehicleNumber      string `json:"vehicleNumber"`
	RegistrationNumber string `json:"registrationNumber"`
	ArrivalTime        string `json:"arrivalTime"`
	ArrivalLocation    string `json:"arrivalLocation"`
	Location           string `json:"location"`
	VehiclePicture     string `json:"vehiclePicture,omitempty"`
	PermitPicture      string `json:"permitPicture,omitempty"`
	DriverPicture      string `json:"driverPicture,omitempty"`
}

// Entry is one cane delivery tracked from registration through approval
type Entry struct {
	ID                 string `json:"id"`
	VehicleNumber      string `json:"vehicleNumber"`
	RegistrationNumber string `json:"registrationNumber"`
	PermitNumber       string `json:"permitNumber"`
	VehicleType        string `json:"vehicleType"`
	DriverName         string `json:"driverName"`

	MillID         string `json:"millId,omitempty"`
	LoadingPointID string `json:"loadingPointId,omitempty"`
	DeviceID       string `json:"deviceId,omitempty"`

	Registration RegistrationDetails `json:"registrationDetails"`
	Arrival      *ArrivalDetails     `json:"arrivalDetails"`

	Status          EntryStatus `json:"status"`
	CreatedBy       string      `json:"createdBy,omitempty"`
	DecidedBy       string      `json:"decidedBy,omitempty"`
	DecisionRemarks string      `json:"decisionRemarks,omitempty"`

	ArrivalAttachedAt *time.Time `json:"arrivalAttachedAt,omitempty"`
	DecidedAt         *time.Time `json:"decidedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// HasArrival reports whether the mill gate stage has been recorded
func (e *Entry) HasArrival() bool {
	return e.Arrival != nil
}

// Clone returns a deep copy so callers cannot mutate stored snapshots
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	c := *e
	if e.Registration.Latitude != nil {
		lat := *e.Registration.Latitude
		c.Registration.Latitude = &lat
	}
	if e.Registration.Longitude != nil {
		lng := *e.Registration.Longitude
		c.Registration.Longitude = &lng
	}
	if e.Arrival != nil {
		a := *e.Arrival
		c.Arrival = &a
	}
	if e.ArrivalAttachedAt != nil {
		t := *e.ArrivalAttachedAt
		c.ArrivalAttachedAt = &t
	}
	if e.DecidedAt != nil {
		t := *e.DecidedAt
		c.DecidedAt = &t
	}
	return &c
}

// Decision carries the reviewer action applied by the approval state machine
type Decision struct {
	Status    EntryStatus
	DecidedBy string
	Remarks   string
	DecidedAt time.Time
}

// EntryFilter narrows entry listings. Zero values mean "any".
type EntryFilter struct {
	MillID         string
	LoadingPointID string
	Status         EntryStatus
	VehicleNumber  string
	DeviceID       string
	Limit          int
	Offset         int
}

// EntryStats are the dashboard counters per status
type EntryStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// RegistrationRequest is the body submitted by the registration stage
type RegistrationRequest struct {
	VehicleNumber      string   `json:"vehicleNumber" validate:"required,max=40"`
	RegistrationNumber string   `json:"registrationNumber" validate:"required,max=60"`
	PermitNumber       string   `json:"permitNumber" validate:"required,max=60"`
	VehicleType        string   `json:"vehicleType" validate:"required,max=60"`
	DriverName         string   `json:"driverName" validate:"required,max=200"`
	Location           string   `json:"location" validate:"required"`
	VehicleLocation    string   `json:"vehicleLocation"`
	Latitude           *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude          *float64 `json:"longitude" validate:"omitempty,longitude"`
	VehiclePicture     string   `json:"vehiclePicture" validate:"omitempty,url"`
	PermitPicture      string   `json:"permitPicture" validate:"omitempty,url"`
	DriverPicture      string   `json:"driverPicture" validate:"omitempty,url"`
	MillID             string   `json:"millId"`
	LoadingPointID     string   `json:"loadingPointId"`
	DeviceID           string   `json:"deviceId"`
}

// ArrivalRequest is the body submitted by the mill gate stage
type ArrivalRequest struct {
	VehicleNumber      string `json:"vehicleNumber" validate:"required,max=40"`
	RegistrationNumber string `json:"registrationNumber" validate:"required,max=60"`
	ArrivalTime        string `json:"arrivalTime"`
	ArrivalLocation    string `json:"arrivalLocation"`
	Location           string `json:"location"`
	VehiclePicture     string `json:"vehiclePicture" validate:"omitempty,url"`
	PermitPicture      string `json:"permitPicture" validate:"omitempty,url"`
	DriverPicture      string `json:"driverPicture" validate:"omitempty,url"`
}

// StatusRequest is the body of a reviewer decision
type StatusRequest struct {
	Status  EntryStatus `json:"status"`
	Remarks string      `json:"remarks"`
}
