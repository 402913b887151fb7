package models

import "time"

// Record status used by mills, loading points, haulage companies and devices
const (
	RecordActive   = "Active"
	RecordInactive = "Inactive"
)

// Mill is a sugar-processing facility that owns loading points
type Mill struct {
	ID          string    `json:"id"`
	MillCode    string    `json:"millCode" validate:"required,max=40"`
	MillName    string    `json:"millName" validate:"required,max=200"`
	FocalPerson string    `json:"focalPerson" validate:"required,max=200"`
	CNIC        string    `json:"cnic" validate:"max=30"`
	Phone       string    `json:"phone" validate:"required,max=30"`
	Email       string    `json:"email" validate:"omitempty,email,max=255"`
	Address     string    `json:"address"`
	Status      string    `json:"status" validate:"omitempty,oneof=Active Inactive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LoadingPoint is a geofenced place where vehicles are loaded
type LoadingPoint struct {
	ID        string    `json:"id"`
	MillID    string    `json:"millId" validate:"required"`
	Name      string    `json:"name" validate:"required,max=200"`
	Latitude  float64   `json:"latitude" validate:"latitude"`
	Longitude float64   `json:"longitude" validate:"longitude"`
	RadiusM   float64   `json:"radius" validate:"gt=0"`
	Status    string    `json:"status" validate:"omitempty,oneof=Active Inactive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Haulage is a transport company moving cane between loading points and mills
type Haulage struct {
	ID           string    `json:"id"`
	Name         string    `json:"name" validate:"required,max=200"`
	ContactName  string    `json:"contactName" validate:"max=200"`
	Phone        string    `json:"phone" validate:"required,max=30"`
	VehicleCount int       `json:"vehicleCount" validate:"gte=0"`
	Status       string    `json:"status" validate:"omitempty,oneof=Active Inactive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Device is a handset registered to a loading point, addressed by IMEI
type Device struct {
	ID             string    `json:"id"`
	IMEI           string    `json:"imei" validate:"required,numeric,len=15"`
	MillID         string    `json:"millId" validate:"required"`
	LoadingPointID string    `json:"loadingPointId"`
	Label          string    `json:"label" validate:"max=200"`
	Status         string    `json:"status" validate:"omitempty,oneof=Active Inactive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
