package model

import (
	"time"

	"github.com/google/uuid"
)

type AlertStatus string

const (
	AlertRead   AlertStatus = "read"
	AlertUnread AlertStatus = "unread"
)

type Alert struct {
	Base
	UserID uuid.UUID   `json:"userId" db:"user_id"`
	Title  string      `json:"title" db:"title"`
	Status AlertStatus `json:"status" db:"status"`
}

type DiagnosticTest struct {
	Base
	UserID uuid.UUID `json:"userId" db:"user_id"`
	Name   string    `json:"name" db:"name"`
	Result string    `json:"result" db:"result"`
	Date   time.Time `json:"date" db:"date"`
}

type DiagnosticTestRequest struct {
	Name   string    `json:"name" binding:"required"`
	Result string    `json:"result" binding:"required"`
	Date   time.Time `json:"date" binding:"required"`
}

type VitalStatus string

const (
	VitalsNormal   VitalStatus = "Normal"
	VitalsWarning  VitalStatus = "Warning"
	VitalsCritical VitalStatus = "Critical"
)

type Vitals struct {
	HeartRate   float64  `json:"heartRate" binding:"required,gt=0"`
	BloodOxygen float64  `json:"bloodOxygen" binding:"required,gt=0,lte=100"`
	Temperature *float64 `json:"temperature,omitempty" binding:"omitempty,gt=0"`
}

type VitalsAnalysis struct {
	Status   VitalStatus `json:"status" validate:"required,oneof=Normal Warning Critical"`
	Analysis string      `json:"analysis" validate:"required"`
}
