package model

import (
	"time"
)

type UserRole string

const (
	Admin             UserRole = "admin"
	ComplianceOfficer UserRole = "compliance_officer"
	Employee          UserRole = "employee"
)

func (r UserRole) Valid() bool {
	switch r {
	case Admin, ComplianceOfficer, Employee:
		return true
	}
	return false
}

type Department string

const (
	DepartmentHR         Department = "hr"
	DepartmentIT         Department = "it"
	DepartmentFinance    Department = "finance"
	DepartmentMarketing  Department = "marketing"
	DepartmentOperations Department = "operations"
)

func (d Department) Valid() bool {
	switch d {
	case DepartmentHR, DepartmentIT, DepartmentFinance, DepartmentMarketing, DepartmentOperations:
		return true
	}
	return false
}

// swagger:model User
type User struct {
	UUIDBase
	FullName   string      `gorm:"size:100;not null" json:"fullName"`
	Email      string      `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password   string      `gorm:"size:100;not null" json:"-"`
	Role       UserRole    `gorm:"size:32;default:'employee'" json:"role"`
	Department *Department `gorm:"size:32" json:"department,omitempty"`
	AvatarURL  string      `gorm:"size:255" json:"avatarUrl"`
	LastLogin  *time.Time  `json:"lastLogin,omitempty"`
}

func (User) TableName() string {
	return "users"
}
