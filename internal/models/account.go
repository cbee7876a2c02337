package models

import (
	"fmt"
	"strings"
	"time"
)

type RoleType int16

const (
	RoleStudent RoleType = iota
	RoleTeacher
	RoleParent
	RoleAdministration
)

var roleNames = [...]string{"student", "teacher", "parent", "administration"}

func (t RoleType) String() string {
	if t < 0 || int(t) >= len(roleNames) {
		return fmt.Sprintf("role(%d)", int16(t))
	}
	return roleNames[t]
}

func (t RoleType) Valid() bool { return t >= RoleStudent && t <= RoleAdministration }

func ParseRoleType(s string) (RoleType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range roleNames {
		if n == s {
			return RoleType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown role type %q", s)
}

type Account struct {
	ID                int64
	TelegramID        int64
	PremiumStatus     int
	LastPaymentAt     *time.Time
	SubscriptionUntil *time.Time
}

func (a Account) Premium() bool { return a.PremiumStatus >= 1 }

// RoleData: полезная нагрузка роли. Ровно один из четырёх вариантов.
type RoleData interface {
	Type() RoleType
	isRoleData()
}

// StudentData: ученик; ParentID заполнен только у детей, добавленных родителем.
type StudentData struct {
	StudentID  int64
	SchoolID   int64
	SubclassID int64
	ParentID   *int64
}

// TeacherData указывает на строку справочника teachers, отдельной записи нет.
type TeacherData struct {
	TeacherID int64
}

type ParentData struct {
	ParentID int64
}

type AdministrationData struct {
	AdministrationID int64
	SchoolID         int64
}

func (StudentData) Type() RoleType        { return RoleStudent }
func (TeacherData) Type() RoleType        { return RoleTeacher }
func (ParentData) Type() RoleType         { return RoleParent }
func (AdministrationData) Type() RoleType { return RoleAdministration }

func (StudentData) isRoleData()        {}
func (TeacherData) isRoleData()        {}
func (ParentData) isRoleData()         {}
func (AdministrationData) isRoleData() {}

type Role struct {
	ID        int64
	AccountID int64
	IsMain    bool
	Data      RoleData
}

func (r Role) Type() RoleType { return r.Data.Type() }

// MainRole возвращает главную роль, если она есть.
func MainRole(roles []Role) (Role, bool) {
	for _, r := range roles {
		if r.IsMain {
			return r, true
		}
	}
	return Role{}, false
}

// RoleOfType возвращает роль заданного типа, если она есть.
func RoleOfType(roles []Role, t RoleType) (Role, bool) {
	for _, r := range roles {
		if r.Type() == t {
			return r, true
		}
	}
	return Role{}, false
}
