package models

import "testing"

func TestRoleType_ParseAndString(t *testing.T) {
	for _, rt := range []RoleType{RoleStudent, RoleTeacher, RoleParent, RoleAdministration} {
		got, err := ParseRoleType(rt.String())
		if err != nil {
			t.Fatal(err)
		}
		if got != rt {
			t.Fatalf("ожидали %v, получили %v", rt, got)
		}
	}
	if _, err := ParseRoleType("janitor"); err == nil {
		t.Fatal("ожидали ошибку для неизвестного типа")
	}
	if RoleType(9).Valid() {
		t.Fatal("9 не должен быть валидным типом")
	}
}

func TestRoleData_TagMatchesVariant(t *testing.T) {
	cases := map[RoleType]RoleData{
		RoleStudent:        StudentData{},
		RoleTeacher:        TeacherData{},
		RoleParent:         ParentData{},
		RoleAdministration: AdministrationData{},
	}
	for want, d := range cases {
		if d.Type() != want {
			t.Fatalf("%T: ожидали %v, получили %v", d, want, d.Type())
		}
	}
}

func TestMainRoleAndRoleOfType(t *testing.T) {
	roles := []Role{
		{ID: 1, Data: TeacherData{TeacherID: 7}},
		{ID: 2, IsMain: true, Data: ParentData{ParentID: 3}},
	}
	m, ok := MainRole(roles)
	if !ok || m.ID != 2 {
		t.Fatalf("главная роль: %+v %v", m, ok)
	}
	r, ok := RoleOfType(roles, RoleTeacher)
	if !ok || r.ID != 1 {
		t.Fatalf("роль учителя: %+v %v", r, ok)
	}
	if _, ok := RoleOfType(roles, RoleStudent); ok {
		t.Fatal("роли ученика нет")
	}
	if _, ok := MainRole(roles[:1]); ok {
		t.Fatal("у первой роли флаг main не стоит")
	}
}
