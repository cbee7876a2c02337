package httpapi

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failedFields(t *testing.T, err error) []string {
	t.Helper()
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	require.True(t, errors.As(err, &ve), "ожидали ValidationErrors, получили %v", err)
	out := make([]string, 0, len(ve))
	for _, fe := range ve {
		out = append(out, fieldPath(fe))
	}
	return out
}

func TestValidator_FieldBounds(t *testing.T) {
	v := newValidator()
	ptr := func(i int) *int { return &i }
	str := func(s string) *string { return &s }
	level := 13

	tests := []struct {
		name  string
		body  any
		field string // пусто: тело корректно
	}{
		{"school name too long", schoolBody{Name: strings.Repeat("ш", 201)}, "name"},
		{"school name too short", schoolBody{Name: "Лицей"}, "name"},
		{"school name in range", schoolBody{Name: strings.Repeat("ш", 200)}, ""},
		{"school patch too short", schoolPatch{Name: str("abc")}, "name"},
		{"corpus address too short", corpusBody{SchoolID: 1, Name: "Главный", Address: "ул. 1"}, "address"},
		{"corpus canteen too short", corpusBody{SchoolID: 1, Name: "Главный", Address: "ул. Ленина, 1", CanteenText: str("x")}, "canteen_text"},
		{"corpus ok", corpusBody{SchoolID: 1, Name: "Главный", Address: "ул. Ленина, 1", CanteenText: str("Борщ")}, ""},
		{"floor above range", cabinetBody{CorpusID: 1, Floor: 500, Name: "317"}, "floor"},
		{"floor lowest", cabinetBody{CorpusID: 1, Floor: -10, Name: "317"}, ""},
		{"floor patch above range", cabinetPatch{Floor: ptr(101)}, "floor"},
		{"floor patch zero", cabinetPatch{Floor: ptr(0)}, ""},
		{"cabinet too many tags", cabinetBody{CorpusID: 1, Name: "317", Tags: make([]string, 11)}, "tags"},
		{"teacher name too long", teacherBody{SchoolID: 1, Name: strings.Repeat("и", 201)}, "name"},
		{"level above range", subclassBody{SchoolID: 1, EducationalLevel: 40, Identificator: "А"}, "educational_level"},
		{"level patch above range", subclassPatch{EducationalLevel: ptr(13)}, "educational_level"},
		{"long identificator allowed", subclassBody{SchoolID: 1, EducationalLevel: 10, Identificator: "abcdefghij"}, ""},
		{"identificator too long", subclassBody{SchoolID: 1, EducationalLevel: 10, Identificator: strings.Repeat("a", 51)}, "identificator"},
		{"lesson number above range", lessonNumberBody{SchoolID: 1, Number: 50, TimeStart: "8:00", TimeEnd: "8:45"}, "number"},
		{"lesson number patch above range", lessonNumberPatch{Number: ptr(21)}, "number"},
		{"subject too short", lessonBody{CabinetID: 1, TeacherID: 1, LessonNumberID: 1, DayOfWeek: 1, Subject: "Ф", SubclassIDs: []int64{1}}, "subject"},
		{"subject patch too long", lessonPatch{Subject: str(strings.Repeat("ф", 201))}, "subject"},
		{"filter level above range", announcementBody{SchoolID: 1, Title: "t", Text: "x", Filters: []filterBody{{Type: "subclass", EducationalLevel: &level}}}, "filters[0].educational_level"},
		{"text broadcast too short", textBody{Text: "abc"}, "text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := failedFields(t, v.Struct(tt.body))
			if tt.field == "" {
				assert.Empty(t, got)
				return
			}
			assert.Contains(t, got, tt.field)
		})
	}
}
