package export

import (
	"fmt"
	"strings"

	"github.com/Spok95/skedule/internal/models"
)

var dayNames = [...]string{"", "Понедельник", "Вторник", "Среда", "Четверг", "Пятница", "Суббота", "Воскресенье"}

var timetableHeader = []string{"№", "Время", "Предмет", "Учитель", "Корпус", "Кабинет", "Классы"}

// TimetableSheets раскладывает уроки школы по листам-дням (1..7). Дни без уроков пропускаются;
// если уроков нет совсем, остаётся один пустой лист понедельника.
func TimetableSheets(lessons []models.LessonView) []SheetSpec {
	byDay := map[int][][]string{}
	for _, l := range lessons {
		if l.DayOfWeek < 1 || l.DayOfWeek > 7 {
			continue
		}
		byDay[l.DayOfWeek] = append(byDay[l.DayOfWeek], []string{
			fmt.Sprintf("%d", l.LessonNumber.Number),
			l.LessonNumber.TimeStart + "–" + l.LessonNumber.TimeEnd,
			l.Subject,
			l.Teacher.Name,
			l.Corpus.Name,
			l.Cabinet.Name,
			subclassList(l.Subclasses),
		})
	}

	var out []SheetSpec
	for d := 1; d <= 7; d++ {
		rows, ok := byDay[d]
		if !ok {
			continue
		}
		out = append(out, SheetSpec{Title: dayNames[d], Header: timetableHeader, Rows: rows})
	}
	if len(out) == 0 {
		out = append(out, SheetSpec{Title: dayNames[1], Header: timetableHeader})
	}
	return out
}

// SubclassLabel "10А1": параллель, буква, группа.
func SubclassLabel(s models.Subclass) string {
	return fmt.Sprintf("%d%s%s", s.EducationalLevel, s.Identificator, s.AdditionalIdentificator)
}

func subclassList(subs []models.Subclass) string {
	parts := make([]string, 0, len(subs))
	for _, s := range subs {
		parts = append(parts, SubclassLabel(s))
	}
	return strings.Join(parts, ", ")
}

// TimetableWorkbook книга расписания школы.
func TimetableWorkbook(lessons []models.LessonView) (*Workbook, error) {
	return NewWorkbook(TimetableSheets(lessons))
}

// TimetableFilename "Расписание: <школа>.xlsx" без недопустимых символов.
func TimetableFilename(schoolName string) string {
	name := strings.TrimSpace(schoolName)
	if name == "" {
		name = "школа"
	}
	return sanitizeFileName(fmt.Sprintf("Расписание — %s.xlsx", name))
}
