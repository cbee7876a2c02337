package models

type School struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Corpus: здание школы.
type Corpus struct {
	ID          int64   `json:"id"`
	SchoolID    int64   `json:"school_id"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	CanteenText *string `json:"canteen_text"`
}

// Cabinet: кабинет в корпусе; school_id денормализован из корпуса.
type Cabinet struct {
	ID       int64    `json:"id"`
	SchoolID int64    `json:"school_id"`
	CorpusID int64    `json:"corpus_id"`
	Floor    int      `json:"floor"`
	Name     string   `json:"name"`
	Tags     []string `json:"tags"`
}

type Teacher struct {
	ID       int64    `json:"id"`
	SchoolID int64    `json:"school_id"`
	Name     string   `json:"name"`
	Tags     []string `json:"tags"`
}

type Tag struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// Subclass: параллель + буква + (необязательная) группа.
type Subclass struct {
	ID                      int64  `json:"id"`
	SchoolID                int64  `json:"school_id"`
	EducationalLevel        int    `json:"educational_level"`
	Identificator           string `json:"identificator"`
	AdditionalIdentificator string `json:"additional_identificator"`
}

// LessonNumber: слот расписания звонков, время в формате HH:MM.
type LessonNumber struct {
	ID        int64  `json:"id"`
	SchoolID  int64  `json:"school_id"`
	Number    int    `json:"number"`
	TimeStart string `json:"time_start"`
	TimeEnd   string `json:"time_end"`
}

type Lesson struct {
	ID             int64   `json:"id"`
	SchoolID       int64   `json:"school_id"`
	CorpusID       int64   `json:"corpus_id"`
	CabinetID      int64   `json:"cabinet_id"`
	TeacherID      int64   `json:"teacher_id"`
	LessonNumberID int64   `json:"lesson_number_id"`
	DayOfWeek      int     `json:"day_of_week"`
	Subject        string  `json:"subject"`
	SubclassIDs    []int64 `json:"subclass_ids"`
}

// LessonView: урок со всеми связанными сущностями.
type LessonView struct {
	ID           int64        `json:"id"`
	DayOfWeek    int          `json:"day_of_week"`
	Subject      string       `json:"subject"`
	LessonNumber LessonNumber `json:"lesson_number"`
	Teacher      Teacher      `json:"teacher"`
	Cabinet      Cabinet      `json:"cabinet"`
	Corpus       Corpus       `json:"corpus"`
	Subclasses   []Subclass   `json:"subclasses"`
}
