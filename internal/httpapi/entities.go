package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Spok95/skedule/internal/service"
)

type (
	schoolBody struct {
		Name string `json:"name" validate:"required,notblank,min=10,max=200"`
	}
	schoolPatch struct {
		Name *string `json:"name" validate:"omitempty,notblank,min=10,max=200"`
	}

	corpusBody struct {
		SchoolID    int64   `json:"school_id" validate:"required,gt=0"`
		Name        string  `json:"name" validate:"required,notblank,max=100"`
		Address     string  `json:"address" validate:"required,notblank,min=10,max=250"`
		CanteenText *string `json:"canteen_text" validate:"omitempty,min=2,max=500"`
	}
	corpusPatch struct {
		Name        *string `json:"name" validate:"omitempty,notblank,max=100"`
		Address     *string `json:"address" validate:"omitempty,notblank,min=10,max=250"`
		CanteenText *string `json:"canteen_text" validate:"omitempty,min=2,max=500"`
	}

	cabinetBody struct {
		CorpusID int64    `json:"corpus_id" validate:"required,gt=0"`
		Floor    int      `json:"floor" validate:"gte=-10,lte=100"`
		Name     string   `json:"name" validate:"required,notblank,max=100"`
		Tags     []string `json:"tags" validate:"max=10,dive,notblank,max=100"`
	}
	cabinetPatch struct {
		Floor *int      `json:"floor" validate:"omitempty,gte=-10,lte=100"`
		Name  *string   `json:"name" validate:"omitempty,notblank,max=100"`
		Tags  *[]string `json:"tags" validate:"omitempty,max=10,dive,notblank,max=100"`
	}

	teacherBody struct {
		SchoolID int64    `json:"school_id" validate:"required,gt=0"`
		Name     string   `json:"name" validate:"required,notblank,max=200"`
		Tags     []string `json:"tags" validate:"max=10,dive,notblank,max=100"`
	}
	teacherPatch struct {
		Name *string   `json:"name" validate:"omitempty,notblank,max=200"`
		Tags *[]string `json:"tags" validate:"omitempty,max=10,dive,notblank,max=100"`
	}

	subclassBody struct {
		SchoolID                int64  `json:"school_id" validate:"required,gt=0"`
		EducationalLevel        int    `json:"educational_level" validate:"gte=0,lte=12"`
		Identificator           string `json:"identificator" validate:"required,notblank,max=50"`
		AdditionalIdentificator string `json:"additional_identificator" validate:"max=50"`
	}
	subclassPatch struct {
		EducationalLevel        *int    `json:"educational_level" validate:"omitempty,gte=0,lte=12"`
		Identificator           *string `json:"identificator" validate:"omitempty,notblank,max=50"`
		AdditionalIdentificator *string `json:"additional_identificator" validate:"omitempty,max=50"`
	}

	lessonNumberBody struct {
		SchoolID  int64  `json:"school_id" validate:"required,gt=0"`
		Number    int    `json:"number" validate:"gte=0,lte=20"`
		TimeStart string `json:"time_start" validate:"required"`
		TimeEnd   string `json:"time_end" validate:"required"`
	}
	lessonNumberPatch struct {
		Number    *int    `json:"number" validate:"omitempty,gte=0,lte=20"`
		TimeStart *string `json:"time_start"`
		TimeEnd   *string `json:"time_end"`
	}

	lessonBody struct {
		CabinetID      int64   `json:"cabinet_id" validate:"required,gt=0"`
		TeacherID      int64   `json:"teacher_id" validate:"required,gt=0"`
		LessonNumberID int64   `json:"lesson_number_id" validate:"required,gt=0"`
		DayOfWeek      int     `json:"day_of_week"`
		Subject        string  `json:"subject" validate:"required,notblank,min=2,max=200"`
		SubclassIDs    []int64 `json:"subclass_ids" validate:"required,min=1,dive,gt=0"`
	}
	lessonPatch struct {
		CabinetID      *int64   `json:"cabinet_id" validate:"omitempty,gt=0"`
		TeacherID      *int64   `json:"teacher_id" validate:"omitempty,gt=0"`
		LessonNumberID *int64   `json:"lesson_number_id" validate:"omitempty,gt=0"`
		DayOfWeek      *int     `json:"day_of_week"`
		Subject        *string  `json:"subject" validate:"omitempty,notblank,min=2,max=200"`
		SubclassIDs    *[]int64 `json:"subclass_ids" validate:"omitempty,min=1,dive,gt=0"`
	}
)

func (s *Server) registerEntityAPI(g *echo.Group) {
	w := allow(groupEntities)

	g.POST("/schools", s.createSchool, w)
	g.PATCH("/schools/:id", s.updateSchool, w)
	g.POST("/corpuses", s.createCorpus, w)
	g.PATCH("/corpuses/:id", s.updateCorpus, w)
	g.POST("/cabinets", s.createCabinet, w)
	g.PATCH("/cabinets/:id", s.updateCabinet, w)
	g.POST("/teachers", s.createTeacher, w)
	g.PATCH("/teachers/:id", s.updateTeacher, w)
	g.POST("/subclasses", s.createSubclass, w)
	g.PATCH("/subclasses/:id", s.updateSubclass, w)
	g.POST("/lesson-numbers", s.createLessonNumber, w)
	g.PATCH("/lesson-numbers/:id", s.updateLessonNumber, w)
	g.POST("/lessons", s.createLesson, w)
	g.PATCH("/lessons/:id", s.updateLesson, w)
	g.DELETE("/lessons/:id", s.deleteLesson, w)
}

func (s *Server) createSchool(c echo.Context) error {
	var b schoolBody
	if err := s.bind(c, &b); err != nil {
		return err
	}
	out, err := s.svc.CreateSchool(c.Request().Context(), b.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, out)
}

func (s *Server) updateSchool(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var b schoolPatch
	if err := s.bind(c, &b); err != nil {
		return err
	}
	out, err := s.svc.UpdateSchool(c.Request().Context(), id, b.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) createCorpus(c echo.Context) error {
	var b corpusBody
	if err := s.bind(c, &b); err != nil {
		return err
	}
	out, err := s.svc.CreateCorpus(c.Request().Context(), service.CorpusInput{
		SchoolID:    b.SchoolID,
		Name:        b.Name,
		Address:     b.Address,
		CanteenText: b.CanteenText,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, out)
}

func (s *Server) updateCorpus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var b corpusPatch
	if err := s.bind(c, &b); err != nil {
		return err
	}
	out, err := s.svc.UpdateCorpus(c.Request().Context(), id, service.CorpusUpdate{
		Name:        b.Name,
		Address:     b.Address,
		CanteenText: b.CanteenText,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) createCabinet(c echo.Context) error {
	var b cabinetBody
	if err := s.bind(c, &b); err != nil {
		return err
	}
	out, err := s.svc.CreateCabinet(c.Request().Context(), service.CabinetInput{
		CorpusID: b.CorpusID,
		Floor:    b.Floor,
		Name:     b.Name,
		Tags:     b.Tags,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, out)
}

func (s *Server) updateCabinet(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var b cabinetPatch
	if err := s.bind(c, &b); err != nil {
		return err
	}
	out, err := s.svc.UpdateCabinet(c.Request().Context(), id, service.CabinetUpdate{
		Floor: b.Floor,
		Name:  b.Name,
		Tags:  b.Tags,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) createTeacher(c echo.Context) error {
	var b teacherBody
	if err := s.bind(c, &b); err != nil {
		return err
	}
	out, err := s.svc.CreateTeacher(c.Request().Context(), service.TeacherInput{
		SchoolID: b.SchoolID,
		Name:     b.Name,
		Tags:     b.Tags,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, out)
}

func (s *Server) updateTeacher(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var b teacherPatch
	if err := s.bind(c, &b); err != nil {
		return err
	}
	out, err := s.svc.UpdateTeacher(c.Request().Context(), id, service.TeacherUpdate{Name: b.Name, Tags: b.Tags})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) createSubclass(c echo.Context) error {
	var b subclassBody
	if err := s.bind(c, &b); err != nil {
		return err
	}
	out, err := s.svc.CreateSubclass(c.Request().Context(), service.SubclassInput{
		SchoolID:                b.SchoolID,
		EducationalLevel:        b.EducationalLevel,
		Identificator:           b.Identificator,
		AdditionalIdentificator: b.AdditionalIdentificator,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, out)
}

func (s *Server) updateSubclass(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var b subclassPatch
	if err := s.bind(c, &b); err != nil {
		return err
	}
	out, err := s.svc.UpdateSubclass(c.Request().Context(), id, service.SubclassUpdate{
		EducationalLevel:        b.EducationalLevel,
		Identificator:           b.Identificator,
		AdditionalIdentificator: b.AdditionalIdentificator,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) createLessonNumber(c echo.Context) error {
	var b lessonNumberBody
	if err := s.bind(c, &b); err != nil {
		return err
	}
	out, err := s.svc.CreateLessonNumber(c.Request().Context(), service.LessonNumberInput{
		SchoolID:  b.SchoolID,
		Number:    b.Number,
		TimeStart: b.TimeStart,
		TimeEnd:   b.TimeEnd,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, out)
}

func (s *Server) updateLessonNumber(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var b lessonNumberPatch
	if err := s.bind(c, &b); err != nil {
		return err
	}
	out, err := s.svc.UpdateLessonNumber(c.Request().Context(), id, service.LessonNumberUpdate{
		Number:    b.Number,
		TimeStart: b.TimeStart,
		TimeEnd:   b.TimeEnd,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) createLesson(c echo.Context) error {
	var b lessonBody
	if err := s.bind(c, &b); err != nil {
		return err
	}
	out, err := s.svc.CreateLesson(c.Request().Context(), service.LessonInput{
		CabinetID:      b.CabinetID,
		TeacherID:      b.TeacherID,
		LessonNumberID: b.LessonNumberID,
		DayOfWeek:      b.DayOfWeek,
		Subject:        b.Subject,
		SubclassIDs:    b.SubclassIDs,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, out)
}

func (s *Server) updateLesson(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var b lessonPatch
	if err := s.bind(c, &b); err != nil {
		return err
	}
	out, err := s.svc.UpdateLesson(c.Request().Context(), id, service.LessonUpdate{
		CabinetID:      b.CabinetID,
		TeacherID:      b.TeacherID,
		LessonNumberID: b.LessonNumberID,
		DayOfWeek:      b.DayOfWeek,
		Subject:        b.Subject,
		SubclassIDs:    b.SubclassIDs,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) deleteLesson(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	deleted, err := s.svc.DeleteLesson(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"id": deleted})
}
