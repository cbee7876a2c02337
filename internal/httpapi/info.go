package httpapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Spok95/skedule/internal/service"
)

func (s *Server) registerInfoAPI(g *echo.Group) {
	r := allow(groupInfo)

	g.GET("/schools", s.listSchools, r)
	g.GET("/schools/search", s.searchSchools, r)
	g.GET("/schools/:id", byID(s.svc.School), r)
	g.GET("/schools/:id/corpuses", bySchool(s.svc.ListCorpuses), r)
	g.GET("/schools/:id/cabinets", bySchool(s.svc.ListCabinets), r)
	g.GET("/schools/:id/cabinets/tag", s.cabinetsByTag, r)
	g.GET("/schools/:id/teachers", bySchool(s.svc.ListTeachers), r)
	g.GET("/schools/:id/teachers/search", s.searchTeachers, r)
	g.GET("/schools/:id/teachers/tag", s.teachersByTag, r)
	g.GET("/schools/:id/subclasses", bySchool(s.svc.ListSubclasses), r)
	g.GET("/schools/:id/subclasses/find", s.subclassByParams, r)
	g.GET("/schools/:id/parallels", bySchool(s.svc.Parallels), r)
	g.GET("/schools/:id/letters", s.letters, r)
	g.GET("/schools/:id/groups", s.groups, r)
	g.GET("/schools/:id/lesson-numbers", bySchool(s.svc.ListLessonNumbers), r)
	g.GET("/schools/:id/lessons", bySchool(s.svc.ListLessons), r)
	g.GET("/schools/:id/lessons/day", s.lessonsForDay, r)
	g.GET("/schools/:id/lessons/range", s.lessonsForRange, r)
	g.GET("/schools/:id/lessons/certain", s.certainLesson, r)

	g.GET("/corpuses/:id", byID(s.svc.Corpus), r)
	g.GET("/corpuses/:id/canteen", s.canteen, r)
	g.GET("/corpuses/:id/free-cabinets", s.freeCabinets, r)
	g.GET("/cabinets/:id", byID(s.svc.Cabinet), r)
	g.GET("/teachers/:id", byID(s.svc.Teacher), r)
	g.GET("/subclasses/:id", byID(s.svc.Subclass), r)
	g.GET("/lesson-numbers/:id", byID(s.svc.LessonNumber), r)
	g.GET("/lessons/:id", byID(s.svc.Lesson), r)
	g.GET("/tags", s.listTags, r)
}

// byID: обработчик GET /<entity>/:id.
func byID[T any](get func(context.Context, int64) (T, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		out, err := get(c.Request().Context(), id)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, out)
	}
}

// bySchool: списки внутри школы :id.
func bySchool[T any](list func(context.Context, int64) ([]T, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		out, err := list(c.Request().Context(), id)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, out)
	}
}

func (s *Server) listSchools(c echo.Context) error {
	out, err := s.svc.ListSchools(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) searchSchools(c echo.Context) error {
	name, err := queryString(c, "name")
	if err != nil {
		return err
	}
	out, err := s.svc.SearchSchools(c.Request().Context(), name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) searchTeachers(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	name, err := queryString(c, "name")
	if err != nil {
		return err
	}
	out, err := s.svc.SearchTeachers(c.Request().Context(), id, name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) teachersByTag(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	tag, err := queryString(c, "tag")
	if err != nil {
		return err
	}
	out, err := s.svc.TeachersByTag(c.Request().Context(), id, tag)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) cabinetsByTag(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	tag, err := queryString(c, "tag")
	if err != nil {
		return err
	}
	out, err := s.svc.CabinetsByTag(c.Request().Context(), id, tag)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) letters(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	level, err := queryInt(c, "educational_level")
	if err != nil {
		return err
	}
	out, err := s.svc.Letters(c.Request().Context(), id, level)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) groups(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	level, err := queryInt(c, "educational_level")
	if err != nil {
		return err
	}
	letter, err := queryString(c, "identificator")
	if err != nil {
		return err
	}
	out, err := s.svc.Groups(c.Request().Context(), id, level, letter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) subclassByParams(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	level, err := queryInt(c, "educational_level")
	if err != nil {
		return err
	}
	letter, err := queryString(c, "identificator")
	if err != nil {
		return err
	}
	out, err := s.svc.SubclassByParams(c.Request().Context(), id, level, letter, c.QueryParam("additional_identificator"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// lessonOwner читает teacher_id / subclass_id; проверку "ровно одно" делает сервис.
func lessonOwner(c echo.Context) (service.LessonOwner, error) {
	t, err := optInt64(c, "teacher_id")
	if err != nil {
		return service.LessonOwner{}, err
	}
	sc, err := optInt64(c, "subclass_id")
	if err != nil {
		return service.LessonOwner{}, err
	}
	return service.LessonOwner{TeacherID: t, SubclassID: sc}, nil
}

func (s *Server) lessonsForDay(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	day, err := queryInt(c, "day")
	if err != nil {
		return err
	}
	o, err := lessonOwner(c)
	if err != nil {
		return err
	}
	out, err := s.svc.LessonsForDay(c.Request().Context(), id, day, o)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) lessonsForRange(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	start, err := queryInt(c, "start")
	if err != nil {
		return err
	}
	end, err := queryInt(c, "end")
	if err != nil {
		return err
	}
	o, err := lessonOwner(c)
	if err != nil {
		return err
	}
	out, err := s.svc.LessonsForRange(c.Request().Context(), id, start, end, o)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) certainLesson(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	day, err := queryInt(c, "day")
	if err != nil {
		return err
	}
	number, err := queryInt(c, "lesson_number")
	if err != nil {
		return err
	}
	o, err := lessonOwner(c)
	if err != nil {
		return err
	}
	out, err := s.svc.CertainLesson(c.Request().Context(), id, day, number, o)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) canteen(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	text, err := s.svc.CanteenText(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"canteen_text": text})
}

func (s *Server) freeCabinets(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	day, err := queryInt(c, "day")
	if err != nil {
		return err
	}
	number, err := optInt(c, "lesson_number")
	if err != nil {
		return err
	}
	floor, err := optInt(c, "floor")
	if err != nil {
		return err
	}
	out, err := s.svc.FreeCabinets(c.Request().Context(), id, day, number, floor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) listTags(c echo.Context) error {
	out, err := s.svc.ListTags(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}
