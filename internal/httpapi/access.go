package httpapi

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Spok95/skedule/internal/ctxutil"
	"github.com/Spok95/skedule/internal/logging"
)

// Level: уровень доступа вызывающего сервиса из claim "access".
type Level int

const (
	LevelWebsite  Level = 2
	LevelParser   Level = 3
	LevelTelegram Level = 4
	LevelAdmin    Level = 5
)

func (l Level) String() string {
	switch l {
	case LevelWebsite:
		return "website"
	case LevelParser:
		return "parser"
	case LevelTelegram:
		return "telegram"
	case LevelAdmin:
		return "admin"
	}
	return "unknown"
}

type routeGroup string

const (
	groupAccounts  routeGroup = "accounts"
	groupEntities  routeGroup = "entities"
	groupInfo      routeGroup = "info"
	groupIDExists  routeGroup = "telegram_id_exists"
	groupIDList    routeGroup = "telegram_ids"
	groupStats     routeGroup = "stats"
	groupAnnounce  routeGroup = "announcements"
	groupHistory   routeGroup = "announcement_history"
	groupBroadcast routeGroup = "broadcast"
	groupPremium   routeGroup = "premium"
)

// accessTable: группа маршрутов -> допустимые уровни.
var accessTable = map[routeGroup][]Level{
	groupAccounts:  {LevelAdmin, LevelTelegram},
	groupEntities:  {LevelAdmin, LevelParser},
	groupInfo:      {LevelAdmin, LevelTelegram, LevelParser},
	groupIDExists:  {LevelAdmin, LevelTelegram},
	groupIDList:    {LevelAdmin},
	groupStats:     {LevelAdmin, LevelWebsite},
	groupAnnounce:  {LevelAdmin, LevelWebsite},
	groupHistory:   {LevelAdmin, LevelTelegram},
	groupBroadcast: {LevelAdmin},
	groupPremium:   {LevelAdmin},
}

var errForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")

func allowed(g routeGroup, l Level) bool {
	return slices.Contains(accessTable[g], l)
}

// allow пропускает запрос, только если уровень токена есть в таблице для группы.
func allow(g routeGroup) echo.MiddlewareFunc {
	if _, ok := accessTable[g]; !ok {
		panic("httpapi: no access rule for " + string(g))
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			l, ok := c.Get(ctxKeyAccess).(Level)
			if !ok || !allowed(g, l) {
				return errForbidden
			}
			op := c.Request().Method + " " + c.Path()
			ctx := ctxutil.WithOp(c.Request().Context(), op)
			ctx = logging.With(ctx, logging.From(ctx, nil).With(zap.String("op", op)))
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
