package db

import (
	"database/sql/driver"

	"github.com/lib/pq"
)

// int64Array оборачивает срез для параметров вида ANY($n) / $n::bigint[].
func int64Array(ids []int64) driver.Valuer {
	if ids == nil {
		ids = []int64{}
	}
	return pq.Int64Array(ids)
}
