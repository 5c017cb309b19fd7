package appointment

import (
	"github.com/m04kA/SMC-SalonBooking/pkg/dbmetrics"
)

// Переиспользуем интерфейс из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor
