package cancellationfee

import "github.com/m04kA/SMC-SalonBooking/pkg/dbmetrics"

type DBExecutor = dbmetrics.DBExecutor
