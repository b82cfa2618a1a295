package store

import "fmt"

// Open connects the backend named by driver: `mysql`, `sqlite3` or `bolt`.
// For `bolt`, dsn is the data file path.
func Open(driver, dsn string) (IRoomStore, error) {
	switch driver {
	case DriverMySQL, DriverSQLite:
		return OpenSQL(driver, dsn)
	case DriverBolt:
		return OpenBolt(dsn)
	}
	return nil, fmt.Errorf("unknown store driver `%s`", driver)
}
