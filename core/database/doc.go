// Package database provides the GORM connection used for count sessions and
// for SQL import sources.
//
// Connect supports two drivers: mysql for deployments and sqlite for tests
// and single-node setups. Error translation is enabled so duplicate-key
// violations surface as gorm.ErrDuplicatedKey regardless of the driver.
//
// The inspector half of the package (GetTableColumns, HasColumns) exists for
// the virtual-snapshot SQL importer: it checks a configured column mapping
// against the actual source table before any rows are read.
package database
