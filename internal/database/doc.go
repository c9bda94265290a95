// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup (SQLite or Postgres) and migrations
//	├── appointments/    # Appointment persistence, duplicate lookups, normalization updates
//	├── cars/            # Car fleet registry
//	└── imports/         # Import session history
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase(database.Options{Driver: "sqlite", Path: "./coletas.db"}, logger)
//
//	appointmentsRepo := appointments.NewRepository(db.DB)
//	carsRepo := cars.NewRepository(db.DB)
//	importsRepo := imports.NewRepository(db.DB)
//
// # Interface Implementations
//
//   - appointments.Repository: implements duplicates.Store and services.AppointmentStore
//   - cars.Repository: implements fleet.CarStore
//   - imports.Repository: implements services.SessionStore
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Implement the required interface
//  5. Add compile-time interface check: var _ SomeInterface = (*Repository)(nil)
package database
