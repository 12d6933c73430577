// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel and the model list used by AutoMigrate
// - material.go: catalog materials
// - ledger.go: receipt lots, issue records, allocation lines and document sequences
package models
