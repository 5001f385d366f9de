// Package db provides the embedded schema and seed data.
package db

import _ "embed"

// Schema contains the DDL statements for all application tables.
//
//go:embed migrations/001_schema.sql
var Schema string

// SeedProducts is the default catalog used by seed-db.
//
//go:embed seed/products.json
var SeedProducts []byte
