// Package db holds the embedded SQL migrations and seed data applied at startup.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed seed/*.json
var SeedFiles embed.FS
