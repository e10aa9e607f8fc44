package database

import _ "embed"

// Schema is the current metadata schema, generated from the migrations.
//
//go:embed schema.sql
var Schema string
