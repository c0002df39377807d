// Package migrations содержит goose-миграции, вшитые в бинарник.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
