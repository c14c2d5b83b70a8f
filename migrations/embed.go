// Package migrations содержит SQL-миграции для обоих диалектов.
package migrations

import "embed"

// FS каталоги postgres/ и sqlite/ с миграциями goose
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Dir возвращает каталог миграций для диалекта goose
func Dir(dialect string) string {
	if dialect == "sqlite3" || dialect == "sqlite" {
		return "sqlite"
	}
	return "postgres"
}
