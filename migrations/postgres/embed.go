// Package migrations embebe las migraciones SQL (formato goose).
package migrations

import "embed"

// FS contiene las migraciones de la base principal.
//
//go:embed *.sql
var FS embed.FS

// Dir es el directorio dentro de FS donde viven las migraciones.
const Dir = "."
