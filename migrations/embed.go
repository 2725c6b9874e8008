// SPDX-License-Identifier: Apache-2.0

// Package migrations embeds the SQL schema files and exposes them in
// apply order. File names carry a numeric prefix (001_name.sql) that
// fixes the order regardless of how the files are listed.
package migrations

import (
	"embed"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

//go:embed *.sql
var schemaFiles embed.FS

type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Ordered returns every embedded migration sorted by version. A file
// without a parseable numeric prefix is an error rather than silently
// applied in an arbitrary position.
func Ordered() ([]Migration, error) {
	entries, err := schemaFiles.ReadDir(".")
	if err != nil {
		return nil, err
	}

	migrations := make([]Migration, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()

		prefix, _, found := strings.Cut(name, "_")
		if !found {
			return nil, fmt.Errorf("migration %s: missing version prefix", name)
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("migration %s: bad version prefix: %w", name, err)
		}

		body, err := schemaFiles.ReadFile(name)
		if err != nil {
			return nil, err
		}

		migrations = append(migrations, Migration{
			Version: version,
			Name:    name,
			SQL:     string(body),
		})
	}

	slices.SortFunc(migrations, func(a, b Migration) int {
		return a.Version - b.Version
	})

	for i := 1; i < len(migrations); i++ {
		if migrations[i].Version == migrations[i-1].Version {
			return nil, fmt.Errorf("migrations %s and %s share version %d",
				migrations[i-1].Name, migrations[i].Name, migrations[i].Version)
		}
	}

	return migrations, nil
}
