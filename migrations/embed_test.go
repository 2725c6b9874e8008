// SPDX-License-Identifier: Apache-2.0

package migrations

import (
	"strings"
	"testing"
)

func TestOrdered(t *testing.T) {
	migrations, err := Ordered()
	if err != nil {
		t.Fatalf("Ordered: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("no embedded migrations")
	}

	for i, m := range migrations {
		if i > 0 && m.Version <= migrations[i-1].Version {
			t.Fatalf("migration %s out of order after %s", m.Name, migrations[i-1].Name)
		}
		if strings.TrimSpace(m.SQL) == "" {
			t.Fatalf("migration %s has empty body", m.Name)
		}
	}

	first := migrations[0]
	if first.Version != 1 || first.Name != "001_run_reports.sql" {
		t.Fatalf("unexpected first migration %d %s", first.Version, first.Name)
	}
	if !strings.Contains(first.SQL, "run_reports") {
		t.Fatalf("migration %s does not create run_reports", first.Name)
	}
}
