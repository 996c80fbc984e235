// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/promptlib/internal/platform/migration"
)

/*
TestToPgx5DSN checks the scheme rewrite expected by the pgx5 migrate driver.
*/
func TestToPgx5DSN(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"postgres://u:p@db:5432/promptlib", "pgx5://u:p@db:5432/promptlib"},
		{"postgresql://db/promptlib?sslmode=disable", "pgx5://db/promptlib?sslmode=disable"},
		{"pgx5://db/promptlib", "pgx5://db/promptlib"},
		{"host=db dbname=promptlib", "host=db dbname=promptlib"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, migration.ToPgx5DSN(tt.in))
	}
}
