// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/promptlib/pkg/slug"
)

/*
TestFrom covers accent folding, punctuation removal and separator collapsing.
*/
func TestFrom(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Code Review", "code-review"},
		{"  Don't Panic  ", "dont-panic"},
		{"Café Crème", "cafe-creme"},
		{"snake_case -- words", "snake-case-words"},
		{"--edge--", "edge"},
		{"C++ Tips", "c-tips"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.From(tt.input))
		})
	}
}
