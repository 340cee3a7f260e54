package learnpath

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const canonicalBody = `{"learningPath":{"description":"D","problems":[{"title":"T","level":1,"concepts":["x"],"description":"d","prerequisites":[],"examples":[],"hints":[]}]}}`

func TestParse_LegacyObject(t *testing.T) {
	lp, err := Parse([]byte(`{"problems":[{"statement":"S","example":"E","hints":"H","objectives":"O"}]}`))
	require.NoError(t, err)

	assert.Equal(t, "", lp.Description)
	require.Len(t, lp.Problems, 1)
	p := lp.Problems[0]
	assert.Equal(t, "S", p.Description)
	assert.Equal(t, []Example{{Input: "E"}}, p.Examples)
	assert.Equal(t, []string{"H"}, p.Hints)
	assert.Equal(t, []string{"O"}, p.Concepts)
	assert.Equal(t, "Problem 1", p.Title)
	assert.Equal(t, 1, p.Level)
}

func TestParse_LegacyBareList(t *testing.T) {
	lp, err := Parse([]byte(`[
		{"statement":"first","example":"in 1 out 2","objectives":["loops","ranges"]},
		{"statement":"second","example":"in 3 out 4","hints":["a","b"],"objectives":"recursion"}
	]`))
	require.NoError(t, err)

	require.Len(t, lp.Problems, 2)
	assert.Equal(t, []string{"loops", "ranges"}, lp.Problems[0].Concepts)
	assert.Empty(t, lp.Problems[0].Hints)
	assert.NotNil(t, lp.Problems[0].Hints)
	assert.Equal(t, 2, lp.Problems[1].Level)
	assert.Equal(t, "Problem 2", lp.Problems[1].Title)
	assert.Equal(t, []string{"a", "b"}, lp.Problems[1].Hints)
	assert.True(t, lp.Ascending())
}

func TestParse_LegacyStringEncodedProblems(t *testing.T) {
	inner := `[{"statement":"S","example":"E","hints":"H","objectives":"O"}]`
	body, err := json.Marshal(map[string]any{"problems": inner})
	require.NoError(t, err)

	lp, err := Parse(body)
	require.NoError(t, err)
	require.Len(t, lp.Problems, 1)
	assert.Equal(t, "S", lp.Problems[0].Description)
}

func TestParse_Canonical(t *testing.T) {
	lp, err := Parse([]byte(canonicalBody))
	require.NoError(t, err)

	assert.Equal(t, "D", lp.Description)
	require.Len(t, lp.Problems, 1)
	assert.Equal(t, 1, lp.Problems[0].Level)
	assert.Equal(t, "T", lp.Problems[0].Title)
	assert.Equal(t, []string{"x"}, lp.Problems[0].Concepts)
}

func TestParse_CanonicalTakesPrecedence(t *testing.T) {
	body := `{"problems":[{"statement":"S","example":"E","objectives":"O"}],` + canonicalBody[1:]
	assert.Equal(t, ShapeCanonical, Detect([]byte(body)))

	lp, err := Parse([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, "D", lp.Description)
	assert.Equal(t, "T", lp.Problems[0].Title)
}

func TestParse_HintsOptional(t *testing.T) {
	lp, err := Parse([]byte(`{"learningPath":{"description":"D","problems":[{"title":"T","level":2,"concepts":[],"description":"d","prerequisites":["vars"],"examples":[{"input":"1","output":"2","explanation":"inc"}]}]}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{}, lp.Problems[0].Hints)
	assert.Equal(t, []Example{{Input: "1", Output: "2", Explanation: "inc"}}, lp.Problems[0].Examples)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		shape Shape
	}{
		{"empty object", `{}`, ShapeUnknown},
		{"invalid json", `{not json`, ShapeUnknown},
		{"scalar", `42`, ShapeUnknown},
		{"problems is a number", `{"problems":3}`, ShapeLegacy},
		{"problems string not json", `{"problems":"nope"}`, ShapeLegacy},
		{"problems string holds object", `{"problems":"{\"a\":1}"}`, ShapeLegacy},
		{"legacy missing statement", `{"problems":[{"example":"E","objectives":"O"}]}`, ShapeLegacy},
		{"legacy record not object", `["just text"]`, ShapeLegacy},
		{"canonical missing description", `{"learningPath":{"problems":[]}}`, ShapeCanonical},
		{"canonical null", `{"learningPath":null}`, ShapeCanonical},
		{"canonical missing title", `{"learningPath":{"description":"D","problems":[{"level":1,"concepts":[],"description":"d","prerequisites":[],"examples":[]}]}}`, ShapeCanonical},
		{"canonical zero level", `{"learningPath":{"description":"D","problems":[{"title":"T","level":0,"concepts":[],"description":"d","prerequisites":[],"examples":[]}]}}`, ShapeCanonical},
		{"canonical fractional level", `{"learningPath":{"description":"D","problems":[{"title":"T","level":1.5,"concepts":[],"description":"d","prerequisites":[],"examples":[]}]}}`, ShapeCanonical},
		{"canonical example missing output", `{"learningPath":{"description":"D","problems":[{"title":"T","level":1,"concepts":[],"description":"d","prerequisites":[],"examples":[{"input":"1","explanation":"e"}]}]}}`, ShapeCanonical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lp, err := Parse([]byte(tt.body))
			require.Error(t, err)
			assert.Nil(t, lp)

			var perr *ParseError
			require.True(t, errors.As(err, &perr), "expected *ParseError, got %T", err)
			assert.Equal(t, tt.shape, perr.Shape)
			assert.Contains(t, err.Error(), "invalid response format from server")
		})
	}
}

func TestParse_Idempotent(t *testing.T) {
	bodies := []string{
		canonicalBody,
		`{"problems":[{"statement":"S","example":"E","hints":"H","objectives":"O"}]}`,
		`[{"statement":"S","example":"E","objectives":["a","b"]}]`,
		`{"learningPath":{"description":"","problems":[]}}`,
	}

	for _, body := range bodies {
		first, err := Parse([]byte(body))
		require.NoError(t, err, body)

		encoded, err := Encode(first)
		require.NoError(t, err)

		second, err := Parse(encoded)
		require.NoError(t, err, string(encoded))
		assert.Equal(t, first, second)
	}
}

func TestDetect(t *testing.T) {
	assert.Equal(t, ShapeCanonical, Detect([]byte(canonicalBody)))
	assert.Equal(t, ShapeLegacy, Detect([]byte(`[]`)))
	assert.Equal(t, ShapeLegacy, Detect([]byte(`{"problems":"[]"}`)))
	assert.Equal(t, ShapeUnknown, Detect([]byte(`{"error":"x"}`)))
	assert.Equal(t, "legacy", ShapeLegacy.String())
}

func TestAscending(t *testing.T) {
	lp := &LearningPath{Problems: []Problem{{Level: 1}, {Level: 3}, {Level: 2}}}
	assert.False(t, lp.Ascending())

	lp.Problems = lp.Problems[:2]
	assert.True(t, lp.Ascending())
}

func TestParse_LegacyNullHints(t *testing.T) {
	lp, err := Parse([]byte(`[{"statement":"S","example":"E","hints":null,"objectives":"O"}]`))
	require.NoError(t, err)
	require.Len(t, lp.Problems, 1)
	assert.Empty(t, lp.Problems[0].Hints)
}
