package evaluation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseList(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{in: `["Java 8 (New)", "SQL Server"]`, want: []string{"Java 8 (New)", "SQL Server"}},
		{in: `['Java 8 (New)', 'SQL Server']`, want: []string{"Java 8 (New)", "SQL Server"}},
		{in: `['Agile, Scrum', "Manager's Test"]`, want: []string{"Agile, Scrum", "Manager's Test"}},
		{in: `['It\'s escaped']`, want: []string{"It's escaped"}},
		{in: `[]`, want: nil},
		{in: ``, want: nil},
		{in: `['unterminated]`, wantErr: true},
		{in: `Java, SQL`, wantErr: true},
		{in: `[Java]`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseList(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidList)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadCases(t *testing.T) {
	data := "\ufeffquery,relevant_assessments\n" +
		`"Java developer, 40 minutes","['Core Java (Entry Level)', 'Java 8 (New)']"` + "\n" +
		`,"['Skipped']"` + "\n" +
		`Sales role,"[""Sales Interview""]"` + "\n"

	cases, err := LoadCases(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, cases, 2)

	assert.Equal(t, "Java developer, 40 minutes", cases[0].Query)
	assert.Equal(t, []string{"Core Java (Entry Level)", "Java 8 (New)"}, cases[0].Relevant)
	assert.Equal(t, "Sales role", cases[1].Query)
	assert.Equal(t, []string{"Sales Interview"}, cases[1].Relevant)
}

func TestLoadCases_Errors(t *testing.T) {
	_, err := LoadCases(strings.NewReader("question,relevant_assessments\nq,[]\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = LoadCases(strings.NewReader("query,answers\nq,[]\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = LoadCases(strings.NewReader("query,relevant_assessments\nq,not a list\n"))
	assert.ErrorIs(t, err, ErrInvalidList)

	_, err = LoadCases(strings.NewReader(""))
	assert.Error(t, err)
}
