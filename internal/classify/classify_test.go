package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobsearch-automation/internal/models"
)

func rec(title, description string) models.JobRecord {
	return models.JobRecord{
		Title:       models.Extracted(title),
		Company:     models.Extracted("Acme"),
		Description: models.Extracted(description),
	}
}

func TestTags(t *testing.T) {
	c, err := New(DefaultLabels)
	require.NoError(t, err)

	tests := []struct {
		name     string
		record   models.JobRecord
		expected []string
	}{
		{
			name:     "junior go with cloud",
			record:   rec("Junior Golang Developer", "Docker, Kubernetes, Remote"),
			expected: []string{"cloud", "entry-level", "go"},
		},
		{
			name:     "senior",
			record:   rec("Senior Data Scientist", "Lead a team of five"),
			expected: []string{"senior"},
		},
		{
			name:     "hyphenated phrase",
			record:   rec("Entry-Level Analyst", ""),
			expected: []string{"entry-level"},
		},
		{
			name:     "no partial words",
			record:   rec("Leadership Coach", "Internal tooling"),
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.Tags(tt.record))
		})
	}
}

func TestTags_FoldsDiacritics(t *testing.T) {
	c, err := New(map[string][]string{"hcm": {"Ho Chi Minh"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"hcm"}, c.Tags(rec("Backend", "Văn phòng tại Hồ Chí Minh")))
}

func TestNew_EmptyLabel(t *testing.T) {
	_, err := New(map[string][]string{"empty": {" ", ""}})
	assert.ErrorContains(t, err, `label "empty"`)
}
