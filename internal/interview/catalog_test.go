package interview

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	assert.Equal(t, []string{"DataAnalyst", "DigitalMarketer", "SoftwareDev", "UIDesigner"}, c.CareerPaths())

	for _, path := range c.CareerPaths() {
		qs, ok := c.Questions(path)
		require.True(t, ok, path)
		assert.Len(t, qs, 10, path)
		for i, q := range qs {
			assert.Equal(t, i+1, q.ID)
			assert.NotEmpty(t, q.Question)
		}
	}
}

func TestCatalog_UnknownPath(t *testing.T) {
	qs, ok := DefaultCatalog().Questions("UnknownPath")
	assert.False(t, ok)
	assert.Nil(t, qs)
}

func TestCatalog_QuestionsReturnsCopy(t *testing.T) {
	c := DefaultCatalog()
	qs, _ := c.Questions("SoftwareDev")
	qs[0].Question = "mutated"

	again, _ := c.Questions("SoftwareDev")
	assert.NotEqual(t, "mutated", again[0].Question)
}

func TestParseCatalog_Valid(t *testing.T) {
	data := []byte(`{
		"Backend": [
			{"id": 1, "question": "What is a goroutine?", "category": "Go", "difficulty": "beginner"},
			{"id": 2, "question": "Explain context cancellation.", "category": "Go", "difficulty": "advanced"}
		]
	}`)

	c, err := ParseCatalog("inline", data)
	require.NoError(t, err)

	qs, ok := c.Questions("Backend")
	require.True(t, ok)
	assert.Len(t, qs, 2)
	assert.Equal(t, "Explain context cancellation.", qs[1].Question)
}

func TestParseCatalog_SchemaViolation(t *testing.T) {
	data := []byte(`{"Backend": [{"id": 1, "question": "", "category": "Go", "difficulty": "expert"}]}`)

	c, err := ParseCatalog("inline", data)
	assert.Nil(t, c)

	var verr *CatalogValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Errors)
	assert.Contains(t, err.Error(), "invalid question catalog inline")
}

func TestParseCatalog_EmptyPath(t *testing.T) {
	_, err := ParseCatalog("inline", []byte(`{"Backend": []}`))
	assert.Error(t, err)
}

func TestLoadCatalog_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.json")
	content := `{"QA": [{"id": 1, "question": "How do you write a test plan?", "category": "Testing", "difficulty": "intermediate"}]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"QA"}, c.CareerPaths())
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	_, err := LoadCatalog("/nonexistent/questions.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read question catalog")
}
