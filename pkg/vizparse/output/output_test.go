package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/vizparse-go/pkg/vizparse/models"
)

func TestToJSON(t *testing.T) {
	ds, err := models.NewDataset([]string{"a<b", "n"})
	require.NoError(t, err)
	ds.AppendRow([]models.Value{models.StringValue("x&y"), models.NumberValue(1.5)})
	ds.AppendRow([]models.Value{models.StringValue("z")})

	compact, err := ToJSON(ds, false)
	require.NoError(t, err)
	assert.Equal(t, `{"headers":["a<b","n"],"rows":[{"a<b":"x&y","n":1.5},{"a<b":"z"}]}`, string(compact))

	pretty, err := ToJSON(ds, true)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pretty), "{\n  \"headers\""))
	assert.False(t, strings.HasSuffix(string(pretty), "\n"))
}

func TestToJSONUnsupportedValue(t *testing.T) {
	_, err := ToJSON(make(chan int), false)
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFile("", &buf, map[string]int{"n": 1}, false))
	assert.Equal(t, "{\"n\":1}\n", buf.String())

	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, WriteFile(path, &buf, []string{"a"}, false))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[\"a\"]\n", string(data))
}
