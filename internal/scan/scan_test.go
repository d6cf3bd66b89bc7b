package scan

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan_RecognizedBlocks(t *testing.T) {
	src := []byte("# Title\n\nAdding two numbers:\n\n```go test\nadd(1, 2) // => 3\n```\n\n```python\nprint(1)\n```\n\n```gotest\nsub(3, 1)\n```\n")

	var s Scanner
	samples := s.Scan(src)
	require.Len(t, samples, 2, "only go test and gotest fences qualify")

	want := []Sample{
		{Title: "Adding two numbers", Lang: "go test", Source: "add(1, 2) // => 3\n"},
		{Title: "", Lang: "gotest", Source: "sub(3, 1)\n"},
	}
	if diff := cmp.Diff(want, samples); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}
}

func TestScan_TitleDerivation(t *testing.T) {
	t.Run("colon stripped", func(t *testing.T) {
		src := []byte("Basic usage:\n\n```go test\nx()\n```\n")
		var s Scanner
		samples := s.Scan(src)
		require.Len(t, samples, 1)
		assert.Equal(t, "Basic usage", samples[0].Title)
	})

	t.Run("no colon kept as is", func(t *testing.T) {
		src := []byte("Basic usage\n\n```go test\nx()\n```\n")
		var s Scanner
		samples := s.Scan(src)
		require.Len(t, samples, 1)
		assert.Equal(t, "Basic usage", samples[0].Title)
	})

	t.Run("heading sibling yields no title", func(t *testing.T) {
		src := []byte("## Section\n\n```go test\nx()\n```\n")
		var s Scanner
		samples := s.Scan(src)
		require.Len(t, samples, 1)
		assert.Equal(t, "", samples[0].Title)
	})

	t.Run("inline markup flattened", func(t *testing.T) {
		src := []byte("Using the `add` helper:\n\n```go test\nx()\n```\n")
		var s Scanner
		samples := s.Scan(src)
		require.Len(t, samples, 1)
		assert.Equal(t, "Using the add helper", samples[0].Title)
	})
}

func TestScan_IgnoresUnrelatedBlocks(t *testing.T) {
	src := []byte("```go\nfmt.Println(1)\n```\n\n```\nplain\n```\n")
	var s Scanner
	assert.Empty(t, s.Scan(src))
}

func TestScan_LanguageOverride(t *testing.T) {
	src := []byte("```example\nx()\n```\n\n```go test\ny()\n```\n")
	s := Scanner{Languages: []string{"example"}}
	samples := s.Scan(src)
	require.Len(t, samples, 1)
	assert.Equal(t, "example", samples[0].Lang)
	assert.Equal(t, "x()\n", samples[0].Source)
}

func TestScan_DocumentOrder(t *testing.T) {
	src := []byte("```go test\nfirst()\n```\n\ntext\n\n```go test\nsecond()\n```\n\n```go test\nthird()\n```\n")
	var s Scanner
	samples := s.Scan(src)
	require.Len(t, samples, 3)
	assert.Equal(t, "first()\n", samples[0].Source)
	assert.Equal(t, "second()\n", samples[1].Source)
	assert.Equal(t, "third()\n", samples[2].Source)
}

func TestScan_MultiLineSampleBody(t *testing.T) {
	src := []byte("```go test\na := 1\nb := a + 1\nuse(b)\n```\n")
	var s Scanner
	samples := s.Scan(src)
	require.Len(t, samples, 1)
	assert.Equal(t, "a := 1\nb := a + 1\nuse(b)\n", samples[0].Source)
}
