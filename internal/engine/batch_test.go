package engine

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codesift/codesift/internal/lang"
)

// Test Plan for ExtractBatch:
// - File results appear in input order regardless of completion order
// - Aggregate stats equal the sum of the per-file stats
// - A failing file records its error without aborting the batch
// - An expired pool budget marks unfinished files with ErrBatchTimeout
//   and returns the same error at the batch level
// - When one file exhausts the pool budget, files finished before it keep
//   their results, the budget-eater degrades to fallback, and files never
//   started carry ErrBatchTimeout
// - A cancelled caller context is reported as ErrBatchTimeout
// - An empty batch succeeds with a run id and no files

func batchInputs() []Input {
	return []Input{
		{Raw: []byte("def a():\n    return 1\n"), Path: "a.py", WholeFile: true},
		{Raw: []byte("def b():\n    return 2\n"), Path: "b.py", WholeFile: true},
		{Raw: []byte("plain prose without any code at all\n"), Path: "c.qz", WholeFile: true},
	}
}

func TestExtractBatch_ResultsInInputOrder(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	inputs := batchInputs()

	res, err := e.ExtractBatch(context.Background(), inputs, BatchOptions{Workers: 2})
	require.NoError(t, err)
	require.Len(t, res.Files, len(inputs))
	assert.NotEmpty(t, res.RunID)

	for i, fr := range res.Files {
		assert.Equal(t, inputs[i].Path, fr.Path)
		require.NoError(t, fr.Err)
		require.NotNil(t, fr.Result)
	}
}

func TestExtractBatch_AggregateSumsFileStats(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	res, err := e.ExtractBatch(context.Background(), batchInputs(), BatchOptions{})
	require.NoError(t, err)

	var want Stats
	for _, fr := range res.Files {
		want.ASTParsed += fr.Result.Stats.ASTParsed
		want.FallbackExtracted += fr.Result.Stats.FallbackExtracted
		want.TotalExtracted += fr.Result.Stats.TotalExtracted
	}
	assert.Equal(t, want, res.Aggregate)
	assert.GreaterOrEqual(t, res.Aggregate.ASTParsed, 2)
}

func TestExtractBatch_FileErrorDoesNotAbortBatch(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	inputs := []Input{
		{Raw: bytes.Repeat([]byte{0x00, 0x01, 'a', 0x00}, 64), Path: "blob.bin", WholeFile: true},
		{Raw: []byte("def ok():\n    return 1\n"), Path: "ok.py", WholeFile: true},
	}

	res, err := e.ExtractBatch(context.Background(), inputs, BatchOptions{})
	require.NoError(t, err)

	require.Error(t, res.Files[0].Err)
	assert.NotErrorIs(t, res.Files[0].Err, ErrBatchTimeout)
	assert.Nil(t, res.Files[0].Result)

	require.NoError(t, res.Files[1].Err)
	assert.Equal(t, 1, res.Files[1].Result.Stats.ASTParsed)
}

// instantGrammar accepts anything immediately.
type instantGrammar struct{}

func (instantGrammar) Parse(context.Context, []byte) (lang.ParseReport, error) {
	return lang.ParseReport{OK: true, NamedNodeCount: 16}, nil
}

// stalledGrammar never finishes on its own; it holds the parse until the
// budget expires, like a pathological input would.
type stalledGrammar struct{}

func (stalledGrammar) Parse(ctx context.Context, _ []byte) (lang.ParseReport, error) {
	<-ctx.Done()
	return lang.ParseReport{}, ctx.Err()
}

func newStubRegistry(t *testing.T) *lang.Registry {
	t.Helper()
	reg, err := lang.NewRegistry([]*lang.Profile{
		{ID: "quick", Family: lang.FamilyCLike, Grammar: instantGrammar{}, Fallback: &lang.Ruleset{Family: lang.FamilyCLike}},
		{ID: "stalled", Family: lang.FamilyCLike, Grammar: stalledGrammar{}, Fallback: &lang.Ruleset{Family: lang.FamilyCLike}},
		{ID: lang.Unknown, Family: lang.FamilyUnknown, Fallback: &lang.Ruleset{Family: lang.FamilyUnknown}},
	})
	require.NoError(t, err)
	return reg
}

func TestExtractBatch_PartialCompletionKeepsFinishedResults(t *testing.T) {
	t.Parallel()

	e, err := New(newStubRegistry(t), nil)
	require.NoError(t, err)
	t.Cleanup(e.Close)

	// With one worker the files run strictly in order: the first finishes
	// well inside the budget, the second stalls until the budget expires,
	// and the third never starts before the deadline.
	inputs := []Input{
		{Raw: []byte("quick(1);\n"), Path: "first.src", DeclaredLanguage: "quick", WholeFile: true},
		{Raw: []byte("stall(1);\n"), Path: "stall.src", DeclaredLanguage: "stalled", WholeFile: true},
		{Raw: []byte("quick(2);\n"), Path: "last.src", DeclaredLanguage: "quick", WholeFile: true},
	}

	res, err := e.ExtractBatch(context.Background(), inputs, BatchOptions{
		Workers: 1,
		Timeout: 200 * time.Millisecond,
	})
	require.ErrorIs(t, err, ErrBatchTimeout)
	require.Len(t, res.Files, 3)

	first := res.Files[0]
	require.NoError(t, first.Err)
	require.NotNil(t, first.Result)
	require.Len(t, first.Result.Blocks, 1)
	assert.Equal(t, BlockAST, first.Result.Blocks[0].Type)
	assert.Equal(t, "quick", first.Result.Blocks[0].Language)

	// A parse cut off mid-flight degrades to a fallback block; only files
	// that never started fail with the timeout.
	mid := res.Files[1]
	require.NoError(t, mid.Err)
	require.NotNil(t, mid.Result)
	require.Len(t, mid.Result.Blocks, 1)
	assert.Equal(t, BlockFallback, mid.Result.Blocks[0].Type)

	last := res.Files[2]
	assert.ErrorIs(t, last.Err, ErrBatchTimeout)
	assert.Nil(t, last.Result)

	assert.Equal(t, 1, res.Aggregate.ASTParsed)
	assert.Equal(t, 1, res.Aggregate.FallbackExtracted)
}

func TestExtractBatch_ExpiredBudget(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	res, err := e.ExtractBatch(context.Background(), batchInputs(), BatchOptions{Timeout: time.Nanosecond})

	assert.ErrorIs(t, err, ErrBatchTimeout)
	require.Len(t, res.Files, 3)
	for i, fr := range res.Files {
		assert.ErrorIs(t, fr.Err, ErrBatchTimeout, "file %d", i)
		assert.Contains(t, fr.Err.Error(), fr.Path)
	}
	assert.Equal(t, Stats{}, res.Aggregate)
}

func TestExtractBatch_CancelledContext(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := e.ExtractBatch(ctx, batchInputs(), BatchOptions{})
	assert.ErrorIs(t, err, ErrBatchTimeout)
	for _, fr := range res.Files {
		assert.ErrorIs(t, fr.Err, ErrBatchTimeout)
	}
}

func TestExtractBatch_EmptyInputs(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	res, err := e.ExtractBatch(context.Background(), nil, BatchOptions{})
	require.NoError(t, err)
	assert.Empty(t, res.Files)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, Stats{}, res.Aggregate)
}
