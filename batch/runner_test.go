package batch

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	"github.com/chromago/unicorn/errs"
)

const testMetadata = `<Chromatogram><Curves>
  <Curve>
    <Name>UV 1_280</Name>
    <AmplitudeUnit>mAU</AmplitudeUnit>
    <VolumeStep>1.0</VolumeStep>
    <Scale>0.001</Scale>
    <CurvePoints><CurvePoint><BinaryCurvePointsFileName>Chrom.1_5_True</BinaryCurvePointsFileName></CurvePoint></CurvePoints>
  </Curve>
</Curves></Chromatogram>`

func writeArchive(t *testing.T, dir, name string, withBlock bool) string {
	t.Helper()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)

	w, err := writer.Create("Chrom.1.Xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(testMetadata))
	require.NoError(t, err)

	if withBlock {
		block := make([]byte, 0, 20)
		for _, v := range []int32{0, 1000, 2000, 3000, 4000} {
			block = binary.LittleEndian.AppendUint32(block, uint32(v))
		}

		w, err := writer.Create("Chrom.1_5_True")
		require.NoError(t, err)
		_, err = w.Write(block)
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	return path
}

func TestRunner_AllSucceed(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeArchive(t, dir, "a.zip", true),
		writeArchive(t, dir, "b.zip", true),
		writeArchive(t, dir, "c.zip", true),
	}

	runner, err := NewRunner(WithConcurrency(2))
	require.NoError(t, err)

	results, err := runner.Run(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, result := range results {
		require.Equal(t, paths[i], result.Path) // input order preserved
		require.Equal(t, StateSucceeded, result.State)
		require.NotNil(t, result.Run)
		require.Len(t, result.Run.Curves, 1)
		require.NoError(t, result.Err)
	}
}

func TestRunner_MixedOutcomes(t *testing.T) {
	dir := t.TempDir()

	good := writeArchive(t, dir, "good.zip", true)
	partial := writeArchive(t, dir, "partial.zip", false) // declared block missing

	bad := filepath.Join(dir, "bad.zip")
	require.NoError(t, os.WriteFile(bad, []byte("not a zip"), 0o644))

	runner, err := NewRunner()
	require.NoError(t, err)

	results, err := runner.Run(context.Background(), []string{good, partial, bad})
	require.NoError(t, err)

	require.Equal(t, StateSucceeded, results[0].State)

	require.Equal(t, StatePartial, results[1].State)
	require.NotNil(t, results[1].Run)
	require.ErrorIs(t, results[1].Run.Warnings[0], errs.ErrMissingBlock)

	require.Equal(t, StateFailed, results[2].State)
	require.Nil(t, results[2].Run)
	require.ErrorIs(t, results[2].Err, errs.ErrNotAContainer)
}

func TestRunner_ProgressSink(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeArchive(t, dir, "a.zip", true),
		writeArchive(t, dir, "b.zip", false),
	}

	// Sink calls are serialized by the runner, so a plain slice is safe.
	var events []Event
	runner, err := NewRunner(
		WithConcurrency(2),
		WithProgress(func(e Event) { events = append(events, e) }),
	)
	require.NoError(t, err)

	_, err = runner.Run(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, events, 2)

	byPath := make(map[string]Event, len(events))
	for _, e := range events {
		byPath[e.Path] = e
	}
	require.Equal(t, StateSucceeded, byPath[paths[0]].State)
	require.Equal(t, StatePartial, byPath[paths[1]].State)
	require.Equal(t, 1, byPath[paths[1]].Warnings)
}

func TestRunner_Cancellation(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeArchive(t, dir, "a.zip", true),
		writeArchive(t, dir, "b.zip", true),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner, err := NewRunner(WithConcurrency(1))
	require.NoError(t, err)

	results, err := runner.Run(ctx, paths)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 2)

	for _, result := range results {
		require.Equal(t, StateSkipped, result.State)
		require.ErrorIs(t, result.Err, context.Canceled)
	}
}

func TestNewRunner_InvalidConcurrency(t *testing.T) {
	_, err := NewRunner(WithConcurrency(0))
	require.Error(t, err)
}
