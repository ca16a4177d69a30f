package artifact_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rideaware/rideaware/internal/artifact"
	"github.com/rideaware/rideaware/internal/corpus"
	"github.com/rideaware/rideaware/internal/dataset"
	"github.com/rideaware/rideaware/internal/engine/pipeline"
	"github.com/rideaware/rideaware/internal/model"
)

func fit(t *testing.T, family string) pipeline.Model {
	t.Helper()
	examples, err := dataset.Read(corpus.Reader(), "embedded")
	require.NoError(t, err)
	m, err := pipeline.Build(family, nil)
	require.NoError(t, err)
	require.NoError(t, m.Fit(model.Texts(examples), model.Categories(examples)))
	return m
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := artifact.NewStore(filepath.Join(t.TempDir(), "model"))
	m := fit(t, "naivebayes")

	trained := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(m, artifact.Metadata{
		ModelName:    "tfidf+naivebayes",
		ModelVersion: "1.0",
		RunID:        "run-1",
		TrainedAt:    trained,
		TrainSize:    56,
		Labels:       m.Classes(),
	}))

	got, err := store.Load("naivebayes")
	require.NoError(t, err)
	assert.Equal(t, "naivebayes", got.Family())

	probe := []string{"Glasscherben auf dem Radweg", "Danke für den neuen Radweg"}
	want, err := m.Predict(probe)
	require.NoError(t, err)
	pred, err := got.Predict(probe)
	require.NoError(t, err)
	assert.Equal(t, want, pred)

	meta, err := store.LoadMetadata("naivebayes")
	require.NoError(t, err)
	assert.Equal(t, "tfidf+naivebayes", meta.ModelName)
	assert.Equal(t, "1.0", meta.ModelVersion)
	assert.Equal(t, "naivebayes", meta.Family)
	assert.Equal(t, "run-1", meta.RunID)
	assert.True(t, trained.Equal(meta.TrainedAt))
	assert.Equal(t, 56, meta.TrainSize)
}

func TestLoadUnavailable(t *testing.T) {
	store := artifact.NewStore(t.TempDir())
	_, err := store.Load("logreg")
	assert.ErrorIs(t, err, artifact.ErrUnavailable)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	store := artifact.NewStore(dir)
	require.NoError(t, os.WriteFile(store.ModelPath("logreg"), []byte("not gzip"), 0o644))

	_, err := store.Load("logreg")
	assert.ErrorIs(t, err, artifact.ErrCorrupt)
}

func TestLoadRejectsRenamedBlob(t *testing.T) {
	dir := t.TempDir()
	store := artifact.NewStore(dir)
	require.NoError(t, store.Save(fit(t, "centroid"), artifact.Metadata{ModelName: "x", ModelVersion: "1"}))
	require.NoError(t, os.Rename(store.ModelPath("centroid"), store.ModelPath("logreg")))

	_, err := store.Load("logreg")
	assert.ErrorIs(t, err, artifact.ErrCorrupt)
}

func TestMetadataMissingReadsUnknown(t *testing.T) {
	store := artifact.NewStore(t.TempDir())
	meta, err := store.LoadMetadata("logreg")
	require.NoError(t, err)
	assert.Equal(t, artifact.Unknown, meta.ModelName)
	assert.Equal(t, artifact.Unknown, meta.ModelVersion)
}

func TestMetadataPartialReadsUnknown(t *testing.T) {
	store := artifact.NewStore(t.TempDir())
	require.NoError(t, os.WriteFile(store.MetaPath("logreg"), []byte(`{"model_name":"m"}`), 0o644))
	meta, err := store.LoadMetadata("logreg")
	require.NoError(t, err)
	assert.Equal(t, "m", meta.ModelName)
	assert.Equal(t, artifact.Unknown, meta.ModelVersion)
}

func TestMetadataCorrupt(t *testing.T) {
	store := artifact.NewStore(t.TempDir())
	require.NoError(t, os.WriteFile(store.MetaPath("logreg"), []byte(`{`), 0o644))
	_, err := store.LoadMetadata("logreg")
	assert.True(t, errors.Is(err, artifact.ErrCorrupt))
}

func TestFamiliesAreIndependent(t *testing.T) {
	dir := t.TempDir()
	store := artifact.NewStore(dir)

	require.NoError(t, store.Save(fit(t, "logreg"), artifact.Metadata{ModelName: "tfidf+logreg", ModelVersion: "1.0"}))
	before, err := os.ReadFile(store.ModelPath("logreg"))
	require.NoError(t, err)
	beforeMeta, err := os.ReadFile(store.MetaPath("logreg"))
	require.NoError(t, err)

	require.NoError(t, store.Save(fit(t, "naivebayes"), artifact.Metadata{ModelName: "tfidf+naivebayes", ModelVersion: "1.0"}))

	after, err := os.ReadFile(store.ModelPath("logreg"))
	require.NoError(t, err)
	afterMeta, err := os.ReadFile(store.MetaPath("logreg"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, beforeMeta, afterMeta)

	families, err := store.Families()
	require.NoError(t, err)
	assert.Equal(t, []string{"logreg", "naivebayes"}, families)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := artifact.NewStore(dir)
	require.NoError(t, store.Save(fit(t, "centroid"), artifact.Metadata{ModelName: "tfidf+centroid", ModelVersion: "1.0"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"centroid.model", "centroid.meta.json"}, names)
}

func TestFamiliesEmptyDir(t *testing.T) {
	store := artifact.NewStore(filepath.Join(t.TempDir(), "absent"))
	families, err := store.Families()
	require.NoError(t, err)
	assert.Empty(t, families)
}

func TestInvalidFamilyName(t *testing.T) {
	store := artifact.NewStore(t.TempDir())
	_, err := store.Load("../etc")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, artifact.ErrUnavailable))
}
