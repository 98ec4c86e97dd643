package seed

import (
	"context"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gulzarali-packages/translation-service/internal/model"
	"github.com/gulzarali-packages/translation-service/internal/store"
)

type recordingInvalidator struct {
	languageIDs []int64
	tags        int
}

func (r *recordingInvalidator) TranslationChanged(_ context.Context, ids ...int64) {
	r.languageIDs = append(r.languageIDs, ids...)
}

func (r *recordingInvalidator) TagsChanged(context.Context) {
	r.tags++
}

func TestRun(t *testing.T) {
	db, err := store.NewDB(store.DriverSQLiteCGO, filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db, store.DriverSQLiteCGO))

	ctx := context.Background()
	inv := &recordingInvalidator{}
	var progress []int

	res, err := Run(ctx, db, Options{
		Count:       25,
		ChunkSize:   10,
		Rand:        rand.New(rand.NewSource(1)),
		Invalidator: inv,
		Progress:    func(done, _ int) { progress = append(progress, done) },
	})
	require.NoError(t, err)

	assert.Equal(t, len(model.CommonLanguages), res.Languages)
	assert.Equal(t, len(Tags), res.Tags)
	assert.Equal(t, 25, res.Translations)
	assert.Equal(t, []int{10, 20, 25}, progress)
	assert.Len(t, inv.languageIDs, len(model.CommonLanguages))
	assert.Equal(t, 1, inv.tags)

	q := store.New(db)
	count, err := q.CountTranslations(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(25), count)

	links, err := q.CountTranslationTags(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, links, int64(25))
	assert.LessOrEqual(t, links, int64(75))

	// A second run reuses languages and tags.
	res, err = Run(ctx, db, Options{Count: 5})
	require.NoError(t, err)
	assert.Zero(t, res.Languages)
	assert.Zero(t, res.Tags)

	count, err = q.CountTranslations(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(30), count)
}

func TestRandomKey(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	seen := make(map[string]bool)
	for range 100 {
		key := randomKey(rng)
		assert.Len(t, strings.Split(key, "."), 3)
		assert.LessOrEqual(t, len(key), model.MaxTranslationKeyLength)
		assert.False(t, seen[key], "duplicate key %s", key)
		seen[key] = true
	}
}

func TestPickTags(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	ids := []int64{1, 2, 3, 4, 5, 6, 7, 8}

	for range 50 {
		picked := pickTags(rng, ids, 3)
		require.NotEmpty(t, picked)
		require.LessOrEqual(t, len(picked), 3)

		unique := make(map[int64]bool)
		for _, id := range picked {
			unique[id] = true
		}
		assert.Len(t, unique, len(picked))
	}

	assert.Nil(t, pickTags(rng, nil, 3))
}

func TestRandomSentence(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for range 20 {
		s := randomSentence(rng)
		assert.True(t, strings.HasSuffix(s, "."))
		n := len(strings.Fields(s))
		assert.GreaterOrEqual(t, n, 3)
		assert.LessOrEqual(t, n, 10)
	}
}
