package application

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/impossibleiman/couplemap/internal/adapter/driven/memory"
	"github.com/impossibleiman/couplemap/internal/domain/model"
)

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.Local)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// failingKV wraps the in-memory store and fails Get or Set on demand.
type failingKV struct {
	*memory.KVStore
	getErr error
	setErr error
}

func (f *failingKV) Get(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.KVStore.Get(ctx, key)
}

func (f *failingKV) Set(ctx context.Context, key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.KVStore.Set(ctx, key, value)
}

// setupStore returns a restored store holding the example records.
func setupStore(t *testing.T) (*PlaceStore, *failingKV) {
	t.Helper()
	kv := &failingKV{KVStore: memory.NewKVStore()}
	store := NewPlaceStore(kv, discardLogger())
	require.NoError(t, store.Restore(context.Background()))
	return store, kv
}

func setupService(t *testing.T) (*PlaceService, *PlaceStore) {
	t.Helper()
	store, _ := setupStore(t)
	svc := NewPlaceService(store, NewPhotoService(10<<20), func() time.Time { return testNow }, discardLogger())
	return svc, store
}

// pngBytes encodes a w x h image whose left half is red and right half blue.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: 255, A: 255}
			if x >= w/2 {
				c = color.RGBA{B: 255, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func place(name, day, month, year string) model.Place {
	return model.Place{
		ID:   name,
		Name: name,
		Date: model.PlaceDate{Day: day, Month: month, Year: year},
	}
}

func names(places []model.Place) []string {
	out := make([]string, 0, len(places))
	for _, p := range places {
		out = append(out, p.Name)
	}
	return out
}
