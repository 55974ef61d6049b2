package model

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"path"

	"github.com/golang/snappy"

	loomerrors "github.com/loomhr/loom/internal/errors"
	"github.com/loomhr/loom/internal/storage"
)

// Artifact object names under a model's storage prefix.
const (
	forestObject   = "forest.bin"
	scalerObject   = "scaler.bin"
	featuresObject = "features.bin"
)

// Bundle groups everything needed to run inference: the trained forest, the
// scaler fitted on its training data, and the ordered feature column names.
type Bundle struct {
	Forest   *RandomForest
	Scaler   *StandardScaler
	Features []string
}

// ArtifactStore persists model bundles as snappy-compressed gob objects in
// object storage. The three objects of a bundle are written and read under a
// common prefix and treated as a unit: a bundle with any object missing is
// reported as absent.
type ArtifactStore struct {
	store storage.ObjectStorage
}

// NewArtifactStore creates an artifact store over the given object storage.
func NewArtifactStore(store storage.ObjectStorage) *ArtifactStore {
	return &ArtifactStore{store: store}
}

// Save writes the bundle under the given prefix.
func (a *ArtifactStore) Save(ctx context.Context, prefix string, b *Bundle) error {
	if b.Forest == nil || b.Scaler == nil || len(b.Features) == 0 {
		return loomerrors.New(loomerrors.ErrCategoryArtifact, loomerrors.CodeArtifactCorrupt,
			"bundle is incomplete")
	}

	objects := []struct {
		name  string
		value any
	}{
		{forestObject, b.Forest},
		{scalerObject, b.Scaler},
		{featuresObject, b.Features},
	}
	for _, obj := range objects {
		data, err := encode(obj.value)
		if err != nil {
			return loomerrors.NewArtifactError(loomerrors.CodeArtifactCorrupt,
				fmt.Sprintf("failed to encode %s", obj.name), err)
		}
		if err := a.store.Put(ctx, path.Join(prefix, obj.name), data); err != nil {
			return loomerrors.NewStorageError(loomerrors.CodePutFailed,
				fmt.Sprintf("failed to store %s", obj.name), err)
		}
	}
	return nil
}

// Load reads the bundle stored under the given prefix. A missing object
// yields an ARTIFACT_MISSING error.
func (a *ArtifactStore) Load(ctx context.Context, prefix string) (*Bundle, error) {
	b := &Bundle{
		Forest: &RandomForest{},
		Scaler: &StandardScaler{},
	}

	objects := []struct {
		name  string
		value any
	}{
		{forestObject, b.Forest},
		{scalerObject, b.Scaler},
		{featuresObject, &b.Features},
	}
	for _, obj := range objects {
		key := path.Join(prefix, obj.name)
		data, err := a.store.Get(ctx, key)
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, loomerrors.NewArtifactError(loomerrors.CodeArtifactMissing,
				fmt.Sprintf("model artifact %s not found", key), err)
		}
		if err != nil {
			return nil, loomerrors.NewStorageError(loomerrors.CodeGetFailed,
				fmt.Sprintf("failed to fetch %s", key), err)
		}
		if err := decode(data, obj.value); err != nil {
			return nil, loomerrors.NewArtifactError(loomerrors.CodeArtifactCorrupt,
				fmt.Sprintf("failed to decode %s", key), err)
		}
	}
	return b, nil
}

// Exists reports whether a complete bundle is stored under the prefix.
func (a *ArtifactStore) Exists(ctx context.Context, prefix string) (bool, error) {
	for _, name := range []string{forestObject, scalerObject, featuresObject} {
		ok, err := a.store.Exists(ctx, path.Join(prefix, name))
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Delete removes all bundle objects under the prefix.
func (a *ArtifactStore) Delete(ctx context.Context, prefix string) error {
	for _, name := range []string{forestObject, scalerObject, featuresObject} {
		if err := a.store.Delete(ctx, path.Join(prefix, name)); err != nil {
			return err
		}
	}
	return nil
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return snappy.Encode(nil, buf.Bytes()), nil
}

func decode(data []byte, v any) error {
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return err
	}
	return gob.NewDecoder(bytes.NewReader(raw)).Decode(v)
}
