package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"listing-marketplace/internal/model"
)

// PhotoRepository keeps listing photos in a GridFS bucket.
type PhotoRepository struct {
	DB *mongo.Database
}

func NewPhotoRepository(client *mongo.Client, dbName string) *PhotoRepository {
	return &PhotoRepository{DB: client.Database(dbName)}
}

// Upload streams r into the bucket, tagging the file with its listing, and returns the file id.
func (r *PhotoRepository) Upload(ctx context.Context, listingID, filename string, src io.Reader) (string, error) {
	bucket, err := r.bucket(ctx, true)
	if err != nil {
		return "", err
	}

	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "listingId", Value: listingID}})
	id, err := bucket.UploadFromStream(filename, src, opts)
	if err != nil {
		return "", fmt.Errorf("PhotoRepository.Upload: %w", err)
	}
	return id.Hex(), nil
}

// Download returns the file's bytes and its stored name.
func (r *PhotoRepository) Download(ctx context.Context, fileID string) ([]byte, string, error) {
	objID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return nil, "", fmt.Errorf("photo %q: %w", fileID, model.ErrNotFound)
	}
	bucket, err := r.bucket(ctx, false)
	if err != nil {
		return nil, "", err
	}

	stream, err := bucket.OpenDownloadStream(objID)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, "", fmt.Errorf("photo %s: %w", fileID, model.ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("PhotoRepository.Download: %w", err)
	}
	defer stream.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, stream); err != nil {
		return nil, "", fmt.Errorf("PhotoRepository.Download: %w", err)
	}
	return buf.Bytes(), stream.GetFile().Name, nil
}

// Delete removes the file and its chunks.
func (r *PhotoRepository) Delete(ctx context.Context, fileID string) error {
	objID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return fmt.Errorf("photo %q: %w", fileID, model.ErrNotFound)
	}
	bucket, err := r.bucket(ctx, true)
	if err != nil {
		return err
	}

	err = bucket.Delete(objID)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return fmt.Errorf("photo %s: %w", fileID, model.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("PhotoRepository.Delete: %w", err)
	}
	return nil
}

// bucket opens the default bucket with deadlines taken from ctx. GridFS streams do not
// accept a context.
func (r *PhotoRepository) bucket(ctx context.Context, write bool) (*gridfs.Bucket, error) {
	bucket, err := gridfs.NewBucket(r.DB)
	if err != nil {
		return nil, fmt.Errorf("PhotoRepository: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		if write {
			err = bucket.SetWriteDeadline(deadline)
		} else {
			err = bucket.SetReadDeadline(deadline)
		}
		if err != nil {
			return nil, fmt.Errorf("PhotoRepository: %w", err)
		}
	}
	return bucket, nil
}
