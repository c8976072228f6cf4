package repository

import "errors"

var (
	// ErrImageNotFound indicates the named image does not exist in the store
	ErrImageNotFound = errors.New("image not found")

	// ErrUnsupportedImage indicates the name does not carry a decodable extension
	ErrUnsupportedImage = errors.New("unsupported image type")

	// ErrUnreadableImage indicates the store failed while opening the image
	ErrUnreadableImage = errors.New("image could not be read")

	// ErrRepositoryUnavailable indicates the backing store cannot be reached
	ErrRepositoryUnavailable = errors.New("repository unavailable")
)
