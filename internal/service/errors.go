package service

import (
	"errors"

	"smart-store/internal/repository"
)

var (
	ErrProductNotFound   = repository.ErrProductNotFound
	ErrInvalidProduct    = errors.New("product needs a name and a valid price")
	ErrEmptyUpdate       = errors.New("no fields to update")
	ErrInvalidPassword   = errors.New("invalid password")
	ErrNoStagedImport    = errors.New("no import is staged")
	ErrStagedRowNotFound = errors.New("staged row not found")
)

// Operations named in RepositoryError values
const (
	OpListProducts  = "list products"
	OpFindProduct   = "find product"
	OpSaveProduct   = "save product"
	OpDeleteProduct = "delete product"
	OpUploadImage   = "upload image"
	OpAddProducts   = "add products"
)
