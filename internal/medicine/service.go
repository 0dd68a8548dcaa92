package medicine

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/afero"

	"github.com/adeputra/pharmacy-inventory/internal"
	"github.com/adeputra/pharmacy-inventory/internal/pagination"
	"github.com/adeputra/pharmacy-inventory/internal/validation"
	"github.com/adeputra/pharmacy-inventory/pkg/logger"
)

const exportBatchSize = 100

const displayTimeLayout = "2006-01-02 15:04:05"

type Service struct {
	repo     RepositoryAPI
	store    ImageStoreAPI
	location *time.Location
}

func NewService(repo RepositoryAPI, store ImageStoreAPI, location *time.Location) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{repo: repo, store: store, location: location}
}

// Create validates and inserts a medicine. Initial stock is booked through
// the ledger inside the repository transaction.
func (s *Service) Create(ctx context.Context, req *CreateRequest, actingUserID *int64) (*Response, error) {
	v := validation.NewValidator()
	v.Field("name", req.Name).Required().MaxLength(255)
	v.Field("unit", req.Unit).Required().MaxLength(100)
	v.Field("price", req.Price).Custom(func(any) string {
		if req.Price == nil {
			return "price is required"
		}
		if *req.Price < 0 {
			return "price must be at least 0"
		}
		return ""
	})
	v.Field("stock", req.Stock).Custom(func(any) string {
		if req.Stock == nil {
			return "stock is required"
		}
		if *req.Stock < 0 {
			return "stock must be at least 0"
		}
		return ""
	})
	if err := v.Validate(); err != nil {
		return nil, err
	}

	m := &Medicine{
		Name:        req.Name,
		Price:       *req.Price,
		Description: req.Description,
		Unit:        req.Unit,
		Stock:       *req.Stock,
	}
	if err := s.repo.Create(m, actingUserID); err != nil {
		return nil, internal.NewInternalError(err)
	}

	logger.From(ctx).Info("medicine created", "medicine_id", m.ID, "stock", m.Stock)
	return s.toResponse(m), nil
}

// Update applies the provided fields only. Stock is never touched here;
// stock moves exclusively through the ledger.
func (s *Service) Update(ctx context.Context, id int64, req *UpdateRequest) (*Response, error) {
	updates := map[string]any{}

	v := validation.NewValidator()
	if req.Name != nil {
		v.Field("name", *req.Name).Required().MaxLength(255)
		updates["name"] = *req.Name
	}
	if req.Unit != nil {
		v.Field("unit", *req.Unit).Required().MaxLength(100)
		updates["unit"] = *req.Unit
	}
	if req.Price != nil {
		v.Field("price", *req.Price).MinFloat(0)
		updates["price"] = *req.Price
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return nil, internal.NewBadRequestError("at least one field must be provided")
	}

	if err := s.repo.Update(id, updates); err != nil {
		return nil, s.mapRepoError(err)
	}

	m, err := s.repo.GetByID(id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	return s.toResponse(m), nil
}

// Delete soft-deletes the medicine; its remaining stock leaves through the
// ledger in the same transaction.
func (s *Service) Delete(ctx context.Context, id int64, actingUserID *int64) error {
	if err := s.repo.SoftDelete(id, actingUserID); err != nil {
		return s.mapRepoError(err)
	}
	logger.From(ctx).Info("medicine deleted", "medicine_id", id)
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Response, error) {
	m, err := s.repo.GetByID(id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	return s.toResponse(m), nil
}

func (s *Service) List(ctx context.Context, filter ListFilter, p pagination.Pagination) (*pagination.CountedPage, error) {
	medicines, total, err := s.repo.List(filter, p)
	if err != nil {
		return nil, internal.NewInternalError(err)
	}

	items := make([]Response, 0, len(medicines))
	for i := range medicines {
		items = append(items, *s.toResponse(&medicines[i]))
	}
	page := p.BuildCounted(items, total)
	return &page, nil
}

// AttachImages stores each uploaded file and records it against the
// medicine. Files written before a failure are removed again.
func (s *Service) AttachImages(ctx context.Context, medicineID int64, files []UploadedFile) ([]ImageResponse, error) {
	if len(files) == 0 {
		return nil, internal.NewBadRequestError("at least one image file is required")
	}

	m, err := s.repo.GetByID(medicineID)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	var images []Image
	cleanup := func() {
		for _, img := range images {
			if err := s.store.Delete(img.FilePath); err != nil {
				logger.From(ctx).Error("failed to remove orphaned image file", "path", img.FilePath, "error", err)
			}
		}
	}

	for _, file := range files {
		path, err := s.store.Save(m.ID, file.Name, file.Reader)
		if err != nil {
			cleanup()
			return nil, internal.NewInternalError(err)
		}
		images = append(images, Image{MedicineID: m.ID, FilePath: path})
	}

	if err := s.repo.AddImages(images); err != nil {
		cleanup()
		return nil, internal.NewInternalError(err)
	}

	responses := make([]ImageResponse, 0, len(images))
	for _, img := range images {
		responses = append(responses, s.toImageResponse(&img))
	}
	return responses, nil
}

// DetachImage removes the record and the file. A file already gone on disk
// does not fail the detach.
func (s *Service) DetachImage(ctx context.Context, medicineID, imageID int64) error {
	img, err := s.repo.GetImage(medicineID, imageID)
	if err != nil {
		return s.mapRepoError(err)
	}

	if err := s.repo.DeleteImage(medicineID, imageID); err != nil {
		return s.mapRepoError(err)
	}

	if err := s.store.Delete(img.FilePath); err != nil {
		logger.From(ctx).Error("failed to remove image file", "path", img.FilePath, "error", err)
	}
	return nil
}

// ViewImage opens the stored file for streaming. The caller closes it.
func (s *Service) ViewImage(ctx context.Context, medicineID, imageID int64) (afero.File, *Image, error) {
	img, err := s.repo.GetImage(medicineID, imageID)
	if err != nil {
		if errors.Is(err, ErrImageNotFound) || errors.Is(err, ErrMedicineNotFound) {
			return nil, nil, internal.NewFileNotFoundError()
		}
		return nil, nil, internal.NewInternalError(err)
	}

	f, err := s.store.Open(img.FilePath)
	if err != nil {
		return nil, nil, internal.NewFileNotFoundError()
	}
	return f, img, nil
}

// ExportCSV streams the full catalogue in fixed-size batches.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ID", "Name", "Price", "Unit", "Stock", "Description"}); err != nil {
		return internal.NewInternalError(err)
	}

	err := s.repo.ExportBatches(exportBatchSize, func(medicines []Medicine) error {
		for _, m := range medicines {
			desc := ""
			if m.Description != nil {
				desc = *m.Description
			}
			record := []string{
				strconv.FormatInt(m.ID, 10),
				m.Name,
				strconv.FormatFloat(m.Price, 'f', -1, 64),
				m.Unit,
				strconv.FormatInt(m.Stock, 10),
				desc,
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return internal.NewInternalError(err)
	}

	cw.Flush()
	return cw.Error()
}

func (s *Service) ExportFilename() string {
	return fmt.Sprintf("medicines_%s.csv", time.Now().In(s.location).Format("20060102_150405"))
}

func (s *Service) mapRepoError(err error) error {
	switch {
	case errors.Is(err, ErrMedicineNotFound):
		return internal.NewNotFoundError()
	case errors.Is(err, ErrImageNotFound):
		return internal.NewNotFoundError()
	default:
		if appErr, ok := internal.IsAppError(err); ok {
			return appErr
		}
		return internal.NewInternalError(err)
	}
}

func (s *Service) toResponse(m *Medicine) *Response {
	resp := &Response{
		ID:          m.ID,
		Name:        m.Name,
		Price:       m.Price,
		Description: m.Description,
		Unit:        m.Unit,
		Stock:       m.Stock,
		CreatedAt:   m.CreatedAt.In(s.location).Format(displayTimeLayout),
		UpdatedAt:   m.UpdatedAt.In(s.location).Format(displayTimeLayout),
	}
	for i := range m.Images {
		resp.Images = append(resp.Images, s.toImageResponse(&m.Images[i]))
	}
	return resp
}

func (s *Service) toImageResponse(img *Image) ImageResponse {
	return ImageResponse{
		ID:        img.ID,
		URL:       fmt.Sprintf("/api/v1/medicines/%d/images/%d", img.MedicineID, img.ID),
		CreatedAt: img.CreatedAt.In(s.location).Format(displayTimeLayout),
	}
}
