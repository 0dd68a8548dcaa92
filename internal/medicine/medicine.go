package medicine

import (
	"errors"
	"io"
	"time"

	"github.com/spf13/afero"
	"gorm.io/gorm"

	"github.com/adeputra/pharmacy-inventory/internal/pagination"
	"github.com/adeputra/pharmacy-inventory/internal/transport"
)

// History notes written by the lifecycle operations.
const (
	NoteInitStock = "init stock"
	NoteDeleted   = "medicine deleted"
)

var (
	ErrMedicineNotFound = errors.New("medicine not found")
	ErrImageNotFound    = errors.New("medicine image not found")
)

type Medicine struct {
	ID          int64          `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Price       float64        `gorm:"not null" json:"price"`
	Description *string        `json:"description"`
	Unit        string         `gorm:"not null" json:"unit"`
	Stock       int64          `gorm:"not null" json:"stock"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Images      []Image        `gorm:"foreignKey:MedicineID" json:"images,omitempty"`
}

func (Medicine) TableName() string {
	return "medicines"
}

type Image struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	MedicineID int64     `gorm:"column:medicine_id;not null" json:"medicine_id"`
	FilePath   string    `gorm:"column:file_path;not null" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Image) TableName() string {
	return "medicine_images"
}

type ListFilter struct {
	Name string
	Unit string
}

type RepositoryAPI interface {
	// Create inserts the medicine and, when it starts with stock, the
	// paired init history row in the same transaction.
	Create(m *Medicine, actingUserID *int64) error
	Update(id int64, updates map[string]any) error
	// SoftDelete hides the medicine and books its remaining stock out in
	// the same transaction.
	SoftDelete(id int64, actingUserID *int64) error
	GetByID(id int64) (*Medicine, error)
	List(filter ListFilter, p pagination.Pagination) ([]Medicine, int64, error)

	AddImages(images []Image) error
	GetImage(medicineID, imageID int64) (*Image, error)
	DeleteImage(medicineID, imageID int64) error

	ExportBatches(batchSize int, fn func(medicines []Medicine) error) error
}

// ImageStoreAPI is the slice of the file store this package needs.
type ImageStoreAPI interface {
	Save(medicineID int64, originalName string, r io.Reader) (string, error)
	Open(rel string) (afero.File, error)
	Delete(rel string) error
}

type CreateRequest struct {
	RequestHeader transport.RequestHeader `json:"request_header"`
	Name          string                  `json:"name"`
	Price         *float64                `json:"price"`
	Description   *string                 `json:"description"`
	Unit          string                  `json:"unit"`
	Stock         *int64                  `json:"stock"`
}

func (r *CreateRequest) Header() transport.RequestHeader {
	return r.RequestHeader
}

type UpdateRequest struct {
	RequestHeader transport.RequestHeader `json:"request_header"`
	Name          *string                 `json:"name"`
	Price         *float64                `json:"price"`
	Description   *string                 `json:"description"`
	Unit          *string                 `json:"unit"`
}

func (r *UpdateRequest) Header() transport.RequestHeader {
	return r.RequestHeader
}

type ImageResponse struct {
	ID        int64  `json:"id"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
}

type Response struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       float64         `json:"price"`
	Description *string         `json:"description"`
	Unit        string          `json:"unit"`
	Stock       int64           `json:"stock"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
	Images      []ImageResponse `json:"images,omitempty"`
}

// UploadedFile is one incoming multipart image.
type UploadedFile struct {
	Name   string
	Reader io.Reader
}
