package postgres

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/adeputra/pharmacy-inventory/internal/medicine"
	"github.com/adeputra/pharmacy-inventory/internal/pagination"
	"github.com/adeputra/pharmacy-inventory/internal/stock"
)

func TestMedicineRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "MedicineRepository Suite")
}

var _ = Describe("MedicineRepository", func() {
	var (
		db   *gorm.DB
		repo medicine.RepositoryAPI
	)

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&medicine.Medicine{}, &medicine.Image{}, &stock.History{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	histories := func(medicineID int64) []stock.History {
		var rows []stock.History
		Expect(db.Where("medicine_id = ?", medicineID).Find(&rows).Error).To(Succeed())
		return rows
	}

	Describe("Create", func() {
		It("writes one init ledger row for the starting stock", func() {
			userID := int64(3)
			m := &medicine.Medicine{Name: "Paracetamol", Price: 12000, Unit: "strip", Stock: 50}

			Expect(repo.Create(m, &userID)).To(Succeed())
			Expect(m.ID).To(BeNumerically(">", 0))

			rows := histories(m.ID)
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].Type).To(Equal(stock.TypeIn))
			Expect(rows[0].Amount).To(Equal(int64(50)))
			Expect(*rows[0].Note).To(Equal(medicine.NoteInitStock))
			Expect(*rows[0].UserID).To(Equal(int64(3)))
		})

		It("writes no ledger row when starting stock is zero", func() {
			m := &medicine.Medicine{Name: "Ibuprofen", Price: 8000, Unit: "strip", Stock: 0}
			Expect(repo.Create(m, nil)).To(Succeed())
			Expect(histories(m.ID)).To(BeEmpty())
		})
	})

	Describe("Update", func() {
		It("changes only the given columns", func() {
			m := &medicine.Medicine{Name: "Paracetamol", Price: 12000, Unit: "strip", Stock: 10}
			Expect(repo.Create(m, nil)).To(Succeed())

			Expect(repo.Update(m.ID, map[string]any{"price": 15000.0})).To(Succeed())

			got, err := repo.GetByID(m.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Price).To(Equal(15000.0))
			Expect(got.Name).To(Equal("Paracetamol"))
			Expect(got.Stock).To(Equal(int64(10)))
		})

		It("reports not found for an unknown id", func() {
			Expect(repo.Update(99, map[string]any{"name": "x"})).To(MatchError(medicine.ErrMedicineNotFound))
		})
	})

	Describe("SoftDelete", func() {
		It("hides the medicine and books the remaining stock out", func() {
			m := &medicine.Medicine{Name: "Paracetamol", Price: 12000, Unit: "strip", Stock: 12}
			Expect(repo.Create(m, nil)).To(Succeed())

			Expect(repo.SoftDelete(m.ID, nil)).To(Succeed())

			_, err := repo.GetByID(m.ID)
			Expect(err).To(MatchError(medicine.ErrMedicineNotFound))

			rows := histories(m.ID)
			Expect(rows).To(HaveLen(2))
			Expect(rows[1].Type).To(Equal(stock.TypeOut))
			Expect(rows[1].Amount).To(Equal(int64(12)))
			Expect(*rows[1].Note).To(Equal(medicine.NoteDeleted))

			var raw medicine.Medicine
			Expect(db.Unscoped().First(&raw, m.ID).Error).To(Succeed())
			Expect(raw.Stock).To(BeZero())
			Expect(raw.DeletedAt.Valid).To(BeTrue())
		})

		It("writes no out row when the stock is already zero", func() {
			m := &medicine.Medicine{Name: "Ibuprofen", Price: 8000, Unit: "strip", Stock: 0}
			Expect(repo.Create(m, nil)).To(Succeed())

			Expect(repo.SoftDelete(m.ID, nil)).To(Succeed())
			Expect(histories(m.ID)).To(BeEmpty())
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			for _, m := range []*medicine.Medicine{
				{Name: "Paracetamol", Price: 12000, Unit: "strip", Stock: 10},
				{Name: "Amoxicillin", Price: 25000, Unit: "box", Stock: 5},
				{Name: "Panadol Extra", Price: 18000, Unit: "strip", Stock: 7},
			} {
				Expect(repo.Create(m, nil)).To(Succeed())
			}
		})

		It("filters by name substring case-insensitively", func() {
			rows, total, err := repo.List(medicine.ListFilter{Name: "pa"}, pagination.New(1, 10))
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(2)))
			Expect(rows[0].Name).To(Equal("Panadol Extra"))
			Expect(rows[1].Name).To(Equal("Paracetamol"))
		})

		It("filters by unit", func() {
			_, total, err := repo.List(medicine.ListFilter{Unit: "box"}, pagination.New(1, 10))
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
		})

		It("excludes soft-deleted medicines", func() {
			rows, _, err := repo.List(medicine.ListFilter{}, pagination.New(1, 10))
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.SoftDelete(rows[0].ID, nil)).To(Succeed())

			_, total, err := repo.List(medicine.ListFilter{}, pagination.New(1, 10))
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(2)))
		})
	})

	Describe("Images", func() {
		var m *medicine.Medicine

		BeforeEach(func() {
			m = &medicine.Medicine{Name: "Paracetamol", Price: 12000, Unit: "strip", Stock: 1}
			Expect(repo.Create(m, nil)).To(Succeed())
		})

		It("stores and preloads image records", func() {
			Expect(repo.AddImages([]medicine.Image{
				{MedicineID: m.ID, FilePath: "medicines/1/a.jpg"},
				{MedicineID: m.ID, FilePath: "medicines/1/b.jpg"},
			})).To(Succeed())

			got, err := repo.GetByID(m.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Images).To(HaveLen(2))
		})

		It("scopes image lookup to the medicine", func() {
			Expect(repo.AddImages([]medicine.Image{{MedicineID: m.ID, FilePath: "medicines/1/a.jpg"}})).To(Succeed())

			got, err := repo.GetByID(m.ID)
			Expect(err).NotTo(HaveOccurred())
			imageID := got.Images[0].ID

			_, err = repo.GetImage(m.ID+1, imageID)
			Expect(err).To(MatchError(medicine.ErrImageNotFound))

			img, err := repo.GetImage(m.ID, imageID)
			Expect(err).NotTo(HaveOccurred())
			Expect(img.FilePath).To(Equal("medicines/1/a.jpg"))
		})

		It("deletes image records", func() {
			Expect(repo.AddImages([]medicine.Image{{MedicineID: m.ID, FilePath: "medicines/1/a.jpg"}})).To(Succeed())
			got, err := repo.GetByID(m.ID)
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.DeleteImage(m.ID, got.Images[0].ID)).To(Succeed())
			Expect(repo.DeleteImage(m.ID, got.Images[0].ID)).To(MatchError(medicine.ErrImageNotFound))
		})
	})

	Describe("ExportBatches", func() {
		It("visits every row in order", func() {
			for i := 0; i < 5; i++ {
				Expect(repo.Create(&medicine.Medicine{Name: "M", Price: 1, Unit: "u", Stock: 0}, nil)).To(Succeed())
			}

			var ids []int64
			err := repo.ExportBatches(2, func(batch []medicine.Medicine) error {
				for _, m := range batch {
					ids = append(ids, m.ID)
				}
				return nil
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(HaveLen(5))
			for i := 1; i < len(ids); i++ {
				Expect(ids[i]).To(BeNumerically(">", ids[i-1]))
			}
		})
	})
})
