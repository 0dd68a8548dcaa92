package stock_test

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adeputra/pharmacy-inventory/internal"
	"github.com/adeputra/pharmacy-inventory/internal/pagination"
	"github.com/adeputra/pharmacy-inventory/internal/stock"
)

// fakeRepo implements the conditional-decrement contract behind a mutex so
// the concurrency property can be exercised without a database.
type fakeRepo struct {
	mu        sync.Mutex
	stocks    map[int64]int64
	histories []stock.History
	nextID    int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{stocks: map[int64]int64{}}
}

func (f *fakeRepo) Adjust(_ context.Context, medicineID int64, movementType string, amount int64, note *string, userID *int64) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, ok := f.stocks[medicineID]
	if !ok {
		return 0, 0, internal.NewNotFoundError()
	}

	if movementType == stock.TypeOut {
		if current < amount {
			return 0, 0, internal.NewInsufficientStockError(current)
		}
		current -= amount
	} else {
		current += amount
	}
	f.stocks[medicineID] = current

	f.nextID++
	f.histories = append(f.histories, stock.History{
		ID:         f.nextID,
		MedicineID: medicineID,
		UserID:     userID,
		Type:       movementType,
		Amount:     amount,
		Note:       note,
		CreatedAt:  time.Now(),
	})
	return current, f.nextID, nil
}

func (f *fakeRepo) ListByMedicine(medicineID int64, _ stock.HistoryFilter, p pagination.Pagination) ([]stock.HistoryRow, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var rows []stock.HistoryRow
	for _, h := range f.histories {
		if h.MedicineID == medicineID {
			rows = append(rows, stock.HistoryRow{
				ID: h.ID, MedicineID: h.MedicineID, Type: h.Type,
				Amount: h.Amount, Note: h.Note, CreatedAt: h.CreatedAt,
			})
		}
	}
	total := int64(len(rows))

	start := p.Offset()
	if start > len(rows) {
		start = len(rows)
	}
	end := start + p.Limit()
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end], total, nil
}

func (f *fakeRepo) ListAll(filter stock.HistoryFilter, p pagination.Pagination) ([]stock.HistoryRow, int64, error) {
	return nil, 0, nil
}

func (f *fakeRepo) Export(medicineID int64, _ stock.HistoryFilter, batchSize int, fn func([]stock.HistoryRow) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var rows []stock.HistoryRow
	name := "Paracetamol"
	user := "Ade"
	for _, h := range f.histories {
		if medicineID == 0 || h.MedicineID == medicineID {
			row := stock.HistoryRow{
				ID: h.ID, MedicineID: h.MedicineID, Type: h.Type,
				Amount: h.Amount, Note: h.Note, CreatedAt: h.CreatedAt,
				MedicineName: &name,
			}
			if h.UserID != nil {
				row.UserName = &user
			}
			rows = append(rows, row)
		}
	}

	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := fn(rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}

var _ = Describe("Stock Service", func() {
	var (
		repo    *fakeRepo
		service *stock.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = newFakeRepo()
		repo.stocks[1] = 30
		loc, err := time.LoadLocation("Asia/Jakarta")
		Expect(err).NotTo(HaveOccurred())
		service = stock.NewService(repo, loc)
	})

	Describe("Adjust", func() {
		It("records exactly one in row and raises the stock", func() {
			resp, err := service.Adjust(ctx, 1, stock.TypeIn, 20, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Stock).To(Equal(int64(50)))
			Expect(repo.histories).To(HaveLen(1))
			Expect(repo.histories[0].Type).To(Equal(stock.TypeIn))
			Expect(repo.histories[0].Amount).To(Equal(int64(20)))
		})

		It("rejects a non-positive amount before touching the repository", func() {
			_, err := service.Adjust(ctx, 1, stock.TypeOut, 0, nil, nil)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.CodeBadRequest))
			Expect(repo.histories).To(BeEmpty())
		})

		It("rejects an unknown direction", func() {
			_, err := service.Adjust(ctx, 1, "sideways", 5, nil, nil)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.CodeBadRequest))
		})

		It("fails an oversized stock-out with the current stock and no history", func() {
			_, err := service.Adjust(ctx, 1, stock.TypeOut, 31, nil, nil)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.CodeInsufficientStock))
			Expect(appErr.Message).To(ContainSubstring("30"))
			Expect(repo.histories).To(BeEmpty())
			Expect(repo.stocks[1]).To(Equal(int64(30)))
		})

		It("never drives stock negative under concurrent stock-outs", func() {
			var wg sync.WaitGroup
			succeeded := make(chan struct{}, 50)

			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					defer GinkgoRecover()
					if _, err := service.Adjust(ctx, 1, stock.TypeOut, 1, nil, nil); err == nil {
						succeeded <- struct{}{}
					}
				}()
			}
			wg.Wait()
			close(succeeded)

			Expect(succeeded).To(HaveLen(30))
			Expect(repo.stocks[1]).To(Equal(int64(0)))
			Expect(repo.histories).To(HaveLen(30))
		})
	})

	Describe("HistoryByMedicine", func() {
		It("pages with a counted total", func() {
			for i := 0; i < 25; i++ {
				_, err := service.Adjust(ctx, 1, stock.TypeIn, 1, nil, nil)
				Expect(err).NotTo(HaveOccurred())
			}

			page, err := service.HistoryByMedicine(ctx, 1, stock.HistoryFilter{}, pagination.New(3, 10))
			Expect(err).NotTo(HaveOccurred())
			Expect(page.TotalData).To(Equal(int64(25)))
			Expect(page.TotalPages).To(Equal(int64(3)))
			Expect(page.Items.([]stock.HistoryItem)).To(HaveLen(5))
		})
	})

	Describe("ExportCSV", func() {
		It("streams header plus one row per movement with display formatting", func() {
			userID := int64(7)
			note := "restock"
			_, err := service.Adjust(ctx, 1, stock.TypeIn, 10, &note, &userID)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Adjust(ctx, 1, stock.TypeOut, 3, nil, nil)
			Expect(err).NotTo(HaveOccurred())

			var buf bytes.Buffer
			Expect(service.ExportCSV(ctx, &buf, 1, stock.HistoryFilter{})).To(Succeed())

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			Expect(lines).To(HaveLen(3))
			Expect(lines[0]).To(Equal("Date,Type,Amount,Note,User"))
			Expect(lines[1]).To(ContainSubstring("IN"))
			Expect(lines[1]).To(ContainSubstring("restock"))
			Expect(lines[1]).To(ContainSubstring("Ade"))
			Expect(lines[2]).To(ContainSubstring("OUT"))
			Expect(lines[2]).To(ContainSubstring("-"))
		})

		It("adds the Medicine column when exporting all medicines", func() {
			_, err := service.Adjust(ctx, 1, stock.TypeIn, 5, nil, nil)
			Expect(err).NotTo(HaveOccurred())

			var buf bytes.Buffer
			Expect(service.ExportCSV(ctx, &buf, 0, stock.HistoryFilter{})).To(Succeed())

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			Expect(lines[0]).To(Equal("Date,Type,Amount,Note,User,Medicine"))
			Expect(lines[1]).To(ContainSubstring("Paracetamol"))
		})
	})

	Describe("ParseDateRange", func() {
		It("converts display-timezone dates to UTC bounds with an exclusive end", func() {
			start, end, err := service.ParseDateRange("2026-08-01", "2026-08-02")
			Expect(err).NotTo(HaveOccurred())
			// Asia/Jakarta is UTC+7, no DST.
			Expect(start.Format(time.RFC3339)).To(Equal("2026-07-31T17:00:00Z"))
			Expect(end.Format(time.RFC3339)).To(Equal("2026-08-02T17:00:00Z"))
		})

		It("rejects malformed dates", func() {
			_, _, err := service.ParseDateRange("01-08-2026", "")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.CodeBadRequest))
		})
	})
})
