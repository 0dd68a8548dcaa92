package dashboard

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/adeputra/pharmacy-inventory/internal"
	"github.com/adeputra/pharmacy-inventory/internal/stock"
)

const (
	recentActivityLimit = 5
	topMedicineLimit    = 5
)

const displayTimeLayout = "2006-01-02 15:04:05"

type Service struct {
	repo     RepositoryAPI
	location *time.Location
}

func NewService(repo RepositoryAPI, location *time.Location) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{repo: repo, location: location}
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	totalMedicine, err := s.repo.CountMedicines()
	if err != nil {
		return nil, internal.NewInternalError(err)
	}
	totalStock, err := s.repo.SumStock()
	if err != nil {
		return nil, internal.NewInternalError(err)
	}
	totalIn, err := s.repo.SumMovements(stock.TypeIn)
	if err != nil {
		return nil, internal.NewInternalError(err)
	}
	totalOut, err := s.repo.SumMovements(stock.TypeOut)
	if err != nil {
		return nil, internal.NewInternalError(err)
	}

	activities, err := s.repo.RecentActivities(recentActivityLimit)
	if err != nil {
		return nil, internal.NewInternalError(err)
	}
	top, err := s.repo.TopMedicinesByStock(topMedicineLimit)
	if err != nil {
		return nil, internal.NewInternalError(err)
	}

	items := make([]ActivityItem, 0, len(activities))
	for _, a := range activities {
		userName := "-"
		if a.UserName != nil && *a.UserName != "" {
			userName = *a.UserName
		}
		items = append(items, ActivityItem{
			ID:           a.ID,
			MedicineName: a.MedicineName,
			Type:         a.Type,
			Amount:       a.Amount,
			User:         userName,
			CreatedAt:    a.CreatedAt.In(s.location).Format(displayTimeLayout),
		})
	}
	if top == nil {
		top = []TopMedicine{}
	}

	return &Summary{
		TotalMedicine:    totalMedicine,
		TotalStock:       totalStock,
		TotalStockIn:     totalIn,
		TotalStockOut:    totalOut,
		RecentActivities: items,
		TopMedicines:     top,
	}, nil
}

// StockChart buckets ledger movements per display-timezone day and reports
// the net change (in minus out) for each day with activity.
func (s *Service) StockChart(ctx context.Context, start, end *time.Time) ([]ChartPoint, error) {
	movements, err := s.repo.MovementsBetween(start, end)
	if err != nil {
		return nil, internal.NewInternalError(err)
	}

	byDay := map[string]int64{}
	for _, m := range movements {
		day := m.CreatedAt.In(s.location).Format("2006-01-02")
		if m.Type == stock.TypeOut {
			byDay[day] -= m.Amount
		} else {
			byDay[day] += m.Amount
		}
	}

	points := make([]ChartPoint, 0, len(byDay))
	for day, change := range byDay {
		points = append(points, ChartPoint{Date: day, TotalChange: change})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points, nil
}

func (s *Service) ExportChartCSV(ctx context.Context, w io.Writer, start, end *time.Time) error {
	points, err := s.StockChart(ctx, start, end)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Total Change"}); err != nil {
		return internal.NewInternalError(err)
	}
	for _, p := range points {
		if err := cw.Write([]string{p.Date, strconv.FormatInt(p.TotalChange, 10)}); err != nil {
			return internal.NewInternalError(err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *Service) ChartExportFilename() string {
	return fmt.Sprintf("stock_chart_%s.csv", time.Now().In(s.location).Format("20060102_150405"))
}
